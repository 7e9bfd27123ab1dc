package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/AGLOP-1354/taskboard/internal/api"
	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/logging"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// maxFrameBytes bounds a single snapshot frame on the watch stream.
const maxFrameBytes = 32 << 20

// Remote talks to a `taskboard serve` instance: writes are plain HTTP
// requests and snapshots arrive on a WebSocket stream that is re-dialed
// after every failure until the subscription is torn down.
type Remote struct {
	base           *url.URL
	client         *http.Client
	reconnectDelay time.Duration
	logger         *logging.Logger

	mu     sync.Mutex
	closed bool
	subs   map[*remoteSubscription]struct{}
}

type remoteSubscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// RemoteConfig configures NewRemote.
type RemoteConfig struct {
	// BaseURL is the server root, e.g. http://localhost:8080.
	BaseURL string
	// HTTPClient defaults to a client with RequestTimeout.
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	ReconnectDelay time.Duration
}

// NewRemote creates a remote backend. No connection is made until the first
// request or subscription.
func NewRemote(cfg RemoteConfig, opts ...Option) (*Remote, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid remote url %q", cfg.BaseURL)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = time.Second
	}
	o := applyOptions(opts)
	return &Remote{
		base:           base,
		client:         client,
		reconnectDelay: delay,
		logger:         o.logger.WithComponent("store").WithBackend(BackendRemote).With("url", base.String()),
		subs:           make(map[*remoteSubscription]struct{}),
	}, nil
}

// Backend returns "remote".
func (c *Remote) Backend() string { return BackendRemote }

// Create implements Writer.
func (c *Remote) Create(ctx context.Context, data task.NewTaskData) (string, error) {
	var resp api.CreateResponse
	if err := c.do(ctx, http.MethodPost, api.TasksPath, data, &resp); err != nil {
		return "", remoteErr(BackendRemote, errors.OpCreate, "", err).WithRetryable(errors.IsRetryable(err))
	}
	return resp.ID, nil
}

// Update implements Writer.
func (c *Remote) Update(ctx context.Context, id string, patch task.Patch) error {
	if err := c.do(ctx, http.MethodPatch, api.TaskPath(url.PathEscape(id)), patch, nil); err != nil {
		return remoteErr(BackendRemote, errors.OpUpdate, id, err).WithRetryable(errors.IsRetryable(err))
	}
	return nil
}

// Delete implements Writer.
func (c *Remote) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, api.TaskPath(url.PathEscape(id)), nil, nil); err != nil {
		return remoteErr(BackendRemote, errors.OpDelete, id, err).WithRetryable(errors.IsRetryable(err))
	}
	return nil
}

// transportError marks network failures so callers can retry.
type transportError struct{ err error }

func (e *transportError) Error() string        { return e.err.Error() }
func (e *transportError) Unwrap() error        { return e.err }
func (e *transportError) IsRetryable() bool    { return true }
func (e *transportError) IsUserFacing() bool   { return true }
func (e *transportError) Is(target error) bool { return false }
func (e *transportError) Severity() errors.Severity {
	return errors.SeverityError
}

func (c *Remote) do(ctx context.Context, method, path string, in, out any) error {
	if c.isClosed() {
		return errors.ErrStoreClosed
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeErrorResponse(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeErrorResponse(resp *http.Response) error {
	var body api.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
		if body.Error == "" {
			body.Error = resp.Status
		}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || body.Code == api.CodeNotFound:
		return errors.NewNotFoundError("task", "").WithCause(errors.New(body.Error))
	case body.Code == api.CodeInvalid:
		return errors.NewValidationError(body.Error).WithField(body.Field)
	case resp.StatusCode >= 500:
		return &transportError{err: fmt.Errorf("server error: %s", body.Error)}
	default:
		return fmt.Errorf("%s: %s", resp.Status, body.Error)
	}
}

// Subscribe implements Subscriber.
func (c *Remote) Subscribe(onSnapshot SnapshotFunc) (Unsubscribe, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.ErrStoreClosed
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &remoteSubscription{cancel: cancel, done: make(chan struct{})}
	c.subs[sub] = struct{}{}
	go c.watchLoop(ctx, sub, onSnapshot)

	return onceUnsubscribe(func() {
		c.mu.Lock()
		delete(c.subs, sub)
		c.mu.Unlock()
		sub.cancel()
	}), nil
}

func (c *Remote) watchLoop(ctx context.Context, sub *remoteSubscription, onSnapshot SnapshotFunc) {
	defer close(sub.done)

	var last []task.Task
	delivered := false
	deliver := func(tasks []task.Task) {
		if ctx.Err() != nil {
			return
		}
		if delivered && equalSnapshots(last, tasks) {
			return
		}
		last, delivered = tasks, true
		onSnapshot(tasks)
	}

	for {
		err := c.watchOnce(ctx, deliver)
		if ctx.Err() != nil {
			return
		}
		if status := websocket.CloseStatus(err); status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			c.logger.Info("watch stream closed by server", "status", status.String())
		} else {
			reportSubscriptionError(c.logger, BackendRemote, "", "watch stream", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *Remote) watchOnce(ctx context.Context, deliver func([]task.Task)) error {
	conn, _, err := websocket.Dial(ctx, c.watchURL(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.CloseNow() }()
	conn.SetReadLimit(maxFrameBytes)
	c.logger.Debug("watch stream connected")

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}
		var frame api.SnapshotFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			reportSubscriptionError(c.logger, BackendRemote, "", "decode snapshot frame", err)
			continue
		}
		tasks := frame.Tasks
		if tasks == nil {
			tasks = []task.Task{}
		}
		task.SortSnapshot(tasks)
		deliver(tasks)
	}
}

func (c *Remote) watchURL() string {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + api.WatchPath
	return u.String()
}

func (c *Remote) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close stops all watch streams.
func (c *Remote) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := c.subs
	c.subs = make(map[*remoteSubscription]struct{})
	c.mu.Unlock()

	for sub := range subs {
		sub.cancel()
		<-sub.done
	}
	return nil
}
