// Package store is the remote store adapter: a thin contract over a
// persistent collection of task records with create, partial update,
// delete and a push-based subscription that always delivers the entire
// collection ordered by creation time, newest first.
//
// Backends:
//   - Memory: process-local, used by tests and `serve --backend memory`
//   - File: a JSON file guarded by flock(2), watched with fsnotify
//   - Redis: a hash per collection plus a pub/sub change channel
//   - Remote: HTTP writes and a WebSocket snapshot stream from `taskboard serve`
//
// Every backend normalizes writes with task.Patch.Normalize and applies the
// legacy migration rule (task.FromRecord) before emitting a snapshot.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/logging"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendRemote = "remote"
)

// SnapshotFunc receives the full, ordered collection after every change.
// Calls for one subscription never overlap.
type SnapshotFunc func([]task.Task)

// Unsubscribe tears a subscription down. Calling it more than once is a
// no-op. A delivery already in progress may complete after it returns.
type Unsubscribe func()

// Writer is the only legitimate mutation path for task records.
type Writer interface {
	// Create stores a new record in stage todo and returns its ID.
	Create(ctx context.Context, data task.NewTaskData) (string, error)
	// Update merges patch into the record and stamps updatedAt.
	Update(ctx context.Context, id string, patch task.Patch) error
	// Delete removes the record. Deleting a missing record fails.
	Delete(ctx context.Context, id string) error
}

// Subscriber registers push channels for full-collection snapshots.
type Subscriber interface {
	// Subscribe delivers the current snapshot and then a new one after every
	// change. Channel failures are logged as SubscriptionError and the
	// channel stays open.
	Subscribe(onSnapshot SnapshotFunc) (Unsubscribe, error)
}

// Store is a complete task store backend.
type Store interface {
	Writer
	Subscriber
	// Backend returns the backend name, for logs and error context.
	Backend() string
	// Close releases the backend's resources. Subscriptions stop delivering.
	Close() error
}

// Clock returns the current time used for createdAt and updatedAt.
type Clock func() time.Time

// Option configures a backend.
type Option func(*options)

type options struct {
	clock    Clock
	logger   *logging.Logger
	newID    func() string
	debounce time.Duration
}

func defaultOptions() options {
	return options{
		clock:    func() time.Time { return time.Now().UTC() },
		logger:   logging.NopLogger(),
		newID:    uuid.NewString,
		debounce: 50 * time.Millisecond,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the sink for subscription errors and write traces.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIDGenerator overrides how new record IDs are assigned.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithWatchDebounce sets how long the file backend waits for a burst of
// change notifications to settle before reloading.
func WithWatchDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// Fetch subscribes, waits for the first snapshot and unsubscribes.
func Fetch(ctx context.Context, s Subscriber) ([]task.Task, error) {
	first := make(chan []task.Task, 1)
	var once sync.Once
	unsubscribe, err := s.Subscribe(func(tasks []task.Task) {
		once.Do(func() { first <- tasks })
	})
	if err != nil {
		return nil, err
	}
	defer unsubscribe()

	select {
	case tasks := <-first:
		return tasks, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "waiting for snapshot")
	}
}

// remoteErr builds the RemoteOperationError every backend returns.
func remoteErr(backend string, op errors.Op, id string, cause error) *errors.RemoteOperationError {
	return errors.NewRemoteOperationError(op, cause).WithTaskID(id).WithBackend(backend)
}

func onceUnsubscribe(fn func()) Unsubscribe {
	var once sync.Once
	return func() { once.Do(fn) }
}

// reportSubscriptionError sends a push channel failure to the logging sink.
// Subscription errors never reach the subscriber.
func reportSubscriptionError(logger *logging.Logger, backend, collection, message string, cause error) {
	err := errors.NewSubscriptionError(message, cause).WithBackend(backend).WithCollection(collection)
	logger.Error("subscription error", "error", err.Error(), "severity", errors.GetSeverity(err).String())
}
