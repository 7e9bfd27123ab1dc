package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/logging"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

const (
	// maxTxRetries bounds optimistic-lock retries for a single update.
	maxTxRetries = 5
	// resubscribeDelay is the pause after a failed pub/sub receive.
	resubscribeDelay = 500 * time.Millisecond
)

// change is published on the collection's channel after every write.
type change struct {
	Op string `json:"op"`
	ID string `json:"id"`
}

// Redis stores each record as a JSON field of the hash {prefix}:{collection}
// and announces every write on the channel {prefix}:{collection}:changes.
// Subscribers re-read the hash when an announcement arrives.
type Redis struct {
	client  redis.UniversalClient
	name    string
	key     string
	channel string
	opts    options
	logger  *logging.Logger

	mu     sync.Mutex
	closed bool
	subs   map[*redisSubscription]struct{}
}

type redisSubscription struct {
	cancel context.CancelFunc
	pubsub *redis.PubSub
	pump   *pump
	done   chan struct{}
}

// NewRedis wraps an existing client. The client is closed by Close.
func NewRedis(client redis.UniversalClient, keyPrefix, collectionName string, opts ...Option) *Redis {
	o := applyOptions(opts)
	key := fmt.Sprintf("%s:%s", keyPrefix, collectionName)
	return &Redis{
		client:  client,
		name:    collectionName,
		key:     key,
		channel: key + ":changes",
		opts:    o,
		logger:  o.logger.WithComponent("store").WithBackend(BackendRedis).WithCollection(collectionName),
		subs:    make(map[*redisSubscription]struct{}),
	}
}

// Backend returns "redis".
func (r *Redis) Backend() string { return BackendRedis }

// Create implements Writer.
func (r *Redis) Create(ctx context.Context, data task.NewTaskData) (string, error) {
	id := r.opts.newID()
	if err := r.checkOpen(); err != nil {
		return "", remoteErr(BackendRedis, errors.OpCreate, id, err)
	}
	if err := task.ValidateNew(data); err != nil {
		return "", remoteErr(BackendRedis, errors.OpCreate, id, err)
	}

	body, err := json.Marshal(task.NewRecord(data, r.opts.clock()))
	if err != nil {
		return "", remoteErr(BackendRedis, errors.OpCreate, id, err)
	}

	var created *redis.BoolCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.HSetNX(ctx, r.key, id, body)
		pipe.Publish(ctx, r.channel, r.announce("create", id))
		return nil
	})
	if err != nil {
		return "", remoteErr(BackendRedis, errors.OpCreate, id, err).WithRetryable(true)
	}
	if !created.Val() {
		return "", remoteErr(BackendRedis, errors.OpCreate, id, fmt.Errorf("record %s already exists", id))
	}

	r.logger.Debug("task created", "task_id", id)
	return id, nil
}

// Update implements Writer. The read-merge-write runs under WATCH and is
// retried when another writer touched the hash in between.
func (r *Redis) Update(ctx context.Context, id string, patch task.Patch) error {
	if err := r.checkOpen(); err != nil {
		return remoteErr(BackendRedis, errors.OpUpdate, id, err)
	}
	if err := patch.Validate(); err != nil {
		return remoteErr(BackendRedis, errors.OpUpdate, id, err)
	}

	txn := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, r.key, id).Result()
		if errors.Is(err, redis.Nil) {
			return errors.NewNotFoundError("task", id)
		}
		if err != nil {
			return err
		}

		var rec task.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrCorruptRecord, err)
		}
		body, err := json.Marshal(patch.Apply(rec, r.opts.clock()))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, r.key, id, body)
			pipe.Publish(ctx, r.channel, r.announce("update", id))
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = r.client.Watch(ctx, txn, r.key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
		r.logger.Debug("update retry after concurrent write", "task_id", id, "attempt", attempt+1)
	}
	if err != nil {
		return remoteErr(BackendRedis, errors.OpUpdate, id, err)
	}

	r.logger.Debug("task updated", "task_id", id)
	return nil
}

// Delete implements Writer. The change is announced only when a record was
// removed; the existence check and the delete run under WATCH.
func (r *Redis) Delete(ctx context.Context, id string) error {
	if err := r.checkOpen(); err != nil {
		return remoteErr(BackendRedis, errors.OpDelete, id, err)
	}

	txn := func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, r.key, id).Result()
		if err != nil {
			return err
		}
		if !exists {
			return errors.NewNotFoundError("task", id)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HDel(ctx, r.key, id)
			pipe.Publish(ctx, r.channel, r.announce("delete", id))
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = r.client.Watch(ctx, txn, r.key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
		r.logger.Debug("delete retry after concurrent write", "task_id", id, "attempt", attempt+1)
	}
	if err != nil {
		return remoteErr(BackendRedis, errors.OpDelete, id, err)
	}

	r.logger.Debug("task deleted", "task_id", id)
	return nil
}

func (r *Redis) announce(op, id string) string {
	payload, _ := json.Marshal(change{Op: op, ID: id})
	return string(payload)
}

func (r *Redis) load(ctx context.Context) ([]task.Task, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}

	tasks := make([]task.Task, 0, len(fields))
	for id, raw := range fields {
		var rec task.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			r.logger.Warn("skipping corrupt record", "task_id", id, "error", err.Error())
			continue
		}
		tasks = append(tasks, task.FromRecord(id, rec))
	}
	task.SortSnapshot(tasks)
	return tasks, nil
}

// Subscribe implements Subscriber. The pub/sub subscription is confirmed
// before the initial load so no write between the two is missed. The
// confirmation round trip runs without holding the store lock.
func (r *Redis) Subscribe(onSnapshot SnapshotFunc) (Unsubscribe, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		reportSubscriptionError(r.logger, BackendRedis, r.name, "subscribe to change channel", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		cancel()
		_ = pubsub.Close()
		return nil, errors.ErrStoreClosed
	}

	sub := &redisSubscription{
		cancel: cancel,
		pubsub: pubsub,
		done:   make(chan struct{}),
	}
	sub.pump = startPump(r.load, onSnapshot, func(err error) {
		reportSubscriptionError(r.logger, BackendRedis, r.name, "load snapshot", err)
	})
	r.subs[sub] = struct{}{}
	go r.receiveLoop(ctx, sub)

	return onceUnsubscribe(func() {
		r.mu.Lock()
		delete(r.subs, sub)
		r.mu.Unlock()
		sub.stop()
	}), nil
}

func (r *Redis) receiveLoop(ctx context.Context, sub *redisSubscription) {
	defer close(sub.done)
	for {
		if _, err := sub.pubsub.ReceiveMessage(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			reportSubscriptionError(r.logger, BackendRedis, r.name, "receive change", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(resubscribeDelay):
			}
		}
		// After a failed receive the reload also covers writes announced
		// while the connection was down.
		sub.pump.Trigger()
	}
}

func (s *redisSubscription) stop() {
	s.cancel()
	_ = s.pubsub.Close()
	s.pump.Stop()
	<-s.done
}

func (r *Redis) checkOpen() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errors.ErrStoreClosed
	}
	return nil
}

// Ping verifies the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close stops all subscriptions and closes the client.
func (r *Redis) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	subs := r.subs
	r.subs = make(map[*redisSubscription]struct{})
	r.mu.Unlock()

	for sub := range subs {
		sub.stop()
	}
	return r.client.Close()
}
