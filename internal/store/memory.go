package store

import (
	"context"
	"sync"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/event"
	"github.com/AGLOP-1354/taskboard/internal/logging"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// Memory is a process-local store. Writes publish store events on its bus
// and each subscription reloads from the record map when one arrives.
type Memory struct {
	mu     sync.RWMutex
	name   string
	coll   *collection
	bus    *event.Bus
	opts   options
	logger *logging.Logger
	closed bool
	pumps  map[*pump]struct{}
}

// NewMemory creates an empty in-memory collection.
func NewMemory(collectionName string, opts ...Option) *Memory {
	o := applyOptions(opts)
	logger := o.logger.WithComponent("store").WithBackend(BackendMemory).WithCollection(collectionName)
	return &Memory{
		name:   collectionName,
		coll:   newCollection(),
		bus:    event.NewBus(logger),
		opts:   o,
		logger: logger,
		pumps:  make(map[*pump]struct{}),
	}
}

// Backend returns "memory".
func (m *Memory) Backend() string { return BackendMemory }

// Bus exposes the store's event bus so callers can observe writes.
func (m *Memory) Bus() *event.Bus { return m.bus }

// Create implements Writer.
func (m *Memory) Create(ctx context.Context, data task.NewTaskData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", remoteErr(BackendMemory, errors.OpCreate, "", err)
	}
	id := m.opts.newID()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", remoteErr(BackendMemory, errors.OpCreate, "", errors.ErrStoreClosed)
	}
	err := m.coll.create(id, data, m.opts.clock())
	m.mu.Unlock()
	if err != nil {
		return "", remoteErr(BackendMemory, errors.OpCreate, id, err)
	}

	m.logger.Debug("task created", "task_id", id)
	m.bus.Publish(event.NewTaskCreatedEvent(m.name, id))
	return id, nil
}

// Update implements Writer.
func (m *Memory) Update(ctx context.Context, id string, patch task.Patch) error {
	if err := ctx.Err(); err != nil {
		return remoteErr(BackendMemory, errors.OpUpdate, id, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return remoteErr(BackendMemory, errors.OpUpdate, id, errors.ErrStoreClosed)
	}
	err := m.coll.update(id, patch, m.opts.clock())
	m.mu.Unlock()
	if err != nil {
		return remoteErr(BackendMemory, errors.OpUpdate, id, err)
	}

	m.logger.Debug("task updated", "task_id", id)
	m.bus.Publish(event.NewTaskUpdatedEvent(m.name, id))
	return nil
}

// Delete implements Writer.
func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return remoteErr(BackendMemory, errors.OpDelete, id, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return remoteErr(BackendMemory, errors.OpDelete, id, errors.ErrStoreClosed)
	}
	err := m.coll.delete(id)
	m.mu.Unlock()
	if err != nil {
		return remoteErr(BackendMemory, errors.OpDelete, id, err)
	}

	m.logger.Debug("task deleted", "task_id", id)
	m.bus.Publish(event.NewTaskDeletedEvent(m.name, id))
	return nil
}

// Put writes a raw record under id, bypassing create defaults. It exists so
// records in the legacy shape (no status) can be loaded by import and tests.
func (m *Memory) Put(id string, rec task.Record) {
	m.mu.Lock()
	m.coll.Records[id] = rec
	m.mu.Unlock()
	m.bus.Publish(event.NewCollectionChangedEvent(m.name))
}

// Subscribe implements Subscriber.
func (m *Memory) Subscribe(onSnapshot SnapshotFunc) (Unsubscribe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.ErrStoreClosed
	}

	p := startPump(m.load, onSnapshot, func(err error) {
		reportSubscriptionError(m.logger, BackendMemory, m.name, "load snapshot", err)
	})
	m.pumps[p] = struct{}{}
	subID := m.bus.SubscribeAll(func(e event.Event) {
		if event.IsCollectionChange(e) {
			p.Trigger()
		}
	})

	return onceUnsubscribe(func() {
		m.bus.Unsubscribe(subID)
		p.Stop()
		m.mu.Lock()
		delete(m.pumps, p)
		m.mu.Unlock()
	}), nil
}

func (m *Memory) load(context.Context) ([]task.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errors.ErrStoreClosed
	}
	return m.coll.snapshot(), nil
}

// Close stops all subscriptions.
func (m *Memory) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	pumps := m.pumps
	m.pumps = make(map[*pump]struct{})
	m.mu.Unlock()

	for p := range pumps {
		p.Stop()
	}
	m.bus.Clear()
	return nil
}
