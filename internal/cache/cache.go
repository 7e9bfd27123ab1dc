// Package cache holds the most recent snapshot delivered by a store
// subscription. The cache is read-only to its callers: the only way its
// contents change is a new snapshot arriving on the subscription, which
// replaces them wholesale.
package cache

import (
	"context"
	"slices"
	"sync"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/event"
	"github.com/AGLOP-1354/taskboard/internal/logging"
	"github.com/AGLOP-1354/taskboard/internal/store"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// Cache is the local entity cache. It is safe for concurrent use.
type Cache struct {
	src    store.Subscriber
	logger *logging.Logger
	bus    *event.Bus

	mu      sync.RWMutex
	tasks   []task.Task
	index   map[string]int
	version uint64
	unsub   store.Unsubscribe
	started bool
	closed  bool

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a cache over src. Nothing is subscribed until Start.
func New(src store.Subscriber, logger *logging.Logger) *Cache {
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithComponent("cache")
	return &Cache{
		src:    src,
		logger: logger,
		bus:    event.NewBus(logger),
		tasks:  []task.Task{},
		index:  map[string]int{},
		ready:  make(chan struct{}),
	}
}

// Start opens the subscription. Calling Start on a started or closed cache
// is an error. A failed subscribe leaves the cache unstarted so that Start
// can be retried.
func (c *Cache) Start() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.ErrStoreClosed
	}
	if c.started {
		c.mu.Unlock()
		return errors.New("cache already started")
	}
	c.started = true
	c.mu.Unlock()

	unsub, err := c.src.Subscribe(c.replace)
	if err != nil {
		c.mu.Lock()
		c.started = false
		c.mu.Unlock()
		return errors.Wrap(err, "subscribe")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// Closed while subscribing.
		unsub()
		return errors.ErrStoreClosed
	}
	c.unsub = unsub
	return nil
}

// replace is the subscription callback and the only writer of c.tasks.
func (c *Cache) replace(tasks []task.Task) {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.tasks = tasks
	c.index = index
	c.version++
	version := c.version
	c.mu.Unlock()

	c.readyOnce.Do(func() { close(c.ready) })
	c.logger.Debug("snapshot applied", "version", version, "tasks", len(tasks))
	c.bus.Publish(event.NewSnapshotAppliedEvent(version, slices.Clone(tasks)))
}

// Snapshot returns a copy of the current contents, newest first.
func (c *Cache) Snapshot() []task.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tasks)
}

// Get returns the task with the given ID.
func (c *Cache) Get(id string) (task.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return task.Task{}, false
	}
	return c.tasks[i], true
}

// Len returns the number of cached tasks.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}

// Version counts the snapshots received so far.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Ready is closed once the first snapshot has arrived.
func (c *Cache) Ready() <-chan struct{} {
	return c.ready
}

// WaitReady blocks until the first snapshot arrives or ctx is done.
func (c *Cache) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for first snapshot")
	}
}

// OnChange registers fn to run after every applied snapshot, on the
// subscription's delivery goroutine. The returned func removes it.
func (c *Cache) OnChange(fn func(version uint64, tasks []task.Task)) (remove func()) {
	id := c.bus.Subscribe(event.TypeSnapshotApplied, func(e event.Event) {
		if applied, ok := e.(event.SnapshotAppliedEvent); ok {
			fn(applied.Version, applied.Tasks)
		}
	})
	return func() { c.bus.Unsubscribe(id) }
}

// Close ends the subscription. The cache keeps serving its last snapshot.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsub := c.unsub
	c.unsub = nil
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	c.bus.Clear()
}
