package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/event"
	"github.com/AGLOP-1354/taskboard/internal/logging"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// File stores a collection as {dir}/{collection}.json. Read-modify-write
// cycles hold an exclusive flock on {dir}/{collection}.lock and replace the
// file atomically, so several processes can share one directory. Changes
// made by other processes reach subscribers through an fsnotify watch on
// the directory.
type File struct {
	name     string
	path     string
	lockPath string
	opts     options
	logger   *logging.Logger
	bus      *event.Bus

	writeMu sync.Mutex

	mu        sync.Mutex
	closed    bool
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	watchDone chan struct{}
	pumps     map[*pump]struct{}
}

// NewFile opens (creating if needed) the collection file in dir.
func NewFile(dir, collectionName string, opts ...Option) (*File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	o := applyOptions(opts)
	logger := o.logger.WithComponent("store").WithBackend(BackendFile).WithCollection(collectionName)
	return &File{
		name:     collectionName,
		path:     filepath.Join(dir, collectionName+".json"),
		lockPath: filepath.Join(dir, collectionName+".lock"),
		opts:     o,
		logger:   logger,
		bus:      event.NewBus(logger),
		pumps:    make(map[*pump]struct{}),
	}, nil
}

// Backend returns "file".
func (f *File) Backend() string { return BackendFile }

// Path returns the collection file path.
func (f *File) Path() string { return f.path }

// Create implements Writer.
func (f *File) Create(ctx context.Context, data task.NewTaskData) (string, error) {
	id := f.opts.newID()
	err := f.mutate(ctx, func(c *collection) error {
		return c.create(id, data, f.opts.clock())
	})
	if err != nil {
		return "", remoteErr(BackendFile, errors.OpCreate, id, err)
	}
	f.logger.Debug("task created", "task_id", id)
	f.bus.Publish(event.NewTaskCreatedEvent(f.name, id))
	return id, nil
}

// Update implements Writer.
func (f *File) Update(ctx context.Context, id string, patch task.Patch) error {
	err := f.mutate(ctx, func(c *collection) error {
		return c.update(id, patch, f.opts.clock())
	})
	if err != nil {
		return remoteErr(BackendFile, errors.OpUpdate, id, err)
	}
	f.logger.Debug("task updated", "task_id", id)
	f.bus.Publish(event.NewTaskUpdatedEvent(f.name, id))
	return nil
}

// Delete implements Writer.
func (f *File) Delete(ctx context.Context, id string) error {
	err := f.mutate(ctx, func(c *collection) error {
		return c.delete(id)
	})
	if err != nil {
		return remoteErr(BackendFile, errors.OpDelete, id, err)
	}
	f.logger.Debug("task deleted", "task_id", id)
	f.bus.Publish(event.NewTaskDeletedEvent(f.name, id))
	return nil
}

func (f *File) mutate(ctx context.Context, fn func(*collection) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.isClosed() {
		return errors.ErrStoreClosed
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	fl := newFileLock(f.lockPath)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = fl.Unlock() }()

	coll, err := f.read()
	if err != nil {
		return err
	}
	if err := fn(coll); err != nil {
		return err
	}
	return f.write(coll)
}

// read must be called with the lock held.
func (f *File) read() (*collection, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return newCollection(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}
	if len(data) == 0 {
		return newCollection(), nil
	}

	coll := newCollection()
	if err := json.Unmarshal(data, coll); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrCorruptRecord, f.path, err)
	}
	if coll.Records == nil {
		coll.Records = make(map[string]task.Record)
	}
	return coll, nil
}

// write must be called with the exclusive lock held.
func (f *File) write(coll *collection) error {
	data, err := json.MarshalIndent(coll, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (f *File) load(ctx context.Context) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fl := newFileLock(f.lockPath)
	if err := fl.RLock(); err != nil {
		return nil, fmt.Errorf("acquire shared lock: %w", err)
	}
	defer func() { _ = fl.Unlock() }()

	coll, err := f.read()
	if err != nil {
		return nil, err
	}
	return coll.snapshot(), nil
}

// Subscribe implements Subscriber. The first subscription starts the
// directory watch.
func (f *File) Subscribe(onSnapshot SnapshotFunc) (Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, errors.ErrStoreClosed
	}
	if f.watcher == nil {
		if err := f.startWatchLocked(); err != nil {
			// Local writes still notify through the bus.
			reportSubscriptionError(f.logger, BackendFile, f.name, "start directory watch", err)
		}
	}

	p := startPump(f.load, onSnapshot, func(err error) {
		reportSubscriptionError(f.logger, BackendFile, f.name, "load snapshot", err)
	})
	f.pumps[p] = struct{}{}
	subID := f.bus.SubscribeAll(func(e event.Event) {
		if event.IsCollectionChange(e) {
			p.Trigger()
		}
	})

	return onceUnsubscribe(func() {
		f.bus.Unsubscribe(subID)
		p.Stop()
		f.mu.Lock()
		delete(f.pumps, p)
		f.mu.Unlock()
	}), nil
}

func (f *File) startWatchLocked() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		_ = watcher.Close()
		return err
	}
	f.watcher = watcher
	f.stopCh = make(chan struct{})
	f.watchDone = make(chan struct{})
	go f.watchLoop(watcher, f.stopCh, f.watchDone)
	return nil
}

func (f *File) watchLoop(watcher *fsnotify.Watcher, stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	// Editors and atomic renames produce several events per save.
	debounce := time.NewTimer(0)
	<-debounce.C
	pending := false

	for {
		select {
		case <-stopCh:
			debounce.Stop()
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending = true
			debounce.Reset(f.opts.debounce)

		case <-debounce.C:
			if pending {
				pending = false
				f.bus.Publish(event.NewCollectionChangedEvent(f.name))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			reportSubscriptionError(f.logger, BackendFile, f.name, "directory watch", err)
		}
	}
}

func (f *File) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Close stops the directory watch and all subscriptions.
func (f *File) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	pumps := f.pumps
	f.pumps = make(map[*pump]struct{})
	watcher, stopCh, done := f.watcher, f.stopCh, f.watchDone
	f.mu.Unlock()

	for p := range pumps {
		p.Stop()
	}

	var err error
	if watcher != nil {
		close(stopCh)
		err = watcher.Close()
		<-done
	}
	f.bus.Clear()
	return err
}
