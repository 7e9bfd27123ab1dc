package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/store"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// fakeSource hands the test direct control over deliveries.
type fakeSource struct {
	mu           sync.Mutex
	deliver      store.SnapshotFunc
	unsubscribed int
	err          error
}

func (f *fakeSource) Subscribe(fn store.SnapshotFunc) (store.Unsubscribe, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.deliver = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.unsubscribed++
		f.mu.Unlock()
	}, nil
}

func (f *fakeSource) push(tasks ...task.Task) {
	f.mu.Lock()
	fn := f.deliver
	f.mu.Unlock()
	fn(tasks)
}

func TestCache_ReplacesWholesale(t *testing.T) {
	src := &fakeSource{}
	c := New(src, nil)
	if err := c.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer c.Close()

	if c.Version() != 0 || c.Len() != 0 {
		t.Fatalf("fresh cache: version=%d len=%d", c.Version(), c.Len())
	}

	src.push(task.Task{ID: "a"}, task.Task{ID: "b"})
	src.push(task.Task{ID: "c"})

	if got := c.Version(); got != 2 {
		t.Errorf("Version() = %d, want 2", got)
	}
	snap := c.Snapshot()
	if len(snap) != 1 || snap[0].ID != "c" {
		t.Errorf("Snapshot() = %v, want only c", snap)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) found a task from a replaced snapshot")
	}
	if got, ok := c.Get("c"); !ok || got.ID != "c" {
		t.Errorf("Get(c) = %v, %v", got, ok)
	}
}

func TestCache_SnapshotIsACopy(t *testing.T) {
	src := &fakeSource{}
	c := New(src, nil)
	_ = c.Start()
	defer c.Close()

	src.push(task.Task{ID: "a", Title: "original"})
	snap := c.Snapshot()
	snap[0].Title = "mutated"

	if got, _ := c.Get("a"); got.Title != "original" {
		t.Errorf("cache contents changed through Snapshot(): %q", got.Title)
	}
}

func TestCache_Ready(t *testing.T) {
	src := &fakeSource{}
	c := New(src, nil)
	_ = c.Start()
	defer c.Close()

	select {
	case <-c.Ready():
		t.Fatal("Ready() closed before first snapshot")
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := c.WaitReady(ctx); err == nil {
		t.Error("WaitReady() succeeded without a snapshot")
	}

	src.push()
	if err := c.WaitReady(context.Background()); err != nil {
		t.Errorf("WaitReady() error = %v", err)
	}
}

func TestCache_OnChange(t *testing.T) {
	src := &fakeSource{}
	c := New(src, nil)
	_ = c.Start()
	defer c.Close()

	var versions []uint64
	remove := c.OnChange(func(v uint64, tasks []task.Task) {
		versions = append(versions, v)
	})

	src.push(task.Task{ID: "a"})
	src.push(task.Task{ID: "b"})
	remove()
	src.push(task.Task{ID: "c"})

	if len(versions) != 2 || versions[0] != 1 || versions[1] != 2 {
		t.Errorf("versions = %v, want [1 2]", versions)
	}
}

func TestCache_CloseUnsubscribesOnce(t *testing.T) {
	src := &fakeSource{}
	c := New(src, nil)
	_ = c.Start()
	src.push(task.Task{ID: "a"})

	c.Close()
	c.Close()
	if src.unsubscribed != 1 {
		t.Errorf("unsubscribed %d times, want 1", src.unsubscribed)
	}

	// A delivery racing Close is ignored.
	src.push(task.Task{ID: "late"})
	if _, ok := c.Get("late"); ok {
		t.Error("snapshot applied after Close")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("last snapshot dropped by Close")
	}
	if err := c.Start(); err == nil {
		t.Error("Start() after Close succeeded")
	}
}

func TestCache_StartTwice(t *testing.T) {
	c := New(&fakeSource{}, nil)
	defer c.Close()
	if err := c.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := c.Start(); err == nil {
		t.Error("second Start() succeeded")
	}
}

func TestCache_StartRetriesAfterSubscribeFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	c := New(src, nil)
	defer c.Close()

	if err := c.Start(); err == nil {
		t.Fatal("Start() succeeded with a failing source")
	}

	src.err = nil
	if err := c.Start(); err != nil {
		t.Fatalf("Start() after a failed subscribe error = %v", err)
	}
	src.push(task.Task{ID: "a"})
	if _, ok := c.Get("a"); !ok {
		t.Error("snapshot not applied after retried Start")
	}
}

func TestCache_WithMemoryStore(t *testing.T) {
	s := store.NewMemory("todos")
	defer s.Close()

	c := New(s, nil)
	if err := c.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer c.Close()

	changed := make(chan uint64, 16)
	c.OnChange(func(v uint64, _ []task.Task) { changed <- v })

	if _, err := s.Create(context.Background(), task.NewTaskData{Title: "x"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	deadline := time.After(3 * time.Second)
	for c.Len() != 1 {
		select {
		case <-changed:
		case <-deadline:
			t.Fatal("cache never saw the created task")
		}
	}
}
