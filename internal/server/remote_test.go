package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/store"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

func newRemote(t *testing.T, f *fixture) *store.Remote {
	t.Helper()
	r, err := store.NewRemote(store.RemoteConfig{
		BaseURL:        f.ts.URL,
		RequestTimeout: 2 * time.Second,
		ReconnectDelay: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewRemote() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

type snapshots chan []task.Task

func (s snapshots) push(tasks []task.Task) { s <- tasks }

func (s snapshots) waitFor(t *testing.T, desc string, pred func([]task.Task) bool) []task.Task {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case tasks := <-s:
			if pred(tasks) {
				return tasks
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", desc)
			return nil
		}
	}
}

func TestRemote_RoundTrip(t *testing.T) {
	f := newFixture(t)
	r := newRemote(t, f)
	ctx := context.Background()

	snaps := make(snapshots, 64)
	unsub, err := r.Subscribe(snaps.push)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer unsub()
	snaps.waitFor(t, "initial snapshot", func(ts []task.Task) bool { return len(ts) == 0 })

	id, err := r.Create(ctx, task.NewTaskData{Title: "over the wire"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got := snaps.waitFor(t, "created", func(ts []task.Task) bool { return len(ts) == 1 })[0]
	if got.ID != id || got.Status != task.StatusTodo || got.Priority != task.PriorityMedium {
		t.Errorf("created = %+v", got)
	}

	done := task.StatusCompleted
	if err := r.Update(ctx, id, task.Patch{Status: &done}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got = snaps.waitFor(t, "completed", func(ts []task.Task) bool {
		return len(ts) == 1 && ts[0].Status == task.StatusCompleted
	})[0]
	if !got.Completed {
		t.Error("Completed not derived from status")
	}

	if err := r.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	snaps.waitFor(t, "deleted", func(ts []task.Task) bool { return len(ts) == 0 })
}

func TestRemote_ErrorMapping(t *testing.T) {
	f := newFixture(t)
	r := newRemote(t, f)
	ctx := context.Background()

	err := r.Update(ctx, "missing", task.MoveTo(task.StatusCompleted))
	if !errors.IsNotFound(err) {
		t.Errorf("Update(missing) error = %v, want not found", err)
	}
	var opErr *errors.RemoteOperationError
	if !errors.As(err, &opErr) || opErr.Op != errors.OpUpdate || opErr.Backend != store.BackendRemote {
		t.Errorf("Update(missing) error = %#v", err)
	}

	if err := r.Delete(ctx, "missing"); !errors.IsNotFound(err) {
		t.Errorf("Delete(missing) error = %v, want not found", err)
	}

	_, err = r.Create(ctx, task.NewTaskData{Title: ""})
	var verr *errors.ValidationError
	if !errors.As(err, &verr) || verr.Field != "title" {
		t.Errorf("Create(blank) error = %v, want title validation error", err)
	}
}

func TestRemote_UnreachableServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	r, err := store.NewRemote(store.RemoteConfig{
		BaseURL:        "http://" + addr,
		RequestTimeout: time.Second,
		ReconnectDelay: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	_, err = r.Create(context.Background(), task.NewTaskData{Title: "x"})
	if err == nil {
		t.Fatal("Create() against a closed port succeeded")
	}
	if !errors.IsRetryable(err) {
		t.Errorf("IsRetryable(%v) = false", err)
	}

	// The watch loop keeps retrying without surfacing anything.
	unsub, err := r.Subscribe(func([]task.Task) { t.Error("unexpected snapshot") })
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	unsub()
	unsub()
}

func TestRemote_ServerShutdownEndsStream(t *testing.T) {
	f := newFixture(t)
	r := newRemote(t, f)

	snaps := make(snapshots, 16)
	unsub, err := r.Subscribe(snaps.push)
	if err != nil {
		t.Fatal(err)
	}
	defer unsub()
	snaps.waitFor(t, "initial snapshot", func(ts []task.Task) bool { return true })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	// Closing the remote must not hang while it is reconnecting.
	closed := make(chan struct{})
	go func() {
		_ = r.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(3 * time.Second):
		t.Fatal("Remote.Close() hung after server shutdown")
	}
}

func TestNewRemote_InvalidURL(t *testing.T) {
	if _, err := store.NewRemote(store.RemoteConfig{BaseURL: "::not a url"}); err == nil {
		t.Error("NewRemote() accepted an invalid URL")
	}
}
