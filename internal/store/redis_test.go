package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

func openRedis(t *testing.T) Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	clock := newFakeClock()
	s := NewRedis(client, "taskboard", "todos", WithClock(clock.Now), WithIDGenerator(sequentialIDs()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRedis_Conformance(t *testing.T) {
	runConformance(t, openRedis)
}

func TestRedis_KeyLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedis(client, "tb", "work", WithIDGenerator(sequentialIDs()))
	defer s.Close()

	id, err := s.Create(context.Background(), task.NewTaskData{Title: "x"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !mr.Exists("tb:work") {
		t.Fatal("hash tb:work not created")
	}
	got, err := mr.HKeys("tb:work")
	if err != nil {
		t.Fatalf("HKeys() error = %v", err)
	}
	if len(got) != 1 || got[0] != id {
		t.Errorf("HKeys = %v, want [%s]", got, id)
	}
}

func TestRedis_LegacyAndCorruptRecords(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.HSet("taskboard:todos", "legacy", `{"title":"old","completed":true,"createdAt":"2023-01-01T00:00:00Z","updatedAt":"2023-01-01T00:00:00Z","dueDate":null}`)
	mr.HSet("taskboard:todos", "broken", `{"title":`)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedis(client, "taskboard", "todos")
	defer s.Close()

	tasks, err := Fetch(context.Background(), s)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("len = %d, want 1 (corrupt record skipped)", len(tasks))
	}
	if tasks[0].Status != task.StatusCompleted || !tasks[0].Completed {
		t.Errorf("legacy record = %v", tasks[0])
	}
}

func TestRedis_SeesWritesFromOtherClients(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	watcher := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "taskboard", "todos")
	defer watcher.Close()
	writer := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "taskboard", "todos")
	defer writer.Close()

	rec := newRecorder()
	unsub, err := watcher.Subscribe(rec.fn)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer unsub()
	rec.waitLen(t, 0)

	if _, err := writer.Create(ctx, task.NewTaskData{Title: "remote write"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	rec.waitLen(t, 1)
}

func TestRedis_DeleteAnnouncesOnlyRemovals(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "taskboard", "todos", WithIDGenerator(sequentialIDs()))
	defer s.Close()

	listener := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer listener.Close()
	pubsub := listener.Subscribe(ctx, "taskboard:todos:changes")
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		t.Fatalf("Receive() error = %v", err)
	}

	err := s.Delete(ctx, "missing")
	if !errors.Is(err, errors.ErrTaskNotFound) {
		t.Fatalf("Delete(missing) error = %v, want task not found", err)
	}

	id, err := s.Create(ctx, task.NewTaskData{Title: "x"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var ops []string
	for len(ops) < 2 {
		recvCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		msg, err := pubsub.ReceiveMessage(recvCtx)
		cancel()
		if err != nil {
			t.Fatalf("ReceiveMessage() error = %v after %v", err, ops)
		}
		var c change
		if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
			t.Fatalf("bad announcement %q: %v", msg.Payload, err)
		}
		if c.ID == "missing" {
			t.Fatalf("announcement published for a missing record: %q", msg.Payload)
		}
		ops = append(ops, c.Op)
	}
	if ops[0] != "create" || ops[1] != "delete" {
		t.Errorf("announcements = %v, want [create delete]", ops)
	}
}

func TestRedis_SubscribeAfterClose(t *testing.T) {
	s := openRedis(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := s.Subscribe(func([]task.Task) {}); !errors.Is(err, errors.ErrStoreClosed) {
		t.Errorf("Subscribe() after Close error = %v, want store closed", err)
	}
}
