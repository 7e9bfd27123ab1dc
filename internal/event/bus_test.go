package event

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestBus_SubscribeAndPublish(t *testing.T) {
	bus := NewBus(nil)

	var received Event
	id := bus.Subscribe(TypeTaskCreated, func(e Event) {
		received = e
	})
	if id == "" {
		t.Fatal("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}

	bus.Publish(NewTaskCreatedEvent("todos", "t1"))

	created, ok := received.(TaskCreatedEvent)
	if !ok {
		t.Fatalf("handler received %T, want TaskCreatedEvent", received)
	}
	if created.TaskID != "t1" || created.Collection != "todos" {
		t.Errorf("unexpected event: %+v", created)
	}
	if created.Timestamp().IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestBus_SpecificBeforeWildcard(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(e Event) { order = append(order, "all") })
	bus.Subscribe(TypeTaskDeleted, func(e Event) { order = append(order, "specific") })
	bus.Subscribe(TypeTaskUpdated, func(e Event) { order = append(order, "other") })

	bus.Publish(NewTaskDeletedEvent("todos", "t1"))

	if len(order) != 2 || order[0] != "specific" || order[1] != "all" {
		t.Errorf("order = %v, want [specific all]", order)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	id := bus.SubscribeAll(func(e Event) { calls++ })

	if !bus.Unsubscribe(id) {
		t.Error("Unsubscribe should return true when subscription exists")
	}
	if bus.Unsubscribe(id) {
		t.Error("second Unsubscribe should return false")
	}
	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions, got %d", bus.SubscriptionCount())
	}

	bus.Publish(NewCollectionChangedEvent("todos"))
	if calls != 0 {
		t.Error("Handler should not be called after unsubscribing")
	}
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus(nil)

	var id string
	calls := 0
	id = bus.SubscribeAll(func(e Event) {
		calls++
		bus.Unsubscribe(id)
	})

	bus.Publish(NewCollectionChangedEvent("todos"))
	bus.Publish(NewCollectionChangedEvent("todos"))

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus(nil)
	bus.Subscribe(TypeTaskCreated, func(e Event) {})
	bus.SubscribeAll(func(e Event) {})

	bus.Clear()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after clear, got %d", bus.SubscriptionCount())
	}
}

func TestBus_HandlerPanicRecovery(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	bus.Subscribe(TypeTaskUpdated, func(e Event) {
		calls++
		panic("handler panic")
	})
	bus.Subscribe(TypeTaskUpdated, func(e Event) {
		calls++
	})

	bus.Publish(NewTaskUpdatedEvent("todos", "t1"))

	if calls != 2 {
		t.Errorf("Expected both handlers to be called despite panic, got %d calls", calls)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var count atomic.Int64
	bus.SubscribeAll(func(e Event) { count.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				bus.Publish(NewCollectionChangedEvent("todos"))
			}
		}()
	}
	wg.Wait()

	if got := count.Load(); got != 1000 {
		t.Errorf("count = %d, want 1000", got)
	}
}

func TestIsCollectionChange(t *testing.T) {
	tests := []struct {
		event Event
		want  bool
	}{
		{NewTaskCreatedEvent("c", "1"), true},
		{NewTaskUpdatedEvent("c", "1"), true},
		{NewTaskDeletedEvent("c", "1"), true},
		{NewCollectionChangedEvent("c"), true},
		{NewDragResolvedEvent("1", "todo", "completed"), false},
		{NewDragCancelledEvent("1", "no target"), false},
	}
	for _, tt := range tests {
		if got := IsCollectionChange(tt.event); got != tt.want {
			t.Errorf("IsCollectionChange(%s) = %v, want %v", tt.event.EventType(), got, tt.want)
		}
	}
}
