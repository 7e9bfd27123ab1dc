package drag

import (
	"context"
	"fmt"
	"testing"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/event"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

type fakeLookup map[string]task.Task

func (f fakeLookup) Get(id string) (task.Task, bool) {
	t, ok := f[id]
	return t, ok
}

type updateCall struct {
	id    string
	patch task.Patch
}

type fakeUpdater struct {
	calls []updateCall
	err   error
}

func (f *fakeUpdater) Update(_ context.Context, id string, patch task.Patch) error {
	f.calls = append(f.calls, updateCall{id: id, patch: patch})
	return f.err
}

func board() fakeLookup {
	return fakeLookup{
		"t1": {ID: "t1", Status: task.StatusTodo},
		"t2": {ID: "t2", Status: task.StatusInProgress},
	}
}

func TestDispatch_DropOnSameColumnIsNoop(t *testing.T) {
	up := &fakeUpdater{}
	c := NewController(board(), up, nil, nil)
	ctx := context.Background()

	c.Dispatch(ctx, Start{ID: "t1"})
	d, err := c.Dispatch(ctx, Drop{ID: "t1", Target: task.StatusTodo})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if d.Outcome != Unchanged {
		t.Errorf("Outcome = %v, want unchanged", d.Outcome)
	}
	if len(up.calls) != 0 {
		t.Errorf("update calls = %d, want 0", len(up.calls))
	}
	if state, _ := c.State(); state != Idle {
		t.Errorf("State = %v, want idle", state)
	}
}

func TestDispatch_DropOnOtherColumnUpdatesOnce(t *testing.T) {
	up := &fakeUpdater{}
	c := NewController(board(), up, nil, nil)
	ctx := context.Background()

	c.Dispatch(ctx, Start{ID: "t1"})
	d, err := c.Dispatch(ctx, Drop{ID: "t1", Target: task.StatusCompleted})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if d.Outcome != Resolved || d.From != task.StatusTodo || d.To != task.StatusCompleted {
		t.Errorf("Decision = %+v", d)
	}
	if len(up.calls) != 1 {
		t.Fatalf("update calls = %d, want 1", len(up.calls))
	}

	call := up.calls[0]
	if call.id != "t1" {
		t.Errorf("updated %q, want t1", call.id)
	}
	p := call.patch
	if p.Status == nil || *p.Status != task.StatusCompleted {
		t.Errorf("patch status = %v, want completed", p.Status)
	}
	if p.Completed == nil || !*p.Completed {
		t.Errorf("patch completed = %v, want true", p.Completed)
	}
	if p.Title != nil || p.Description != nil || p.Priority != nil || p.DueDate != nil {
		t.Errorf("patch carries unrelated fields: %+v", p)
	}
}

func TestDispatch_MoveOutOfCompletedClearsFlag(t *testing.T) {
	up := &fakeUpdater{}
	lookup := fakeLookup{"t3": {ID: "t3", Status: task.StatusCompleted, Completed: true}}
	c := NewController(lookup, up, nil, nil)

	c.Dispatch(context.Background(), Start{ID: "t3"})
	c.Dispatch(context.Background(), Drop{ID: "t3", Target: task.StatusInProgress})

	if len(up.calls) != 1 || *up.calls[0].patch.Completed {
		t.Errorf("calls = %+v, want one update with completed=false", up.calls)
	}
}

func TestHandle_Transitions(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   Outcome
		state  State
	}{
		{"start", []Event{Start{ID: "t1"}}, Started, Dragging},
		{"second start ignored", []Event{Start{ID: "t1"}, Start{ID: "t2"}}, Ignored, Dragging},
		{"drop outside", []Event{Start{ID: "t1"}, Drop{ID: "t1"}}, Cancelled, Idle},
		{"drop on unknown column", []Event{Start{ID: "t1"}, Drop{ID: "t1", Target: "archive"}}, Cancelled, Idle},
		{"cancel", []Event{Start{ID: "t1"}, Cancel{ID: "t1"}}, Cancelled, Idle},
		{"drop without start", []Event{Drop{ID: "t1", Target: task.StatusCompleted}}, Ignored, Idle},
		{"cancel without start", []Event{Cancel{ID: "t1"}}, Ignored, Idle},
		{"drop for other id", []Event{Start{ID: "t1"}, Drop{ID: "t2", Target: task.StatusCompleted}}, Ignored, Dragging},
		{"vanished task", []Event{Start{ID: "gone"}, Drop{ID: "gone", Target: task.StatusCompleted}}, Cancelled, Idle},
		{"restart after resolve", []Event{Start{ID: "t1"}, Drop{ID: "t1", Target: task.StatusTodo}, Start{ID: "t2"}}, Started, Dragging},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(board(), &fakeUpdater{}, nil, nil)
			var d Decision
			for _, e := range tt.events {
				d = c.Handle(e)
			}
			if d.Outcome != tt.want {
				t.Errorf("Outcome = %v, want %v (reason %q)", d.Outcome, tt.want, d.Reason)
			}
			if state, _ := c.State(); state != tt.state {
				t.Errorf("State = %v, want %v", state, tt.state)
			}
		})
	}
}

func TestDispatch_ForeignDropDoesNotUpdate(t *testing.T) {
	up := &fakeUpdater{}
	c := NewController(board(), up, nil, nil)
	ctx := context.Background()

	c.Dispatch(ctx, Start{ID: "t1"})
	c.Dispatch(ctx, Drop{ID: "t2", Target: task.StatusCompleted})
	if len(up.calls) != 0 {
		t.Errorf("update calls = %d, want 0", len(up.calls))
	}
	if _, active := c.State(); active != "t1" {
		t.Errorf("active = %q, want t1", active)
	}
}

func TestDispatch_UpdateErrorPropagates(t *testing.T) {
	cause := errors.NewRemoteOperationError(errors.OpUpdate, fmt.Errorf("permission denied"))
	up := &fakeUpdater{err: cause}
	bus := event.NewBus(nil)
	resolved := 0
	bus.Subscribe(event.TypeDragResolved, func(event.Event) { resolved++ })

	c := NewController(board(), up, bus, nil)
	c.Dispatch(context.Background(), Start{ID: "t1"})
	_, err := c.Dispatch(context.Background(), Drop{ID: "t1", Target: task.StatusCompleted})

	var opErr *errors.RemoteOperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("Dispatch() error = %v, want RemoteOperationError", err)
	}
	if resolved != 0 {
		t.Error("drag.resolved published for a failed update")
	}
	if state, _ := c.State(); state != Idle {
		t.Errorf("State = %v, want idle after failed update", state)
	}
}

func TestDispatch_PublishesEvents(t *testing.T) {
	bus := event.NewBus(nil)
	var got []string
	bus.SubscribeAll(func(e event.Event) { got = append(got, e.EventType()) })

	c := NewController(board(), &fakeUpdater{}, bus, nil)
	ctx := context.Background()
	c.Dispatch(ctx, Start{ID: "t1"})
	c.Dispatch(ctx, Drop{ID: "t1", Target: task.StatusInProgress})
	c.Dispatch(ctx, Start{ID: "t2"})
	c.Dispatch(ctx, Cancel{ID: "t2"})

	want := []string{event.TypeDragResolved, event.TypeDragCancelled}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestOutcome_String(t *testing.T) {
	if Resolved.String() != "resolved" || Outcome(42).String() != "outcome(42)" {
		t.Errorf("unexpected names: %q %q", Resolved.String(), Outcome(42).String())
	}
	if Dragging.String() != "dragging" || Idle.String() != "idle" {
		t.Error("unexpected state names")
	}
}
