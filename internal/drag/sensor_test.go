package drag

import (
	"testing"

	"github.com/AGLOP-1354/taskboard/internal/task"
)

type eventLog struct{ events []Event }

func (l *eventLog) emit(e Event) { l.events = append(l.events, e) }

func TestSensor_ClickEmitsNothing(t *testing.T) {
	log := &eventLog{}
	s := NewSensor(2, log.emit)

	s.Press("t1", 10, 5)
	s.Move(11, 5)
	if clicked := s.Release(11, 5, task.StatusCompleted); !clicked {
		t.Error("Release() clicked = false for a short gesture")
	}
	if len(log.events) != 0 {
		t.Errorf("events = %v, want none", log.events)
	}
}

func TestSensor_DragAfterActivationDistance(t *testing.T) {
	log := &eventLog{}
	s := NewSensor(2, log.emit)

	s.Press("t1", 10, 5)
	s.Move(11, 5) // below threshold
	s.Move(12, 5) // at threshold
	s.Move(20, 5) // past it
	s.Move(30, 6)
	if id, ok := s.Active(); !ok || id != "t1" {
		t.Errorf("Active() = %q, %v", id, ok)
	}
	if clicked := s.Release(30, 6, task.StatusCompleted); clicked {
		t.Error("Release() clicked = true for a drag")
	}

	want := []Event{Start{ID: "t1"}, Drop{ID: "t1", Target: task.StatusCompleted}}
	if len(log.events) != len(want) {
		t.Fatalf("events = %v, want %v", log.events, want)
	}
	for i := range want {
		if log.events[i] != want[i] {
			t.Errorf("event[%d] = %#v, want %#v", i, log.events[i], want[i])
		}
	}
	if _, ok := s.Active(); ok {
		t.Error("still active after release")
	}
}

func TestSensor_ActivationThreshold(t *testing.T) {
	tests := []struct {
		name      string
		dx, dy    int
		wantStart bool
	}{
		{"exactly the distance horizontally", 2, 0, false},
		{"exactly the distance vertically", 0, -2, false},
		{"one cell past", 3, 0, true},
		{"diagonal past", 2, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &eventLog{}
			s := NewSensor(2, log.emit)

			s.Press("t1", 10, 10)
			s.Move(10+tt.dx, 10+tt.dy)
			if _, ok := s.Active(); ok != tt.wantStart {
				t.Errorf("Active() = %v, want %v", ok, tt.wantStart)
			}
			if got := len(log.events) == 1; got != tt.wantStart {
				t.Errorf("events = %v, want start = %v", log.events, tt.wantStart)
			}
		})
	}
}

func TestSensor_ReleaseFarAwayWithoutMoves(t *testing.T) {
	log := &eventLog{}
	s := NewSensor(2, log.emit)

	s.Press("t1", 0, 0)
	s.Release(0, 9, "")

	if len(log.events) != 2 {
		t.Fatalf("events = %v, want start and drop", log.events)
	}
	if drop, ok := log.events[1].(Drop); !ok || drop.Target != "" {
		t.Errorf("event[1] = %#v, want drop outside any column", log.events[1])
	}
}

func TestSensor_Abort(t *testing.T) {
	log := &eventLog{}
	s := NewSensor(1, log.emit)

	s.Abort() // nothing pressed
	s.Press("t1", 0, 0)
	s.Abort() // pressed, not dragging
	if len(log.events) != 0 {
		t.Fatalf("events = %v, want none", log.events)
	}

	s.Press("t1", 0, 0)
	s.Move(3, 0)
	s.Abort()
	if len(log.events) != 2 || log.events[1] != (Cancel{ID: "t1"}) {
		t.Errorf("events = %v, want start then cancel", log.events)
	}
}

func TestSensor_PressDuringDragCancelsIt(t *testing.T) {
	log := &eventLog{}
	s := NewSensor(1, log.emit)

	s.Press("t1", 0, 0)
	s.Move(2, 0)
	s.Press("t2", 5, 5)

	if len(log.events) != 2 || log.events[1] != (Cancel{ID: "t1"}) {
		t.Errorf("events = %v", log.events)
	}
}

func TestSensor_FeedsController(t *testing.T) {
	up := &fakeUpdater{}
	c := NewController(board(), up, nil, nil)
	s := NewSensor(DefaultActivationDistance, func(e Event) { c.Handle(e) })

	s.Press("t2", 0, 0)
	s.Move(0, 3)
	s.Release(0, 3, task.StatusTodo)

	if state, _ := c.State(); state != Idle {
		t.Errorf("controller State = %v, want idle", state)
	}
}
