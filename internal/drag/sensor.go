package drag

import "github.com/AGLOP-1354/taskboard/internal/task"

// DefaultActivationDistance is how far, in terminal cells, the pointer must
// travel after a press before the press becomes a drag.
const DefaultActivationDistance = 2

// Sensor converts raw pointer input into drag events. A press only turns
// into a drag once the pointer has moved past the activation distance
// from where it went down, so plain clicks never start one. It is not safe
// for concurrent use; feed it from a single input loop.
type Sensor struct {
	distance int
	emit     func(Event)

	pressed bool
	active  bool
	id      string
	originX int
	originY int
}

// NewSensor creates a sensor that passes events to emit. A negative
// distance is treated as zero.
func NewSensor(distance int, emit func(Event)) *Sensor {
	if distance < 0 {
		distance = 0
	}
	return &Sensor{distance: distance, emit: emit}
}

// Press records a pointer down on task id at (x, y). A press while a drag
// is active aborts that drag first.
func (s *Sensor) Press(id string, x, y int) {
	if s.active {
		s.emit(Cancel{ID: s.id})
	}
	s.pressed, s.active = true, false
	s.id = id
	s.originX, s.originY = x, y
}

// Move reports pointer motion. It emits Start once per gesture.
func (s *Sensor) Move(x, y int) {
	if !s.pressed || s.active {
		return
	}
	dx, dy := x-s.originX, y-s.originY
	if dx*dx+dy*dy <= s.distance*s.distance {
		return
	}
	s.active = true
	s.emit(Start{ID: s.id})
}

// Release ends the gesture over target, which is empty when the pointer is
// not over a column. It reports whether the gesture was a click, in which
// case no events were emitted.
func (s *Sensor) Release(x, y int, target task.Status) (clicked bool) {
	if !s.pressed {
		return false
	}
	s.Move(x, y)
	if s.active {
		s.emit(Drop{ID: s.id, Target: target})
	}
	clicked = !s.active
	s.reset()
	return clicked
}

// Abort cancels the gesture, emitting Cancel if a drag was active.
func (s *Sensor) Abort() {
	if s.active {
		s.emit(Cancel{ID: s.id})
	}
	s.reset()
}

// Active reports whether a drag is in progress and which task it carries.
func (s *Sensor) Active() (string, bool) {
	if !s.active {
		return "", false
	}
	return s.id, true
}

func (s *Sensor) reset() {
	s.pressed, s.active = false, false
	s.id = ""
}
