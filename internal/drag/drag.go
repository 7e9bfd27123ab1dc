// Package drag turns pointer gestures into at most one stage change per
// drop.
//
// Raw pointer input goes through a Sensor, which emits a tagged event stream
// (Start, Drop, Cancel). The Controller consumes that stream as a state
// machine:
//
//	Idle -> Dragging(activeID) -> Resolved | Cancelled -> Idle
//
// A drop on a column other than the task's current stage issues exactly one
// store update; everything else issues none. The controller never touches
// the local cache: the board shows the new stage once the subscription
// pushes the updated snapshot.
package drag

import (
	"context"
	"fmt"
	"sync"

	"github.com/AGLOP-1354/taskboard/internal/event"
	"github.com/AGLOP-1354/taskboard/internal/logging"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// Event is one entry of the drag event stream.
type Event interface {
	TaskID() string
	isDragEvent()
}

// Start begins a drag of task ID.
type Start struct{ ID string }

// Drop ends a drag over Target. An empty Target means the pointer was
// released outside every column.
type Drop struct {
	ID     string
	Target task.Status
}

// Cancel aborts the drag of task ID.
type Cancel struct{ ID string }

func (e Start) TaskID() string  { return e.ID }
func (e Drop) TaskID() string   { return e.ID }
func (e Cancel) TaskID() string { return e.ID }

func (Start) isDragEvent()  {}
func (Drop) isDragEvent()   {}
func (Cancel) isDragEvent() {}

// State is the controller state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Outcome is what handling one event decided.
type Outcome int

const (
	// Ignored: the event did not apply to the current state.
	Ignored Outcome = iota
	// Started: the controller entered Dragging.
	Started
	// Unchanged: dropped on the task's current column; no store call.
	Unchanged
	// Resolved: dropped on another column; one store update is due.
	Resolved
	// Cancelled: the drag ended without a store call.
	Cancelled
)

var outcomeNames = map[Outcome]string{
	Ignored:   "ignored",
	Started:   "started",
	Unchanged: "unchanged",
	Resolved:  "resolved",
	Cancelled: "cancelled",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Decision describes the transition taken for one event.
type Decision struct {
	Outcome Outcome
	TaskID  string
	From    task.Status
	To      task.Status
	// Patch is set only when Outcome is Resolved.
	Patch task.Patch
	// Reason explains Ignored and Cancelled outcomes.
	Reason string
}

// Lookup resolves a task's current state. *cache.Cache implements it.
type Lookup interface {
	Get(id string) (task.Task, bool)
}

// Updater issues the stage change. store.Writer implements it.
type Updater interface {
	Update(ctx context.Context, id string, patch task.Patch) error
}

// Controller is the drag state machine. It is safe for concurrent use.
type Controller struct {
	lookup  Lookup
	updater Updater
	bus     *event.Bus
	logger  *logging.Logger

	mu       sync.Mutex
	state    State
	activeID string
}

// NewController creates an idle controller. bus and logger may be nil.
func NewController(lookup Lookup, updater Updater, bus *event.Bus, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Controller{
		lookup:  lookup,
		updater: updater,
		bus:     bus,
		logger:  logger.WithComponent("drag"),
	}
}

// State returns the current state and the active task ID, if any.
func (c *Controller) State() (State, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.activeID
}

// Handle applies e to the state machine and reports the decision without
// calling the store.
func (c *Controller) Handle(e Event) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev := e.(type) {
	case Start:
		if c.state == Dragging {
			return Decision{Outcome: Ignored, TaskID: ev.ID, Reason: "drag already active for " + c.activeID}
		}
		c.state, c.activeID = Dragging, ev.ID
		return Decision{Outcome: Started, TaskID: ev.ID}

	case Drop:
		if reason, ok := c.checkActiveLocked(ev.ID); !ok {
			return Decision{Outcome: Ignored, TaskID: ev.ID, Reason: reason}
		}
		c.resetLocked()
		if ev.Target == "" {
			return Decision{Outcome: Cancelled, TaskID: ev.ID, Reason: "dropped outside any column"}
		}
		if !ev.Target.Valid() {
			return Decision{Outcome: Cancelled, TaskID: ev.ID, Reason: "unknown column " + string(ev.Target)}
		}
		current, found := c.lookup.Get(ev.ID)
		if !found {
			return Decision{Outcome: Cancelled, TaskID: ev.ID, To: ev.Target, Reason: "task no longer exists"}
		}
		if current.Status == ev.Target {
			return Decision{Outcome: Unchanged, TaskID: ev.ID, From: current.Status, To: ev.Target}
		}
		return Decision{
			Outcome: Resolved,
			TaskID:  ev.ID,
			From:    current.Status,
			To:      ev.Target,
			Patch:   task.MoveTo(ev.Target),
		}

	case Cancel:
		if reason, ok := c.checkActiveLocked(ev.ID); !ok {
			return Decision{Outcome: Ignored, TaskID: ev.ID, Reason: reason}
		}
		c.resetLocked()
		return Decision{Outcome: Cancelled, TaskID: ev.ID, Reason: "aborted"}
	}

	return Decision{Outcome: Ignored, Reason: fmt.Sprintf("unknown event %T", e)}
}

func (c *Controller) checkActiveLocked(id string) (string, bool) {
	if c.state != Dragging {
		return "no active drag", false
	}
	if id != c.activeID {
		return "event for " + id + " while dragging " + c.activeID, false
	}
	return "", true
}

func (c *Controller) resetLocked() {
	c.state, c.activeID = Idle, ""
}

// Dispatch handles e and, for a Resolved decision, issues the update. The
// update error is returned unchanged so the caller can report it.
func (c *Controller) Dispatch(ctx context.Context, e Event) (Decision, error) {
	d := c.Handle(e)

	switch d.Outcome {
	case Resolved:
		c.logger.Info("drag resolved", "task_id", d.TaskID, "from", string(d.From), "to", string(d.To))
		if err := c.updater.Update(ctx, d.TaskID, d.Patch); err != nil {
			c.logger.Warn("stage change failed", "task_id", d.TaskID, "error", err.Error())
			return d, err
		}
		c.publish(event.NewDragResolvedEvent(d.TaskID, string(d.From), string(d.To)))
	case Unchanged:
		c.logger.Debug("drag dropped on current column", "task_id", d.TaskID, "status", string(d.To))
	case Cancelled:
		c.logger.Debug("drag cancelled", "task_id", d.TaskID, "reason", d.Reason)
		c.publish(event.NewDragCancelledEvent(d.TaskID, d.Reason))
	case Ignored:
		c.logger.Debug("drag event ignored", "task_id", d.TaskID, "reason", d.Reason)
	}
	return d, nil
}

func (c *Controller) publish(e event.Event) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}
