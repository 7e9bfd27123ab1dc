// Package event defines the events exchanged between the store backends,
// the drag controller and the user interfaces.
package event

import (
	"time"

	"github.com/AGLOP-1354/taskboard/internal/task"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "task.created", "drag.resolved")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// Event type identifiers.
const (
	TypeTaskCreated       = "task.created"
	TypeTaskUpdated       = "task.updated"
	TypeTaskDeleted       = "task.deleted"
	TypeCollectionChanged = "collection.changed"
	TypeDragResolved      = "drag.resolved"
	TypeDragCancelled     = "drag.cancelled"
	TypeSnapshotApplied   = "cache.snapshot_applied"
)

// -----------------------------------------------------------------------------
// Store Events
// -----------------------------------------------------------------------------

// TaskCreatedEvent is emitted after a record has been written by create.
type TaskCreatedEvent struct {
	baseEvent
	Collection string
	TaskID     string
}

// NewTaskCreatedEvent creates a TaskCreatedEvent.
func NewTaskCreatedEvent(collection, taskID string) TaskCreatedEvent {
	return TaskCreatedEvent{
		baseEvent:  newBaseEvent(TypeTaskCreated),
		Collection: collection,
		TaskID:     taskID,
	}
}

// TaskUpdatedEvent is emitted after a record has been merged by update.
type TaskUpdatedEvent struct {
	baseEvent
	Collection string
	TaskID     string
}

// NewTaskUpdatedEvent creates a TaskUpdatedEvent.
func NewTaskUpdatedEvent(collection, taskID string) TaskUpdatedEvent {
	return TaskUpdatedEvent{
		baseEvent:  newBaseEvent(TypeTaskUpdated),
		Collection: collection,
		TaskID:     taskID,
	}
}

// TaskDeletedEvent is emitted after a record has been removed.
type TaskDeletedEvent struct {
	baseEvent
	Collection string
	TaskID     string
}

// NewTaskDeletedEvent creates a TaskDeletedEvent.
func NewTaskDeletedEvent(collection, taskID string) TaskDeletedEvent {
	return TaskDeletedEvent{
		baseEvent:  newBaseEvent(TypeTaskDeleted),
		Collection: collection,
		TaskID:     taskID,
	}
}

// CollectionChangedEvent is emitted when a collection changed by a writer
// outside this process (another CLI invocation editing the same file).
type CollectionChangedEvent struct {
	baseEvent
	Collection string
}

// NewCollectionChangedEvent creates a CollectionChangedEvent.
func NewCollectionChangedEvent(collection string) CollectionChangedEvent {
	return CollectionChangedEvent{
		baseEvent:  newBaseEvent(TypeCollectionChanged),
		Collection: collection,
	}
}

// IsCollectionChange reports whether e signals that a collection's
// contents may differ from the last snapshot.
func IsCollectionChange(e Event) bool {
	switch e.EventType() {
	case TypeTaskCreated, TypeTaskUpdated, TypeTaskDeleted, TypeCollectionChanged:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------
// Drag Events
// -----------------------------------------------------------------------------

// DragResolvedEvent is emitted when a drop issued a stage change.
type DragResolvedEvent struct {
	baseEvent
	TaskID string
	From   string
	To     string
}

// NewDragResolvedEvent creates a DragResolvedEvent.
func NewDragResolvedEvent(taskID, from, to string) DragResolvedEvent {
	return DragResolvedEvent{
		baseEvent: newBaseEvent(TypeDragResolved),
		TaskID:    taskID,
		From:      from,
		To:        to,
	}
}

// DragCancelledEvent is emitted when a drag ended without a store call.
type DragCancelledEvent struct {
	baseEvent
	TaskID string
	Reason string
}

// NewDragCancelledEvent creates a DragCancelledEvent.
func NewDragCancelledEvent(taskID, reason string) DragCancelledEvent {
	return DragCancelledEvent{
		baseEvent: newBaseEvent(TypeDragCancelled),
		TaskID:    taskID,
		Reason:    reason,
	}
}

// -----------------------------------------------------------------------------
// Cache Events
// -----------------------------------------------------------------------------

// SnapshotAppliedEvent is emitted by the local cache after it replaced its
// contents with a newly delivered snapshot.
type SnapshotAppliedEvent struct {
	baseEvent
	Version uint64
	Tasks   []task.Task
}

// NewSnapshotAppliedEvent creates a SnapshotAppliedEvent.
func NewSnapshotAppliedEvent(version uint64, tasks []task.Task) SnapshotAppliedEvent {
	return SnapshotAppliedEvent{
		baseEvent: newBaseEvent(TypeSnapshotApplied),
		Version:   version,
		Tasks:     tasks,
	}
}
