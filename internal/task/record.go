package task

import (
	"time"

	"github.com/AGLOP-1354/taskboard/internal/errors"
)

// Record is the persisted shape of a task inside a collection. The ID is
// the record's key and is not part of the body.
//
// Status and Priority are pointers so that records written before those
// fields existed decode with them absent; FromRecord applies the legacy
// migration rule on read.
type Record struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DueDate     *time.Time `json:"dueDate"`
}

// NewRecord builds the record for a create request: stage todo, not
// completed, both timestamps set to now and priority defaulted to medium.
func NewRecord(data NewTaskData, now time.Time) Record {
	status := StatusTodo
	priority := data.Priority
	if priority == "" {
		priority = DefaultPriority
	}
	return Record{
		Title:       data.Title,
		Description: data.Description,
		Completed:   false,
		Status:      &status,
		Priority:    &priority,
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDate:     cloneTime(data.DueDate),
	}
}

// ValidateNew checks the enum fields of a create request. Field lengths and
// due dates are checked by the form controller before submission.
func ValidateNew(data NewTaskData) error {
	if data.Priority != "" && !data.Priority.Valid() {
		return errors.NewValidationError("unknown priority").WithField("priority").WithValue(string(data.Priority))
	}
	return nil
}

// FromRecord converts a stored record to a Task.
//
// A record without a status is read as completed when its completed flag is
// set and as todo otherwise. When a status is present it is authoritative
// and Completed is derived from it, so every task returned here satisfies
// Completed == (Status == StatusCompleted).
func FromRecord(id string, r Record) Task {
	var status Status
	if r.Status != nil && r.Status.Valid() {
		status = *r.Status
	} else if r.Completed {
		status = StatusCompleted
	} else {
		status = StatusTodo
	}

	priority := DefaultPriority
	if r.Priority != nil && r.Priority.Valid() {
		priority = *r.Priority
	}

	return Task{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Status:      status,
		Completed:   status == StatusCompleted,
		Priority:    priority,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		DueDate:     cloneTime(r.DueDate),
	}
}

// ToRecord converts a Task back to its persisted shape.
func ToRecord(t Task) Record {
	status := t.Status
	priority := t.Priority
	return Record{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Status:      &status,
		Priority:    &priority,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		DueDate:     cloneTime(t.DueDate),
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
