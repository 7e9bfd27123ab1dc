// Package task defines the task entity, its persisted record shape and the
// write-side and read-side rules that keep the completed flag consistent
// with the workflow status.
package task

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/AGLOP-1354/taskboard/internal/errors"
)

// Field lengths enforced by the form controller.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Status is the workflow stage a task occupies.
type Status string

const (
	// StatusTodo is the initial stage of every new task.
	StatusTodo Status = "todo"

	// StatusInProgress marks a task that has been started.
	StatusInProgress Status = "in-progress"

	// StatusCompleted marks a finished task. Completed is true iff a task
	// is in this stage.
	StatusCompleted Status = "completed"
)

// Statuses returns every stage in board column order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusCompleted}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the three known stages.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Label returns the column heading for s.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// ParseStatus parses a status name, accepting "in_progress" and
// "inprogress" as aliases for "in-progress".
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch norm {
	case "in_progress", "inprogress", "doing":
		norm = string(StatusInProgress)
	case "done":
		norm = string(StatusCompleted)
	}
	st := Status(norm)
	if !st.Valid() {
		return "", errors.NewValidationError("unknown status").WithField("status").WithValue(s)
	}
	return st, nil
}

// Priority ranks tasks. The zero value is not valid; use PriorityMedium.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultPriority is assigned when a create request or a legacy record
// carries no priority.
const DefaultPriority = PriorityMedium

// Priorities returns every priority from highest to lowest.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank maps the priority to its sort ordinal: high 3, medium 2, low 1.
// Unknown priorities rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// ParsePriority parses a priority name case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", errors.NewValidationError("unknown priority").WithField("priority").WithValue(s)
	}
	return p, nil
}

// Task is a task entity as observed through a snapshot.
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status      Status     `json:"status" yaml:"status"`
	Completed   bool       `json:"completed" yaml:"completed"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" yaml:"updatedAt"`
	DueDate     *time.Time `json:"dueDate" yaml:"dueDate,omitempty"`
}

// IsOverdue reports whether the task has a due date before now and is not
// completed.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted
}

// String returns a short human-readable form used in log lines.
func (t Task) String() string {
	return fmt.Sprintf("%s [%s/%s] %q", t.ID, t.Status, t.Priority, t.Title)
}

// NewTaskData is the payload for creating a task. Status, Completed and
// timestamps are assigned by the store.
type NewTaskData struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// SortSnapshot orders tasks by CreatedAt descending. Tasks created at the
// same instant are ordered by ID so every backend emits the same order.
func SortSnapshot(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Find returns the task with the given ID from a snapshot.
func Find(tasks []Task, id string) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
