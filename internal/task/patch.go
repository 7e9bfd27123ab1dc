package task

import (
	"time"

	"github.com/AGLOP-1354/taskboard/internal/errors"
)

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Status       *Status    `json:"status,omitempty"`
	Completed    *bool      `json:"completed,omitempty"`
	Priority     *Priority  `json:"priority,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	ClearDueDate bool       `json:"clearDueDate,omitempty"`
}

// MoveTo returns the patch that places a task in stage s, setting the
// completed flag to match.
func MoveTo(s Status) Patch {
	done := s == StatusCompleted
	return Patch{Status: &s, Completed: &done}
}

// SetCompleted returns the patch that marks a task done (stage completed)
// or reopens it (stage todo). Both fields are always supplied.
func SetCompleted(done bool) Patch {
	if done {
		return MoveTo(StatusCompleted)
	}
	return MoveTo(StatusTodo)
}

// IsEmpty reports whether the patch changes nothing besides updatedAt.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Completed == nil && p.Priority == nil && p.DueDate == nil && !p.ClearDueDate
}

// Normalize returns a copy of p in which a present Status forces Completed
// to Status == StatusCompleted. A Completed without Status is left as is;
// the read-side migration rule covers records written that way.
func (p Patch) Normalize() Patch {
	if p.Status != nil {
		done := *p.Status == StatusCompleted
		p.Completed = &done
	}
	return p
}

// Validate rejects unknown enum values.
func (p Patch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return errors.NewValidationError("unknown status").WithField("status").WithValue(string(*p.Status))
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return errors.NewValidationError("unknown priority").WithField("priority").WithValue(string(*p.Priority))
	}
	return nil
}

// Apply merges the normalized patch into r and stamps UpdatedAt with now.
// CreatedAt is never changed.
func (p Patch) Apply(r Record, now time.Time) Record {
	p = p.Normalize()
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Status != nil {
		s := *p.Status
		r.Status = &s
	}
	if p.Completed != nil {
		r.Completed = *p.Completed
	}
	if p.Priority != nil {
		pr := *p.Priority
		r.Priority = &pr
	}
	if p.ClearDueDate {
		r.DueDate = nil
	} else if p.DueDate != nil {
		r.DueDate = cloneTime(p.DueDate)
	}
	r.UpdatedAt = now
	return r
}
