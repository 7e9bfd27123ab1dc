// Package form validates task input and gates submission to the store.
package form

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// Field names used as keys of Errors.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPriority    = "priority"
	FieldDueDate     = "dueDate"
)

// Input is the editable part of a task.
type Input struct {
	Title       string
	Description string
	// Priority may be empty, meaning medium.
	Priority task.Priority
	DueDate  *time.Time
}

// FromTask returns the input that reproduces t.
func FromTask(t task.Task) Input {
	in := Input{Title: t.Title, Description: t.Description, Priority: t.Priority}
	if t.DueDate != nil {
		d := *t.DueDate
		in.DueDate = &d
	}
	return in
}

// Errors maps a field name to its validation error.
type Errors map[string]*errors.ValidationError

// Any reports whether any field has an error.
func (e Errors) Any() bool {
	return len(e) > 0
}

// Message returns the error message for field, or "".
func (e Errors) Message(field string) string {
	if err, ok := e[field]; ok {
		return err.Message()
	}
	return ""
}

// Fields returns the fields with errors in a stable order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Err joins all field errors into one error, or returns nil.
func (e Errors) Err() error {
	if !e.Any() {
		return nil
	}
	errs := make([]error, 0, len(e))
	for _, f := range e.Fields() {
		errs = append(errs, e[f])
	}
	return errors.Join(errs...)
}

// Validate checks in as of now. Lengths are counted in characters, not
// bytes. A due date equal to now is accepted.
func Validate(in Input, now time.Time) Errors {
	errs := Errors{}

	switch {
	case strings.TrimSpace(in.Title) == "":
		errs[FieldTitle] = errors.NewValidationError("title is required").WithField(FieldTitle)
	case utf8.RuneCountInString(in.Title) > task.MaxTitleLength:
		errs[FieldTitle] = errors.NewValidationError("title must be 100 characters or fewer").
			WithField(FieldTitle).WithValue(utf8.RuneCountInString(in.Title))
	}

	if n := utf8.RuneCountInString(in.Description); n > task.MaxDescriptionLength {
		errs[FieldDescription] = errors.NewValidationError("description must be 500 characters or fewer").
			WithField(FieldDescription).WithValue(n)
	}

	if in.Priority != "" && !in.Priority.Valid() {
		errs[FieldPriority] = errors.NewValidationError("priority must be high, medium or low").
			WithField(FieldPriority).WithValue(string(in.Priority))
	}

	if in.DueDate != nil && in.DueDate.Before(now) {
		errs[FieldDueDate] = errors.NewValidationError("due date cannot be in the past").
			WithField(FieldDueDate).WithValue(in.DueDate.Format(time.RFC3339))
	}

	return errs
}

// ValidateField checks a single field of in.
func ValidateField(field string, in Input, now time.Time) *errors.ValidationError {
	return Validate(in, now)[field]
}

var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseDueDate parses user input for a due date in loc. A bare date
// (2006-01-02) means the end of that day so that "today" stays valid until
// midnight. "today" and "tomorrow" are accepted, and an empty string means
// no due date.
func ParseDueDate(s string, now time.Time, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}

	endOfDay := func(t time.Time) *time.Time {
		y, m, d := t.Date()
		v := time.Date(y, m, d, 23, 59, 59, 0, loc)
		return &v
	}

	switch strings.ToLower(s) {
	case "today":
		return endOfDay(now.In(loc)), nil
	case "tomorrow":
		return endOfDay(now.In(loc).AddDate(0, 0, 1)), nil
	}

	if d, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return endOfDay(d), nil
	}
	for _, layout := range dueDateLayouts {
		if d, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &d, nil
		}
	}
	return nil, errors.NewValidationError("due date must look like 2006-01-02 or 2006-01-02 15:04").
		WithField(FieldDueDate).WithValue(s)
}
