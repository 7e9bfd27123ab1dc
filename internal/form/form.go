package form

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// ErrBlocked is returned by Submit while any field has an error.
var ErrBlocked = errors.New("form has validation errors")

// Submitter receives validated input. store.Writer implements it.
type Submitter interface {
	Create(ctx context.Context, data task.NewTaskData) (string, error)
	Update(ctx context.Context, id string, patch task.Patch) error
}

// Form is the state of a new-task or edit-task form. Errors are set by
// Validate and Submit, and editing a field clears that field's error.
type Form struct {
	mu     sync.Mutex
	editID string
	input  Input
	errs   Errors
	now    func() time.Time
}

// New returns an empty form that creates a task on submit. A nil now uses
// time.Now.
func New(now func() time.Time) *Form {
	if now == nil {
		now = time.Now
	}
	return &Form{input: Input{Priority: task.DefaultPriority}, errs: Errors{}, now: now}
}

// Edit returns a form prefilled from t that updates t on submit.
func Edit(t task.Task, now func() time.Time) *Form {
	f := New(now)
	f.editID = t.ID
	f.input = FromTask(t)
	return f
}

// IsEdit reports whether the form updates an existing task.
func (f *Form) IsEdit() bool {
	return f.editID != ""
}

// EditID returns the ID of the task being edited, or "".
func (f *Form) EditID() string {
	return f.editID
}

// Input returns the current input.
func (f *Form) Input() Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

// Errors returns a copy of the active field errors.
func (f *Form) Errors() Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(Errors, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// FieldError returns the active error message for field, or "".
func (f *Form) FieldError(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs.Message(field)
}

// CanSubmit reports whether no field has an active error.
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.errs.Any()
}

func (f *Form) edit(field string, fn func(*Input)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.input)
	delete(f.errs, field)
}

// SetTitle sets the title.
func (f *Form) SetTitle(s string) {
	f.edit(FieldTitle, func(in *Input) { in.Title = s })
}

// SetDescription sets the description.
func (f *Form) SetDescription(s string) {
	f.edit(FieldDescription, func(in *Input) { in.Description = s })
}

// SetPriority sets the priority.
func (f *Form) SetPriority(p task.Priority) {
	f.edit(FieldPriority, func(in *Input) { in.Priority = p })
}

// SetDueDate sets or, with nil, clears the due date.
func (f *Form) SetDueDate(d *time.Time) {
	f.edit(FieldDueDate, func(in *Input) {
		if d == nil {
			in.DueDate = nil
			return
		}
		v := *d
		in.DueDate = &v
	})
}

// Validate checks every field and replaces the active errors. It reports
// whether the form is valid.
func (f *Form) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = Validate(f.input, f.now())
	return !f.errs.Any()
}

// ValidateField checks one field, setting or clearing its error.
func (f *Form) ValidateField(field string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ValidateField(field, f.input, f.now()); err != nil {
		f.errs[field] = err
		return false
	}
	delete(f.errs, field)
	return true
}

// Submit validates the form and forwards it to s: Create for a new task,
// Update with every editable field for an edit. It returns the task ID.
// Validation failures return ErrBlocked and leave the errors on the form.
// Store failures are returned unchanged.
func (f *Form) Submit(ctx context.Context, s Submitter) (string, error) {
	if !f.Validate() {
		return "", ErrBlocked
	}
	in := f.Input()
	title := strings.TrimSpace(in.Title)
	priority := in.Priority
	if priority == "" {
		priority = task.DefaultPriority
	}

	if !f.IsEdit() {
		return s.Create(ctx, task.NewTaskData{
			Title:       title,
			Description: in.Description,
			Priority:    priority,
			DueDate:     in.DueDate,
		})
	}

	patch := task.Patch{
		Title:       &title,
		Description: &in.Description,
		Priority:    &priority,
	}
	if in.DueDate != nil {
		patch.DueDate = in.DueDate
	} else {
		patch.ClearDueDate = true
	}
	if err := s.Update(ctx, f.editID, patch); err != nil {
		return "", err
	}
	return f.editID, nil
}

// Reset clears the input and errors, leaving the mode unchanged.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.input = Input{Priority: task.DefaultPriority}
	f.errs = Errors{}
}
