package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AGLOP-1354/taskboard/internal/form"
	"github.com/AGLOP-1354/taskboard/internal/task"
	"github.com/AGLOP-1354/taskboard/internal/tui/styles"
)

// editorField is a focusable element of the task editor.
type editorField int

const (
	fieldTitle editorField = iota
	fieldDescription
	fieldPriority
	fieldDueDate
	fieldSubmit
	editorFieldCount
)

func (f editorField) formField() string {
	switch f {
	case fieldTitle:
		return form.FieldTitle
	case fieldDescription:
		return form.FieldDescription
	case fieldPriority:
		return form.FieldPriority
	case fieldDueDate:
		return form.FieldDueDate
	}
	return ""
}

const dueDateDisplayLayout = "2006-01-02 15:04"

// editor is the new/edit task form. Field values are pushed into the
// underlying form.Form on every keystroke, which clears that field's error;
// a field is validated when focus leaves it and the whole form on submit.
type editor struct {
	form *form.Form
	now  func() time.Time

	title       textinput.Model
	description textinput.Model
	due         textinput.Model
	focus       editorField

	// dueErr holds a parse error for the due date text, which never reaches
	// the form because it is not a time yet.
	dueErr     string
	submitting bool
}

// editorResult tells the model what the last key asked for.
type editorResult struct {
	Submit bool
	Cancel bool
}

func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 48
	return ti
}

func newEditor(f *form.Form, now func() time.Time) editor {
	if now == nil {
		now = time.Now
	}
	e := editor{
		form:        f,
		now:         now,
		title:       newTextInput("What needs to be done?", 2*task.MaxTitleLength),
		description: newTextInput("Optional details", 2*task.MaxDescriptionLength),
		due:         newTextInput("2006-01-02, today, tomorrow", 32),
	}

	in := f.Input()
	e.title.SetValue(in.Title)
	e.description.SetValue(in.Description)
	if in.DueDate != nil {
		e.due.SetValue(in.DueDate.In(time.Local).Format(dueDateDisplayLayout))
	}
	e.title.Focus()
	return e
}

// Init returns the cursor blink command.
func (e editor) Init() tea.Cmd {
	return textinput.Blink
}

// IsEdit reports whether the editor updates an existing task.
func (e editor) IsEdit() bool {
	return e.form.IsEdit()
}

func (e *editor) input(f editorField) *textinput.Model {
	switch f {
	case fieldTitle:
		return &e.title
	case fieldDescription:
		return &e.description
	case fieldDueDate:
		return &e.due
	}
	return nil
}

// fieldError returns the message shown under field.
func (e editor) fieldError(f editorField) string {
	if f == fieldDueDate && e.dueErr != "" {
		return e.dueErr
	}
	return e.form.FieldError(f.formField())
}

// canSubmit reports whether the submit control is enabled.
func (e editor) canSubmit() bool {
	return !e.submitting && e.dueErr == "" && e.form.CanSubmit()
}

func (e editor) setFocus(f editorField) (editor, tea.Cmd) {
	if ti := e.input(e.focus); ti != nil {
		ti.Blur()
	}
	if field := e.focus.formField(); field != "" && e.focus != f {
		e.form.ValidateField(field)
	}
	e.focus = f
	if ti := e.input(f); ti != nil {
		return e, ti.Focus()
	}
	return e, nil
}

func (e editor) moveFocus(delta int) (editor, tea.Cmd) {
	n := int(editorFieldCount)
	return e.setFocus(editorField(((int(e.focus)+delta)%n + n) % n))
}

func (e editor) cyclePriority(delta int) editor {
	opts := task.Priorities()
	current := e.form.Input().Priority
	i := 0
	for j, p := range opts {
		if p == current {
			i = j
		}
	}
	n := len(opts)
	e.form.SetPriority(opts[((i+delta)%n+n)%n])
	return e
}

// sync pushes the focused text input into the form.
func (e editor) sync() editor {
	switch e.focus {
	case fieldTitle:
		e.form.SetTitle(e.title.Value())
	case fieldDescription:
		e.form.SetDescription(e.description.Value())
	case fieldDueDate:
		d, err := form.ParseDueDate(e.due.Value(), e.now(), time.Local)
		if err != nil {
			e.dueErr = "due date must look like 2006-01-02 or 2006-01-02 15:04"
			return e
		}
		e.dueErr = ""
		e.form.SetDueDate(d)
	}
	return e
}

// Update handles one key while the editor is open.
func (e editor) Update(msg tea.KeyMsg) (editor, tea.Cmd, editorResult) {
	if e.submitting {
		return e, nil, editorResult{}
	}

	switch msg.String() {
	case "esc":
		return e, nil, editorResult{Cancel: true}
	case "ctrl+s":
		return e.trySubmit()
	case "tab", "down":
		e, cmd := e.moveFocus(1)
		return e, cmd, editorResult{}
	case "shift+tab", "up":
		e, cmd := e.moveFocus(-1)
		return e, cmd, editorResult{}
	case "enter":
		if e.focus == fieldSubmit {
			return e.trySubmit()
		}
		e, cmd := e.moveFocus(1)
		return e, cmd, editorResult{}
	}

	if e.focus == fieldPriority {
		switch {
		case msg.String() == "left" || msg.String() == "h":
			return e.cyclePriority(-1), nil, editorResult{}
		case msg.String() == "right" || msg.String() == "l" || msg.Type == tea.KeySpace:
			return e.cyclePriority(1), nil, editorResult{}
		}
		return e, nil, editorResult{}
	}

	ti := e.input(e.focus)
	if ti == nil {
		return e, nil, editorResult{}
	}
	var cmd tea.Cmd
	*ti, cmd = ti.Update(msg)
	return e.sync(), cmd, editorResult{}
}

func (e editor) trySubmit() (editor, tea.Cmd, editorResult) {
	if e.dueErr != "" {
		e, cmd := e.setFocus(fieldDueDate)
		return e, cmd, editorResult{}
	}
	if !e.form.Validate() {
		for f := fieldTitle; f < fieldSubmit; f++ {
			if e.fieldError(f) != "" {
				e, cmd := e.setFocus(f)
				return e, cmd, editorResult{}
			}
		}
	}
	e.submitting = true
	return e, nil, editorResult{Submit: true}
}

// View renders the editor.
func (e editor) View(width int) string {
	var b strings.Builder

	heading := "New task"
	if e.IsEdit() {
		heading = "Edit task"
	}
	b.WriteString(styles.Title.Render(heading))
	b.WriteString("\n\n")

	row := func(f editorField, label, value string) {
		labelStyle := styles.FormLabel
		if e.focus == f {
			labelStyle = styles.FormLabelFocused
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
		if msg := e.fieldError(f); msg != "" {
			b.WriteString(styles.FormLabel.Render(""))
			b.WriteString(styles.ErrorMsg.Render(msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	in := e.form.Input()
	row(fieldTitle, "Title", e.title.View())
	row(fieldDescription, "Description", e.description.View())

	var prio strings.Builder
	for _, p := range task.Priorities() {
		if p == in.Priority {
			prio.WriteString(styles.FilterOptionActive.Render("[" + string(p) + "]"))
		} else {
			prio.WriteString(styles.FilterOption.Render(" " + string(p) + " "))
		}
	}
	row(fieldPriority, "Priority", prio.String())
	row(fieldDueDate, "Due date", e.due.View())

	label := "Create"
	if e.IsEdit() {
		label = "Save"
	}
	if e.submitting {
		label = "Saving..."
	}
	button := styles.FormButtonDisabled.Render(label)
	if e.canSubmit() {
		button = styles.FormButton.Render(label)
	}
	if e.focus == fieldSubmit {
		button = "▸ " + button
	}
	b.WriteString(button)
	b.WriteString("\n\n")

	b.WriteString(styles.Muted.Render(fmt.Sprintf("[tab] next field  [←/→] priority  [ctrl+s] %s  [esc] cancel", strings.ToLower(label))))

	return styles.ContentBox.Width(max(width-4, 40)).Render(b.String())
}

// updateCursor forwards non-key messages, such as cursor blinks, to the
// focused input.
func (e editor) updateCursor(msg tea.Msg) (editor, tea.Cmd) {
	ti := e.input(e.focus)
	if ti == nil {
		return e, nil
	}
	var cmd tea.Cmd
	*ti, cmd = ti.Update(msg)
	return e, cmd
}
