package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AGLOP-1354/taskboard/internal/drag"
	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/form"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

func isSpace(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeySpace || msg.String() == " "
}

// handleKey routes a key press by mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.mode {
	case modeForm:
		return m.handleFormKey(msg)
	case modeFilter:
		return m.handleFilterKey(msg)
	case modeHelp:
		switch msg.String() {
		case "?", "esc", "q", "enter":
			m.mode = modeNormal
		}
		return m, nil
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	}

	if m.grabID != "" {
		return m.handleGrabKey(msg)
	}
	return m.handleNormalKey(msg)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isSpace(msg) {
		return m.grab()
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "?":
		m.mode = modeHelp
	case "esc":
		m.svc.DismissNotice()
		m.syncNotice()
	case "v":
		if m.layout == LayoutBoard {
			m.layout = LayoutList
		} else {
			m.layout = LayoutBoard
		}
		if t, ok := m.selectedAcrossLayouts(); ok {
			m.selectID(t.ID)
		}
		m.clampSelection()
	case "/", "f":
		m.mode = modeFilter
	case "n", "a":
		return m.openEditor(form.New(m.now))
	case "e", "enter":
		if t, ok := m.selected(); ok {
			return m.openEditor(form.Edit(t, m.now))
		}
	case "c", "x":
		if t, ok := m.selected(); ok {
			id := t.ID
			return m, m.run("toggle", id, func(ctx context.Context) error {
				return m.svc.ToggleComplete(ctx, id)
			})
		}
	case "d", "delete":
		if t, ok := m.selected(); ok {
			m.confirmID = t.ID
			m.mode = modeConfirmDelete
		}
	case "H", "L", "shift+left", "shift+right":
		return m.shiftStage(msg.String() == "L" || msg.String() == "shift+right")
	case "h", "left":
		m.moveColumn(-1)
	case "l", "right":
		m.moveColumn(1)
	case "j", "down":
		m.moveRow(1)
	case "k", "up":
		m.moveRow(-1)
	case "g", "home":
		m.moveRow(-len(m.visible))
	case "G", "end":
		m.moveRow(len(m.visible))
	}
	return m, nil
}

// selectedAcrossLayouts returns the selection of the layout being left.
func (m Model) selectedAcrossLayouts() (task.Task, bool) {
	other := m
	if m.layout == LayoutBoard {
		other.layout = LayoutList
	} else {
		other.layout = LayoutBoard
	}
	return other.selected()
}

func (m *Model) moveColumn(delta int) {
	if m.layout != LayoutBoard {
		return
	}
	m.col = clamp(m.col+delta, 0, len(task.Statuses())-1)
}

func (m *Model) moveRow(delta int) {
	if m.layout == LayoutList {
		m.listRow += delta
	} else {
		m.rows[m.col] += delta
	}
	m.clampSelection()
}

// shiftStage moves the selected task one stage right or left.
func (m Model) shiftStage(right bool) (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if !ok {
		return m, nil
	}
	stages := task.Statuses()
	i := stageIndex(t.Status)
	if right {
		i++
	} else {
		i--
	}
	if i < 0 || i >= len(stages) {
		return m, nil
	}
	id, to := t.ID, stages[i]
	return m, m.run("move", id, func(ctx context.Context) error {
		return m.svc.Move(ctx, id, to)
	})
}

func stageIndex(s task.Status) int {
	for i, st := range task.Statuses() {
		if st == s {
			return i
		}
	}
	return 0
}

// -----------------------------------------------------------------------------
// Keyboard drag
// -----------------------------------------------------------------------------

func (m Model) grab() (tea.Model, tea.Cmd) {
	if m.dropping {
		return m, nil
	}
	t, ok := m.selected()
	if !ok {
		return m, nil
	}
	d, _ := m.svc.HandleDrag(context.Background(), drag.Start{ID: t.ID})
	if d.Outcome != drag.Started {
		m.logger.Debug("grab refused", "task_id", t.ID, "reason", d.Reason)
		return m, nil
	}
	m.grabID = t.ID
	m.grabTarget = stageIndex(t.Status)
	return m, nil
}

func (m Model) handleGrabKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.grabTarget = clamp(m.grabTarget-1, 0, len(task.Statuses())-1)
	case "l", "right":
		m.grabTarget = clamp(m.grabTarget+1, 0, len(task.Statuses())-1)
	case "1", "2", "3":
		m.grabTarget = int(msg.String()[0] - '1')
	case "enter":
		id, target := m.grabID, task.Statuses()[m.grabTarget]
		m.grabID = ""
		m.dropping = true
		return m, m.dispatchDrop(drag.Drop{ID: id, Target: target})
	case "esc":
		id := m.grabID
		m.grabID = ""
		_, _ = m.svc.HandleDrag(context.Background(), drag.Cancel{ID: id})
	}
	return m, nil
}

// dispatchDrop resolves a drop off the event loop since it may write to
// the store.
func (m Model) dispatchDrop(e drag.Drop) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		d, err := svc.HandleDrag(ctx, e)
		return dragDoneMsg{decision: d, err: err}
	}
}

// flushDrag hands events queued by the mouse sensor to the drag
// controller. Start and Cancel never touch the store and run inline so
// that they are ordered before any later drop.
func (m Model) flushDrag() (Model, tea.Cmd) {
	events := m.pointer.pending
	m.pointer.pending = nil

	var cmds []tea.Cmd
	for _, e := range events {
		if drop, ok := e.(drag.Drop); ok {
			m.dropping = true
			cmds = append(cmds, m.dispatchDrop(drop))
			continue
		}
		d, _ := m.svc.HandleDrag(context.Background(), e)
		m.logger.Debug("drag event", "task_id", d.TaskID, "outcome", d.Outcome.String())
	}
	return m, tea.Batch(cmds...)
}

// handleMouse feeds pointer input to the drag sensor on the board layout.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNormal || m.layout != LayoutBoard || m.grabID != "" {
		return m, nil
	}
	l := m.boardLayout()

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.moveRow(-1)
		return m, nil
	case msg.Button == tea.MouseButtonWheelDown:
		m.moveRow(1)
		return m, nil

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if m.dropping {
			return m, nil
		}
		col, ok := l.columnAt(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.col = col
		slot, ok := l.slotAt(msg.Y)
		if !ok {
			return m, nil
		}
		row := m.offsets[col] + slot
		if col >= len(m.columns) || row >= len(m.columns[col].Tasks) {
			return m, nil
		}
		m.rows[col] = row
		m.pointer.sensor.Press(m.columns[col].Tasks[row].ID, msg.X, msg.Y)

	case msg.Action == tea.MouseActionMotion:
		m.pointer.sensor.Move(msg.X, msg.Y)
		m.pointer.hover = ""
		if _, active := m.pointer.sensor.Active(); active {
			m.pointer.hover = l.statusAt(msg.X, msg.Y)
		}

	case msg.Action == tea.MouseActionRelease:
		m.pointer.sensor.Release(msg.X, msg.Y, l.statusAt(msg.X, msg.Y))
		m.pointer.hover = ""
	}

	return m.flushDrag()
}

// -----------------------------------------------------------------------------
// Editor, filter and confirmation
// -----------------------------------------------------------------------------

func (m Model) openEditor(f *form.Form) (tea.Model, tea.Cmd) {
	m.editor = newEditor(f, m.now)
	m.mode = modeForm
	return m, m.editor.Init()
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		cmd    tea.Cmd
		result editorResult
	)
	m.editor, cmd, result = m.editor.Update(msg)

	switch {
	case result.Cancel:
		m.mode = modeNormal
		m.editor = editor{}
		return m, nil
	case result.Submit:
		svc, f := m.svc, m.editor.form
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
			defer cancel()
			id, err := svc.Submit(ctx, f)
			return submitDoneMsg{id: id, err: err}
		}
	}
	return m, cmd
}

func (m Model) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeForm {
		return m, nil
	}
	m.editor.submitting = false
	if msg.err != nil {
		if !errors.Is(msg.err, form.ErrBlocked) {
			m.syncNotice()
		}
		return m, nil
	}
	m.mode = modeNormal
	m.editor = editor{}
	m.follow = msg.id
	m.refresh()
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	result := m.filter.HandleKey(msg)
	if result.Changed {
		if err := m.svc.SetFilter(m.filter.View()); err != nil {
			m.logger.Warn("filter rejected", "error", err.Error())
		}
		m.refresh()
	}
	if result.ExitMode {
		m.mode = modeNormal
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmID
	switch msg.String() {
	case "y", "Y":
		m.confirmID = ""
		m.mode = modeNormal
		return m, m.run("delete", "", func(ctx context.Context) error {
			return m.svc.Remove(ctx, id)
		})
	case "n", "N", "esc", "q":
		m.confirmID = ""
		m.mode = modeNormal
	}
	return m, nil
}
