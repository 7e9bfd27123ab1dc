package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AGLOP-1354/taskboard/internal/board"
	"github.com/AGLOP-1354/taskboard/internal/drag"
	"github.com/AGLOP-1354/taskboard/internal/logging"
	"github.com/AGLOP-1354/taskboard/internal/task"
	"github.com/AGLOP-1354/taskboard/internal/tui/filter"
	"github.com/AGLOP-1354/taskboard/internal/view"
)

// actionTimeout bounds a single store call issued from the UI.
const actionTimeout = 10 * time.Second

// Layout selects how the derived view is shown.
type Layout string

const (
	LayoutBoard Layout = "board"
	LayoutList  Layout = "list"
)

// mode is the current input mode.
type mode int

const (
	modeNormal mode = iota
	modeForm
	modeFilter
	modeHelp
	modeConfirmDelete
)

// pointerState is shared between copies of the model so that the drag
// sensor's callback always appends to the live queue.
type pointerState struct {
	sensor  *drag.Sensor
	pending []drag.Event
	hover   task.Status
}

// Model holds the TUI application state
type Model struct {
	svc    *board.Service
	logger *logging.Logger
	now    func() time.Time

	width    int
	height   int
	ready    bool
	quitting bool
	layout   Layout
	mode     mode

	filter  *filter.Filter
	visible []task.Task
	columns []view.Column
	stats   view.Stats
	notice  string

	// Board selection: the focused column and the selected row in each.
	col     int
	rows    [3]int
	offsets [3]int
	// List selection.
	listRow    int
	listOffset int
	// follow is a task ID to select once it shows up in a snapshot.
	follow string

	pointer *pointerState
	// Keyboard drag: the grabbed task and the column it would drop into.
	grabID     string
	grabTarget int
	dropping   bool

	editor    editor
	confirmID string
}

// Options configures a Model.
type Options struct {
	// ActivationDistance is the mouse travel, in cells, that turns a press
	// into a drag. Zero means drag.DefaultActivationDistance.
	ActivationDistance int
	Layout             Layout
	Logger             *logging.Logger
	// Now overrides the clock used by the editor.
	Now func() time.Time
}

// NewModel creates a new TUI model over svc. The service must already be
// started; the model renders whatever the cache holds.
func NewModel(svc *board.Service, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ActivationDistance <= 0 {
		opts.ActivationDistance = drag.DefaultActivationDistance
	}
	if opts.Layout != LayoutList {
		opts.Layout = LayoutBoard
	}

	p := &pointerState{}
	p.sensor = drag.NewSensor(opts.ActivationDistance, func(e drag.Event) {
		p.pending = append(p.pending, e)
	})

	return Model{
		svc:     svc,
		logger:  opts.Logger.WithComponent("tui"),
		now:     opts.Now,
		layout:  opts.Layout,
		filter:  filter.New(svc.Filter()),
		pointer: p,
	}
}

// Messages

// snapshotMsg reports that the cache applied a new snapshot.
type snapshotMsg struct {
	version uint64
}

// actionDoneMsg is the result of a store call started from the UI.
type actionDoneMsg struct {
	op  string
	id  string
	err error
}

// submitDoneMsg is the result of submitting the editor.
type submitDoneMsg struct {
	id  string
	err error
}

// dragDoneMsg is the result of dispatching a drop.
type dragDoneMsg struct {
	decision drag.Decision
	err      error
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.WaitReady(context.Background()); err != nil {
			return nil
		}
		return snapshotMsg{version: svc.Cache().Version()}
	}
}

// refresh re-derives everything shown from the cache. The selection stays
// on the same task when it is still visible.
func (m *Model) refresh() {
	keep := m.follow
	if keep == "" {
		if t, ok := m.selected(); ok {
			keep = t.ID
		}
	}

	m.visible = m.filter.Apply(m.svc.Snapshot())
	m.columns = view.Columns(m.visible)
	m.stats = m.svc.Stats()
	if keep != "" && m.selectID(keep) && keep == m.follow {
		m.follow = ""
	}
	m.clampSelection()
	m.syncNotice()
}

func (m *Model) syncNotice() {
	if n, ok := m.svc.Notice(); ok {
		m.notice = n.Message
	} else {
		m.notice = ""
	}
}

func (m *Model) clampSelection() {
	for i := range m.rows {
		n := 0
		if i < len(m.columns) {
			n = len(m.columns[i].Tasks)
		}
		m.rows[i] = clamp(m.rows[i], 0, n-1)
		m.offsets[i] = m.boardLayout().scrollFor(m.offsets[i], m.rows[i], n)
	}
	m.listRow = clamp(m.listRow, 0, len(m.visible)-1)
	m.listOffset = listScroll(m.listOffset, m.listRow, len(m.visible), m.listCapacity())
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// selectID moves the selection to task id. It reports whether id is visible.
func (m *Model) selectID(id string) bool {
	for c, col := range m.columns {
		for r, t := range col.Tasks {
			if t.ID == id {
				m.col, m.rows[c] = c, r
			}
		}
	}
	for i, t := range m.visible {
		if t.ID == id {
			m.listRow = i
			return true
		}
	}
	return false
}

// selected returns the task under the cursor.
func (m Model) selected() (task.Task, bool) {
	if m.layout == LayoutList {
		if m.listRow < len(m.visible) {
			return m.visible[m.listRow], true
		}
		return task.Task{}, false
	}
	if m.col >= len(m.columns) {
		return task.Task{}, false
	}
	tasks := m.columns[m.col].Tasks
	if r := m.rows[m.col]; r < len(tasks) {
		return tasks[r], true
	}
	return task.Task{}, false
}

func (m Model) boardLayout() boardLayout {
	return newBoardLayout(m.width, m.height)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.clampSelection()
		return m, nil

	case snapshotMsg:
		m.ready = true
		m.refresh()
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.logger.Debug("action failed", "op", msg.op, "task_id", msg.id, "error", msg.err.Error())
		} else if msg.id != "" {
			m.follow = msg.id
		}
		m.refresh()
		return m, nil

	case submitDoneMsg:
		return m.handleSubmitDone(msg)

	case dragDoneMsg:
		m.dropping = false
		if msg.err == nil && msg.decision.Outcome == drag.Resolved {
			m.follow = msg.decision.TaskID
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	if m.mode == modeForm {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.updateCursor(msg)
		return m, cmd
	}
	return m, nil
}

// run issues a store call off the event loop.
func (m Model) run(op, id string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{op: op, id: id, err: fn(ctx)}
	}
}
