package filter

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AGLOP-1354/taskboard/internal/task"
	"github.com/AGLOP-1354/taskboard/internal/tui/styles"
	"github.com/AGLOP-1354/taskboard/internal/view"
)

// Row identifies one selectable line of the filter panel.
type Row int

const (
	RowStatus Row = iota
	RowPriority
	RowSortBy
	RowSortOrder
	rowCount
)

// Category defines a filter row with its display properties.
type Category struct {
	Row     Row
	Label   string
	Options []string
}

// Categories is the panel's rows in display order.
var Categories = []Category{
	{Row: RowStatus, Label: "Status", Options: []string{
		view.All, string(task.StatusTodo), string(task.StatusInProgress), string(task.StatusCompleted),
	}},
	{Row: RowPriority, Label: "Priority", Options: []string{
		view.All, string(task.PriorityHigh), string(task.PriorityMedium), string(task.PriorityLow),
	}},
	{Row: RowSortBy, Label: "Sort by", Options: []string{
		string(view.SortByCreatedAt), string(view.SortByPriority), string(view.SortByDueDate),
	}},
	{Row: RowSortOrder, Label: "Order", Options: []string{
		string(view.Desc), string(view.Asc),
	}},
}

// Filter holds the view filter being edited in the panel plus a title
// pattern typed by the user.
type Filter struct {
	filter  view.Filter
	pattern string
	focus   Row
}

// New creates a Filter that starts from f. An invalid f is replaced with
// the default filter.
func New(f view.Filter) *Filter {
	if f.Validate() != nil {
		f = view.DefaultFilter()
	}
	return &Filter{filter: f}
}

// View returns the filter and sort settings.
func (f *Filter) View() view.Filter {
	return f.filter
}

// SetView replaces the filter and sort settings. Invalid values are
// ignored.
func (f *Filter) SetView(v view.Filter) {
	if v.Validate() == nil {
		f.filter = v
	}
}

// Focus returns the focused row.
func (f *Filter) Focus() Row {
	return f.focus
}

// Pattern returns the title pattern.
func (f *Filter) Pattern() string {
	return f.pattern
}

// SetPattern replaces the title pattern.
func (f *Filter) SetPattern(pattern string) {
	f.pattern = pattern
}

// ClearPattern clears the title pattern.
func (f *Filter) ClearPattern() {
	f.pattern = ""
}

// AppendToPattern appends text to the title pattern.
func (f *Filter) AppendToPattern(s string) {
	f.pattern += s
}

// BackspacePattern removes the last rune from the title pattern.
func (f *Filter) BackspacePattern() {
	if f.pattern == "" {
		return
	}
	r := []rune(f.pattern)
	f.pattern = string(r[:len(r)-1])
}

// Reset restores the default filter and clears the pattern.
func (f *Filter) Reset() {
	f.filter = view.DefaultFilter()
	f.pattern = ""
}

// HasActiveFilter reports whether anything is narrowed or reordered.
func (f *Filter) HasActiveFilter() bool {
	return !f.filter.IsDefault() || strings.TrimSpace(f.pattern) != ""
}

// Apply derives the visible tasks from a snapshot. A pattern that does not
// compile matches nothing, so the user sees an empty view while typing.
func (f *Filter) Apply(snapshot []task.Task) []task.Task {
	out := view.Derive(snapshot, f.filter)
	matched, err := view.MatchTitle(out, f.pattern)
	if err != nil {
		return []task.Task{}
	}
	return matched
}

// Summary is the one-line description shown above the board.
func (f *Filter) Summary() string {
	s := f.filter.String()
	if p := strings.TrimSpace(f.pattern); p != "" {
		s += fmt.Sprintf(" title=%q", p)
	}
	return s
}

func (f *Filter) value(r Row) string {
	switch r {
	case RowStatus:
		return f.filter.Status
	case RowPriority:
		return f.filter.Priority
	case RowSortBy:
		return string(f.filter.SortBy)
	case RowSortOrder:
		return string(f.filter.SortOrder)
	}
	return ""
}

func (f *Filter) set(r Row, v string) {
	switch r {
	case RowStatus:
		f.filter.Status = v
	case RowPriority:
		f.filter.Priority = v
	case RowSortBy:
		f.filter.SortBy = view.SortKey(v)
	case RowSortOrder:
		f.filter.SortOrder = view.SortOrder(v)
	}
}

// Cycle moves the focused row's selection by delta, wrapping around.
func (f *Filter) Cycle(delta int) {
	opts := Categories[f.focus].Options
	i := slices.Index(opts, f.value(f.focus))
	if i < 0 {
		i = 0
	}
	n := len(opts)
	f.set(f.focus, opts[((i+delta)%n+n)%n])
}

// MoveFocus moves the focused row by delta, wrapping around.
func (f *Filter) MoveFocus(delta int) {
	n := int(rowCount)
	f.focus = Row(((int(f.focus)+delta)%n + n) % n)
}

// InputResult captures the result of handling a key press in filter mode.
type InputResult struct {
	ExitMode bool // Whether to exit filter mode
	Changed  bool // Whether the filter or pattern changed
}

// HandleKey handles keyboard input when in filter mode. Arrow keys move
// between rows and cycle options; printable keys edit the title pattern.
func (f *Filter) HandleKey(msg tea.KeyMsg) InputResult {
	switch msg.String() {
	case "esc", "enter":
		return InputResult{ExitMode: true}
	case "up", "shift+tab":
		f.MoveFocus(-1)
		return InputResult{}
	case "down", "tab":
		f.MoveFocus(1)
		return InputResult{}
	case "left":
		f.Cycle(-1)
		return InputResult{Changed: true}
	case "right":
		f.Cycle(1)
		return InputResult{Changed: true}
	case "ctrl+r":
		f.Reset()
		return InputResult{Changed: true}
	case "ctrl+u":
		f.ClearPattern()
		return InputResult{Changed: true}
	}

	switch msg.Type {
	case tea.KeyBackspace:
		f.BackspacePattern()
		return InputResult{Changed: true}
	case tea.KeyRunes:
		f.AppendToPattern(string(msg.Runes))
		return InputResult{Changed: true}
	case tea.KeySpace:
		f.AppendToPattern(" ")
		return InputResult{Changed: true}
	}

	return InputResult{}
}

// RenderPanel renders the filter configuration panel.
func RenderPanel(f *Filter, width int) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Filter & Sort"))
	b.WriteString("\n\n")

	for _, cat := range Categories {
		label := fmt.Sprintf("%-9s", cat.Label)
		if cat.Row == f.focus {
			b.WriteString(styles.FilterRowFocused.Render("▸ " + label))
		} else {
			b.WriteString(styles.Muted.Render("  " + label))
		}
		current := f.value(cat.Row)
		for _, opt := range cat.Options {
			var style lipgloss.Style
			if opt == current {
				style = styles.FilterOptionActive
				opt = "[" + opt + "]"
			} else {
				style = styles.FilterOption
				opt = " " + opt + " "
			}
			b.WriteString(style.Render(opt))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(styles.Secondary.Render("Title:"))
	b.WriteString(" ")
	if f.Pattern() != "" {
		b.WriteString(styles.Text.Render(f.Pattern()))
	} else {
		b.WriteString(styles.Muted.Render("(type to match titles, * and ? are wildcards)"))
	}
	b.WriteString("\n\n")

	b.WriteString(styles.Muted.Render("[↑/↓] row  [←/→] change  [ctrl+u] clear title  [ctrl+r] reset"))
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render("Press [Esc] or [Enter] to close"))

	return styles.ContentBox.Width(max(width-4, 20)).Render(b.String())
}
