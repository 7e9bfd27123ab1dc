package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/AGLOP-1354/taskboard/internal/task"
	"github.com/AGLOP-1354/taskboard/internal/tui/filter"
	"github.com/AGLOP-1354/taskboard/internal/tui/styles"
	"github.com/AGLOP-1354/taskboard/internal/view"
)

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return styles.Muted.Render("Loading tasks...")
	}

	var body string
	switch m.mode {
	case modeForm:
		body = m.editor.View(m.width)
	case modeFilter:
		body = filter.RenderPanel(m.filter, m.width)
	case modeHelp:
		body = m.renderHelp()
	default:
		if m.layout == LayoutList {
			body = m.renderList()
		} else {
			body = m.renderBoard()
		}
	}

	// Pad the body so the footer stays on the last two rows.
	bodyHeight := max(m.height-HeaderLines-FooterLines, 0)
	if lines := lipgloss.Height(body); lines < bodyHeight {
		body += strings.Repeat("\n", bodyHeight-lines)
	}

	return strings.Join([]string{
		m.fit(m.renderHeader()),
		m.fit(m.renderFilterLine()),
		body,
		m.fit(m.renderStatusLine()),
		m.fit(m.renderHelpBar()),
	}, "\n")
}

// fit truncates a single rendered line to the terminal width.
func (m Model) fit(line string) string {
	if m.width <= 0 {
		return line
	}
	return ansi.Truncate(line, m.width, "…")
}

func (m Model) renderHeader() string {
	s := m.stats
	parts := []string{
		fmt.Sprintf("%d tasks", s.Total),
		fmt.Sprintf("%d to do", s.Todo),
		fmt.Sprintf("%d in progress", s.InProgress),
		fmt.Sprintf("%d done", s.Completed),
	}
	overdue := fmt.Sprintf("%d overdue", s.Overdue)
	if s.Overdue > 0 {
		overdue = styles.Overdue.Render(overdue)
	}
	parts = append(parts, overdue, fmt.Sprintf("%.0f%% complete", s.CompletionRate()*100))
	return styles.Title.Render("taskboard") + "  " + styles.Muted.Render(strings.Join(parts, " · "))
}

func (m Model) renderFilterLine() string {
	if !m.filter.HasActiveFilter() {
		return styles.Subtitle.Render(fmt.Sprintf("showing %d of %d", len(m.visible), m.stats.Total))
	}
	return styles.Secondary.Render("filter: ") + styles.Muted.Render(
		fmt.Sprintf("%s · showing %d of %d", m.filter.Summary(), len(m.visible), m.stats.Total))
}

func (m Model) renderStatusLine() string {
	switch {
	case m.mode == modeConfirmDelete:
		title := m.confirmID
		if t, ok := m.svc.Get(m.confirmID); ok {
			title = t.Title
		}
		return styles.Warning.Render(fmt.Sprintf("Delete %q? [y/n]", title))
	case m.grabID != "":
		title := m.grabID
		if t, ok := m.svc.Get(m.grabID); ok {
			title = t.Title
		}
		return styles.Primary.Render(fmt.Sprintf("Moving %q → %s", title, task.Statuses()[m.grabTarget].Label()))
	case m.dropping:
		return styles.Muted.Render("Moving...")
	case m.notice != "":
		return styles.NoticeBanner.Render(m.notice) + styles.Muted.Render("  [esc] dismiss")
	}
	return ""
}

func helpItems(pairs ...string) string {
	items := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		items = append(items, styles.HelpKey.Render("["+pairs[i]+"]")+" "+pairs[i+1])
	}
	return styles.HelpBar.Render(strings.Join(items, "  "))
}

func (m Model) renderHelpBar() string {
	switch {
	case m.mode == modeForm:
		return helpItems("tab", "next", "ctrl+s", "save", "esc", "cancel")
	case m.mode == modeFilter:
		return helpItems("↑/↓", "row", "←/→", "change", "esc", "close")
	case m.mode == modeHelp:
		return helpItems("esc", "close")
	case m.mode == modeConfirmDelete:
		return helpItems("y", "delete", "n", "keep")
	case m.grabID != "":
		return helpItems("h/l", "choose column", "enter", "drop", "esc", "cancel")
	}
	toggle := "list"
	if m.layout == LayoutList {
		toggle = "board"
	}
	return helpItems("n", "new", "e", "edit", "space", "grab", "c", "done", "d", "delete",
		"/", "filter", "v", toggle, "?", "help", "q", "quit")
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Keys"))
	b.WriteString("\n\n")
	rows := [][2]string{
		{"h/l ←/→", "focus column"},
		{"j/k ↑/↓", "select task"},
		{"g/G", "first / last task"},
		{"n", "new task"},
		{"e, enter", "edit selected task"},
		{"c", "toggle completed"},
		{"H/L", "move selected task one stage left / right"},
		{"space", "grab selected task, then h/l and enter to drop, esc to cancel"},
		{"mouse", "drag a card to another column"},
		{"d", "delete selected task"},
		{"/, f", "filter and sort"},
		{"v", "switch between board and list"},
		{"esc", "dismiss the error notice"},
		{"q", "quit"},
	}
	for _, r := range rows {
		b.WriteString(styles.HelpKey.Render(fmt.Sprintf("%-10s", r[0])))
		b.WriteString(" ")
		b.WriteString(r[1])
		b.WriteString("\n")
	}
	return styles.ContentBox.Width(max(m.width-4, 40)).Render(b.String())
}

// -----------------------------------------------------------------------------
// Board
// -----------------------------------------------------------------------------

func (m Model) renderBoard() string {
	l := m.boardLayout()
	dragID, mouseDragging := m.pointer.sensor.Active()
	if !mouseDragging {
		dragID = m.grabID
	}

	cols := make([]string, 0, len(m.columns))
	for i, col := range m.columns {
		target := (mouseDragging && m.pointer.hover == col.Status) ||
			(m.grabID != "" && m.grabTarget == i)
		cols = append(cols, m.renderColumn(l, i, col, dragID, target))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderColumn(l boardLayout, index int, col view.Column, dragID string, target bool) string {
	width := l.contentWidth()
	lines := make([]string, 0, l.innerHeight())

	heading := fmt.Sprintf("%s %s (%d)", styles.StatusIcon(col.Status), col.Status.Label(), len(col.Tasks))
	headingStyle := styles.ColumnHeading.Foreground(styles.StatusColor(col.Status))
	if index == m.col && m.layout == LayoutBoard {
		heading = "▸ " + heading
	}
	lines = append(lines, headingStyle.Render(ansi.Truncate(heading, width, "…")))
	lines = append(lines, styles.Muted.Render(strings.Repeat("─", width)))

	offset := m.offsets[index]
	end := min(offset+l.visibleCards(), len(col.Tasks))
	for r := offset; r < end; r++ {
		t := col.Tasks[r]
		selected := index == m.col && r == m.rows[index]
		title, meta := m.renderCard(t, width, selected, t.ID == dragID)
		lines = append(lines, title, meta, "")
	}

	style := styles.Column
	if target {
		style = styles.ColumnDropTarget
	}
	return style.
		Width(l.columnWidth() - 2).
		Height(l.innerHeight()).
		MaxHeight(l.innerHeight() + 2).
		Render(strings.Join(lines, "\n"))
}

// renderCard returns the two lines of a card, each at most width cells.
func (m Model) renderCard(t task.Task, width int, selected, dragged bool) (string, string) {
	title := ansi.Truncate(t.Title, max(width-2, 1), "…")
	line := "  " + title
	style := styles.Card
	switch {
	case dragged:
		style = styles.CardGrabbed
		line = "⇄ " + title
	case selected:
		style = styles.CardSelected
		line = "▸ " + title
	case t.Completed:
		style = styles.CardDone
	}

	meta := "  " + styles.PriorityBadge(t.Priority)
	if due := formatDue(t, m.now()); due != "" {
		meta += "  " + due
	}
	return style.Render(line), ansi.Truncate(meta, width, "…")
}

func formatDue(t task.Task, now time.Time) string {
	if t.DueDate == nil {
		return ""
	}
	d := t.DueDate.In(time.Local)
	label := d.Format("Jan 02")
	if d.Hour() != 23 || d.Minute() != 59 {
		label = d.Format("Jan 02 15:04")
	}
	if t.IsOverdue(now) {
		return styles.Overdue.Render("overdue " + label)
	}
	return styles.CardMeta.Render("due " + label)
}

// -----------------------------------------------------------------------------
// List
// -----------------------------------------------------------------------------

func (m Model) renderList() string {
	titleWidth := max(m.width-2-14-10-18, 10)
	header := fmt.Sprintf("  %-14s %-*s %-10s %s", "STATUS", titleWidth, "TITLE", "PRIORITY", "DUE")

	var b strings.Builder
	b.WriteString(styles.ListHeader.Render(m.fit(header)))
	b.WriteString("\n")

	if len(m.visible) == 0 {
		b.WriteString(styles.Muted.Render("  No tasks match the current filter."))
		return b.String()
	}

	end := min(m.listOffset+m.listCapacity(), len(m.visible))
	for i := m.listOffset; i < end; i++ {
		t := m.visible[i]
		cursor := "  "
		if i == m.listRow {
			cursor = "▸ "
		}
		status := lipgloss.NewStyle().Foreground(styles.StatusColor(t.Status)).
			Render(fmt.Sprintf("%-14s", styles.StatusIcon(t.Status)+" "+t.Status.Label()))
		title := ansi.Truncate(t.Title, titleWidth, "…")
		title += strings.Repeat(" ", max(titleWidth-ansi.StringWidth(title), 0))
		if t.Completed {
			title = styles.CardDone.Render(title)
		}
		priority := styles.PriorityBadge(t.Priority)
		priority += strings.Repeat(" ", max(10-ansi.StringWidth(priority), 0))

		row := cursor + status + " " + title + " " + priority + " " + formatDue(t, m.now())
		if i == m.listRow {
			row = styles.CardSelected.Render(row)
		}
		b.WriteString(m.fit(row))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
