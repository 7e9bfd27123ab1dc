package tui

import "github.com/AGLOP-1354/taskboard/internal/task"

// Layout constants. The board view is rendered so that these hold exactly,
// which lets mouse coordinates be mapped back to columns and cards.
const (
	HeaderLines = 2 // title/stats line + filter summary line
	FooterLines = 2 // notice or status line + help bar

	// ColumnChrome is the heading and the rule under it, inside the border.
	ColumnChrome = 2
	// CardHeight is the lines per card: title, meta and a spacer.
	CardHeight = 3

	// CardTop is the first screen row of the first visible card.
	CardTop = HeaderLines + 1 + ColumnChrome

	MinColumnWidth = 16
)

// boardLayout maps screen cells to columns and card slots.
type boardLayout struct {
	width  int
	height int
}

func newBoardLayout(width, height int) boardLayout {
	return boardLayout{width: width, height: height}
}

// columnWidth is the outer width of one column including its border.
func (l boardLayout) columnWidth() int {
	return max(l.width/len(task.Statuses()), MinColumnWidth)
}

// contentWidth is the usable text width inside a column.
func (l boardLayout) contentWidth() int {
	// border (2) + horizontal padding (2)
	return max(l.columnWidth()-4, 1)
}

// innerHeight is the number of rows inside a column border.
func (l boardLayout) innerHeight() int {
	return max(l.height-HeaderLines-FooterLines-2, ColumnChrome+CardHeight)
}

// visibleCards is how many cards fit in a column.
func (l boardLayout) visibleCards() int {
	return max((l.innerHeight()-ColumnChrome)/CardHeight, 1)
}

// columnAt returns the column index under x, if any.
func (l boardLayout) columnAt(x, y int) (int, bool) {
	if x < 0 || y < HeaderLines || y >= HeaderLines+l.innerHeight()+2 {
		return 0, false
	}
	i := x / l.columnWidth()
	if i >= len(task.Statuses()) {
		return 0, false
	}
	return i, true
}

// statusAt returns the stage of the column under (x, y), or "" when the
// point is outside every column.
func (l boardLayout) statusAt(x, y int) task.Status {
	i, ok := l.columnAt(x, y)
	if !ok {
		return ""
	}
	return task.Statuses()[i]
}

// slotAt returns the visible card slot under y. Spacer rows between cards
// are not part of any card.
func (l boardLayout) slotAt(y int) (int, bool) {
	if y < CardTop {
		return 0, false
	}
	offset := y - CardTop
	if offset%CardHeight == CardHeight-1 {
		return 0, false
	}
	slot := offset / CardHeight
	if slot >= l.visibleCards() {
		return 0, false
	}
	return slot, true
}

// scrollFor returns the first visible index that keeps selected in view,
// starting from the current offset.
func (l boardLayout) scrollFor(offset, selected, total int) int {
	return listScroll(offset, selected, total, l.visibleCards())
}

// ListHeaderLines is the list heading plus its bottom border.
const ListHeaderLines = 2

// listCapacity is how many rows the list view shows.
func (m Model) listCapacity() int {
	return max(m.height-HeaderLines-FooterLines-ListHeaderLines, 1)
}

// listScroll returns the first visible row that keeps selected in view.
func listScroll(offset, selected, total, capacity int) int {
	if selected < offset {
		offset = selected
	}
	if selected >= offset+capacity {
		offset = selected - capacity + 1
	}
	if maxOffset := max(total-capacity, 0); offset > maxOffset {
		offset = maxOffset
	}
	return max(offset, 0)
}
