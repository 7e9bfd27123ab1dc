// Package filter provides the filter and sort panel for the taskboard TUI.
//
// The panel edits a [view.Filter] (status, priority, sort key and order)
// and a title pattern. Rows are selected with the arrow keys and every
// printable key goes to the title pattern, which is matched as a
// case-insensitive glob.
//
// # Usage
//
//	f := filter.New(view.DefaultFilter())
//
//	result := f.HandleKey(keyMsg)
//	if result.Changed {
//	    visible := f.Apply(snapshot)
//	}
//	if result.ExitMode {
//	    // User pressed Esc or Enter
//	}
//
//	panel := filter.RenderPanel(f, width)
package filter
