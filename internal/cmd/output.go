package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/AGLOP-1354/taskboard/internal/task"
	"github.com/AGLOP-1354/taskboard/internal/tui/styles"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validFormats() []string {
	return []string{formatTable, formatJSON, formatYAML}
}

func checkFormat(format string) error {
	if !slices.Contains(validFormats(), format) {
		return fmt.Errorf("invalid --format %q: must be one of %s", format, strings.Join(validFormats(), ", "))
	}
	return nil
}

// shortIDLen is how much of a task ID the table shows. Commands accept any
// unique prefix.
const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// writeTasks prints tasks in the requested format.
func writeTasks(w io.Writer, tasks []task.Task, format string, now time.Time) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if tasks == nil {
			tasks = []task.Task{}
		}
		return enc.Encode(tasks)
	case formatYAML:
		return writeYAML(w, tasks)
	}

	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			shortID(t.ID),
			styles.StatusIcon(t.Status) + " " + t.Status.Label(),
			styles.PriorityBadge(t.Priority),
			t.Title,
			formatDue(t, now),
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Muted).
		Headers("ID", "STATUS", "PRIORITY", "TITLE", "DUE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(styles.MutedColor).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func formatDue(t task.Task, now time.Time) string {
	if t.DueDate == nil {
		return ""
	}
	s := t.DueDate.In(time.Local).Format("2006-01-02 15:04")
	if t.IsOverdue(now) {
		s += " (overdue)"
	}
	return s
}
