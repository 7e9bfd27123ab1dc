package view

import (
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// Column is one kanban column.
type Column struct {
	Status task.Status
	Tasks  []task.Task
}

// Columns groups tasks by status, one column per status in workflow order.
// Within a column tasks keep their input order.
func Columns(tasks []task.Task) []Column {
	statuses := task.Statuses()
	cols := make([]Column, len(statuses))
	pos := make(map[task.Status]int, len(statuses))
	for i, s := range statuses {
		cols[i] = Column{Status: s, Tasks: []task.Task{}}
		pos[s] = i
	}
	for _, t := range tasks {
		if i, ok := pos[t.Status]; ok {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	return cols
}

// Stats counts tasks per status.
type Stats struct {
	Total      int `json:"total" yaml:"total"`
	Todo       int `json:"todo" yaml:"todo"`
	InProgress int `json:"inProgress" yaml:"inProgress"`
	Completed  int `json:"completed" yaml:"completed"`
	Overdue    int `json:"overdue" yaml:"overdue"`
}

// CompletionRate returns Completed/Total in [0,1]; 0 for an empty board.
func (s Stats) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total)
}

// Summarize computes Stats for tasks as of now.
func Summarize(tasks []task.Task, now time.Time) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		switch t.Status {
		case task.StatusTodo:
			s.Todo++
		case task.StatusInProgress:
			s.InProgress++
		case task.StatusCompleted:
			s.Completed++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	return s
}

// MatchTitle keeps the tasks whose title matches pattern, ignoring case.
// A pattern without glob metacharacters matches as a substring.
func MatchTitle(tasks []task.Task, pattern string) ([]task.Task, error) {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return tasks, nil
	}
	if !strings.ContainsAny(pattern, "*?[{") {
		pattern = "*" + pattern + "*"
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.NewValidationError("invalid title pattern").WithField("title").WithValue(pattern).WithCause(err)
	}

	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if g.Match(strings.ToLower(t.Title)) {
			out = append(out, t)
		}
	}
	return out, nil
}
