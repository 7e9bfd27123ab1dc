// Package view derives what the board displays from a snapshot and a
// filter. Everything here is pure: the same snapshot and filter always
// produce the same result, and the snapshot is never modified.
package view

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// All matches every status or priority.
const All = "all"

// SortKey selects the numeric key tasks are ordered by.
type SortKey string

const (
	SortByCreatedAt SortKey = "createdAt"
	SortByPriority  SortKey = "priority"
	SortByDueDate   SortKey = "dueDate"
)

// SortKeys returns the supported sort keys.
func SortKeys() []SortKey {
	return []SortKey{SortByCreatedAt, SortByPriority, SortByDueDate}
}

// SortOrder is ascending or descending.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Filter is the filter and sort settings applied by Derive.
type Filter struct {
	// Status is All or a task.Status value.
	Status string `json:"status" yaml:"status"`
	// Priority is All or a task.Priority value.
	Priority  string    `json:"priority" yaml:"priority"`
	SortBy    SortKey   `json:"sortBy" yaml:"sortBy"`
	SortOrder SortOrder `json:"sortOrder" yaml:"sortOrder"`
}

// DefaultFilter shows everything, newest first.
func DefaultFilter() Filter {
	return Filter{Status: All, Priority: All, SortBy: SortByCreatedAt, SortOrder: Desc}
}

// ParseFilter builds a Filter from user input. Empty strings take the
// default for that field and status aliases such as "done" are accepted.
func ParseFilter(status, priority, sortBy, sortOrder string) (Filter, error) {
	f := DefaultFilter()

	if s := strings.TrimSpace(status); s != "" && !strings.EqualFold(s, All) {
		st, err := task.ParseStatus(s)
		if err != nil {
			return Filter{}, err
		}
		f.Status = string(st)
	}
	if p := strings.TrimSpace(priority); p != "" && !strings.EqualFold(p, All) {
		pr, err := task.ParsePriority(p)
		if err != nil {
			return Filter{}, err
		}
		f.Priority = string(pr)
	}
	if k := strings.TrimSpace(sortBy); k != "" {
		key, err := parseSortKey(k)
		if err != nil {
			return Filter{}, err
		}
		f.SortBy = key
	}
	if o := strings.TrimSpace(sortOrder); o != "" {
		f.SortOrder = SortOrder(strings.ToLower(o))
	}

	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func parseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(s)) {
	case "createdat", "created":
		return SortByCreatedAt, nil
	case "priority":
		return SortByPriority, nil
	case "duedate", "due":
		return SortByDueDate, nil
	}
	return "", errors.NewValidationError("unknown sort key").WithField("sortBy").WithValue(s)
}

// Validate reports the first invalid field.
func (f Filter) Validate() error {
	if f.Status != All && !task.Status(f.Status).Valid() {
		return errors.NewValidationError("unknown status").WithField("status").WithValue(f.Status)
	}
	if f.Priority != All && !task.Priority(f.Priority).Valid() {
		return errors.NewValidationError("unknown priority").WithField("priority").WithValue(f.Priority)
	}
	if !slices.Contains(SortKeys(), f.SortBy) {
		return errors.NewValidationError("unknown sort key").WithField("sortBy").WithValue(string(f.SortBy))
	}
	if f.SortOrder != Asc && f.SortOrder != Desc {
		return errors.NewValidationError("sort order must be asc or desc").WithField("sortOrder").WithValue(string(f.SortOrder))
	}
	return nil
}

// IsDefault reports whether f equals DefaultFilter.
func (f Filter) IsDefault() bool {
	return f == DefaultFilter()
}

// String renders the filter for status lines, e.g.
// "status=todo priority=all sort=priority desc".
func (f Filter) String() string {
	return fmt.Sprintf("status=%s priority=%s sort=%s %s", f.Status, f.Priority, f.SortBy, f.SortOrder)
}

// Matches reports whether t passes both the status and priority predicates.
func (f Filter) Matches(t task.Task) bool {
	if f.Status != All && string(t.Status) != f.Status {
		return false
	}
	if f.Priority != All && string(t.Priority) != f.Priority {
		return false
	}
	return true
}

// Derive returns the tasks of snapshot that match f, ordered by f's sort
// key. The sort is stable, so ties keep their snapshot order.
func Derive(snapshot []task.Task, f Filter) []task.Task {
	out := make([]task.Task, 0, len(snapshot))
	for _, t := range snapshot {
		if f.Matches(t) {
			out = append(out, t)
		}
	}

	key := sortKeyFunc(f.SortBy)
	desc := f.SortOrder == Desc
	slices.SortStableFunc(out, func(a, b task.Task) int {
		c := cmp.Compare(key(a), key(b))
		if desc {
			return -c
		}
		return c
	})
	return out
}

// sortKeyFunc maps a task to its numeric sort key. A missing due date is 0,
// which orders it before every real date.
func sortKeyFunc(k SortKey) func(task.Task) int64 {
	switch k {
	case SortByPriority:
		return func(t task.Task) int64 { return int64(t.Priority.Rank()) }
	case SortByDueDate:
		return func(t task.Task) int64 {
			if t.DueDate == nil {
				return 0
			}
			return t.DueDate.UnixNano()
		}
	default:
		return func(t task.Task) int64 { return t.CreatedAt.UnixNano() }
	}
}
