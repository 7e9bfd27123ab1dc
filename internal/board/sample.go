package board

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// maxParallelWrites bounds concurrent store calls made by Seed and Clear.
const maxParallelWrites = 4

type sample struct {
	title       string
	description string
	priority    task.Priority
	dueIn       time.Duration
}

var samples = []sample{
	{"Write project proposal", "Draft the proposal for the new web application.", task.PriorityHigh, 3 * 24 * time.Hour},
	{"Review UI/UX design", "Go through the interface mockups and collect feedback.", task.PriorityMedium, 5 * 24 * time.Hour},
	{"Code review", "Review teammates' changes and suggest improvements.", task.PriorityMedium, 2 * 24 * time.Hour},
	{"Update documentation", "Bring the API docs and user guide up to date.", task.PriorityLow, 7 * 24 * time.Hour},
	{"Write test cases", "Add test cases for the new features.", task.PriorityHigh, 24 * time.Hour},
}

// SampleData returns the sample tasks created by Seed, with due dates
// relative to now.
func SampleData(now time.Time) []task.NewTaskData {
	out := make([]task.NewTaskData, len(samples))
	for i, s := range samples {
		due := now.Add(s.dueIn)
		out[i] = task.NewTaskData{
			Title:       s.title,
			Description: s.description,
			Priority:    s.priority,
			DueDate:     &due,
		}
	}
	return out
}

// Seed creates the sample tasks and returns their IDs in sample order.
func (s *Service) Seed(ctx context.Context) ([]string, error) {
	data := SampleData(s.now())
	ids := make([]string, len(data))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelWrites)
	for i, d := range data {
		g.Go(func() error {
			id, err := s.backend.Create(gctx, d)
			if err != nil {
				return err
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.record(errors.OpCreate, "", err)
	}
	s.logger.Info("sample data created", "count", len(ids))
	return ids, nil
}

// Clear deletes every task in the current snapshot and returns how many
// were removed. Tasks already gone by the time they are deleted are not
// counted and are not an error.
func (s *Service) Clear(ctx context.Context) (int, error) {
	tasks := s.cache.Snapshot()

	var mu sync.Mutex
	removed := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelWrites)
	for _, t := range tasks {
		g.Go(func() error {
			err := s.backend.Delete(gctx, t.ID)
			if errors.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			removed++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return removed, s.record(errors.OpDelete, "", err)
	}
	s.logger.Info("all tasks deleted", "count", removed)
	return removed, nil
}
