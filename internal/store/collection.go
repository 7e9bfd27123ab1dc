package store

import (
	"fmt"
	"time"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// collection is the record map shared by the memory and file backends.
// It is not safe for concurrent use; callers hold their own lock.
type collection struct {
	Records map[string]task.Record `json:"records"`
}

func newCollection() *collection {
	return &collection{Records: make(map[string]task.Record)}
}

func (c *collection) create(id string, data task.NewTaskData, now time.Time) error {
	if err := task.ValidateNew(data); err != nil {
		return err
	}
	if _, exists := c.Records[id]; exists {
		return fmt.Errorf("record %s already exists", id)
	}
	c.Records[id] = task.NewRecord(data, now)
	return nil
}

func (c *collection) update(id string, patch task.Patch, now time.Time) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	rec, ok := c.Records[id]
	if !ok {
		return errors.NewNotFoundError("task", id)
	}
	c.Records[id] = patch.Apply(rec, now)
	return nil
}

func (c *collection) delete(id string) error {
	if _, ok := c.Records[id]; !ok {
		return errors.NewNotFoundError("task", id)
	}
	delete(c.Records, id)
	return nil
}

// snapshot migrates every record and orders the result newest first.
func (c *collection) snapshot() []task.Task {
	tasks := make([]task.Task, 0, len(c.Records))
	for id, rec := range c.Records {
		tasks = append(tasks, task.FromRecord(id, rec))
	}
	task.SortSnapshot(tasks)
	return tasks
}
