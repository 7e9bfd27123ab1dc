package store

import (
	"context"
	"slices"
	"sync"

	"github.com/AGLOP-1354/taskboard/internal/task"
)

// pump serializes snapshot delivery for one subscription. Triggers that
// arrive while a load is running coalesce into a single reload, and every
// delivery reflects the collection as read at load time, so a slow consumer
// only ever skips intermediate states. Identical consecutive snapshots are
// delivered once.
type pump struct {
	load    func(context.Context) ([]task.Task, error)
	deliver SnapshotFunc
	onError func(error)

	kick   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func startPump(load func(context.Context) ([]task.Task, error), deliver SnapshotFunc, onError func(error)) *pump {
	ctx, cancel := context.WithCancel(context.Background())
	p := &pump{
		load:    load,
		deliver: deliver,
		onError: onError,
		kick:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	p.kick <- struct{}{}
	go p.run()
	return p
}

// Trigger schedules a reload. It never blocks.
func (p *pump) Trigger() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Stop ends the pump. It does not wait for an in-flight delivery, so it is
// safe to call from inside the snapshot callback.
func (p *pump) Stop() {
	p.once.Do(p.cancel)
}

// Done is closed once the pump goroutine has exited.
func (p *pump) Done() <-chan struct{} {
	return p.done
}

func (p *pump) run() {
	defer close(p.done)

	var last []task.Task
	delivered := false
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.kick:
		}

		tasks, err := p.load(p.ctx)
		if p.ctx.Err() != nil {
			return
		}
		if err != nil {
			p.onError(err)
			continue
		}
		if delivered && equalSnapshots(last, tasks) {
			continue
		}
		last, delivered = tasks, true
		p.deliver(slices.Clone(tasks))
	}
}

func equalSnapshots(a, b []task.Task) bool {
	return slices.EqualFunc(a, b, equalTasks)
}

func equalTasks(a, b task.Task) bool {
	if a.ID != b.ID || a.Title != b.Title || a.Description != b.Description ||
		a.Status != b.Status || a.Completed != b.Completed || a.Priority != b.Priority ||
		!a.CreatedAt.Equal(b.CreatedAt) || !a.UpdatedAt.Equal(b.UpdatedAt) {
		return false
	}
	if (a.DueDate == nil) != (b.DueDate == nil) {
		return false
	}
	return a.DueDate == nil || a.DueDate.Equal(*b.DueDate)
}
