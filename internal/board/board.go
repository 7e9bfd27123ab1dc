// Package board is the task board service: it owns the store subscription
// and local cache for one view, keeps the active filter, and routes every
// user action through the store while remembering the last failure as a
// dismissible notice.
package board

import (
	"context"
	"sync"
	"time"

	"github.com/AGLOP-1354/taskboard/internal/cache"
	"github.com/AGLOP-1354/taskboard/internal/drag"
	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/event"
	"github.com/AGLOP-1354/taskboard/internal/form"
	"github.com/AGLOP-1354/taskboard/internal/logging"
	"github.com/AGLOP-1354/taskboard/internal/store"
	"github.com/AGLOP-1354/taskboard/internal/task"
	"github.com/AGLOP-1354/taskboard/internal/view"
)

// Backend is what the service needs from a store.
type Backend interface {
	store.Writer
	store.Subscriber
}

// Notice is the single user-visible message about the last failed action.
type Notice struct {
	Message string
	Op      errors.Op
	TaskID  string
	At      time.Time
}

// Service is safe for concurrent use.
type Service struct {
	backend Backend
	cache   *cache.Cache
	drag    *drag.Controller
	bus     *event.Bus
	logger  *logging.Logger
	now     func() time.Time

	mu     sync.RWMutex
	filter view.Filter
	notice *Notice
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for validation and stats.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithFilter sets the initial filter. Invalid filters are ignored.
func WithFilter(f view.Filter) Option {
	return func(s *Service) {
		if f.Validate() == nil {
			s.filter = f
		}
	}
}

// New creates a service over backend. Call Start to open the subscription.
func New(backend Backend, opts ...Option) *Service {
	s := &Service{
		backend: backend,
		logger:  logging.NopLogger(),
		now:     time.Now,
		filter:  view.DefaultFilter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("board")
	s.bus = event.NewBus(s.logger)
	s.cache = cache.New(backend, s.logger)
	s.drag = drag.NewController(s.cache, backend, s.bus, s.logger)
	return s
}

// Start subscribes the cache.
func (s *Service) Start() error {
	return s.cache.Start()
}

// WaitReady blocks until the first snapshot has arrived.
func (s *Service) WaitReady(ctx context.Context) error {
	return s.cache.WaitReady(ctx)
}

// Close ends the subscription. The backend itself is left open.
func (s *Service) Close() {
	s.cache.Close()
	s.bus.Clear()
}

// Cache exposes the local cache for read access.
func (s *Service) Cache() *cache.Cache { return s.cache }

// Bus carries drag events.
func (s *Service) Bus() *event.Bus { return s.bus }

// OnChange registers fn to run after every snapshot.
func (s *Service) OnChange(fn func(version uint64, tasks []task.Task)) (remove func()) {
	return s.cache.OnChange(fn)
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// Snapshot returns the cached collection, newest first.
func (s *Service) Snapshot() []task.Task {
	return s.cache.Snapshot()
}

// Get returns a cached task.
func (s *Service) Get(id string) (task.Task, bool) {
	return s.cache.Get(id)
}

// View returns the cached snapshot filtered and sorted by the active filter.
func (s *Service) View() []task.Task {
	return view.Derive(s.cache.Snapshot(), s.Filter())
}

// Columns groups the current view by status.
func (s *Service) Columns() []view.Column {
	return view.Columns(s.View())
}

// Stats summarizes the unfiltered snapshot.
func (s *Service) Stats() view.Stats {
	return view.Summarize(s.cache.Snapshot(), s.now())
}

// Filter returns the active filter.
func (s *Service) Filter() view.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SetFilter replaces the active filter after validating it.
func (s *Service) SetFilter(f view.Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
	s.logger.Debug("filter changed", "filter", f.String())
	return nil
}

// Notice returns the pending failure notice, if any.
func (s *Service) Notice() (Notice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.notice == nil {
		return Notice{}, false
	}
	return *s.notice, true
}

// DismissNotice clears the pending notice.
func (s *Service) DismissNotice() {
	s.mu.Lock()
	s.notice = nil
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------
// Writes
// -----------------------------------------------------------------------------

// Submit sends a form to the store. Validation failures stay on the form
// and are not recorded as a notice.
func (s *Service) Submit(ctx context.Context, f *form.Form) (string, error) {
	op := errors.OpCreate
	if f.IsEdit() {
		op = errors.OpUpdate
	}
	id, err := f.Submit(ctx, s.backend)
	if errors.Is(err, form.ErrBlocked) {
		return "", err
	}
	return id, s.record(op, f.EditID(), err)
}

// Add validates in and creates a task.
func (s *Service) Add(ctx context.Context, in form.Input) (string, error) {
	f := form.New(s.now)
	fill(f, in)
	id, err := s.Submit(ctx, f)
	if errors.Is(err, form.ErrBlocked) {
		return "", f.Errors().Err()
	}
	return id, err
}

// Edit validates in and replaces the editable fields of task id.
func (s *Service) Edit(ctx context.Context, id string, in form.Input) error {
	f := form.Edit(task.Task{ID: id}, s.now)
	fill(f, in)
	_, err := s.Submit(ctx, f)
	if errors.Is(err, form.ErrBlocked) {
		return f.Errors().Err()
	}
	return err
}

func fill(f *form.Form, in form.Input) {
	f.SetTitle(in.Title)
	f.SetDescription(in.Description)
	f.SetPriority(in.Priority)
	f.SetDueDate(in.DueDate)
}

// Remove deletes task id.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.record(errors.OpDelete, id, s.backend.Delete(ctx, id))
}

// ToggleComplete marks an open task completed, or reopens a completed one
// into todo. Status and completed are always written together.
func (s *Service) ToggleComplete(ctx context.Context, id string) error {
	t, ok := s.cache.Get(id)
	if !ok {
		return s.record(errors.OpUpdate, id, errors.NewNotFoundError("task", id))
	}
	return s.record(errors.OpUpdate, id, s.backend.Update(ctx, id, task.SetCompleted(!t.Completed)))
}

// Move changes the stage of task id without a drag gesture. Moving a task
// to its current stage issues no update.
func (s *Service) Move(ctx context.Context, id string, to task.Status) error {
	if !to.Valid() {
		return errors.NewValidationError("unknown status").WithField("status").WithValue(string(to))
	}
	t, ok := s.cache.Get(id)
	if !ok {
		return s.record(errors.OpUpdate, id, errors.NewNotFoundError("task", id))
	}
	if t.Status == to {
		return nil
	}
	return s.record(errors.OpUpdate, id, s.backend.Update(ctx, id, task.MoveTo(to)))
}

// HandleDrag feeds one drag event to the controller.
func (s *Service) HandleDrag(ctx context.Context, e drag.Event) (drag.Decision, error) {
	d, err := s.drag.Dispatch(ctx, e)
	return d, s.record(errors.OpUpdate, d.TaskID, err)
}

// DragState reports the drag controller state.
func (s *Service) DragState() (drag.State, string) {
	return s.drag.State()
}

// record turns a failed store call into the pending notice and returns err.
func (s *Service) record(op errors.Op, id string, err error) error {
	if err == nil {
		return nil
	}
	msg := "An internal error occurred"
	if errors.IsUserFacing(err) {
		msg = err.Error()
	}
	s.logger.Warn("action failed", "op", string(op), "task_id", id, "error", err.Error())

	s.mu.Lock()
	s.notice = &Notice{Message: msg, Op: op, TaskID: id, At: s.now()}
	s.mu.Unlock()
	return err
}
