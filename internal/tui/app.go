package tui

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/AGLOP-1354/taskboard/internal/board"
	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// ErrNotTerminal is returned by Run when stdout is not a terminal.
var ErrNotTerminal = errors.New("the board needs an interactive terminal; use 'taskboard list' instead")

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
	svc     *board.Service
}

// New creates a new TUI application over a started board service.
func New(svc *board.Service, opts Options) *App {
	return &App{
		model: NewModel(svc, opts),
		svc:   svc,
	}
}

// Run starts the TUI application and blocks until the user quits or ctx
// is done.
func (a *App) Run(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotTerminal
	}

	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	// Forward every snapshot the cache applies into the event loop.
	remove := a.svc.OnChange(func(version uint64, _ []task.Task) {
		a.program.Send(snapshotMsg{version: version})
	})
	defer remove()

	_, err := a.program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
