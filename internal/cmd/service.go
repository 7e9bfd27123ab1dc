package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AGLOP-1354/taskboard/internal/board"
	"github.com/AGLOP-1354/taskboard/internal/config"
	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/logging"
	"github.com/AGLOP-1354/taskboard/internal/store"
	"github.com/AGLOP-1354/taskboard/internal/view"
)

// readyTimeout bounds the wait for the first snapshot in one-shot commands.
const readyTimeout = 15 * time.Second

// CreateLogger creates a logger if logging is enabled in config.
// Returns a NopLogger if logging is disabled or if creation fails.
func CreateLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}

	rotationConfig := logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	}

	logger, err := logging.NewLoggerWithRotation(cfg.Logging.ResolveDir(), cfg.Logging.Level, rotationConfig)
	if err != nil {
		// Log creation failure shouldn't prevent the command from running
		fmt.Fprintf(os.Stderr, "Warning: failed to create logger: %v\n", err)
		return logging.NopLogger()
	}
	return logger
}

// env is everything a command needs to talk to the configured store.
type env struct {
	cfg    *config.Config
	logger *logging.Logger
	store  store.Store
	svc    *board.Service
}

// openEnv loads configuration, opens the store and starts a board service
// over it. The returned env must be closed.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := CreateLogger(cfg)

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	initial, err := view.ParseFilter(cfg.Board.Status, cfg.Board.Priority, cfg.Board.SortBy, cfg.Board.SortOrder)
	if err != nil {
		initial = view.DefaultFilter()
	}
	svc := board.New(st, board.WithLogger(logger), board.WithFilter(initial))
	if err := svc.Start(); err != nil {
		_ = st.Close()
		_ = logger.Close()
		return nil, fmt.Errorf("failed to subscribe to %s store: %w", st.Backend(), err)
	}

	e := &env{cfg: cfg, logger: logger, store: st, svc: svc}
	waitCtx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	if err := svc.WaitReady(waitCtx); err != nil {
		e.Close()
		return nil, fmt.Errorf("no snapshot from %s store: %w", st.Backend(), err)
	}
	return e, nil
}

// Close stops the service and releases the store and logger.
func (e *env) Close() {
	e.svc.Close()
	if err := e.store.Close(); err != nil {
		e.logger.Warn("failed to close store", "error", err.Error())
	}
	_ = e.logger.Close()
}

// resolveID maps an exact ID or a unique ID prefix to a cached task ID.
func (e *env) resolveID(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.NewValidationError("task id is required").WithField("id")
	}
	if _, ok := e.svc.Get(arg); ok {
		return arg, nil
	}

	var matches []string
	for _, t := range e.svc.Snapshot() {
		if strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", errors.NewNotFoundError("task", arg)
	case 1:
		return matches[0], nil
	default:
		return "", errors.NewValidationError(fmt.Sprintf("id prefix matches %d tasks", len(matches))).
			WithField("id").WithValue(arg)
	}
}
