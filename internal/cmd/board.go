package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/AGLOP-1354/taskboard/internal/config"
	"github.com/AGLOP-1354/taskboard/internal/tui"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive kanban board",
	Long: `Open the interactive kanban board.

The board shows three columns and follows every change made to the
collection, including changes made by other boards or commands.

Move a task between columns by dragging its card with the mouse, or
select it, press space to grab it, choose a column with h/l and press
enter to drop it. Press ? on the board for all keys.`,
	Args: cobra.NoArgs,
	RunE: runBoard,
}

var boardView string

func init() {
	boardCmd.Flags().StringVar(&boardView, "view", "", "initial layout: board or list (default from config)")
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, args []string) error {
	if boardView != "" && !slices.Contains(config.ValidViews(), boardView) {
		return fmt.Errorf("invalid --view %q: must be one of %s", boardView, strings.Join(config.ValidViews(), ", "))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	app := tui.New(e.svc, boardOptions(e))
	e.logger.Info("board started", "backend", e.store.Backend(), "collection", e.cfg.Store.Collection)
	err = app.Run(ctx)
	e.logger.Info("board stopped")
	return err
}

func boardOptions(e *env) tui.Options {
	layout := tui.Layout(e.cfg.Board.View)
	if boardView != "" {
		layout = tui.Layout(boardView)
	}
	return tui.Options{
		ActivationDistance: e.cfg.Board.ActivationDistance,
		Layout:             layout,
		Logger:             e.logger,
	}
}
