package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AGLOP-1354/taskboard/internal/task"
	"github.com/AGLOP-1354/taskboard/internal/tui/styles"
	"github.com/AGLOP-1354/taskboard/internal/view"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print every snapshot pushed by the store",
	Long: `Follow the collection and print a line for every snapshot the store
pushes, until interrupted.

With --format json each snapshot is printed as one JSON object per line:
  {"version": 3, "at": "...", "tasks": [...]}`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchFormat string
	watchTasks  bool
)

func init() {
	watchCmd.Flags().StringVarP(&watchFormat, "format", "o", "text", "output format: text or json")
	watchCmd.Flags().BoolVar(&watchTasks, "tasks", false, "list every task under each text snapshot")
	rootCmd.AddCommand(watchCmd)
}

type snapshotUpdate struct {
	Version uint64      `json:"version"`
	At      time.Time   `json:"at"`
	Tasks   []task.Task `json:"tasks"`
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchFormat != "text" && watchFormat != formatJSON {
		return fmt.Errorf("invalid --format %q: must be text or json", watchFormat)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	return watchSnapshots(ctx, e, cmd.OutOrStdout())
}

// watchSnapshots prints the current snapshot and then every newer one until
// ctx is done.
func watchSnapshots(ctx context.Context, e *env, w io.Writer) error {
	updates := make(chan snapshotUpdate, 16)
	remove := e.svc.OnChange(func(version uint64, tasks []task.Task) {
		select {
		case updates <- snapshotUpdate{Version: version, At: time.Now(), Tasks: tasks}:
		case <-ctx.Done():
		}
	})
	defer remove()

	last := e.svc.Cache().Version()
	if err := printSnapshot(w, snapshotUpdate{Version: last, At: time.Now(), Tasks: e.svc.Snapshot()}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-updates:
			// The cache may have applied u before the first print.
			if u.Version <= last {
				continue
			}
			last = u.Version
			if err := printSnapshot(w, u); err != nil {
				return err
			}
		}
	}
}

func printSnapshot(w io.Writer, u snapshotUpdate) error {
	if watchFormat == formatJSON {
		if u.Tasks == nil {
			u.Tasks = []task.Task{}
		}
		return json.NewEncoder(w).Encode(u)
	}

	s := view.Summarize(u.Tasks, u.At)
	_, err := fmt.Fprintf(w, "[%s] v%d  %d tasks · %d to do · %d in progress · %d done · %d overdue\n",
		u.At.Format("15:04:05"), u.Version, s.Total, s.Todo, s.InProgress, s.Completed, s.Overdue)
	if err != nil || !watchTasks {
		return err
	}
	for _, t := range u.Tasks {
		if _, err := fmt.Fprintf(w, "  %s %s  %s  %s\n",
			styles.StatusIcon(t.Status), shortID(t.ID), styles.PriorityBadge(t.Priority), t.Title); err != nil {
			return err
		}
	}
	return nil
}
