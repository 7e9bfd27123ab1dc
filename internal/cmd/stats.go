package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AGLOP-1354/taskboard/internal/view"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task counts per column",
	Long: `Display a summary of the collection.

Shows:
- Tasks per column
- Overdue tasks
- Completion rate`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var (
	statsJSON bool // Output as JSON
)

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	stats := view.Summarize(e.svc.Snapshot(), time.Now())
	if statsJSON {
		return printStatsJSON(cmd.OutOrStdout(), stats)
	}
	printStatsText(cmd.OutOrStdout(), e.cfg.Store.Collection, stats)
	return nil
}

func printStatsText(w io.Writer, collection string, s view.Stats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "BOARD SUMMARY")
	fmt.Fprintln(w, strings.Repeat("─", 40))
	fmt.Fprintf(w, "Collection:  %s\n", collection)
	fmt.Fprintf(w, "Total:       %d\n", s.Total)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "COLUMNS")
	fmt.Fprintln(w, strings.Repeat("─", 40))
	fmt.Fprintf(w, "To Do:       %d\n", s.Todo)
	fmt.Fprintf(w, "In Progress: %d\n", s.InProgress)
	fmt.Fprintf(w, "Completed:   %d\n", s.Completed)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Overdue:     %d\n", s.Overdue)
	fmt.Fprintf(w, "Complete:    %.0f%%\n", s.CompletionRate()*100)
}

func printStatsJSON(w io.Writer, s view.Stats) error {
	out := struct {
		view.Stats
		CompletionRate float64 `json:"completionRate"`
	}{s, s.CompletionRate()}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
