package cmd

import (
	"fmt"
	"time"

	"github.com/AGLOP-1354/taskboard/internal/view"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List the tasks in the collection, filtered and sorted.

Filters default to the board settings in the config file.

Examples:
  # Everything still open, most urgent first
  taskboard list --status todo --sort priority

  # High priority tasks due soonest first
  taskboard list --priority high --sort dueDate --order asc

  # Titles matching a glob, as JSON
  taskboard list --title "*review*" --format json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listStatus   string
	listPriority string
	listSort     string
	listOrder    string
	listTitle    string
	listFormat   string
)

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "status filter: all, todo, in-progress or completed")
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", "", "priority filter: all, high, medium or low")
	listCmd.Flags().StringVar(&listSort, "sort", "", "sort key: createdAt, priority or dueDate")
	listCmd.Flags().StringVar(&listOrder, "order", "", "sort order: asc or desc")
	listCmd.Flags().StringVarP(&listTitle, "title", "t", "", "title substring or glob pattern")
	listCmd.Flags().StringVarP(&listFormat, "format", "o", formatTable, "output format: table, json or yaml")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if err := checkFormat(listFormat); err != nil {
		return err
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	f, err := listFilter(e.svc.Filter())
	if err != nil {
		return err
	}
	tasks := view.Derive(e.svc.Snapshot(), f)
	tasks, err = view.MatchTitle(tasks, listTitle)
	if err != nil {
		return fmt.Errorf("invalid --title pattern: %w", err)
	}

	return writeTasks(cmd.OutOrStdout(), tasks, listFormat, time.Now())
}

// listFilter overlays the command flags on the configured filter.
func listFilter(base view.Filter) (view.Filter, error) {
	status, priority := base.Status, base.Priority
	sortBy, order := string(base.SortBy), string(base.SortOrder)
	if listStatus != "" {
		status = listStatus
	}
	if listPriority != "" {
		priority = listPriority
	}
	if listSort != "" {
		sortBy = listSort
	}
	if listOrder != "" {
		order = listOrder
	}
	return view.ParseFilter(status, priority, sortBy, order)
}
