package cmd

import (
	"fmt"
	"time"

	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/form"
	"github.com/AGLOP-1354/taskboard/internal/task"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Long: `Create a task in the To Do column.

The due date accepts 2006-01-02, 2006-01-02 15:04, RFC 3339, "today" or
"tomorrow". A date without a time means the end of that day.

Examples:
  taskboard add "Write release notes"
  taskboard add "Fix login bug" --priority high --due tomorrow
  taskboard add "Quarterly review" -d "Collect metrics first" --due 2026-12-01`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task's title, description, priority or due date",
	Long: `Edit a task. Only the fields given as flags change.

Pass --due "" to remove the due date. The id may be any unique prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var moveCmd = &cobra.Command{
	Use:   "move <id> <status>",
	Short: "Move a task to another column",
	Long: `Move a task to todo, in-progress or completed.

Moving a task into completed marks it done; moving it out reopens it.`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Mark a task done, or reopen a done task",
	Args:  cobra.ExactArgs(1),
	RunE:  runToggle,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Aliases: []string{"rm"},
	Short:   "Delete tasks",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDelete,
}

var (
	taskDescription string
	taskPriority    string
	taskDue         string
	taskTitle       string
)

func init() {
	addCmd.Flags().StringVarP(&taskDescription, "description", "d", "", "task description")
	addCmd.Flags().StringVarP(&taskPriority, "priority", "p", "", "priority: high, medium or low (default medium)")
	addCmd.Flags().StringVar(&taskDue, "due", "", "due date")

	editCmd.Flags().StringVar(&taskTitle, "title", "", "new title")
	editCmd.Flags().StringVarP(&taskDescription, "description", "d", "", "new description")
	editCmd.Flags().StringVarP(&taskPriority, "priority", "p", "", "new priority")
	editCmd.Flags().StringVar(&taskDue, "due", "", "new due date, or \"\" to clear it")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	in := form.Input{Title: args[0], Description: taskDescription}
	if err := applyInputFlags(cmd, &in, time.Now()); err != nil {
		return err
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	id, err := e.svc.Add(cmd.Context(), in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", id)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	id, err := e.resolveID(args[0])
	if err != nil {
		return err
	}
	t, _ := e.svc.Get(id)

	in := form.FromTask(t)
	if cmd.Flags().Changed("title") {
		in.Title = taskTitle
	}
	if cmd.Flags().Changed("description") {
		in.Description = taskDescription
	}
	if err := applyInputFlags(cmd, &in, time.Now()); err != nil {
		return err
	}
	if sameInput(in, form.FromTask(t)) {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to change.")
		return nil
	}

	if err := e.svc.Edit(cmd.Context(), id, in); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", id)
	return nil
}

func sameInput(a, b form.Input) bool {
	if a.Title != b.Title || a.Description != b.Description || a.Priority != b.Priority {
		return false
	}
	if a.DueDate == nil || b.DueDate == nil {
		return a.DueDate == nil && b.DueDate == nil
	}
	return a.DueDate.Equal(*b.DueDate)
}

// applyInputFlags parses --priority and --due when they were given.
func applyInputFlags(cmd *cobra.Command, in *form.Input, now time.Time) error {
	if cmd.Flags().Changed("priority") {
		p, err := task.ParsePriority(taskPriority)
		if err != nil {
			return err
		}
		in.Priority = p
	}
	if cmd.Flags().Changed("due") {
		due, err := form.ParseDueDate(taskDue, now, time.Local)
		if err != nil {
			return errors.NewValidationError("due date must look like 2006-01-02 or 2006-01-02 15:04").
				WithField(form.FieldDueDate).WithValue(taskDue).WithCause(err)
		}
		in.DueDate = due
	}
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	to, err := task.ParseStatus(args[1])
	if err != nil {
		return err
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	id, err := e.resolveID(args[0])
	if err != nil {
		return err
	}
	if err := e.svc.Move(cmd.Context(), id, to); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved task %s to %s\n", id, to.Label())
	return nil
}

func runToggle(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	id, err := e.resolveID(args[0])
	if err != nil {
		return err
	}
	t, _ := e.svc.Get(id)
	if err := e.svc.ToggleComplete(cmd.Context(), id); err != nil {
		return err
	}
	if t.Completed {
		fmt.Fprintf(cmd.OutOrStdout(), "Reopened task %s\n", id)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Completed task %s\n", id)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	var errs []error
	for _, arg := range args {
		id, err := e.resolveID(arg)
		if err == nil {
			err = e.svc.Remove(cmd.Context(), id)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", id)
	}
	return errors.Join(errs...)
}
