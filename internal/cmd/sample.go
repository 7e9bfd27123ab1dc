package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add sample tasks",
	Long: `Add five sample tasks to the collection, with due dates over the next
week. Existing tasks are kept.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every task in the collection",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var clearForce bool

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Skip confirmation prompt")
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(clearCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	ids, err := e.svc.Seed(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %d sample tasks\n", len(ids))
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	n := len(e.svc.Snapshot())
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks to delete.")
		return nil
	}

	if !clearForce {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete all %d tasks in %q? [y/N] ", n, e.cfg.Store.Collection)
		reader := bufio.NewReader(cmd.InOrStdin())
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	removed, err := e.svc.Clear(cmd.Context())
	if err != nil {
		return fmt.Errorf("deleted %d of %d tasks: %w", removed, n, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d tasks\n", removed)
	return nil
}
