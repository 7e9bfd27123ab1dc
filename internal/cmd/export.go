package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AGLOP-1354/taskboard/internal/task"
	"github.com/AGLOP-1354/taskboard/internal/view"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the whole collection as YAML",
	Long: `Write every task in the collection, newest first, together with a
summary. The output is YAML unless --format json is given.

Examples:
  taskboard export > tasks.yaml
  taskboard export --output backup.json --format json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportOutput string
	exportFormat string
)

func init() {
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "write to this file instead of stdout")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "o", formatYAML, "output format: yaml or json")
	rootCmd.AddCommand(exportCmd)
}

// exportDocument is the top-level export shape.
type exportDocument struct {
	Collection string      `json:"collection" yaml:"collection"`
	Backend    string      `json:"backend" yaml:"backend"`
	ExportedAt time.Time   `json:"exportedAt" yaml:"exportedAt"`
	Stats      view.Stats  `json:"stats" yaml:"stats"`
	Tasks      []task.Task `json:"tasks" yaml:"tasks"`
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != formatYAML && exportFormat != formatJSON {
		return fmt.Errorf("invalid --format %q: must be yaml or json", exportFormat)
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	now := time.Now()
	tasks := e.svc.Snapshot()
	if tasks == nil {
		tasks = []task.Task{}
	}
	doc := exportDocument{
		Collection: e.cfg.Store.Collection,
		Backend:    e.store.Backend(),
		ExportedAt: now.UTC(),
		Stats:      view.Summarize(tasks, now),
		Tasks:      tasks,
	}

	var buf bytes.Buffer
	if exportFormat == formatJSON {
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	} else {
		err = writeYAML(&buf, doc)
	}
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	if exportOutput == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(exportOutput, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(tasks), exportOutput)
	return nil
}
