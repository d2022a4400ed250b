// Status command: mirror size and recent sync runs.
package main

import (
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show mirror size and recent sync runs",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	count, err := store.Count()
	if err != nil {
		return err
	}
	cmd.Printf("Trials mirrored: %d\n", count)

	runs, err := store.RecentRuns(5)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No sync runs recorded yet.")
		return nil
	}

	cmd.Println("Recent runs:")
	for _, run := range runs {
		since := run.Since
		if since == "" {
			since = "-"
		}
		cmd.Printf("  %s  %-11s since=%-10s processed=%-7d %s",
			run.StartedAt.Format(time.RFC3339), run.Kind, since, run.Processed, run.Status)
		if run.Error != "" {
			cmd.Printf("  (%s)", run.Error)
		}
		cmd.Println()
	}
	return nil
}
