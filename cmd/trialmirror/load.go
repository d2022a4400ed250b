// Load command: one-time full load of the upstream corpus.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trialmirror/internal/registry"
	"github.com/mesh-intelligence/trialmirror/internal/syncer"
)

var flagForce bool

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Full load of all trials from the registry",
	Long: `Load fetches the entire registry corpus page by page and upserts it
into the local mirror. This takes a while on the public registry.

A full load against an already-populated mirror is refused unless --force
is given; day-to-day updates belong to "trialmirror sync".`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().BoolVar(&flagForce, "force", false, "load even if the mirror already has data")
}

func runLoad(cmd *cobra.Command, args []string) error {
	if !flagForce {
		empty, err := store.IsEmpty()
		if err != nil {
			return err
		}
		if !empty {
			return fmt.Errorf("mirror already has data; use \"trialmirror sync\" or pass --force")
		}
	}

	client := registry.NewClient(cfg.Fetch)
	s := syncer.New(client, store, logger)

	cmd.Println("Starting full load; fetching all trials ...")
	result, err := s.FullLoad(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Done. %d trials loaded in %s", result.Processed, result.Elapsed.Round(time.Second))
	if result.Skipped > 0 {
		cmd.Printf(" (%d records skipped)", result.Skipped)
	}
	cmd.Println()
	return nil
}
