// Root command for the trialmirror CLI.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trialmirror/internal/paths"
	"github.com/mesh-intelligence/trialmirror/internal/sqlite"
	"github.com/mesh-intelligence/trialmirror/pkg/types"
)

const version = "v0.1.0"

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
)

// Process-wide collaborators, initialized by PersistentPreRunE.
var (
	cfg    types.Config
	store  *sqlite.Store
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "trialmirror",
	Short:   "Trialmirror keeps a local mirror of the clinical-trials registry",
	Version: version,
	Long: `Trialmirror incrementally mirrors the public clinical-trials registry
into a local SQLite store and serves it through a date-filtered read API.

Typical usage:
  trialmirror load            one-time full load of the corpus
  trialmirror sync            daily incremental sync (run from cron)
  trialmirror serve           read-only HTTP API over the mirror`,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.trialmirror-data)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// setup loads configuration and attaches the store. Skipped for commands
// that do not touch the database.
func setup(cmd *cobra.Command, args []string) error {
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	configDir, err := paths.ResolveConfigDir(flagConfigDir)
	if err != nil {
		return err
	}

	cfg, err = loadConfig(configDir)
	if err != nil {
		return err
	}

	dataDir, err := paths.ResolveDataDir(flagDataDir, cfg.DataDir)
	if err != nil {
		return err
	}
	cfg.DataDir = dataDir

	store = sqlite.NewStore()
	if err := store.Attach(cfg); err != nil {
		return err
	}
	return nil
}

// teardown detaches the store.
func teardown(cmd *cobra.Command, args []string) error {
	if store != nil {
		return store.Detach()
	}
	return nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the mirror database",
	Long: `Init creates the data directory, the database file, and the schema.
Running it again is harmless; the schema is applied idempotently on
every command anyway.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The store is already attached by PersistentPreRunE.
		cmd.Printf("Mirror database ready under %s\n", cfg.DataDir)
		return nil
	},
}
