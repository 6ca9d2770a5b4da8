package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vbonduro/cafeliz/internal/config"
	"github.com/vbonduro/cafeliz/internal/logging"
)

// app carries what every subcommand needs once the root has run.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	cleanup func()
}

func newRootCmd() *cobra.Command {
	a := &app{cleanup: func() {}}
	var logLevel, backend string

	root := &cobra.Command{
		Use:   "cafeliz",
		Short: "Cafeliz coffee shop menu and order manager",
		Long: `Cafeliz keeps the shop's menu (Cardápio) and customer orders (Vendas).

Configuration comes from the environment or a .env file. Examples:
  # Serve the JSON API
  cafeliz serve

  # Print the menu from a bolt database
  STORAGE_BACKEND=bolt BOLT_PATH=./cafeliz.bolt cafeliz menu list`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if backend != "" {
				cfg.StorageBackend = backend
			}

			logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return err
			}
			a.cfg, a.logger, a.cleanup = cfg, logger, cleanup
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.cleanup()
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&backend, "storage", "", "Storage backend: sqlite|bolt|file|postgres|memory (overrides STORAGE_BACKEND)")

	root.AddCommand(
		newServeCmd(a),
		newMenuCmd(a),
		newOrdersCmd(a),
		newLocationCmd(a),
	)
	return root
}
