// Package cli is the calendario command line: the web server and the
// one-shot maintenance commands share one configuration and startup path.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tiagotdas/calendario-fiscal/internal/adapters/http/perf"
	"github.com/tiagotdas/calendario-fiscal/internal/application/bootstrap"
	"github.com/tiagotdas/calendario-fiscal/internal/config"
)

// RootOptions holds global flags and the configuration loaded before any command runs.
type RootOptions struct {
	LogLevel string
	Version  string

	cfg *config.Config
}

// NewRootCommand creates the calendario root command. Without a subcommand it serves.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{Version: version}

	cmd := &cobra.Command{
		Use:     "calendario",
		Short:   "Calendário fiscal de obrigações tributárias",
		Long:    "Serves the fiscal obligations calendar and runs its maintenance tasks (reminders, imports).",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if opts.LogLevel != "" {
				cfg.LogLevel = opts.LogLevel
			}
			slog.SetDefault(config.NewLogger(cfg))
			opts.cfg = cfg
			return nil
		},
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts.cfg, &ServeOptions{})
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error); overrides CALENDARIO_LOG_LEVEL")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewRemindCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewMonthCommand(opts))

	return cmd
}

// startRuntime runs the shared startup sequence and returns the runtime with a
// function that releases it.
func startRuntime(ctx context.Context, cfg *config.Config, collector *perf.Collector) (*bootstrap.Runtime, func()) {
	rt := bootstrap.Start(ctx, cfg, collector)
	return rt, func() {
		if err := rt.Close(); err != nil {
			slog.Warn("shutdown_event", "event", "backend_close_failed", "error", err)
		}
	}
}

// requireLive fails commands that write to or read from the backend directly.
func requireLive(cfg *config.Config, rt *bootstrap.Runtime, what string) error {
	if !rt.Demo() {
		return rt.Ready()
	}
	if cfg.BackendErr != nil {
		return fmt.Errorf("%s needs a backend: %w", what, cfg.BackendErr)
	}
	return fmt.Errorf("%s needs a backend: set CALENDARIO_BACKEND", what)
}
