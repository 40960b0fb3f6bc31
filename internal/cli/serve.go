package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	web "github.com/tiagotdas/calendario-fiscal/internal/adapters/http"
	"github.com/tiagotdas/calendario-fiscal/internal/adapters/http/perf"
	"github.com/tiagotdas/calendario-fiscal/internal/adapters/scheduler"
	"github.com/tiagotdas/calendario-fiscal/internal/application/bootstrap"
	"github.com/tiagotdas/calendario-fiscal/internal/config"
)

const (
	shutdownTimeout    = 10 * time.Second
	sessionSweepPeriod = 10 * time.Minute
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	Addr          string
	WatchInterval time.Duration
	NoReminders   bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long: `Run the calendar web server until SIGINT or SIGTERM.

With a backend configured, the obligation list is polled for external writes
and reminder emails are sent on CALENDARIO_REMINDER_CRON. Without one, the
calendar shows sample obligations and subscriptions are disabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts.cfg, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address; overrides CALENDARIO_ADDR")
	cmd.Flags().DurationVar(&opts.WatchInterval, "watch-interval", bootstrap.DefaultWatchInterval, "how often to re-read obligations for external changes")
	cmd.Flags().BoolVar(&opts.NoReminders, "no-reminders", false, "do not schedule reminder emails")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, opts *ServeOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	rt, release := startRuntime(ctx, cfg, collector)
	defer release()

	webOpts, err := web.OptionsFromRuntime(cfg, rt, collector)
	if err != nil {
		return err
	}
	srv, err := web.NewServer(webOpts)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}
	defer srv.Close()

	go rt.Watch(ctx, opts.WatchInterval)
	go sweepSessions(ctx, srv)

	if !rt.Demo() && !opts.NoReminders && remindersEnabled(cfg.ReminderCron) {
		sched := scheduler.NewReminderScheduler(cfg.ReminderCron, func(ctx context.Context) error {
			_, err := sendReminders(ctx, cfg, rt, false)
			return err
		})
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("startup_event", "event", "listening", "addr", addr, "mode", rt.Mode, "env", cfg.Environment)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	slog.Info("shutdown_event", "event", "shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Event streams never finish on their own; Shutdown waits for them until the timeout.
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutdown_event", "event", "forced_close", "error", err)
		return httpServer.Close()
	}
	return nil
}

func remindersEnabled(spec string) bool {
	spec = strings.TrimSpace(strings.ToLower(spec))
	return spec != "" && spec != "off"
}

func sweepSessions(ctx context.Context, srv *web.Server) {
	ticker := time.NewTicker(sessionSweepPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := srv.SweepSessions(); n > 0 {
				slog.Debug("session_event", "event", "sessions_swept", "count", n)
			}
		}
	}
}
