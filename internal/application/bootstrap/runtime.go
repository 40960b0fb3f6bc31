// Package bootstrap wires the backend, authentication and obligation feed in
// their required startup order.
package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/tiagotdas/calendario-fiscal/internal/adapters/backend"
	"github.com/tiagotdas/calendario-fiscal/internal/adapters/http/perf"
	obligationStore "github.com/tiagotdas/calendario-fiscal/internal/adapters/storage/obligation"
	subscriberStore "github.com/tiagotdas/calendario-fiscal/internal/adapters/storage/subscriber"
	"github.com/tiagotdas/calendario-fiscal/internal/application/feed"
	"github.com/tiagotdas/calendario-fiscal/internal/config"
)

// Mode is the data mode the process runs in.
type Mode string

// Modes.
const (
	ModeLive Mode = "live"
	ModeDemo Mode = "demo"
)

// AuthFailedBanner is shown when the anonymous sign-in fails.
const AuthFailedBanner = "Falha na autenticação com o servidor. Exibindo dados de exemplo."

// DefaultWatchInterval is how often the feed re-reads the store for external writes.
const DefaultWatchInterval = 5 * time.Second

// Runtime holds the constructed backend handles for one process.
// In demo mode Client, Feed and Subscribers are nil.
type Runtime struct {
	Mode        Mode
	Client      *backend.Client
	Feed        *feed.ObligationFeed
	Subscribers subscriberStore.Store
	Status      string
}

// Start runs the startup sequence: backend open, anonymous sign-in, first feed read.
// A missing or unusable descriptor selects demo mode and is not an error.
// PRE: cfg is loaded
// POST: the feed (if any) holds a snapshot; caller must Close the runtime
func Start(ctx context.Context, cfg *config.Config, collector *perf.Collector) *Runtime {
	if cfg.Backend == nil {
		if cfg.BackendErr != nil {
			slog.Warn("startup_event", "event", "invalid_backend_descriptor", "error", cfg.BackendErr)
		}
		slog.Info("startup_event", "event", "demo_mode")
		return &Runtime{Mode: ModeDemo}
	}

	client, err := backend.Open(ctx, cfg.Backend, cfg.AppID, collector, cfg.SlowQueryMs)
	if err != nil {
		slog.Error("startup_event", "event", "backend_open_failed", "error", err)
		return &Runtime{Mode: ModeDemo}
	}

	rt := &Runtime{
		Mode:        ModeLive,
		Client:      client,
		Feed:        feed.New(obligationStore.NewSQLStore(client.DB()), client.Ready),
		Subscribers: subscriberStore.NewSQLStore(client.DB()),
	}

	// Sign-in completes, successfully or not, before the first read.
	if _, err := client.SignInAnonymously(ctx); err != nil {
		rt.Status = AuthFailedBanner
	}
	snap := rt.Feed.Refresh(ctx)
	slog.Info("startup_event", "event", "live_mode",
		"obligations", len(snap.Obligations), "read_failed", snap.Failed(), "authenticated", rt.Status == "")
	return rt
}

// Demo reports whether the runtime serves placeholder data.
func (r *Runtime) Demo() bool {
	return r.Mode == ModeDemo
}

// Ready reports whether the backend may be used.
func (r *Runtime) Ready() error {
	if r.Client == nil {
		return backend.ErrNoDescriptor
	}
	return r.Client.Ready()
}

// Ping checks that the backend connection is alive.
func (r *Runtime) Ping(ctx context.Context) error {
	if r.Client == nil {
		return backend.ErrNoDescriptor
	}
	return r.Client.Ping(ctx)
}

// Watch polls the store for external writes until ctx is done. No-op in demo mode.
func (r *Runtime) Watch(ctx context.Context, interval time.Duration) {
	if r.Feed == nil {
		return
	}
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	r.Feed.Watch(ctx, interval)
}

// Close releases the backend connection.
func (r *Runtime) Close() error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
