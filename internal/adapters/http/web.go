// Package web serves the calendar, login and admin screens and the JSON/SSE API.
package web

import (
	"context"
	"crypto/rand"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/tiagotdas/calendario-fiscal/internal/adapters/http/middleware"
	"github.com/tiagotdas/calendario-fiscal/internal/adapters/http/perf"
	subscriberStore "github.com/tiagotdas/calendario-fiscal/internal/adapters/storage/subscriber"
	"github.com/tiagotdas/calendario-fiscal/internal/application/bootstrap"
	"github.com/tiagotdas/calendario-fiscal/internal/application/feed"
	"github.com/tiagotdas/calendario-fiscal/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// DefaultRateLimitPerSecond is the per-IP request budget.
const DefaultRateLimitPerSecond = 20

// Options holds everything the server needs. A nil Feed means demo mode.
type Options struct {
	Feed               *feed.ObligationFeed
	Subscribers        subscriberStore.Store
	Ready              func() error
	Ping               func(context.Context) error // nil in demo mode
	Status             string
	AdminPassword      string
	Collector          *perf.Collector
	CSRFKey            []byte
	SecureCookies      bool
	TrustedOrigins     []string
	RateLimitPerSecond int
	SlowRequestMs      int
	Now                func() time.Time
}

// Server holds the handlers' dependencies.
type Server struct {
	opts     Options
	sessions *middleware.SessionStore
	limiter  *middleware.RateLimiter
	pages    map[string]*template.Template
	now      func() time.Time
}

// OptionsFromRuntime builds server options from config and the started runtime.
// PRE: cfg is loaded; rt came from bootstrap.Start
// POST: CSRFKey is 32 bytes; an error is returned for a bad key or a missing key in production
func OptionsFromRuntime(cfg *config.Config, rt *bootstrap.Runtime, collector *perf.Collector) (Options, error) {
	key, err := loadCSRFKey(cfg)
	if err != nil {
		return Options{}, err
	}
	var ping func(context.Context) error
	if !rt.Demo() {
		ping = rt.Ping
	}
	return Options{
		Ping:               ping,
		Feed:               rt.Feed,
		Subscribers:        rt.Subscribers,
		Ready:              rt.Ready,
		Status:             rt.Status,
		AdminPassword:      cfg.AdminPassword,
		Collector:          collector,
		CSRFKey:            key,
		SecureCookies:      cfg.IsProduction(),
		TrustedOrigins:     []string{"localhost" + cfg.Addr, "127.0.0.1" + cfg.Addr},
		RateLimitPerSecond: DefaultRateLimitPerSecond,
		SlowRequestMs:      cfg.SlowRequestMs,
	}, nil
}

// loadCSRFKey decodes CALENDARIO_CSRF_KEY (hex, 32 bytes). Outside production a
// random key is generated per start.
func loadCSRFKey(cfg *config.Config) ([]byte, error) {
	if cfg.CSRFKeyHex != "" {
		key, err := hex.DecodeString(cfg.CSRFKeyHex)
		if err != nil || len(key) != 32 {
			return nil, errors.New("CALENDARIO_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if cfg.IsProduction() {
		return nil, errors.New("CALENDARIO_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("csrf_event", "event", "random_csrf_key", "hint", "set CALENDARIO_CSRF_KEY to keep forms valid across restarts")
	return key, nil
}

// NewServer parses the embedded templates and prepares the session store.
func NewServer(opts Options) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	if opts.RateLimitPerSecond <= 0 {
		opts.RateLimitPerSecond = DefaultRateLimitPerSecond
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		opts:     opts,
		sessions: middleware.NewSessionStore(),
		limiter:  middleware.NewRateLimiter(opts.RateLimitPerSecond, time.Second),
		pages:    pages,
		now:      now,
	}, nil
}

// Demo reports whether the server runs on placeholder data.
func (s *Server) Demo() bool {
	return s.opts.Feed == nil
}

// Handler returns the full middleware chain around the routes.
func (s *Server) Handler() http.Handler {
	// Timing -> RateLimit -> SecurityHeaders -> CSRF -> Sessions -> mux
	return middleware.Chain(s.routes(),
		middleware.Sessions(s.sessions, s.opts.SecureCookies),
		middleware.CSRF(s.opts.CSRFKey, s.opts.SecureCookies, s.opts.TrustedOrigins),
		middleware.SecurityHeaders,
		middleware.RateLimit(s.limiter),
		middleware.Timing(s.opts.Collector, s.opts.SlowRequestMs),
	)
}

// SweepSessions drops idle sessions. Called periodically by the serve command.
func (s *Server) SweepSessions() int {
	return s.sessions.Sweep()
}

// Close releases background resources.
func (s *Server) Close() {
	s.limiter.Close()
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	mux.HandleFunc("GET /{$}", s.handleCalendar)
	mux.HandleFunc("POST /subscribe", s.handleSubscribe)

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /login/back", s.handleLoginBack)

	mux.HandleFunc("GET /admin", s.handleAdminPage)
	mux.HandleFunc("POST /admin/obligations", s.handleSaveObligation)
	mux.HandleFunc("POST /admin/obligations/{id}/edit", s.handleStartEdit)
	mux.HandleFunc("POST /admin/edit/cancel", s.handleCancelEdit)
	mux.HandleFunc("POST /admin/obligations/{id}/delete", s.handleRequestDelete)
	mux.HandleFunc("POST /admin/delete/confirm", s.handleConfirmDelete)
	mux.HandleFunc("POST /admin/delete/cancel", s.handleCancelDelete)
	mux.HandleFunc("POST /admin/calendar", s.handleViewCalendar)

	mux.HandleFunc("GET /api/obligations", s.handleAPIObligations)
	mux.HandleFunc("GET /api/obligations/stream", s.handleAPIObligationStream)
	mux.HandleFunc("GET /api/calendar", s.handleAPICalendar)
	mux.HandleFunc("GET /api/admin/perf", s.handleAPIPerf)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return mux
}
