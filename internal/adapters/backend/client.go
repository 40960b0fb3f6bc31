// Package backend opens the document store named by the connection descriptor
// and owns its lifecycle.
package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/tiagotdas/calendario-fiscal/internal/adapters/auth"
	"github.com/tiagotdas/calendario-fiscal/internal/adapters/http/perf"
	"github.com/tiagotdas/calendario-fiscal/internal/adapters/storage"
	"github.com/tiagotdas/calendario-fiscal/internal/config"
)

// ErrNotReady is returned by Ready until an anonymous sign-in has succeeded.
var ErrNotReady = errors.New("backend not authenticated")

// ErrNoDescriptor is returned by Open when no descriptor is supplied.
var ErrNoDescriptor = errors.New("no backend descriptor")

// Client is the injected backend handle shared by every store.
type Client struct {
	db    *storage.TimedDB
	appID string
	auth  auth.Authenticator

	mu      sync.RWMutex
	session *auth.Session
}

// Open connects to the backend described by desc and applies the schema.
// PRE: desc was produced by config.ParseBackend
// POST: returns a client that is not yet ready; caller must Close it
func Open(ctx context.Context, desc *config.Backend, appID string, collector *perf.Collector, slowQueryMs int) (*Client, error) {
	if desc == nil {
		return nil, ErrNoDescriptor
	}

	driver, dialect := "sqlite", storage.DialectSQLite
	if desc.Driver == config.DriverPostgres {
		driver, dialect = "postgres", storage.DialectPostgres
	}

	db, err := sql.Open(driver, desc.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if dialect == storage.DialectSQLite {
		// One writer; :memory: databases are also per-connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := storage.InitDB(ctx, db, dialect); err != nil {
		db.Close()
		return nil, err
	}

	tdb := storage.NewTimedDB(db, dialect, collector, slowQueryMs)
	slog.Info("backend_event", "event", "backend_opened", "driver", driver)
	return &Client{
		db:    tdb,
		appID: appID,
		auth:  auth.NewAnonymousAuthenticator(tdb),
	}, nil
}

// SignInAnonymously performs the anonymous authentication bootstrap.
// POST: on success Ready returns nil
func (c *Client) SignInAnonymously(ctx context.Context) (auth.Session, error) {
	s, err := c.auth.SignIn(ctx, c.appID)
	if err != nil {
		slog.Error("backend_event", "event", "anonymous_sign_in_failed", "error", err)
		return auth.Session{}, err
	}
	c.mu.Lock()
	c.session = &s
	c.mu.Unlock()
	return s, nil
}

// Ready returns ErrNotReady until SignInAnonymously has succeeded.
func (c *Client) Ready() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ErrNotReady
	}
	return nil
}

// Session returns the current anonymous session, if any.
func (c *Client) Session() (auth.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return auth.Session{}, false
	}
	return *c.session, true
}

// DB returns the instrumented connection handed to stores.
func (c *Client) DB() storage.SQLDB {
	return c.db
}

// Ping verifies the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close releases the connection. The client is unusable afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	return c.db.Close()
}
