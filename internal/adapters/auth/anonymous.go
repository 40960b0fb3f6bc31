package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tiagotdas/calendario-fiscal/internal/adapters/storage"
)

// ErrEmptyAppID is returned when signing in without an application identifier.
var ErrEmptyAppID = errors.New("application id is required")

// Session is an anonymous backend session. No user-identifying data is collected.
type Session struct {
	UID      string
	AppID    string
	IssuedAt time.Time
}

// Authenticator issues anonymous sessions.
type Authenticator interface {
	SignIn(ctx context.Context, appID string) (Session, error)
}

// AnonymousAuthenticator records issued sessions in the anonymous_session table.
type AnonymousAuthenticator struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewAnonymousAuthenticator creates an authenticator backed by db.
func NewAnonymousAuthenticator(db storage.SQLDB) *AnonymousAuthenticator {
	return &AnonymousAuthenticator{db: db, now: time.Now}
}

// SignIn issues a new anonymous session for appID.
// PRE: appID is non-empty
// POST: session is recorded and returned
func (a *AnonymousAuthenticator) SignIn(ctx context.Context, appID string) (Session, error) {
	if appID == "" {
		return Session{}, ErrEmptyAppID
	}
	s := Session{
		UID:      uuid.New().String(),
		AppID:    appID,
		IssuedAt: a.now().UTC(),
	}
	if _, err := a.db.ExecContext(ctx,
		`INSERT INTO anonymous_session (uid, app_id, issued_at) VALUES (?, ?, ?)`,
		s.UID, s.AppID, s.IssuedAt.Format(time.RFC3339Nano),
	); err != nil {
		return Session{}, fmt.Errorf("anonymous sign-in: %w", err)
	}
	slog.Info("auth_event", "event", "anonymous_sign_in", "uid", s.UID, "app_id", appID)
	return s, nil
}
