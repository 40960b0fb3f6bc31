package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/tiagotdas/calendario-fiscal/internal/adapters/storage"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.InitDB(context.Background(), db, storage.DialectSQLite))
	return db
}

// TestAnonymousAuthenticator_SignIn tests that each sign-in issues a distinct recorded uid.
func TestAnonymousAuthenticator_SignIn(t *testing.T) {
	db := openDB(t)
	a := NewAnonymousAuthenticator(db)
	ctx := context.Background()

	s1, err := a.SignIn(ctx, "calendario-fiscal")
	require.NoError(t, err)
	s2, err := a.SignIn(ctx, "calendario-fiscal")
	require.NoError(t, err)

	assert.NotEmpty(t, s1.UID)
	assert.NotEqual(t, s1.UID, s2.UID)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM anonymous_session`).Scan(&n))
	assert.Equal(t, 2, n)
}

// TestAnonymousAuthenticator_Errors tests the failure paths.
func TestAnonymousAuthenticator_Errors(t *testing.T) {
	db := openDB(t)
	a := NewAnonymousAuthenticator(db)

	_, err := a.SignIn(context.Background(), "")
	assert.True(t, errors.Is(err, ErrEmptyAppID))

	db.Close()
	_, err = a.SignIn(context.Background(), "calendario-fiscal")
	assert.Error(t, err)
}
