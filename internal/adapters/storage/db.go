package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Dialect selects SQL differences between the supported backends.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// schema is valid for both SQLite and Postgres.
const schema = `
	CREATE TABLE IF NOT EXISTS obligation (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		date TEXT NOT NULL,
		sphere TEXT NOT NULL DEFAULT '',
		seq BIGINT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS subscriber (
		email TEXT PRIMARY KEY,
		subscribed_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS anonymous_session (
		uid TEXT PRIMARY KEY,
		app_id TEXT NOT NULL,
		issued_at TEXT NOT NULL
	);
`

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created; on SQLite WAL mode and foreign keys are enabled
func InitDB(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if dialect == DialectSQLite {
		// Enable WAL mode for better concurrency
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
