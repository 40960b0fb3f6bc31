package subscriber

import (
	"context"
	"fmt"
	"time"

	"github.com/tiagotdas/calendario-fiscal/internal/adapters/storage"
	domain "github.com/tiagotdas/calendario-fiscal/internal/domain/subscriber"
)

const timeLayout = time.RFC3339Nano

// SQLStore implements Store on top of any storage.SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new SQLStore.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Upsert writes s keyed by its email, overwriting any previous record.
// PRE: s.Validate() == nil
// POST: exactly one row exists for s.Email
func (s *SQLStore) Upsert(ctx context.Context, sub domain.Subscriber) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriber (email, subscribed_at) VALUES (?, ?)
		 ON CONFLICT(email) DO UPDATE SET subscribed_at = excluded.subscribed_at`,
		sub.Email, sub.SubscribedAt.UTC().Format(timeLayout),
	)
	return err
}

// List returns every subscriber ordered by email.
func (s *SQLStore) List(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email, subscribed_at FROM subscriber ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscriber
	for rows.Next() {
		var sub domain.Subscriber
		var at string
		if err := rows.Scan(&sub.Email, &at); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, at)
		if err != nil {
			return nil, fmt.Errorf("subscriber %s: parse subscribed_at %q: %w", sub.Email, at, err)
		}
		sub.SubscribedAt = parsed
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
