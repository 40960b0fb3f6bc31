package obligation

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/tiagotdas/calendario-fiscal/internal/adapters/storage"
	domain "github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
)

const timeLayout = time.RFC3339Nano

// SQLStore implements Store on top of any storage.SQLDB.
type SQLStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLStore creates a new SQLStore.
// PRE: db is a valid, open database connection with the schema applied
// POST: store is ready for use
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// Create inserts a new obligation and returns the id assigned to it.
// PRE: f.Valid()
// POST: obligation is persisted after all existing ones in iteration order
func (s *SQLStore) Create(ctx context.Context, f domain.Fields) (string, error) {
	id := uuid.New().String()
	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO obligation (id, title, date, sphere, seq, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, f.Title, f.Date, f.Sphere, now.UnixNano(), now.Format(timeLayout),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update merges f into the obligation with the given id. The id is preserved.
// PRE: id is non-empty
// POST: title, date and sphere replaced; ErrNotFound if no such id
func (s *SQLStore) Update(ctx context.Context, id string, f domain.Fields) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE obligation SET title = ?, date = ?, sphere = ?, updated_at = ? WHERE id = ?`,
		f.Title, f.Date, f.Sphere, s.now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes an obligation by id.
// PRE: id is non-empty
// POST: obligation is removed; ErrNotFound if no such id
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM obligation WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// List returns every obligation in store iteration (insertion) order, not date order.
// PRE: none
// POST: returns a complete snapshot of the collection
func (s *SQLStore) List(ctx context.Context) ([]domain.Obligation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, date, sphere FROM obligation ORDER BY seq ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.Obligation{}
	for rows.Next() {
		var o domain.Obligation
		if err := rows.Scan(&o.ID, &o.Title, &o.Date, &o.Sphere); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
