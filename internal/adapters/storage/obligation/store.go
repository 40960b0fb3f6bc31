package obligation

import (
	"context"
	"errors"

	domain "github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
)

// ErrNotFound is returned by Update and Delete for an unknown id.
var ErrNotFound = errors.New("obligation not found")

// Store persists Obligation state.
type Store interface {
	Create(ctx context.Context, f domain.Fields) (string, error)
	Update(ctx context.Context, id string, f domain.Fields) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Obligation, error)
}
