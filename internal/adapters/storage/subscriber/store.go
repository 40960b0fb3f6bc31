package subscriber

import (
	"context"

	domain "github.com/tiagotdas/calendario-fiscal/internal/domain/subscriber"
)

// Store persists Subscriber state, keyed by the literal email.
type Store interface {
	Upsert(ctx context.Context, s domain.Subscriber) error
	List(ctx context.Context) ([]domain.Subscriber, error)
}
