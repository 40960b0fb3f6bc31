package orchestrators

import (
	"context"
	"log/slog"
	"time"

	subscriberStore "github.com/tiagotdas/calendario-fiscal/internal/adapters/storage/subscriber"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/subscriber"
)

// User-facing subscription messages.
const (
	SubscribeOKMessage       = "Inscrição realizada! Você receberá lembretes dos vencimentos."
	SubscribeInvalidMessage  = "Informe um e-mail válido."
	SubscribeFailedMessage   = "Não foi possível concluir a inscrição. Tente novamente."
	SubscribeDisabledMessage = "Inscrições indisponíveis no modo demonstração."
)

// SubscribeInput carries the submitted email, used verbatim as the key.
type SubscribeInput struct {
	Email string
}

// SubscribeDeps holds dependencies for Subscribe. A nil Subscribers disables subscription.
type SubscribeDeps struct {
	Subscribers subscriberStore.Store
	Ready       func() error
	Now         func() time.Time
}

// SubscribeResult is what the caller shows inline.
type SubscribeResult struct {
	OK      bool
	Message string
}

// ExecuteSubscribe upserts a subscriber keyed by the literal email.
// PRE: none
// POST: never panics and never returns an error; failures become a message
func ExecuteSubscribe(ctx context.Context, input SubscribeInput, deps SubscribeDeps) SubscribeResult {
	if deps.Subscribers == nil {
		return SubscribeResult{Message: SubscribeDisabledMessage}
	}
	sub := subscriber.Subscriber{Email: input.Email, SubscribedAt: deps.Now()}
	if err := sub.Validate(); err != nil {
		return SubscribeResult{Message: SubscribeInvalidMessage}
	}
	if deps.Ready != nil {
		if err := deps.Ready(); err != nil {
			slog.Error("subscriber_event", "event", "subscribe_failed", "error", err)
			return SubscribeResult{Message: SubscribeFailedMessage}
		}
	}
	if err := deps.Subscribers.Upsert(ctx, sub); err != nil {
		slog.Error("subscriber_event", "event", "subscribe_failed", "error", err)
		return SubscribeResult{Message: SubscribeFailedMessage}
	}
	slog.Info("subscriber_event", "event", "subscribed")
	return SubscribeResult{OK: true, Message: SubscribeOKMessage}
}
