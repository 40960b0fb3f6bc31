package subscriber

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidEmail is returned when an address has no "@".
var ErrInvalidEmail = errors.New("email must contain @")

// Subscriber is an email opted in for reminders.
// INVARIANT: Email is the unique key; re-subscribing overwrites SubscribedAt.
type Subscriber struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// ValidEmail reports whether email may be subscribed.
// The address is used verbatim as the key, so no normalisation happens here.
func ValidEmail(email string) bool {
	return strings.Contains(email, "@")
}

// Validate checks the subscriber's invariants.
// PRE: none
// POST: returns nil if valid, ErrInvalidEmail otherwise
func (s *Subscriber) Validate() error {
	if !ValidEmail(s.Email) {
		return ErrInvalidEmail
	}
	return nil
}
