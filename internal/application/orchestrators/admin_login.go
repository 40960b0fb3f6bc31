package orchestrators

import (
	"log/slog"

	"github.com/tiagotdas/calendario-fiscal/internal/domain/view"
)

// AdminLoginInput carries the typed password.
type AdminLoginInput struct {
	State    *view.State
	Password string
}

// AdminLoginDeps holds the configured shared secret.
type AdminLoginDeps struct {
	Secret string
}

// ExecuteAdminLogin unlocks the admin panel when the password equals the secret.
// The comparison is plain string equality with no hashing or throttling.
// PRE: State.View == view.Login
// POST: true and View == Admin on match; otherwise View stays Login with an inline message
func ExecuteAdminLogin(input AdminLoginInput, deps AdminLoginDeps) bool {
	ok := input.State.Authenticate(input.Password, deps.Secret)
	if ok {
		slog.Info("admin_event", "event", "admin_unlocked")
	} else {
		slog.Info("admin_event", "event", "admin_password_rejected")
	}
	return ok
}
