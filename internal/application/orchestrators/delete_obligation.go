package orchestrators

import (
	"context"
	"log/slog"

	"github.com/tiagotdas/calendario-fiscal/internal/domain/view"
)

// DeleteObligationDeps holds dependencies for DeleteObligation.
type DeleteObligationDeps struct {
	Obligations ObligationWriter
}

// ExecuteDeleteObligation confirms the open delete modal and issues the delete.
// PRE: State.IsAdmin()
// POST: the modal is closed; if it held an id, exactly that obligation is deleted.
// Returns the deleted id, or "" when no modal was open.
func ExecuteDeleteObligation(ctx context.Context, st *view.State, deps DeleteObligationDeps) (string, error) {
	id, ok := st.ConfirmDelete()
	if !ok {
		return "", nil
	}
	// Deleting the obligation being edited leaves nothing to update.
	if st.Form.EditingID == id {
		st.CancelEdit()
	}
	if err := deps.Obligations.Delete(ctx, id); err != nil {
		slog.Error("obligation_event", "event", "obligation_delete_failed", "id", id, "error", err)
		return "", err
	}
	return id, nil
}
