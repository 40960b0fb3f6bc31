package orchestrators

import (
	"context"
	"log/slog"

	"github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/view"
)

// ObligationWriter issues obligation writes. The obligation feed satisfies it.
type ObligationWriter interface {
	Create(ctx context.Context, fields obligation.Fields) (string, error)
	Update(ctx context.Context, id string, fields obligation.Fields) error
	Delete(ctx context.Context, id string) error
}

// SaveObligationInput carries the submitted admin form.
type SaveObligationInput struct {
	State  *view.State
	Fields obligation.Fields
}

// SaveObligationDeps holds dependencies for SaveObligation.
type SaveObligationDeps struct {
	Obligations ObligationWriter
}

// SaveObligationResult reports what the submit did.
type SaveObligationResult struct {
	Written bool
	Created bool
	ID      string
}

// ExecuteSaveObligation submits the shared admin form: update when an id is
// remembered, create otherwise.
// PRE: State.IsAdmin()
// POST: empty title or date is a silent no-op and the typed values stay in the form;
//
//	on success the form is reset to the create state; on write failure the form is kept
//	and the error is returned for logging only
func ExecuteSaveObligation(ctx context.Context, input SaveObligationInput, deps SaveObligationDeps) (SaveObligationResult, error) {
	st := input.State
	st.SetFields(input.Fields)
	if !input.Fields.Valid() {
		return SaveObligationResult{}, nil
	}

	var res SaveObligationResult
	if st.Form.IsEditing() {
		id := st.Form.EditingID
		if err := deps.Obligations.Update(ctx, id, input.Fields); err != nil {
			slog.Error("obligation_event", "event", "obligation_update_failed", "id", id, "error", err)
			return SaveObligationResult{}, err
		}
		res = SaveObligationResult{Written: true, ID: id}
	} else {
		id, err := deps.Obligations.Create(ctx, input.Fields)
		if err != nil {
			slog.Error("obligation_event", "event", "obligation_create_failed", "error", err)
			return SaveObligationResult{}, err
		}
		res = SaveObligationResult{Written: true, Created: true, ID: id}
	}

	st.ResetForm()
	return res, nil
}
