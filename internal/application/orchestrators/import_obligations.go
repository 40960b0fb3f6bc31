package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
)

// ImportObligationsInput carries a YAML document of the form
//
//	obligations:
//	  - title: DCTFWeb
//	    date: 2024-03-15
//	    sphere: Federal
type ImportObligationsInput struct {
	Reader io.Reader
	DryRun bool
}

// ImportObligationsDeps holds dependencies for ImportObligations.
type ImportObligationsDeps struct {
	Obligations ObligationWriter
}

// ImportObligationsResult holds aggregate counts and per-entry errors.
type ImportObligationsResult struct {
	Total   int
	Created int
	Skipped int
	Errors  []ImportRowError
	DryRun  bool
}

// ImportRowError describes why one entry was skipped. Entry is 1-based.
type ImportRowError struct {
	Entry   int
	Message string
}

type importDocument struct {
	Obligations []obligation.Obligation `yaml:"obligations"`
}

// ErrEmptyImport is returned when the document holds no obligations key.
var ErrEmptyImport = errors.New("document has no obligations")

// ExecuteImportObligations bulk-creates obligations from YAML.
// PRE: Reader holds a YAML mapping with an obligations list
// POST: valid entries are created in document order unless DryRun; invalid
// entries are skipped and reported. Ids in the document are ignored.
func ExecuteImportObligations(ctx context.Context, input ImportObligationsInput, deps ImportObligationsDeps) (ImportObligationsResult, error) {
	var doc importDocument
	if err := yaml.NewDecoder(input.Reader).Decode(&doc); err != nil {
		return ImportObligationsResult{}, fmt.Errorf("parse import: %w", err)
	}
	if doc.Obligations == nil {
		return ImportObligationsResult{}, ErrEmptyImport
	}

	res := ImportObligationsResult{Total: len(doc.Obligations), DryRun: input.DryRun}
	for i, o := range doc.Obligations {
		f := o.Fields()
		if msg := validateImported(f); msg != "" {
			res.Skipped++
			res.Errors = append(res.Errors, ImportRowError{Entry: i + 1, Message: msg})
			continue
		}
		if input.DryRun {
			res.Created++
			continue
		}
		if _, err := deps.Obligations.Create(ctx, f); err != nil {
			return res, fmt.Errorf("entry %d: %w", i+1, err)
		}
		res.Created++
	}

	slog.Info("obligation_event", "event", "obligations_imported",
		"total", res.Total, "created", res.Created, "skipped", res.Skipped, "dry_run", res.DryRun)
	return res, nil
}

func validateImported(f obligation.Fields) string {
	if !f.Valid() {
		return "title and date are required"
	}
	if _, err := time.Parse(obligation.DateLayout, f.Date); err != nil {
		return fmt.Sprintf("date %q is not YYYY-MM-DD", f.Date)
	}
	return ""
}
