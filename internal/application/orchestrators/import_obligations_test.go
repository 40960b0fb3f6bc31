package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importDoc = `
obligations:
  - title: DCTFWeb
    date: 2024-03-15
    sphere: Federal
  - title: ""
    date: 2024-03-20
  - title: ICMS
    date: "2024-03-20"
    sphere: Estadual
  - title: ISS
    date: 10/03/2024
    sphere: Municipal
  - id: ignored
    title: DARF
    date: 2024-03-25
`

// TestExecuteImportObligations tests that invalid entries are skipped and valid ones created in order.
func TestExecuteImportObligations(t *testing.T) {
	store := &mockObligations{}
	res, err := ExecuteImportObligations(context.Background(), ImportObligationsInput{
		Reader: strings.NewReader(importDoc),
	}, ImportObligationsDeps{Obligations: store})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 2, res.Errors[0].Entry)
	assert.Equal(t, 4, res.Errors[1].Entry)

	require.Len(t, store.items, 3)
	assert.Equal(t, "DCTFWeb", store.items[0].Title)
	assert.Equal(t, "2024-03-15", store.items[0].Date)
	assert.Equal(t, "o3", store.items[2].ID, "document ids are not kept")
}

func TestExecuteImportObligations_DryRun(t *testing.T) {
	store := &mockObligations{}
	res, err := ExecuteImportObligations(context.Background(), ImportObligationsInput{
		Reader: strings.NewReader(importDoc), DryRun: true,
	}, ImportObligationsDeps{Obligations: store})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)
	assert.Empty(t, store.items)
}

func TestExecuteImportObligations_BadDocument(t *testing.T) {
	deps := ImportObligationsDeps{Obligations: &mockObligations{}}

	_, err := ExecuteImportObligations(context.Background(), ImportObligationsInput{Reader: strings.NewReader("other: 1\n")}, deps)
	assert.True(t, errors.Is(err, ErrEmptyImport))

	_, err = ExecuteImportObligations(context.Background(), ImportObligationsInput{Reader: strings.NewReader("obligations: [\n")}, deps)
	assert.Error(t, err)
}
