package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseBackend tests descriptor validation.
func TestParseBackend(t *testing.T) {
	b, err := ParseBackend(`{"dsn":"calendario.db"}`)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, b.Driver)
	assert.Equal(t, "calendario.db", b.DSN)

	b, err = ParseBackend(`{"driver":"postgres","dsn":"postgres://localhost/fiscal?sslmode=disable"}`)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, b.Driver)

	for _, raw := range []string{
		`not json`,
		`{"driver":"sqlite"}`,
		`{"driver":"mongo","dsn":"x"}`,
		`{"dsn":"x","apiKey":"y"}`,
	} {
		_, err := ParseBackend(raw)
		assert.True(t, errors.Is(err, ErrInvalidDescriptor), "%s: %v", raw, err)
	}
}

// TestLoad_Defaults tests that no descriptor means demo mode, not an error.
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CALENDARIO_BACKEND", "")
	t.Setenv("CALENDARIO_REMINDER_LEAD_DAYS", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Backend)
	assert.NoError(t, cfg.BackendErr)
	assert.Equal(t, 3, cfg.ReminderLeadDays)
	assert.Equal(t, "0 8 * * *", cfg.ReminderCron)
}

// TestLoad_InvalidDescriptor tests that a bad descriptor is recorded, not fatal.
func TestLoad_InvalidDescriptor(t *testing.T) {
	t.Setenv("CALENDARIO_BACKEND", `{"driver":"sqlite"`)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Backend)
	assert.ErrorIs(t, cfg.BackendErr, ErrInvalidDescriptor)
}

// TestLoad_InvalidNumber tests that malformed numeric settings fail loading.
func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("CALENDARIO_REMINDER_LEAD_DAYS", "three")
	_, err := Load()
	assert.Error(t, err)
}
