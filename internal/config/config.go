package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Backend drivers accepted in the connection descriptor.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrInvalidDescriptor is returned for an unparseable or incomplete backend descriptor.
var ErrInvalidDescriptor = errors.New("invalid backend descriptor")

// Backend is the connection descriptor for the document store.
type Backend struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

// Config holds all configuration for the application.
// Backend is nil when no valid descriptor was supplied; the app then runs in demo mode.
type Config struct {
	AppID            string
	Backend          *Backend
	BackendErr       error // why Backend is nil, if a descriptor was present
	Addr             string
	Environment      string
	LogLevel         string
	AdminPassword    string
	CSRFKeyHex       string
	ResendKey        string
	EmailFrom        string
	ReplyTo          string
	ReminderCron     string
	ReminderLeadDays int
	SlowQueryMs      int
	SlowRequestMs    int
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads configuration from environment variables and a .env file (if present).
// A missing or invalid backend descriptor is not an error.
func Load() (*Config, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &Config{
		AppID:         envOrDefault("CALENDARIO_APP_ID", "calendario-fiscal"),
		Addr:          envOrDefault("CALENDARIO_ADDR", ":8080"),
		Environment:   strings.ToLower(envOrDefault("CALENDARIO_ENV", "development")),
		LogLevel:      strings.ToLower(envOrDefault("CALENDARIO_LOG_LEVEL", "info")),
		AdminPassword: envOrDefault("CALENDARIO_ADMIN_PASSWORD", "admin123"),
		CSRFKeyHex:    os.Getenv("CALENDARIO_CSRF_KEY"),
		ResendKey:     os.Getenv("CALENDARIO_RESEND_KEY"),
		EmailFrom:     envOrDefault("CALENDARIO_EMAIL_FROM", "Calendário Fiscal <lembretes@calendariofiscal.com.br>"),
		ReplyTo:       os.Getenv("CALENDARIO_REPLY_TO"),
		ReminderCron:  envOrDefault("CALENDARIO_REMINDER_CRON", "0 8 * * *"),
	}

	var err error
	if cfg.ReminderLeadDays, err = intEnv("CALENDARIO_REMINDER_LEAD_DAYS", 3); err != nil {
		return nil, err
	}
	if cfg.SlowQueryMs, err = intEnv("CALENDARIO_SLOW_QUERY_MS", 50); err != nil {
		return nil, err
	}
	if cfg.SlowRequestMs, err = intEnv("CALENDARIO_SLOW_REQUEST_MS", 200); err != nil {
		return nil, err
	}

	if raw := os.Getenv("CALENDARIO_BACKEND"); raw != "" {
		cfg.Backend, cfg.BackendErr = ParseBackend(raw)
	}
	return cfg, nil
}

// ParseBackend decodes a JSON connection descriptor.
// PRE: raw is non-empty
// POST: returns a descriptor with a known driver and non-empty DSN, or ErrInvalidDescriptor
func ParseBackend(raw string) (*Backend, error) {
	var b Backend
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	if b.Driver == "" {
		b.Driver = DriverSQLite
	}
	if b.Driver != DriverSQLite && b.Driver != DriverPostgres {
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidDescriptor, b.Driver)
	}
	if b.DSN == "" {
		return nil, fmt.Errorf("%w: dsn is required", ErrInvalidDescriptor)
	}
	return &b, nil
}

// NewLogger builds the process logger: JSON in production, text elsewhere.
func NewLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}
