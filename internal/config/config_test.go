package config_test

import (
	"testing"
	"time"

	"github.com/pkordes/itinerary/backend/internal/config"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DATABASE_URL", "LOG_LEVEL", "CORS_ORIGINS", "COMMIT_DELAY_MS",
		"MAX_BODY_BYTES", "TZ", "NATS_URL", "NATS_SUBJECT_PREFIX",
	} {
		t.Setenv(k, "")
	}
}

// TestLoad_defaults verifies that every variable is optional and falls back
// to its default.
func TestLoad_defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Empty(t, cfg.DatabaseURL)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.Equal(t, time.Second, cfg.CommitDelay)
	require.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	require.Equal(t, time.Local, cfg.Location)
	require.Empty(t, cfg.NATSURL)
	require.Equal(t, "itinerary", cfg.NATSSubjectPrefix)
}

// TestLoad_overrides verifies that all values can be overridden via env vars.
func TestLoad_overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/mydb")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("COMMIT_DELAY_MS", "0")
	t.Setenv("MAX_BODY_BYTES", "4096")
	t.Setenv("TZ", "Europe/Paris")
	t.Setenv("NATS_URL", "nats://nats:4222")
	t.Setenv("NATS_SUBJECT_PREFIX", "acme")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "postgres://user:pass@db:5432/mydb", cfg.DatabaseURL)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	require.Zero(t, cfg.CommitDelay)
	require.Equal(t, int64(4096), cfg.MaxBodyBytes)
	require.Equal(t, "Europe/Paris", cfg.Location.String())
	require.Equal(t, "nats://nats:4222", cfg.NATSURL)
	require.Equal(t, "acme", cfg.NATSSubjectPrefix)
}

// TestLoad_invalidValues verifies that the error names every bad variable.
func TestLoad_invalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMMIT_DELAY_MS", "-5")
	t.Setenv("MAX_BODY_BYTES", "lots")
	t.Setenv("TZ", "Mars/Olympus_Mons")

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "COMMIT_DELAY_MS")
	require.ErrorContains(t, err, "MAX_BODY_BYTES")
	require.ErrorContains(t, err, "TZ")
}
