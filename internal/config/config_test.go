package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("METRODOCS_AUTH_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "metrodocs", cfg.TokenIssuer)
	assert.Equal(t, 8, cfg.MinPasswordLength)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Empty(t, cfg.DatabaseDSN)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("METRODOCS_AUTH_SECRET", "test-secret")
	t.Setenv("METRODOCS_ADDR", ":9999")
	t.Setenv("METRODOCS_TOKEN_TTL", "15m")
	t.Setenv("METRODOCS_MIN_PASSWORD_LENGTH", "12")
	t.Setenv("METRODOCS_PG_DSN", "postgres://localhost/metrodocs")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.MinPasswordLength)
	assert.Equal(t, "postgres://localhost/metrodocs", cfg.DatabaseDSN)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("METRODOCS_AUTH_SECRET", "   ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "METRODOCS_AUTH_SECRET")
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("METRODOCS_AUTH_SECRET", "test-secret")
	t.Setenv("METRODOCS_TOKEN_TTL", "0s")

	_, err := Load()
	require.Error(t, err)
}
