package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/lineage/internal/config"
)

func TestLoadConfig_DefaultHostIsLocalhost(t *testing.T) {
	_ = os.Unsetenv("LINEAGE_HOST")
	cfg, err := config.LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host,
		"Default host must be 127.0.0.1 for security")
}

func TestLoadConfig_CanOverrideHost(t *testing.T) {
	t.Setenv("LINEAGE_HOST", "0.0.0.0")
	cfg, err := config.LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"LINEAGE_PORT", "LINEAGE_STORAGE_ENGINE", "LINEAGE_SECURITY_MODE",
		"LINEAGE_MAX_DEPTH", "LINEAGE_PERSIST_DEBOUNCE",
	} {
		_ = os.Unsetenv(key)
	}

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 6470, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.StorageEngine)
	assert.Equal(t, "development", cfg.Security.SecurityMode)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 10, cfg.Limits.MaxDepth)
	assert.Equal(t, 10000, cfg.Limits.MaxNodes)
	assert.Equal(t, 2*time.Second, cfg.Persist.Debounce)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("LINEAGE_PORT", "9090")
	t.Setenv("LINEAGE_STORAGE_ENGINE", "postgres")
	t.Setenv("LINEAGE_POSTGRES_DSN", "postgres://localhost/lineage")
	t.Setenv("LINEAGE_SECURITY_MODE", "production")
	t.Setenv("LINEAGE_MAX_DEPTH", "5")
	t.Setenv("LINEAGE_PERSIST_DEBOUNCE", "500ms")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.StorageEngine)
	assert.Equal(t, "postgres://localhost/lineage", cfg.Storage.PostgresDSN)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5, cfg.Limits.MaxDepth)
	assert.Equal(t, 500*time.Millisecond, cfg.Persist.Debounce)
}

func TestLoadConfig_UnparseableValuesFallBack(t *testing.T) {
	t.Setenv("LINEAGE_PORT", "not-a-number")
	t.Setenv("LINEAGE_PERSIST_DEBOUNCE", "soon")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 6470, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Persist.Debounce)
}
