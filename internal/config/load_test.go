package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ALMANAC_DATABASE_URL", "postgres://localhost:5432/almanac")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/almanac", cfg.Database.URL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "UTC", cfg.Workspace.Timezone)
	assert.Equal(t, 30, cfg.Remote.TimeoutSeconds)
	assert.Empty(t, cfg.Remote.BaseURL, "sync is disabled unless a remote is configured")
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv("ALMANAC_DATABASE_URL", "postgres://localhost:5432/almanac")
	t.Setenv("ALMANAC_LOG_LEVEL", "debug")
	t.Setenv("ALMANAC_WORKSPACE_TIMEZONE", "Europe/Bucharest")
	t.Setenv("ALMANAC_REMOTE_BASE_URL", "https://mirror.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "Europe/Bucharest", cfg.Workspace.Timezone)
	assert.Equal(t, "https://mirror.example.com", cfg.Remote.BaseURL)
}

func TestLoadRejectsMissingDatabaseURL(t *testing.T) {
	t.Setenv("ALMANAC_DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	t.Setenv("ALMANAC_DATABASE_URL", "postgres://localhost:5432/almanac")
	t.Setenv("ALMANAC_LOG_LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}
