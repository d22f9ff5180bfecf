package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 99, cfg.Commands.CoinCount)
	assert.Equal(t, 32, cfg.Fulfill.MaxConcurrent)
	assert.Equal(t, 15*time.Second, cfg.GeckoTimeout())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
discord:
  token: file-token
  owner_id: "42"
commands:
  update_on_start: true
  sync_cron: "0 6 * * *"
  coin_count: 10
gecko:
  base_url: http://localhost:9999
  timeout_seconds: 3
fulfill:
  max_concurrent: 4
  request_timeout_seconds: 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Discord.Token)
	assert.Equal(t, "42", cfg.Discord.OwnerID)
	assert.True(t, cfg.Commands.UpdateOnStart)
	assert.Equal(t, "0 6 * * *", cfg.Commands.SyncCron)
	assert.Equal(t, 10, cfg.Commands.CoinCount)
	assert.Equal(t, "http://localhost:9999", cfg.Gecko.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.GeckoTimeout())
	assert.Equal(t, 4, cfg.Fulfill.MaxConcurrent)
	assert.Equal(t, 8*time.Second, cfg.RequestTimeout())
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
discord:
  token: file-token
`)
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("OWNER_ID", "7")
	t.Setenv("UPDATE_COMMANDS", "y")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Discord.Token)
	assert.Equal(t, "7", cfg.Discord.OwnerID)
	assert.True(t, cfg.Commands.UpdateOnStart)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Error(t, cfg.Validate(), "token is required")

	cfg.Discord.Token = "token"
	require.NoError(t, cfg.Validate())

	cfg.Commands.CoinCount = 100
	require.Error(t, cfg.Validate(), "coin count above the command cap")
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "discord: [not a map")
	_, err := Load(path)
	require.Error(t, err)
}
