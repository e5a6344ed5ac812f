package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.the-odds-api.com", cfg.OddsAPI.BaseURL)
	assert.Equal(t, "us", cfg.OddsAPI.Region)
	assert.Equal(t, 3, cfg.OddsAPI.RetryAttempts)
	assert.Equal(t, 500, cfg.OddsAPI.RetryBackoffMs)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, int64(4096), cfg.Anthropic.MaxTokens)
	assert.Equal(t, 60, cfg.Anthropic.TimeoutSecs)
	assert.Equal(t, 3, cfg.Generator.MaxAttempts)
	assert.Equal(t, 48, cfg.Generator.WindowHours)
	assert.Equal(t, []string{"basketball_nba", "americanfootball_nfl", "icehockey_nhl"}, cfg.Daily.Sports)
	assert.Equal(t, 3, cfg.Resolver.BufferHours)
	assert.Equal(t, 3, cfg.Resolver.DaysFrom)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
  database_url: parlay.db
log:
  level: debug
  format: console
server:
  port: 9090
generator:
  max_attempts: 5
resolver:
  buffer_hours: 6
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "parlay.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Generator.MaxAttempts)
	assert.Equal(t, 6, cfg.Resolver.BufferHours)
	// Unset sections keep their defaults.
	assert.Equal(t, 3, cfg.Resolver.DaysFrom)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("PARLAY_ANTHROPIC_KEY", "sk-test")
	t.Setenv("PARLAY_ODDSAPI_KEY", "odds-test")
	t.Setenv("PARLAY_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, "odds-test", cfg.OddsAPI.Key)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	require.Error(t, err)
}
