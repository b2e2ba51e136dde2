package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "leadgen.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.EqualValues(t, 1024, cfg.Anthropic.MaxTokens)
	assert.Equal(t, 45, cfg.Anthropic.CallTimeoutSecs)
	assert.NotEmpty(t, cfg.Feeds.URLs)
	assert.Equal(t, 7, cfg.Feeds.WindowDays)
	assert.Equal(t, 25, cfg.Feeds.MaxPerFeed)
	assert.Equal(t, 5, cfg.Feeds.FailureDisable)
	assert.NotEmpty(t, cfg.Jobs.Queries)
	assert.Equal(t, 30, cfg.Jobs.MaxAgeDays)
	assert.InDelta(t, 1.0, cfg.Jobs.RatePerSec, 0.001)
	assert.Equal(t, 180, cfg.Dedupe.WindowDays)
	assert.Equal(t, 587, cfg.Email.Port)
	assert.False(t, cfg.Email.Enabled)
}

func TestLoadFromYAML(t *testing.T) {
	chdirTemp(t)

	yaml := `
store:
  path: /var/lib/leadgen/leads.db
log:
  level: debug
  format: console
feeds:
  window_days: 3
dedupe:
  window_days: 90
email:
  enabled: true
  host: smtp.example.com
  from: digest@example.com
  to:
    - sales@example.com
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/leadgen/leads.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 3, cfg.Feeds.WindowDays)
	assert.Equal(t, 90, cfg.Dedupe.WindowDays)
	assert.True(t, cfg.Email.Enabled)
	assert.Equal(t, []string{"sales@example.com"}, cfg.Email.To)
	// Defaults still apply for unset values
	assert.Equal(t, 25, cfg.Feeds.MaxPerFeed)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chdirTemp(t)

	dir, _ := os.Getwd()
	yaml := "log:\n  level: info\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADGEN_LOG_LEVEL", "warn")
	t.Setenv("LEADGEN_ANTHROPIC_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
}

func TestLoadMalformedYAML(t *testing.T) {
	chdirTemp(t)

	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [nope"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
		assert.NotNil(t, zap.L())
	})

	t.Run("console format", func(t *testing.T) {
		require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	})

	t.Run("bad level", func(t *testing.T) {
		assert.Error(t, InitLogger(LogConfig{Level: "chatty", Format: "json"}))
	})
}
