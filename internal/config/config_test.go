package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ogulcanaydogan/tokalator/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Listen)
	assert.Equal(t, "/api", cfg.Server.BasePath)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, int64(10*1024*1024), cfg.Server.MaxUploadBytes)
	assert.Equal(t, int64(1024*1024), cfg.Server.MaxTextBytes)
	assert.Equal(t, config.DefaultAllowedOrigins, cfg.Server.CORS.AllowedOrigins)
	assert.Equal(t, 10.0, cfg.Server.RateLimit.RPS)
	assert.Equal(t, 20, cfg.Server.RateLimit.Burst)
	assert.Empty(t, cfg.Pricing.Dir)
	assert.False(t, cfg.Storage.Enabled)
	assert.Contains(t, cfg.Storage.Path, filepath.Join(".tokalator", "tokalator.db"))
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  listen: ":9090"
  base_path: ""
  read_timeout: 5s
  cors:
    allowed_origins:
      - https://example.com
  rate_limit:
    rps: 0
storage:
  enabled: true
  path: /tmp/test.db
pricing:
  dir: /etc/tokalator/pricing
logging:
  level: debug
  format: text
`)
	require.NoError(t, os.WriteFile(cfgPath, data, 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Empty(t, cfg.Server.BasePath)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORS.AllowedOrigins)
	assert.Zero(t, cfg.Server.RateLimit.RPS)
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, "/tmp/test.db", cfg.Storage.Path)
	assert.Equal(t, "/etc/tokalator/pricing", cfg.Pricing.Dir)
	assert.Equal(t, slog.LevelDebug, cfg.Logging.SlogLevel())
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TOKALATOR_LOGGING_LEVEL", "error")
	t.Setenv("TOKALATOR_SERVER_LISTEN", ":7070")
	t.Setenv("TOKALATOR_STORAGE_ENABLED", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, ":7070", cfg.Server.Listen)
	assert.True(t, cfg.Storage.Enabled)
}

func TestLoad_InvalidFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("invalid: [yaml"), 0o644))

	_, err := config.Load(cfgPath)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  base_path: api
  max_upload_bytes: 0
logging:
  format: xml
`)
	require.NoError(t, os.WriteFile(cfgPath, data, 0o644))

	_, err := config.Load(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.base_path")
	assert.Contains(t, err.Error(), "server.max_upload_bytes")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestLoggingConfig_SlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for name, want := range tests {
		assert.Equal(t, want, config.LoggingConfig{Level: name}.SlogLevel(), name)
	}
}
