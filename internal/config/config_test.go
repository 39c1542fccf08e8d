package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WAYPOINT_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 8, cfg.Publish.Concurrency)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, time.Second, cfg.Retry.Backoff)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.UseCases)
	assert.Equal(t, "waypoint.db", filepath.Base(cfg.DBPath))
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/custom.db
http:
  addr: 127.0.0.1:9000
publish:
  concurrency: 2
retry:
  attempts: 5
  backoff: 250ms
log:
  level: debug
  format: json
  use_cases: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, 2, cfg.Publish.Concurrency)
	assert.Equal(t, 5, cfg.Retry.Attempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Backoff)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Log.UseCases)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout, "unset keys keep defaults")
}

func TestLoad_ZeroRetryAttemptsIsKept(t *testing.T) {
	path := writeConfig(t, "retry:\n  attempts: 0\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Retry.Attempts, "zero disables retries")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "publish:\n  concurrency: 2\n")
	t.Setenv("WAYPOINT_PUBLISH_CONCURRENCY", "16")
	t.Setenv("WAYPOINT_DB_PATH", "/var/lib/waypoint.db")
	t.Setenv("WAYPOINT_RETRY_BACKOFF", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Publish.Concurrency)
	assert.Equal(t, "/var/lib/waypoint.db", cfg.DBPath)
	assert.Equal(t, 2*time.Second, cfg.Retry.Backoff)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	path := writeConfig(t, "http:\n  addr: :7070\n")
	t.Setenv("WAYPOINT_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
publish:
  concurrency: 0
log:
  level: loud
  format: xml
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish.concurrency")
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "log.format")
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "DEBUG"}.SlogLevel())
}
