package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 60*time.Second, cfg.HTTP.WriteTimeout)
	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 10, cfg.Query.PageSize)
	assert.Equal(t, "UTC", cfg.Query.ReportTimezone)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "hydroponic/+/+/measurements", cfg.MQTT.Topic)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
http:
  addr: ":9000"
  shutdown_timeout: 10s
db_enabled: false
database:
  host: db.internal
  port: 6543
redis:
  enabled: true
  addr: redis.internal:6379
  stream: custom:stream
query:
  page_size: 25
  report_timezone: Europe/Warsaw
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("DB_PORT", "7000")
	t.Setenv("HTTP_WRITE_TIMEOUT", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.HTTP.Addr, "env overrides file")
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 2*time.Minute, cfg.HTTP.WriteTimeout)
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 7000, cfg.Database.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, "custom:stream", cfg.Redis.Stream)
	assert.Equal(t, 25, cfg.Query.PageSize)
	assert.Equal(t, "Europe/Warsaw", cfg.Location().String())
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("QUERY_REPORT_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
