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
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "env: production\n"))
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, defaultAIEndpoint, cfg.AI.Endpoint)
	assert.Equal(t, defaultAIModel, cfg.AI.Model)

	assert.Equal(t, 2, cfg.Translation.BatchSize)
	assert.Equal(t, time.Second, cfg.Translation.BatchDelay())
	assert.Equal(t, 24*time.Hour, cfg.Translation.StalenessWindow())
	assert.Equal(t, time.Hour, cfg.Translation.RecentWindow())
	assert.Equal(t, 5*time.Minute, cfg.Translation.RetryDelay())
	assert.Equal(t, 7*24*time.Hour, cfg.Translation.JobRetention())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
port: 8080
ai:
  api_key: "  gsk_test  "
  endpoint: "https://example.com/v1/"
translation:
  batch_size: 4
  staleness_window_hours: 48
`))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "gsk_test", cfg.AI.APIKey)
	assert.Equal(t, "https://example.com/v1", cfg.AI.Endpoint)
	assert.Equal(t, 4, cfg.Translation.BatchSize)
	assert.Equal(t, 48*time.Hour, cfg.Translation.StalenessWindow())
	// Unset knobs keep their defaults.
	assert.Equal(t, time.Hour, cfg.Translation.RecentWindow())
}

func TestLoadRejectsBadInput(t *testing.T) {
	_, err := Load(writeConfig(t, "port: 99999\n"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "no_such_key: true\n"))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestDatabaseDSNValue(t *testing.T) {
	explicit := DatabaseRuntimeConfig{DSN: "user:pw@tcp(db:3306)/name"}
	assert.Equal(t, "user:pw@tcp(db:3306)/name", explicit.DSNValue())

	built := DatabaseRuntimeConfig{
		Host: "db.internal", Port: 3307, User: "lumin", Password: "secret", Name: "press",
	}
	dsn := built.DSNValue()
	assert.Contains(t, dsn, "lumin:secret@tcp(db.internal:3307)/press")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestRedisURLValue(t *testing.T) {
	assert.Equal(t, "redis://cache:6380", RedisRuntimeConfig{URL: "cache:6380"}.URLValue())
	assert.Equal(t, "redis://cache:6380/0", RedisRuntimeConfig{URL: "redis://cache:6380/0"}.URLValue())

	built := RedisRuntimeConfig{Host: "cache", Port: 6380, Password: "pw", DB: 2}.URLValue()
	assert.Equal(t, "redis://:pw@cache:6380/2", built)
}
