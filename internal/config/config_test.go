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

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644)
	require.NoError(t, err)
	return dir
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	require.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_FullConfig(t *testing.T) {
	dir := writeConfig(t, `
connection:
  host: db.example.com
  port: 6432
  username: svc
  database: app
  sslmode: require
pool:
  size: 8
  max_overflow: 4
  timeout: 10s
retry:
  max_retries: 5
  base_delay: 500ms
  max_delay: 30s
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "db.example.com", cfg.Connection.Host)
	assert.Equal(t, 6432, cfg.Connection.Port)
	assert.Equal(t, "svc", cfg.Connection.Username)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, int32(8), cfg.Pool.Size)
	assert.Equal(t, int32(4), cfg.Pool.MaxOverflow)
	assert.Equal(t, 5, cfg.Retry.MaxRetries)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := writeConfig(t, "connection: [not a mapping")
	_, err := Load(dir)
	require.Error(t, err)
}

func TestSessionConfig_AppliesTuning(t *testing.T) {
	cfg := &ProjectConfig{
		Pool:  PoolConfig{Size: 8, MaxOverflow: 4, Timeout: "10s"},
		Retry: RetryConfig{MaxRetries: 5, BaseDelay: "500ms", MaxDelay: "30s"},
	}

	sessionCfg, err := cfg.SessionConfig("postgresql://user@localhost/db")
	require.NoError(t, err)

	assert.Equal(t, int32(8), sessionCfg.PoolSize)
	assert.Equal(t, int32(4), sessionCfg.MaxOverflow)
	assert.Equal(t, 10*time.Second, sessionCfg.PoolTimeout)
	assert.Equal(t, 5, sessionCfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, sessionCfg.RetryBaseDelay)
	assert.Equal(t, 30*time.Second, sessionCfg.MaxRetryDelay)
}

func TestSessionConfig_DefaultsWhenEmpty(t *testing.T) {
	sessionCfg, err := (&ProjectConfig{}).SessionConfig("postgresql://user@localhost/db")
	require.NoError(t, err)

	assert.Equal(t, int32(5), sessionCfg.PoolSize)
	assert.Equal(t, int32(10), sessionCfg.MaxOverflow)
	assert.Equal(t, 3, sessionCfg.MaxRetries)
	assert.Equal(t, 30*time.Second, sessionCfg.PoolTimeout)
}

func TestSessionConfig_InvalidDuration(t *testing.T) {
	cfg := &ProjectConfig{Pool: PoolConfig{Timeout: "ten seconds"}}
	_, err := cfg.SessionConfig("postgresql://user@localhost/db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool.timeout")
}
