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
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Scheduler.PollingInterval)
	assert.Equal(t, "UTC", cfg.Scheduler.TimeZone)
	assert.Equal(t, 4, cfg.Scheduler.MaxConcurrentDispatches)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.LeaseTTL)
	assert.Equal(t, 3, cfg.Scheduler.MaxConsecutiveFailures)
	assert.Equal(t, 15*time.Second, cfg.Sender.Timeout)
	assert.Equal(t, 2, cfg.Sender.Retries)
	assert.Equal(t, 500*time.Millisecond, cfg.Sender.RetryDelay)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
scheduler:
  polling_interval: 5s
  time_zone: Asia/Jakarta
  max_consecutive_failures: 0
sender:
  base_url: http://sender:5000
redis:
  host: redis
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Scheduler.PollingInterval)
	assert.Equal(t, "Asia/Jakarta", cfg.Scheduler.TimeZone)
	assert.Equal(t, 0, cfg.Scheduler.MaxConsecutiveFailures)
	assert.Equal(t, 4, cfg.Scheduler.MaxConcurrentDispatches)
	assert.Equal(t, "http://sender:5000", cfg.Sender.BaseURL)
	assert.True(t, cfg.Redis.Enabled())
}
