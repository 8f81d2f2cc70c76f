package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, "all", cfg.DefaultFilter)
	assert.Equal(t, "5m", cfg.AutoUrgentInterval)
	assert.Equal(t, "q", cfg.Keys.Quit)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadOrCreateReadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
db_path = "custom.db"
auto_urgent_interval = "10m"

[keys]
quit = "x"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, "x", cfg.Keys.Quit)
	assert.Equal(t, 10*time.Minute, cfg.MonitorInterval())
}

func TestMonitorIntervalFallback(t *testing.T) {
	assert.Equal(t, 5*time.Minute, Config{}.MonitorInterval())
	assert.Equal(t, 5*time.Minute, Config{AutoUrgentInterval: "soon"}.MonitorInterval())
	assert.Equal(t, 5*time.Minute, Config{AutoUrgentInterval: "-1m"}.MonitorInterval())
}
