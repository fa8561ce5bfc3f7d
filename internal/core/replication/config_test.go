package replication

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero tick rate is host-driven", func(c *Config) { c.TickRate = 0 }, true},
		{"negative tick rate", func(c *Config) { c.TickRate = -1 }, false},
		{"zero history size", func(c *Config) { c.HistorySize = 0 }, false},
		{"zero resync interval", func(c *Config) { c.ResyncInterval = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			err := config.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replication.yaml")
	data := []byte("tick_rate: 30\nhistory_size: 128\nresync_interval: 2s\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30, config.TickRate)
	assert.Equal(t, 128, config.HistorySize)
	assert.Equal(t, 2*time.Second, config.ResyncInterval)
	assert.True(t, config.UseDeltaCompression, "omitted options keep defaults")
	assert.Equal(t, 64*1024, config.MaxBatchSize)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replication.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_size: -1\n"), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigPatchApply(t *testing.T) {
	base := DefaultConfig()
	size := 32
	interval := 10 * time.Second
	patched := ConfigPatch{HistorySize: &size, ResyncInterval: &interval}.apply(base)

	assert.Equal(t, 32, patched.HistorySize)
	assert.Equal(t, 10*time.Second, patched.ResyncInterval)
	assert.Equal(t, base.TickRate, patched.TickRate)
	assert.Equal(t, base.UseDeltaCompression, patched.UseDeltaCompression)
}
