package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[engine]
tick_rate = "20ms"

[physics]
enabled = true
path = "sim/world.lua"
ready_timeout = "2s"

[logging]
level = "debug"
`), "inline")
	require.NoError(t, err)

	assert.Equal(t, 20*time.Millisecond, cfg.Engine.TickRate)
	assert.True(t, cfg.Physics.Enabled)
	assert.Equal(t, "sim/world.lua", cfg.Physics.Path)
	assert.Equal(t, 2*time.Second, cfg.Physics.ReadyTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// untouched sections keep their defaults
	assert.Equal(t, TransportLocal, cfg.Physics.Transport)
	assert.Equal(t, 256, cfg.Physics.CommandQueueSize)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestParseRejectsWebsocketWithoutAddress(t *testing.T) {
	_, err := Parse([]byte(`
[physics]
transport = "websocket"
`), "inline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "physics.address")
}

func TestParseRejectsUnknownTransport(t *testing.T) {
	_, err := Parse([]byte(`
[physics]
transport = "carrier-pigeon"
`), "inline")
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mage.toml")
	require.NoError(t, os.WriteFile(path, []byte("[level]\npath = \"levels/a.yaml\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "levels/a.yaml", cfg.Level.Path)
}
