package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8357", cfg.Addr)
	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 1000, cfg.RetryCeiling)
	assert.Equal(t, 100*time.Millisecond, cfg.SweepInterval)
	assert.Empty(t, cfg.RulesPath)
	assert.Empty(t, cfg.EngineCommand)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORYMESH_ADDR", "127.0.0.1:9000")
	t.Setenv("STORYMESH_POLL_INTERVAL", "50ms")
	t.Setenv("STORYMESH_RETRY_CEILING", "20")
	t.Setenv("STORYMESH_SWEEP_INTERVAL", "250ms")
	t.Setenv("STORYMESH_RULES_PATH", "/etc/storymesh/rules.json")
	t.Setenv("STORYMESH_ENGINE_CMD", "python3")
	t.Setenv("STORYMESH_ENGINE_ARGS", "main.py --no-color")
	t.Setenv("STORYMESH_ENGINE_DIR", "/srv/game")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 20, cfg.RetryCeiling)
	assert.Equal(t, 250*time.Millisecond, cfg.SweepInterval)
	assert.Equal(t, "/etc/storymesh/rules.json", cfg.RulesPath)
	assert.Equal(t, "python3", cfg.EngineCommand)
	assert.Equal(t, []string{"main.py", "--no-color"}, cfg.EngineArgs)
	assert.Equal(t, "/srv/game", cfg.EngineDir)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("STORYMESH_POLL_INTERVAL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}
