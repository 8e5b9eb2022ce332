package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Sim.Steps)
	assert.Equal(t, 100.0, cfg.Sim.InitialPrice)
	assert.Equal(t, []float64{90, 95, 100, 105, 110}, cfg.Options.Strikes)
	assert.Equal(t, 0.2, cfg.Options.Vol)
	assert.Equal(t, 5, cfg.Options.HedgeInterval)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SIM_STEPS", "42")
	t.Setenv("OPTION_VOL", "0.35")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.Sim.Steps)
	assert.Equal(t, 0.35, cfg.Options.Vol)
}

func TestLoadConfigYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
sim:
  steps: 25
options:
  strikes: [95, 100, 105]
  tau: 0.5
kafka:
  enabled: true
  topic: custom-steps
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Sim.Steps)
	assert.Equal(t, []float64{95, 100, 105}, cfg.Options.Strikes)
	assert.Equal(t, 0.5, cfg.Options.Tau)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, "custom-steps", cfg.Kafka.Topic)
	// Untouched values keep their defaults.
	assert.Equal(t, 0.2, cfg.Options.Vol)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("options:\n  tau: -1\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/does/not/exist.yaml")
	assert.Error(t, err)
}
