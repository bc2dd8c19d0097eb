package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Engine.NumSamples)
	assert.Equal(t, 200, cfg.Engine.GridPoints)
	assert.Equal(t, 1, cfg.Engine.Workers)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INFOWORTH_SAMPLES", "2000")
	t.Setenv("INFOWORTH_WORKERS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.Engine.NumSamples)
	assert.Equal(t, 4, cfg.Engine.Workers)
}

func TestLoad_RejectsNonPositiveSamples(t *testing.T) {
	t.Setenv("INFOWORTH_SAMPLES", "-10")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_IgnoresGarbage(t *testing.T) {
	t.Setenv("INFOWORTH_GRID", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Engine.GridPoints)
}
