package config

import (
	"os"
	"strconv"

	"infoworth/internal/errors"
)

// Config holds engine tuning read from the environment. Every field has a
// safe default; the environment only overrides.
type Config struct {
	Engine EngineConfig
}

// EngineConfig tunes the Monte Carlo and grid-integration machinery.
type EngineConfig struct {
	NumSamples int
	GridPoints int
	Workers    int
	Seed       int64
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Engine: EngineConfig{
			NumSamples: envInt("INFOWORTH_SAMPLES", 5000),
			GridPoints: envInt("INFOWORTH_GRID", 200),
			Workers:    envInt("INFOWORTH_WORKERS", 1),
			Seed:       int64(envInt("INFOWORTH_SEED", 0)),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Engine.NumSamples <= 0 {
		return errors.ConfigInvalid("INFOWORTH_SAMPLES must be positive")
	}
	if c.Engine.GridPoints < 2 {
		return errors.ConfigInvalid("INFOWORTH_GRID must be at least 2")
	}
	if c.Engine.Workers <= 0 {
		return errors.ConfigInvalid("INFOWORTH_WORKERS must be positive")
	}
	return nil
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
