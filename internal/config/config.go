// Package config loads bridge configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob of the bridge.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"STORYMESH_ADDR" envDefault:":8357"`

	// PollInterval and RetryCeiling bound the input bridge's blocking
	// read: the engine waits at most RetryCeiling * PollInterval.
	PollInterval time.Duration `env:"STORYMESH_POLL_INTERVAL" envDefault:"100ms"`
	RetryCeiling int           `env:"STORYMESH_RETRY_CEILING" envDefault:"1000"`

	// SweepInterval is the broadcast loop cadence.
	SweepInterval time.Duration `env:"STORYMESH_SWEEP_INTERVAL" envDefault:"100ms"`

	// RulesPath points at a JSON classifier rule set; empty means the
	// built-in vocabulary.
	RulesPath string `env:"STORYMESH_RULES_PATH"`

	// Engine subprocess to run. Args are space-separated.
	EngineCommand string   `env:"STORYMESH_ENGINE_CMD"`
	EngineArgs    []string `env:"STORYMESH_ENGINE_ARGS" envSeparator:" "`
	EngineDir     string   `env:"STORYMESH_ENGINE_DIR"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
