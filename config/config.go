// Package config holds the recognized pipeline configuration surface,
// loadable from environment variables.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config collects the knobs that determine a pipeline's deterministic
// behavior (seed, shard assignment) and its resource envelope (workers,
// prefetch depth). Values are read from FEEDBOWL_* environment variables.
type Config struct {
	// Seed drives shuffle permutations and sequential mix draws.
	Seed int64 `envconfig:"SEED" default:"0"`

	// Workers is the parallel stage pool size; 0 means one per CPU.
	Workers int `envconfig:"WORKERS" default:"0"`

	// BufferSize bounds in-flight elements ahead of the consumer.
	BufferSize int `envconfig:"BUFFER_SIZE" default:"16"`

	// ShardIndex/ShardCount assign this process its partition.
	ShardIndex int `envconfig:"SHARD_INDEX" default:"0"`
	ShardCount int `envconfig:"SHARD_COUNT" default:"1"`

	// LogLevel and LogDev configure the logging package.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogDev   bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("feedbowl", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when the environment sets nothing.
func Default() *Config {
	return &Config{
		BufferSize: 16,
		ShardCount: 1,
		LogLevel:   "info",
	}
}

// Validate checks the cross-field constraints.
func (c *Config) Validate() error {
	if c.ShardCount < 1 {
		return fmt.Errorf("shard count must be >= 1, got %d", c.ShardCount)
	}
	if c.ShardIndex < 0 || c.ShardIndex >= c.ShardCount {
		return fmt.Errorf("shard index %d not in [0, %d)", c.ShardIndex, c.ShardCount)
	}
	if c.BufferSize < 1 {
		return fmt.Errorf("buffer size must be >= 1, got %d", c.BufferSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}
