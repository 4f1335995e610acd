package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, 16, cfg.BufferSize)
	assert.Equal(t, 0, cfg.ShardIndex)
	assert.Equal(t, 1, cfg.ShardCount)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("FEEDBOWL_SEED", "45")
	t.Setenv("FEEDBOWL_WORKERS", "4")
	t.Setenv("FEEDBOWL_BUFFER_SIZE", "8")
	t.Setenv("FEEDBOWL_SHARD_INDEX", "2")
	t.Setenv("FEEDBOWL_SHARD_COUNT", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(45), cfg.Seed)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 8, cfg.BufferSize)
	assert.Equal(t, 2, cfg.ShardIndex)
	assert.Equal(t, 3, cfg.ShardCount)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"shard count zero", func(c *Config) { c.ShardCount = 0 }},
		{"shard index out of range", func(c *Config) { c.ShardIndex = 5; c.ShardCount = 3 }},
		{"negative shard index", func(c *Config) { c.ShardIndex = -1 }},
		{"buffer size zero", func(c *Config) { c.BufferSize = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestLoad_RejectsInvalidEnvironment(t *testing.T) {
	t.Setenv("FEEDBOWL_SHARD_INDEX", "9")
	t.Setenv("FEEDBOWL_SHARD_COUNT", "2")
	_, err := Load()
	assert.Error(t, err)
}
