package store

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// RedisConfig holds connection settings for the Redis store.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`     // Redis address, default "localhost:6379"
	Password string `env:"REDIS_PASSWORD"` // Redis password, default ""
	DB       int    `env:"REDIS_DB"`       // Redis database number, default 0
	Prefix   string `env:"REDIS_PREFIX"`   // Key prefix, default "orchestra:gateway:"
}

// DefaultRedisConfig returns a RedisConfig with sensible defaults.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:   "localhost:6379",
		Prefix: "orchestra:gateway:",
	}
}

// RedisConfigFromEnv loads Redis configuration from environment variables.
// Unset variables keep their defaults.
func RedisConfigFromEnv() (*RedisConfig, error) {
	cfg := DefaultRedisConfig()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse redis env: %w", err)
	}
	return cfg, nil
}
