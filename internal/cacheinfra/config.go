package cacheinfra

import (
	"time"
)

// Engine names the backend implementation a Config builds.
type Engine string

const (
	EngineMemory    Engine = "memory"
	EngineRistretto Engine = "ristretto"
	EngineRedis     Engine = "redis"
)

// Config holds the settings needed to construct any of the cache backends.
// Only the fields relevant to the selected Engine are consulted.
type Config struct {
	Engine Engine

	// Prefix is prepended to every key written by the backend.
	Prefix string

	// TTL is the upper bound on how long the memory engine keeps an entry,
	// regardless of the per-entry expiry passed to Set.
	// Must be greater than 0 for EngineMemory.
	TTL time.Duration

	// Capacity defines the maximum number of entries the memory engine stores.
	Capacity int

	// NumShards determines the number of sturdyc shards. Default: 256
	NumShards int

	// EvictionPercentage specifies what percentage of entries to evict
	// when the memory engine reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often sturdyc checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration

	// MaxCost bounds the ristretto engine by total payload bytes.
	MaxCost int64

	Redis RedisConfig
}

// RedisConfig configures the redis engine connection.
type RedisConfig struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// DefaultConfig returns a Config for the memory engine.
func DefaultConfig() Config {
	return Config{
		Engine:             EngineMemory,
		TTL:                24 * time.Hour,
		Capacity:           10000,
		NumShards:          256,
		EvictionPercentage: 10,
		MaxCost:            64 << 20,
	}
}

// Validate checks the fields the selected engine depends on.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineMemory:
		if c.Capacity <= 0 {
			return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
		}
		if c.NumShards <= 0 {
			return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
		}
		if c.TTL <= 0 {
			return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
		}
		if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
			return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
		}
	case EngineRistretto:
		if c.MaxCost <= 0 {
			return &ConfigError{Field: "MaxCost", Message: "must be greater than 0"}
		}
	case EngineRedis:
		if len(c.Redis.Addrs) == 0 {
			return &ConfigError{Field: "Redis.Addrs", Message: "at least one address is required"}
		}
	default:
		return &ConfigError{Field: "Engine", Message: "unknown engine " + string(c.Engine)}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
