package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cacher/internal/cacheinfra"
)

// Engine names.
const (
	EngineMemory    = string(cacheinfra.EngineMemory)
	EngineRistretto = string(cacheinfra.EngineRistretto)
	EngineRedis     = string(cacheinfra.EngineRedis)
)

// DefaultConfigName is the cache configuration used when none is named.
const DefaultConfigName = "default"

// Config describes one named cache configuration: which engine backs it and
// how long entries live.
type Config struct {
	Engine string `yaml:"engine"`
	// Duration is the per-entry lifetime, e.g. "+1 hour" or "30m".
	// See ParseDuration for the accepted forms.
	Duration string `yaml:"duration"`
	Prefix   string `yaml:"prefix"`

	// MaxTTL caps how long the memory engine keeps any entry. The cap is
	// max(MaxTTL, Duration) at the time the store is built; later duration
	// directives do not raise it.
	MaxTTL             time.Duration `yaml:"max_ttl"`
	Capacity           int           `yaml:"capacity"`
	NumShards          int           `yaml:"num_shards"`
	EvictionPercentage int           `yaml:"eviction_percentage"`
	EvictionInterval   time.Duration `yaml:"eviction_interval"`

	// MaxCost bounds the ristretto engine, in payload bytes.
	MaxCost int64 `yaml:"max_cost"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis engine.
type RedisConfig struct {
	Addr     string   `yaml:"addr"`
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// ConfigOption mutates a Config during Reconfigure.
type ConfigOption func(*Config)

// WithDuration sets the per-entry lifetime.
func WithDuration(d string) ConfigOption {
	return func(c *Config) { c.Duration = d }
}

// WithEngine switches the backing engine.
func WithEngine(engine string) ConfigOption {
	return func(c *Config) { c.Engine = engine }
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) ConfigOption {
	return func(c *Config) { c.Prefix = prefix }
}

// DefaultConfig returns a memory-backed Config with a one hour duration.
func DefaultConfig() Config {
	internal := cacheinfra.DefaultConfig()
	return Config{
		Engine:             EngineMemory,
		Duration:           "+1 hour",
		MaxTTL:             internal.TTL,
		Capacity:           internal.Capacity,
		NumShards:          internal.NumShards,
		EvictionPercentage: internal.EvictionPercentage,
		MaxCost:            internal.MaxCost,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Engine, validation.Required, validation.In(EngineMemory, EngineRistretto, EngineRedis)),
		validation.Field(&c.Duration, validation.By(func(value any) error {
			s, _ := value.(string)
			_, err := ParseDuration(s)
			return err
		})),
		validation.Field(&c.Capacity, validation.Min(0)),
		validation.Field(&c.NumShards, validation.Min(0)),
		validation.Field(&c.EvictionPercentage, validation.Min(0), validation.Max(100)),
		validation.Field(&c.MaxCost, validation.Min(int64(0))),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid cache configuration")
	}

	if err := c.toInternal().Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid cache configuration")
	}
	return nil
}

// TTL returns the parsed Duration.
func (c Config) TTL() (time.Duration, error) {
	return ParseDuration(c.Duration)
}

// WithDefaults fills zero fields from DefaultConfig so partial configs
// (e.g. only Engine and Redis) are usable.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Engine == "" {
		c.Engine = d.Engine
	}
	if c.MaxTTL == 0 {
		c.MaxTTL = d.MaxTTL
	}
	if c.Capacity == 0 {
		c.Capacity = d.Capacity
	}
	if c.NumShards == 0 {
		c.NumShards = d.NumShards
	}
	if c.EvictionPercentage == 0 {
		c.EvictionPercentage = d.EvictionPercentage
	}
	if c.MaxCost == 0 {
		c.MaxCost = d.MaxCost
	}
	return c
}

func (c Config) toInternal() cacheinfra.Config {
	ceiling := c.MaxTTL
	if ttl, err := c.TTL(); err == nil && ttl > ceiling {
		ceiling = ttl
	}

	addrs := append([]string(nil), c.Redis.Addrs...)
	if c.Redis.Addr != "" {
		addrs = append([]string{c.Redis.Addr}, addrs...)
	}

	return cacheinfra.Config{
		Engine:             cacheinfra.Engine(c.Engine),
		Prefix:             c.Prefix,
		TTL:                ceiling,
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
		MaxCost:            c.MaxCost,
		Redis: cacheinfra.RedisConfig{
			Addrs:    addrs,
			Username: c.Redis.Username,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		},
	}
}
