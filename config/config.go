// Package config loads cache configurations and per-model settings from
// YAML, with environment overrides.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-cacher/cache"
	"github.com/goliatone/go-cacher/repositorycache"
)

// Environment variables read by Load.
const (
	EnvDisable         = "CACHER_DISABLE"
	EnvDefaultEngine   = "CACHER_DEFAULT_ENGINE"
	EnvDefaultDuration = "CACHER_DEFAULT_DURATION"
	EnvRedisAddr       = "CACHER_REDIS_ADDR"
)

// Config is the root configuration document.
type Config struct {
	// Disabled seeds the global cache switch.
	Disabled bool                    `yaml:"disabled"`
	Caches   map[string]cache.Config `yaml:"caches"`
	Models   map[string]ModelConfig  `yaml:"models"`
}

// ModelConfig holds the settings of one entity. Unset fields keep the
// repositorycache defaults.
type ModelConfig struct {
	Config        *string `yaml:"config"`
	ClearOnSave   *bool   `yaml:"clear_on_save"`
	ClearOnDelete *bool   `yaml:"clear_on_delete"`
	Auto          *bool   `yaml:"auto"`
	Compress      *bool   `yaml:"compress"`
}

// Options converts the model settings into repositorycache options.
func (m ModelConfig) Options() []repositorycache.Option {
	var opts []repositorycache.Option
	if m.Config != nil {
		opts = append(opts, repositorycache.WithConfig(*m.Config))
	}
	if m.ClearOnSave != nil {
		opts = append(opts, repositorycache.WithClearOnSave(*m.ClearOnSave))
	}
	if m.ClearOnDelete != nil {
		opts = append(opts, repositorycache.WithClearOnDelete(*m.ClearOnDelete))
	}
	if m.Auto != nil {
		opts = append(opts, repositorycache.WithAuto(*m.Auto))
	}
	if m.Compress != nil {
		opts = append(opts, repositorycache.WithCompress(*m.Compress))
	}
	return opts
}

func (m ModelConfig) configName() string {
	if m.Config == nil || *m.Config == "" {
		return cache.DefaultConfigName
	}
	return *m.Config
}

// Default returns a configuration with a single memory-backed "default"
// cache.
func Default() Config {
	return Config{
		Caches: map[string]cache.Config{cache.DefaultConfigName: cache.DefaultConfig()},
		Models: map[string]ModelConfig{},
	}
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result. An empty path loads the defaults.
func Load(path string) (Config, error) {
	var data []byte
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read cacher configuration").
				WithMetadata(map[string]any{"path": path})
		}
		data = b
	}
	return LoadFrom(data, os.LookupEnv)
}

// LoadFrom is Load over raw YAML and an environment lookup function.
func LoadFrom(data []byte, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to parse cacher configuration")
		}
	}
	if cfg.Caches == nil {
		cfg.Caches = map[string]cache.Config{}
	}
	if cfg.Models == nil {
		cfg.Models = map[string]ModelConfig{}
	}

	if lookup != nil {
		if err := cfg.applyEnv(lookup); err != nil {
			return Config{}, err
		}
	}
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDisable); ok && v != "" {
		disabled, err := strconv.ParseBool(v)
		if err != nil {
			return goerrors.New("invalid boolean in environment", goerrors.CategoryValidation).
				WithMetadata(map[string]any{"variable": EnvDisable, "value": v})
		}
		c.Disabled = disabled
	}

	def := c.Caches[cache.DefaultConfigName]
	_, hasDefault := c.Caches[cache.DefaultConfigName]
	if v, ok := lookup(EnvDefaultEngine); ok && v != "" {
		def.Engine = v
		hasDefault = true
	}
	if v, ok := lookup(EnvDefaultDuration); ok && v != "" {
		def.Duration = v
		hasDefault = true
	}
	if hasDefault {
		c.Caches[cache.DefaultConfigName] = def
	}

	if addr, ok := lookup(EnvRedisAddr); ok && addr != "" {
		for name, cc := range c.Caches {
			if cc.Engine == cache.EngineRedis && cc.Redis.Addr == "" && len(cc.Redis.Addrs) == 0 {
				cc.Redis.Addr = addr
				c.Caches[name] = cc
			}
		}
	}
	return nil
}

// WithDefaults returns a copy of c whose caches have their zero fields,
// including a missing duration, filled from cache.DefaultConfig.
func (c Config) WithDefaults() Config {
	def := cache.DefaultConfig()
	caches := make(map[string]cache.Config, len(c.Caches))
	for name, cc := range c.Caches {
		if cc.Duration == "" {
			cc.Duration = def.Duration
		}
		caches[name] = cc.WithDefaults()
	}
	c.Caches = caches
	return c
}

// Validate checks every cache configuration and that each model names a
// defined cache.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Caches, validation.Required),
		validation.Field(&c.Models, validation.By(func(any) error {
			return c.checkModels()
		})),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid cacher configuration")
	}
	return nil
}

func (c Config) checkModels() error {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ref := c.Models[name].configName()
		if _, ok := c.Caches[ref]; !ok {
			return fmt.Errorf("model %s references undefined cache %q", name, ref)
		}
	}
	return nil
}

// ModelNames lists the configured models in sorted order.
func (c Config) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
