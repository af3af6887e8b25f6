package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-cacher/cache"
	"github.com/goliatone/go-cacher/repositorycache"
)

const sampleYAML = `
disabled: false
caches:
  default:
    engine: memory
    duration: "+1 hour"
    capacity: 500
  shared:
    engine: redis
    duration: 30m
    prefix: "app:"
    redis:
      addr: localhost:6379
  bounded:
    engine: ristretto
    max_cost: 1048576
    max_ttl: 2h
models:
  Post:
    config: default
    auto: true
    compress: true
  Comment:
    config: shared
    clear_on_delete: false
`

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadFrom_YAML(t *testing.T) {
	cfg, err := LoadFrom([]byte(sampleYAML), noEnv)
	require.NoError(t, err)

	require.Len(t, cfg.Caches, 3)
	assert.Equal(t, cache.EngineMemory, cfg.Caches["default"].Engine)
	assert.Equal(t, 500, cfg.Caches["default"].Capacity)
	assert.Equal(t, 256, cfg.Caches["default"].NumShards, "zero fields take defaults")

	shared := cfg.Caches["shared"]
	assert.Equal(t, cache.EngineRedis, shared.Engine)
	assert.Equal(t, "localhost:6379", shared.Redis.Addr)
	assert.Equal(t, "app:", shared.Prefix)

	bounded := cfg.Caches["bounded"]
	assert.Equal(t, 2*time.Hour, bounded.MaxTTL)
	assert.Equal(t, "+1 hour", bounded.Duration, "missing duration takes the default")

	assert.Equal(t, []string{"Comment", "Post"}, cfg.ModelNames())
}

func TestModelConfig_Options(t *testing.T) {
	cfg, err := LoadFrom([]byte(sampleYAML), noEnv)
	require.NoError(t, err)

	apply := func(m ModelConfig) repositorycache.Settings {
		s := repositorycache.DefaultSettings()
		for _, opt := range m.Options() {
			opt(&s)
		}
		return s
	}

	assert.Equal(t, repositorycache.Settings{
		Config: "default", ClearOnSave: true, ClearOnDelete: true, Auto: true, Compress: true,
	}, apply(cfg.Models["Post"]))

	assert.Equal(t, repositorycache.Settings{
		Config: "shared", ClearOnSave: true, ClearOnDelete: false,
	}, apply(cfg.Models["Comment"]))

	assert.Empty(t, ModelConfig{}.Options())
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	yaml := `
caches:
  default:
    engine: memory
  queue:
    engine: redis
`
	cfg, err := LoadFrom([]byte(yaml), envMap(map[string]string{
		EnvDisable:         "true",
		EnvDefaultEngine:   "ristretto",
		EnvDefaultDuration: "+2 hours",
		EnvRedisAddr:       "redis:6379",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.Disabled)
	assert.Equal(t, cache.EngineRistretto, cfg.Caches["default"].Engine)
	assert.Equal(t, "+2 hours", cfg.Caches["default"].Duration)
	assert.Equal(t, "redis:6379", cfg.Caches["queue"].Redis.Addr)
	assert.Empty(t, cfg.Caches["default"].Redis.Addr)
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(nil, noEnv)
	require.NoError(t, err)

	assert.False(t, cfg.Disabled)
	require.Contains(t, cfg.Caches, cache.DefaultConfigName)
	assert.Equal(t, cache.DefaultConfig().Duration, cfg.Caches[cache.DefaultConfigName].Duration)
	assert.Empty(t, cfg.Models)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{
			name: "model references undefined cache",
			yaml: "models:\n  Post:\n    config: nowhere\n",
		},
		{
			name: "redis without address",
			yaml: "caches:\n  default:\n    engine: redis\n",
		},
		{
			name: "bad duration",
			yaml: "caches:\n  default:\n    duration: eventually\n",
		},
		{
			name: "unknown engine",
			yaml: "caches:\n  default:\n    engine: memcached\n",
		},
		{
			name: "bad disable flag",
			env:  map[string]string{EnvDisable: "maybe"},
		},
		{
			name: "malformed yaml",
			yaml: "caches: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom([]byte(tt.yaml), envMap(tt.env))
			require.Error(t, err)
			assert.True(t, goerrors.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cacher.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	t.Setenv(EnvDefaultDuration, "45m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "45m", cfg.Caches["default"].Duration)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
