package cacheinfra

import (
	"context"
	"time"
)

// Backend is the byte-oriented store every engine implements. The method set
// matches cache.Store so values returned by NewBackend satisfy it directly.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	PurgePrefix(ctx context.Context, prefix string) error
	Close() error
}

// NewBackend builds the engine selected by cfg.
func NewBackend(cfg Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Engine {
	case EngineRistretto:
		return NewRistrettoStore(cfg)
	case EngineRedis:
		return NewRedisStore(cfg)
	default:
		return NewSturdycStore(cfg)
	}
}
