package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/viccon/sturdyc"
)

// envelope carries the per-entry expiry sturdyc has no native slot for.
type envelope struct {
	ExpiresAt int64
	Value     []byte
}

// SturdycStore keeps entries in a sharded sturdyc client.
type SturdycStore struct {
	client *sturdyc.Client[envelope]
	prefix string
	now    func() time.Time
}

// NewSturdycStore creates a memory backend from cfg.
//
// Capacity, NumShards, TTL and EvictionPercentage are passed to sturdyc.New;
// the client TTL acts as a ceiling, shorter per-entry durations are enforced
// on read.
func NewSturdycStore(cfg Config) (*SturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[envelope](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		opts...,
	)

	return &SturdycStore{client: client, prefix: cfg.Prefix, now: time.Now}, nil
}

// Get returns the payload stored under key. Entries past their own expiry
// are dropped and reported as a miss.
func (s *SturdycStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	k := s.prefix + key
	e, ok := s.client.Get(k)
	if !ok {
		return nil, false, nil
	}
	if e.ExpiresAt != 0 && s.now().UnixNano() >= e.ExpiresAt {
		s.client.Delete(k)
		return nil, false, nil
	}
	return e.Value, true, nil
}

// Set stores value under key. A ttl <= 0 leaves expiry to the client TTL.
func (s *SturdycStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := envelope{Value: value}
	if ttl > 0 {
		e.ExpiresAt = s.now().Add(ttl).UnixNano()
	}
	s.client.Set(s.prefix+key, e)
	return nil
}

// PurgePrefix removes every entry whose key starts with prefix.
func (s *SturdycStore) PurgePrefix(_ context.Context, prefix string) error {
	full := s.prefix + prefix
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, full) {
			s.client.Delete(key)
		}
	}
	return nil
}

// Close is a no-op, sturdyc has nothing to release.
func (s *SturdycStore) Close() error {
	return nil
}
