package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/puzpuzpuz/xsync/v3"
)

// RistrettoStore wraps a cost-bounded ristretto cache. Payload length is
// used as the cost of each entry.
type RistrettoStore struct {
	c      *ristretto.Cache[string, []byte]
	prefix string
	// ristretto cannot enumerate keys, so written keys are tracked here
	// for PurgePrefix.
	keys *xsync.MapOf[string, struct{}]
}

// NewRistrettoStore creates a ristretto backend bounded by cfg.MaxCost bytes.
func NewRistrettoStore(cfg Config) (*RistrettoStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	counters := cfg.MaxCost / 100 * 10
	if counters < 1000 {
		counters = 1000
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: counters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &RistrettoStore{
		c:      c,
		prefix: cfg.Prefix,
		keys:   xsync.NewMapOf[string, struct{}](),
	}, nil
}

// Get retrieves a payload from the cache. A miss leaves the key index alone:
// a concurrent Set may have indexed the key after this lookup. Stale index
// entries are pruned by PurgePrefix.
func (r *RistrettoStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, found := r.c.Get(r.prefix + key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores a payload with the given TTL and waits for the write buffer to
// drain so the entry is visible to the next Get.
func (r *RistrettoStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	k := r.prefix + key
	if ttl < 0 {
		ttl = 0
	}
	if r.c.SetWithTTL(k, value, int64(len(value)), ttl) {
		r.keys.Store(k, struct{}{})
	}
	r.c.Wait()
	return nil
}

// PurgePrefix removes every tracked key that starts with prefix.
func (r *RistrettoStore) PurgePrefix(_ context.Context, prefix string) error {
	full := r.prefix + prefix
	r.keys.Range(func(key string, _ struct{}) bool {
		if strings.HasPrefix(key, full) {
			r.c.Del(key)
			r.keys.Delete(key)
		}
		return true
	})
	r.c.Wait()
	return nil
}

// Close shuts down the cache and releases resources.
func (r *RistrettoStore) Close() error {
	r.c.Close()
	return nil
}
