package cache

import (
	"context"
	"time"
)

// Store is the byte-oriented cache backend the decorator reads from and
// populates. Implementations must report a missing key as (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// PurgePrefix removes every entry whose key starts with prefix. It is how
	// all entries for one entity are invalidated at once.
	PurgePrefix(ctx context.Context, prefix string) error
	Close() error
}
