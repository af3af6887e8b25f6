package cacheinfra

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const scanCount = 100

// RedisStore keeps entries in redis. All keys are written under the
// configured prefix.
type RedisStore struct {
	c         redis.UniversalClient
	keyPrefix string
}

// NewRedisStore connects to the configured redis and pings it so a bad
// address fails at configuration time rather than on the first read.
func NewRedisStore(cfg Config) (*RedisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    cfg.Redis.Addrs,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisStoreFromClient(client, cfg.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(c redis.UniversalClient, keyPrefix string) *RedisStore {
	return &RedisStore{c: c, keyPrefix: keyPrefix}
}

// Get gets a payload from redis. A missing key is a miss, not an error.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.c.Get(ctx, r.keyPrefix+key).Bytes()
	switch {
	case err == nil:
		return b, true, nil
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	default:
		return nil, false, err
	}
}

// Set sets the payload into redis with the provided TTL. A ttl <= 0 stores
// the key without expiry.
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.c.Set(ctx, r.keyPrefix+key, value, ttl).Err()
}

// PurgePrefix scans for keys under prefix and deletes them in batches.
func (r *RedisStore) PurgePrefix(ctx context.Context, prefix string) error {
	pattern := escapeGlob(r.keyPrefix+prefix) + "*"
	iter := r.c.Scan(ctx, 0, pattern, scanCount).Iterator()

	batch := make([]string, 0, scanCount)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanCount {
			if err := r.c.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.c.Del(ctx, batch...).Err()
	}
	return nil
}

// Close closes the underlying client.
func (r *RedisStore) Close() error {
	return r.c.Close()
}

var globReplacer = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}
