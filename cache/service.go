package cache

import (
	"context"
	"time"
)

// FetchFn is the function signature GetOrFetch expects when fetching from the
// source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// EntryOptions control how a fetched value is stored.
type EntryOptions struct {
	TTL      time.Duration
	Compress bool
	Stats    *StatsRecorder
}

// GetOrFetch serves key from store, or runs fetchFn on a miss and stores the
// result. A hit never calls fetchFn. Backend and decode failures are returned
// as backend errors, fetchFn errors are returned unchanged and nothing is
// stored for them.
func GetOrFetch[T any](ctx context.Context, store Store, key string, opts EntryOptions, fetchFn FetchFn[T]) (T, error) {
	var zero T

	data, ok, err := store.Get(ctx, key)
	if err != nil {
		opts.Stats.Error()
		return zero, BackendError(err, TextCodeGet, key)
	}

	if ok {
		var value T
		if err := Decode(data, &value); err != nil {
			opts.Stats.Error()
			return zero, BackendError(err, TextCodeDecode, key)
		}
		opts.Stats.Hit()
		return value, nil
	}
	opts.Stats.Miss()

	value, err := fetchFn(ctx)
	if err != nil {
		return zero, err
	}

	data, err = Encode(value, opts.Compress)
	if err != nil {
		opts.Stats.Error()
		return zero, BackendError(err, TextCodeEncode, key)
	}

	if err := store.Set(ctx, key, data, opts.TTL); err != nil {
		opts.Stats.Error()
		return zero, BackendError(err, TextCodeSet, key)
	}

	return value, nil
}
