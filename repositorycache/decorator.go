package repositorycache

import (
	"context"

	"github.com/goliatone/go-cacher/cache"
)

// PrimaryStore is the authoritative source an entity is read from and
// written to.
//
// Cached results go through msgpack, on every engine. A hit therefore returns
// only what msgpack round-trips: exported fields, with time.Time values in
// the local zone. Unexported fields come back zero, and values held in
// interface-typed fields come back as msgpack's decoded types (int8, int64,
// map[string]interface{} and so on) rather than the primary's. Entities
// cached through this package should be plain structs of exported,
// concretely typed fields.
type PrimaryStore[T any] interface {
	ConnectionSource
	Read(ctx context.Context, q Query) ([]T, error)
	Write(ctx context.Context, record T) (T, error)
	Delete(ctx context.Context, id string) error
}

// CachedRepository decorates a PrimaryStore with the Behavior's cache-aside
// rules for a single entity.
type CachedRepository[T any] struct {
	entity   string
	primary  PrimaryStore[T]
	behavior *Behavior
}

// New configures entity on behavior and returns the decorated store.
func New[T any](ctx context.Context, behavior *Behavior, entity string, primary PrimaryStore[T], opts ...Option) (*CachedRepository[T], error) {
	if err := behavior.Configure(ctx, entity, primary, opts...); err != nil {
		return nil, err
	}
	return &CachedRepository[T]{
		entity:   entity,
		primary:  primary,
		behavior: behavior,
	}, nil
}

// Entity is the entity name the repository was configured with.
func (c *CachedRepository[T]) Entity() string { return c.entity }

// Find runs q against the cache or the primary store, as decided by
// InterceptRead. The directive is removed before the primary store sees q.
func (c *CachedRepository[T]) Find(ctx context.Context, q Query) ([]T, error) {
	q, route, err := c.behavior.InterceptRead(ctx, c.entity, q)
	if err != nil {
		return nil, err
	}
	q.Cache = Directive{}

	if route == RoutePrimary {
		return c.primary.Read(ctx, q)
	}

	binding, err := c.behavior.Binding(c.entity)
	if err != nil {
		return nil, err
	}
	store, err := binding.Store()
	if err != nil {
		return nil, err
	}
	key, err := binding.Key(q)
	if err != nil {
		return nil, err
	}
	ttl, err := binding.TTL()
	if err != nil {
		return nil, err
	}

	opts := cache.EntryOptions{
		TTL:      ttl,
		Compress: binding.Compress(),
		Stats:    binding.recorder(),
	}
	return cache.GetOrFetch(ctx, store, key, opts, func(ctx context.Context) ([]T, error) {
		return c.primary.Read(ctx, q)
	})
}

// Save clears the entity cache when configured to, then writes record.
func (c *CachedRepository[T]) Save(ctx context.Context, record T) (T, error) {
	c.behavior.InterceptWrite(ctx, c.entity)
	return c.primary.Write(ctx, record)
}

// Delete clears the entity cache when configured to, then deletes id.
func (c *CachedRepository[T]) Delete(ctx context.Context, id string) error {
	c.behavior.InterceptDelete(ctx, c.entity)
	return c.primary.Delete(ctx, id)
}

// ClearCache purges every cached entry of the entity.
func (c *CachedRepository[T]) ClearCache(ctx context.Context) error {
	return c.behavior.ClearCache(ctx, c.entity)
}

// Stats returns the hit, miss and error counters of the entity's binding.
func (c *CachedRepository[T]) Stats() cache.Stats {
	binding, err := c.behavior.Binding(c.entity)
	if err != nil {
		return cache.Stats{}
	}
	return binding.Stats()
}
