// Package repositorycache adds cache-aside reads and write invalidation to a
// primary store.
//
// # Overview
//
// A Behavior holds one Settings record per entity and exposes the five calls a
// data layer makes around its own operations:
//
//   - Configure registers an entity and its cache binding
//   - InterceptRead strips the query directive and returns a Route
//   - InterceptWrite and InterceptDelete clear the entity cache before a save
//     or delete when ClearOnSave / ClearOnDelete are set
//   - ClearCache purges every entry of an entity
//
// CachedRepository wires those calls around any PrimaryStore, so most callers
// only deal with Find, Save and Delete.
//
// # Basic Usage
//
//	manager := cache.NewManager()
//	_ = manager.Register(cache.DefaultConfigName, cache.DefaultConfig())
//
//	behavior := repositorycache.NewBehavior(manager, repositorycache.NewBindings(manager))
//	posts, err := repositorycache.New[Post](ctx, behavior, "Post", primary,
//		repositorycache.WithAuto(true),
//	)
//
//	// Served from the primary store, then from the cache.
//	rows, err := posts.Find(ctx, repositorycache.Query{}.Where("id", 1))
//	rows, err = posts.Find(ctx, repositorycache.Query{}.Where("id", 1))
//
//	// Clears every cached "Post" entry, then writes.
//	_, err = posts.Save(ctx, post)
//
// # Directives
//
// A Query can carry a per-call Directive:
//
//   - CacheOn() caches the read whatever Settings.Auto says
//   - CacheOff() skips the cache, even with Settings.Auto
//   - CacheFor("+1 hour") caches the read and sets the duration of the
//     entity's cache configuration, for every later write to that
//     configuration
//
// Directives never reach the primary store. WithDirective attaches a
// directive to a context for queries that carry none.
//
// # Bindings
//
// Each entity gets one binding named "<Entity>-cache". It starts as a copy of
// the primary store's ConnectionParams with the cache settings written over
// them, plus "original" (the primary's name) and "datasource": "cache".
// Configuring the entity again merges the new settings into that binding.
// Entries live under the namespace "<plural snake entity>::", e.g. "posts::",
// which is what ClearCache purges.
//
// # Failures
//
// Read-path backend failures are returned to the caller. Purge failures
// during InterceptWrite and InterceptDelete are logged and counted in the
// binding Stats; the write or delete still runs.
package repositorycache
