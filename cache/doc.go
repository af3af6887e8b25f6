// Package cache provides the cache store contract, named cache
// configurations and the read-through helper used by cached repositories.
//
// # Overview
//
//   - Store: byte-oriented backend with Get, Set, PurgePrefix and Close
//   - Manager: named configurations ("default", "shared", ...) and the store
//     built for each one
//   - KeySerializer: deterministic keys from a namespace, a method and args
//   - GetOrFetch: cache-aside read that populates the store on a miss
//
// # Basic Usage
//
//	manager := cache.NewManager()
//	if err := manager.Register(cache.DefaultConfigName, cache.DefaultConfig()); err != nil {
//		return err
//	}
//
//	store, err := manager.Store(cache.DefaultConfigName)
//	ttl, _ := manager.TTL(cache.DefaultConfigName)
//
//	key, _ := cache.NewDefaultKeySerializer().SerializeKey("posts", "find", query)
//	posts, err := cache.GetOrFetch(ctx, store, key, cache.EntryOptions{TTL: ttl},
//		func(ctx context.Context) ([]Post, error) {
//			return primary.Read(ctx, query)
//		})
//
// # Engines
//
// A Config selects one of three engines:
//
//   - "memory": sturdyc sharded in-process cache (default)
//   - "ristretto": cost-bounded in-process cache, cost is payload bytes
//   - "redis": shared cache reachable from several processes
//
// # Durations
//
// Config.Duration accepts Go durations ("30m"), seconds ("3600") and relative
// phrases ("+1 hour", "+2 days"). Manager.Reconfigure with WithDuration
// changes the lifetime of entries written afterwards without dropping the
// store.
//
// # Payloads
//
// Values are encoded with msgpack. When compression is requested the body is
// gzipped; a one byte header marks which form was written so entries remain
// readable after the setting changes.
//
// # Errors
//
// Failures are go-errors values. Use IsConfigurationError for setup failures
// (unknown configuration, backend that cannot be built) and IsBackendError
// for failures talking to a built store.
package cache
