package repositorycache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jinzhu/inflection"

	"github.com/goliatone/go-cacher/cache"
)

// BindingName is the binding name used for entity.
func BindingName(entity string) string {
	return entity + "-cache"
}

// BindingConfig describes a binding to create. Params must name the cache
// configuration under ParamConfig; a missing name means the default one.
type BindingConfig struct {
	Entity string
	Params ConnectionParams
}

// Binding associates an entity with a named cache configuration. Its store
// is resolved through the Manager on every use, so a backend rebuilt by
// Reconfigure is picked up without recreating the binding.
type Binding struct {
	name       string
	entity     string
	manager    *cache.Manager
	serializer cache.KeySerializer
	stats      cache.StatsRecorder

	mu     sync.RWMutex
	params ConnectionParams
}

// Name is the binding name, "<Entity>-cache".
func (b *Binding) Name() string { return b.name }

// Entity is the entity the binding caches.
func (b *Binding) Entity() string { return b.entity }

// Params returns a copy of the binding parameters.
func (b *Binding) Params() ConnectionParams {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.params.Clone()
}

// Config is the name of the cache configuration backing the binding.
func (b *Binding) Config() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if name := b.params.String(ParamConfig); name != "" {
		return name
	}
	return cache.DefaultConfigName
}

// Compress reports whether entries are written gzip-compressed.
func (b *Binding) Compress() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.params.Bool(ParamCompress)
}

// Namespace is the key namespace shared by every entry of the entity: the
// snake_cased plural of the entity name, qualified by the database
// parameter when the primary store has one (e.g. "blog.posts").
func (b *Binding) Namespace() string {
	b.mu.RLock()
	db := b.params.String(ParamDatabase)
	b.mu.RUnlock()

	ns := inflection.Plural(toSnake(b.entity))
	if db != "" {
		return toSnake(db) + "." + ns
	}
	return ns
}

// Key derives the cache key for q. The directive never affects the key.
func (b *Binding) Key(q Query) (string, error) {
	return b.serializer.SerializeKey(b.Namespace(), "find", q.normalized())
}

// Store resolves the backend of the binding's cache configuration.
func (b *Binding) Store() (cache.Store, error) {
	return b.manager.Store(b.Config())
}

// TTL is the per-entry lifetime currently configured for the binding.
func (b *Binding) TTL() (time.Duration, error) {
	return b.manager.TTL(b.Config())
}

// Purge removes every entry in the binding namespace.
func (b *Binding) Purge(ctx context.Context) error {
	store, err := b.Store()
	if err != nil {
		return err
	}
	prefix := cache.NamespacePrefix(b.Namespace())
	if err := store.PurgePrefix(ctx, prefix); err != nil {
		return cache.BackendError(err, cache.TextCodePurge, prefix)
	}
	return nil
}

// Stats returns the hit, miss and error counters of the binding.
func (b *Binding) Stats() cache.Stats {
	return b.stats.Snapshot()
}

func (b *Binding) recorder() *cache.StatsRecorder {
	return &b.stats
}

func (b *Binding) merge(overlay ConnectionParams) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.params = b.params.Merge(overlay)
}

// BindingsOption configures a Bindings registry.
type BindingsOption func(*Bindings)

// WithKeySerializer sets the serializer used by bindings created afterwards.
func WithKeySerializer(s cache.KeySerializer) BindingsOption {
	return func(r *Bindings) {
		if s != nil {
			r.serializer = s
		}
	}
}

// Bindings is the binding registry. It is safe for concurrent use.
type Bindings struct {
	mu         sync.RWMutex
	manager    *cache.Manager
	serializer cache.KeySerializer
	items      map[string]*Binding
}

// NewBindings creates an empty registry whose bindings resolve their stores
// through manager.
func NewBindings(manager *cache.Manager, opts ...BindingsOption) *Bindings {
	r := &Bindings{
		manager:    manager,
		serializer: cache.NewDefaultKeySerializer(),
		items:      make(map[string]*Binding),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Exists reports whether a binding is registered under name.
func (r *Bindings) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[name]
	return ok
}

// Create registers a new binding. The cache configuration it names must be
// registered and its backend must be buildable. Two bindings may not share a
// namespace ("Person" and "People" both map to "people"), since they would
// read and purge each other's entries.
func (r *Bindings) Create(name string, cfg BindingConfig) (*Binding, error) {
	params := cfg.Params.Clone()
	configName := params.String(ParamConfig)
	if configName == "" {
		configName = cache.DefaultConfigName
		params[ParamConfig] = configName
	}

	if err := r.checkConfig(configName, name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[name]; ok {
		return nil, bindingExists(name)
	}

	b := &Binding{
		name:       name,
		entity:     cfg.Entity,
		manager:    r.manager,
		serializer: r.serializer,
		params:     params,
	}
	ns := b.Namespace()
	for _, other := range r.items {
		if other.Namespace() == ns {
			return nil, namespaceTaken(ns, name, other.name)
		}
	}
	r.items[name] = b
	return b, nil
}

// Get returns the binding registered under name, or a BINDING_NOT_FOUND
// configuration error.
func (r *Bindings) Get(name string) (*Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[name]
	if !ok {
		return nil, bindingNotFound(name)
	}
	return b, nil
}

// Merge writes overlay over the parameters of an existing binding. Keys
// overlay does not name are kept.
func (r *Bindings) Merge(name string, overlay ConnectionParams) (*Binding, error) {
	b, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if configName := overlay.String(ParamConfig); configName != "" {
		if err := r.checkConfig(configName, name); err != nil {
			return nil, err
		}
	}
	b.merge(overlay)
	return b, nil
}

// Names lists binding names in sorted order.
func (r *Bindings) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Bindings) checkConfig(configName, binding string) error {
	if !r.manager.Exists(configName) {
		return configNotFound(configName, binding)
	}
	_, err := r.manager.Store(configName)
	return err
}
