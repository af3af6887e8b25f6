package cache

import (
	"reflect"
	"sort"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cacher/internal/cacheinfra"
)

// StoreFactory builds the backend for a named configuration.
type StoreFactory func(name string, cfg Config) (Store, error)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithStoreFactory replaces the engine-based default factory, mostly for tests.
func WithStoreFactory(f StoreFactory) ManagerOption {
	return func(m *Manager) {
		if f != nil {
			m.factory = f
		}
	}
}

// Manager holds named cache configurations and lazily builds one Store per
// name. It is the reconfigure(name, options) side of the cache adapter.
type Manager struct {
	mu      sync.RWMutex
	configs map[string]Config
	stores  map[string]Store
	// retired stores were replaced while readers may still hold them. They
	// are closed by Close.
	retired []Store
	factory StoreFactory
}

// NewManager creates an empty Manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		configs: make(map[string]Config),
		stores:  make(map[string]Store),
		factory: DefaultStoreFactory,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultStoreFactory builds the backend selected by cfg.Engine.
func DefaultStoreFactory(_ string, cfg Config) (Store, error) {
	return cacheinfra.NewBackend(cfg.toInternal())
}

// Register adds or replaces the configuration stored under name. Zero fields
// are filled from DefaultConfig. Replacing a configuration with a different
// backend retires its store.
func (m *Manager) Register(name string, cfg Config) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.configs[name]; ok && !sameBackend(current, cfg) {
		m.retireStoreLocked(name)
	}
	m.configs[name] = cfg
	return nil
}

// Reconfigure applies opts over the existing configuration for name. The
// built store is kept unless the change affects the backend itself, so a
// duration change keeps cached entries around and never disturbs readers.
// A replaced store is retired, not closed, since in-flight reads may still
// use it.
func (m *Manager) Reconfigure(name string, opts ...ConfigOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.configs[name]
	if !ok {
		return configNotFound(name)
	}

	next := current
	for _, opt := range opts {
		opt(&next)
	}
	next = next.WithDefaults()
	if err := next.Validate(); err != nil {
		return err
	}

	if !sameBackend(current, next) {
		m.retireStoreLocked(name)
	}
	m.configs[name] = next
	return nil
}

// sameBackend reports whether a and b build the same backend. The memory
// engine's lifetime ceiling is fixed when its store is built, so it does not
// count as a backend change.
func sameBackend(a, b Config) bool {
	ai, bi := a.toInternal(), b.toInternal()
	ai.TTL, bi.TTL = 0, 0
	return reflect.DeepEqual(ai, bi)
}

// Exists reports whether a configuration is registered under name.
func (m *Manager) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.configs[name]
	return ok
}

// Config returns a copy of the configuration registered under name.
func (m *Manager) Config(name string) (Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[name]
	return cfg, ok
}

// TTL returns the per-entry lifetime currently configured for name.
func (m *Manager) TTL(name string) (time.Duration, error) {
	cfg, ok := m.Config(name)
	if !ok {
		return 0, configNotFound(name)
	}
	return cfg.TTL()
}

// Names lists registered configuration names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.configs))
	for name := range m.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Store returns the backend for name, building it on first use.
func (m *Manager) Store(name string) (Store, error) {
	m.mu.RLock()
	store, ok := m.stores[name]
	m.mu.RUnlock()
	if ok {
		return store, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[name]; ok {
		return store, nil
	}

	cfg, ok := m.configs[name]
	if !ok {
		return nil, configNotFound(name)
	}

	store, err := m.factory(name, cfg)
	if err != nil {
		return nil, wrap(err, CategoryConfiguration, "failed to create cache backend").
			WithTextCode(TextCodeBackendInit).
			WithMetadata(map[string]any{"config": name, "engine": cfg.Engine})
	}

	m.stores[name] = store
	return store, nil
}

// Close closes every built and retired store.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name := range m.stores {
		m.retireStoreLocked(name)
	}

	var errs []error
	for _, store := range m.retired {
		if err := store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.retired = nil
	return goerrors.Join(errs...)
}

func (m *Manager) retireStoreLocked(name string) {
	store, ok := m.stores[name]
	if !ok {
		return
	}
	delete(m.stores, name)
	m.retired = append(m.retired, store)
}
