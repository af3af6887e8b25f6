package di

import (
	"context"
	"io"
	"log/slog"
	"sort"

	repository "github.com/goliatone/go-repository-bun"

	"github.com/goliatone/go-cacher/cache"
	"github.com/goliatone/go-cacher/config"
	"github.com/goliatone/go-cacher/pkg/bunstore"
	"github.com/goliatone/go-cacher/repositorycache"
)

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger handed to the cache behavior.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithKeySerializer replaces the default hashstructure key serializer.
func WithKeySerializer(s cache.KeySerializer) Option {
	return func(c *Container) {
		if s != nil {
			c.keySerializer = s
		}
	}
}

// WithStoreFactory replaces the engine-based backend factory.
func WithStoreFactory(f cache.StoreFactory) Option {
	return func(c *Container) {
		c.factory = f
	}
}

// Container wires the cache manager, the binding registry and the behavior
// from a config.Config, and builds cached repositories on top of them.
type Container struct {
	config        config.Config
	manager       *cache.Manager
	bindings      *repositorycache.Bindings
	toggle        *repositorycache.Switch
	behavior      *repositorycache.Behavior
	keySerializer cache.KeySerializer
	factory       cache.StoreFactory
	logger        *slog.Logger
}

// NewContainer fills cache defaults, validates cfg and registers every named
// cache. Backends are created lazily on first use.
func NewContainer(cfg config.Config, opts ...Option) (*Container, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		config:        cfg,
		keySerializer: cache.NewDefaultKeySerializer(),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.manager = cache.NewManager(cache.WithStoreFactory(c.factory))

	names := make([]string, 0, len(cfg.Caches))
	for name := range cfg.Caches {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.manager.Register(name, cfg.Caches[name]); err != nil {
			return nil, err
		}
	}

	c.bindings = repositorycache.NewBindings(c.manager, repositorycache.WithKeySerializer(c.keySerializer))
	c.toggle = repositorycache.NewSwitch(cfg.Disabled)
	c.behavior = repositorycache.NewBehavior(c.manager, c.bindings,
		repositorycache.WithSwitch(c.toggle),
		repositorycache.WithLogger(c.logger),
	)

	c.logger.Debug("cache container ready", "caches", names, "disabled", cfg.Disabled)
	return c, nil
}

// NewContainerWithDefaults builds a container with a single in-memory
// "default" cache.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(config.Default(), opts...)
}

// NewContainerFromFile loads a YAML config, applies environment overrides and
// builds a container from it.
func NewContainerFromFile(path string, opts ...Option) (*Container, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return NewContainer(cfg, opts...)
}

func (c *Container) Config() config.Config { return c.config }
func (c *Container) Manager() *cache.Manager { return c.manager }
func (c *Container) Bindings() *repositorycache.Bindings { return c.bindings }
func (c *Container) Behavior() *repositorycache.Behavior { return c.behavior }
func (c *Container) Switch() *repositorycache.Switch { return c.toggle }
func (c *Container) KeySerializer() cache.KeySerializer { return c.keySerializer }

// Close releases every backend the manager has opened.
func (c *Container) Close() error {
	return c.manager.Close()
}

// NewCachedRepository wraps primary with the cache behavior. Settings from the
// entity's models entry apply first; opts override them.
//
// Go methods cannot have type parameters, so this is a package-level function:
//
//	posts, err := di.NewCachedRepository[Post](ctx, container, "Post", store)
func NewCachedRepository[T any](ctx context.Context, c *Container, entity string, primary repositorycache.PrimaryStore[T], opts ...repositorycache.Option) (*repositorycache.CachedRepository[T], error) {
	all := append(c.config.Models[entity].Options(), opts...)
	return repositorycache.New(ctx, c.behavior, entity, primary, all...)
}

// NewBunRepository adapts a go-repository-bun repository and wraps it with
// the cache behavior.
func NewBunRepository[T any](ctx context.Context, c *Container, entity string, repo repository.Repository[T], params repositorycache.ConnectionParams, opts ...repositorycache.Option) (*repositorycache.CachedRepository[T], error) {
	return NewCachedRepository[T](ctx, c, entity, bunstore.New(repo, params), opts...)
}
