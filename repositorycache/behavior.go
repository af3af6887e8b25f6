package repositorycache

import (
	"context"
	"io"
	"log/slog"

	goerrors "github.com/goliatone/go-errors"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-cacher/cache"
)

// Route tells the caller which store should serve a read.
type Route int

const (
	RoutePrimary Route = iota
	RouteCache
)

func (r Route) String() string {
	if r == RouteCache {
		return "cache"
	}
	return "primary"
}

// ConnectionSource exposes the connection parameters of a primary store.
type ConnectionSource interface {
	ConnectionParams() ConnectionParams
}

// BehaviorOption configures a Behavior.
type BehaviorOption func(*Behavior)

// WithLogger sets the logger used for configuration events and swallowed
// purge failures.
func WithLogger(logger *slog.Logger) BehaviorOption {
	return func(b *Behavior) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithSwitch sets the global disable switch checked on every read.
func WithSwitch(s *Switch) BehaviorOption {
	return func(b *Behavior) {
		if s != nil {
			b.toggle = s
		}
	}
}

// Behavior is the cache-aside decorator. It owns the per-entity Settings and
// decides, per call, whether a read goes through the cache and whether a
// write or delete clears the entity's entries first.
//
// Configure for a given entity must not run concurrently with itself; every
// other method is safe for concurrent use.
type Behavior struct {
	manager  *cache.Manager
	bindings *Bindings
	settings *xsync.MapOf[string, Settings]
	toggle   *Switch
	logger   *slog.Logger
}

// NewBehavior creates a Behavior over manager. A nil bindings gets a fresh
// registry; the switch starts enabled and the logger discards output unless
// options say otherwise.
func NewBehavior(manager *cache.Manager, bindings *Bindings, opts ...BehaviorOption) *Behavior {
	if bindings == nil {
		bindings = NewBindings(manager)
	}
	b := &Behavior{
		manager:  manager,
		bindings: bindings,
		settings: xsync.NewMapOf[string, Settings](),
		toggle:   NewSwitch(false),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Switch returns the global disable switch.
func (b *Behavior) Switch() *Switch { return b.toggle }

// Configure stores the settings for entity, opts applied over
// DefaultSettings. The first call for an entity creates its binding from the
// primary's connection parameters; later calls merge the new settings into
// the existing binding. Settings are only stored once the binding is in
// place.
func (b *Behavior) Configure(ctx context.Context, entity string, primary ConnectionSource, opts ...Option) error {
	settings := resolveSettings(opts...)
	name := BindingName(entity)

	if b.bindings.Exists(name) {
		if _, err := b.bindings.Merge(name, settings.params()); err != nil {
			return err
		}
	} else {
		var base ConnectionParams
		if primary != nil {
			base = primary.ConnectionParams()
		}
		overlay := settings.params()
		overlay[ParamOriginal] = base.String(ParamName)
		overlay[ParamDatasource] = DatasourceCache
		overlay[ParamEntity] = entity

		if _, err := b.bindings.Create(name, BindingConfig{Entity: entity, Params: base.Merge(overlay)}); err != nil {
			return err
		}
	}

	b.settings.Store(entity, settings)
	b.logger.DebugContext(ctx, "cache configured",
		slog.String("entity", entity),
		slog.String("binding", name),
		slog.String("config", settings.Config),
		slog.Bool("auto", settings.Auto),
	)
	return nil
}

// Settings returns the settings stored for entity.
func (b *Behavior) Settings(entity string) (Settings, bool) {
	return b.settings.Load(entity)
}

// Binding returns the binding of entity.
func (b *Behavior) Binding(entity string) (*Binding, error) {
	return b.bindings.Get(BindingName(entity))
}

// InterceptRead decides where q should be served from and returns q without
// its directive. A CacheFor directive also sets the duration of the entity's
// cache configuration. An explicit CacheOff wins over Settings.Auto.
// A directive attached with WithDirective is used when q carries none.
//
// While the switch is disabled q is returned untouched and routed to the
// primary store.
func (b *Behavior) InterceptRead(ctx context.Context, entity string, q Query) (Query, Route, error) {
	if b.toggle.Disabled() {
		return q, RoutePrimary, nil
	}

	settings, ok := b.settings.Load(entity)
	if !ok {
		return q, RoutePrimary, entityNotConfigured(entity)
	}

	directive := q.Cache
	if !directive.IsSet() {
		directive = directiveFromContext(ctx)
	}
	q.Cache = Directive{}

	willCache := false
	if directive.IsSet() {
		if d, ok := directive.Duration(); ok {
			if err := b.reconfigureDuration(ctx, entity, settings.Config, d); err != nil {
				return q, RoutePrimary, err
			}
			willCache = true
		} else {
			willCache = directive.Enabled()
		}
	}

	if settings.Auto && !(directive.IsSet() && !directive.Enabled()) {
		willCache = true
	}

	if willCache {
		return q, RouteCache, nil
	}
	return q, RoutePrimary, nil
}

func (b *Behavior) reconfigureDuration(ctx context.Context, entity, config, d string) error {
	if _, err := cache.ParseDuration(d); err != nil {
		return err
	}
	if err := b.manager.Reconfigure(config, cache.WithDuration(d)); err != nil {
		return err
	}
	b.logger.DebugContext(ctx, "cache duration reconfigured",
		slog.String("entity", entity),
		slog.String("config", config),
		slog.String("duration", d),
	)
	return nil
}

// InterceptWrite runs before a save. With ClearOnSave it clears the entity's
// cache; a failed purge is logged and counted. It always returns true.
func (b *Behavior) InterceptWrite(ctx context.Context, entity string) bool {
	if settings, ok := b.settings.Load(entity); ok && settings.ClearOnSave {
		b.clearQuietly(ctx, entity, "save")
	}
	return true
}

// InterceptDelete is InterceptWrite for deletes, driven by ClearOnDelete.
func (b *Behavior) InterceptDelete(ctx context.Context, entity string) bool {
	if settings, ok := b.settings.Load(entity); ok && settings.ClearOnDelete {
		b.clearQuietly(ctx, entity, "delete")
	}
	return true
}

// ClearCache purges every cached entry of entity.
func (b *Behavior) ClearCache(ctx context.Context, entity string) error {
	binding, err := b.Binding(entity)
	if err != nil {
		return err
	}
	return binding.Purge(ctx)
}

func (b *Behavior) clearQuietly(ctx context.Context, entity, operation string) {
	err := b.ClearCache(ctx, entity)
	if err == nil {
		return
	}

	if binding, berr := b.Binding(entity); berr == nil {
		binding.recorder().Error()
	}

	attrs := []slog.Attr{
		slog.String("entity", entity),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}
	attrs = append(attrs, goerrors.ToSlogAttributes(err)...)
	b.logger.LogAttrs(ctx, slog.LevelWarn, "cache purge failed", attrs...)
}
