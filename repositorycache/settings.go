package repositorycache

import "github.com/goliatone/go-cacher/cache"

// Settings is the per-entity caching configuration held by a Behavior.
type Settings struct {
	// Config names the cache.Manager configuration backing the entity.
	Config        string
	ClearOnSave   bool
	ClearOnDelete bool
	// Auto caches every read unless the query carries CacheOff.
	Auto     bool
	Compress bool
}

// DefaultSettings returns the settings used for options the caller omits.
func DefaultSettings() Settings {
	return Settings{
		Config:        cache.DefaultConfigName,
		ClearOnSave:   true,
		ClearOnDelete: true,
	}
}

// Option overrides one field of DefaultSettings.
type Option func(*Settings)

// WithConfig names the cache configuration. An empty name keeps the default.
func WithConfig(name string) Option {
	return func(s *Settings) {
		if name != "" {
			s.Config = name
		}
	}
}

// WithClearOnSave toggles clearing the entity cache before each save.
func WithClearOnSave(v bool) Option {
	return func(s *Settings) { s.ClearOnSave = v }
}

// WithClearOnDelete toggles clearing the entity cache before each delete.
func WithClearOnDelete(v bool) Option {
	return func(s *Settings) { s.ClearOnDelete = v }
}

// WithAuto caches reads that carry no directive.
func WithAuto(v bool) Option {
	return func(s *Settings) { s.Auto = v }
}

// WithCompress gzips cached payloads.
func WithCompress(v bool) Option {
	return func(s *Settings) { s.Compress = v }
}

func resolveSettings(opts ...Option) Settings {
	s := DefaultSettings()
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// params renders the settings as binding parameters.
func (s Settings) params() ConnectionParams {
	return ConnectionParams{
		ParamConfig:        s.Config,
		ParamClearOnSave:   s.ClearOnSave,
		ParamClearOnDelete: s.ClearOnDelete,
		ParamAuto:          s.Auto,
		ParamCompress:      s.Compress,
	}
}
