package repositorycache

import (
	"slices"
	"strings"
)

// Directive is a per-call caching instruction carried by a Query. The zero
// value means no directive.
type Directive struct {
	set      bool
	enabled  bool
	duration string
}

// CacheOn asks for the read to go through the cache.
func CacheOn() Directive { return Directive{set: true, enabled: true} }

// CacheOff keeps the read away from the cache, even when Auto is set.
func CacheOff() Directive { return Directive{set: true} }

// CacheFor caches the read and sets the entity's cache configuration
// duration to d (e.g. "+1 hour"). An empty d is the same as CacheOn.
func CacheFor(d string) Directive {
	d = strings.TrimSpace(d)
	return Directive{set: true, enabled: true, duration: d}
}

// IsSet reports whether the caller gave any directive.
func (d Directive) IsSet() bool { return d.set }

// Enabled reports whether the directive asks for caching.
func (d Directive) Enabled() bool { return d.set && d.enabled }

// Duration returns the duration carried by a CacheFor directive.
func (d Directive) Duration() (string, bool) {
	return d.duration, d.set && d.duration != ""
}

func (d Directive) String() string {
	switch {
	case !d.set:
		return "none"
	case d.duration != "":
		return d.duration
	case d.enabled:
		return "on"
	default:
		return "off"
	}
}

// Query is a read request against an entity.
type Query struct {
	Conditions map[string]any
	Fields     []string
	Order      []string
	Limit      int
	Offset     int

	// Cache is consumed by the read interceptor and never reaches the
	// primary store.
	Cache Directive `hash:"ignore" msgpack:"-"`
}

// Where returns a copy of q with field = value added to its conditions.
func (q Query) Where(field string, value any) Query {
	conds := make(map[string]any, len(q.Conditions)+1)
	for k, v := range q.Conditions {
		conds[k] = v
	}
	conds[field] = value
	q.Conditions = conds
	return q
}

// WithCache returns a copy of q carrying d.
func (q Query) WithCache(d Directive) Query {
	q.Cache = d
	return q
}

// normalized is the form hashed into cache keys: no directive, sorted
// Fields, and empty collections folded to nil.
func (q Query) normalized() Query {
	q.Cache = Directive{}
	if len(q.Conditions) == 0 {
		q.Conditions = nil
	}
	if len(q.Fields) == 0 {
		q.Fields = nil
	} else {
		q.Fields = slices.Clone(q.Fields)
		slices.Sort(q.Fields)
	}
	if len(q.Order) == 0 {
		q.Order = nil
	}
	return q
}
