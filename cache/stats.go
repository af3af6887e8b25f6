package cache

import "sync/atomic"

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits   uint64
	Misses uint64
	Errors uint64
}

// StatsRecorder accumulates counters. A nil recorder ignores every call.
type StatsRecorder struct {
	hits   atomic.Uint64
	misses atomic.Uint64
	errors atomic.Uint64
}

// Hit counts a cache hit.
func (r *StatsRecorder) Hit() {
	if r != nil {
		r.hits.Add(1)
	}
}

// Miss counts a cache miss.
func (r *StatsRecorder) Miss() {
	if r != nil {
		r.misses.Add(1)
	}
}

// Error counts a backend failure.
func (r *StatsRecorder) Error() {
	if r != nil {
		r.errors.Add(1)
	}
}

// Snapshot returns the current counter values.
func (r *StatsRecorder) Snapshot() Stats {
	if r == nil {
		return Stats{}
	}
	return Stats{
		Hits:   r.hits.Load(),
		Misses: r.misses.Load(),
		Errors: r.errors.Load(),
	}
}
