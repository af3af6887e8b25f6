package testsupport

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-cacher/cache"
)

// Timeline records events from several fakes in the order they happen.
// A nil Timeline ignores every call.
type Timeline struct {
	mu     sync.Mutex
	events []string
}

func (t *Timeline) Record(event string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *Timeline) Events() []string {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.events...)
}

// RecordingStore wraps a cache.Store, counting calls and optionally failing
// Get or PurgePrefix.
type RecordingStore struct {
	inner    cache.Store
	timeline *Timeline

	mu       sync.Mutex
	calls    map[string]int
	purges   []string
	getErr   error
	purgeErr error
}

func NewRecordingStore(inner cache.Store, tl *Timeline) *RecordingStore {
	return &RecordingStore{inner: inner, timeline: tl, calls: make(map[string]int)}
}

// FailGet makes Get return err until called with nil.
func (r *RecordingStore) FailGet(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getErr = err
}

// FailPurge makes PurgePrefix return err until called with nil.
func (r *RecordingStore) FailPurge(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeErr = err
}

func (r *RecordingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := r.before("Get"); err != nil {
		return nil, false, err
	}
	return r.inner.Get(ctx, key)
}

func (r *RecordingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_ = r.before("Set")
	return r.inner.Set(ctx, key, value, ttl)
}

func (r *RecordingStore) PurgePrefix(ctx context.Context, prefix string) error {
	r.mu.Lock()
	r.purges = append(r.purges, prefix)
	r.mu.Unlock()

	if err := r.before("PurgePrefix"); err != nil {
		return err
	}
	return r.inner.PurgePrefix(ctx, prefix)
}

func (r *RecordingStore) Close() error {
	return r.inner.Close()
}

// Calls returns how many times op (Get, Set, PurgePrefix) ran.
func (r *RecordingStore) Calls(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

// Purges returns the prefixes passed to PurgePrefix.
func (r *RecordingStore) Purges() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.purges...)
}

func (r *RecordingStore) before(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[op]++
	r.timeline.Record("cache." + op)

	switch op {
	case "Get":
		return r.getErr
	case "PurgePrefix":
		return r.purgeErr
	}
	return nil
}
