package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// mapStore is an in-memory Store that records calls and can fail on demand.
type mapStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	calls   []string
	getErr  error
	setErr  error
	closed  bool
	purgeFn func(prefix string) error
}

func newMapStore() *mapStore {
	return &mapStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mapStore) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *mapStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Get:" + key)
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Set:" + key)
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mapStore) PurgePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("PurgePrefix:" + prefix)
	if m.purgeFn != nil {
		if err := m.purgeFn(prefix); err != nil {
			return err
		}
	}
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *mapStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type row struct {
	ID    int
	Title string
}

func TestGetOrFetch_MissThenHit(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	stats := &StatsRecorder{}
	fetches := 0

	fetch := func(ctx context.Context) ([]row, error) {
		fetches++
		return []row{{ID: 1, Title: "hello"}}, nil
	}
	opts := EntryOptions{TTL: time.Hour, Stats: stats}

	first, err := GetOrFetch(ctx, store, "posts::find::k", opts, fetch)
	if err != nil {
		t.Fatalf("first GetOrFetch failed: %v", err)
	}
	second, err := GetOrFetch(ctx, store, "posts::find::k", opts, fetch)
	if err != nil {
		t.Fatalf("second GetOrFetch failed: %v", err)
	}

	if fetches != 1 {
		t.Errorf("expected fetch to run once, ran %d times", fetches)
	}
	if len(second) != 1 || second[0] != first[0] {
		t.Errorf("expected cached result %v, got %v", first, second)
	}
	if store.ttls["posts::find::k"] != time.Hour {
		t.Errorf("expected TTL to be passed through, got %v", store.ttls["posts::find::k"])
	}

	got := stats.Snapshot()
	if got.Hits != 1 || got.Misses != 1 || got.Errors != 0 {
		t.Errorf("unexpected stats %+v", got)
	}
}

func TestGetOrFetch_Compressed(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	want := []row{{ID: 1, Title: strings.Repeat("a", 512)}}

	_, err := GetOrFetch(ctx, store, "k", EntryOptions{Compress: true}, func(context.Context) ([]row, error) {
		return want, nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}

	if store.data["k"][0] != payloadGzip {
		t.Fatalf("expected gzip header, got 0x%02x", store.data["k"][0])
	}

	got, err := GetOrFetch(ctx, store, "k", EntryOptions{}, func(context.Context) ([]row, error) {
		t.Fatal("fetch must not run on a hit")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch on hit failed: %v", err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("expected decompressed %v, got %v", want, got)
	}
}

func TestGetOrFetch_FetchErrorNotCached(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	boom := errors.New("db down")

	_, err := GetOrFetch(ctx, store, "k", EntryOptions{}, func(context.Context) ([]row, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error to propagate, got %v", err)
	}
	if IsBackendError(err) {
		t.Error("fetch errors must not be classified as backend errors")
	}
	if _, ok := store.data["k"]; ok {
		t.Error("failed fetch must not populate the cache")
	}
}

func TestGetOrFetch_BackendFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")

	tests := []struct {
		name     string
		setup    func(*mapStore)
		wantCode string
	}{
		{
			name:     "get fails",
			setup:    func(s *mapStore) { s.getErr = boom },
			wantCode: TextCodeGet,
		},
		{
			name:     "set fails",
			setup:    func(s *mapStore) { s.setErr = boom },
			wantCode: TextCodeSet,
		},
		{
			name:     "corrupt payload",
			setup:    func(s *mapStore) { s.data["k"] = []byte{0x7f, 0x01} },
			wantCode: TextCodeDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMapStore()
			tt.setup(store)
			stats := &StatsRecorder{}

			_, err := GetOrFetch(ctx, store, "k", EntryOptions{Stats: stats}, func(context.Context) ([]row, error) {
				return []row{{ID: 1}}, nil
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsBackendError(err) {
				t.Errorf("expected backend error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantCode) {
				t.Errorf("expected text code %s in %q", tt.wantCode, err.Error())
			}
			if stats.Snapshot().Errors != 1 {
				t.Errorf("expected one recorded error, got %d", stats.Snapshot().Errors)
			}
		})
	}
}

func TestStatsRecorder_Nil(t *testing.T) {
	var r *StatsRecorder
	r.Hit()
	r.Miss()
	r.Error()
	if r.Snapshot() != (Stats{}) {
		t.Error("nil recorder must report zero stats")
	}
}
