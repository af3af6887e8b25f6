package repositorycache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-cacher/cache"
)

type post struct {
	ID     int
	Title  string
	Status string
}

// eventLog records calls across the cache store and the primary store so
// tests can assert ordering.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) count(prefix string) int {
	n := 0
	for _, e := range l.list() {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

type memStore struct {
	mu       sync.Mutex
	log      *eventLog
	data     map[string][]byte
	ttls     map[string]time.Duration
	getErr   error
	purgeErr error
}

func newMemStore(log *eventLog) *memStore {
	return &memStore{log: log, data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) PurgePrefix(_ context.Context, prefix string) error {
	m.log.add("purge:" + prefix)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.purgeErr != nil {
		return m.purgeErr
	}
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// postStore is an in-memory primary store that records every query it sees.
type postStore struct {
	mu      sync.Mutex
	log     *eventLog
	rows    map[int]post
	queries []Query
	params  ConnectionParams
	reads   int
}

func newPostStore(log *eventLog, rows ...post) *postStore {
	s := &postStore{
		log:    log,
		rows:   map[int]post{},
		params: ConnectionParams{ParamName: "primary", "host": "db.local"},
	}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *postStore) ConnectionParams() ConnectionParams { return s.params }

func (s *postStore) Read(_ context.Context, q Query) ([]post, error) {
	s.log.add("read")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	s.queries = append(s.queries, q)

	var out []post
	for _, r := range s.rows {
		if id, ok := q.Conditions["id"]; ok && id != r.ID {
			continue
		}
		if status, ok := q.Conditions["status"]; ok && status != r.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *postStore) Write(_ context.Context, record post) (post, error) {
	s.log.add("write")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[record.ID] = record
	return record, nil
}

func (s *postStore) Delete(_ context.Context, id string) error {
	s.log.add("delete:" + id)
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range s.rows {
		if id == strconv.Itoa(r.ID) {
			delete(s.rows, k)
		}
	}
	return nil
}

func (s *postStore) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *postStore) seen() []Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Query(nil), s.queries...)
}

type harness struct {
	manager  *cache.Manager
	bindings *Bindings
	behavior *Behavior
	toggle   *Switch
	stores   map[string]*memStore
	log      *eventLog
	primary  *postStore
	output   *bytes.Buffer
}

// newHarness wires a Behavior over fake stores. Two configurations are
// registered: "default" (5m) and "broken", whose backend cannot be built.
func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		stores: map[string]*memStore{},
		log:    &eventLog{},
		output: &bytes.Buffer{},
		toggle: NewSwitch(false),
	}
	h.primary = newPostStore(h.log,
		post{ID: 1, Title: "hello", Status: "published"},
		post{ID: 2, Title: "draft", Status: "draft"},
	)

	h.manager = cache.NewManager(cache.WithStoreFactory(func(name string, _ cache.Config) (cache.Store, error) {
		if name == "broken" {
			return nil, errors.New("dial tcp: connection refused")
		}
		s := newMemStore(h.log)
		h.stores[name] = s
		return s, nil
	}))

	cfg := cache.DefaultConfig()
	cfg.Duration = "5m"
	if err := h.manager.Register(cache.DefaultConfigName, cfg); err != nil {
		t.Fatalf("register default: %v", err)
	}
	if err := h.manager.Register("broken", cache.DefaultConfig()); err != nil {
		t.Fatalf("register broken: %v", err)
	}

	h.bindings = NewBindings(h.manager)
	h.behavior = NewBehavior(h.manager, h.bindings,
		WithSwitch(h.toggle),
		WithLogger(slog.New(slog.NewTextHandler(h.output, nil))),
	)
	return h
}

func (h *harness) repo(t *testing.T, opts ...Option) *CachedRepository[post] {
	t.Helper()
	r, err := New[post](context.Background(), h.behavior, "Post", h.primary, opts...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return r
}
