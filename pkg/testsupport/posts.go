package testsupport

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cacher/repositorycache"
)

// Post is the entity used across integration tests.
type Post struct {
	ID        string    `bun:"id,pk"`
	Title     string    `bun:"title"`
	Status    string    `bun:"status"`
	AuthorID  int       `bun:"author_id"`
	CreatedAt time.Time `bun:"created_at"`
}

// NewPost returns a Post with a fresh id.
func NewPost(title, status string) Post {
	return Post{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    status,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

var _ repositorycache.PrimaryStore[Post] = (*PostStore)(nil)

// PostStore is an in-memory primary store for Post. It counts calls, keeps
// every query it reads and can be told to fail reads.
type PostStore struct {
	mu       sync.Mutex
	rows     map[string]Post
	params   repositorycache.ConnectionParams
	calls    map[string]int
	queries  []repositorycache.Query
	readErr  error
	timeline *Timeline
}

func NewPostStore(posts ...Post) *PostStore {
	s := &PostStore{
		rows:   make(map[string]Post),
		params: repositorycache.ConnectionParams{repositorycache.ParamName: "posts-primary", repositorycache.ParamDatabase: "blog"},
		calls:  make(map[string]int),
	}
	for _, p := range posts {
		s.rows[p.ID] = p
	}
	return s
}

// WithTimeline records Read, Write and Delete on tl.
func (s *PostStore) WithTimeline(tl *Timeline) *PostStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline = tl
	return s
}

// FailReads makes every Read return err until called with nil.
func (s *PostStore) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

func (s *PostStore) ConnectionParams() repositorycache.ConnectionParams {
	return s.params.Clone()
}

// Read returns the posts matching q. Conditions on id, title, status and
// author_id are honored; results are ordered by creation time.
func (s *PostStore) Read(_ context.Context, q repositorycache.Query) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("Read")
	s.queries = append(s.queries, q)
	if s.readErr != nil {
		return nil, s.readErr
	}

	out := make([]Post, 0, len(s.rows))
	for _, p := range s.rows {
		if matches(p, q.Conditions) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []Post{}, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *PostStore) Write(_ context.Context, p Post) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("Write")
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.rows[p.ID] = p
	return p, nil
}

func (s *PostStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track("Delete")
	if _, ok := s.rows[id]; !ok {
		return goerrors.New("post not found", goerrors.CategoryNotFound).
			WithMetadata(map[string]any{"id": id})
	}
	delete(s.rows, id)
	return nil
}

// Calls returns how many times method (Read, Write, Delete) ran.
func (s *PostStore) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// Queries returns every query Read received.
func (s *PostStore) Queries() []repositorycache.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repositorycache.Query(nil), s.queries...)
}

func (s *PostStore) track(method string) {
	s.calls[method]++
	s.timeline.Record("primary." + method)
}

func matches(p Post, conds map[string]any) bool {
	for k, v := range conds {
		var ok bool
		switch k {
		case "id":
			ok = v == p.ID
		case "title":
			ok = v == p.Title
		case "status":
			ok = v == p.Status
		case "author_id":
			ok = v == p.AuthorID
		}
		if !ok {
			return false
		}
	}
	return true
}
