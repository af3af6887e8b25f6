package testsupport

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cacher/repositorycache"
)

func seededStore() *PostStore {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := []Post{
		{ID: "a", Title: "first", Status: "published", AuthorID: 1, CreatedAt: base},
		{ID: "b", Title: "second", Status: "draft", AuthorID: 1, CreatedAt: base.Add(time.Minute)},
		{ID: "c", Title: "third", Status: "published", AuthorID: 2, CreatedAt: base.Add(2 * time.Minute)},
	}
	return NewPostStore(posts...)
}

func TestNewPost(t *testing.T) {
	p := NewPost("hello", "draft")
	if p.ID == "" || p.ID == NewPost("hello", "draft").ID {
		t.Errorf("expected a unique id, got %q", p.ID)
	}
	if p.CreatedAt.IsZero() || p.CreatedAt.Location() != time.UTC {
		t.Errorf("expected a UTC creation time, got %v", p.CreatedAt)
	}
}

func TestPostStore_Read(t *testing.T) {
	store := seededStore()
	ctx := context.Background()

	tests := []struct {
		name  string
		query repositorycache.Query
		want  []string
	}{
		{"all in creation order", repositorycache.Query{}, []string{"a", "b", "c"}},
		{"by status", repositorycache.Query{}.Where("status", "published"), []string{"a", "c"}},
		{"by author and status", repositorycache.Query{}.Where("author_id", 1).Where("status", "published"), []string{"a"}},
		{"unknown column matches nothing", repositorycache.Query{}.Where("slug", "x"), nil},
		{"limit", repositorycache.Query{Limit: 2}, []string{"a", "b"}},
		{"offset", repositorycache.Query{Offset: 1}, []string{"b", "c"}},
		{"offset past end", repositorycache.Query{Offset: 5}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := store.Read(ctx, tt.query)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if rows == nil {
				t.Fatal("Read must return a non-nil slice")
			}
			if len(rows) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, rows)
			}
			for i, id := range tt.want {
				if rows[i].ID != id {
					t.Errorf("row %d: expected %s, got %s", i, id, rows[i].ID)
				}
			}
		})
	}

	if store.Calls("Read") != len(tests) {
		t.Errorf("expected %d reads, got %d", len(tests), store.Calls("Read"))
	}
	if len(store.Queries()) != len(tests) {
		t.Errorf("expected every query to be kept")
	}
}

func TestPostStore_WriteDelete(t *testing.T) {
	store := seededStore()
	ctx := context.Background()

	saved, err := store.Write(ctx, Post{Title: "untitled"})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if saved.ID == "" {
		t.Error("Write must assign an id")
	}

	if err := store.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, saved.ID); !goerrors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
	if store.Calls("Write") != 1 || store.Calls("Delete") != 2 {
		t.Errorf("unexpected call counts write=%d delete=%d", store.Calls("Write"), store.Calls("Delete"))
	}
}

func TestPostStore_FailReads(t *testing.T) {
	store := seededStore()
	boom := errors.New("connection refused")
	store.FailReads(boom)

	if _, err := store.Read(context.Background(), repositorycache.Query{}); !errors.Is(err, boom) {
		t.Errorf("expected injected error, got %v", err)
	}

	store.FailReads(nil)
	if _, err := store.Read(context.Background(), repositorycache.Query{}); err != nil {
		t.Errorf("expected reads to recover, got %v", err)
	}
}

func TestPostStore_ConnectionParams(t *testing.T) {
	store := seededStore()

	params := store.ConnectionParams()
	params[repositorycache.ParamDatasource] = "cache"

	if store.ConnectionParams().String(repositorycache.ParamDatasource) != "" {
		t.Error("ConnectionParams must return a copy")
	}
	if store.ConnectionParams().String(repositorycache.ParamDatabase) != "blog" {
		t.Error("expected the blog database")
	}
}

func TestPostStore_Timeline(t *testing.T) {
	tl := &Timeline{}
	store := seededStore()
	store.WithTimeline(tl)
	ctx := context.Background()

	_, _ = store.Read(ctx, repositorycache.Query{})
	_, _ = store.Write(ctx, Post{ID: "d"})
	_ = store.Delete(ctx, "d")

	want := []string{"primary.Read", "primary.Write", "primary.Delete"}
	got := tl.Events()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	var none *Timeline
	none.Record("ignored")
	if none.Events() != nil {
		t.Error("nil timeline must stay empty")
	}
}
