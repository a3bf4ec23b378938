package blog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/testutil"
)

func testService(t *testing.T) (string, *Service) {
	t.Helper()
	dir, store := testutil.TestContent(t)
	return dir, NewService(store, testutil.DiscardLogger())
}

func slugs(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}

func TestListAll_SortedByDateDescending(t *testing.T) {
	dir, svc := testService(t)
	testutil.WritePost(t, dir, "old", testutil.Post{Title: "Old", Date: "2023-01-10"})
	testutil.WritePost(t, dir, "new", testutil.Post{Title: "New", Date: "2024-06-01"})
	testutil.WritePost(t, dir, "mid", testutil.Post{Title: "Mid", Date: "2023-11-30"})

	posts, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if got, want := slugs(posts), []string{"new", "mid", "old"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	for i := 1; i < len(posts); i++ {
		if posts[i-1].Date < posts[i].Date {
			t.Errorf("posts[%d].Date %q < posts[%d].Date %q", i-1, posts[i-1].Date, i, posts[i].Date)
		}
	}
	for _, p := range posts {
		if p.Content != "" {
			t.Errorf("listing for %s carries content", p.Slug)
		}
	}
}

func TestListAll_EqualDatesKeepDirectoryOrder(t *testing.T) {
	dir, svc := testService(t)
	for _, s := range []string{"c", "a", "b"} {
		testutil.WritePost(t, dir, s, testutil.Post{Date: "2024-01-01"})
	}
	for i := 0; i < 3; i++ {
		posts, err := svc.ListAll(context.Background())
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		if got, want := slugs(posts), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestListAll_MissingDirectory(t *testing.T) {
	store, err := storage.NewFS(filepath.Join(t.TempDir(), "blog"))
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(store, testutil.DiscardLogger())

	posts, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("posts = %#v, want empty", posts)
	}
	tags, err := svc.AggregateTags(context.Background())
	if err != nil {
		t.Fatalf("AggregateTags: %v", err)
	}
	if tags == nil || len(tags) != 0 {
		t.Errorf("tags = %#v, want empty", tags)
	}
}

func TestListAll_SkipsUnparsableAndLogs(t *testing.T) {
	dir, store := testutil.TestContent(t)
	var logs bytes.Buffer
	svc := NewService(store, slog.New(slog.NewJSONHandler(&logs, nil)))

	testutil.WritePost(t, dir, "good", testutil.Post{Title: "Good", Date: "2024-01-01"})
	testutil.WriteFile(t, dir, "broken.md", "---\ntitle: [unclosed\n---\nbody\n")

	posts, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if got := slugs(posts); !reflect.DeepEqual(got, []string{"good"}) {
		t.Errorf("slugs = %v, want [good]", got)
	}
	if !strings.Contains(logs.String(), "broken.md") {
		t.Errorf("skip not logged: %s", logs.String())
	}
}

func TestGetBySlug_MatchesListing(t *testing.T) {
	dir, svc := testService(t)
	testutil.WritePost(t, dir, "hello", testutil.Post{
		Title: "Hello",
		Date:  "2024-02-02",
		Tags:  []string{"Go", "Web"},
		Body:  "# Hello\n\nBody.\n",
	})
	testutil.WritePost(t, dir, "other", testutil.Post{Title: "Other", Date: "2024-01-01"})

	posts, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	for _, listed := range posts {
		got, err := svc.GetBySlug(context.Background(), listed.Slug)
		if err != nil {
			t.Fatalf("GetBySlug(%q): %v", listed.Slug, err)
		}
		meta := *got
		meta.Content = ""
		if !reflect.DeepEqual(meta, listed) {
			t.Errorf("GetBySlug(%q) metadata = %+v, listing = %+v", listed.Slug, meta, listed)
		}
	}

	p, _ := svc.GetBySlug(context.Background(), "hello")
	if p.Content != "# Hello\n\nBody.\n" {
		t.Errorf("content = %q", p.Content)
	}
	if p.Checksum == "" {
		t.Error("checksum not set")
	}
}

func TestGetBySlug_NotFound(t *testing.T) {
	dir, svc := testService(t)
	testutil.WriteFile(t, dir, "broken.md", "---\ntitle: [unclosed\n---\n")

	for _, slug := range []string{"nonexistent-slug", "broken", "../etc/passwd", ""} {
		if _, err := svc.GetBySlug(context.Background(), slug); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("GetBySlug(%q) err = %v, want ErrNotFound", slug, err)
		}
	}
}

func TestGetBySlug_ExactMatch(t *testing.T) {
	dir, svc := testService(t)
	testutil.WritePost(t, dir, "hello", testutil.Post{Title: "Hello"})

	if _, err := svc.GetBySlug(context.Background(), "hello"); err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if _, err := svc.GetBySlug(context.Background(), "hello.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("slug with extension should not resolve, err = %v", err)
	}
}

func TestListByTag_CaseInsensitive(t *testing.T) {
	dir, svc := testService(t)
	testutil.WritePost(t, dir, "fe", testutil.Post{Date: "2024-03-01", Tags: []string{"Frontend"}})
	testutil.WritePost(t, dir, "be", testutil.Post{Date: "2024-02-01", Tags: []string{"Backend"}})
	testutil.WritePost(t, dir, "both", testutil.Post{Date: "2024-01-01", Tags: []string{"backend", "FRONTEND"}})

	for _, tag := range []string{"frontend", "FRONTEND", "Frontend"} {
		posts, err := svc.ListByTag(context.Background(), tag)
		if err != nil {
			t.Fatalf("ListByTag: %v", err)
		}
		if got, want := slugs(posts), []string{"fe", "both"}; !reflect.DeepEqual(got, want) {
			t.Errorf("ListByTag(%q) = %v, want %v", tag, got, want)
		}
	}

	posts, err := svc.ListByTag(context.Background(), "devops")
	if err != nil {
		t.Fatalf("ListByTag: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("unknown tag = %#v, want empty", posts)
	}
}

func TestAggregateTags(t *testing.T) {
	dir, svc := testService(t)
	testutil.WritePost(t, dir, "p1", testutil.Post{Date: "2024-03-01", Tags: []string{"A", "B"}})
	testutil.WritePost(t, dir, "p2", testutil.Post{Date: "2024-02-01", Tags: []string{"a"}})
	testutil.WritePost(t, dir, "p3", testutil.Post{Date: "2024-01-01", Tags: []string{"B", "C"}})

	tags, err := svc.AggregateTags(context.Background())
	if err != nil {
		t.Fatalf("AggregateTags: %v", err)
	}
	want := []models.TagCount{{Tag: "a", Count: 2}, {Tag: "b", Count: 2}, {Tag: "c", Count: 1}}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("tags = %+v, want %+v", tags, want)
	}
}

func TestCountTags_MixedCaseOnOnePostCountsOnce(t *testing.T) {
	got := countTags([]models.Post{
		{Slug: "x", Tags: []string{"Go", "go"}},
		{Slug: "y", Tags: []string{"Rust"}},
		{Slug: "z", Tags: []string{"rust"}},
	})
	want := []models.TagCount{{Tag: "rust", Count: 2}, {Tag: "go", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("countTags = %+v, want %+v", got, want)
	}
}
