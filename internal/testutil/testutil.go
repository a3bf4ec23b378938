// Package testutil provides shared test helpers for content directories.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/folio/internal/storage"
)

// TestContent creates a temporary content directory with a storage.Provider.
func TestContent(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteFile writes raw content to name inside dir.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Post describes a post file for WritePost.
type Post struct {
	Title string
	Date  string
	Tags  []string
	Body  string
}

// WritePost writes slug.md with YAML front matter built from p.
func WritePost(t *testing.T, dir, slug string, p Post) {
	t.Helper()
	var b strings.Builder
	b.WriteString("---\n")
	if p.Title != "" {
		b.WriteString("title: " + p.Title + "\n")
	}
	if p.Date != "" {
		b.WriteString("date: " + p.Date + "\n")
	}
	if len(p.Tags) > 0 {
		b.WriteString("tags:\n")
		for _, tag := range p.Tags {
			b.WriteString("  - " + tag + "\n")
		}
	}
	b.WriteString("---\n")
	b.WriteString(p.Body)
	WriteFile(t, dir, slug+".md", b.String())
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
