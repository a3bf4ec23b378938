package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// DefaultExtensions is used when no extensions are configured.
var DefaultExtensions = []string{".md"}

// FS implements Provider backed by the local file system.
//
// The root does not need to exist: an absent directory is an empty catalog.
type FS struct {
	root string // absolute path to content directory
	exts []string
}

// NewFS creates a new FS provider rooted at the given directory. Only files
// whose extension is in exts are treated as posts.
func NewFS(root string, exts ...string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return &FS{root: abs, exts: exts}, nil
}

// Root returns the absolute content directory.
func (f *FS) Root() string {
	return f.root
}

// SlugFor returns the post slug for a file name when its extension is one of
// exts.
func SlugFor(name string, exts []string) (string, bool) {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return strings.TrimSuffix(name, ext), true
		}
	}
	return "", false
}

// List scans the content root (non-recursive). When two files map to the
// same slug the later one in name order replaces the earlier entry.
func (f *FS) List() ([]models.PostFile, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []models.PostFile
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		slug, ok := SlugFor(e.Name(), f.exts)
		if !ok {
			continue
		}
		pf := models.PostFile{Slug: slug, Name: e.Name()}
		if info, err := e.Info(); err == nil {
			pf.ModTime = info.ModTime()
		}
		if i, dup := seen[slug]; dup {
			out[i] = pf
			continue
		}
		seen[slug] = len(out)
		out = append(out, pf)
	}
	return out, nil
}

// Open resolves slug against the configured extensions. Candidates are tried
// in reverse name order so lookups agree with List on duplicate slugs.
func (f *FS) Open(slug string) (models.PostFile, error) {
	if err := validSlug(slug); err != nil {
		return models.PostFile{}, err
	}
	names := make([]string, 0, len(f.exts))
	for _, ext := range f.exts {
		names = append(names, slug+ext)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	for _, name := range names {
		info, err := os.Stat(filepath.Join(f.root, name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return models.PostFile{}, fmt.Errorf("storage: stat %s: %w", name, err)
		}
		if info.IsDir() {
			continue
		}
		return models.PostFile{Slug: slug, Name: name, ModTime: info.ModTime()}, nil
	}
	return models.PostFile{}, fmt.Errorf("storage: open %s: %w", slug, os.ErrNotExist)
}

// Read returns the raw bytes of a post file.
func (f *FS) Read(pf models.PostFile) ([]byte, error) {
	abs, err := f.safePath(pf.Name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", pf.Name, err)
	}
	return data, nil
}

// safePath resolves a file name against the content root and rejects any
// result that escapes it.
func (f *FS) safePath(name string) (string, error) {
	cleaned := filepath.Clean(name)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s: %w", name, apperr.ErrInvalidSlug)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes content root: %s: %w", name, apperr.ErrInvalidSlug)
	}
	return abs, nil
}

// validSlug accepts plain file stems only.
func validSlug(slug string) error {
	if slug == "" || slug == "." || slug == ".." ||
		strings.ContainsAny(slug, `/\`) || strings.ContainsRune(slug, 0) {
		return fmt.Errorf("storage: %q: %w", slug, apperr.ErrInvalidSlug)
	}
	return nil
}
