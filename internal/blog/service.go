// Package blog is the content index: it turns the content directory into an
// ordered post catalog and answers lookups against it.
//
// Every call re-scans the directory. There is no cache to invalidate.
package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
	"github.com/starford/folio/internal/storage"
)

// Service answers catalog queries over a storage.Provider.
type Service struct {
	store  storage.Provider
	logger *slog.Logger
}

// NewService creates a new content index service.
func NewService(store storage.Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ListAll returns metadata for every parsable post, most recent date first.
// Posts with equal dates keep directory order. A missing content directory is
// an empty catalog; files that cannot be read or parsed are logged and
// skipped.
func (s *Service) ListAll(ctx context.Context) ([]models.Post, error) {
	files, err := s.store.List()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("content directory missing", slog.String("root", s.store.Root()))
			return []models.Post{}, nil
		}
		return nil, fmt.Errorf("blog: list: %w", err)
	}

	posts := make([]models.Post, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := s.load(f)
		if err != nil {
			s.logger.Warn("skipping post",
				slog.String("path", f.Name),
				slog.String("error", err.Error()))
			continue
		}
		p.Content = ""
		posts = append(posts, p)
	}

	slices.SortStableFunc(posts, func(a, b models.Post) int {
		return strings.Compare(b.Date, a.Date)
	})
	return posts, nil
}

// GetBySlug returns the full post, body included. The slug is matched exactly.
// Missing or unparsable posts yield apperr.ErrNotFound.
func (s *Service) GetBySlug(_ context.Context, slug string) (*models.Post, error) {
	f, err := s.store.Open(slug)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, apperr.ErrInvalidSlug) {
			s.logger.Warn("open post failed", slog.String("slug", slug), slog.String("error", err.Error()))
		}
		return nil, apperr.ErrNotFound
	}
	p, err := s.load(f)
	if err != nil {
		s.logger.Warn("load post failed", slog.String("path", f.Name), slog.String("error", err.Error()))
		return nil, apperr.ErrNotFound
	}
	return &p, nil
}

// ListByTag returns the posts carrying tag, compared case-insensitively, in
// ListAll order.
func (s *Service) ListByTag(ctx context.Context, tag string) ([]models.Post, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Post, 0, len(all))
	for _, p := range all {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out, nil
}

// AggregateTags counts posts per lower-cased tag. The result is ordered by
// count descending; equal counts keep first-seen order.
func (s *Service) AggregateTags(ctx context.Context) ([]models.TagCount, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return countTags(all), nil
}

func countTags(posts []models.Post) []models.TagCount {
	out := []models.TagCount{}
	pos := make(map[string]int)
	for _, p := range posts {
		counted := make(map[string]struct{}, len(p.Tags))
		for _, t := range p.Tags {
			key := strings.ToLower(t)
			if _, dup := counted[key]; dup {
				continue
			}
			counted[key] = struct{}{}
			if i, ok := pos[key]; ok {
				out[i].Count++
				continue
			}
			pos[key] = len(out)
			out = append(out, models.TagCount{Tag: key, Count: 1})
		}
	}
	slices.SortStableFunc(out, func(a, b models.TagCount) int {
		return b.Count - a.Count
	})
	return out
}

// load reads and parses a single post file.
func (s *Service) load(f models.PostFile) (models.Post, error) {
	data, err := s.store.Read(f)
	if err != nil {
		return models.Post{}, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return models.Post{}, err
	}
	return models.Post{
		Slug:        f.Slug,
		Title:       res.Meta.Title,
		Description: res.Meta.Description,
		Author:      res.Meta.Author,
		Date:        res.Meta.Date,
		Tags:        res.Meta.Tags,
		Image:       res.Meta.Image,
		Content:     res.Body,
		Checksum:    checksum.Sum(data),
		ModTime:     f.ModTime,
	}, nil
}
