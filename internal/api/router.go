package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/blog"
	"github.com/starford/folio/internal/markdown"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *blog.Service, renderer *markdown.Renderer, opts Options, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, renderer, opts)

	r := chi.NewRouter()
	r.Use(NoCache)

	// Catalog. Tag listings live under /tags so every /blog/{slug} subtree
	// belongs to a post.
	r.Get("/blog", h.ListPosts)
	r.Get("/tags", h.ListTags)
	r.Get("/tags/{tag}", h.ListPostsByTag)

	// Single post.
	r.Get("/blog/{slug}", h.GetPost)
	r.Get("/blog/{slug}/headings", h.GetHeadings)
	r.Post("/blog/{slug}/navigation", h.Navigation)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
