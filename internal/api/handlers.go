package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/blog"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/markdown"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/navigation"
)

const maxNavigationBody = 1 << 20

// Options tunes the derived fields of post responses.
type Options struct {
	ActiveThreshold float64
	WordsPerMinute  int
}

// Handler holds API route handlers.
type Handler struct {
	svc      *blog.Service
	renderer *markdown.Renderer
	opts     Options
}

// NewHandler creates a new Handler.
func NewHandler(svc *blog.Service, renderer *markdown.Renderer, opts Options) *Handler {
	if opts.ActiveThreshold <= 0 {
		opts.ActiveThreshold = navigation.DefaultActiveThreshold
	}
	if opts.WordsPerMinute <= 0 {
		opts.WordsPerMinute = navigation.DefaultWordsPerMinute
	}
	return &Handler{svc: svc, renderer: renderer, opts: opts}
}

// urlParam returns a decoded chi URL parameter. chi routes on RawPath when
// the request has one, leaving escapes such as %2F in the parameter; otherwise
// the value is already decoded and must not be unescaped twice.
func urlParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value
	}
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return value
	}
	return decoded
}

// ListPosts handles GET /api/blog.
//
//	@Summary		List posts, most recent first
//	@Tags			blog
//	@Produce		json
//	@Param			tag	query		string	false	"Filter by tag (case-insensitive)"
//	@Success		200	{object}	PostListResponse
//	@Router			/blog [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	var (
		posts []models.Post
		err   error
	)
	if tag := r.URL.Query().Get("tag"); tag != "" {
		posts, err = h.svc.ListByTag(r.Context(), tag)
	} else {
		posts, err = h.svc.ListAll(r.Context())
	}
	if err != nil {
		slog.Error("list posts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: posts, Total: len(posts)})
}

// ListPostsByTag handles GET /api/tags/{tag}.
//
//	@Summary		List posts carrying a tag
//	@Tags			blog
//	@Produce		json
//	@Param			tag	path		string	true	"Tag (case-insensitive)"
//	@Success		200	{object}	TagPostsResponse
//	@Router			/tags/{tag} [get]
func (h *Handler) ListPostsByTag(w http.ResponseWriter, r *http.Request) {
	tag := urlParam(r, "tag")
	posts, err := h.svc.ListByTag(r.Context(), tag)
	if err != nil {
		slog.Error("list posts by tag failed", slog.String("tag", tag), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, TagPostsResponse{Tag: tag, Posts: posts, Total: len(posts)})
}

// ListTags handles GET /api/tags.
//
//	@Summary		Tag usage counts
//	@Tags			blog
//	@Produce		json
//	@Success		200	{object}	TagListResponse
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.AggregateTags(r.Context())
	if err != nil {
		slog.Error("aggregate tags failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: tags})
}

// GetPost handles GET /api/blog/{slug}.
//
//	@Summary		Get a post with rendered HTML and outline
//	@Tags			blog
//	@Produce		json
//	@Param			slug			path		string	true	"Post slug"
//	@Param			If-None-Match	header		string	false	"ETag from a previous response"
//	@Success		200				{object}	PostDetail
//	@Success		304
//	@Failure		404				{object}	errResponse
//	@Router			/blog/{slug} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.lookup(w, r)
	if !ok {
		return
	}

	etag := checksum.ETag(post.Checksum)
	w.Header().Set("ETag", etag)
	if !post.ModTime.IsZero() {
		w.Header().Set("Last-Modified", post.ModTime.UTC().Format(http.TimeFormat))
	}
	if etagMatch(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	html, err := h.renderer.Render([]byte(post.Content))
	if err != nil {
		slog.Error("render post failed", slog.String("slug", post.Slug), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, PostDetail{
		Post:        *post,
		HTML:        string(html),
		Headings:    navigation.ExtractHeadings(post.Content),
		ReadingTime: navigation.ReadingTime(post.Content, h.opts.WordsPerMinute),
	})
}

// GetHeadings handles GET /api/blog/{slug}/headings.
//
//	@Summary		Table of contents of a post
//	@Tags			navigation
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	HeadingsResponse
//	@Failure		404		{object}	errResponse
//	@Router			/blog/{slug}/headings [get]
func (h *Handler) GetHeadings(w http.ResponseWriter, r *http.Request) {
	post, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, HeadingsResponse{
		Slug:     post.Slug,
		Headings: navigation.ExtractHeadings(post.Content),
	})
}

// Navigation handles POST /api/blog/{slug}/navigation.
//
//	@Summary		Derive the active heading and reading progress for a viewport
//	@Tags			navigation
//	@Accept			json
//	@Produce		json
//	@Param			slug	path		string				true	"Post slug"
//	@Param			body	body		NavigationRequest	true	"Viewport snapshot"
//	@Success		200		{object}	NavigationResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/blog/{slug}/navigation [post]
func (h *Handler) Navigation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxNavigationBody)
	var req NavigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	post, ok := h.lookup(w, r)
	if !ok {
		return
	}
	tracker := navigation.NewTracker(post.Content, h.opts.ActiveThreshold)
	writeJSON(w, http.StatusOK, tracker.Update(req.Viewport()))
}

// lookup resolves the {slug} parameter, writing the error response itself
// when the post cannot be served.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	slug := urlParam(r, "slug")
	post, err := h.svc.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("Post not found"))
		} else {
			slog.Error("get post failed", slog.String("slug", slug), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return nil, false
	}
	return post, true
}

// etagMatch implements the weak comparison of If-None-Match.
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
