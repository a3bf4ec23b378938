package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/navigation"
)

// PostListResponse wraps a catalog listing.
type PostListResponse struct {
	Posts []models.Post `json:"posts" validate:"required"`
	Total int           `json:"total" example:"12" validate:"required"`
}

// TagPostsResponse wraps the posts carrying one tag.
type TagPostsResponse struct {
	Tag   string        `json:"tag" example:"frontend" validate:"required"`
	Posts []models.Post `json:"posts" validate:"required"`
	Total int           `json:"total" example:"3" validate:"required"`
}

// TagListResponse wraps the tag aggregation.
type TagListResponse struct {
	Tags []models.TagCount `json:"tags" validate:"required"`
}

// PostDetail is a full post with its rendered body and outline.
type PostDetail struct {
	models.Post
	HTML        string               `json:"html"`
	Headings    []navigation.Heading `json:"headings"`
	ReadingTime int                  `json:"readingTime" example:"4"`
}

// HeadingsResponse is the outline of one post.
type HeadingsResponse struct {
	Slug     string               `json:"slug" example:"hello-world" validate:"required"`
	Headings []navigation.Heading `json:"headings" validate:"required"`
}

// NavigationRequest is a viewport snapshot sent on scroll or resize.
// Positions maps heading ids to the element top relative to the viewport.
type NavigationRequest struct {
	ScrollY        float64            `json:"scrollY" example:"640"`
	DocumentHeight float64            `json:"documentHeight" example:"4200"`
	ViewportHeight float64            `json:"viewportHeight" example:"900"`
	Positions      map[string]float64 `json:"positions"`
}

// Validate validates the viewport snapshot.
func (r *NavigationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DocumentHeight, validation.Min(0.0)),
		validation.Field(&r.ViewportHeight, validation.Min(0.0)),
	)
}

// Viewport converts the request to the navigation input.
func (r *NavigationRequest) Viewport() navigation.Viewport {
	return navigation.Viewport{
		ScrollY:        r.ScrollY,
		DocumentHeight: r.DocumentHeight,
		ViewportHeight: r.ViewportHeight,
		Positions:      r.Positions,
	}
}

// NavigationResponse is the derived navigation state.
type NavigationResponse = navigation.State
