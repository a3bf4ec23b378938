// Package apperr holds sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrNotFound is returned when a post is missing or cannot be parsed.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSlug is returned for identifiers that would leave the content root.
	ErrInvalidSlug = errors.New("invalid slug")
)
