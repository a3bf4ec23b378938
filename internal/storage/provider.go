// Package storage defines the read-only content directory abstraction.
package storage

import "github.com/starford/folio/internal/models"

// Provider is the interface for content file access.
type Provider interface {
	// List returns every post file directly under the content root, in file
	// name order. A missing root yields an error wrapping os.ErrNotExist.
	List() ([]models.PostFile, error)
	// Open resolves slug to its post file.
	Open(slug string) (models.PostFile, error)
	// Read returns the raw bytes of a post file.
	Read(f models.PostFile) ([]byte, error)
	// Root returns the absolute content directory.
	Root() string
}
