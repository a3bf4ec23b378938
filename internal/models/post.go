// Package models defines the domain types for folio.
package models

import (
	"strings"
	"time"
)

// Post is one markdown document in the content directory.
//
// Content is only populated by single-post lookups; catalog listings carry
// metadata only. Empty metadata fields mean the front matter did not set them.
type Post struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Author      string   `json:"author,omitempty"`
	Date        string   `json:"date,omitempty"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image,omitempty"`
	Content     string   `json:"content,omitempty"`

	Checksum string    `json:"-"`
	ModTime  time.Time `json:"-"`
}

// HasTag reports whether the post carries tag, ignoring case.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// TagCount is one entry of the tag aggregation.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// PostFile locates a post on disk.
type PostFile struct {
	Slug    string
	Name    string // file name relative to the content root
	ModTime time.Time
}
