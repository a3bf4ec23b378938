// Package parser splits post files into typed front matter and a markdown body.
package parser

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/spf13/cast"
)

// Metadata is the typed front matter of a post. Fields the author did not
// set stay empty; Tags is never nil.
//
// Date is kept as authored. Ordering compares it as a string, so authors
// must write ISO 8601 (YYYY-MM-DD...) dates.
type Metadata struct {
	Title       string
	Description string
	Author      string
	Date        string
	Tags        []string
	Image       string
}

// Result holds the output of parsing a post file.
type Result struct {
	Meta Metadata
	Body string
	Raw  map[string]any
}

var utf8BOM = []byte("\ufeff")

// Parse extracts front matter and body from raw file bytes. A leading UTF-8
// byte order mark is ignored. A file without front matter is all body.
// Malformed front matter is an error.
func Parse(data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	raw := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("parser: front matter: %w", err)
	}
	return &Result{
		Meta: metadataFrom(raw),
		Body: strings.TrimLeft(string(body), "\r\n"),
		Raw:  raw,
	}, nil
}

func metadataFrom(raw map[string]any) Metadata {
	return Metadata{
		Title:       scalar(raw["title"]),
		Description: scalar(raw["description"]),
		Author:      scalar(raw["author"]),
		Date:        scalar(raw["date"]),
		Tags:        tagList(raw["tags"]),
		Image:       scalar(raw["image"]),
	}
}

// scalar coerces a front matter value to a string. Lists, maps and other
// non-scalar values fall back to empty.
func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return formatDate(t)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// formatDate renders decoder-produced timestamps (TOML dates, explicit
// !!timestamp tags) back into ISO 8601.
func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 && t.Location() == time.UTC {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

// tagList keeps authored order, trims items and drops blanks and exact
// duplicates. Anything other than a list yields an empty set.
func tagList(v any) []string {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	default:
		return []string{}
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, isList := item.([]any); isList {
			continue
		}
		s, err := cast.ToStringE(item)
		if err != nil {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
