// Package navigation derives in-page navigation from a post body: the heading
// outline with its anchors, the active heading for a scroll position and the
// reading progress.
package navigation

import (
	"regexp"
	"strings"
)

// anchorSpace is whitespace as browsers' regular expressions see it: ASCII
// space characters plus Unicode space separators such as NBSP.
const anchorSpace = `\s\p{Zs}\x{FEFF}\x{2028}\x{2029}`

var (
	headingRe    = regexp.MustCompile(`^(#{1,3})\s+(.+)$`)
	nonAnchorRe  = regexp.MustCompile(`[^\w` + anchorSpace + `-]`)
	whitespaceRe = regexp.MustCompile(`[` + anchorSpace + `]+`)
)

// Heading is one entry of a post outline.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Slugify turns heading text into an anchor: lower-cased, everything except
// ASCII word characters, whitespace and hyphens removed, whitespace runs
// (NBSP and other Unicode spaces included) collapsed to one hyphen. Every anchor in the repo must come from here.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = nonAnchorRe.ReplaceAllString(s, "")
	return whitespaceRe.ReplaceAllString(s, "-")
}

// ExtractHeadings returns the level 1-3 ATX headings of body in document
// order. Headings inside fenced code blocks are skipped. Repeated heading
// text yields repeated anchors.
func ExtractHeadings(body string) []Heading {
	out := []Heading{}
	var fence string

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if marker, info := fenceMarker(line); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case closesFence(fence, marker, info):
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}

		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := trimClosingSequence(strings.TrimSpace(m[2]))
		if text == "" {
			continue
		}
		out = append(out, Heading{
			ID:    Slugify(text),
			Text:  text,
			Level: len(m[1]),
		})
	}
	return out
}

// fenceMarker splits a fence line into its run of ``` or ~~~ and the info
// string after it. marker is "" when line is not a fence.
func fenceMarker(line string) (marker, info string) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return "", ""
	}
	for _, ch := range []byte{'`', '~'} {
		n := 0
		for n < len(trimmed) && trimmed[n] == ch {
			n++
		}
		if n >= 3 {
			return trimmed[:n], strings.TrimSpace(trimmed[n:])
		}
	}
	return "", ""
}

// closesFence reports whether a fence line ends the block opened by open. A
// closing fence uses the same character, is at least as long, and carries no
// info string.
func closesFence(open, marker, info string) bool {
	return info == "" && marker[0] == open[0] && len(marker) >= len(open)
}

// trimClosingSequence drops an optional closing run of '#' ("## Title ##"),
// which markdown renderers strip from the heading content.
func trimClosingSequence(text string) string {
	stripped := strings.TrimRight(text, "#")
	if stripped == text {
		return text
	}
	if stripped == "" {
		return ""
	}
	if last := stripped[len(stripped)-1]; last != ' ' && last != '\t' {
		return text
	}
	return strings.TrimSpace(stripped)
}
