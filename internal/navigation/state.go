package navigation

import (
	"math"
	"strings"
)

// DefaultActiveThreshold is the distance in pixels from the viewport top a
// heading has to cross before it becomes the active one.
const DefaultActiveThreshold = 100.0

// DefaultWordsPerMinute is the reading speed behind ReadingTime.
const DefaultWordsPerMinute = 200

// Viewport is the layout snapshot reported by the presentation layer on a
// scroll or resize signal. Positions maps heading anchors to the current top
// of their element relative to the viewport.
type Viewport struct {
	ScrollY        float64
	DocumentHeight float64
	ViewportHeight float64
	Positions      map[string]float64
}

// State is the derived navigation state for one viewport snapshot.
type State struct {
	ActiveID        string  `json:"activeId,omitempty"`
	ReadingProgress float64 `json:"readingProgress"`
}

// ComputeState derives the active heading and reading progress. The active
// heading is the last outline entry whose element top is above threshold, so
// a heading stays active until the next one is scrolled past.
func ComputeState(outline []Heading, vp Viewport, threshold float64) State {
	st := State{ReadingProgress: ReadingProgress(vp.ScrollY, vp.DocumentHeight, vp.ViewportHeight)}
	for i := len(outline) - 1; i >= 0; i-- {
		top, ok := vp.Positions[outline[i].ID]
		if !ok {
			continue
		}
		if top < threshold {
			st.ActiveID = outline[i].ID
			break
		}
	}
	return st
}

// ReadingProgress returns how far through the scrollable range the reader is,
// as a percentage in [0, 100]. A page that cannot scroll is at 0.
func ReadingProgress(scrollY, documentHeight, viewportHeight float64) float64 {
	scrollable := documentHeight - viewportHeight
	if scrollable <= 0 {
		return 0
	}
	p := scrollY / scrollable * 100
	return math.Min(math.Max(p, 0), 100)
}

// ReadingTime estimates minutes to read body at wpm words per minute,
// rounded up. An empty body takes 0 minutes.
func ReadingTime(body string, wpm int) int {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	words := len(strings.Fields(body))
	if words == 0 {
		return 0
	}
	return (words + wpm - 1) / wpm
}
