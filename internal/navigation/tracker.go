package navigation

// Tracker keeps the outline of one body and turns viewport snapshots into
// navigation state. It is not safe for concurrent use; callers drive it from
// a single event stream.
type Tracker struct {
	outline   []Heading
	threshold float64
}

// NewTracker extracts the outline of body. A non-positive threshold selects
// DefaultActiveThreshold.
func NewTracker(body string, threshold float64) *Tracker {
	if threshold <= 0 {
		threshold = DefaultActiveThreshold
	}
	return &Tracker{outline: ExtractHeadings(body), threshold: threshold}
}

// Reset recomputes the outline for a new body.
func (t *Tracker) Reset(body string) {
	t.outline = ExtractHeadings(body)
}

// Outline returns the current outline.
func (t *Tracker) Outline() []Heading {
	return t.outline
}

// Update computes the state for vp.
func (t *Tracker) Update(vp Viewport) State {
	return ComputeState(t.outline, vp, t.threshold)
}
