// Package chapters shifts, snaps, normalizes, and re-emits Matroska
// chapter XML (spec.md §4.8). XML marshaling is tagged structs over
// encoding/xml, no third-party XML library.
package chapters

// Chapter is one chapter atom after parsing (spec.md §4.8 step 1).
type Chapter struct {
	UID      string
	StartNs  int64
	EndNs    *int64
	Names    []NameEntry
	tooFar   bool // keyframe snap requested but no keyframe within threshold.
}

// NameEntry is one (language, display text) pair a chapter may carry.
type NameEntry struct {
	Lang string
	Text string
}

// TooFar reports whether keyframe snapping was attempted for this chapter
// and found no candidate within the configured threshold.
func (c Chapter) TooFar() bool { return c.tooFar }
