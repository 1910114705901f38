package probe

import (
	"github.com/backmassage/syncmux/internal/jobspec"
	"github.com/backmassage/syncmux/internal/numeric"
)

// TrackInfo holds the parsed properties of a single container track, as
// reported by the multiplexer's JSON probe (spec.md §4.2).
type TrackInfo struct {
	ID       int
	Type     jobspec.TrackType
	CodecID  string
	Language string
	Name     string

	// Audio/video.
	Channels   int
	SampleRate int
	Width      int
	Height     int

	Default bool
	Forced  bool
	Enabled bool

	// MinimumTimestampNs is the container's raw first-timestamp value;
	// zero for subtitle tracks regardless of what the probe reports
	// (spec.md §4.2).
	MinimumTimestampNs int64

	// DefaultDurationNs is mkvmerge's per-frame duration for video tracks
	// (nanoseconds), the source FPS() is derived from. Zero when the
	// probe didn't report one (audio/subtitle tracks, or a container that
	// omits it).
	DefaultDurationNs int64
}

// FPS derives the track's frame rate from DefaultDurationNs. Returns 0 if
// unknown — callers (drift's PAL check, subtitle frame-snap) must treat
// that as "no FPS information available".
func (t TrackInfo) FPS() float64 {
	if t.DefaultDurationNs <= 0 {
		return 0
	}
	return 1_000_000_000.0 / float64(t.DefaultDurationNs)
}

// ContainerDelayMs applies spec.md §4.2's contract: banker's rounding of
// minimum_timestamp_ns / 1e6 for audio/video, always zero for subtitles.
func (t TrackInfo) ContainerDelayMs() int64 {
	if t.Type == jobspec.TrackSubtitle {
		return 0
	}
	return numeric.RoundHalfToEven(float64(t.MinimumTimestampNs) / 1_000_000)
}

// Result is the fully parsed output of a single mkvmerge -J call.
type Result struct {
	Tracks        []TrackInfo
	Attachments   []Attachment
	ChaptersCount int
	DurationNs    int64
}

// Attachment holds a probed attachment's id, name, and MIME type.
type Attachment struct {
	ID          int
	Name        string
	ContentType string
}

// ByID returns the track with the given id, or false if absent.
func (r *Result) ByID(id int) (TrackInfo, bool) {
	for _, t := range r.Tracks {
		if t.ID == id {
			return t, true
		}
	}
	return TrackInfo{}, false
}

// PrimaryVideo returns the first video track, or false if the file has none.
func (r *Result) PrimaryVideo() (TrackInfo, bool) {
	for _, t := range r.Tracks {
		if t.Type == jobspec.TrackVideo {
			return t, true
		}
	}
	return TrackInfo{}, false
}

// OfType returns every track of the given type, in probe order.
func (r *Result) OfType(t jobspec.TrackType) []TrackInfo {
	var out []TrackInfo
	for _, tr := range r.Tracks {
		if tr.Type == t {
			out = append(out, tr)
		}
	}
	return out
}
