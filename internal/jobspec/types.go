// Package jobspec defines the immutable input contract supplied by the
// external job-queue front-end (out of scope for this module) and the
// track identifiers threaded through the rest of the pipeline.
package jobspec

import "github.com/backmassage/syncmux/internal/config"

// TrackType distinguishes the three kinds of mux-able stream.
type TrackType string

const (
	TrackVideo    TrackType = "video"
	TrackAudio    TrackType = "audio"
	TrackSubtitle TrackType = "subtitle"
)

// SourceKey identifies one input file within a job. The reference source
// (index 0 in JobSpec.Sources) defines the output timeline.
type SourceKey string

// TrackID pairs a source with one of its container track indices.
type TrackID struct {
	Source  SourceKey
	Track   int
	Type    TrackType
}

// TrackOptions holds the user's per-track selection options.
type TrackOptions struct {
	Convert      bool    `yaml:"convert,omitempty"`      // Re-encode instead of passthrough (audio only).
	Rescale      bool    `yaml:"rescale,omitempty"`      // Apply SizeMultiplier to subtitle font sizes.
	SizeMult     float64 `yaml:"size_multiplier,omitempty"`
	Default      bool    `yaml:"default,omitempty"`
	Forced       bool    `yaml:"forced,omitempty"`
	IsGenerated  bool    `yaml:"is_generated,omitempty"` // Produced by this pipeline (e.g. OCR output), not present in the source container.
	NameOverride string  `yaml:"name,omitempty"`
	LangOverride string  `yaml:"language,omitempty"`
}

// TrackSelection is one user-picked track from a Source.
type TrackSelection struct {
	TrackID int          `yaml:"track_id"`
	Type    TrackType    `yaml:"type"`
	Options TrackOptions `yaml:"options,omitempty"`
}

// Source is one input file contributing tracks to the merge.
type Source struct {
	Key    SourceKey        `yaml:"key"`
	Path   string           `yaml:"path"`
	Tracks []TrackSelection `yaml:"tracks"`
}

// AttachmentSelection names the source whose attachments (fonts, etc.) are
// carried into the output.
type AttachmentSelection struct {
	Source SourceKey `yaml:"source,omitempty"`
}

// JobSpec is the immutable input contract for one synchronization job.
// Sources[0] is always the reference; its track IDs define the timeline.
type JobSpec struct {
	Name        string              `yaml:"name"`
	Sources     []Source            `yaml:"sources"`
	Attachments AttachmentSelection `yaml:"attachments,omitempty"`
	OutputPath  string              `yaml:"output_path"`
	Config      config.Snapshot     `yaml:"config,omitempty"`
}

// Reference returns the reference source (Sources[0]).
func (j JobSpec) Reference() Source {
	return j.Sources[0]
}

// NonReferenceSources returns every source after the reference, in order.
func (j JobSpec) NonReferenceSources() []Source {
	if len(j.Sources) <= 1 {
		return nil
	}
	return j.Sources[1:]
}

// SourceByKey returns the source with the given key, or false if absent.
func (j JobSpec) SourceByKey(key SourceKey) (Source, bool) {
	for _, s := range j.Sources {
		if s.Key == key {
			return s, true
		}
	}
	return Source{}, false
}
