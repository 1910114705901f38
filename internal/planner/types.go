// Package planner turns per-source raw delays and per-track metadata into
// the ordered, delay-annotated, default-flagged merge plan the mux option
// builder (C11) consumes (spec.md §4.10). Grounded in shape on the
// teacher's internal/planner: small, pure, table-driven decision functions
// taking config+probe-shaped input and returning a plan fragment — the
// same style, now over delay/ordering/disposition decisions instead of
// encode/quality ones.
package planner

import "github.com/backmassage/syncmux/internal/jobspec"

// TrackInput is one output track's resolved identity and timing inputs,
// assembled by the pipeline orchestrator (C12) from probe results, drift
// diagnoses, and the job's track selections.
type TrackInput struct {
	Track       jobspec.TrackID
	IsReference bool
	Language    string
	Name        string
	ForcedFlag  bool
	CodecID     string // e.g. "A_AC3", "A_EAC3" — used by C11's dialog-norm-gain rule.

	// FilePath is the standalone single-track file (original, extracted,
	// or corrected/adjusted) the mux option builder wraps in its own
	// parenthesis-scoped file group (spec.md §4.11).
	FilePath string

	// ContainerDelayMs only applies to the reference audio track
	// (spec.md §4.10's per-track delay table).
	ContainerDelayMs int64

	// SteppingAdjusted/FrameAdjusted tracks had their delay baked into the
	// stream itself (C7 stepped correction, C9 frame-snap); their
	// multiplexer delay is always 0.
	SteppingAdjusted bool
	FrameAdjusted    bool
	IsCorrected      bool
	IsGenerated      bool

	// SubtitleOrder disambiguates a generated/filtered subtitle track from
	// the native track it was derived from when both share a source
	// ("generated tracks follow their source track", spec.md §4.10).
	SubtitleOrder int
}

// PlanItem is one track in final merge order, with its computed delay and
// disposition flags resolved.
type PlanItem struct {
	Track         jobspec.TrackID
	Language      string
	Name          string
	CodecID       string
	FilePath      string
	DelayMs       int64
	Default       bool
	Forced        bool
	IsCorrected   bool
	IsGenerated   bool
	FrameAdjusted bool
}

// MergePlan is the complete, ordered output of C10, ready for C11.
type MergePlan struct {
	Items         []PlanItem
	GlobalShiftMs int64
}
