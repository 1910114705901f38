package planner

import (
	"github.com/backmassage/syncmux/internal/jobspec"
	"github.com/backmassage/syncmux/internal/numeric"
)

// Normalized holds the global shift and every non-reference source's
// delay, both raw and rounded (spec.md §4.10 "Normalization").
type Normalized struct {
	GlobalShiftMs     int64
	RawGlobalShift    float64
	SourceDelaysMs    map[jobspec.SourceKey]int64
	RawSourceDelaysMs map[jobspec.SourceKey]float64
}

// Normalize computes the smallest non-negative additive shift that makes
// every source's effective delay >= 0, then derives each non-reference
// source's final delay relative to that shift. rawDelays holds Δ_raw(s)
// for every non-reference source; the reference is implicitly 0 and
// participates in the minimum.
func Normalize(rawDelays map[jobspec.SourceKey]float64) Normalized {
	minDelta := 0.0 // the reference's implicit Δ_raw = 0.
	for _, d := range rawDelays {
		if d < minDelta {
			minDelta = d
		}
	}
	rawGlobalShift := -minDelta
	if rawGlobalShift < 0 {
		rawGlobalShift = 0
	}

	out := Normalized{
		RawGlobalShift:    rawGlobalShift,
		GlobalShiftMs:     numeric.RoundHalfToEven(rawGlobalShift),
		SourceDelaysMs:    make(map[jobspec.SourceKey]int64, len(rawDelays)),
		RawSourceDelaysMs: make(map[jobspec.SourceKey]float64, len(rawDelays)),
	}
	for s, d := range rawDelays {
		raw := d + rawGlobalShift
		out.RawSourceDelaysMs[s] = raw
		out.SourceDelaysMs[s] = numeric.RoundHalfToEven(raw)
	}
	return out
}

// TrackDelay computes the final --sync value for one track per spec.md
// §4.10's per-track delay table.
func TrackDelay(t TrackInput, n Normalized) int64 {
	if t.SteppingAdjusted || t.FrameAdjusted {
		return 0
	}
	if t.IsReference {
		switch t.Track.Type {
		case jobspec.TrackVideo:
			return n.GlobalShiftMs
		case jobspec.TrackAudio:
			return t.ContainerDelayMs + n.GlobalShiftMs
		case jobspec.TrackSubtitle:
			return n.GlobalShiftMs
		}
	}
	return n.SourceDelaysMs[t.Track.Source]
}
