package planner

import (
	"strings"

	"github.com/backmassage/syncmux/internal/config"
	"github.com/backmassage/syncmux/internal/jobspec"
)

// BuildPlan wires Normalize, TrackDelay, Order, and ApplyDefaults into the
// final MergePlan (spec.md §4.10's complete decision matrix). rawDelays
// holds each non-reference source's selected raw delay (C5 output);
// sourceOrder is the job's source list in reference-first order.
func BuildPlan(inputs []TrackInput, rawDelays map[jobspec.SourceKey]float64, sourceOrder []jobspec.SourceKey, cfg config.Snapshot) MergePlan {
	norm := Normalize(rawDelays)
	ordered := Order(inputs, sourceOrder, cfg)

	hasEnglishAudio := false
	for _, t := range ordered {
		if t.Track.Type == jobspec.TrackAudio && strings.EqualFold(t.Language, "eng") {
			hasEnglishAudio = true
			break
		}
	}

	items := make([]PlanItem, len(ordered))
	for i, t := range ordered {
		items[i] = PlanItem{
			Track:         t.Track,
			Language:      t.Language,
			Name:          t.Name,
			CodecID:       t.CodecID,
			FilePath:      t.FilePath,
			DelayMs:       TrackDelay(t, norm),
			Forced:        t.ForcedFlag,
			IsCorrected:   t.IsCorrected,
			IsGenerated:   t.IsGenerated,
			FrameAdjusted: t.FrameAdjusted,
		}
	}
	items = ApplyDefaults(items, hasEnglishAudio, cfg)

	return MergePlan{Items: items, GlobalShiftMs: norm.GlobalShiftMs}
}
