package pipeline

import (
	"context"
	"fmt"

	"github.com/asticode/go-astisub"

	"github.com/backmassage/syncmux/internal/config"
	"github.com/backmassage/syncmux/internal/jobspec"
	"github.com/backmassage/syncmux/internal/planner"
	"github.com/backmassage/syncmux/internal/subtitles"
)

// SubtitleResult is the Subtitles step's published output: which tracks
// had their event times rewritten in place (spec.md §4.9).
type SubtitleResult struct {
	FrameAdjusted map[jobspec.TrackID]bool
}

// RunSubtitles frame-snaps every subtitle track's event times when
// cfg.SubtitleFrameMode selects a frame-snap mode. Time-shift-only jobs are
// a no-op here: the shift is expressed later as a plain --sync value
// instead (spec.md §4.9 "no file rewrite if the multiplexer will apply
// sync externally").
func RunSubtitles(ctx context.Context, pc *Context, state *JobState) error {
	pc.Log.Section("Subtitles")
	cfg := pc.Job.Config

	if cfg.SubtitleFrameMode == config.FrameModeNone {
		if !state.subtitles.publish(SubtitleResult{FrameAdjusted: map[jobspec.TrackID]bool{}}) {
			return fatalInvariant(StepSubtitles, "subtitles")
		}
		return nil
	}

	analyze, ok := state.analyze.get()
	if !ok {
		return invalidInput(StepSubtitles, "read-analyze", "Analyze slot not published")
	}
	extract, ok := state.extract.get()
	if !ok {
		return invalidInput(StepSubtitles, "read-extract", "Extract slot not published")
	}

	norm := planner.Normalize(rawDelaysOf(analyze))
	mode := subtitles.ModeFrameFloor
	if cfg.SubtitleFrameMode == config.FrameModeMiddle {
		mode = subtitles.ModeFrameMiddle
	}

	adjusted := make(map[jobspec.TrackID]bool)
	ref := pc.Job.Reference()
	for _, src := range pc.Job.Sources {
		shiftMs := norm.RawGlobalShift
		if src.Key != ref.Key {
			shiftMs = norm.RawSourceDelaysMs[src.Key]
		}

		for _, sel := range src.Tracks {
			if sel.Type != jobspec.TrackSubtitle {
				continue
			}
			if err := ctx.Err(); err != nil {
				return wrapTool(StepSubtitles, "cancel-check", err)
			}

			id := jobspec.TrackID{Source: src.Key, Track: sel.TrackID, Type: jobspec.TrackSubtitle}
			ex, ok := extract.Tracks[id]
			if !ok {
				return invalidInput(StepSubtitles, "lookup-extracted-subtitle", fmt.Sprintf("no extracted subtitle track for %q track %d", src.Key, sel.TrackID))
			}

			subs, err := astisub.OpenFile(ex.Path)
			if err != nil {
				return invalidInput(StepSubtitles, "open-subtitle", fmt.Sprintf("%s: %v", ex.Path, err))
			}
			res := subtitles.Adjust(subs, shiftMs, mode, cfg.SubtitleFPS)
			if err := subs.Write(ex.Path); err != nil {
				return invalidInput(StepSubtitles, "write-subtitle", fmt.Sprintf("%s: %v", ex.Path, err))
			}
			adjusted[id] = res.FrameAdjusted
		}
	}

	if !state.subtitles.publish(SubtitleResult{FrameAdjusted: adjusted}) {
		return fatalInvariant(StepSubtitles, "subtitles")
	}
	return nil
}

// rawDelaysOf extracts each non-reference source's selected raw delay from
// an AnalyzeResult, the input Normalize needs.
func rawDelaysOf(a AnalyzeResult) map[jobspec.SourceKey]float64 {
	out := make(map[jobspec.SourceKey]float64, len(a.Sources))
	for k, s := range a.Sources {
		out[k] = s.Selection.RawDelayMs
	}
	return out
}
