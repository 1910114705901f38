package pipeline

import (
	"context"

	"github.com/backmassage/syncmux/internal/jobspec"
	"github.com/backmassage/syncmux/internal/planner"
)

// PlanResult is the BuildPlan step's published output.
type PlanResult struct {
	Plan planner.MergePlan
}

// RunBuildPlan assembles every extracted track's jobspec/probe/correction/
// subtitle-adjustment metadata into planner.TrackInput records and calls
// planner.BuildPlan, producing the final ordered, delay-annotated,
// default-flagged merge plan (spec.md §4.10).
func RunBuildPlan(ctx context.Context, pc *Context, state *JobState) error {
	pc.Log.Section("BuildPlan")

	analyze, ok := state.analyze.get()
	if !ok {
		return invalidInput(StepBuildPlan, "read-analyze", "Analyze slot not published")
	}
	extract, ok := state.extract.get()
	if !ok {
		return invalidInput(StepBuildPlan, "read-extract", "Extract slot not published")
	}
	correct, ok := state.correct.get()
	if !ok {
		return invalidInput(StepBuildPlan, "read-correct", "Correct slot not published")
	}
	subs, ok := state.subtitles.get()
	if !ok {
		return invalidInput(StepBuildPlan, "read-subtitles", "Subtitles slot not published")
	}

	ref := pc.Job.Reference()
	var inputs []planner.TrackInput
	var sourceOrder []jobspec.SourceKey

	for _, src := range pc.Job.Sources {
		sourceOrder = append(sourceOrder, src.Key)
		isRef := src.Key == ref.Key

		for _, sel := range src.Tracks {
			id := jobspec.TrackID{Source: src.Key, Track: sel.TrackID, Type: sel.Type}
			ex, ok := extract.Tracks[id]
			if !ok {
				return invalidInput(StepBuildPlan, "lookup-extracted-track", "no extracted track for "+string(src.Key))
			}

			input := planner.TrackInput{
				Track:       id,
				IsReference: isRef,
				Language:    ex.Language,
				Name:        ex.Name,
				ForcedFlag:  ex.Forced,
				CodecID:     ex.CodecID,
				FilePath:    ex.Path,
				IsGenerated: sel.Options.IsGenerated,
			}

			if isRef {
				// Reference names are cleared by default for clean output
				// (spec.md §4.10), unless the job explicitly overrides one.
				if sel.Options.NameOverride == "" {
					input.Name = ""
				}
				if sel.Type == jobspec.TrackAudio {
					if info, ok := analyze.Probes[src.Key].ByID(sel.TrackID); ok {
						input.ContainerDelayMs = info.ContainerDelayMs()
					}
				}
			}

			if sel.Type == jobspec.TrackAudio && !isRef {
				if sc, ok := correct.BySource[src.Key]; ok && sc.IsCorrected {
					input.FilePath = sc.OutputPath
					input.IsCorrected = true
					input.SteppingAdjusted = sc.SteppingAdjusted
				}
			}

			if sel.Type == jobspec.TrackSubtitle {
				input.FrameAdjusted = subs.FrameAdjusted[id]
			}

			inputs = append(inputs, input)
		}
	}

	rawDelays := make(map[jobspec.SourceKey]float64, len(analyze.Sources))
	for k, s := range analyze.Sources {
		rawDelays[k] = s.Selection.RawDelayMs
	}

	plan := planner.BuildPlan(inputs, rawDelays, sourceOrder, pc.Job.Config)
	pc.Log.Info("plan built: %d tracks, global shift %dms", len(plan.Items), plan.GlobalShiftMs)

	if !state.plan.publish(PlanResult{Plan: plan}) {
		return fatalInvariant(StepBuildPlan, "plan")
	}
	return nil
}
