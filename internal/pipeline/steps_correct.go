package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/backmassage/syncmux/internal/decode"
	"github.com/backmassage/syncmux/internal/drift"
	"github.com/backmassage/syncmux/internal/jobspec"
)

// SourceCorrection is one non-reference source's correction outcome.
// SteppingAdjusted mirrors spec.md §4.10's table: a Stepped diagnosis whose
// correction actually ran bakes the delay into the stream, so the plan
// builder must emit delay 0 for that track rather than the selected delay.
type SourceCorrection struct {
	OutputPath       string
	IsCorrected      bool
	SteppingAdjusted bool
}

// CorrectResult is the Correct step's published output. Every
// non-reference source gets an entry, including a zero-value one when
// correction didn't run (spec.md §4.12 "publish an explicit empty-result
// record rather than leaving the slot unset").
type CorrectResult struct {
	BySource map[jobspec.SourceKey]SourceCorrection
}

// RunCorrect applies audio correction to every non-reference source whose
// diagnosis warrants it and whose config enables correction (spec.md
// §4.7). Uniform/InsufficientData diagnoses, and correction-disabled
// configs, produce an explicit no-op record.
func RunCorrect(ctx context.Context, pc *Context, state *JobState) error {
	pc.Log.Section("Correct")
	cfg := pc.Job.Config

	analyze, ok := state.analyze.get()
	if !ok {
		return invalidInput(StepCorrect, "read-analyze", "Analyze slot not published")
	}
	extract, ok := state.extract.get()
	if !ok {
		return invalidInput(StepCorrect, "read-extract", "Extract slot not published")
	}

	results := make(map[jobspec.SourceKey]SourceCorrection, len(analyze.Sources))
	for _, src := range pc.Job.NonReferenceSources() {
		analysis, ok := analyze.Sources[src.Key]
		if !ok {
			results[src.Key] = SourceCorrection{}
			continue
		}

		if !cfg.CorrectionEnabled || analysis.Diagnosis.Kind == drift.Uniform || analysis.Diagnosis.Kind == drift.InsufficientData {
			results[src.Key] = SourceCorrection{}
			continue
		}

		if err := ctx.Err(); err != nil {
			return wrapTool(StepCorrect, "cancel-check", err)
		}

		audioTrack, ok := firstAudioTrack(src)
		if !ok {
			results[src.Key] = SourceCorrection{}
			continue
		}
		trackID := jobspec.TrackID{Source: src.Key, Track: audioTrack.TrackID, Type: jobspec.TrackAudio}
		extracted, ok := extract.Tracks[trackID]
		if !ok {
			return invalidInput(StepCorrect, "lookup-extracted-audio", fmt.Sprintf("no extracted audio track for source %q", src.Key))
		}

		var samples []float32
		if analysis.Diagnosis.Kind == drift.Stepped {
			idx := audioStreamIndex(analyze.Probes[src.Key], audioTrack.TrackID)
			s, err := pc.Decoder.Decode(ctx, src.Path, decode.TrackSelector{StreamIndex: idx})
			if err != nil {
				return wrapTool(StepCorrect, "decode:"+string(src.Key), err)
			}
			samples = s
		}

		outPath := filepath.Join(pc.WorkDir, fmt.Sprintf("%s_corrected.flac", src.Key))
		res, err := pc.Corrector.Correct(ctx, samples, src.Path, outPath, analysis.Diagnosis, cfg)
		if err != nil {
			return wrapTool(StepCorrect, "correct:"+string(src.Key), err)
		}

		if !res.IsCorrected {
			pc.Log.Warn("source %s: drift %s detected but correction did not apply; keeping selected delay", src.Key, analysis.Diagnosis.Kind)
			results[src.Key] = SourceCorrection{}
			continue
		}

		_ = extracted // the extracted file's metadata (name/lang/forced) still applies; only the path changes.
		results[src.Key] = SourceCorrection{
			OutputPath:       res.OutputPath,
			IsCorrected:      true,
			SteppingAdjusted: analysis.Diagnosis.Kind == drift.Stepped,
		}

		if pc.Metrics != nil {
			pc.Metrics.CorrectionsTotal.WithLabelValues(string(analysis.Diagnosis.Kind)).Inc()
		}
	}

	if !state.correct.publish(CorrectResult{BySource: results}) {
		return fatalInvariant(StepCorrect, "correct")
	}
	return nil
}
