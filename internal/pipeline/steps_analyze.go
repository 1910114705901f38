package pipeline

import (
	"context"
	"fmt"

	"github.com/backmassage/syncmux/internal/correlate"
	"github.com/backmassage/syncmux/internal/decode"
	"github.com/backmassage/syncmux/internal/delaysel"
	"github.com/backmassage/syncmux/internal/drift"
	"github.com/backmassage/syncmux/internal/jobspec"
	"github.com/backmassage/syncmux/internal/probe"
)

// SourceAnalysis is one non-reference source's full correlation/selection/
// drift-diagnosis outcome (spec.md §4.4-§4.6).
type SourceAnalysis struct {
	ChunkResults []correlate.ChunkResult
	Selection    delaysel.Selection
	Diagnosis    drift.Diagnosis
}

// AnalyzeResult is the Analyze step's published output: every source's
// container probe, plus per-non-reference-source correlation results.
type AnalyzeResult struct {
	Probes  map[jobspec.SourceKey]*probe.Result
	Sources map[jobspec.SourceKey]SourceAnalysis
}

// RunAnalyze probes every source and, for each non-reference source,
// decodes its and the reference's selected audio track, cross-correlates
// them, selects a single delay, and diagnoses drift (spec.md §4.2-§4.6).
func RunAnalyze(ctx context.Context, pc *Context, state *JobState) error {
	pc.Log.Section("Analyze")
	cfg := pc.Job.Config

	probes := make(map[jobspec.SourceKey]*probe.Result, len(pc.Job.Sources))
	for _, src := range pc.Job.Sources {
		r, err := probe.Probe(ctx, src.Path)
		if err != nil {
			return wrapTool(StepAnalyze, "probe:"+string(src.Key), err)
		}
		probes[src.Key] = r
	}

	ref := pc.Job.Reference()
	refAudioTrack, ok := firstAudioTrack(ref)
	if !ok {
		return invalidInput(StepAnalyze, "select-reference-audio", fmt.Sprintf("source %q has no audio track selected", ref.Key))
	}
	refAudioIdx := audioStreamIndex(probes[ref.Key], refAudioTrack.TrackID)
	refSamples, err := pc.Decoder.Decode(ctx, ref.Path, decode.TrackSelector{StreamIndex: refAudioIdx})
	if err != nil {
		return wrapTool(StepAnalyze, "decode:"+string(ref.Key), err)
	}

	method := cfg.CorrelationMethod
	corr := correlate.New(decode.SampleRate, method)
	scanEndPct := cfg.SteppingScanEndPct
	if scanEndPct <= 0 {
		scanEndPct = cfg.ScanEndPct
	}

	refVideo, _ := probes[ref.Key].PrimaryVideo()

	sources := make(map[jobspec.SourceKey]SourceAnalysis, len(pc.Job.NonReferenceSources()))
	for _, src := range pc.Job.NonReferenceSources() {
		if err := ctx.Err(); err != nil {
			return wrapTool(StepAnalyze, "cancel-check", err)
		}

		audioTrack, ok := firstAudioTrack(src)
		if !ok {
			continue // source contributes no audio; nothing to correlate.
		}
		audioIdx := audioStreamIndex(probes[src.Key], audioTrack.TrackID)
		tgtSamples, err := pc.Decoder.Decode(ctx, src.Path, decode.TrackSelector{StreamIndex: audioIdx})
		if err != nil {
			return wrapTool(StepAnalyze, "decode:"+string(src.Key), err)
		}

		chunks, err := corr.Run(ctx, refSamples, tgtSamples, cfg, scanEndPct)
		if err != nil {
			return wrapTool(StepAnalyze, "correlate:"+string(src.Key), err)
		}

		sel, err := delaysel.Select(chunks, cfg)
		if err != nil {
			return &JobError{Kind: KindInsufficientData, Step: StepAnalyze, Op: "select:" + string(src.Key), Detail: err.Error(), Err: err}
		}

		diag := drift.Diagnose(chunks, cfg, refVideo.FPS())
		sources[src.Key] = SourceAnalysis{ChunkResults: chunks, Selection: sel, Diagnosis: diag}

		if pc.Metrics != nil {
			accepted := 0
			for _, c := range chunks {
				if c.Accepted {
					accepted++
				}
			}
			pc.Metrics.ChunksCorrelated.WithLabelValues("true").Add(float64(accepted))
			pc.Metrics.ChunksCorrelated.WithLabelValues("false").Add(float64(len(chunks) - accepted))
		}
		pc.Log.Info("source %s: delay %dms, drift %s", src.Key, sel.RoundedDelayMs, diag.Kind)
	}

	if !state.analyze.publish(AnalyzeResult{Probes: probes, Sources: sources}) {
		return fatalInvariant(StepAnalyze, "analyze")
	}
	return nil
}

// firstAudioTrack returns the first audio TrackSelection from src, in
// declaration order.
func firstAudioTrack(src jobspec.Source) (jobspec.TrackSelection, bool) {
	for _, t := range src.Tracks {
		if t.Type == jobspec.TrackAudio {
			return t, true
		}
	}
	return jobspec.TrackSelection{}, false
}

// audioStreamIndex converts a container track ID into ffmpeg's 0-based
// "0:a:N" audio-stream index by counting audio tracks ahead of it in probe
// order. Returns 0 (first audio stream) if the track can't be located.
func audioStreamIndex(r *probe.Result, trackID int) int {
	idx := 0
	for _, t := range r.OfType(jobspec.TrackAudio) {
		if t.ID == trackID {
			return idx
		}
		idx++
	}
	return 0
}
