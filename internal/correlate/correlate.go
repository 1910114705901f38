// Package correlate implements the FFT-based cross-correlation analyzer
// (spec.md §4.4): GCC-PHAT and its SCC/SCOT/Whitened variants, chunked
// across the scan range and run in parallel. FFTs are computed with
// gonum.org/v1/gonum/dsp/fourier (no in-pack example imports an FFT
// library — gonum is the de facto numerics library for this ecosystem,
// see DESIGN.md). Chunk parallelism uses golang.org/x/sync/errgroup, the
// same worker-pool-via-errgroup shape other pack repos reach for when
// fanning out bounded CPU-bound work.
package correlate

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/backmassage/syncmux/internal/config"
	"github.com/backmassage/syncmux/internal/numeric"
)

// Correlator runs chunked cross-correlation between a reference and a
// target PCM buffer.
type Correlator struct {
	SampleRate int
	Method     config.CorrelationMethod
}

// New returns a Correlator for the given sample rate and method.
func New(sampleRate int, method config.CorrelationMethod) *Correlator {
	return &Correlator{SampleRate: sampleRate, Method: method}
}

// chunkPlan is one chunk's position within the reference timeline.
type chunkPlan struct {
	index     int
	startS    float64
	refStart  int
	refEnd    int
	tgtStart  int
	tgtEnd    int
}

// Run divides ref/tgt into cfg.ChunkCount equal-duration chunks covering
// [scanStartPct, scanEndPct] of the shorter buffer's duration, correlates
// each chunk in parallel, and returns results ordered by chunk start time
// (spec.md §5: "Chunk-parallel correlation results are ordered by chunk
// start time before selection").
func (c *Correlator) Run(ctx context.Context, ref, tgt []float32, cfg config.Snapshot, scanEndPct float64) ([]ChunkResult, error) {
	plans := c.buildChunkPlans(ref, tgt, cfg, scanEndPct)

	results := make([]ChunkResult, len(plans))
	g, gctx := errgroup.WithContext(ctx)

	for _, p := range plans {
		p := p
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			results[p.index] = c.correlateChunk(p, ref, tgt, cfg)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].StartS < results[j].StartS })
	for i := range results {
		results[i].Accepted = results[i].Confidence >= cfg.MinMatchPct
	}
	return results, nil
}

func (c *Correlator) buildChunkPlans(ref, tgt []float32, cfg config.Snapshot, scanEndPct float64) []chunkPlan {
	shorter := len(ref)
	if len(tgt) < shorter {
		shorter = len(tgt)
	}
	durationS := float64(shorter) / float64(c.SampleRate)

	startS := durationS * cfg.ScanStartPct / 100.0
	endS := durationS * scanEndPct / 100.0
	usable := endS - startS
	if usable <= 0 || cfg.ChunkCount <= 0 {
		return nil
	}

	step := usable / float64(cfg.ChunkCount)
	chunkLen := int(cfg.ChunkDurationS * float64(c.SampleRate))

	plans := make([]chunkPlan, 0, cfg.ChunkCount)
	for i := 0; i < cfg.ChunkCount; i++ {
		chunkStartS := startS + float64(i)*step
		startSample := int(chunkStartS * float64(c.SampleRate))

		refEnd := startSample + chunkLen
		if refEnd > len(ref) {
			refEnd = len(ref)
		}
		tgtEnd := startSample + chunkLen
		if tgtEnd > len(tgt) {
			tgtEnd = len(tgt)
		}
		if startSample >= refEnd || startSample >= tgtEnd {
			continue
		}

		plans = append(plans, chunkPlan{
			index:    i,
			startS:   chunkStartS,
			refStart: startSample,
			refEnd:   refEnd,
			tgtStart: startSample,
			tgtEnd:   tgtEnd,
		})
	}
	return plans
}

func (c *Correlator) correlateChunk(p chunkPlan, ref, tgt []float32, cfg config.Snapshot) ChunkResult {
	refChunk := toFloat64(ref[p.refStart:p.refEnd])
	tgtChunk := toFloat64(tgt[p.tgtStart:p.tgtEnd])

	n := len(refChunk) + len(tgtChunk) - 1
	n = nextFastLen(n)

	fft := fourier.NewCmplxFFT(n)
	g := crossSpectrum(fft, refChunk, tgtChunk, n)
	normalized := normalize(c.Method, g, refChunk, tgtChunk, n, fft)

	corr := fft.Sequence(nil, normalized)
	lagSamples, confidence := peakLagAndConfidence(corr, n)

	delayMs := float64(lagSamples) / float64(c.SampleRate) * 1000.0

	return ChunkResult{
		StartS:         p.startS,
		RawDelayMs:     delayMs,
		RoundedDelayMs: numeric.RoundHalfToEven(delayMs),
		Confidence:     confidence,
	}
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// nextFastLen rounds n up to the next power of two; gonum's FFT accepts
// arbitrary lengths but powers of two keep chunk correlation fast at the
// chunk sizes used here (a few hundred thousand samples).
func nextFastLen(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
