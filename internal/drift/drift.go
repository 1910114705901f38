// Package drift classifies a source's per-chunk correlation results into
// one of Uniform, Stepped, LinearDrift, PalDrift, or InsufficientData
// (spec.md §4.6). Clustering is 1-D DBSCAN over rounded delays; the linear
// fits it depends on (for LinearDrift/PalDrift slope+r² and for a Stepped
// cluster's local drift_rate_ms_per_s) use gonum's stat package rather
// than a hand-rolled least-squares loop.
package drift

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/backmassage/syncmux/internal/config"
	"github.com/backmassage/syncmux/internal/correlate"
	"github.com/backmassage/syncmux/internal/numeric"
)

const (
	steppedMinClusters     = 2
	steppedMinGapMs        = 50.0
	uniformMinCoverage     = 0.80
	palSlopeMsPerS         = 40.9
	palSlopeToleranceMsPerS = 5.0
	palReferenceFPS        = 25.0
	palFPSTolerance        = 0.1
)

// Diagnose implements spec.md §4.6's decision tree for one source's
// accepted chunk results. referenceFPS is the reference track's frame rate,
// needed only to refine LinearDrift into PalDrift.
func Diagnose(chunks []correlate.ChunkResult, cfg config.Snapshot, referenceFPS float64) Diagnosis {
	accepted := acceptedOf(chunks)
	if len(accepted) < 2 {
		return Diagnosis{Kind: InsufficientData, Reason: "fewer than 2 accepted chunks"}
	}
	sort.Slice(accepted, func(i, j int) bool { return accepted[i].StartS < accepted[j].StartS })

	delays := make([]float64, len(accepted))
	for i, c := range accepted {
		delays[i] = float64(c.RoundedDelayMs)
	}

	eps := cfg.ClusterEpsilonMs
	if eps <= 0 {
		eps = 20
	}
	clusters, _ := dbscan1D(delays, eps, 2)

	// A steady ramp either chains into one cluster (small per-chunk steps)
	// or leaves every chunk as noise (steps wider than eps), so the linear
	// fit is tried before the plateau rules whenever there is no second
	// cluster.
	if len(clusters) <= 1 {
		if d, ok := diagnoseLinear(accepted, cfg, referenceFPS); ok {
			return d
		}
	}
	if len(clusters) == 0 {
		return Diagnosis{Kind: InsufficientData, Reason: "no delay cluster reached min_samples=2"}
	}

	if _, coverage := largestCluster(clusters, len(accepted)); len(clusters) == 1 && coverage >= uniformMinCoverage {
		return Diagnosis{Kind: Uniform}
	}

	if len(clusters) >= steppedMinClusters {
		if d, ok := diagnoseStepped(accepted, clusters, cfg); ok {
			return d
		}
	}

	return Diagnosis{Kind: InsufficientData, Reason: "clusters present but none satisfy uniform/stepped/linear thresholds"}
}

func acceptedOf(chunks []correlate.ChunkResult) []correlate.ChunkResult {
	var out []correlate.ChunkResult
	for _, c := range chunks {
		if c.Accepted {
			out = append(out, c)
		}
	}
	return out
}

func largestCluster(clusters []cluster1D, total int) (cluster1D, float64) {
	best := clusters[0]
	for _, c := range clusters[1:] {
		if len(c.indices) > len(best.indices) {
			best = c
		}
	}
	return best, float64(len(best.indices)) / float64(total)
}

// diagnoseStepped orders clusters in time (by mean chunk StartS), requires
// each cluster to be time-contiguous (no foreign cluster's members
// interleaved between its first and last member in time order) and the
// median gap between adjacent clusters' delay medians to exceed
// steppedMinGapMs. On success it emits one AudioSegment per cluster plus
// gap-filled segments between them per cfg.FillPolicy.
func diagnoseStepped(accepted []correlate.ChunkResult, clusters []cluster1D, cfg config.Snapshot) (Diagnosis, bool) {
	label := make([]int, len(accepted))
	for i := range label {
		label[i] = -1
	}
	for ci, c := range clusters {
		for _, idx := range c.indices {
			label[idx] = ci
		}
	}

	// Time-contiguity: walking accepted in StartS order, once we leave a
	// cluster's label run (ignoring noise, label==-1) we must never return.
	seen := make(map[int]bool)
	last := -2
	for _, l := range label {
		if l == -1 {
			continue
		}
		if l != last {
			if seen[l] {
				return Diagnosis{}, false
			}
			seen[l] = true
			last = l
		}
	}

	ordered := make([]orderedCluster, 0, len(clusters))
	for ci, c := range clusters {
		oc := orderedCluster{idx: ci}
		sortedIdx := append([]int(nil), c.indices...)
		sort.Ints(sortedIdx)
		for _, idx := range sortedIdx {
			oc.times = append(oc.times, accepted[idx].StartS)
			oc.delays = append(oc.delays, accepted[idx].RawDelayMs)
		}
		oc.startS = oc.times[0]
		oc.endS = oc.times[len(oc.times)-1]
		oc.medianMs = median(oc.delays)
		ordered = append(ordered, oc)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].startS < ordered[j].startS })

	gaps := make([]float64, 0, len(ordered)-1)
	for i := 1; i < len(ordered); i++ {
		gaps = append(gaps, math.Abs(ordered[i].medianMs-ordered[i-1].medianMs))
	}
	if median(gaps) <= steppedMinGapMs {
		return Diagnosis{}, false
	}

	var segments []AudioSegment
	for i, oc := range ordered {
		slope := 0.0
		if len(oc.times) >= 2 {
			slope, _ = stat.LinearRegression(oc.times, oc.delays, nil, false)
		}
		segments = append(segments, AudioSegment{
			StartS:          oc.startS,
			EndS:            oc.endS,
			DelayMsRounded:  numeric.RoundHalfToEven(oc.medianMs),
			DelayRaw:        oc.medianMs,
			DriftRateMsPerS: slope,
		})

		if i == len(ordered)-1 {
			continue
		}
		next := ordered[i+1]
		segments = append(segments, fillGapSegment(oc, next, cfg.FillPolicy))
	}

	return Diagnosis{Kind: Stepped, Segments: segments}, true
}

// orderedCluster is a drift cluster placed in time order, with the raw
// (start_s, delay_ms) samples needed for its local regression.
type orderedCluster struct {
	idx      int
	startS   float64
	endS     float64
	delays   []float64
	times    []float64
	medianMs float64
}

func fillGapSegment(prev, next orderedCluster, policy config.FillPolicy) AudioSegment {
	switch policy {
	case config.FillContent:
		mid := prev.medianMs + (next.medianMs-prev.medianMs)/2
		return AudioSegment{
			StartS:         prev.endS,
			EndS:           next.startS,
			DelayMsRounded: numeric.RoundHalfToEven(mid),
			DelayRaw:       mid,
		}
	default: // FillSilence: hold the previous segment's delay across the gap.
		return AudioSegment{
			StartS:         prev.endS,
			EndS:           next.startS,
			DelayMsRounded: numeric.RoundHalfToEven(prev.medianMs),
			DelayRaw:       prev.medianMs,
		}
	}
}

// diagnoseLinear fits delay_ms vs start_s over all accepted chunks and
// classifies LinearDrift/PalDrift per spec.md §4.6.
func diagnoseLinear(accepted []correlate.ChunkResult, cfg config.Snapshot, referenceFPS float64) (Diagnosis, bool) {
	times := make([]float64, len(accepted))
	delays := make([]float64, len(accepted))
	for i, c := range accepted {
		times[i] = c.StartS
		delays[i] = c.RawDelayMs
	}

	intercept, slope := stat.LinearRegression(times, delays, nil, false)
	predicted := make([]float64, len(times))
	for i, t := range times {
		predicted[i] = intercept + slope*t
	}
	r2 := stat.RSquared(delays, predicted, nil)

	threshold := cfg.DriftR2Threshold
	if threshold <= 0 {
		threshold = 0.9
	}
	slopeThreshold := cfg.SlopeThresholdMsPerS
	if r2 < threshold || math.Abs(slope) < slopeThreshold {
		return Diagnosis{}, false
	}

	d := Diagnosis{Kind: LinearDrift, SlopeMsPerS: slope, RSquared: r2}

	if math.Abs(slope-palSlopeMsPerS) <= palSlopeToleranceMsPerS &&
		math.Abs(referenceFPS-palReferenceFPS) <= palFPSTolerance {
		d.Kind = PalDrift
		d.TempoRatio = palTempoRatio
	}
	return d, true
}

func median(vs []float64) float64 {
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
