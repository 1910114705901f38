// Package delaysel aggregates a source's per-chunk correlation results
// into a single delay value via one of four selection policies (spec.md
// §4.5). Pure aggregation logic with no subprocess or I/O dependency.
package delaysel

import (
	"errors"
	"sort"

	"github.com/backmassage/syncmux/internal/config"
	"github.com/backmassage/syncmux/internal/correlate"
	"github.com/backmassage/syncmux/internal/numeric"
)

// ErrInsufficientData is returned when the number of accepted chunks is
// below cfg.MinAcceptedChunks (spec.md §4.5).
var ErrInsufficientData = errors.New("insufficient accepted chunks for delay selection")

// Selection is the one (rounded_delay_ms, raw_delay_ms) pair a selection
// policy produces for a source.
type Selection struct {
	RoundedDelayMs int64
	RawDelayMs     float64
}

// Select aggregates chunks per cfg.SelectionMode.
func Select(chunks []correlate.ChunkResult, cfg config.Snapshot) (Selection, error) {
	accepted := acceptedOf(chunks)
	if len(accepted) < cfg.MinAcceptedChunks {
		return Selection{}, ErrInsufficientData
	}

	switch cfg.SelectionMode {
	case config.SelectMostCommon:
		return selectMostCommon(accepted), nil
	case config.SelectClustered:
		return selectModeClustered(accepted), nil
	case config.SelectAverage:
		return selectAverage(accepted), nil
	case config.SelectFirstStable:
		return selectFirstStable(accepted, cfg), nil
	default:
		return selectMostCommon(accepted), nil
	}
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

// selectMostCommon picks the highest-frequency rounded-delay bin, breaking
// ties by highest mean confidence in the bin.
func selectMostCommon(accepted []correlate.ChunkResult) Selection {
	type bin struct {
		count      int
		confSum    float64
		rawSum     float64
	}
	bins := make(map[int64]*bin)
	for _, c := range accepted {
		b, ok := bins[c.RoundedDelayMs]
		if !ok {
			b = &bin{}
			bins[c.RoundedDelayMs] = b
		}
		b.count++
		b.confSum += c.Confidence
		b.rawSum += c.RawDelayMs
	}

	var bestKey int64
	var best *bin
	for k, b := range bins {
		if best == nil || b.count > best.count ||
			(b.count == best.count && b.confSum/float64(b.count) > best.confSum/float64(best.count)) {
			best, bestKey = b, k
		}
	}

	return Selection{RoundedDelayMs: bestKey, RawDelayMs: best.rawSum / float64(best.count)}
}

// selectModeClustered clusters accepted chunks by ±1ms, picking the
// cluster with the most members (tie -> highest mean confidence), and
// returns the mean of raw delays in that cluster, rounded.
func selectModeClustered(accepted []correlate.ChunkResult) Selection {
	sorted := append([]correlate.ChunkResult(nil), accepted...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RoundedDelayMs < sorted[j].RoundedDelayMs })

	type cluster struct {
		members []correlate.ChunkResult
	}
	var clusters []cluster
	for _, c := range sorted {
		if len(clusters) > 0 {
			last := &clusters[len(clusters)-1]
			lastDelay := last.members[len(last.members)-1].RoundedDelayMs
			if c.RoundedDelayMs-lastDelay <= 1 {
				last.members = append(last.members, c)
				continue
			}
		}
		clusters = append(clusters, cluster{members: []correlate.ChunkResult{c}})
	}

	best := clusters[0]
	bestConf := meanConfidence(best.members)
	for _, cl := range clusters[1:] {
		conf := meanConfidence(cl.members)
		if len(cl.members) > len(best.members) ||
			(len(cl.members) == len(best.members) && conf > bestConf) {
			best, bestConf = cl, conf
		}
	}

	raw := meanRaw(best.members)
	return Selection{RoundedDelayMs: numeric.RoundHalfToEven(raw), RawDelayMs: raw}
}

// selectAverage is the arithmetic mean of accepted raw delays.
func selectAverage(accepted []correlate.ChunkResult) Selection {
	raw := meanRaw(accepted)
	return Selection{RoundedDelayMs: numeric.RoundHalfToEven(raw), RawDelayMs: raw}
}

// selectFirstStable scans chunks in temporal order for the first run of
// cfg.FirstStableMinChunks consecutive agreeing (±1ms) chunks, falling back to
// MostCommon if none is found.
func selectFirstStable(accepted []correlate.ChunkResult, cfg config.Snapshot) Selection {
	sorted := append([]correlate.ChunkResult(nil), accepted...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartS < sorted[j].StartS })

	minRun := cfg.FirstStableMinChunks
	if minRun <= 0 {
		minRun = 3
	}

	run := []correlate.ChunkResult{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		c := sorted[i]
		ref := run[len(run)-1]
		if absInt64(c.RoundedDelayMs-ref.RoundedDelayMs) <= 1 {
			run = append(run, c)
		} else if cfg.SkipUnstable {
			// Outlier: keep the run alive, don't reset it, but don't add the outlier either.
			continue
		} else {
			run = []correlate.ChunkResult{c}
		}

		if len(run) >= minRun {
			raw := meanRaw(run)
			return Selection{RoundedDelayMs: numeric.RoundHalfToEven(raw), RawDelayMs: raw}
		}
	}

	return selectMostCommon(accepted)
}

func meanConfidence(cs []correlate.ChunkResult) float64 {
	var sum float64
	for _, c := range cs {
		sum += c.Confidence
	}
	return sum / float64(len(cs))
}

func meanRaw(cs []correlate.ChunkResult) float64 {
	var sum float64
	for _, c := range cs {
		sum += c.RawDelayMs
	}
	return sum / float64(len(cs))
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

