package chapters

import (
	"fmt"
	"sort"

	"github.com/backmassage/syncmux/internal/config"
)

const (
	dedupThresholdNs = 100_000_000  // 100 ms
	minEndGapNs      = 1_000_000    // 1 ms
	defaultLastEndNs = 1_000_000_000 // 1 s
)

// Process runs spec.md §4.8's full pipeline: shift, optional keyframe snap,
// normalize, optional sequential rename.
func Process(input []Chapter, globalShiftMs int64, keyframesNs []int64, cfg config.Snapshot) []Chapter {
	out := Shift(input, globalShiftMs)
	if cfg.SnapMode != config.SnapOff && len(keyframesNs) > 0 {
		out = Snap(out, keyframesNs, cfg.SnapMode, cfg.SnapThresholdMs)
	}
	out = Normalize(out)
	if cfg.RenameSequential {
		out = RenameSequential(out)
	}
	return out
}

// Shift adds shiftMs (converted to ns) to every start/end, clamping to >= 0
// (spec.md §4.8 step 2).
func Shift(chapters []Chapter, shiftMs int64) []Chapter {
	shiftNs := shiftMs * 1_000_000
	out := make([]Chapter, len(chapters))
	for i, c := range chapters {
		c.StartNs = clampNonNegative(c.StartNs + shiftNs)
		if c.EndNs != nil {
			end := clampNonNegative(*c.EndNs + shiftNs)
			c.EndNs = &end
		}
		out[i] = c
	}
	return out
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// Snap moves each chapter boundary to the nearest keyframe within
// thresholdMs, per mode: previous picks the greatest keyframe <= boundary,
// nearest picks the closest keyframe either side. Boundaries with no
// keyframe within the threshold are left unchanged and flagged tooFar
// (spec.md §4.8 step 3).
func Snap(chapters []Chapter, keyframesNs []int64, mode config.SnapMode, thresholdMs float64) []Chapter {
	sorted := append([]int64(nil), keyframesNs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	thresholdNs := int64(thresholdMs * 1_000_000)

	out := make([]Chapter, len(chapters))
	for i, c := range chapters {
		newStart, startOK := snapBoundary(sorted, c.StartNs, mode, thresholdNs)
		c.StartNs = newStart
		farAny := !startOK

		if c.EndNs != nil {
			newEnd, endOK := snapBoundary(sorted, *c.EndNs, mode, thresholdNs)
			c.EndNs = &newEnd
			farAny = farAny || !endOK
		}
		c.tooFar = farAny
		out[i] = c
	}
	return out
}

func snapBoundary(keyframesNs []int64, boundary int64, mode config.SnapMode, thresholdNs int64) (int64, bool) {
	if len(keyframesNs) == 0 {
		return boundary, false
	}

	switch mode {
	case config.SnapPrevious:
		idx := sort.Search(len(keyframesNs), func(i int) bool { return keyframesNs[i] > boundary }) - 1
		if idx < 0 {
			return boundary, false
		}
		if boundary-keyframesNs[idx] <= thresholdNs {
			return keyframesNs[idx], true
		}
		return boundary, false
	default: // SnapNearest
		idx := sort.Search(len(keyframesNs), func(i int) bool { return keyframesNs[i] >= boundary })
		best := int64(-1)
		bestDist := thresholdNs + 1
		for _, cand := range []int{idx - 1, idx} {
			if cand < 0 || cand >= len(keyframesNs) {
				continue
			}
			dist := abs64(keyframesNs[cand] - boundary)
			if dist < bestDist {
				best, bestDist = keyframesNs[cand], dist
			}
		}
		if best >= 0 && bestDist <= thresholdNs {
			return best, true
		}
		return boundary, false
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Normalize sorts by start, drops chapters whose start falls within 100ms
// of the previous kept chapter's start, clamps each end to just before the
// next chapter's start, and defaults the last chapter's missing end to
// start+1s (spec.md §4.8 step 4).
func Normalize(chapters []Chapter) []Chapter {
	sorted := append([]Chapter(nil), chapters...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartNs < sorted[j].StartNs })

	var deduped []Chapter
	for _, c := range sorted {
		if len(deduped) > 0 && c.StartNs-deduped[len(deduped)-1].StartNs < dedupThresholdNs {
			continue
		}
		deduped = append(deduped, c)
	}

	for i := range deduped {
		if i < len(deduped)-1 {
			ceiling := deduped[i+1].StartNs - minEndGapNs
			if deduped[i].EndNs == nil || *deduped[i].EndNs > ceiling {
				capped := ceiling
				deduped[i].EndNs = &capped
			}
			continue
		}
		if deduped[i].EndNs == nil {
			end := deduped[i].StartNs + defaultLastEndNs
			deduped[i].EndNs = &end
		}
	}
	return deduped
}

// RenameSequential replaces every chapter's display names with a single
// "Chapter NN" entry, no language tag (spec.md §4.8 step 5).
func RenameSequential(chapters []Chapter) []Chapter {
	out := make([]Chapter, len(chapters))
	for i, c := range chapters {
		c.Names = []NameEntry{{Text: fmt.Sprintf("Chapter %02d", i+1)}}
		out[i] = c
	}
	return out
}
