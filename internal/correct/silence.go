package correct

import "math"

// pcmSubWindowMs is the width of the inner window over which a candidate
// cut point's standard deviation is measured (spec.md §4.7: "sliding-window
// standard deviation over int32 PCM samples").
const pcmSubWindowMs = 10.0

// toPCM32 rescales canonical [-1, 1] float32 samples to the int32-amplitude
// domain the silence threshold (spec.md §4.7's "< 100.0") was tuned
// against, i.e. 16-bit-scale amplitudes widened to int32.
func toPCM32(samples []float32) []int32 {
	out := make([]int32, len(samples))
	for i, s := range samples {
		out[i] = int32(s * 32768)
	}
	return out
}

// windowStdDev returns the standard deviation of samples[start:end].
func windowStdDev(samples []int32, start, end int) float64 {
	if end > len(samples) {
		end = len(samples)
	}
	if start < 0 {
		start = 0
	}
	if end-start < 2 {
		return math.MaxFloat64
	}
	var sum, sumSq float64
	n := float64(end - start)
	for _, s := range samples[start:end] {
		v := float64(s)
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// findSilentCut searches samples within [centerIdx-windowSamples,
// centerIdx+windowSamples] for the index closest to centerIdx whose
// pcmSubWindowMs window has a standard deviation below threshold. It
// returns ok=false if no qualifying index exists in the search window.
func findSilentCut(samples []int32, sampleRate, centerIdx, windowSamples int, threshold float64) (idx int, ok bool) {
	subWin := int(pcmSubWindowMs / 1000 * float64(sampleRate))
	if subWin < 1 {
		subWin = 1
	}

	lo := centerIdx - windowSamples
	hi := centerIdx + windowSamples
	if lo < 0 {
		lo = 0
	}
	if hi > len(samples) {
		hi = len(samples)
	}

	checked := make(map[int]bool)
	for offset := 0; offset <= windowSamples; offset++ {
		for _, cand := range []int{centerIdx - offset, centerIdx + offset} {
			if cand < lo || cand >= hi || checked[cand] {
				continue
			}
			checked[cand] = true
			if windowStdDev(samples, cand, cand+subWin) < threshold {
				return cand, true
			}
		}
	}
	return centerIdx, false
}
