package correlate

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/backmassage/syncmux/internal/config"
)

// phatEpsilon is the contractual GCC-PHAT phase-normalization epsilon
// (spec.md §4.4 step 3): changing it shifts numerical results, so it must
// never be tuned away.
const phatEpsilon = 1e-9

// crossSpectrum computes G[k] = FFT(tgt)[k] * conj(FFT(ref)[k]) for
// zero-padded ref/tgt of length n, returning the raw (un-normalized)
// cross-spectrum.
func crossSpectrum(fft *fourier.CmplxFFT, ref, tgt []float64, n int) []complex128 {
	refC := toComplexPadded(ref, n)
	tgtC := toComplexPadded(tgt, n)

	refF := fft.Coefficients(nil, refC)
	tgtF := fft.Coefficients(nil, tgtC)

	g := make([]complex128, n)
	for k := range g {
		g[k] = tgtF[k] * cmplx.Conj(refF[k])
	}
	return g
}

func toComplexPadded(x []float64, n int) []complex128 {
	out := make([]complex128, n)
	for i, v := range x {
		out[i] = complex(v, 0)
	}
	return out
}

// normalize applies the method-specific weighting to a raw cross-spectrum,
// producing the normalized spectrum that is inverse-transformed to get the
// correlation sequence.
func normalize(method config.CorrelationMethod, g []complex128, ref, tgt []float64, n int, fft *fourier.CmplxFFT) []complex128 {
	switch method {
	case config.MethodGCCPHAT:
		out := make([]complex128, len(g))
		for k, v := range g {
			out[k] = v / complex(cmplx.Abs(v)+phatEpsilon, 0)
		}
		return out
	case config.MethodSCOT:
		refF := fft.Coefficients(nil, toComplexPadded(ref, n))
		tgtF := fft.Coefficients(nil, toComplexPadded(tgt, n))
		out := make([]complex128, len(g))
		for k, v := range g {
			denom := math.Sqrt(cmplx.Abs(refF[k]*cmplx.Conj(refF[k]))*cmplx.Abs(tgtF[k]*cmplx.Conj(tgtF[k]))) + phatEpsilon
			out[k] = v / complex(denom, 0)
		}
		return out
	case config.MethodWhitened:
		refF := fft.Coefficients(nil, toComplexPadded(ref, n))
		tgtF := fft.Coefficients(nil, toComplexPadded(tgt, n))
		out := make([]complex128, len(g))
		for k, v := range g {
			denom := cmplx.Abs(refF[k])*cmplx.Abs(tgtF[k]) + phatEpsilon
			out[k] = v / complex(denom, 0)
		}
		return out
	case config.MethodSCC:
		fallthrough
	default:
		return g
	}
}

// peakLagAndConfidence finds the correlation peak, converts its index to a
// signed lag in samples, and computes confidence as the peak magnitude
// normalized by the RMS of the whole correlation sequence, then scaled by
// 100/sqrt(n) and clamped to [0, 100] so it compares against MinMatchPct
// (spec.md §4.4 steps 5-7).
func peakLagAndConfidence(corr []complex128, n int) (lagSamples int, confidence float64) {
	seq := make([]float64, n)
	var sumSq float64
	peakIdx := 0
	peakVal := math.Inf(-1)
	for i, c := range corr {
		v := real(c)
		seq[i] = v
		sumSq += v * v
		if v > peakVal {
			peakVal = v
			peakIdx = i
		}
	}

	rms := math.Sqrt(sumSq / float64(n))
	if rms > 0 {
		confidence = (peakVal / rms) * 100.0 / math.Sqrt(float64(n))
	}
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}

	lag := peakIdx
	if peakIdx > n/2 {
		lag = peakIdx - n
	}
	return lag, confidence
}
