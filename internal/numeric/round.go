// Package numeric holds the small set of numeric primitives shared across
// the pipeline's components that must agree on rounding behavior: the
// container probe (C2), the correlator's delay rounding (C4/C5), and the
// delay normalizer (C10) all round millisecond delays the same way, so the
// rule lives in one place instead of being re-derived per package.
package numeric

import "math"

// RoundHalfToEven rounds v to the nearest integer, breaking an exact .5
// tie toward the even neighbor (banker's rounding). Required wherever
// spec.md calls for round_half_to_even, notably because
// container/delay math may be negative and plain truncation is not
// equivalent.
func RoundHalfToEven(v float64) int64 {
	floor := math.Floor(v)
	diff := v - floor
	switch {
	case diff < 0.5:
		return int64(floor)
	case diff > 0.5:
		return int64(floor) + 1
	default:
		if int64(floor)%2 == 0 {
			return int64(floor)
		}
		return int64(floor) + 1
	}
}
