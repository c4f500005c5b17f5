package report

import "math"

// SafeNumber coerces non-finite input to zero. Upstream parsing is outside
// this package, so a NaN or Inf that slips through must not poison totals.
func SafeNumber(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// SafeDivide returns numerator/denominator, or fallback when the denominator
// is zero. It never returns NaN or Inf; every ratio in this package routes
// through it.
func SafeDivide(numerator, denominator, fallback float64) float64 {
	if denominator == 0 {
		return fallback
	}
	return SafeNumber(numerator / denominator)
}
