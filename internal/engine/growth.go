package engine

import "math"

// PercentChange is (current-previous)/previous*100. A zero previous value
// yields 0, and so does any non-finite result.
func PercentChange(current, previous float64) float64 {
	if previous == 0 || math.IsNaN(previous) || math.IsNaN(current) {
		return 0
	}
	r := (current - previous) / previous * 100
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return 0
	}
	return r
}

// Changes returns the point-over-point percent change of series; the first
// element is always 0.
func Changes(series []float64) []float64 {
	out := make([]float64, len(series))
	for i := 1; i < len(series); i++ {
		out[i] = PercentChange(series[i], series[i-1])
	}
	return out
}
