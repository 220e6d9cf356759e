// Package demo holds presentation-only decoration that has no basis in the
// transaction data.
package demo

import (
	"math"
	"math/rand/v2"
)

// Sparkline returns points values scattered within 15% of base. The same
// seed always yields the same series.
func Sparkline(seed uint64, base float64, points int) []float64 {
	if points <= 0 {
		return []float64{}
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, points)
	for i := range out {
		v := r.Float64()*0.3 - 0.15
		out[i] = math.Round(base * (1 + v))
	}
	return out
}
