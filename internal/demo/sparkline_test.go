package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparkline(t *testing.T) {
	a := Sparkline(7, 1000, 12)
	b := Sparkline(7, 1000, 12)

	require.Len(t, a, 12)
	assert.Equal(t, a, b, "same seed, same series")
	for _, v := range a {
		assert.GreaterOrEqual(t, v, 850.0)
		assert.LessOrEqual(t, v, 1150.0)
	}

	assert.NotEqual(t, a, Sparkline(8, 1000, 12))
}

func TestSparkline_Empty(t *testing.T) {
	assert.Empty(t, Sparkline(1, 1000, 0))
	assert.Equal(t, []float64{0, 0, 0}, Sparkline(1, 0, 3))
}
