package composite

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailingMeanShortHistory(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	got := TrailingMean(values, DefaultTrendWindow)
	require.Len(t, got, 5)
	assert.InDelta(t, 1.0, got[0], 1e-12)
	assert.InDelta(t, 1.5, got[1], 1e-12)
	assert.InDelta(t, 3.0, got[4], 1e-12)
}

func TestTrailingMeanFullWindow(t *testing.T) {
	got := TrailingMean([]float64{2, 4, 6, 8, 10}, 3)
	assert.InDeltaSlice(t, []float64{2, 3, 4, 6, 8}, got, 1e-12)
}

func TestTrailingMeanDefinedEverywhere(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = float64(i % 7)
	}
	for _, w := range []int{0, 1, 14, 100} {
		got := TrailingMean(values, w)
		require.Len(t, got, len(values))
		for i, v := range got {
			assert.False(t, math.IsNaN(v), "window %d pos %d", w, i)
		}
	}
	assert.Empty(t, TrailingMean(nil, 14))
}
