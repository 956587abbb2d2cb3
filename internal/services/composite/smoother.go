package composite

import "gonum.org/v1/gonum/stat"

// DefaultTrendWindow is the number of rows averaged by the trend.
const DefaultTrendWindow = 14

// TrailingMean returns, for each position, the mean of the last window values
// up to and including it. The window counts rows, not calendar days; the first
// window-1 positions average whatever history exists.
func TrailingMean(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	for i := range values {
		lo := max(0, i-window+1)
		out[i] = stat.Mean(values[lo:i+1], nil)
	}
	return out
}
