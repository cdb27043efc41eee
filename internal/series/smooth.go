// Package series holds the numeric transforms applied to a snapshot before
// it is plotted: causal weighted smoothing and centered sample windows.
package series

// WMA returns the causal weighted moving average of values.
//
// Point i averages the last min(window, i+1) values ending at i, weighting
// the newest value k, the one before k-1, down to 1. The first window-1
// points therefore use partial windows. The result has the same length as
// values; a window below 2 returns an unmodified copy.
func WMA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window < 2 {
		copy(out, values)
		return out
	}

	for i := range values {
		k := window
		if i+1 < k {
			k = i + 1
		}

		var sum, weights float64
		for j := 0; j < k; j++ {
			w := float64(k - j)
			sum += w * values[i-j]
			weights += w
		}
		out[i] = sum / weights
	}
	return out
}

// ToFloat converts integer millisecond values to float64 for smoothing.
func ToFloat(values []uint64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
