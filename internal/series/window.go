package series

// windowBounds returns the inclusive [lower, upper] index range of a window
// of size centered on index. Even sizes shift one position to the right, so
// the window covers size/2-1 points before index and size/2 after it.
func windowBounds(size, index int) (lower, upper int) {
	half := size / 2
	lower = index - half
	if size%2 == 0 {
		lower++
	}
	upper = index + half
	return lower, upper
}

// SamplesWindow returns the values of a window of size centered on index.
// Positions before the start of values are left-padded with zeros and
// positions past the end are filled with zeros, so the result always holds
// exactly size values.
func SamplesWindow(values []float64, size, index int) []float64 {
	if size < 1 {
		return nil
	}
	lower, upper := windowBounds(size, index)

	out := make([]float64, 0, upper-lower+1)
	for i := lower; i <= upper; i++ {
		if i < 0 || i >= len(values) {
			out = append(out, 0)
			continue
		}
		out = append(out, values[i])
	}
	return out
}

// SamplesWindowPartial returns the window of size centered on index clamped
// to the bounds of values, without padding. The clamped upper bound is
// exclusive, so the point at the upper edge is never included.
func SamplesWindowPartial(values []float64, size, index int) []float64 {
	if size < 1 || len(values) == 0 {
		return nil
	}
	lower, upper := windowBounds(size, index)
	if lower < 0 {
		lower = 0
	}
	if upper > len(values)-1 {
		upper = len(values) - 1
	}
	if lower >= upper {
		return []float64{}
	}

	out := make([]float64, upper-lower)
	copy(out, values[lower:upper])
	return out
}
