package render

import (
	"fmt"

	"github.com/rileyhilliard/pingspark/internal/aggregate"
)

// Stats summarises one snapshot.
type Stats struct {
	// Avg is the sum of the non-zero slots divided by the window length, so
	// a window that is still filling reads low.
	Avg float64
	Min uint64
	Max uint64
}

// ComputeStats summarises the raw (unsmoothed) snapshot.
func ComputeStats(snap aggregate.Snapshot) Stats {
	if len(snap) == 0 {
		return Stats{}
	}

	s := Stats{Min: snap[0], Max: snap[0]}
	var sum uint64
	for _, v := range snap {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
	}
	s.Avg = float64(sum) / float64(len(snap))
	return s
}

// String renders the stats header line.
func (s Stats) String() string {
	return fmt.Sprintf("AVG: %.2f ms | MIN: %d ms | MAX: %d ms", s.Avg, s.Min, s.Max)
}
