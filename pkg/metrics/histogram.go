package metrics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"mrimetrics/internal/models"
)

// Histogram is an intensity histogram with equally wide bins
type Histogram struct {
	// Dividers holds len(Counts)+1 bin edges, ascending
	Dividers []float64
	Counts   []float64
}

// Centers returns the midpoint of every bin
func (h Histogram) Centers() []float64 {
	centers := make([]float64, len(h.Counts))
	for i := range centers {
		centers[i] = (h.Dividers[i] + h.Dividers[i+1]) / 2
	}
	return centers
}

// NewHistogram bins every voxel of vol into bins equal-width bins
func NewHistogram(vol *models.Volume, bins int) (Histogram, error) {
	if vol == nil || len(vol.Data) == 0 {
		return Histogram{}, fmt.Errorf("cannot build a histogram of an empty volume")
	}
	if bins < 1 {
		return Histogram{}, fmt.Errorf("histogram needs at least one bin, got %d", bins)
	}

	sorted := make([]float64, len(vol.Data))
	copy(sorted, vol.Data)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi <= lo {
		hi = lo + 1
	}

	// The upper edge is exclusive in stat.Histogram, so nudge it past the max
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	return Histogram{Dividers: dividers, Counts: counts}, nil
}
