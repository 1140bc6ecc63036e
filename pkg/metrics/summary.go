package metrics

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"mrimetrics/internal/models"
)

// Summary describes the intensity distribution of a whole volume
type Summary struct {
	Min, Max     float64
	Mean, StdDev float64

	// Median and the 1st/99th percentiles, robust against isolated hot voxels
	Median  float64
	P1, P99 float64
}

// Summarize computes the distribution summary over every voxel.
// An empty volume yields NaN for every field.
func Summarize(vol *models.Volume) Summary {
	nan := math.NaN()
	if vol == nil || len(vol.Data) == 0 {
		return Summary{Min: nan, Max: nan, Mean: nan, StdDev: nan, Median: nan, P1: nan, P99: nan}
	}

	mean, std := stat.MeanStdDev(vol.Data, nil)
	s := Summary{
		Min:    floats.Min(vol.Data),
		Max:    floats.Max(vol.Data),
		Mean:   mean,
		StdDev: std,
		Median: nan,
		P1:     nan,
		P99:    nan,
	}

	data := stats.Float64Data(vol.Data)
	if median, err := data.Median(); err == nil {
		s.Median = median
	}
	if p, err := data.Percentile(1); err == nil {
		s.P1 = p
	}
	if p, err := data.Percentile(99); err == nil {
		s.P99 = p
	}

	return s
}

// Window returns a display level/window pair spanning the full intensity range
func (s Summary) Window() (level, window float64) {
	return span(s.Min, s.Max)
}

// RobustWindow spans the 1st to 99th percentile instead of the full range
func (s Summary) RobustWindow() (level, window float64) {
	if math.IsNaN(s.P1) || math.IsNaN(s.P99) {
		return s.Window()
	}
	return span(s.P1, s.P99)
}

func span(lo, hi float64) (level, window float64) {
	window = hi - lo
	if window <= 0 || math.IsNaN(window) {
		window = 1
	}
	return lo + (hi-lo)/2, window
}
