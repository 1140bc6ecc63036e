// Package metrics computes the foreground/background signal-to-noise ratio of
// a volume and its denoised variants under a global threshold interval.
//
// The statistics loops stop one voxel short of every axis (x < Width-1,
// y < Height-1, z < Depth-1). That sub-extent is kept as the default so results
// match earlier measurements; set Options.Extent to FullExtent to include the
// last plane, row and column.
//
// Empty foreground or background sets are not an error: the affected means,
// variances and SNR become NaN or Inf following IEEE 754 and
// VariantStats.Degenerate reports it.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"mrimetrics/internal/models"
)

// ErrDegenerateThreshold describes a threshold that leaves the foreground or
// background empty, or a background without spread
var ErrDegenerateThreshold = errors.New("degenerate threshold")

// Extent selects the voxel range the statistics iterate over
type Extent int

const (
	// SubExtent iterates [0, dim-1) on each axis
	SubExtent Extent = iota

	// FullExtent iterates [0, dim) on each axis
	FullExtent
)

// Options tune ComputeStatsWithOptions
type Options struct {
	Extent Extent
}

// VariantStats holds the per-variant aggregates
type VariantStats struct {
	Variant models.Variant

	ForegroundCount int
	ForegroundMean  float64

	BackgroundCount    int
	BackgroundMean     float64
	BackgroundVariance float64
	BackgroundStdDev   float64

	// SNR is ForegroundMean / BackgroundStdDev
	SNR float64
}

// Degenerate reports whether any derived value is NaN or infinite
func (s VariantStats) Degenerate() bool {
	for _, v := range []float64{s.ForegroundMean, s.BackgroundMean, s.BackgroundStdDev, s.SNR} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// Err returns an error wrapping ErrDegenerateThreshold when the stats are
// degenerate, nil otherwise
func (s VariantStats) Err() error {
	if !s.Degenerate() {
		return nil
	}

	switch {
	case s.ForegroundCount == 0:
		return fmt.Errorf("%s: %w: empty foreground", s.Variant, ErrDegenerateThreshold)
	case s.BackgroundCount == 0:
		return fmt.Errorf("%s: %w: empty background", s.Variant, ErrDegenerateThreshold)
	}
	return fmt.Errorf("%s: %w: zero background deviation", s.Variant, ErrDegenerateThreshold)
}

// ComputeStats runs the default sub-extent statistics over the original,
// Gaussian and median volumes, returned in that order
func ComputeStats(original, gaussian, median *models.Volume, interval models.ThresholdInterval) ([3]VariantStats, error) {
	return ComputeStatsWithOptions(original, gaussian, median, interval, Options{})
}

// ComputeStatsWithOptions is ComputeStats with an explicit extent. The error
// is reserved for missing or mismatched volumes.
func ComputeStatsWithOptions(original, gaussian, median *models.Volume, interval models.ThresholdInterval, opts Options) ([3]VariantStats, error) {
	var result [3]VariantStats

	volumes := [3]*models.Volume{original, gaussian, median}
	variants := [3]models.Variant{models.Original, models.Gaussian, models.Median}

	for i, vol := range volumes {
		if vol == nil {
			return result, fmt.Errorf("%s volume is nil", variants[i])
		}
		if !original.SameShape(vol) {
			return result, fmt.Errorf("%s volume is %dx%dx%d, expected %dx%dx%d", variants[i],
				vol.Width, vol.Height, vol.Depth, original.Width, original.Height, original.Depth)
		}
	}

	for i, vol := range volumes {
		result[i] = computeVariant(vol, interval, opts.Extent)
		result[i].Variant = variants[i]
	}

	return result, nil
}

// computeVariant makes two passes: the first finds the background mean, the
// second the foreground mean and the background variance around that mean
func computeVariant(vol *models.Volume, interval models.ThresholdInterval, extent Extent) VariantStats {
	dimX, dimY, dimZ := vol.Width, vol.Height, vol.Depth
	if extent == SubExtent {
		dimX, dimY, dimZ = dimX-1, dimY-1, dimZ-1
	}

	var stats VariantStats

	backgroundSum := 0.0
	for z := 0; z < dimZ; z++ {
		for y := 0; y < dimY; y++ {
			for x := 0; x < dimX; x++ {
				value := vol.At(x, y, z)
				if !interval.Contains(value) {
					backgroundSum += value
					stats.BackgroundCount++
				}
			}
		}
	}
	stats.BackgroundMean = backgroundSum / float64(stats.BackgroundCount)

	foregroundSum := 0.0
	varianceSum := 0.0
	for z := 0; z < dimZ; z++ {
		for y := 0; y < dimY; y++ {
			for x := 0; x < dimX; x++ {
				value := vol.At(x, y, z)
				if interval.Contains(value) {
					foregroundSum += value
					stats.ForegroundCount++
				} else {
					diff := value - stats.BackgroundMean
					varianceSum += diff * diff
				}
			}
		}
	}

	stats.ForegroundMean = foregroundSum / float64(stats.ForegroundCount)
	stats.BackgroundVariance = varianceSum / float64(stats.BackgroundCount)
	stats.BackgroundStdDev = math.Sqrt(stats.BackgroundVariance)
	stats.SNR = stats.ForegroundMean / stats.BackgroundStdDev

	return stats
}
