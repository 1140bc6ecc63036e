// Package analysis drives a viewing session: it loads the input volume,
// derives the Gaussian, median and segmented variants and computes the
// per-variant SNR statistics.
//
// The pipeline consists of these steps:
// 1. Loading the original volume (DICOM series or NIfTI file)
// 2. Gaussian smoothing
// 3. Median filtering
// 4. Global thresholding and masking of the original volume
// 5. Computing the SNR statistics for the three variants
package analysis

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"mrimetrics/internal/logger"
	"mrimetrics/internal/models"
	"mrimetrics/pkg/filters"
	"mrimetrics/pkg/input"
	"mrimetrics/pkg/metrics"
	"mrimetrics/pkg/reader"
)

// ErrNotLoaded is returned when Process runs before a volume was loaded
var ErrNotLoaded = errors.New("no volume loaded")

// Params holds the session parameters
type Params struct {
	// InputPath is the DICOM directory, DICOM file or NIfTI file to analyse
	InputPath string

	// Kind is the classification of InputPath
	Kind input.Kind

	// Filters configures the denoising filters
	Filters filters.Params

	// Statistics selects the loop extent of the SNR computation
	Statistics metrics.Options
}

// Analyzer owns every volume of a session. Volumes are read-only once built.
type Analyzer struct {
	params *Params
	log    zerolog.Logger

	// volumes indexed by models.Variant
	volumes [4]*models.Volume

	// mask is the binary threshold output (1 inside the interval)
	mask *models.Volume

	interval models.ThresholdInterval
	stats    [3]metrics.VariantStats
	summary  metrics.Summary
}

// NewAnalyzer creates an analyzer for the provided parameters
func NewAnalyzer(params *Params, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		params: params,
		log:    logger.Component(log, "analysis"),
	}
}

// NewAnalyzerWithVolume creates an analyzer around an already loaded volume
func NewAnalyzerWithVolume(params *Params, vol *models.Volume, log zerolog.Logger) *Analyzer {
	a := NewAnalyzer(params, log)
	a.setOriginal(vol)
	return a
}

// Load reads the input volume and summarizes it
func (a *Analyzer) Load() error {
	a.log.Info().Str("path", a.params.InputPath).Msg("step 1: loading volume")

	vol, err := reader.New(a.log).Read(a.params.InputPath, a.params.Kind)
	if err != nil {
		return fmt.Errorf("failed to load volume: %w", err)
	}

	a.setOriginal(vol)
	return nil
}

func (a *Analyzer) setOriginal(vol *models.Volume) {
	a.volumes[models.Original] = vol
	a.summary = metrics.Summarize(vol)

	a.log.Debug().
		Float64("min", a.summary.Min).
		Float64("max", a.summary.Max).
		Float64("mean", a.summary.Mean).
		Float64("stddev", a.summary.StdDev).
		Msg("volume summary")
}

// Process runs the filters, the segmentation and the statistics for interval
func (a *Analyzer) Process(interval models.ThresholdInterval) error {
	original := a.volumes[models.Original]
	if original == nil {
		return ErrNotLoaded
	}
	a.interval = interval

	a.log.Info().
		Float64("sigma", a.params.Filters.Sigma).
		Int("kernel", a.params.Filters.KernelSize()).
		Msg("step 2: applying Gaussian smoothing")
	gaussian, err := filters.Gaussian(original, a.params.Filters)
	if err != nil {
		return fmt.Errorf("failed to smooth volume: %w", err)
	}

	a.log.Info().Int("kernel", a.params.Filters.MedianKernel).Msg("step 3: applying median filter")
	median, err := filters.Median(original, a.params.Filters)
	if err != nil {
		return fmt.Errorf("failed to median filter volume: %w", err)
	}

	a.log.Info().
		Float64("lower", interval.Lower).
		Float64("upper", interval.Upper).
		Msg("step 4: segmenting volume")
	mask, err := filters.Threshold(original, interval, a.params.Filters.Workers)
	if err != nil {
		return fmt.Errorf("failed to threshold volume: %w", err)
	}
	segmentation, err := filters.ApplyMask(original, mask, a.params.Filters.Workers)
	if err != nil {
		return fmt.Errorf("failed to mask volume: %w", err)
	}

	a.log.Info().Msg("step 5: computing SNR statistics")
	stats, err := metrics.ComputeStatsWithOptions(original, gaussian, median, interval, a.params.Statistics)
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}

	for _, s := range stats {
		if err := s.Err(); err != nil {
			a.log.Warn().Err(err).Msg("statistics are not finite")
		}
	}

	a.volumes[models.Gaussian] = gaussian
	a.volumes[models.Median] = median
	a.volumes[models.Segmentation] = segmentation
	a.mask = mask
	a.stats = stats

	return nil
}

// Volume returns one of the session volumes, nil until it has been built
func (a *Analyzer) Volume(v models.Variant) *models.Volume {
	if v < models.Original || v > models.Segmentation {
		return nil
	}
	return a.volumes[v]
}

// Mask returns the binary segmentation mask
func (a *Analyzer) Mask() *models.Volume {
	return a.mask
}

// Interval returns the threshold interval of the last Process call
func (a *Analyzer) Interval() models.ThresholdInterval {
	return a.interval
}

// Stats returns the statistics of the original, Gaussian and median volumes
func (a *Analyzer) Stats() [3]metrics.VariantStats {
	return a.stats
}

// Summary returns the intensity summary of the original volume
func (a *Analyzer) Summary() metrics.Summary {
	return a.summary
}

// SegmentedFraction is the share of voxels inside the threshold interval
func (a *Analyzer) SegmentedFraction() float64 {
	if a.mask == nil || len(a.mask.Data) == 0 {
		return 0
	}

	var inside int
	for _, v := range a.mask.Data {
		if v != 0 {
			inside++
		}
	}
	return float64(inside) / float64(len(a.mask.Data))
}
