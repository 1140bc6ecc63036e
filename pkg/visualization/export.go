package visualization

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"mrimetrics/internal/models"
	"mrimetrics/pkg/metrics"
)

// ExportSet is what Export writes: the variant volumes, the display window and
// the histogram of the original volume
type ExportSet struct {
	Volumes   map[models.Variant]*models.Volume
	Windowing Windowing

	// Axis is the slicing axis, "x", "y" or "z" (the default when empty)
	Axis string

	Interval  models.ThresholdInterval
	Histogram *metrics.Histogram
}

// Export writes every variant as a JPEG sequence along set.Axis under
// dir/<variant>/ and the histogram chart as dir/histogram.png
func Export(dir string, set ExportSet, log zerolog.Logger) error {
	axis := set.Axis
	if axis == "" {
		axis = "z"
	}

	for _, variant := range []models.Variant{models.Original, models.Gaussian, models.Median, models.Segmentation} {
		vol := set.Volumes[variant]
		if vol == nil {
			continue
		}

		outDir := filepath.Join(dir, variant.String())
		viewer := NewViewer(vol, set.Windowing.Level, set.Windowing.Window)
		if err := viewer.SaveSliceSequence(axis, outDir); err != nil {
			return fmt.Errorf("failed to export %s slices: %w", variant, err)
		}

		log.Info().Str("variant", variant.String()).Str("dir", outDir).Str("axis", axis).Msg("slices exported")
	}

	if set.Histogram != nil {
		filename := filepath.Join(dir, "histogram.png")
		if err := SaveHistogramChart(*set.Histogram, set.Interval, filename); err != nil {
			return err
		}
		log.Info().Str("file", filename).Msg("histogram exported")
	}

	return nil
}
