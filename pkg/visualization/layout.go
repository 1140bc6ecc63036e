package visualization

import (
	"fmt"

	"mrimetrics/internal/models"
)

// LayoutVariants returns the variants shown for a viewport count
func LayoutVariants(viewports int) ([]models.Variant, error) {
	switch viewports {
	case 1:
		return []models.Variant{models.Original}, nil
	case 2:
		return []models.Variant{models.Original, models.Segmentation}, nil
	case 4:
		return []models.Variant{models.Original, models.Gaussian, models.Median, models.Segmentation}, nil
	}
	return nil, fmt.Errorf("unsupported viewport count %d (must be 1, 2 or 4)", viewports)
}

// Windowed reports whether a variant follows the level/window keys. The
// segmentation view keeps its initial mapping.
func Windowed(v models.Variant) bool {
	return v != models.Segmentation
}
