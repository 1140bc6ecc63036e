package visualization

import (
	"os"
	"path/filepath"
	"testing"

	"mrimetrics/internal/logger"
	"mrimetrics/internal/models"
	"mrimetrics/pkg/metrics"
)

func TestExport(t *testing.T) {
	dir := t.TempDir()
	vol := createLayeredVolume(4, 4, 2)

	hist, err := metrics.NewHistogram(vol, 8)
	if err != nil {
		t.Fatalf("Failed to build histogram: %v", err)
	}

	set := ExportSet{
		Volumes: map[models.Variant]*models.Volume{
			models.Original:     vol,
			models.Segmentation: vol,
		},
		Windowing: Windowing{Level: 50, Window: 100},
		Interval:  models.ThresholdInterval{Lower: 20, Upper: 80},
		Histogram: &hist,
	}

	if err := Export(dir, set, logger.Nop()); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	for _, name := range []string{
		filepath.Join("original", "slice_z_000.jpg"),
		filepath.Join("original", "slice_z_001.jpg"),
		filepath.Join("segmentation", "slice_z_001.jpg"),
		"histogram.png",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}

	// Variants without a volume are skipped
	if _, err := os.Stat(filepath.Join(dir, "gaussian")); !os.IsNotExist(err) {
		t.Errorf("Expected no gaussian directory, got %v", err)
	}
}

func TestExportAlongAxis(t *testing.T) {
	vol := createLayeredVolume(3, 2, 2)

	tests := []struct {
		axis  string
		count int
	}{
		{"x", 3},
		{"y", 2},
	}

	for _, tt := range tests {
		dir := t.TempDir()
		set := ExportSet{
			Volumes:   map[models.Variant]*models.Volume{models.Original: vol},
			Windowing: Windowing{Level: 50, Window: 100},
			Axis:      tt.axis,
		}

		if err := Export(dir, set, logger.Nop()); err != nil {
			t.Fatalf("Export along %s failed: %v", tt.axis, err)
		}

		matches, err := filepath.Glob(filepath.Join(dir, "original", "slice_"+tt.axis+"_*.jpg"))
		if err != nil {
			t.Fatalf("Glob failed: %v", err)
		}
		if len(matches) != tt.count {
			t.Errorf("Expected %d slices along %s, got %d", tt.count, tt.axis, len(matches))
		}
	}
}

func TestExportRejectsUnknownAxis(t *testing.T) {
	set := ExportSet{
		Volumes:   map[models.Variant]*models.Volume{models.Original: createLayeredVolume(2, 2, 2)},
		Windowing: Windowing{Level: 50, Window: 100},
		Axis:      "w",
	}
	if err := Export(t.TempDir(), set, logger.Nop()); err == nil {
		t.Error("Expected error for an unknown axis, got nil")
	}
}

func TestSaveHistogramChartEmpty(t *testing.T) {
	err := SaveHistogramChart(metrics.Histogram{}, models.ThresholdInterval{}, filepath.Join(t.TempDir(), "h.png"))
	if err == nil {
		t.Error("Expected error for an empty histogram, got nil")
	}
}
