package analysis

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mrimetrics/internal/logger"
	"mrimetrics/internal/models"
	"mrimetrics/pkg/filters"
	"mrimetrics/pkg/input"
	"mrimetrics/pkg/metrics"
	"mrimetrics/pkg/reader"
)

// createTestVolume builds a volume with a bright cube in a dim, noisy-ish background
func createTestVolume() *models.Volume {
	vol := models.NewVolume(8, 8, 6)
	for z := 0; z < vol.Depth; z++ {
		for y := 0; y < vol.Height; y++ {
			for x := 0; x < vol.Width; x++ {
				v := float64(10 + (x+y+z)%3)
				if x >= 2 && x < 6 && y >= 2 && y < 6 && z >= 1 && z < 5 {
					v = 200
				}
				vol.Set(x, y, z, v)
			}
		}
	}
	return vol
}

func testParams() *Params {
	return &Params{
		InputPath: "synthetic",
		Kind:      input.NiftiFile,
		Filters:   filters.DefaultParams(),
	}
}

func TestProcessBeforeLoad(t *testing.T) {
	a := NewAnalyzer(testParams(), logger.Nop())
	err := a.Process(models.ThresholdInterval{Lower: 100, Upper: 300})
	if !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Expected ErrNotLoaded, got %v", err)
	}
}

func TestLoadUnreadableInput(t *testing.T) {
	params := testParams()
	params.InputPath = filepath.Join(t.TempDir(), "missing")
	params.Kind = input.DicomSeries

	a := NewAnalyzer(params, logger.Nop())
	if err := a.Load(); !errors.Is(err, reader.ErrUnreadableInput) {
		t.Errorf("Expected ErrUnreadableInput, got %v", err)
	}
}

func TestVolumeAccessors(t *testing.T) {
	vol := createTestVolume()
	a := NewAnalyzerWithVolume(testParams(), vol, logger.Nop())

	if a.Volume(models.Original) != vol {
		t.Error("Expected the original volume to be returned")
	}
	if a.Volume(models.Gaussian) != nil {
		t.Error("Expected no Gaussian volume before Process")
	}
	if a.Volume(models.Variant(9)) != nil {
		t.Error("Expected nil for an unknown variant")
	}
	if a.Summary().Max != 200 {
		t.Errorf("Expected summary max 200, got %f", a.Summary().Max)
	}
	if a.SegmentedFraction() != 0 {
		t.Errorf("Expected zero segmented fraction before Process, got %f", a.SegmentedFraction())
	}
}

// TestProcessPipeline runs the whole pipeline through OpenCV
func TestProcessPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping OpenCV pipeline test in short mode")
	}

	vol := createTestVolume()
	a := NewAnalyzerWithVolume(testParams(), vol, logger.Nop())
	interval := models.ThresholdInterval{Lower: 100, Upper: 300}

	if err := a.Process(interval); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	t.Run("Volumes", func(t *testing.T) {
		for _, v := range []models.Variant{models.Gaussian, models.Median, models.Segmentation} {
			out := a.Volume(v)
			if out == nil {
				t.Fatalf("Expected %s volume", v)
			}
			if !out.SameShape(vol) {
				t.Errorf("Expected %s volume to match the original shape", v)
			}
		}
	})

	t.Run("Segmentation", func(t *testing.T) {
		seg := a.Volume(models.Segmentation)
		if seg.At(3, 3, 2) != 200 {
			t.Errorf("Expected cube voxel kept (200), got %f", seg.At(3, 3, 2))
		}
		if seg.At(0, 0, 0) != 0 {
			t.Errorf("Expected background voxel masked (0), got %f", seg.At(0, 0, 0))
		}

		// 4x4x4 cube out of 8x8x6
		want := 64.0 / 384.0
		if got := a.SegmentedFraction(); got != want {
			t.Errorf("Expected segmented fraction %f, got %f", want, got)
		}
	})

	t.Run("Statistics", func(t *testing.T) {
		stats := a.Stats()
		want, err := metrics.ComputeStats(vol, a.Volume(models.Gaussian), a.Volume(models.Median), interval)
		if err != nil {
			t.Fatalf("ComputeStats failed: %v", err)
		}
		if stats != want {
			t.Errorf("Expected stats %+v, got %+v", want, stats)
		}

		original := stats[models.Original]
		if original.ForegroundMean != 200 {
			t.Errorf("Expected foreground mean 200, got %f", original.ForegroundMean)
		}
		if original.Degenerate() {
			t.Error("Expected finite statistics for the original volume")
		}
	})

	t.Run("Report", func(t *testing.T) {
		var buf bytes.Buffer
		if err := a.WriteReport(&buf); err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		for _, name := range []string{"original", "gaussian", "median"} {
			if !strings.Contains(buf.String(), name) {
				t.Errorf("Expected report to mention %s", name)
			}
		}

		path := filepath.Join(t.TempDir(), "reports", "snr.csv")
		if err := a.SaveReportCSV(path); err != nil {
			t.Fatalf("SaveReportCSV failed: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read report: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 4 {
			t.Errorf("Expected header plus 3 rows, got %d lines", len(lines))
		}
		if !strings.HasPrefix(lines[0], "variant,") {
			t.Errorf("Expected CSV header to start with variant, got %q", lines[0])
		}
	})
}
