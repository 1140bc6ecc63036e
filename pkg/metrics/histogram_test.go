package metrics

import (
	"testing"

	"mrimetrics/internal/models"
)

func TestNewHistogram(t *testing.T) {
	vol := sequentialVolume(2, 2, 2) // values 1..8
	h, err := NewHistogram(vol, 4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(h.Counts) != 4 || len(h.Dividers) != 5 {
		t.Fatalf("Expected 4 bins and 5 dividers, got %d and %d", len(h.Counts), len(h.Dividers))
	}

	var total float64
	for _, c := range h.Counts {
		total += c
	}
	if total != 8 {
		t.Errorf("Expected every voxel counted (8), got %f", total)
	}

	// Edges 1, 2.75, 4.5, 6.25, 8+
	want := []float64{2, 2, 2, 2}
	for i := range want {
		if h.Counts[i] != want[i] {
			t.Errorf("Bin %d: expected %f, got %f", i, want[i], h.Counts[i])
		}
	}

	centers := h.Centers()
	assertClose(t, "first center", 1.875, centers[0])
}

func TestNewHistogramFlatVolume(t *testing.T) {
	h, err := NewHistogram(models.NewVolume(3, 3, 1), 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if h.Counts[0] != 9 {
		t.Errorf("Expected all 9 voxels in the first bin, got %f", h.Counts[0])
	}
}

func TestNewHistogramRejectsBadInput(t *testing.T) {
	if _, err := NewHistogram(&models.Volume{}, 4); err == nil {
		t.Error("Expected error for empty volume, got nil")
	}
	if _, err := NewHistogram(sequentialVolume(2, 2, 1), 0); err == nil {
		t.Error("Expected error for zero bins, got nil")
	}
}
