// Package visualization renders volume slices through a grayscale
// level/window mapping, exports them as JPEG sequences and hosts the
// interactive viewer window.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"mrimetrics/internal/models"
)

// Windowing maps intensities to gray: Level-Window/2 is black and
// Level+Window/2 is white, linear in between
type Windowing struct {
	Level  float64
	Window float64
}

// Gray16 maps an intensity to a 16-bit gray value. A non-positive window acts
// as a hard threshold at Level.
func (w Windowing) Gray16(v float64) uint16 {
	if w.Window <= 0 {
		if v >= w.Level {
			return math.MaxUint16
		}
		return 0
	}

	lo := w.Level - w.Window/2
	t := (v - lo) / w.Window
	return uint16(math.Round(math.Max(0, math.Min(1, t)) * math.MaxUint16))
}

// Viewer extracts windowed 2D slices from a volume
type Viewer struct {
	volume *models.Volume

	// Windowing applied to every extracted slice
	Windowing Windowing
}

// NewViewer creates a viewer over vol using the given level and window
func NewViewer(vol *models.Volume, level, window float64) *Viewer {
	return &Viewer{
		volume:    vol,
		Windowing: Windowing{Level: level, Window: window},
	}
}

// Volume returns the viewed volume
func (v *Viewer) Volume() *models.Volume {
	return v.volume
}

// ExtractSlice extracts a 2D slice from the volume along the specified axis
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	vol := v.volume
	var img *image.Gray16

	switch axis {
	case "x", "X":
		// YZ plane
		if position >= vol.Width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, vol.Width)
		}

		img = image.NewGray16(image.Rect(0, 0, vol.Depth, vol.Height))
		for y := 0; y < vol.Height; y++ {
			for z := 0; z < vol.Depth; z++ {
				img.SetGray16(z, y, color.Gray16{Y: v.Windowing.Gray16(vol.At(position, y, z))})
			}
		}

	case "y", "Y":
		// XZ plane
		if position >= vol.Height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, vol.Height)
		}

		img = image.NewGray16(image.Rect(0, 0, vol.Width, vol.Depth))
		for z := 0; z < vol.Depth; z++ {
			for x := 0; x < vol.Width; x++ {
				img.SetGray16(x, z, color.Gray16{Y: v.Windowing.Gray16(vol.At(x, position, z))})
			}
		}

	case "z", "Z":
		// XY plane
		if position >= vol.Depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, vol.Depth)
		}

		img = image.NewGray16(image.Rect(0, 0, vol.Width, vol.Height))
		for y := 0; y < vol.Height; y++ {
			for x := 0; x < vol.Width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: v.Windowing.Gray16(vol.At(x, y, position))})
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// SaveSlice saves an extracted slice as a JPEG image
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence extracts and saves every slice along the specified axis
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.volume.Width
	case "y", "Y":
		maxPos = v.volume.Height
	case "z", "Z":
		maxPos = v.volume.Depth
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.jpg", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
