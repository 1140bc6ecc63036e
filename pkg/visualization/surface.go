package visualization

import (
	"image"
	"sync"
)

// ImageSurface is one displayed variant: a viewer positioned on an axial
// slice. It satisfies navigator.WindowedSurface; the rendered image is rebuilt
// lazily after any change.
type ImageSurface struct {
	// Title is shown above the viewport
	Title string

	mu     sync.Mutex
	viewer *Viewer
	z      int
	cached image.Image
}

// NewImageSurface wraps a viewer
func NewImageSurface(title string, viewer *Viewer) *ImageSurface {
	return &ImageSurface{Title: title, viewer: viewer}
}

// SetZSlice moves the surface to slice z, clamped to the volume
func (s *ImageSurface) SetZSlice(z int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if depth := s.viewer.Volume().Depth; z >= depth {
		z = depth - 1
	}
	if z < 0 {
		z = 0
	}
	if z != s.z {
		s.z = z
		s.cached = nil
	}
}

// ZSlice returns the displayed slice
func (s *ImageSurface) ZSlice() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.z
}

// ColorLevel returns the current window level
func (s *ImageSurface) ColorLevel() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewer.Windowing.Level
}

// ColorWindow returns the current window width
func (s *ImageSurface) ColorWindow() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewer.Windowing.Window
}

// SetColorLevel changes the window level
func (s *ImageSurface) SetColorLevel(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer.Windowing.Level = level
	s.cached = nil
}

// SetColorWindow changes the window width
func (s *ImageSurface) SetColorWindow(window float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer.Windowing.Window = window
	s.cached = nil
}

// Image returns the rendered slice
func (s *ImageSurface) Image() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached == nil {
		img, err := s.viewer.ExtractSlice("z", s.z)
		if err != nil {
			img = image.NewGray16(image.Rect(0, 0, 1, 1))
		}
		s.cached = img
	}
	return s.cached
}
