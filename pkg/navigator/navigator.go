// Package navigator holds the slice and window/level state of the viewer and
// pushes every change to the tracked image surfaces.
//
// The navigator never owns rendering resources. It keeps interface handles to
// surfaces owned by the renderer and only asks the renderer to redraw.
package navigator

// DefaultStep is the level/window increment per transition
const DefaultStep = 10.0

// Surface is a displayed 2D image that follows the current slice
type Surface interface {
	SetZSlice(z int)
}

// WindowedSurface additionally follows the grayscale level and window
type WindowedSurface interface {
	Surface
	ColorLevel() float64
	ColorWindow() float64
	SetColorLevel(level float64)
	SetColorWindow(window float64)
}

// Renderer redraws every surface after a state change
type Renderer interface {
	Redraw()
}

// Line identifies which status text a message replaces
type Line int

const (
	SliceLine Line = iota
	WindowLevelLine
	WindowLine
)

type trackedImage struct {
	surface  Surface
	windowed WindowedSurface
	level    float64
	window   float64
}

// Navigator is the slice/window-level state machine. It is not safe for
// concurrent use; call it from the UI event thread only.
type Navigator struct {
	slice    int
	minSlice int
	maxSlice int

	images    []trackedImage
	reference int

	step     float64
	renderer Renderer

	// OnStatus receives every emitted status message
	OnStatus func(line Line, msg string)
}

// New creates a navigator positioned at minSlice. The renderer may be nil.
func New(minSlice, maxSlice int, renderer Renderer) *Navigator {
	return &Navigator{
		slice:     minSlice,
		minSlice:  minSlice,
		maxSlice:  maxSlice,
		reference: -1,
		step:      DefaultStep,
		renderer:  renderer,
	}
}

// SetStep changes the level/window increment
func (n *Navigator) SetStep(step float64) {
	n.step = step
}

// Track registers a surface. When windowed is true the surface must implement
// WindowedSurface; its current level and window seed the tracked pair and the
// first such surface becomes the reference reported in status messages.
func (n *Navigator) Track(s Surface, windowed bool) {
	img := trackedImage{surface: s}

	if ws, ok := s.(WindowedSurface); ok && windowed {
		img.windowed = ws
		img.level = ws.ColorLevel()
		img.window = ws.ColorWindow()
		if n.reference < 0 {
			n.reference = len(n.images)
		}
	}

	s.SetZSlice(n.slice)
	n.images = append(n.images, img)
}

// Slice returns the current slice index
func (n *Navigator) Slice() int { return n.slice }

// Bounds returns the valid slice range
func (n *Navigator) Bounds() (minSlice, maxSlice int) { return n.minSlice, n.maxSlice }

// WindowLevel returns the reference image's level, or 0 with no windowed image
func (n *Navigator) WindowLevel() float64 {
	if n.reference < 0 {
		return 0
	}
	return n.images[n.reference].level
}

// Window returns the reference image's window, or 0 with no windowed image
func (n *Navigator) Window() float64 {
	if n.reference < 0 {
		return 0
	}
	return n.images[n.reference].window
}

// Status returns the three current status lines
func (n *Navigator) Status() (slice, windowLevel, window string) {
	return SliceNumberFormat(n.slice, n.maxSlice),
		WindowLevelFormat(int(n.WindowLevel())),
		WindowFormat(int(n.Window()))
}

// SliceForward moves one slice up. At maxSlice it does nothing and reports
// changed=false.
func (n *Navigator) SliceForward() (msg string, changed bool) {
	if n.slice >= n.maxSlice {
		return "", false
	}
	return n.moveSlice(1), true
}

// SliceBackward moves one slice down. At minSlice it does nothing and reports
// changed=false.
func (n *Navigator) SliceBackward() (msg string, changed bool) {
	if n.slice <= n.minSlice {
		return "", false
	}
	return n.moveSlice(-1), true
}

// WindowLevelForward raises every tracked level by the step
func (n *Navigator) WindowLevelForward() (msg string, changed bool) {
	return n.shiftLevel(n.step), true
}

// WindowLevelBackward lowers every tracked level by the step
func (n *Navigator) WindowLevelBackward() (msg string, changed bool) {
	return n.shiftLevel(-n.step), true
}

// WindowForward widens every tracked window by the step
func (n *Navigator) WindowForward() (msg string, changed bool) {
	return n.shiftWindow(n.step), true
}

// WindowBackward narrows every tracked window by the step. The window is not
// clamped.
func (n *Navigator) WindowBackward() (msg string, changed bool) {
	return n.shiftWindow(-n.step), true
}

func (n *Navigator) moveSlice(delta int) string {
	n.slice += delta
	for _, img := range n.images {
		img.surface.SetZSlice(n.slice)
	}

	msg := SliceNumberFormat(n.slice, n.maxSlice)
	n.emit(SliceLine, msg)
	return msg
}

func (n *Navigator) shiftLevel(delta float64) string {
	for i := range n.images {
		img := &n.images[i]
		if img.windowed == nil {
			continue
		}
		img.level += delta
		img.windowed.SetColorLevel(img.level)
	}

	msg := WindowLevelFormat(int(n.WindowLevel()))
	n.emit(WindowLevelLine, msg)
	return msg
}

func (n *Navigator) shiftWindow(delta float64) string {
	for i := range n.images {
		img := &n.images[i]
		if img.windowed == nil {
			continue
		}
		img.window += delta
		img.windowed.SetColorWindow(img.window)
	}

	msg := WindowFormat(int(n.Window()))
	n.emit(WindowLine, msg)
	return msg
}

func (n *Navigator) emit(line Line, msg string) {
	if n.OnStatus != nil {
		n.OnStatus(line, msg)
	}
	if n.renderer != nil {
		n.renderer.Redraw()
	}
}
