package visualization

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"mrimetrics/internal/logger"
	"mrimetrics/pkg/navigator"
)

// AppID identifies the viewer to the windowing toolkit
const AppID = "io.mrimetrics.viewer"

// WindowConfig holds the viewer window options
type WindowConfig struct {
	Title         string
	Width, Height float32
}

type viewport struct {
	surface *ImageSurface
	image   *canvas.Image
}

// Window is the interactive viewer. It owns the surfaces and implements
// navigator.Renderer.
type Window struct {
	app    fyne.App
	window fyne.Window
	log    zerolog.Logger

	viewports []viewport
	status    map[navigator.Line]*widget.Label
}

// NewWindow lays the surfaces out in a grid (one row for up to two surfaces,
// two by two otherwise) above three status labels
func NewWindow(cfg WindowConfig, surfaces []*ImageSurface, log zerolog.Logger) (*Window, error) {
	if len(surfaces) == 0 {
		return nil, fmt.Errorf("viewer needs at least one surface")
	}

	fyneApp := app.NewWithID(AppID)
	w := &Window{
		app:    fyneApp,
		window: fyneApp.NewWindow(cfg.Title),
		log:    logger.Component(log, "viewer"),
		status: map[navigator.Line]*widget.Label{
			navigator.SliceLine:       widget.NewLabel(""),
			navigator.WindowLevelLine: widget.NewLabel(""),
			navigator.WindowLine:      widget.NewLabel(""),
		},
	}

	cells := make([]fyne.CanvasObject, 0, len(surfaces))
	for _, s := range surfaces {
		img := canvas.NewImageFromImage(s.Image())
		img.FillMode = canvas.ImageFillContain
		img.ScaleMode = canvas.ImageScalePixels
		img.SetMinSize(fyne.NewSize(cfg.Width/4, cfg.Height/4))

		w.viewports = append(w.viewports, viewport{surface: s, image: img})
		cells = append(cells, container.NewBorder(widget.NewLabel(s.Title), nil, nil, nil, img))
	}

	columns := len(cells)
	if columns > 2 {
		columns = 2
	}

	statusBar := container.NewHBox(
		w.status[navigator.SliceLine],
		widget.NewSeparator(),
		w.status[navigator.WindowLevelLine],
		widget.NewSeparator(),
		w.status[navigator.WindowLine],
	)

	w.window.SetContent(container.NewBorder(nil, statusBar, nil, nil, container.NewGridWithColumns(columns, cells...)))
	w.window.Resize(fyne.NewSize(cfg.Width, cfg.Height))

	return w, nil
}

// Attach routes key presses through bindings to nav and shows nav's status
func (w *Window) Attach(nav *navigator.Navigator, bindings navigator.Bindings) {
	slice, level, window := nav.Status()
	w.SetStatus(navigator.SliceLine, slice)
	w.SetStatus(navigator.WindowLevelLine, level)
	w.SetStatus(navigator.WindowLine, window)

	nav.OnStatus = w.SetStatus

	w.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		msg, bound := nav.Dispatch(bindings, string(ev.Name))
		if !bound {
			return
		}
		w.log.Debug().Str("key", string(ev.Name)).Str("status", msg).Msg("key handled")
	})
}

// SetStatus replaces one status line
func (w *Window) SetStatus(line navigator.Line, msg string) {
	if label, ok := w.status[line]; ok {
		label.SetText(msg)
	}
}

// Redraw refreshes every viewport from its surface
func (w *Window) Redraw() {
	for _, vp := range w.viewports {
		vp.image.Image = vp.surface.Image()
		vp.image.Refresh()
	}
}

// ShowAndRun opens the window and blocks until it is closed
func (w *Window) ShowAndRun() {
	w.Redraw()
	w.window.ShowAndRun()
}
