// Package reader turns DICOM series, single DICOM files and NIfTI volumes into
// models.Volume values. Decoding is done by third-party libraries; this
// package only stacks slices, applies rescale metadata and normalises errors.
package reader

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"mrimetrics/internal/logger"
	"mrimetrics/internal/models"
	"mrimetrics/pkg/input"
)

// ErrUnreadableInput wraps every failure to produce a volume from a path
var ErrUnreadableInput = errors.New("unreadable input")

// Reader loads volumes from disk
type Reader struct {
	log zerolog.Logger
}

// New creates a reader logging through log
func New(log zerolog.Logger) *Reader {
	return &Reader{log: logger.Component(log, "reader")}
}

// Read loads path according to its classification
func (r *Reader) Read(path string, kind input.Kind) (*models.Volume, error) {
	var (
		vol *models.Volume
		err error
	)

	switch kind {
	case input.DicomSeries:
		vol, err = r.ReadDicom(path)
	case input.NiftiFile:
		vol, err = r.ReadNifti(path)
	default:
		return nil, fmt.Errorf("%q: %w", path, input.ErrUnsupportedInputType)
	}
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Str("path", path).
		Stringer("type", kind).
		Int("width", vol.Width).
		Int("height", vol.Height).
		Int("depth", vol.Depth).
		Msg("volume loaded")

	return vol, nil
}

func unreadable(path string, err error) error {
	return fmt.Errorf("%s: %w: %v", path, ErrUnreadableInput, err)
}

// recovered turns a panic value raised inside a decoding library into an error
func recovered(panicErr interface{}) error {
	if err, ok := panicErr.(error); ok {
		return err
	}
	return fmt.Errorf("%v", panicErr)
}
