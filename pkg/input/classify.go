// Package input decides how a command-line path should be read.
package input

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the reader a path is routed to
type Kind int

const (
	// Invalid marks a file with an unsupported extension
	Invalid Kind = iota

	// DicomSeries is a directory of DICOM files, or a single .dcm file
	DicomSeries

	// NiftiFile is a single .nii volume
	NiftiFile
)

// ErrUnsupportedInputType is returned by Validate for paths classified as Invalid
var ErrUnsupportedInputType = errors.New("unsupported input type")

func (k Kind) String() string {
	switch k {
	case DicomSeries:
		return "DICOM"
	case NiftiFile:
		return "NIfTI"
	}
	return "invalid"
}

// Classify inspects only the last four characters of path. When they hold no
// period the path is taken to be a DICOM directory; whether it exists is left
// to the reader.
func Classify(path string) Kind {
	tail := path
	if len(path) > 4 {
		tail = path[len(path)-4:]
	}

	if !strings.Contains(tail, ".") {
		return DicomSeries
	}

	switch tail {
	case ".dcm":
		return DicomSeries
	case ".nii":
		return NiftiFile
	}
	return Invalid
}

// Validate classifies path and returns an error for unsupported inputs
func Validate(path string) (Kind, error) {
	kind := Classify(path)
	if kind == Invalid {
		return kind, fmt.Errorf("%q: %w (expected a DICOM directory, a .dcm file or a .nii file)", path, ErrUnsupportedInputType)
	}
	return kind, nil
}
