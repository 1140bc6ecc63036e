package input

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		// No period in the final four characters means a directory
		{"/data/patient01/series", DicomSeries},
		{"scans", DicomSeries},
		{"/data/v1.2/series", DicomSeries},
		{"does/not/exist", DicomSeries},
		{"/data/brain.dcm", DicomSeries},
		{"brain.nii", NiftiFile},
		{"/data/brain.png", Invalid},
		{"/data/brain.DCM", Invalid},
		{"brain.nii.gz", Invalid},
		{"file.gz", Invalid},
		{".dcm", DicomSeries},
		{".nii", NiftiFile},
	}

	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q): expected %v, got %v", tt.path, tt.want, got)
		}
	}
}

// TestClassifyShortPaths makes sure inputs shorter than an extension do not
// index past the start of the string
func TestClassifyShortPaths(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"", DicomSeries},
		{"a", DicomSeries},
		{"ab", DicomSeries},
		{"abc", DicomSeries},
		{".", Invalid},
		{"a.b", Invalid},
	}

	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q): expected %v, got %v", tt.path, tt.want, got)
		}
	}
}

func TestValidate(t *testing.T) {
	if _, err := Validate("image.jpg"); !errors.Is(err, ErrUnsupportedInputType) {
		t.Errorf("Expected ErrUnsupportedInputType, got %v", err)
	}

	kind, err := Validate("volume.nii")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if kind != NiftiFile {
		t.Errorf("Expected NiftiFile, got %v", kind)
	}
}

func TestKindString(t *testing.T) {
	if DicomSeries.String() != "DICOM" || NiftiFile.String() != "NIfTI" || Invalid.String() != "invalid" {
		t.Errorf("Unexpected kind names: %s %s %s", DicomSeries, NiftiFile, Invalid)
	}
}
