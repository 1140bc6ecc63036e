package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"mrimetrics/internal/models"
)

// ReadDicom reads a directory of single-frame DICOM files, or one (possibly
// multi-frame) DICOM file, into a volume
func (r *Reader) ReadDicom(path string) (*models.Volume, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, unreadable(path, err)
	}

	if !info.IsDir() {
		slices, err := safelyReadDicomFile(path)
		if err != nil {
			return nil, unreadable(path, err)
		}
		return stackSlices(path, slices)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, unreadable(path, err)
	}

	var slices []models.Slice
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		file := filepath.Join(path, entry.Name())
		fileSlices, err := safelyReadDicomFile(file)
		if err != nil {
			// Directories often carry DICOMDIR indexes or stray files
			r.log.Debug().Str("file", file).Err(err).Msg("skipping non-image file")
			continue
		}
		slices = append(slices, fileSlices...)
	}

	if len(slices) == 0 {
		return nil, unreadable(path, fmt.Errorf("no DICOM images found in directory"))
	}

	// Sort by instance number, falling back to the file name so the
	// anatomical order is kept even without the tag
	sort.SliceStable(slices, func(i, j int) bool {
		if slices[i].Index != slices[j].Index {
			return slices[i].Index < slices[j].Index
		}
		return slices[i].Filename < slices[j].Filename
	})

	r.log.Debug().Str("dir", path).Int("slices", len(slices)).Msg("DICOM series sorted")

	return stackSlices(path, slices)
}

func stackSlices(path string, slices []models.Slice) (*models.Volume, error) {
	vol, err := models.NewVolumeFromSlices(slices)
	if err != nil {
		return nil, unreadable(path, err)
	}
	return vol, nil
}

// safelyReadDicomFile consumes panics emitted by the dicom library, which are
// inappropriate and must be captured in order to turn them into recoverable
// errors.
func safelyReadDicomFile(file string) (slices []models.Slice, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			slices, err = nil, recovered(panicErr)
		}
	}()

	return readDicomFile(file)
}

// readDicomFile decodes every frame of one DICOM file into slices
func readDicomFile(file string) ([]models.Slice, error) {
	dataset, err := dicom.ParseFile(file, nil)
	if err != nil {
		return nil, err
	}

	pixelData, err := dataset.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("no pixel data: %v", err)
	}
	pixelInfo := dicom.MustGetPixelDataInfo(pixelData.Value)
	if len(pixelInfo.Frames) == 0 {
		return nil, fmt.Errorf("pixel data holds no frames")
	}

	slope := floatTag(dataset, tag.RescaleSlope, 0, 1)
	intercept := floatTag(dataset, tag.RescaleIntercept, 0, 0)
	thickness := floatTag(dataset, tag.SliceThickness, 0, 0)
	position := floatTag(dataset, tag.ImagePositionPatient, 2, floatTag(dataset, tag.SliceLocation, 0, 0))
	instance := int(floatTag(dataset, tag.InstanceNumber, 0, 0))

	slices := make([]models.Slice, 0, len(pixelInfo.Frames))
	for i, fr := range pixelInfo.Frames {
		native, err := fr.GetNativeFrame()
		if err != nil {
			return nil, fmt.Errorf("frame %d: %v", i, err)
		}

		rows, cols := native.Rows(), native.Cols()
		pixels := make([]float64, rows*cols)
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				samples, err := native.GetPixel(x, y)
				if err != nil {
					return nil, fmt.Errorf("frame %d pixel (%d,%d): %v", i, x, y, err)
				}
				// Only the first sample is used; color data is reduced to its
				// first channel
				pixels[y*cols+x] = float64(samples[0])*slope + intercept
			}
		}

		slices = append(slices, models.Slice{
			Pixels:    pixels,
			Width:     cols,
			Height:    rows,
			Index:     instance + i,
			Filename:  filepath.Base(file),
			Thickness: thickness,
			Position:  position + float64(i)*thickness,
		})
	}

	return slices, nil
}

// floatTag parses the idx-th string value of a numeric tag, returning def when
// the tag is absent or malformed
func floatTag(dataset dicom.Dataset, t tag.Tag, idx int, def float64) float64 {
	elem, err := dataset.FindElementByTag(t)
	if err != nil {
		return def
	}

	values, ok := elem.Value.GetValue().([]string)
	if !ok || len(values) <= idx {
		return def
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(values[idx]), 64)
	if err != nil {
		return def
	}
	return v
}
