package reader

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/henghuang/nifti"

	"mrimetrics/internal/models"
)

const (
	niftiHeaderSize  = 348
	niftiMagicOffset = 344
)

// ReadNifti reads the first time point of a single-file NIfTI-1 volume
func (r *Reader) ReadNifti(path string) (*models.Volume, error) {
	if err := canReadNifti(path); err != nil {
		return nil, unreadable(path, err)
	}

	img, err := safelyNiftiParse(path)
	if err != nil {
		return nil, unreadable(path, err)
	}

	header, err := safelyNiftiHeaderParse(path)
	if err != nil {
		return nil, unreadable(path, err)
	}

	// x, y, z, t
	dims := img.GetDims()
	width, height, depth := atLeastOne(dims[0]), atLeastOne(dims[1]), atLeastOne(dims[2])
	if dims[3] > 1 {
		r.log.Warn().Int("timepoints", dims[3]).Msg("only the first time point is read")
	}

	vol := models.NewVolume(width, height, depth)
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				vol.Set(x, y, z, float64(img.GetAt(x, y, z, 0)))
			}
		}
	}

	vol.VoxelSize = models.Spacing{
		X: positiveOr(float64(header.Pixdim[1]), 1),
		Y: positiveOr(float64(header.Pixdim[2]), 1),
		Z: positiveOr(float64(header.Pixdim[3]), 1),
	}

	return vol, nil
}

// canReadNifti checks the header size field and magic string before handing
// the file to the decoder, which panics on anything unexpected
func canReadNifti(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header := make([]byte, niftiHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("file too short for a NIfTI-1 header: %v", err)
	}

	le := binary.LittleEndian.Uint32(header[:4])
	be := binary.BigEndian.Uint32(header[:4])
	if le != niftiHeaderSize && be != niftiHeaderSize {
		return fmt.Errorf("header size is not %d", niftiHeaderSize)
	}

	if magic := string(header[niftiMagicOffset : niftiMagicOffset+3]); magic != "n+1" {
		return fmt.Errorf("unexpected magic %q, only single-file NIfTI-1 is supported", magic)
	}

	return nil
}

// safelyNiftiParse consumes panics emitted by the nifti library, which are
// inappropriate and must be captured in order to turn them into recoverable
// errors.
func safelyNiftiParse(filename string) (parsedData nifti.Nifti1Image, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			err = recovered(panicErr)
		}
	}()

	parsedData.LoadImage(filename, true)

	return
}

// safelyNiftiHeaderParse is the header-only counterpart of safelyNiftiParse
func safelyNiftiHeaderParse(filename string) (parsedData nifti.Nifti1Header, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			err = recovered(panicErr)
		}
	}()

	parsedData.LoadHeader(filename)

	return
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func positiveOr(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
