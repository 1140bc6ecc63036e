package filters

import (
	"fmt"

	"gocv.io/x/gocv"
)

// planeToMat copies a rows x cols float64 plane into a single-channel CV_32F
// matrix. The caller closes the returned Mat.
func planeToMat(data []float64, rows, cols int) (gocv.Mat, error) {
	if len(data) != rows*cols {
		return gocv.NewMat(), fmt.Errorf("plane holds %d values, expected %dx%d", len(data), rows, cols)
	}

	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	if m.Empty() {
		m.Close()
		return gocv.NewMat(), fmt.Errorf("failed to allocate %dx%d matrix", rows, cols)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.SetFloatAt(r, c, float32(data[r*cols+c]))
		}
	}
	return m, nil
}

// planeToMat64 is planeToMat at double precision, for comparisons that must
// agree bit for bit with float64 arithmetic
func planeToMat64(data []float64, rows, cols int) (gocv.Mat, error) {
	if len(data) != rows*cols {
		return gocv.NewMat(), fmt.Errorf("plane holds %d values, expected %dx%d", len(data), rows, cols)
	}

	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV64F)
	if m.Empty() {
		m.Close()
		return gocv.NewMat(), fmt.Errorf("failed to allocate %dx%d matrix", rows, cols)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.SetDoubleAt(r, c, data[r*cols+c])
		}
	}
	return m, nil
}

// matToPlane copies a CV_32F matrix back into dst
func matToPlane(m gocv.Mat, dst []float64) error {
	rows, cols := m.Rows(), m.Cols()
	if len(dst) != rows*cols {
		return fmt.Errorf("matrix is %dx%d, destination holds %d values", rows, cols, len(dst))
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			dst[r*cols+c] = float64(m.GetFloatAt(r, c))
		}
	}
	return nil
}

// matToPlane64 copies a CV_64F matrix back into dst
func matToPlane64(m gocv.Mat, dst []float64) error {
	rows, cols := m.Rows(), m.Cols()
	if len(dst) != rows*cols {
		return fmt.Errorf("matrix is %dx%d, destination holds %d values", rows, cols, len(dst))
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			dst[r*cols+c] = m.GetDoubleAt(r, c)
		}
	}
	return nil
}

// maskToPlane copies an 8-bit mask into dst as 1 (set) or 0 (clear)
func maskToPlane(m gocv.Mat, dst []float64) error {
	rows, cols := m.Rows(), m.Cols()
	if len(dst) != rows*cols {
		return fmt.Errorf("mask is %dx%d, destination holds %d values", rows, cols, len(dst))
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if m.GetUCharAt(r, c) != 0 {
				dst[r*cols+c] = 1
			} else {
				dst[r*cols+c] = 0
			}
		}
	}
	return nil
}

// planeToMask builds an 8-bit mask (255 where data is non-zero)
func planeToMask(data []float64, rows, cols int) (gocv.Mat, error) {
	if len(data) != rows*cols {
		return gocv.NewMat(), fmt.Errorf("plane holds %d values, expected %dx%d", len(data), rows, cols)
	}

	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			var v uint8
			if data[r*cols+c] != 0 {
				v = 255
			}
			m.SetUCharAt(r, c, v)
		}
	}
	return m, nil
}
