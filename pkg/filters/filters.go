// Package filters applies the denoising and segmentation operators to a volume.
// The kernels themselves are OpenCV's (through gocv); this package moves voxel
// planes in and out of OpenCV matrices and fans the work out over slices.
package filters

import (
	"fmt"
	"image"
	"math"
	"runtime"

	"gocv.io/x/gocv"

	"mrimetrics/internal/models"
)

// Params holds the denoising parameters
type Params struct {
	// Sigma is the Gaussian standard deviation in voxels
	Sigma float64

	// RadiusFactor bounds the Gaussian kernel radius to Sigma*RadiusFactor
	RadiusFactor float64

	// MedianKernel is the in-plane median neighbourhood, 3 or 5
	MedianKernel int

	// Workers is the number of slices processed concurrently
	Workers int
}

// DefaultParams mirrors the viewer defaults: sigma 1, radius factor 1, 3x3 median
func DefaultParams() Params {
	return Params{
		Sigma:        1.0,
		RadiusFactor: 1.0,
		MedianKernel: 3,
		Workers:      runtime.NumCPU(),
	}
}

// KernelSize returns the odd Gaussian kernel width for the parameters
func (p Params) KernelSize() int {
	radius := int(math.Ceil(p.Sigma * p.RadiusFactor))
	if radius < 0 {
		radius = 0
	}
	return 2*radius + 1
}

// Gaussian smooths the volume with a separable 3D Gaussian: an in-plane blur of
// every slice followed by a blur along Z
func Gaussian(vol *models.Volume, p Params) (*models.Volume, error) {
	out := vol.Clone()
	ksize := p.KernelSize()
	if p.Sigma <= 0 || ksize < 3 {
		return out, nil
	}

	// In-plane pass, one slice per task
	err := forEach(vol.Depth, p.Workers, func(z int) error {
		plane := out.SliceData(z)
		src, err := planeToMat(plane, vol.Height, vol.Width)
		if err != nil {
			return err
		}
		defer src.Close()

		dst := gocv.NewMat()
		defer dst.Close()

		gocv.GaussianBlur(src, &dst, image.Pt(ksize, ksize), p.Sigma, p.Sigma, gocv.BorderReplicate)
		return matToPlane(dst, plane)
	})
	if err != nil {
		return nil, fmt.Errorf("gaussian in-plane pass: %w", err)
	}

	if vol.Depth < 2 {
		return out, nil
	}

	// Through-plane pass on XZ planes (rows=z, cols=x), one row index per task.
	// A kernel one column wide leaves X untouched.
	err = forEach(vol.Height, p.Workers, func(y int) error {
		plane := make([]float64, vol.Depth*vol.Width)
		for z := 0; z < vol.Depth; z++ {
			copy(plane[z*vol.Width:(z+1)*vol.Width], out.Data[out.Index(0, y, z):out.Index(0, y, z)+vol.Width])
		}

		src, err := planeToMat(plane, vol.Depth, vol.Width)
		if err != nil {
			return err
		}
		defer src.Close()

		dst := gocv.NewMat()
		defer dst.Close()

		gocv.GaussianBlur(src, &dst, image.Pt(1, ksize), p.Sigma, p.Sigma, gocv.BorderReplicate)
		if err := matToPlane(dst, plane); err != nil {
			return err
		}

		for z := 0; z < vol.Depth; z++ {
			copy(out.Data[out.Index(0, y, z):out.Index(0, y, z)+vol.Width], plane[z*vol.Width:(z+1)*vol.Width])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gaussian through-plane pass: %w", err)
	}

	return out, nil
}

// Median replaces every voxel with the median of its in-plane neighbourhood
func Median(vol *models.Volume, p Params) (*models.Volume, error) {
	if p.MedianKernel != 3 && p.MedianKernel != 5 {
		return nil, fmt.Errorf("median kernel must be 3 or 5 for float data, got %d", p.MedianKernel)
	}

	out := vol.Clone()
	err := forEach(vol.Depth, p.Workers, func(z int) error {
		plane := out.SliceData(z)
		src, err := planeToMat(plane, vol.Height, vol.Width)
		if err != nil {
			return err
		}
		defer src.Close()

		dst := gocv.NewMat()
		defer dst.Close()

		gocv.MedianBlur(src, &dst, p.MedianKernel)
		return matToPlane(dst, plane)
	})
	if err != nil {
		return nil, fmt.Errorf("median filter: %w", err)
	}

	return out, nil
}

// Threshold produces a binary mask volume: 1 where the voxel lies inside the
// interval (inclusive), 0 elsewhere. An inverted interval yields an all-zero
// mask. The comparison runs at double precision so the mask agrees with
// ThresholdInterval.Contains for every voxel.
func Threshold(vol *models.Volume, interval models.ThresholdInterval, workers int) (*models.Volume, error) {
	out := models.NewVolume(vol.Width, vol.Height, vol.Depth)
	out.VoxelSize = vol.VoxelSize

	lower := gocv.NewScalar(interval.Lower, 0, 0, 0)
	upper := gocv.NewScalar(interval.Upper, 0, 0, 0)

	err := forEach(vol.Depth, workers, func(z int) error {
		src, err := planeToMat64(vol.SliceData(z), vol.Height, vol.Width)
		if err != nil {
			return err
		}
		defer src.Close()

		dst := gocv.NewMat()
		defer dst.Close()

		gocv.InRangeWithScalar(src, lower, upper, &dst)
		return maskToPlane(dst, out.SliceData(z))
	})
	if err != nil {
		return nil, fmt.Errorf("global threshold: %w", err)
	}

	return out, nil
}

// ApplyMask keeps the voxels of vol where mask is non-zero and zeroes the
// rest. Kept voxels are copied at full precision.
func ApplyMask(vol, mask *models.Volume, workers int) (*models.Volume, error) {
	if !vol.SameShape(mask) {
		return nil, fmt.Errorf("mask does not match volume dimensions")
	}

	out := models.NewVolume(vol.Width, vol.Height, vol.Depth)
	out.VoxelSize = vol.VoxelSize

	err := forEach(vol.Depth, workers, func(z int) error {
		src, err := planeToMat64(vol.SliceData(z), vol.Height, vol.Width)
		if err != nil {
			return err
		}
		defer src.Close()

		m, err := planeToMask(mask.SliceData(z), vol.Height, vol.Width)
		if err != nil {
			return err
		}
		defer m.Close()

		dst := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), vol.Height, vol.Width, gocv.MatTypeCV64F)
		defer dst.Close()

		src.CopyToWithMask(&dst, m)
		return matToPlane64(dst, out.SliceData(z))
	})
	if err != nil {
		return nil, fmt.Errorf("apply mask: %w", err)
	}

	return out, nil
}
