package models

import (
	"fmt"
)

// Slice represents a single decoded 2D image slice with metadata, before it
// is stacked into a Volume
type Slice struct {
	// Pixels holds the raw intensities in row-major order
	Pixels []float64

	// Width and Height are the dimensions of the slice in pixels
	Width, Height int

	// Index is the position of this slice in the series (InstanceNumber for DICOM)
	Index int

	// Filename is the original filename of the slice
	Filename string

	// Thickness is the physical thickness of the slice in mm
	Thickness float64

	// Position is the physical position of the slice along the axis
	Position float64
}

// Spacing is the physical size of a voxel in mm along each axis
type Spacing struct {
	X, Y, Z float64
}

// Volume represents a 3D grid of scalar intensities. A Volume is treated as
// immutable once built: filters and statistics always produce new values.
type Volume struct {
	// Data is the 3D volume data as a 1D array in row-major order
	// (z*Width*Height + y*Width + x)
	Data []float64

	// Width is the extent along X in voxels
	Width int

	// Height is the extent along Y in voxels
	Height int

	// Depth is the extent along Z (number of slices)
	Depth int

	// VoxelSize is the physical size of each voxel in mm
	VoxelSize Spacing
}

// NewVolume allocates a zero-filled volume with unit spacing
func NewVolume(width, height, depth int) *Volume {
	return &Volume{
		Data:      make([]float64, width*height*depth),
		Width:     width,
		Height:    height,
		Depth:     depth,
		VoxelSize: Spacing{X: 1, Y: 1, Z: 1},
	}
}

// NewVolumeFromSlices stacks equally sized slices along Z
func NewVolumeFromSlices(slices []Slice) (*Volume, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("no slices to stack")
	}

	width, height := slices[0].Width, slices[0].Height
	vol := NewVolume(width, height, len(slices))
	size := width * height

	for z, s := range slices {
		if s.Width != width || s.Height != height {
			return nil, fmt.Errorf("slice %s is %dx%d, expected %dx%d", s.Filename, s.Width, s.Height, width, height)
		}
		if len(s.Pixels) != size {
			return nil, fmt.Errorf("slice %s holds %d pixels, expected %d", s.Filename, len(s.Pixels), size)
		}
		copy(vol.Data[z*size:(z+1)*size], s.Pixels)
	}

	if len(slices) > 1 {
		if gap := slices[1].Position - slices[0].Position; gap > 0 {
			vol.VoxelSize.Z = gap
		} else if slices[0].Thickness > 0 {
			vol.VoxelSize.Z = slices[0].Thickness
		}
	}

	return vol, nil
}

// Index returns the position of voxel (x, y, z) in Data
func (v *Volume) Index(x, y, z int) int {
	return z*v.Width*v.Height + y*v.Width + x
}

// At returns the intensity at voxel (x, y, z)
func (v *Volume) At(x, y, z int) float64 {
	return v.Data[v.Index(x, y, z)]
}

// Set stores an intensity at voxel (x, y, z). Only builders (readers and
// filters) call it before handing the volume out.
func (v *Volume) Set(x, y, z int, value float64) {
	v.Data[v.Index(x, y, z)] = value
}

// SliceData returns the voxels of slice z without copying
func (v *Volume) SliceData(z int) []float64 {
	size := v.Width * v.Height
	return v.Data[z*size : (z+1)*size]
}

// SameShape reports whether two volumes have identical dimensions
func (v *Volume) SameShape(o *Volume) bool {
	return o != nil && v.Width == o.Width && v.Height == o.Height && v.Depth == o.Depth
}

// Clone returns a deep copy of the volume
func (v *Volume) Clone() *Volume {
	out := *v
	out.Data = make([]float64, len(v.Data))
	copy(out.Data, v.Data)
	return &out
}

// ThresholdInterval is an inclusive pair of intensity bounds. Lower may exceed
// Upper, in which case no value is inside.
type ThresholdInterval struct {
	Lower float64
	Upper float64
}

// Contains reports whether value lies inside [Lower, Upper]
func (t ThresholdInterval) Contains(value float64) bool {
	return t.Lower <= value && value <= t.Upper
}

// Variant identifies one of the volumes shown by the viewer
type Variant int

const (
	Original Variant = iota
	Gaussian
	Median
	Segmentation
)

func (v Variant) String() string {
	switch v {
	case Original:
		return "original"
	case Gaussian:
		return "gaussian"
	case Median:
		return "median"
	case Segmentation:
		return "segmentation"
	}
	return fmt.Sprintf("variant(%d)", int(v))
}
