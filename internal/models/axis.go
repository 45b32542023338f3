package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDims is returned when a volume geometry has a non-positive extent.
var ErrInvalidDims = errors.New("volume dimensions must be positive")

// ErrInvalidAxis is returned for an axis value outside Axial, Coronal, Sagittal.
var ErrInvalidAxis = errors.New("invalid axis")

// Dim names one of the three dimensions of a volume.
type Dim int

const (
	DimX Dim = iota // width, fastest varying
	DimY            // height
	DimZ            // depth, slowest varying
)

// Dims is the geometry of a volume in voxels
type Dims struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Depth  int `yaml:"depth"`
}

// DefaultDims is the geometry of the CT head dataset.
var DefaultDims = Dims{Width: 256, Height: 256, Depth: 113}

// Validate reports whether every extent is positive.
func (d Dims) Validate() error {
	if d.Width <= 0 || d.Height <= 0 || d.Depth <= 0 {
		return fmt.Errorf("%w: got %dx%dx%d", ErrInvalidDims, d.Width, d.Height, d.Depth)
	}
	return nil
}

// Len returns the number of voxels.
func (d Dims) Len() int {
	return d.Width * d.Height * d.Depth
}

// Extent returns the number of voxels along dim.
func (d Dims) Extent(dim Dim) int {
	switch dim {
	case DimX:
		return d.Width
	case DimY:
		return d.Height
	default:
		return d.Depth
	}
}

// Stride returns the distance in the flat sample array between two voxels
// adjacent along dim. Samples are stored z*W*H + y*W + x.
func (d Dims) Stride(dim Dim) int {
	switch dim {
	case DimX:
		return 1
	case DimY:
		return d.Width
	default:
		return d.Width * d.Height
	}
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%dx%d", d.Width, d.Height, d.Depth)
}

// Axis is a viewing orientation. It selects the dimension a slice index or a
// compositing ray moves along; the other two dimensions form the image plane.
type Axis int

const (
	// Axial views top-down, stepping through depth.
	Axial Axis = iota
	// Coronal views front-to-back, stepping through height.
	Coronal
	// Sagittal views side-to-side, stepping through width.
	Sagittal
)

// Axes lists every axis in display order.
var Axes = []Axis{Axial, Coronal, Sagittal}

// layout maps an axis to the volume dimension behind each role. Image column i
// runs along col, image row j along row, and the slice or march index along
// normal. This gives [s][j][i] for Axial, [j][s][i] for Coronal and
// [j][i][s] for Sagittal in [depth][height][width] order.
type layout struct {
	name   string
	normal Dim
	col    Dim
	row    Dim
}

var layouts = [...]layout{
	Axial:    {name: "axial", normal: DimZ, col: DimX, row: DimY},
	Coronal:  {name: "coronal", normal: DimY, col: DimX, row: DimZ},
	Sagittal: {name: "sagittal", normal: DimX, col: DimY, row: DimZ},
}

// Valid reports whether a is one of the three known axes.
func (a Axis) Valid() bool {
	return a >= Axial && a <= Sagittal
}

func (a Axis) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Axis(%d)", int(a))
	}
	return layouts[a].name
}

// Geometry describes how an axis walks a volume of a given size.
type Geometry struct {
	// Cols and Rows are the output image size.
	Cols, Rows int
	// Extent is the number of slices, and the march length, along the axis.
	Extent int
	// ColStride, RowStride and NormalStride step the flat sample index.
	ColStride, RowStride, NormalStride int
}

// Geometry resolves the axis against d.
func (a Axis) Geometry(d Dims) (Geometry, error) {
	if !a.Valid() {
		return Geometry{}, fmt.Errorf("%w: %d", ErrInvalidAxis, int(a))
	}
	l := layouts[a]
	return Geometry{
		Cols:         d.Extent(l.col),
		Rows:         d.Extent(l.row),
		Extent:       d.Extent(l.normal),
		ColStride:    d.Stride(l.col),
		RowStride:    d.Stride(l.row),
		NormalStride: d.Stride(l.normal),
	}, nil
}

// Offset returns the flat index of pixel (i, j) at position s along the axis.
func (g Geometry) Offset(i, j, s int) int {
	return s*g.NormalStride + j*g.RowStride + i*g.ColStride
}

// ParseAxis accepts an axis name, its view alias, or the letter of the
// dimension it steps through.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "axial", "top", "z":
		return Axial, nil
	case "coronal", "front", "y":
		return Coronal, nil
	case "sagittal", "side", "x":
		return Sagittal, nil
	}
	return 0, fmt.Errorf("%w: %q (must be axial, coronal or sagittal)", ErrInvalidAxis, s)
}
