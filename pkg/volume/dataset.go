// Package volume holds a CT scan as a dense grid of signed 16-bit samples and
// reads it from the raw little-endian stream the scanner produces.
package volume

import (
	"fmt"
	"math"

	"ctheadviewer/internal/models"
)

// Dataset is a loaded volume together with its intensity range. It is never
// modified after construction and may be shared freely between goroutines.
type Dataset struct {
	dims    models.Dims
	samples []int16
	min     int16
	max     int16
}

// New builds a dataset from samples stored z*W*H + y*W + x. The dataset takes
// ownership of samples.
func New(dims models.Dims, samples []int16) (*Dataset, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if len(samples) != dims.Len() {
		return nil, fmt.Errorf("volume %v needs %d samples, got %d", dims, dims.Len(), len(samples))
	}

	min, max := sampleRange(samples)
	return &Dataset{dims: dims, samples: samples, min: min, max: max}, nil
}

// sampleRange scans for the extrema, starting from the opposite ends of the
// int16 range.
func sampleRange(samples []int16) (min, max int16) {
	min, max = math.MaxInt16, math.MinInt16
	for _, s := range samples {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	return min, max
}

func (d *Dataset) Dims() models.Dims { return d.dims }

// Min returns the smallest sample.
func (d *Dataset) Min() int16 { return d.min }

// Max returns the largest sample.
func (d *Dataset) Max() int16 { return d.max }

// Samples exposes the flat sample array. Callers must not modify it.
func (d *Dataset) Samples() []int16 { return d.samples }

// Index returns the flat position of voxel (x, y, z).
func (d *Dataset) Index(x, y, z int) int {
	return (z*d.dims.Height+y)*d.dims.Width + x
}

// At returns the sample at column x, row y, slice z, i.e. [z][y][x].
func (d *Dataset) At(x, y, z int) int16 {
	return d.samples[d.Index(x, y, z)]
}

// Degenerate reports whether every sample has the same value.
func (d *Dataset) Degenerate() bool {
	return d.max <= d.min
}

// CheckRange returns a *DegenerateRangeError for a degenerate dataset.
func (d *Dataset) CheckRange() error {
	if d.Degenerate() {
		return &DegenerateRangeError{Value: d.min}
	}
	return nil
}

// Normalize maps a sample linearly from [Min, Max] onto [0,1], clamping
// values outside the range. A degenerate dataset maps everything to 0.5.
func (d *Dataset) Normalize(s int16) float64 {
	if d.Degenerate() {
		return 0.5
	}
	v := (float64(s) - float64(d.min)) / (float64(d.max) - float64(d.min))
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
