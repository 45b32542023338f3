package volume

import (
	"gonum.org/v1/gonum/stat"

	"ctheadviewer/pkg/transfer"
)

// Statistics summarises the intensity distribution of a dataset.
type Statistics struct {
	Voxels int
	Min    int16
	Max    int16
	Mean   float64
	StdDev float64

	// Bands counts voxels per transfer function band.
	Bands [transfer.NumBands]int
}

// Stats computes the summary of ds.
func Stats(ds *Dataset) Statistics {
	s := Statistics{
		Voxels: len(ds.samples),
		Min:    ds.min,
		Max:    ds.max,
	}

	values := make([]float64, len(ds.samples))
	for i, v := range ds.samples {
		values[i] = float64(v)
		s.Bands[transfer.BandOf(v)]++
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)

	return s
}

// Fraction returns the share of voxels in band b.
func (s Statistics) Fraction(b transfer.Band) float64 {
	if s.Voxels == 0 {
		return 0
	}
	return float64(s.Bands[b]) / float64(s.Voxels)
}
