package visualization

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"ctheadviewer/internal/models"
	"ctheadviewer/pkg/transfer"
	"ctheadviewer/pkg/volume"
)

// ErrInvalidOpacity is returned for a skin opacity outside [0,1].
var ErrInvalidOpacity = errors.New("skin opacity must be within [0,1]")

// RenderVolume composites the volume front to back along axis. Every pixel
// casts a ray from index 0 to the far end of the axis, classifies each sample
// with the transfer function and accumulates its colour weighted by the
// transparency left in front of it. Channels are clamped to [0,1].
//
// Rows are rendered in parallel on all CPUs.
func RenderVolume(ds *volume.Dataset, axis models.Axis, skinOpacity float64) (*models.Raster, error) {
	return renderVolume(ds, axis, skinOpacity, runtime.NumCPU())
}

func renderVolume(ds *volume.Dataset, axis models.Axis, skinOpacity float64, workers int) (*models.Raster, error) {
	if !transfer.ValidOpacity(skinOpacity) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidOpacity, skinOpacity)
	}
	g, err := axis.Geometry(ds.Dims())
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	out := models.NewRaster(g.Cols, g.Rows)
	samples := ds.Samples()

	var eg errgroup.Group
	eg.SetLimit(workers)
	for j := 0; j < g.Rows; j++ {
		j := j
		eg.Go(func() error {
			compositeRow(out, samples, g, j, skinOpacity)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// compositeRow fills row j of out. Rows never share pixels, so calls for
// different rows may run concurrently.
func compositeRow(out *models.Raster, samples []int16, g models.Geometry, j int, skinOpacity float64) {
	for i := 0; i < g.Cols; i++ {
		var red, green, blue float64
		transparency := 1.0

		idx := g.Offset(i, j, 0)
		for k := 0; k < g.Extent; k++ {
			c := transfer.Classify(samples[idx], skinOpacity)
			cr, cg, cb := c.Contribution()
			red += transparency * cr
			green += transparency * cg
			blue += transparency * cb
			transparency *= 1 - c.Opacity

			// Nothing behind a fully opaque sample can change the sums.
			if transparency == 0 {
				break
			}
			idx += g.NormalStride
		}

		out.SetRGB(i, j, red, green, blue)
	}
}
