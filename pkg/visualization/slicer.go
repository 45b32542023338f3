package visualization

import (
	"fmt"

	"ctheadviewer/internal/models"
	"ctheadviewer/pkg/volume"
)

// IndexError reports a slice index outside the volume along an axis.
type IndexError struct {
	Axis   models.Axis
	Index  int
	Extent int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%v slice %d out of range [0, %d]", e.Axis, e.Index, e.Extent-1)
}

// ExtractSlice copies the slice at index along axis into a grayscale raster,
// one sample per pixel. Intensities are scaled linearly from the dataset's
// [Min, Max] onto [0,1].
func ExtractSlice(ds *volume.Dataset, axis models.Axis, index int) (*models.Raster, error) {
	g, err := axis.Geometry(ds.Dims())
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= g.Extent {
		return nil, &IndexError{Axis: axis, Index: index, Extent: g.Extent}
	}

	samples := ds.Samples()
	out := models.NewRaster(g.Cols, g.Rows)
	for j := 0; j < g.Rows; j++ {
		idx := g.Offset(0, j, index)
		for i := 0; i < g.Cols; i++ {
			out.SetGray(i, j, ds.Normalize(samples[idx]))
			idx += g.ColStride
		}
	}

	return out, nil
}
