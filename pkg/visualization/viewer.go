package visualization

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"ctheadviewer/internal/models"
	"ctheadviewer/pkg/volume"
)

// Viewer answers slice and render requests against one loaded dataset.
// The dataset is read-only, so a Viewer may serve concurrent callers.
type Viewer struct {
	// ds is the volume every request reads from
	ds *volume.Dataset

	// workers bounds the goroutines used by a single render
	workers int
}

// NewViewer creates a viewer over ds. workers <= 0 means one per CPU.
func NewViewer(ds *volume.Dataset, workers int) *Viewer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Viewer{ds: ds, workers: workers}
}

// Dataset returns the volume the viewer reads from.
func (v *Viewer) Dataset() *volume.Dataset { return v.ds }

// ExtractSlice returns the grayscale slice at index along axis.
func (v *Viewer) ExtractSlice(axis models.Axis, index int) (*models.Raster, error) {
	return ExtractSlice(v.ds, axis, index)
}

// RenderVolume composites the whole volume along axis.
func (v *Viewer) RenderVolume(axis models.Axis, skinOpacity float64) (*models.Raster, error) {
	return renderVolume(v.ds, axis, skinOpacity, v.workers)
}

// RenderAll composites the volume along all three axes concurrently. The
// result is indexed by axis.
func (v *Viewer) RenderAll(skinOpacity float64) ([]*models.Raster, error) {
	reqs := make([]Request, len(models.Axes))
	for i, axis := range models.Axes {
		reqs[i] = Request{Kind: RenderRequest, Axis: axis, SkinOpacity: skinOpacity}
	}
	return v.Serve(context.Background(), reqs)
}

// RequestKind selects the operation a Request asks for.
type RequestKind int

const (
	// SliceRequest asks for the grayscale slice at Index.
	SliceRequest RequestKind = iota
	// RenderRequest asks for a composited view with SkinOpacity.
	RenderRequest
)

// Request is one view the presentation layer wants drawn.
type Request struct {
	Kind        RequestKind
	Axis        models.Axis
	Index       int
	SkinOpacity float64
}

func (r Request) String() string {
	if r.Kind == SliceRequest {
		return fmt.Sprintf("%v slice %d", r.Axis, r.Index)
	}
	return fmt.Sprintf("%v render (skin opacity %.2f)", r.Axis, r.SkinOpacity)
}

// Serve runs independent requests in parallel and returns their rasters in
// request order. The first failure cancels requests that have not started.
func (v *Viewer) Serve(ctx context.Context, reqs []Request) ([]*models.Raster, error) {
	out := make([]*models.Raster, len(reqs))

	eg, ctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := v.serve(req)
			if err != nil {
				return fmt.Errorf("%v: %w", req, err)
			}
			out[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (v *Viewer) serve(req Request) (*models.Raster, error) {
	switch req.Kind {
	case SliceRequest:
		return v.ExtractSlice(req.Axis, req.Index)
	case RenderRequest:
		return v.RenderVolume(req.Axis, req.SkinOpacity)
	}
	return nil, fmt.Errorf("unknown request kind %d", req.Kind)
}

// ExportOptions controls how rasters are written to disk.
type ExportOptions struct {
	Format  Format
	Quality int
	Scale   int
	Filter  Filter
}

// SaveRaster writes img to filename, scaled and encoded per opts.
func (v *Viewer) SaveRaster(img image.Image, filename string, opts ExportOptions) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := Encode(file, Scale(img, opts.Scale, opts.Filter), opts.Format, opts.Quality); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	return file.Close()
}

// SaveSliceSequence extracts and saves every slice along axis into outputDir.
func (v *Viewer) SaveSliceSequence(axis models.Axis, outputDir string, opts ExportOptions) error {
	g, err := axis.Geometry(v.ds.Dims())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var eg errgroup.Group
	eg.SetLimit(v.workers)
	for pos := 0; pos < g.Extent; pos++ {
		pos := pos
		eg.Go(func() error {
			img, err := v.ExtractSlice(axis, pos)
			if err != nil {
				return err
			}
			filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d%s", axis, pos, opts.Format.Ext()))
			return v.SaveRaster(img, filename, opts)
		})
	}

	return eg.Wait()
}
