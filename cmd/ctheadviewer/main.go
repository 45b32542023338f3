package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"ctheadviewer/internal/logging"
	"ctheadviewer/internal/models"
	"ctheadviewer/pkg/config"
	"ctheadviewer/pkg/transfer"
	"ctheadviewer/pkg/visualization"
	"ctheadviewer/pkg/volume"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "ctheadviewer.yaml", "YAML configuration file")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	inputPath := flag.String("input", "", "Raw CT volume (overrides volume.path)")
	outputDir := flag.String("output", "", "Directory for rendered images (overrides output.dir)")
	mode := flag.String("mode", "both", "What to produce: slice, render, both or stats")
	axisName := flag.String("axis", "all", "Axis to view: axial, coronal, sagittal or all")
	sliceIndex := flag.Int("slice", -1, "Slice index (default: render.presetSlice)")
	opacity := flag.Float64("opacity", -1, "Skin opacity in [0,1] (default: render.skinOpacity)")
	format := flag.String("format", "", "Image format: png, jpeg, tiff or bmp (overrides output.format)")
	scale := flag.Int("scale", 0, "Integer enlargement of saved images (overrides output.scale)")
	numCores := flag.Int("cores", 0, "Number of CPU cores to use per render (overrides render.numWorkers)")
	extractSlices := flag.Bool("extract-slices", false, "Save every slice along the selected axes")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *inputPath != "" {
		cfg.Volume.Path = *inputPath
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *scale > 0 {
		cfg.Output.Scale = *scale
	}
	if *numCores > 0 {
		cfg.Render.NumWorkers = *numCores
	}
	if *sliceIndex >= 0 {
		cfg.Render.PresetSlice = *sliceIndex
	}
	if *opacity >= 0 {
		cfg.Render.SkinOpacity = *opacity
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	axes := models.Axes
	if *axisName != "all" {
		axis, err := models.ParseAxis(*axisName)
		if err != nil {
			log.Fatalf("%v", err)
		}
		axes = []models.Axis{axis}
	}

	logging.SetVerbose(cfg.Output.Verbose)
	logging.Setup(&cfg.Logging)
	defer logging.Shutdown()

	fmt.Println("================================")
	fmt.Println("CT HEAD VIEWER: SLICES AND VOLUME RENDERING")
	fmt.Println("================================")

	// Load the volume once; every view reads from it
	startTime := time.Now()
	logging.Infof("Loading %s (%v, %s)", cfg.Volume.Path, cfg.Volume.Dims,
		humanize.Bytes(uint64(volume.StreamSize(cfg.Volume.Dims))))
	ds, err := volume.LoadFile(cfg.Volume.Path, cfg.Volume.Dims)
	if err != nil {
		logging.Errorf("%v", err)
		logging.Shutdown()
		os.Exit(1)
	}
	logging.Infof("Loaded %s voxels in %v, intensity range [%d, %d]",
		humanize.Comma(int64(ds.Dims().Len())), time.Since(startTime).Round(time.Millisecond), ds.Min(), ds.Max())

	if ds.Degenerate() {
		if cfg.Volume.StrictRange {
			logging.Errorf("%v", ds.CheckRange())
			logging.Shutdown()
			os.Exit(1)
		}
		logging.Warningf("All samples equal %d; slices will be drawn mid-gray", ds.Min())
	}

	if *mode == "stats" {
		printStats(volume.Stats(ds))
		return
	}

	reqs, err := buildRequests(*mode, axes, ds.Dims(), cfg.Render.PresetSlice, cfg.Render.SkinOpacity)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	f, _ := visualization.ParseFormat(cfg.Output.Format)
	opts := visualization.ExportOptions{
		Format:  f,
		Quality: cfg.Output.Quality,
		Scale:   cfg.Output.Scale,
		Filter:  visualization.Filter(cfg.Output.Filter),
	}

	viewer := visualization.NewViewer(ds, cfg.Render.NumWorkers)

	fmt.Printf("Producing %d views with %d workers...\n", len(reqs), cfg.Render.NumWorkers)
	startTime = time.Now()
	rasters, err := viewer.Serve(context.Background(), reqs)
	if err != nil {
		logging.Errorf("%v", err)
		logging.Shutdown()
		os.Exit(1)
	}
	logging.Debugf("Views computed in %v", time.Since(startTime))

	for i, req := range reqs {
		filename := filepath.Join(cfg.Output.Dir, viewFilename(req)+opts.Format.Ext())
		if err := viewer.SaveRaster(rasters[i], filename, opts); err != nil {
			logging.Warningf("Failed to save %v: %v", req, err)
			continue
		}
		fmt.Printf("Saved %v to %s\n", req, filename)
	}

	// Extract and save every slice if requested
	if *extractSlices {
		fmt.Println("\nExtracting slices along the selected axes...")
		for _, axis := range axes {
			axisDir := filepath.Join(cfg.Output.Dir, "slices", axis.String())
			fmt.Printf("Saving %s slices to: %s\n", axis, axisDir)

			if err := viewer.SaveSliceSequence(axis, axisDir, opts); err != nil {
				logging.Warningf("Failed to save %s slices: %v", axis, err)
			}
		}
		fmt.Println("Slice extraction completed!")
	}
}

// buildRequests turns the command line mode into view requests. A slice index
// past the end of an axis skips that axis's slice with a warning; renders are
// still produced.
func buildRequests(mode string, axes []models.Axis, dims models.Dims, slice int, skinOpacity float64) ([]visualization.Request, error) {
	var reqs []visualization.Request
	withSlices := mode == "slice" || mode == "both"
	withRenders := mode == "render" || mode == "both"
	if !withSlices && !withRenders {
		return nil, fmt.Errorf("unknown mode %q (must be slice, render, both or stats)", mode)
	}

	for _, axis := range axes {
		if withSlices {
			g, err := axis.Geometry(dims)
			if err != nil {
				return nil, err
			}
			if slice >= g.Extent {
				logging.Warningf("Slice %d is outside the %s axis (%d slices), skipping", slice, axis, g.Extent)
			} else {
				reqs = append(reqs, visualization.Request{Kind: visualization.SliceRequest, Axis: axis, Index: slice})
			}
		}
		if withRenders {
			reqs = append(reqs, visualization.Request{Kind: visualization.RenderRequest, Axis: axis, SkinOpacity: skinOpacity})
		}
	}
	return reqs, nil
}

func viewFilename(req visualization.Request) string {
	if req.Kind == visualization.SliceRequest {
		return fmt.Sprintf("slice_%s_%03d", req.Axis, req.Index)
	}
	return fmt.Sprintf("render_%s_%03d", req.Axis, int(req.SkinOpacity*100+0.5))
}

func printStats(s volume.Statistics) {
	fmt.Printf("\nVolume statistics:\n")
	fmt.Printf("==================\n")
	fmt.Printf("Voxels: %s\n", humanize.Comma(int64(s.Voxels)))
	fmt.Printf("Range: [%d, %d]\n", s.Min, s.Max)
	fmt.Printf("Mean: %.2f\n", s.Mean)
	fmt.Printf("Standard deviation: %.2f\n", s.StdDev)
	for b := transfer.Band(0); b < transfer.NumBands; b++ {
		fmt.Printf("- %-12s %12s (%.1f%%)\n", b.String()+":", humanize.Comma(int64(s.Bands[b])), 100*s.Fraction(b))
	}
}
