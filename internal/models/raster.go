package models

import (
	"image"
	"image/color"
)

// Raster is a rendered view: a Width x Height grid of RGB triples with each
// channel in [0,1]. Every pixel is fully opaque.
//
// Raster implements image.Image so it can be handed to any encoder.
type Raster struct {
	// Pix holds the channels row by row. The pixel at (x, y) starts at
	// Pix[(y*Width+x)*3].
	Pix []float64

	Width  int
	Height int
}

// NewRaster allocates a black raster.
func NewRaster(width, height int) *Raster {
	return &Raster{
		Pix:    make([]float64, width*height*3),
		Width:  width,
		Height: height,
	}
}

// RGB returns the channels of pixel (x, y).
func (r *Raster) RGB(x, y int) (red, green, blue float64) {
	i := (y*r.Width + x) * 3
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2]
}

// SetRGB stores a pixel, clamping each channel to [0,1].
func (r *Raster) SetRGB(x, y int, red, green, blue float64) {
	i := (y*r.Width + x) * 3
	r.Pix[i] = clamp01(red)
	r.Pix[i+1] = clamp01(green)
	r.Pix[i+2] = clamp01(blue)
}

// SetGray stores the same intensity in all three channels.
func (r *Raster) SetGray(x, y int, v float64) {
	r.SetRGB(x, y, v, v, v)
}

func (r *Raster) ColorModel() color.Model { return color.RGBA64Model }

func (r *Raster) Bounds() image.Rectangle { return image.Rect(0, 0, r.Width, r.Height) }

func (r *Raster) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(r.Bounds())) {
		return color.RGBA64{}
	}
	red, green, blue := r.RGB(x, y)
	return color.RGBA64{
		R: to16(red),
		G: to16(green),
		B: to16(blue),
		A: 0xffff,
	}
}

func to16(v float64) uint16 {
	return uint16(clamp01(v)*65535 + 0.5)
}

// clamp01 also maps NaN to 0.
func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if !(v >= 0) {
		return 0
	}
	return v
}
