package visualization

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Format is an image file format rasters can be saved in.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	TIFF Format = "tiff"
	BMP  Format = "bmp"
)

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	switch f {
	case JPEG:
		return ".jpg"
	case TIFF:
		return ".tiff"
	case BMP:
		return ".bmp"
	default:
		return ".png"
	}
}

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "tif", "tiff":
		return TIFF, nil
	case "bmp":
		return BMP, nil
	}
	return "", fmt.Errorf("unsupported image format: %q", s)
}

// FormatFromPath picks the format from a file name, defaulting to PNG.
func FormatFromPath(filename string) Format {
	f, err := ParseFormat(filepath.Ext(filename))
	if err != nil {
		return PNG
	}
	return f
}

// Encode writes img to w in the given format. quality only applies to JPEG.
func Encode(w io.Writer, img image.Image, f Format, quality int) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		if quality <= 0 || quality > 100 {
			quality = 90
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case BMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unsupported image format: %q", f)
}

// Filter selects the resampling kernel used by Scale.
type Filter string

const (
	Nearest    Filter = "nearest"
	Bilinear   Filter = "bilinear"
	CatmullRom Filter = "catmullrom"
)

func (f Filter) scaler() draw.Scaler {
	switch f {
	case Bilinear:
		return draw.BiLinear
	case CatmullRom:
		return draw.CatmullRom
	default:
		return draw.NearestNeighbor
	}
}

// Scale enlarges img by an integer factor into an 8-bit RGBA image. A factor
// below 2 returns img.
func Scale(img image.Image, factor int, f Filter) image.Image {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	f.scaler().Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
