// Package transfer maps CT sample values to opacity and colour for volume
// rendering. The table separates air, skin, soft tissue and bone by their
// Hounsfield-like intensity and lets the caller tune how opaque skin is.
package transfer

import "math"

// LightIntensity is the strength of the single frontal light source.
const LightIntensity = 1.0

// DefaultSkinOpacity shows skin as a faint shell over the skull.
const DefaultSkinOpacity = 0.12

// BoneOpacity is the fixed opacity of the bone band.
const BoneOpacity = 0.8

// Band is a classification interval of sample values.
type Band int

const (
	// Air is everything below -300.
	Air Band = iota
	// Skin covers -300 to 49 inclusive.
	Skin
	// SoftTissue covers 50 to 299 inclusive.
	SoftTissue
	// Bone covers 300 to 4096 inclusive.
	Bone
	// Unclassified is anything above 4096. It contributes nothing.
	Unclassified

	// NumBands is the number of bands.
	NumBands
)

var bandNames = [NumBands]string{"air", "skin", "soft tissue", "bone", "unclassified"}

func (b Band) String() string {
	if b < 0 || b >= NumBands {
		return "invalid"
	}
	return bandNames[b]
}

// BandOf returns the band a sample falls in.
func BandOf(sample int16) Band {
	switch {
	case sample < -300:
		return Air
	case sample <= 49:
		return Skin
	case sample <= 299:
		return SoftTissue
	case sample <= 4096:
		return Bone
	default:
		return Unclassified
	}
}

// Classification is the opacity and colour weight assigned to one sample.
type Classification struct {
	Opacity float64
	R, G, B float64
}

// Contribution returns the light a fully visible sample adds to each channel.
func (c Classification) Contribution() (r, g, b float64) {
	return LightIntensity * c.Opacity * c.R,
		LightIntensity * c.Opacity * c.G,
		LightIntensity * c.Opacity * c.B
}

var (
	skinColour  = Classification{R: 1.0, G: 0.79, B: 0.6}
	whiteColour = Classification{R: 1, G: 1, B: 1}
)

// Classify returns the opacity and colour weight of sample. skinOpacity is
// used as is for the skin band; callers validate it with ValidOpacity.
func Classify(sample int16, skinOpacity float64) Classification {
	switch BandOf(sample) {
	case Skin:
		c := skinColour
		c.Opacity = skinOpacity
		return c
	case SoftTissue:
		return whiteColour
	case Bone:
		c := whiteColour
		c.Opacity = BoneOpacity
		return c
	default:
		return Classification{}
	}
}

// ValidOpacity reports whether v is a usable opacity in [0,1].
func ValidOpacity(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
