package visualization

import (
	"errors"
	"math"
	"testing"

	"ctheadviewer/internal/models"
)

const (
	air  int16 = -500
	skin int16 = 0
	soft int16 = 100
	bone int16 = 1000
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

// TestRenderAirIsBlack renders a volume of pure air
func TestRenderAirIsBlack(t *testing.T) {
	ds := newDataset(t, models.Dims{Width: 2, Height: 2, Depth: 2}, func(x, y, z int) int16 { return air })

	for _, axis := range models.Axes {
		for _, opacity := range []float64{0, 0.12, 0.5, 1} {
			img, err := RenderVolume(ds, axis, opacity)
			if err != nil {
				t.Fatalf("%v render failed: %v", axis, err)
			}
			for i, v := range img.Pix {
				if v != 0 {
					t.Fatalf("%v at opacity %v: channel %d is %v, expected 0", axis, opacity, i, v)
				}
			}
		}
	}
}

// TestRenderInvisibleSkin checks that skin contributes nothing at zero opacity
func TestRenderInvisibleSkin(t *testing.T) {
	ds := newDataset(t, models.Dims{Width: 3, Height: 3, Depth: 4}, func(x, y, z int) int16 {
		if (x+y+z)%2 == 0 {
			return skin
		}
		return soft
	})

	for _, axis := range models.Axes {
		img, err := RenderVolume(ds, axis, 0)
		if err != nil {
			t.Fatalf("%v render failed: %v", axis, err)
		}
		for _, v := range img.Pix {
			if v != 0 {
				t.Fatalf("%v: expected black, got channel value %v", axis, v)
			}
		}
	}
}

// TestRenderBoneConvergesToWhite verifies that longer bone columns get brighter
// and approach white
func TestRenderBoneConvergesToWhite(t *testing.T) {
	prev := 0.0
	for depth := 1; depth <= 8; depth++ {
		ds := newDataset(t, models.Dims{Width: 1, Height: 1, Depth: depth}, func(x, y, z int) int16 { return bone })
		img, err := RenderVolume(ds, models.Axial, 0)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}

		r, g, b := img.RGB(0, 0)
		want := 1 - math.Pow(0.2, float64(depth))
		if !approx(r, want) || !approx(g, want) || !approx(b, want) {
			t.Errorf("Depth %d: expected %v, got (%v, %v, %v)", depth, want, r, g, b)
		}
		if r <= prev {
			t.Errorf("Depth %d: brightness did not increase (%v <= %v)", depth, r, prev)
		}
		prev = r
	}
	if prev < 0.999 {
		t.Errorf("Expected a long bone column to be nearly white, got %v", prev)
	}
}

// TestRenderCompositing checks the accumulation against a hand-computed column
func TestRenderCompositing(t *testing.T) {
	column := []int16{air, skin, soft, bone, skin}
	ds := newDataset(t, models.Dims{Width: 1, Height: 1, Depth: len(column)}, func(x, y, z int) int16 { return column[z] })

	const a = 0.5
	// air and soft tissue are transparent; skin then bone then hidden skin
	wantR := a*1.0 + (1-a)*0.8 + (1-a)*0.2*a*1.0
	wantG := a*0.79 + (1-a)*0.8 + (1-a)*0.2*a*0.79
	wantB := a*0.6 + (1-a)*0.8 + (1-a)*0.2*a*0.6

	img, err := RenderVolume(ds, models.Axial, a)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	r, g, b := img.RGB(0, 0)
	if !approx(r, wantR) || !approx(g, wantG) || !approx(b, wantB) {
		t.Errorf("Expected (%v, %v, %v), got (%v, %v, %v)", wantR, wantG, wantB, r, g, b)
	}
}

// TestRenderFrontToBack verifies that a fully opaque sample hides what lies
// behind it, and that the march starts at index 0
func TestRenderFrontToBack(t *testing.T) {
	column := []int16{skin, bone}
	ds := newDataset(t, models.Dims{Width: 1, Height: 1, Depth: 2}, func(x, y, z int) int16 { return column[z] })

	img, err := RenderVolume(ds, models.Axial, 1)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	r, g, b := img.RGB(0, 0)
	if r != 1 || g != 0.79 || b != 0.6 {
		t.Errorf("Expected pure skin colour, got (%v, %v, %v)", r, g, b)
	}
}

// TestRenderMarchLength places one bone voxel in the far corner of a volume
// with three different extents. Every axis must march far enough to reach it.
func TestRenderMarchLength(t *testing.T) {
	dims := models.Dims{Width: 3, Height: 4, Depth: 5}
	ds := newDataset(t, dims, func(x, y, z int) int16 {
		if x == 2 && y == 3 && z == 4 {
			return bone
		}
		return air
	})

	tests := []struct {
		axis models.Axis
		i, j int
	}{
		{models.Axial, 2, 3},
		{models.Coronal, 2, 4},
		{models.Sagittal, 3, 4},
	}

	for _, tc := range tests {
		img, err := RenderVolume(ds, tc.axis, 0.5)
		if err != nil {
			t.Fatalf("%v render failed: %v", tc.axis, err)
		}
		for j := 0; j < img.Height; j++ {
			for i := 0; i < img.Width; i++ {
				r, _, _ := img.RGB(i, j)
				want := 0.0
				if i == tc.i && j == tc.j {
					want = 0.8
				}
				if r != want {
					t.Errorf("%v pixel (%d,%d): expected %v, got %v", tc.axis, i, j, want, r)
				}
			}
		}
	}
}

// TestRenderMonotoneInSkinOpacity verifies channels never drop as skin
// becomes more opaque in columns whose only visible band is skin
func TestRenderMonotoneInSkinOpacity(t *testing.T) {
	dims := models.Dims{Width: 4, Height: 3, Depth: 6}
	bands := []int16{air, skin, soft, skin, -300, 49}
	ds := newDataset(t, dims, func(x, y, z int) int16 { return bands[(x+2*y+z)%len(bands)] })

	for _, axis := range models.Axes {
		prev, err := RenderVolume(ds, axis, 0)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		for step := 1; step <= 10; step++ {
			opacity := float64(step) / 10
			cur, err := RenderVolume(ds, axis, opacity)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			for i := range cur.Pix {
				if cur.Pix[i] < prev.Pix[i] {
					t.Fatalf("%v: channel %d dropped from %v to %v at opacity %v",
						axis, i, prev.Pix[i], cur.Pix[i], opacity)
				}
			}
			prev = cur
		}
	}
}

// TestRenderDeterministic verifies repeated and differently parallelised
// renders are bit-identical
func TestRenderDeterministic(t *testing.T) {
	dims := models.Dims{Width: 7, Height: 6, Depth: 5}
	ds := newDataset(t, dims, func(x, y, z int) int16 {
		return int16((x*131+y*71+z*29)%1400 - 600)
	})

	for _, axis := range models.Axes {
		first, err := RenderVolume(ds, axis, 0.12)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		second, _ := RenderVolume(ds, axis, 0.12)
		serial, _ := renderVolume(ds, axis, 0.12, 1)

		for i := range first.Pix {
			if first.Pix[i] != second.Pix[i] || first.Pix[i] != serial.Pix[i] {
				t.Fatalf("%v: channel %d differs between renders", axis, i)
			}
			if first.Pix[i] < 0 || first.Pix[i] > 1 {
				t.Fatalf("%v: channel %d out of range: %v", axis, i, first.Pix[i])
			}
		}
	}
}

func TestRenderRejectsBadInput(t *testing.T) {
	ds := newDataset(t, models.Dims{Width: 2, Height: 2, Depth: 2}, coords)

	for _, opacity := range []float64{-0.1, 1.5, math.NaN()} {
		if _, err := RenderVolume(ds, models.Axial, opacity); !errors.Is(err, ErrInvalidOpacity) {
			t.Errorf("Opacity %v: expected ErrInvalidOpacity, got %v", opacity, err)
		}
	}
	if _, err := RenderVolume(ds, models.Axis(-1), 0.5); !errors.Is(err, models.ErrInvalidAxis) {
		t.Errorf("Expected ErrInvalidAxis, got %v", err)
	}
}
