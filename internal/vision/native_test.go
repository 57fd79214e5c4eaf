package vision

import (
	"image"
	"image/color"
	"testing"

	"repeat-align/pkg/geometry"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestNativeWarpIdentity(t *testing.T) {
	e := NewNativeEngine()
	src := solidImage(32, 24, color.RGBA{200, 100, 50, 255})
	src.SetRGBA(10, 10, color.RGBA{0, 0, 255, 255})

	out, err := e.Warp(src, geometry.FromAffine(geometry.Identity()), 32, 24)
	if err != nil {
		t.Fatalf("warp: %v", err)
	}
	got := out.(*image.RGBA).RGBAAt(10, 10)
	if got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("identity warp moved pixel (10,10): %+v", got)
	}
}

func TestNativeWarpTranslation(t *testing.T) {
	e := NewNativeEngine()
	src := solidImage(40, 40, color.RGBA{0, 0, 0, 255})
	src.SetRGBA(5, 5, color.RGBA{255, 255, 255, 255})

	tr := geometry.FromAffine(geometry.AffineTransform{A: 1, D: 1, TX: 10, TY: 4})
	out, err := e.Warp(src, tr, 40, 40)
	if err != nil {
		t.Fatalf("warp: %v", err)
	}
	got := out.(*image.RGBA).RGBAAt(15, 9)
	if got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("translated pixel not found at (15,9): %+v", got)
	}
}

func TestNativeWarpOutsideStaysTransparent(t *testing.T) {
	e := NewNativeEngine()
	src := solidImage(10, 10, color.RGBA{255, 0, 0, 255})

	tr := geometry.FromAffine(geometry.AffineTransform{A: 1, D: 1, TX: 30, TY: 30})
	out, err := e.Warp(src, tr, 20, 20)
	if err != nil {
		t.Fatalf("warp: %v", err)
	}
	if got := out.(*image.RGBA).RGBAAt(0, 0); got.A != 0 {
		t.Errorf("unmapped pixel should stay transparent, got %+v", got)
	}
}

func TestNativeWarpRejectsSingularTransform(t *testing.T) {
	e := NewNativeEngine()
	src := solidImage(10, 10, color.RGBA{255, 0, 0, 255})

	singular := geometry.FromAffine(geometry.AffineTransform{A: 1, B: 2, C: 2, D: 4})
	if _, err := e.Warp(src, singular, 10, 10); err == nil {
		t.Error("singular transform should fail")
	}
}

func TestNativeResize(t *testing.T) {
	e := NewNativeEngine()
	src := solidImage(100, 60, color.RGBA{10, 20, 30, 255})

	out, err := e.Resize(src, 50, 30, InterpLinear)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	b := out.Bounds()
	if b.Dx() != 50 || b.Dy() != 30 {
		t.Errorf("resized dims = %v", b)
	}
	if got := out.(*image.RGBA).RGBAAt(25, 15); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("solid image should stay solid after resize, got %+v", got)
	}

	if _, err := e.Resize(src, 0, 30, InterpLinear); err == nil {
		t.Error("zero width should fail")
	}
	if _, err := e.Resize(nil, 10, 10, InterpLinear); err == nil {
		t.Error("nil raster should fail")
	}
}

func TestNativeEndToEndSolveAndWarp(t *testing.T) {
	// Solve a transform from correspondences, then warp and confirm a
	// marker pixel lands where the correspondence says it should.
	e := NewNativeEngine()

	src := []geometry.Point2D{{X: 10, Y: 10}, {X: 90, Y: 10}, {X: 90, Y: 70}, {X: 10, Y: 70}}
	dst := []geometry.Point2D{{X: 20, Y: 14}, {X: 100, Y: 14}, {X: 100, Y: 74}, {X: 20, Y: 74}} // +10, +4 shift

	tr, err := e.SolveAffine(src, dst)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	img := solidImage(120, 90, color.RGBA{0, 0, 0, 255})
	img.SetRGBA(10, 10, color.RGBA{255, 255, 255, 255})

	out, err := e.Warp(img, geometry.FromAffine(tr), 120, 90)
	if err != nil {
		t.Fatalf("warp: %v", err)
	}
	if got := out.(*image.RGBA).RGBAAt(20, 14); got.R != 255 {
		t.Errorf("marker should move to (20,14), got %+v", got)
	}
}
