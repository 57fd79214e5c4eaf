package geometry

import (
	"math"
	"testing"
)

func TestRectIntersect(t *testing.T) {
	img := NewRect(0, 0, 150, 300)

	cases := []struct {
		name string
		box  Rect
		want Rect
	}{
		{"inside", NewRect(10, 10, 50, 50), NewRect(10, 10, 50, 50)},
		{"past left edge", NewRect(-50, 10, 200, 100), NewRect(0, 10, 150, 100)},
		{"past bottom right", NewRect(100, 250, 100, 100), NewRect(100, 250, 50, 50)},
		{"fully outside", NewRect(200, 400, 50, 50), Rect{}},
		{"touching edge only", NewRect(150, 0, 50, 50), Rect{}},
	}

	for _, tc := range cases {
		if got := tc.box.Intersect(img); got != tc.want {
			t.Errorf("%s: %+v.Intersect(img) = %+v, want %+v", tc.name, tc.box, got, tc.want)
		}
	}
}

func TestAffineInverseRoundTrip(t *testing.T) {
	tr := AffineTransform{A: 1.2, B: 0.1, TX: 30, C: -0.05, D: 0.9, TY: -12}
	inv, ok := tr.Inverse()
	if !ok {
		t.Fatal("transform should be invertible")
	}

	for _, p := range []Point2D{{X: 0, Y: 0}, {X: 100, Y: 50}, {X: -20, Y: 400}} {
		back := inv.Apply(tr.Apply(p))
		if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
			t.Errorf("round trip of %+v gave %+v", p, back)
		}
	}
}

func TestAffineInverseSingular(t *testing.T) {
	tr := AffineTransform{A: 1, B: 2, C: 2, D: 4}
	if _, ok := tr.Inverse(); ok {
		t.Error("singular transform reported as invertible")
	}
}

func TestProjectiveAffineEquivalence(t *testing.T) {
	aff := AffineTransform{A: 0.8, B: 0, TX: 10, C: 0, D: 1.1, TY: -5}
	proj := FromAffine(aff)

	if !proj.IsAffine() {
		t.Fatal("lifted affine transform should report IsAffine")
	}
	for _, p := range []Point2D{{X: 0, Y: 0}, {X: 33, Y: 71}, {X: 1000, Y: 1000}} {
		a := aff.Apply(p)
		h := proj.Apply(p)
		if math.Abs(a.X-h.X) > 1e-9 || math.Abs(a.Y-h.Y) > 1e-9 {
			t.Errorf("affine %+v != projective %+v for %+v", a, h, p)
		}
	}
}

func TestProjectiveInverse(t *testing.T) {
	h := ProjectiveTransform{M: [9]float64{
		1.1, 0.02, 5,
		-0.01, 0.95, 8,
		1e-4, -2e-5, 1,
	}}
	inv, ok := h.Inverse()
	if !ok {
		t.Fatal("homography should be invertible")
	}
	for _, p := range []Point2D{{X: 10, Y: 10}, {X: 640, Y: 480}, {X: 0, Y: 999}} {
		back := inv.Apply(h.Apply(p))
		if math.Abs(back.X-p.X) > 1e-6 || math.Abs(back.Y-p.Y) > 1e-6 {
			t.Errorf("round trip of %+v gave %+v", p, back)
		}
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{X: 10, Y: 20}, {X: -5, Y: 8}, {X: 40, Y: 3}}
	got := BoundingBox(pts)
	want := NewRect(-5, 3, 45, 17)
	if got != want {
		t.Errorf("BoundingBox = %+v, want %+v", got, want)
	}
	if got := BoundingBox(nil); got != (Rect{}) {
		t.Errorf("empty point set should give zero rect, got %+v", got)
	}
}
