package vision

import (
	"math"
	"testing"

	"repeat-align/pkg/geometry"
)

func applyAffine(t geometry.AffineTransform, pts []geometry.Point2D) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return out
}

func TestSolveAffineExactWithThreePoints(t *testing.T) {
	want := geometry.AffineTransform{A: 1.1, B: -0.2, TX: 40, C: 0.15, D: 0.9, TY: -10}
	src := []geometry.Point2D{{X: 10, Y: 10}, {X: 400, Y: 50}, {X: 200, Y: 300}}
	dst := applyAffine(want, src)

	got, err := SolveAffineLeastSquares(src, dst)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	checkAffineClose(t, got, want, 1e-8)
}

func TestSolveAffineLeastSquaresOverdetermined(t *testing.T) {
	want := geometry.AffineTransform{A: 0.95, B: 0.05, TX: -20, C: -0.03, D: 1.02, TY: 12}
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 500, Y: 20}, {X: 80, Y: 420}, {X: 300, Y: 300}, {X: 450, Y: 450}, {X: 120, Y: 60}}
	dst := applyAffine(want, src)

	got, err := SolveAffineLeastSquares(src, dst)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	checkAffineClose(t, got, want, 1e-8)
}

func TestSolveAffineRejectsBadInput(t *testing.T) {
	pts := []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 1}}
	if _, err := SolveAffineLeastSquares(pts, pts); err == nil {
		t.Error("two points should be rejected")
	}
	if _, err := SolveAffineLeastSquares(pts, pts[:1]); err == nil {
		t.Error("mismatched counts should be rejected")
	}
}

func TestSolveHomographyRecoversKnownTransform(t *testing.T) {
	want := geometry.ProjectiveTransform{M: [9]float64{
		1.05, 0.02, 15,
		-0.01, 0.98, -8,
		2e-5, 1e-5, 1,
	}}
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 640, Y: 0}, {X: 640, Y: 480}, {X: 0, Y: 480}, {X: 320, Y: 240}, {X: 100, Y: 400}}
	dst := make([]geometry.Point2D, len(src))
	for i, p := range src {
		dst[i] = want.Apply(p)
	}

	got, err := SolveHomographyDLT(src, dst)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	// Compare by reprojection rather than matrix entries.
	for _, p := range src {
		a := want.Apply(p)
		b := got.Apply(p)
		if math.Abs(a.X-b.X) > 1e-6 || math.Abs(a.Y-b.Y) > 1e-6 {
			t.Errorf("reprojection of %+v: want %+v, got %+v", p, a, b)
		}
	}
}

func TestSolveHomographyNeedsFourPoints(t *testing.T) {
	pts := []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	if _, err := SolveHomographyDLT(pts, pts); err == nil {
		t.Error("three points should be rejected")
	}
}

func TestCollinear(t *testing.T) {
	cases := []struct {
		name string
		pts  []geometry.Point2D
		want bool
	}{
		{"horizontal line", []geometry.Point2D{{X: 0, Y: 5}, {X: 100, Y: 5}, {X: 200, Y: 5}}, true},
		{"diagonal line", []geometry.Point2D{{X: 0, Y: 0}, {X: 50, Y: 50}, {X: 120, Y: 120}, {X: 300, Y: 300}}, true},
		{"triangle", []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 50, Y: 80}}, false},
		{"coincident", []geometry.Point2D{{X: 7, Y: 7}, {X: 7, Y: 7}, {X: 7, Y: 7}}, true},
		{"near line", []geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 0.0001}, {X: 200, Y: 0}}, true},
		{"two points", []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 1}}, false},
	}

	for _, tc := range cases {
		if got := Collinear(tc.pts, 1e-3); got != tc.want {
			t.Errorf("%s: Collinear = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func checkAffineClose(t *testing.T, got, want geometry.AffineTransform, tol float64) {
	t.Helper()
	diffs := []float64{
		got.A - want.A, got.B - want.B, got.TX - want.TX,
		got.C - want.C, got.D - want.D, got.TY - want.TY,
	}
	for _, d := range diffs {
		if math.Abs(d) > tol {
			t.Fatalf("transform mismatch: got %+v, want %+v", got, want)
		}
	}
}
