package vision

import (
	"fmt"
	"math"

	"repeat-align/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// SolveAffineLeastSquares computes the affine transform mapping src[i] to
// dst[i] by QR least squares. With exactly 3 pairs the system is determined
// and the fit is exact.
func SolveAffineLeastSquares(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	n := len(src)
	if n != len(dst) {
		return geometry.AffineTransform{}, fmt.Errorf("point count mismatch: %d vs %d", n, len(dst))
	}
	if n < 3 {
		return geometry.AffineTransform{}, fmt.Errorf("need at least 3 points, got %d", n)
	}

	// Stack x' = a*x + b*y + tx and y' = c*x + d*y + ty row pairs.
	A := mat.NewDense(n*2, 6, nil)
	B := mat.NewVecDense(n*2, nil)

	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y
		xp, yp := dst[i].X, dst[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, xp)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		B.SetVec(i*2+1, yp)
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return geometry.AffineTransform{}, fmt.Errorf("affine solve failed: %w", err)
	}

	return geometry.AffineTransform{
		A:  params.AtVec(0),
		B:  params.AtVec(1),
		TX: params.AtVec(2),
		C:  params.AtVec(3),
		D:  params.AtVec(4),
		TY: params.AtVec(5),
	}, nil
}

// SolveHomographyDLT computes the projective transform mapping src[i] to
// dst[i] using the normalized direct linear transform. The homography is the
// right singular vector for the smallest singular value of the 2n x 9 design
// matrix, denormalized and scaled so M[8] == 1.
func SolveHomographyDLT(src, dst []geometry.Point2D) (geometry.ProjectiveTransform, error) {
	n := len(src)
	if n != len(dst) {
		return geometry.ProjectiveTransform{}, fmt.Errorf("point count mismatch: %d vs %d", n, len(dst))
	}
	if n < 4 {
		return geometry.ProjectiveTransform{}, fmt.Errorf("need at least 4 points, got %d", n)
	}

	srcNorm, tSrc := normalizePoints(src)
	dstNorm, tDst := normalizePoints(dst)

	A := mat.NewDense(n*2, 9, nil)
	for i := 0; i < n; i++ {
		x, y := srcNorm[i].X, srcNorm[i].Y
		xp, yp := dstNorm[i].X, dstNorm[i].Y

		A.SetRow(i*2, []float64{-x, -y, -1, 0, 0, 0, x * xp, y * xp, xp})
		A.SetRow(i*2+1, []float64{0, 0, 0, -x, -y, -1, x * yp, y * yp, yp})
	}

	var svd mat.SVD
	if !svd.Factorize(A, mat.SVDFullV) {
		return geometry.ProjectiveTransform{}, fmt.Errorf("homography SVD failed to converge")
	}

	var v mat.Dense
	svd.VTo(&v)

	var h geometry.ProjectiveTransform
	for i := 0; i < 9; i++ {
		h.M[i] = v.At(i, 8)
	}

	// Denormalize: H = inv(Tdst) * Hn * Tsrc.
	h = mul3(mul3(invertNormalization(tDst), h), tSrc.matrix())

	if math.Abs(h.M[8]) < 1e-12 {
		return geometry.ProjectiveTransform{}, fmt.Errorf("degenerate homography")
	}
	for i := range h.M {
		h.M[i] /= h.M[8]
	}
	return h, nil
}

// Collinear reports whether the points lie (numerically) on a single line.
// The test compares the singular values of the centered coordinate matrix:
// a near-zero second singular value means no spread off the principal axis.
func Collinear(points []geometry.Point2D, tol float64) bool {
	if len(points) < 3 {
		return false
	}

	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(points))
	cy /= float64(len(points))

	A := mat.NewDense(len(points), 2, nil)
	for i, p := range points {
		A.Set(i, 0, p.X-cx)
		A.Set(i, 1, p.Y-cy)
	}

	var svd mat.SVD
	if !svd.Factorize(A, mat.SVDNone) {
		return true
	}
	sv := svd.Values(nil)
	if sv[0] == 0 {
		return true // all points coincide
	}
	return sv[1]/sv[0] < tol
}

// normalization transform: translate centroid to origin, scale mean distance
// to sqrt(2). Standard Hartley conditioning for the DLT.
type normTransform struct {
	scale, tx, ty float64
}

func normalizePoints(points []geometry.Point2D) ([]geometry.Point2D, normTransform) {
	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(points))
	cx /= n
	cy /= n

	var meanDist float64
	for _, p := range points {
		dx, dy := p.X-cx, p.Y-cy
		meanDist += math.Sqrt(dx*dx + dy*dy)
	}
	meanDist /= n

	scale := 1.0
	if meanDist > 0 {
		scale = math.Sqrt2 / meanDist
	}

	out := make([]geometry.Point2D, len(points))
	for i, p := range points {
		out[i] = geometry.Point2D{X: (p.X - cx) * scale, Y: (p.Y - cy) * scale}
	}
	return out, normTransform{scale: scale, tx: -cx * scale, ty: -cy * scale}
}

func (t normTransform) matrix() geometry.ProjectiveTransform {
	return geometry.ProjectiveTransform{M: [9]float64{
		t.scale, 0, t.tx,
		0, t.scale, t.ty,
		0, 0, 1,
	}}
}

func invertNormalization(t normTransform) geometry.ProjectiveTransform {
	inv, _ := t.matrix().Inverse()
	return inv
}

func mul3(a, b geometry.ProjectiveTransform) geometry.ProjectiveTransform {
	var out geometry.ProjectiveTransform
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += a.M[r*3+k] * b.M[k*3+c]
			}
			out.M[r*3+c] = sum
		}
	}
	return out
}
