// Package cv implements the vision capability on OpenCV via gocv. Transform
// solving stays in pure Go for cross-version compatibility; the pixel work
// (warp, resize) runs through OpenCV.
package cv

import (
	"fmt"
	"image"

	"repeat-align/internal/imaging"
	"repeat-align/internal/vision"
	"repeat-align/pkg/geometry"

	"gocv.io/x/gocv"
)

// Engine is the OpenCV-backed vision engine.
type Engine struct{}

// NewEngine returns the OpenCV-backed engine.
func NewEngine() *Engine {
	return &Engine{}
}

// SolveAffine implements vision.Engine.
func (e *Engine) SolveAffine(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	return vision.SolveAffineLeastSquares(src, dst)
}

// SolveHomography implements vision.Engine.
func (e *Engine) SolveHomography(src, dst []geometry.Point2D) (geometry.ProjectiveTransform, error) {
	return vision.SolveHomographyDLT(src, dst)
}

// guard converts an OpenCV panic into an error so it never crosses a panel
// operation boundary. The mat scope has already released by the time the
// deferred guard runs.
func guard(op string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: opencv failure: %v", op, r)
	}
}

// Warp implements vision.Engine. Affine transforms take the 2x3 path,
// projective ones the full 3x3 path.
func (e *Engine) Warp(img image.Image, t geometry.ProjectiveTransform, w, h int) (out image.Image, err error) {
	defer guard("warp", &err)
	if img == nil {
		return nil, fmt.Errorf("warp: nil source raster")
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("warp: invalid target dimensions %dx%d", w, h)
	}

	scope := newMatScope()
	defer scope.release()

	src, err := gocv.ImageToMatRGBA(imaging.ToRGBA(img))
	if err != nil {
		return nil, fmt.Errorf("warp: read raster: %w", err)
	}
	scope.track(&src)

	dst := gocv.NewMat()
	scope.track(&dst)

	if t.IsAffine() {
		m := scope.newMat(gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F))
		m.SetDoubleAt(0, 0, t.M[0])
		m.SetDoubleAt(0, 1, t.M[1])
		m.SetDoubleAt(0, 2, t.M[2])
		m.SetDoubleAt(1, 0, t.M[3])
		m.SetDoubleAt(1, 1, t.M[4])
		m.SetDoubleAt(1, 2, t.M[5])
		gocv.WarpAffine(src, &dst, *m, image.Point{X: w, Y: h})
	} else {
		m := scope.newMat(gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F))
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				m.SetDoubleAt(r, c, t.M[r*3+c])
			}
		}
		gocv.WarpPerspective(src, &dst, *m, image.Point{X: w, Y: h})
	}

	out, err = dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("warp: convert result: %w", err)
	}
	return out, nil
}

// Resize implements vision.Engine.
func (e *Engine) Resize(img image.Image, w, h int, interp vision.Interpolation) (out image.Image, err error) {
	defer guard("resize", &err)
	if img == nil {
		return nil, fmt.Errorf("resize: nil source raster")
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("resize: invalid target dimensions %dx%d", w, h)
	}

	scope := newMatScope()
	defer scope.release()

	src, err := gocv.ImageToMatRGBA(imaging.ToRGBA(img))
	if err != nil {
		return nil, fmt.Errorf("resize: read raster: %w", err)
	}
	scope.track(&src)

	dst := gocv.NewMat()
	scope.track(&dst)

	gocv.Resize(src, &dst, image.Point{X: w, Y: h}, 0, 0, interpFor(interp))

	out, err = dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("resize: convert result: %w", err)
	}
	return out, nil
}

func interpFor(i vision.Interpolation) gocv.InterpolationFlags {
	switch i {
	case vision.InterpNearest:
		return gocv.InterpolationNearestNeighbor
	case vision.InterpCubic:
		return gocv.InterpolationCubic
	default:
		return gocv.InterpolationLinear
	}
}
