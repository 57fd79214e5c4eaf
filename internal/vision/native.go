package vision

import (
	"fmt"
	"image"
	"image/color"

	"repeat-align/internal/imaging"
	"repeat-align/pkg/geometry"
)

// NativeEngine is a pure-Go implementation of the vision capability built on
// gonum solvers and inverse-mapped resampling. It backs headless tests and
// acts as the fallback when OpenCV is unavailable.
type NativeEngine struct{}

// NewNativeEngine returns the pure-Go engine.
func NewNativeEngine() *NativeEngine {
	return &NativeEngine{}
}

// SolveAffine implements Engine.
func (e *NativeEngine) SolveAffine(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	return SolveAffineLeastSquares(src, dst)
}

// SolveHomography implements Engine.
func (e *NativeEngine) SolveHomography(src, dst []geometry.Point2D) (geometry.ProjectiveTransform, error) {
	return SolveHomographyDLT(src, dst)
}

// Warp implements Engine. Destination pixels are mapped back through the
// inverse transform and sampled bilinearly; pixels that land outside the
// source stay transparent.
func (e *NativeEngine) Warp(img image.Image, t geometry.ProjectiveTransform, w, h int) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("warp: nil source raster")
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("warp: invalid target dimensions %dx%d", w, h)
	}
	inv, ok := t.Inverse()
	if !ok {
		return nil, fmt.Errorf("warp: transform is not invertible")
	}

	src := imaging.ToRGBA(img)
	srcW := src.Bounds().Dx()
	srcH := src.Bounds().Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := inv.Apply(geometry.Point2D{X: float64(x), Y: float64(y)})
			if p.X < 0 || p.Y < 0 || p.X > float64(srcW-1) || p.Y > float64(srcH-1) {
				continue
			}
			dst.SetRGBA(x, y, bilinearSample(src, p.X, p.Y))
		}
	}
	return dst, nil
}

// Resize implements Engine.
func (e *NativeEngine) Resize(img image.Image, w, h int, interp Interpolation) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("resize: nil source raster")
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("resize: invalid target dimensions %dx%d", w, h)
	}
	if interp == InterpNearest {
		return imaging.ScaleNearest(img, w, h), nil
	}
	return imaging.Scale(img, w, h), nil
}

func bilinearSample(src *image.RGBA, x, y float64) color.RGBA {
	x0 := int(x)
	y0 := int(y)
	x1 := x0 + 1
	y1 := y0 + 1
	maxX := src.Bounds().Max.X - 1
	maxY := src.Bounds().Max.Y - 1
	if x1 > maxX {
		x1 = maxX
	}
	if y1 > maxY {
		y1 = maxY
	}
	fx := x - float64(x0)
	fy := y - float64(y0)

	c00 := src.RGBAAt(x0, y0)
	c10 := src.RGBAAt(x1, y0)
	c01 := src.RGBAAt(x0, y1)
	c11 := src.RGBAAt(x1, y1)

	lerp2 := func(a, b, c, d uint8) uint8 {
		top := float64(a)*(1-fx) + float64(b)*fx
		bot := float64(c)*(1-fx) + float64(d)*fx
		return uint8(top*(1-fy) + bot*fy + 0.5)
	}

	return color.RGBA{
		R: lerp2(c00.R, c10.R, c01.R, c11.R),
		G: lerp2(c00.G, c10.G, c01.G, c11.G),
		B: lerp2(c00.B, c10.B, c01.B, c11.B),
		A: lerp2(c00.A, c10.A, c01.A, c11.A),
	}
}
