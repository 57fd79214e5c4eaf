package geometry

import (
	"math"
)

// Every conversion between image, render and canvas space in the toolkit goes
// through the functions in this file, so rounding behavior stays in one place.

// ScaleToFit returns the largest size preserving srcW/srcH aspect ratio that
// fits within (maxW, maxH).
func ScaleToFit(srcW, srcH, maxW, maxH float64) Size {
	if srcW <= 0 || srcH <= 0 || maxW <= 0 || maxH <= 0 {
		return Size{}
	}
	ratio := math.Min(maxW/srcW, maxH/srcH)
	return Size{
		Width:  math.Round(srcW * ratio),
		Height: math.Round(srcH * ratio),
	}
}

// GetScale returns the per-axis factor that converts a coordinate measured in
// from's space into to's space. Swap the arguments for the reverse conversion.
func GetScale(from, to Rect) Point2D {
	if from.Width == 0 || from.Height == 0 {
		return Point2D{X: 1, Y: 1}
	}
	return Point2D{
		X: to.Width / from.Width,
		Y: to.Height / from.Height,
	}
}

// ScalePoint converts a point from one rectangle's space to another's.
// Coordinates are rounded half away from zero; the conversion is its own
// inverse under argument swap, up to that rounding.
func ScalePoint(p Point2D, from, to Rect) Point2D {
	s := GetScale(from, to)
	return Point2D{
		X: math.Round(p.X * s.X),
		Y: math.Round(p.Y * s.Y),
	}
}

// InRange reports whether (px, py) lies within radius of (cx, cy). Used for
// control-point hit testing.
func InRange(px, py, cx, cy, radius float64) bool {
	dx := px - cx
	dy := py - cy
	return dx*dx+dy*dy <= radius*radius
}
