// Package vision defines the matrix/vision capability the toolkit depends
// on: transform solving, warping and resampling. The toolkit treats this as
// an injected collaborator; the registration and crop engines never touch
// pixel math directly.
package vision

import (
	"image"

	"repeat-align/pkg/geometry"
)

// Interpolation selects the resampling filter for Resize.
type Interpolation int

const (
	InterpNearest Interpolation = iota
	InterpLinear
	InterpCubic
)

// Engine is the injected vision capability. Implementations own whatever
// native resources they allocate per call and must release them on every
// exit path.
type Engine interface {
	// SolveAffine computes the least-squares affine transform mapping
	// src[i] to dst[i]. Requires at least 3 correspondences.
	SolveAffine(src, dst []geometry.Point2D) (geometry.AffineTransform, error)

	// SolveHomography computes the projective transform mapping src[i]
	// to dst[i]. Requires at least 4 correspondences.
	SolveHomography(src, dst []geometry.Point2D) (geometry.ProjectiveTransform, error)

	// Warp applies a transform to the raster, producing a w x h result.
	Warp(img image.Image, t geometry.ProjectiveTransform, w, h int) (image.Image, error)

	// Resize resamples the raster to the target dimensions.
	Resize(img image.Image, w, h int, interp Interpolation) (image.Image, error)
}
