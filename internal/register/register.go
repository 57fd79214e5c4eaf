// Package register validates a control-point correspondence set, invokes
// the vision solver and applies the resulting warp.
package register

import (
	"fmt"
	"log"

	"repeat-align/internal/config"
	"repeat-align/internal/imaging"
	"repeat-align/internal/panel"
	"repeat-align/internal/vision"
	"repeat-align/pkg/geometry"
)

// collinearTol is the singular-value ratio below which a point set counts
// as collinear.
const collinearTol = 1e-3

// minPoints is the smallest correspondence set any transform family accepts.
const minPoints = 3

// Engine computes and applies the registration transform. The vision
// capability is injected; the engine owns no native resources itself.
type Engine struct {
	vision vision.Engine
	opts   config.Options
}

// New creates a registration engine.
func New(v vision.Engine, opts config.Options) *Engine {
	return &Engine{vision: v, opts: opts}
}

// SetProjective switches the transform family for subsequent alignments.
func (e *Engine) SetProjective(on bool) {
	e.opts.Projective = on
}

// Validate checks the correspondence preconditions without mutating either
// panel: images loaded, equal non-zero point counts of at least three,
// every point inside its panel's raster grid, and no collinear set.
func (e *Engine) Validate(moving, fixed *panel.Panel) error {
	if moving.Image == nil || fixed.Image == nil {
		return panel.ErrEmptyCanvas()
	}

	src := moving.Ptr.Points
	dst := fixed.Ptr.Points
	if len(src) < minPoints || len(src) != len(dst) {
		return panel.ErrMissingPoints(len(src), len(dst))
	}
	// A resize can shrink the raster out from under points placed earlier.
	if !pointsWithin(src, moving.Props.ImageDims) || !pointsWithin(dst, fixed.Props.ImageDims) {
		return panel.ErrMismatchedDims()
	}
	if vision.Collinear(src, collinearTol) || vision.Collinear(dst, collinearTol) {
		return panel.ErrCollinearPoints()
	}
	return nil
}

// pointsWithin reports whether every point lies on the raster grid.
func pointsWithin(pts []geometry.Point2D, dims geometry.Rect) bool {
	for _, pt := range pts {
		if pt.X < 0 || pt.Y < 0 || pt.X > dims.Width || pt.Y > dims.Height {
			return false
		}
	}
	return true
}

// Align warps the moving panel's raster into the fixed panel's geometry
// using the paired control points. On solver failure the moving panel keeps
// its prior image and returns to loaded.
func (e *Engine) Align(moving, fixed *panel.Panel) error {
	if err := e.Validate(moving, fixed); err != nil {
		return err
	}
	if err := moving.BeginTransform("align"); err != nil {
		return err
	}

	tr, err := e.solve(moving.Ptr.Points, fixed.Ptr.Points)
	if err != nil {
		return moving.AbortTransform(fmt.Errorf("transform solve failed: %w", err))
	}

	targetW := int(fixed.Props.ImageDims.Width)
	targetH := int(fixed.Props.ImageDims.Height)
	warped, err := e.vision.Warp(moving.Image, tr, targetW, targetH)
	if err != nil {
		return moving.AbortTransform(fmt.Errorf("warp failed: %w", err))
	}

	if err := moving.CommitTransform(imaging.ToRGBA(warped)); err != nil {
		return err
	}
	moving.Aligned = true

	log.Printf("aligned %s onto %s with %d control points (residual %.2fpx)",
		moving.ID, fixed.ID, len(moving.Ptr.Points),
		MeanResidual(moving.Ptr.Points, fixed.Ptr.Points, tr))
	return nil
}

// solve picks the transform family: a least-squares affine by default, or a
// full projective homography when configured and enough points exist.
func (e *Engine) solve(src, dst []geometry.Point2D) (geometry.ProjectiveTransform, error) {
	if e.opts.Projective && len(src) >= 4 {
		return e.vision.SolveHomography(src, dst)
	}
	aff, err := e.vision.SolveAffine(src, dst)
	if err != nil {
		return geometry.ProjectiveTransform{}, err
	}
	return geometry.FromAffine(aff), nil
}

// MeanResidual reports the mean reprojection error of a correspondence set
// under a transform.
func MeanResidual(src, dst []geometry.Point2D, tr geometry.ProjectiveTransform) float64 {
	if len(src) == 0 || len(src) != len(dst) {
		return 0
	}
	var total float64
	for i := range src {
		total += tr.Apply(src[i]).Distance(dst[i])
	}
	return total / float64(len(src))
}
