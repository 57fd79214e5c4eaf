// Package crop extracts a committed, clamped select box as the panel's new
// working raster.
package crop

import (
	"repeat-align/internal/imaging"
	"repeat-align/internal/panel"
	"repeat-align/pkg/geometry"
)

// Clamp truncates a box to the image bounds. Edges extending past
// [0,w]x[0,h] are cut back to the overlapping region; a box fully outside
// collapses to empty.
func Clamp(box, imageDims geometry.Rect) geometry.Rect {
	return box.Intersect(geometry.NewRect(0, 0, imageDims.Width, imageDims.Height))
}

// Apply crops the panel to its select box. An empty or absent box is a
// silent no-op; crop only proceeds on a non-degenerate committed box.
func Apply(p *panel.Panel) error {
	if p.Image == nil {
		return panel.ErrEmptyCanvas()
	}

	box := Clamp(p.Ptr.SelectBox, p.Props.ImageDims)
	if box.Empty() {
		p.Ptr.ClearBox()
		return nil
	}

	if err := p.BeginTransform("crop"); err != nil {
		return err
	}

	sub := imaging.SubRegion(p.Image, box)
	if err := p.CommitTransform(sub); err != nil {
		return err
	}

	// Keep control points attached to their features in the new grid;
	// points cropped away are dropped.
	kept := p.Ptr.Points[:0]
	for _, pt := range p.Ptr.Points {
		moved := geometry.Point2D{X: pt.X - box.X, Y: pt.Y - box.Y}
		if moved.X >= 0 && moved.Y >= 0 && moved.X <= box.Width && moved.Y <= box.Height {
			kept = append(kept, moved)
		}
	}
	p.Ptr.Points = kept
	p.Ptr.Deselect()
	p.Ptr.ClearBox()
	return nil
}
