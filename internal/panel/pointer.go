package panel

import (
	"repeat-align/pkg/geometry"
)

// Pointer is the per-panel cursor and selection model. Control points and
// the select box are stored in image space; conversion to render space
// happens only at draw time or when interpreting a pointer event.
type Pointer struct {
	// X, Y is the last cursor position in canvas space.
	X, Y float64

	// Selected is the drag-start anchor, or nil when no drag is active.
	Selected *geometry.Point2D

	// Points holds the control points in image space.
	Points []geometry.Point2D

	// SelectBox is the active crop box in image space.
	SelectBox geometry.Rect

	// Index is the selected control point, -1 when none.
	Index int

	// Magnify toggles the magnifier preview.
	Magnify bool
}

// NewPointer returns a pointer model with nothing selected.
func NewPointer() Pointer {
	return Pointer{Index: -1}
}

// SetPosition records the cursor position.
func (p *Pointer) SetPosition(x, y float64) {
	p.X = x
	p.Y = y
}

// Anchor records the drag-start position.
func (p *Pointer) Anchor(x, y float64) {
	p.Selected = &geometry.Point2D{X: x, Y: y}
}

// ClearAnchor ends the active drag.
func (p *Pointer) ClearAnchor() {
	p.Selected = nil
}

// Deselect clears the selected control point without removing it.
func (p *Pointer) Deselect() {
	p.Index = -1
	p.Selected = nil
}

// ClearBox resets the select box to empty.
func (p *Pointer) ClearBox() {
	p.SelectBox = geometry.Rect{}
}

// Reset clears all cursor, selection and control-point state.
func (p *Pointer) Reset() {
	*p = NewPointer()
}

// HitPoint returns the index of the first control point within radius of
// the given image-space position, or -1.
func (p *Pointer) HitPoint(pos geometry.Point2D, radius float64) int {
	for i, pt := range p.Points {
		if geometry.InRange(pos.X, pos.Y, pt.X, pt.Y, radius) {
			return i
		}
	}
	return -1
}

// RemoveSelectedPoint deletes the selected control point, if any.
func (p *Pointer) RemoveSelectedPoint() bool {
	if p.Index < 0 || p.Index >= len(p.Points) {
		return false
	}
	p.Points = append(p.Points[:p.Index], p.Points[p.Index+1:]...)
	p.Index = -1
	return true
}
