package mode

import (
	"repeat-align/internal/panel"
	"repeat-align/pkg/geometry"
)

// Select places, grabs and drags control points. Points live in image
// space; a press near an existing point grabs it, anywhere else places a
// new one up to the configured cap.

func (c *Controller) selectDown(ev Event) {
	pos := c.imagePos(ev)

	if i := c.p.Ptr.HitPoint(pos, c.hitRadius()); i >= 0 {
		c.p.Ptr.Index = i
		c.p.Ptr.Anchor(pos.X, pos.Y)
		c.callRedrawOverlay()
		return
	}

	if len(c.p.Ptr.Points) >= c.opts.MaxControlPoints {
		c.callError(panel.ErrMaxControlPoints(c.opts.MaxControlPoints))
		return
	}
	c.p.Ptr.Points = append(c.p.Ptr.Points, pos)
	c.p.Ptr.Index = len(c.p.Ptr.Points) - 1
	c.p.Ptr.Anchor(pos.X, pos.Y)
	c.callRedrawOverlay()
}

func (c *Controller) selectMove(ev Event) {
	sel := c.p.Ptr.Selected
	i := c.p.Ptr.Index
	if sel == nil || i < 0 || i >= len(c.p.Ptr.Points) {
		return
	}
	pos := c.imagePos(ev)
	pt := &c.p.Ptr.Points[i]
	pt.X += pos.X - sel.X
	pt.Y += pos.Y - sel.Y
	*sel = geometry.Point2D{X: pos.X, Y: pos.Y}
	c.callRedrawOverlay()
}

// selectUp ends the drag and deselects; the points themselves stay.
func (c *Controller) selectUp() {
	c.p.Ptr.Deselect()
	c.callRedrawOverlay()
}
