package mode

import (
	"math"

	"repeat-align/internal/crop"
	"repeat-align/pkg/geometry"
)

// Crop draws a rubber-band box in image space. Pressing inside an existing
// box switches to moving it whole; release clamps the box to the image and
// collapses it to nothing when no overlap remains.

func (c *Controller) cropDown(ev Event) {
	pos := c.imagePos(ev)
	box := c.p.Ptr.SelectBox

	if !box.Empty() && box.Contains(pos) {
		c.moveBox = true
		c.boxAnchor = pos
		c.boxStart = box
		c.p.Ptr.Anchor(pos.X, pos.Y)
		return
	}

	c.moveBox = false
	c.boxAnchor = pos
	c.p.Ptr.SelectBox = geometry.NewRect(pos.X, pos.Y, 0, 0)
	c.p.Ptr.Anchor(pos.X, pos.Y)
	c.callRedrawOverlay()
}

func (c *Controller) cropMove(ev Event) {
	if c.p.Ptr.Selected == nil {
		return
	}
	pos := c.imagePos(ev)

	if c.moveBox {
		c.p.Ptr.SelectBox = c.boxStart.Translate(pos.X-c.boxAnchor.X, pos.Y-c.boxAnchor.Y)
	} else {
		// Normalize so dragging in any direction yields positive extents.
		x := math.Min(c.boxAnchor.X, pos.X)
		y := math.Min(c.boxAnchor.Y, pos.Y)
		w := math.Abs(pos.X - c.boxAnchor.X)
		h := math.Abs(pos.Y - c.boxAnchor.Y)
		c.p.Ptr.SelectBox = geometry.NewRect(x, y, w, h)
	}
	c.callRedrawOverlay()
}

func (c *Controller) cropUp() {
	if c.p.Ptr.Selected == nil {
		return
	}
	c.p.Ptr.ClearAnchor()
	c.moveBox = false

	clamped := crop.Clamp(c.p.Ptr.SelectBox, c.p.Props.ImageDims)
	if clamped.Empty() {
		c.p.Ptr.ClearBox()
	} else {
		c.p.Ptr.SelectBox = clamped
	}
	c.callRedrawOverlay()
}
