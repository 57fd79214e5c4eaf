package mode

// Pan drags the render rect by the canvas-space cursor delta. The anchor is
// re-set every move so deltas stay incremental.

func (c *Controller) panDown(ev Event) {
	c.p.Ptr.Anchor(ev.X, ev.Y)
}

func (c *Controller) panMove(ev Event) {
	sel := c.p.Ptr.Selected
	if sel == nil {
		return
	}
	dx, dy := ev.X-sel.X, ev.Y-sel.Y
	if dx == 0 && dy == 0 {
		return
	}
	c.p.PanBy(dx, dy)
	c.p.Ptr.Anchor(ev.X, ev.Y)
	c.callRedrawImage()
	c.callRedrawOverlay()
}

func (c *Controller) panUp() {
	c.p.Ptr.ClearAnchor()
}
