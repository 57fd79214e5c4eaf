// Package mode interprets pointer and keyboard input against the active
// interaction mode. Every event routes through a single switch on the mode
// tag, so a mode change swaps the whole behavior set at once.
package mode

import (
	"repeat-align/internal/config"
	"repeat-align/internal/panel"
	"repeat-align/pkg/geometry"
)

// Mode is the active interaction behavior.
type Mode int

const (
	// ModePan drags the rendered image inside the canvas.
	ModePan Mode = iota

	// ModeSelect places, drags and selects control points.
	ModeSelect

	// ModeCrop draws and adjusts the crop box.
	ModeCrop
)

func (m Mode) String() string {
	switch m {
	case ModePan:
		return "pan"
	case ModeSelect:
		return "select"
	case ModeCrop:
		return "crop"
	}
	return "unknown"
}

// Key is a keyboard event the controller understands.
type Key int

const (
	KeyEscape Key = iota
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
)

// Event is a pointer event in canvas space.
type Event struct {
	X, Y float64
}

// Hooks are the controller's outbound effects. Nil hooks are skipped.
type Hooks struct {
	// RedrawImage repaints the image layer after a geometry change.
	RedrawImage func(p *panel.Panel)

	// RedrawOverlay repaints control points and the crop box.
	RedrawOverlay func(p *panel.Panel)

	// ClearOverlay wipes the overlay layer.
	ClearOverlay func(p *panel.Panel)

	// Magnify refreshes the magnifier preview for the cursor position.
	Magnify func(p *panel.Panel)

	// OnError surfaces a rejected interaction to the user.
	OnError func(p *panel.Panel, err error)
}

// Controller binds one panel's input stream to the shared mode. The mode
// value itself is set from outside so both panels always agree.
type Controller struct {
	p     *panel.Panel
	mode  Mode
	opts  config.Options
	hooks Hooks

	// crop drag state
	moveBox   bool
	boxAnchor geometry.Point2D
	boxStart  geometry.Rect
}

// NewController creates a controller in pan mode.
func NewController(p *panel.Panel, opts config.Options, hooks Hooks) *Controller {
	return &Controller{p: p, opts: opts, hooks: hooks}
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// SetMode switches the interaction behavior. Transient selection state and
// the crop box never survive a switch; entering crop mode restores the
// source raster so the box is drawn against unmodified pixels.
func (c *Controller) SetMode(m Mode) {
	if m == c.mode {
		return
	}
	c.mode = m
	c.moveBox = false
	c.p.Ptr.Deselect()
	c.p.Ptr.ClearBox()

	if m == ModeCrop && c.p.Source != nil {
		if err := c.p.Reset(); err == nil {
			c.callRedrawImage()
		}
	}
	c.callClearOverlay()
	c.callRedrawOverlay()
}

// MouseDown starts a drag for the active mode.
func (c *Controller) MouseDown(ev Event) {
	c.p.Ptr.SetPosition(ev.X, ev.Y)
	if c.p.Image == nil {
		return
	}
	switch c.mode {
	case ModePan:
		c.panDown(ev)
	case ModeSelect:
		c.selectDown(ev)
	case ModeCrop:
		c.cropDown(ev)
	}
}

// MouseMove advances the active drag and tracks the cursor. The magnifier
// stays quiet while a crop box is being dragged.
func (c *Controller) MouseMove(ev Event) {
	c.p.Ptr.SetPosition(ev.X, ev.Y)
	if c.mode != ModeCrop || c.p.Ptr.Selected == nil {
		c.callMagnify()
	}
	if c.p.Image == nil {
		return
	}
	switch c.mode {
	case ModePan:
		c.panMove(ev)
	case ModeSelect:
		c.selectMove(ev)
	case ModeCrop:
		c.cropMove(ev)
	}
}

// MouseUp commits the active drag.
func (c *Controller) MouseUp(ev Event) {
	switch c.mode {
	case ModePan:
		c.panUp()
	case ModeSelect:
		c.selectUp()
	case ModeCrop:
		c.cropUp()
	}
}

// MouseOut cancels transient drag state when the cursor leaves the canvas.
// A crop box in progress is committed the same way a mouse-up commits it.
func (c *Controller) MouseOut(ev Event) {
	c.MouseUp(ev)
}

// arrowStep is the canvas-space pan distance per arrow key press.
const arrowStep = 10

// KeyDown handles the keyboard shortcuts shared by all modes: escape
// cancels transient state, delete removes the point under the cursor, and
// the arrow keys pan the rendered image.
func (c *Controller) KeyDown(k Key) {
	switch k {
	case KeyEscape:
		c.p.Ptr.Deselect()
		c.p.Ptr.ClearBox()
		c.moveBox = false
		c.callRedrawOverlay()
	case KeyDelete:
		c.deletePointUnderCursor()
	case KeyLeft:
		c.panByKey(-arrowStep, 0)
	case KeyRight:
		c.panByKey(arrowStep, 0)
	case KeyUp:
		c.panByKey(0, -arrowStep)
	case KeyDown:
		c.panByKey(0, arrowStep)
	}
}

func (c *Controller) deletePointUnderCursor() {
	if c.p.Image == nil {
		return
	}
	pos := c.p.CanvasToImage(c.p.Ptr.X, c.p.Ptr.Y)
	i := c.p.Ptr.HitPoint(pos, c.hitRadius())
	if i < 0 {
		return
	}
	c.p.Ptr.Index = i
	if c.p.Ptr.RemoveSelectedPoint() {
		c.callRedrawOverlay()
	}
}

func (c *Controller) panByKey(dx, dy float64) {
	if c.p.Image == nil {
		return
	}
	c.p.PanBy(dx, dy)
	c.callRedrawImage()
	c.callRedrawOverlay()
}

// imagePos converts a canvas event into image space.
func (c *Controller) imagePos(ev Event) geometry.Point2D {
	return c.p.CanvasToImage(ev.X, ev.Y)
}

// hitRadius is the pointer radius converted into image pixels at the
// current render scale.
func (c *Controller) hitRadius() float64 {
	r := c.p.Props.RenderDims
	if r.Width <= 0 {
		return c.opts.PointerRadius
	}
	return c.opts.PointerRadius * c.p.Props.ImageDims.Width / r.Width
}

func (c *Controller) callRedrawImage() {
	if c.hooks.RedrawImage != nil {
		c.hooks.RedrawImage(c.p)
	}
}

func (c *Controller) callRedrawOverlay() {
	if c.hooks.RedrawOverlay != nil {
		c.hooks.RedrawOverlay(c.p)
	}
}

func (c *Controller) callClearOverlay() {
	if c.hooks.ClearOverlay != nil {
		c.hooks.ClearOverlay(c.p)
	}
}

func (c *Controller) callMagnify() {
	if c.hooks.Magnify != nil {
		c.hooks.Magnify(c.p)
	}
}

func (c *Controller) callError(err error) {
	if c.hooks.OnError != nil {
		c.hooks.OnError(c.p, err)
	}
}
