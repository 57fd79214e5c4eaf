package canvas

import (
	"image"
	"image/draw"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"repeat-align/internal/imaging"
	"repeat-align/internal/magnify"
	"repeat-align/internal/mode"
	"repeat-align/internal/panel"
	"repeat-align/pkg/colorutil"
)

const gridSpacing = 50

var (
	gridColor     = colorutil.Gray(0x3a)
	pointColor    = colorutil.Orange
	selectedColor = colorutil.Red
	remoteColor   = colorutil.WithAlpha(colorutil.Cyan, 0x90)
	boxColor      = colorutil.Yellow
	cursorColor   = colorutil.Gray(0xf0)
	borderColor   = colorutil.Gray(0x90)
)

// PanelCanvas is the Fyne widget displaying one panel's layer stack. It
// routes pointer and keyboard events to the interaction controller.
type PanelCanvas struct {
	widget.BaseWidget

	p     *panel.Panel
	ctrl  *mode.Controller
	stack *Stack
	mag   *magnify.Magnifier

	// counterpart supplies the other panel for the remote points layer.
	counterpart func() *panel.Panel

	// onFrame runs at the start of every raster paint, on the UI
	// goroutine. The toolkit drains its async result queue here.
	onFrame func()

	raster *fynecanvas.Raster
}

// NewPanelCanvas creates the widget for one panel.
func NewPanelCanvas(p *panel.Panel, mag *magnify.Magnifier, counterpart func() *panel.Panel) *PanelCanvas {
	w := int(p.Props.BaseDims.Width)
	h := int(p.Props.BaseDims.Height)

	pc := &PanelCanvas{
		p:           p,
		stack:       NewStack(w, h),
		mag:         mag,
		counterpart: counterpart,
	}
	pc.raster = fynecanvas.NewRaster(pc.draw)
	pc.raster.ScaleMode = fynecanvas.ImageScalePixels
	pc.raster.SetMinSize(fyne.NewSize(float32(w), float32(h)))

	pc.RedrawGrid()
	pc.ExtendBaseWidget(pc)
	return pc
}

// SetController attaches the interaction controller. The controller needs
// hooks that point back at this widget, so it is built after the canvas.
func (pc *PanelCanvas) SetController(c *mode.Controller) {
	pc.ctrl = c
}

// SetOnFrame installs the per-paint hook.
func (pc *PanelCanvas) SetOnFrame(fn func()) {
	pc.onFrame = fn
}

// Hooks builds the controller's outbound effects against this widget.
func (pc *PanelCanvas) Hooks(onError func(p *panel.Panel, err error)) mode.Hooks {
	return mode.Hooks{
		RedrawImage: func(*panel.Panel) {
			pc.RedrawImage()
			pc.Refresh()
		},
		RedrawOverlay: func(*panel.Panel) {
			pc.RedrawOverlay()
			pc.Refresh()
		},
		ClearOverlay: func(*panel.Panel) {
			pc.stack.Layer(LayerOverlay).Clear()
			pc.stack.Layer(LayerRemote).Clear()
			pc.Refresh()
		},
		Magnify: func(*panel.Panel) {
			pc.RedrawMagnifier()
			pc.RedrawCursor()
			pc.Refresh()
		},
		OnError: onError,
	}
}

// Redraw repaints every layer from the panel state.
func (pc *PanelCanvas) Redraw() {
	pc.RedrawGrid()
	pc.RedrawImage()
	pc.RedrawOverlay()
	pc.RedrawMagnifier()
	pc.RedrawCursor()
	pc.Refresh()
}

// Clear wipes all image and annotation layers, keeping the grid.
func (pc *PanelCanvas) Clear() {
	pc.stack.ClearAll()
	pc.RedrawGrid()
	pc.Refresh()
}

// RedrawGrid repaints the reference grid.
func (pc *PanelCanvas) RedrawGrid() {
	l := pc.stack.Layer(LayerGrid)
	l.Clear()
	drawGrid(l.Buf(), gridSpacing, gridColor)
}

// RedrawImage stages the scaled working raster offscreen, then swaps it in.
func (pc *PanelCanvas) RedrawImage() {
	stage := pc.stack.Layer(LayerRender)
	stage.Clear()

	if pc.p.Image != nil {
		r := pc.p.Props.RenderDims
		scaled := imaging.Scale(imaging.ToRGBA(pc.p.Image), int(r.Width), int(r.Height))
		if scaled != nil {
			offset := image.Pt(int(r.X), int(r.Y))
			draw.Draw(stage.Buf(), scaled.Bounds().Add(offset), scaled, image.Point{}, draw.Over)
		}
	}
	pc.stack.Promote()
}

// RedrawOverlay repaints the control points, the crop box and, when
// enabled, the counterpart panel's points. In crop mode the stored points
// stay off the canvas; only the box is drawn.
func (pc *PanelCanvas) RedrawOverlay() {
	l := pc.stack.Layer(LayerOverlay)
	l.Clear()
	buf := l.Buf()

	inCrop := pc.ctrl != nil && pc.ctrl.Mode() == mode.ModeCrop
	radius := int(pc.p.Options().PointerRadius / 2)
	if !inCrop {
		for i, pt := range pc.p.Ptr.Points {
			col := pointColor
			if i == pc.p.Ptr.Index {
				col = selectedColor
			}
			cp := pc.p.ImageToCanvas(pt)
			drawCircleOutline(buf, int(cp.X), int(cp.Y), radius, col)
			drawCross(buf, int(cp.X), int(cp.Y), 3, col)
			drawNumber(buf, i+1, int(cp.X)+radius+3, int(cp.Y)-radius, 2, col)
		}
	}

	if box := pc.p.Ptr.SelectBox; !box.Empty() {
		tl := pc.p.ImageToCanvas(box.TopLeft())
		br := pc.p.ImageToCanvas(box.BottomRight())
		drawDashedRect(buf, int(tl.X), int(tl.Y), int(br.X), int(br.Y), boxColor)
	}

	pc.redrawRemote(radius, inCrop)
}

// redrawRemote paints the other panel's points in a muted color so the
// operator can compare placements side by side.
func (pc *PanelCanvas) redrawRemote(radius int, inCrop bool) {
	l := pc.stack.Layer(LayerRemote)
	l.Clear()

	if inCrop || !pc.p.Props.Overlay || pc.counterpart == nil {
		return
	}
	other := pc.counterpart()
	if other == nil || other.Image == nil {
		return
	}
	buf := l.Buf()
	for i, pt := range other.Ptr.Points {
		cp := other.ImageToCanvas(pt)
		drawCircleOutline(buf, int(cp.X), int(cp.Y), radius, remoteColor)
		drawNumber(buf, i+1, int(cp.X)+radius+3, int(cp.Y)-radius, 2, remoteColor)
	}
}

// RedrawMagnifier repaints the zoomed preview beside the cursor.
func (pc *PanelCanvas) RedrawMagnifier() {
	l := pc.stack.Layer(LayerMagnifier)
	l.Clear()

	preview := pc.mag.Preview(pc.p)
	if preview == nil {
		return
	}
	d := pc.p.Props.MagnifiedDims
	offset := image.Pt(int(d.X), int(d.Y))
	draw.Draw(l.Buf(), preview.Bounds().Add(offset), preview, image.Point{}, draw.Src)
	drawRectOutline(l.Buf(), int(d.X), int(d.Y), int(d.X+d.Width)-1, int(d.Y+d.Height)-1, borderColor, 1)
}

// RedrawCursor repaints the crosshair at the pointer position.
func (pc *PanelCanvas) RedrawCursor() {
	l := pc.stack.Layer(LayerCursor)
	l.Clear()
	if pc.p.Image == nil {
		return
	}
	drawCross(l.Buf(), int(pc.p.Ptr.X), int(pc.p.Ptr.Y), 6, cursorColor)
}

// Stack exposes the layer stack, mainly for tests and export.
func (pc *PanelCanvas) Stack() *Stack {
	return pc.stack
}

// Refresh repaints the widget from the composited stack.
func (pc *PanelCanvas) Refresh() {
	pc.raster.Refresh()
}

func (pc *PanelCanvas) draw(w, h int) image.Image {
	if pc.onFrame != nil {
		pc.onFrame()
	}
	return pc.stack.Composite()
}

// toCanvas maps a widget-space position onto the fixed base canvas grid.
func (pc *PanelCanvas) toCanvas(pos fyne.Position) mode.Event {
	size := pc.Size()
	w, h := pc.stack.Size()
	ev := mode.Event{X: float64(pos.X), Y: float64(pos.Y)}
	if size.Width > 0 && size.Height > 0 {
		ev.X = float64(pos.X) * float64(w) / float64(size.Width)
		ev.Y = float64(pos.Y) * float64(h) / float64(size.Height)
	}
	return ev
}

// MouseDown implements desktop.Mouseable.
func (pc *PanelCanvas) MouseDown(ev *desktop.MouseEvent) {
	if pc.ctrl == nil {
		return
	}
	pc.ctrl.MouseDown(pc.toCanvas(ev.Position))
}

// MouseUp implements desktop.Mouseable.
func (pc *PanelCanvas) MouseUp(ev *desktop.MouseEvent) {
	if pc.ctrl == nil {
		return
	}
	pc.ctrl.MouseUp(pc.toCanvas(ev.Position))
}

// MouseIn implements desktop.Hoverable.
func (pc *PanelCanvas) MouseIn(ev *desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (pc *PanelCanvas) MouseMoved(ev *desktop.MouseEvent) {
	if pc.ctrl == nil {
		return
	}
	pc.ctrl.MouseMove(pc.toCanvas(ev.Position))
}

// MouseOut implements desktop.Hoverable.
func (pc *PanelCanvas) MouseOut() {
	if pc.ctrl == nil {
		return
	}
	pc.ctrl.MouseOut(mode.Event{X: pc.p.Ptr.X, Y: pc.p.Ptr.Y})
}

// TypedKey implements fyne.Focusable.
func (pc *PanelCanvas) TypedKey(ev *fyne.KeyEvent) {
	if pc.ctrl == nil {
		return
	}
	switch ev.Name {
	case fyne.KeyEscape:
		pc.ctrl.KeyDown(mode.KeyEscape)
	case fyne.KeyDelete, fyne.KeyBackspace:
		pc.ctrl.KeyDown(mode.KeyDelete)
	case fyne.KeyLeft:
		pc.ctrl.KeyDown(mode.KeyLeft)
	case fyne.KeyRight:
		pc.ctrl.KeyDown(mode.KeyRight)
	case fyne.KeyUp:
		pc.ctrl.KeyDown(mode.KeyUp)
	case fyne.KeyDown:
		pc.ctrl.KeyDown(mode.KeyDown)
	}
}

// TypedRune implements fyne.Focusable.
func (pc *PanelCanvas) TypedRune(rune) {}

// FocusGained implements fyne.Focusable.
func (pc *PanelCanvas) FocusGained() {}

// FocusLost implements fyne.Focusable.
func (pc *PanelCanvas) FocusLost() {}

// CreateRenderer implements fyne.Widget.
func (pc *PanelCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(pc.raster)
}
