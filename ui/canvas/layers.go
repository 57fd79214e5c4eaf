// Package canvas renders a panel as a stack of raster layers inside a
// Fyne widget and feeds its pointer events to the interaction controller.
package canvas

import (
	"image"
	"image/draw"
)

// LayerID names one slot of the fixed layer stack, bottom to top.
type LayerID int

const (
	// LayerGrid is the alignment reference grid.
	LayerGrid LayerID = iota

	// LayerBase is the canvas background fill.
	LayerBase

	// LayerImage holds the scaled render of the working raster.
	LayerImage

	// LayerRender is the offscreen staging buffer for in-progress redraws;
	// it is swapped into the image layer once a redraw completes.
	LayerRender

	// LayerMagnifier holds the zoomed cursor preview.
	LayerMagnifier

	// LayerRemote shows the counterpart panel's control points read-only.
	LayerRemote

	// LayerOverlay holds this panel's control points and crop box.
	LayerOverlay

	// LayerCursor is the crosshair at the pointer position.
	LayerCursor

	layerCount
)

func (id LayerID) String() string {
	switch id {
	case LayerGrid:
		return "grid"
	case LayerBase:
		return "base"
	case LayerImage:
		return "image"
	case LayerRender:
		return "render"
	case LayerMagnifier:
		return "magnifier"
	case LayerRemote:
		return "remote"
	case LayerOverlay:
		return "overlay"
	case LayerCursor:
		return "cursor"
	}
	return "unknown"
}

// Layer is one transparent raster plane of the stack.
type Layer struct {
	ID      LayerID
	Visible bool
	buf     *image.RGBA
}

// Buf exposes the layer's pixel buffer for drawing.
func (l *Layer) Buf() *image.RGBA {
	return l.buf
}

// Clear wipes the layer back to fully transparent.
func (l *Layer) Clear() {
	for i := range l.buf.Pix {
		l.buf.Pix[i] = 0
	}
}

// Stack is the fixed, ordered set of layers making up one panel canvas.
// The render layer stages redraws offscreen and is skipped by Composite.
type Stack struct {
	w, h   int
	layers [layerCount]*Layer
}

// NewStack creates a stack of transparent layers at the base canvas size.
func NewStack(w, h int) *Stack {
	s := &Stack{w: w, h: h}
	for id := LayerID(0); id < layerCount; id++ {
		s.layers[id] = &Layer{
			ID:      id,
			Visible: id != LayerRender,
			buf:     image.NewRGBA(image.Rect(0, 0, w, h)),
		}
	}
	return s
}

// Layer returns the layer with the given ID.
func (s *Stack) Layer(id LayerID) *Layer {
	return s.layers[id]
}

// Size returns the stack dimensions.
func (s *Stack) Size() (int, int) {
	return s.w, s.h
}

// ClearAll wipes every layer.
func (s *Stack) ClearAll() {
	for _, l := range s.layers {
		l.Clear()
	}
}

// Promote swaps the staged render buffer into the image layer and clears
// the stage, making a finished offscreen redraw visible in one step.
func (s *Stack) Promote() {
	img := s.layers[LayerImage]
	stage := s.layers[LayerRender]
	img.buf, stage.buf = stage.buf, img.buf
	stage.Clear()
}

// Composite flattens the visible layers bottom to top onto an opaque
// output buffer.
func (s *Stack) Composite() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	// opaque dark background
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i+0] = 0x20
		out.Pix[i+1] = 0x20
		out.Pix[i+2] = 0x20
		out.Pix[i+3] = 0xff
	}
	for _, l := range s.layers {
		if !l.Visible || l.ID == LayerRender {
			continue
		}
		draw.Draw(out, out.Bounds(), l.buf, image.Point{}, draw.Over)
	}
	return out
}
