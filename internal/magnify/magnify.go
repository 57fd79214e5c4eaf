// Package magnify renders the cursor-following zoomed preview.
package magnify

import (
	"image"

	"repeat-align/internal/config"
	"repeat-align/internal/imaging"
	"repeat-align/internal/panel"
	"repeat-align/pkg/geometry"
)

// Magnifier produces zoomed sub-region previews around the cursor.
type Magnifier struct {
	opts config.Options
}

// New creates a magnifier with the given options.
func New(opts config.Options) *Magnifier {
	return &Magnifier{opts: opts}
}

// Preview samples a source sub-rectangle centered on the cursor's
// image-space position and scales it up to the preview size. Returns nil
// when the magnifier is off or nothing is loaded. The preview's canvas
// placement is recorded in the panel's magnified dims.
func (m *Magnifier) Preview(p *panel.Panel) *image.RGBA {
	if !p.Ptr.Magnify || p.Image == nil {
		p.Props.MagnifiedDims = geometry.Rect{}
		return nil
	}

	center := p.CanvasToImage(p.Ptr.X, p.Ptr.Y)
	side := m.opts.MagnifySize / m.opts.Magnification

	window := geometry.NewRect(center.X-side/2, center.Y-side/2, side, side)
	window = window.Intersect(geometry.NewRect(0, 0, p.Props.ImageDims.Width, p.Props.ImageDims.Height))
	if window.Empty() {
		p.Props.MagnifiedDims = geometry.Rect{}
		return nil
	}

	sub := imaging.SubRegion(p.Image, window)
	size := int(m.opts.MagnifySize)
	preview := imaging.ScaleNearest(sub, size, size)

	p.Props.MagnifiedDims = m.placement(p)
	return preview
}

// placement positions the preview beside the cursor, flipped to the other
// side when it would leave the base canvas.
func (m *Magnifier) placement(p *panel.Panel) geometry.Rect {
	const gap = 12
	size := m.opts.MagnifySize
	base := p.Props.BaseDims

	x := p.Ptr.X + gap
	if x+size > base.Width {
		x = p.Ptr.X - gap - size
	}
	y := p.Ptr.Y + gap
	if y+size > base.Height {
		y = p.Ptr.Y - gap - size
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return geometry.NewRect(x, y, size, size)
}
