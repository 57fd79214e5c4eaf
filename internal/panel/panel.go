// Package panel holds the per-image state of the alignment toolkit: the
// raster buffers, display geometry, pointer model and the status machine
// that gates every operation.
package panel

import (
	"image"

	"repeat-align/internal/config"
	"repeat-align/internal/imaging"
	"repeat-align/pkg/geometry"
)

// Properties is the display geometry and file metadata of a panel. All
// *_Dims rectangles are expressed in the space their name says.
type Properties struct {
	// ImageDims is the pixel grid of the current (possibly cropped or
	// warped) raster, origin at (0,0).
	ImageDims geometry.Rect `json:"image_dims"`

	// RenderDims is the scaled rectangle currently displayed; its X/Y
	// offset is the pan position relative to BaseDims.
	RenderDims geometry.Rect `json:"render_dims"`

	// BaseDims is the fixed on-screen canvas size.
	BaseDims geometry.Rect `json:"base_dims"`

	// SourceDims is the pixel grid of the original raster.
	SourceDims geometry.Rect `json:"source_dims"`

	// Bounds is the visible portion of the rendered image in canvas space.
	Bounds geometry.Rect `json:"bounds"`

	// MagnifiedDims is the current magnifier preview rectangle.
	MagnifiedDims geometry.Rect `json:"magnified_dims"`

	Filename string  `json:"filename"`
	MimeType string  `json:"mime_type"`
	FileSize int64   `json:"file_size"`
	DPI      float64 `json:"dpi,omitempty"`

	// Overlay enables read-only rendering of the counterpart panel's
	// control points.
	Overlay bool `json:"overlay"`
}

// Panel is one image slot of the toolkit. Exactly two exist: the historic
// capture and the modern repeat.
type Panel struct {
	ID     string
	Status Status
	Props  Properties

	// Image is the current raster, nil exactly when Status is empty.
	// Source is the original raster, replaced only by a fresh load or an
	// explicit sync.
	Image  image.Image
	Source image.Image

	Ptr Pointer

	// Aligned is set after a successful registration warp.
	Aligned bool

	opts config.Options

	// gen guards async results: a load or export commits only when its
	// generation is still current.
	gen uint64
}

// New creates an empty panel.
func New(id string, opts config.Options) *Panel {
	return &Panel{
		ID:     id,
		Status: StatusEmpty,
		Ptr:    NewPointer(),
		Props: Properties{
			BaseDims: geometry.NewRect(0, 0, opts.BaseWidth, opts.BaseHeight),
		},
		opts: opts,
	}
}

// Options returns the options the panel was built with.
func (p *Panel) Options() config.Options {
	return p.opts
}

// Generation returns a new operation generation. Results carrying an older
// generation are stale and must be dropped.
func (p *Panel) Generation() uint64 {
	p.gen++
	return p.gen
}

// Live reports whether an operation generation is still current.
func (p *Panel) Live(gen uint64) bool {
	return p.gen == gen
}

func (p *Panel) setStatus(to Status, op string) error {
	if !canTransition(p.Status, to) {
		return ErrInvalidTransition(p.Status, op)
	}
	p.Status = to
	return nil
}

// BeginLoad starts the load protocol and returns the operation generation
// the decode result must carry.
func (p *Panel) BeginLoad() (uint64, error) {
	if err := p.setStatus(StatusLoad, "load"); err != nil {
		return 0, err
	}
	p.Status = StatusLoading
	return p.Generation(), nil
}

// CommitLoad applies a successful decode. Stale results are dropped
// silently: the panel they belonged to has moved on.
func (p *Panel) CommitLoad(gen uint64, res *imaging.Result) error {
	if !p.Live(gen) {
		return nil
	}
	if err := p.setStatus(StatusLoaded, "commit load"); err != nil {
		return err
	}

	p.Source = res.Image
	p.Image = imaging.Clone(res.Image)
	p.Aligned = false
	p.Ptr.Reset()

	p.Props.SourceDims = res.Props.SourceDims
	p.Props.Filename = res.Props.Filename
	p.Props.MimeType = res.Props.MimeType
	p.Props.FileSize = res.Props.FileSize
	p.Props.DPI = res.Props.DPI
	p.setImageDims(res.Props.SourceDims.Width, res.Props.SourceDims.Height)
	return nil
}

// FailLoad reverts a failed decode to empty and reports the stream error.
func (p *Panel) FailLoad(gen uint64, err error) error {
	if !p.Live(gen) {
		return nil
	}
	p.clear()
	p.Status = StatusEmpty
	return StreamErr(err)
}

// BeginUpdate gates a property update and re-render.
func (p *Panel) BeginUpdate() error {
	return p.setStatus(StatusUpdate, "update")
}

// FinishUpdate returns the panel to loaded after the re-render.
func (p *Panel) FinishUpdate() error {
	return p.setStatus(StatusLoaded, "finish update")
}

// BeginTransform gates a crop/resize/align mutation.
func (p *Panel) BeginTransform(op string) error {
	if p.Image == nil {
		return ErrEmptyCanvas()
	}
	return p.setStatus(StatusLoading, op)
}

// CommitTransform installs the mutated raster and recomputes dims.
func (p *Panel) CommitTransform(img image.Image) error {
	if err := p.setStatus(StatusLoaded, "commit transform"); err != nil {
		return err
	}
	p.Image = img
	b := img.Bounds()
	p.setImageDims(float64(b.Dx()), float64(b.Dy()))
	return nil
}

// AbortTransform returns to loaded after a recoverable solver failure: the
// prior image is still valid and usable.
func (p *Panel) AbortTransform(err error) error {
	p.Status = StatusLoaded
	return AsError(err)
}

// Fail marks the panel as failed; only reset or remove recover it.
func (p *Panel) Fail(err error) error {
	p.Status = StatusError
	return RuntimeErr(err)
}

// BeginDownload gates a raster export and returns its generation.
func (p *Panel) BeginDownload() (uint64, error) {
	if p.Image == nil {
		return 0, ErrEmptyCanvas()
	}
	if err := p.setStatus(StatusDownloading, "download"); err != nil {
		return 0, err
	}
	return p.Generation(), nil
}

// FinishDownload returns the panel to loaded once the export resolves.
// Stale completions are dropped.
func (p *Panel) FinishDownload(gen uint64) error {
	if !p.Live(gen) {
		return nil
	}
	return p.setStatus(StatusLoaded, "finish download")
}

// Remove tears the panel down to empty, clearing both buffers and all
// pointer state. Valid from any status.
func (p *Panel) Remove() {
	p.clear()
	p.Status = StatusEmpty
	p.Generation() // invalidate in-flight async results
}

// Reset restores the working raster from source. It recovers an error
// panel and discards crop/align results; control points survive.
func (p *Panel) Reset() error {
	if p.Source == nil {
		return ErrEmptyCanvas()
	}
	p.Image = imaging.Clone(p.Source)
	p.Aligned = false
	p.Status = StatusLoaded
	p.setImageDims(p.Props.SourceDims.Width, p.Props.SourceDims.Height)
	return nil
}

// SyncSource commits the current raster as the new source, so later resets
// keep the current state.
func (p *Panel) SyncSource() error {
	if p.Image == nil {
		return ErrEmptyCanvas()
	}
	p.Source = imaging.Clone(p.Image)
	p.Props.SourceDims = p.Props.ImageDims
	return nil
}

// setImageDims installs a new image-space grid and refits the render rect
// against the fixed base canvas.
func (p *Panel) setImageDims(w, h float64) {
	p.Props.ImageDims = geometry.NewRect(0, 0, w, h)
	p.FitToBase()
}

// FitToBase scales the render rect to fit the base canvas, resetting pan.
func (p *Panel) FitToBase() {
	size := geometry.ScaleToFit(p.Props.ImageDims.Width, p.Props.ImageDims.Height,
		p.Props.BaseDims.Width, p.Props.BaseDims.Height)
	p.Props.RenderDims = geometry.NewRect(0, 0, size.Width, size.Height)
	p.updateBounds()
}

// Expand renders the image at full size, clamped to the configured maximum.
func (p *Panel) Expand() {
	w, h := p.Props.ImageDims.Width, p.Props.ImageDims.Height
	if w > p.opts.MaxImageWidth || h > p.opts.MaxImageHeight {
		size := geometry.ScaleToFit(w, h, p.opts.MaxImageWidth, p.opts.MaxImageHeight)
		w, h = size.Width, size.Height
	}
	p.Props.RenderDims = geometry.NewRect(p.Props.RenderDims.X, p.Props.RenderDims.Y, w, h)
	p.updateBounds()
}

// Zoom scales the render rect by the given factor about its origin.
func (p *Panel) Zoom(factor float64) {
	r := p.Props.RenderDims
	p.Props.RenderDims = geometry.NewRect(r.X, r.Y, r.Width*factor, r.Height*factor)
	p.updateBounds()
}

// PanBy translates the render rect by a canvas-space displacement.
func (p *Panel) PanBy(dx, dy float64) {
	p.Props.RenderDims = p.Props.RenderDims.Translate(dx, dy)
	p.updateBounds()
}

func (p *Panel) updateBounds() {
	p.Props.Bounds = p.Props.RenderDims.Intersect(p.Props.BaseDims)
}

// CanvasToImage converts a canvas-space cursor position into image space.
func (p *Panel) CanvasToImage(x, y float64) geometry.Point2D {
	r := p.Props.RenderDims
	rel := geometry.Point2D{X: x - r.X, Y: y - r.Y}
	return geometry.ScalePoint(rel, atOrigin(r), atOrigin(p.Props.ImageDims))
}

// ImageToCanvas converts an image-space point into canvas space.
func (p *Panel) ImageToCanvas(pt geometry.Point2D) geometry.Point2D {
	r := p.Props.RenderDims
	sp := geometry.ScalePoint(pt, atOrigin(p.Props.ImageDims), atOrigin(r))
	return geometry.Point2D{X: sp.X + r.X, Y: sp.Y + r.Y}
}

func atOrigin(r geometry.Rect) geometry.Rect {
	return geometry.NewRect(0, 0, r.Width, r.Height)
}

func (p *Panel) clear() {
	p.Image = nil
	p.Source = nil
	p.Aligned = false
	p.Ptr.Reset()
	base := p.Props.BaseDims
	p.Props = Properties{BaseDims: base}
}
