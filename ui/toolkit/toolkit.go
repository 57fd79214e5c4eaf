// Package toolkit wires the two alignment panels, their canvases and the
// engines into one command surface driven by the menu and toolbar.
package toolkit

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"repeat-align/internal/config"
	"repeat-align/internal/crop"
	"repeat-align/internal/export"
	"repeat-align/internal/imaging"
	"repeat-align/internal/magnify"
	"repeat-align/internal/mode"
	"repeat-align/internal/panel"
	"repeat-align/internal/register"
	"repeat-align/internal/vision"
	"repeat-align/ui/canvas"
	"repeat-align/ui/prefs"
)

// Side pairs one panel with its canvas and controller.
type Side struct {
	Panel  *panel.Panel
	Canvas *canvas.PanelCanvas
	Ctrl   *mode.Controller
}

// Toolkit owns the two panels and executes the menu commands against them.
type Toolkit struct {
	opts  config.Options
	prefs *prefs.Prefs

	reg *register.Engine
	mag *magnify.Magnifier
	vis vision.Engine

	// Historic is the archival capture; Repeat is the modern retake that
	// serves as the registration target.
	Historic *Side
	Repeat   *Side

	// OnError surfaces command failures to the UI; nil logs only.
	OnError func(err error)

	// OnStatus updates the status line; nil is fine.
	OnStatus func(msg string)

	mode mode.Mode
	now  func() time.Time

	// pending holds async results until the UI goroutine applies them.
	// Panels are single-writer: the decode/export goroutines never touch
	// one, they post a closure here and the canvas paint drains it.
	pendingMu sync.Mutex
	pending   []func()
}

// New assembles the toolkit around an injected vision engine.
func New(vis vision.Engine, opts config.Options, pr *prefs.Prefs) *Toolkit {
	opts.Projective = pr.Bool(prefs.KeyProjective, opts.Projective)
	t := &Toolkit{
		opts:  opts,
		prefs: pr,
		vis:   vis,
		reg:   register.New(vis, opts),
		mag:   magnify.New(opts),
		now:   time.Now,
	}
	t.Historic = t.newSide("historic")
	t.Repeat = t.newSide("repeat")
	return t
}

func (t *Toolkit) newSide(id string) *Side {
	p := panel.New(id, t.opts)
	p.Props.Overlay = t.prefs.Bool(prefs.KeyOverlay, false)

	var counterpart func() *panel.Panel
	if id == "historic" {
		counterpart = func() *panel.Panel { return t.Repeat.Panel }
	} else {
		counterpart = func() *panel.Panel { return t.Historic.Panel }
	}

	c := canvas.NewPanelCanvas(p, t.mag, counterpart)
	ctrl := mode.NewController(p, t.opts, c.Hooks(func(_ *panel.Panel, err error) {
		t.fail(id, err)
	}))
	c.SetController(ctrl)
	c.SetOnFrame(t.Drain)
	return &Side{Panel: p, Canvas: c, Ctrl: ctrl}
}

// post queues an async result for the UI goroutine and requests a repaint,
// whose frame hook drains the queue.
func (t *Toolkit) post(s *Side, fn func()) {
	t.pendingMu.Lock()
	t.pending = append(t.pending, fn)
	t.pendingMu.Unlock()
	s.Canvas.Refresh()
}

// Drain applies queued async results on the calling goroutine. The canvas
// frame hook calls it from the paint loop; headless callers drive it
// themselves. All panel mutation happens on whichever goroutine drains.
func (t *Toolkit) Drain() {
	t.pendingMu.Lock()
	fns := t.pending
	t.pending = nil
	t.pendingMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Sides returns both sides, historic first.
func (t *Toolkit) Sides() []*Side {
	return []*Side{t.Historic, t.Repeat}
}

func (t *Toolkit) fail(id string, err error) {
	if err == nil {
		return
	}
	log.Printf("%s: %v", id, err)
	if t.OnError != nil {
		t.OnError(err)
	}
}

func (t *Toolkit) status(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Print(msg)
	if t.OnStatus != nil {
		t.OnStatus(msg)
	}
}

// Mode returns the active interaction mode.
func (t *Toolkit) Mode() mode.Mode {
	return t.mode
}

// SetMode switches both panels to the given interaction mode.
func (t *Toolkit) SetMode(m mode.Mode) {
	t.mode = m
	t.Historic.Ctrl.SetMode(m)
	t.Repeat.Ctrl.SetMode(m)
	t.status("mode: %s", m)
}

// Load decodes an image file off the UI loop and installs it in the panel.
// The decode goroutine never touches the panel; the commit is posted back
// to the UI goroutine.
func (t *Toolkit) Load(s *Side, path string) {
	p := s.Panel
	gen, err := p.BeginLoad()
	if err != nil {
		t.fail(p.ID, err)
		return
	}
	t.status("%s: loading %s", p.ID, filepath.Base(path))

	go func() {
		res, err := imaging.Load(path)
		t.post(s, func() {
			if err != nil {
				t.fail(p.ID, p.FailLoad(gen, err))
				return
			}
			if err := p.CommitLoad(gen, res); err != nil {
				t.fail(p.ID, err)
				return
			}
			t.prefs.SetString(prefs.KeyLastDir, filepath.Dir(path))
			s.Canvas.Redraw()
			t.status("%s: loaded %s (%.0fx%.0f)", p.ID, res.Props.Filename,
				res.Props.SourceDims.Width, res.Props.SourceDims.Height)
		})
	}()
}

// SaveAs encodes the panel's working raster off the UI loop and writes it
// into the given directory. The raster and filename are captured before the
// goroutine starts; the status change is posted back to the UI goroutine.
func (t *Toolkit) SaveAs(s *Side, dir, ext string) {
	p := s.Panel
	gen, err := p.BeginDownload()
	if err != nil {
		t.fail(p.ID, err)
		return
	}
	img := p.Image
	source := p.Props.Filename
	quality := t.opts.ExportQuality

	go func() {
		var path string
		blob, err := export.Blob(img, export.Params{Ext: ext, Quality: quality})
		if err == nil {
			path = filepath.Join(dir, export.Filename(source, ext, t.now()))
			err = os.WriteFile(path, blob, 0o644)
		}
		t.post(s, func() {
			if err != nil {
				t.fail(p.ID, p.Fail(err))
				return
			}
			if err := p.FinishDownload(gen); err != nil {
				t.fail(p.ID, err)
				return
			}
			t.status("%s: saved %s (%d bytes)", p.ID, path, len(blob))
		})
	}()
}

// SaveState commits the working raster as the new baseline, so reset keeps
// crops and warps applied so far, and persists the preferences.
func (t *Toolkit) SaveState() {
	for _, s := range t.Sides() {
		if s.Panel.Image == nil {
			continue
		}
		if err := s.Panel.SyncSource(); err != nil {
			t.fail(s.Panel.ID, err)
			return
		}
	}
	if err := t.prefs.Save(); err != nil {
		t.fail("prefs", err)
		return
	}
	t.status("state saved")
}

// Redraw repaints a panel's full layer stack.
func (t *Toolkit) Redraw(s *Side) {
	s.Canvas.Redraw()
}

// Clear removes the control points and the crop box, keeping the image.
func (t *Toolkit) Clear(s *Side) {
	s.Panel.Ptr.Points = nil
	s.Panel.Ptr.Deselect()
	s.Panel.Ptr.ClearBox()
	s.Canvas.RedrawOverlay()
	s.Canvas.Refresh()
}

// update runs a render-property change through the loaded -> update ->
// loaded gate, so view commands obey the panel lifecycle and are rejected
// mid-load or mid-download.
func (t *Toolkit) update(s *Side, fn func(p *panel.Panel)) {
	p := s.Panel
	if p.Image == nil {
		return
	}
	if err := p.BeginUpdate(); err != nil {
		t.fail(p.ID, err)
		return
	}
	fn(p)
	if err := p.FinishUpdate(); err != nil {
		t.fail(p.ID, err)
		return
	}
	s.Canvas.Redraw()
}

// Fit scales the rendered image back down to the base canvas.
func (t *Toolkit) Fit(s *Side) {
	t.update(s, func(p *panel.Panel) { p.FitToBase() })
}

// Expand renders the image at its full pixel size.
func (t *Toolkit) Expand(s *Side) {
	t.update(s, func(p *panel.Panel) { p.Expand() })
}

// Resize resamples the working raster to the given pixel size.
func (t *Toolkit) Resize(s *Side, w, h int) {
	p := s.Panel
	if err := p.BeginTransform("resize"); err != nil {
		t.fail(p.ID, err)
		return
	}
	scaled, err := t.vis.Resize(p.Image, w, h, vision.InterpLinear)
	if err != nil {
		t.fail(p.ID, p.AbortTransform(err))
		return
	}
	if err := p.CommitTransform(imaging.ToRGBA(scaled)); err != nil {
		t.fail(p.ID, err)
		return
	}
	s.Canvas.Redraw()
	t.status("%s: resized to %dx%d", p.ID, w, h)
}

// ZoomIn scales the rendered image up by one step.
func (t *Toolkit) ZoomIn(s *Side) {
	t.update(s, func(p *panel.Panel) { p.Zoom(t.opts.ZoomStep) })
}

// ZoomOut scales the rendered image down by one step.
func (t *Toolkit) ZoomOut(s *Side) {
	t.update(s, func(p *panel.Panel) { p.Zoom(1 / t.opts.ZoomStep) })
}

// Reset restores the panel's source raster, recovering an error state.
// Control points survive.
func (t *Toolkit) Reset(s *Side) {
	if err := s.Panel.Reset(); err != nil {
		t.fail(s.Panel.ID, err)
		return
	}
	s.Canvas.Redraw()
	t.status("%s: reset to source", s.Panel.ID)
}

// Remove tears a panel down to empty.
func (t *Toolkit) Remove(s *Side) {
	s.Panel.Remove()
	s.Canvas.Clear()
	t.status("%s: removed", s.Panel.ID)
}

// Align warps the historic panel onto the repeat panel's geometry using
// the paired control points.
func (t *Toolkit) Align() {
	if err := t.reg.Align(t.Historic.Panel, t.Repeat.Panel); err != nil {
		t.fail(t.Historic.Panel.ID, err)
		return
	}
	t.Historic.Canvas.Redraw()
}

// ApplyCrop commits the active crop box of the given side.
func (t *Toolkit) ApplyCrop(s *Side) {
	if err := crop.Apply(s.Panel); err != nil {
		t.fail(s.Panel.ID, err)
		return
	}
	s.Canvas.Redraw()
}

// ToggleMagnify switches the cursor magnifier on or off for a panel.
func (t *Toolkit) ToggleMagnify(s *Side) {
	s.Panel.Ptr.Magnify = !s.Panel.Ptr.Magnify
	s.Canvas.RedrawMagnifier()
	s.Canvas.Refresh()
}

// ToggleProjective switches between the affine and homography fits used by
// subsequent alignments.
func (t *Toolkit) ToggleProjective() {
	t.opts.Projective = !t.opts.Projective
	t.reg.SetProjective(t.opts.Projective)
	t.prefs.SetBool(prefs.KeyProjective, t.opts.Projective)
	if t.opts.Projective {
		t.status("fit: projective")
	} else {
		t.status("fit: affine")
	}
}

// ToggleOverlay flips the read-only display of the counterpart's points.
func (t *Toolkit) ToggleOverlay() {
	on := !t.Historic.Panel.Props.Overlay
	t.Historic.Panel.Props.Overlay = on
	t.Repeat.Panel.Props.Overlay = on
	t.prefs.SetBool(prefs.KeyOverlay, on)
	for _, s := range t.Sides() {
		s.Canvas.RedrawOverlay()
		s.Canvas.Refresh()
	}
}
