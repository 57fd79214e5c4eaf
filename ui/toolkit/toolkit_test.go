package toolkit

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"repeat-align/internal/config"
	"repeat-align/internal/imaging"
	"repeat-align/internal/mode"
	"repeat-align/internal/panel"
	"repeat-align/internal/vision"
	"repeat-align/pkg/geometry"
	"repeat-align/ui/prefs"
)

func newToolkit() *Toolkit {
	return New(vision.NewNativeEngine(), config.Default(), prefs.Load())
}

func commitImage(t *testing.T, s *Side, w, h int) {
	t.Helper()
	gen, err := s.Panel.BeginLoad()
	if err != nil {
		t.Fatalf("begin load: %v", err)
	}
	err = s.Panel.CommitLoad(gen, &imaging.Result{
		Image: image.NewRGBA(image.Rect(0, 0, w, h)),
		Props: imaging.Props{SourceDims: geometry.NewRect(0, 0, float64(w), float64(h))},
	})
	if err != nil {
		t.Fatalf("commit load: %v", err)
	}
}

func TestSetModePropagatesToBothPanels(t *testing.T) {
	tk := newToolkit()
	tk.SetMode(mode.ModeSelect)

	if tk.Historic.Ctrl.Mode() != mode.ModeSelect || tk.Repeat.Ctrl.Mode() != mode.ModeSelect {
		t.Error("both controllers must follow the shared mode")
	}
}

func TestLoadLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repeat.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 40, 30))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	tk := newToolkit()
	tk.Load(tk.Repeat, path)

	deadline := time.Now().Add(5 * time.Second)
	for tk.Repeat.Panel.Status != panel.StatusLoaded {
		if time.Now().After(deadline) {
			t.Fatalf("load did not complete, status %v", tk.Repeat.Panel.Status)
		}
		tk.Drain()
		time.Sleep(10 * time.Millisecond)
	}
	if tk.Repeat.Panel.Props.Filename != "repeat.png" {
		t.Errorf("filename = %q", tk.Repeat.Panel.Props.Filename)
	}
}

func TestLoadCommitAppliesOnDrainingGoroutine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 40, 30))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	tk := newToolkit()
	tk.Load(tk.Repeat, path)

	// Pointer traffic on this goroutine while the decode runs elsewhere:
	// the panel may only change when Drain applies the posted commit here.
	p := tk.Repeat.Panel
	deadline := time.Now().Add(5 * time.Second)
	for p.Status != panel.StatusLoaded {
		if time.Now().After(deadline) {
			t.Fatalf("load did not complete, status %v", p.Status)
		}
		p.Ptr.SetPosition(400, 300)
		p.CanvasToImage(400, 300)
		tk.Drain()
		time.Sleep(time.Millisecond)
	}
	if p.Props.SourceDims != geometry.NewRect(0, 0, 40, 30) {
		t.Errorf("source dims = %+v", p.Props.SourceDims)
	}
}

func TestLoadMissingFileRevertsToEmpty(t *testing.T) {
	tk := newToolkit()
	var got error
	tk.OnError = func(err error) { got = err }

	tk.Load(tk.Historic, filepath.Join(t.TempDir(), "nope.png"))

	deadline := time.Now().Add(5 * time.Second)
	for got == nil {
		if time.Now().After(deadline) {
			t.Fatal("expected a load failure")
		}
		tk.Drain()
		time.Sleep(10 * time.Millisecond)
	}
	if tk.Historic.Panel.Status != panel.StatusEmpty {
		t.Errorf("status = %v, want empty", tk.Historic.Panel.Status)
	}
}

func TestSaveAsWritesFile(t *testing.T) {
	tk := newToolkit()
	commitImage(t, tk.Historic, 20, 20)
	tk.Historic.Panel.Props.Filename = "glacier.png"

	dir := t.TempDir()
	tk.SaveAs(tk.Historic, dir, "png")

	deadline := time.Now().Add(5 * time.Second)
	for tk.Historic.Panel.Status != panel.StatusLoaded {
		if time.Now().After(deadline) {
			t.Fatalf("save did not finish, status %v", tk.Historic.Panel.Status)
		}
		tk.Drain()
		time.Sleep(10 * time.Millisecond)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one exported file, found %d", len(entries))
	}
}

func TestClearKeepsImage(t *testing.T) {
	tk := newToolkit()
	commitImage(t, tk.Historic, 40, 30)
	tk.Historic.Panel.Ptr.Points = []geometry.Point2D{{X: 10, Y: 10}}
	tk.Historic.Panel.Ptr.SelectBox = geometry.NewRect(1, 1, 5, 5)

	tk.Clear(tk.Historic)

	p := tk.Historic.Panel
	if len(p.Ptr.Points) != 0 || !p.Ptr.SelectBox.Empty() {
		t.Error("clear must drop points and box")
	}
	if p.Image == nil || p.Status != panel.StatusLoaded {
		t.Error("clear must keep the image")
	}
}

func TestResizeAdoptsTargetDims(t *testing.T) {
	tk := newToolkit()
	commitImage(t, tk.Historic, 40, 30)

	tk.Resize(tk.Historic, 20, 15)

	if tk.Historic.Panel.Props.ImageDims != geometry.NewRect(0, 0, 20, 15) {
		t.Errorf("image dims = %+v", tk.Historic.Panel.Props.ImageDims)
	}
	if tk.Historic.Panel.Status != panel.StatusLoaded {
		t.Errorf("status = %v", tk.Historic.Panel.Status)
	}
}

func TestViewCommandsUseUpdateGate(t *testing.T) {
	tk := newToolkit()
	commitImage(t, tk.Historic, 400, 300)
	p := tk.Historic.Panel

	var got error
	tk.OnError = func(err error) { got = err }

	gen, err := p.BeginDownload()
	if err != nil {
		t.Fatalf("begin download: %v", err)
	}
	before := p.Props.RenderDims
	tk.ZoomIn(tk.Historic)
	if p.Props.RenderDims != before {
		t.Error("zoom must not change geometry while downloading")
	}
	pe := panel.AsError(got)
	if pe == nil || pe.Kind != panel.KindValidation {
		t.Errorf("expected a validation error from the update gate, got %v", got)
	}
	if p.Status != panel.StatusDownloading {
		t.Fatalf("status = %v, want downloading", p.Status)
	}

	if err := p.FinishDownload(gen); err != nil {
		t.Fatalf("finish download: %v", err)
	}
	tk.ZoomIn(tk.Historic)
	if p.Props.RenderDims.Width <= before.Width {
		t.Error("zoom must work again once the panel is back in loaded")
	}
	if p.Status != panel.StatusLoaded {
		t.Errorf("status after update = %v, want loaded", p.Status)
	}
}

func TestZoomRoundTrip(t *testing.T) {
	tk := newToolkit()
	commitImage(t, tk.Historic, 400, 300)
	before := tk.Historic.Panel.Props.RenderDims

	tk.ZoomIn(tk.Historic)
	if tk.Historic.Panel.Props.RenderDims.Width <= before.Width {
		t.Error("zoom in must grow the render rect")
	}
	tk.Fit(tk.Historic)
	if tk.Historic.Panel.Props.RenderDims != before {
		t.Errorf("fit must restore the base render rect, got %+v", tk.Historic.Panel.Props.RenderDims)
	}
}

func TestRemoveThenAlignFails(t *testing.T) {
	tk := newToolkit()
	var got error
	tk.OnError = func(err error) { got = err }

	commitImage(t, tk.Historic, 40, 30)
	commitImage(t, tk.Repeat, 40, 30)
	tk.Remove(tk.Historic)

	tk.Align()
	pe := panel.AsError(got)
	if pe == nil || pe.Kind != panel.KindValidation {
		t.Errorf("align after remove must fail validation, got %v", got)
	}
}

func TestAlignEndToEnd(t *testing.T) {
	tk := newToolkit()
	commitImage(t, tk.Historic, 100, 100)
	commitImage(t, tk.Repeat, 120, 110)

	tk.Historic.Panel.Ptr.Points = []geometry.Point2D{{X: 10, Y: 10}, {X: 80, Y: 20}, {X: 40, Y: 70}}
	tk.Repeat.Panel.Ptr.Points = []geometry.Point2D{{X: 15, Y: 12}, {X: 85, Y: 22}, {X: 45, Y: 72}}

	tk.Align()

	p := tk.Historic.Panel
	if !p.Aligned || p.Status != panel.StatusLoaded {
		t.Fatalf("align failed: aligned=%v status=%v", p.Aligned, p.Status)
	}
	if p.Props.ImageDims != geometry.NewRect(0, 0, 120, 110) {
		t.Errorf("warped dims = %+v", p.Props.ImageDims)
	}
}

func TestToggleOverlayMirrorsBothPanels(t *testing.T) {
	tk := newToolkit()
	tk.Historic.Panel.Props.Overlay = false
	tk.Repeat.Panel.Props.Overlay = false

	tk.ToggleOverlay()
	if !tk.Historic.Panel.Props.Overlay || !tk.Repeat.Panel.Props.Overlay {
		t.Error("overlay flag must flip on both panels")
	}
	tk.ToggleOverlay()
	if tk.Historic.Panel.Props.Overlay || tk.Repeat.Panel.Props.Overlay {
		t.Error("overlay flag must flip back off")
	}
}
