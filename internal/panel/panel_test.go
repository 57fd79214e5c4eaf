package panel

import (
	"errors"
	"image"
	"testing"

	"repeat-align/internal/config"
	"repeat-align/internal/imaging"
	"repeat-align/pkg/geometry"
)

func testResult(w, h int) *imaging.Result {
	return &imaging.Result{
		Image: image.NewRGBA(image.Rect(0, 0, w, h)),
		Props: imaging.Props{
			SourceDims: geometry.NewRect(0, 0, float64(w), float64(h)),
			Filename:   "capture.png",
			MimeType:   "image/png",
			FileSize:   1234,
		},
	}
}

func loadedPanel(t *testing.T, w, h int) *Panel {
	t.Helper()
	p := New("historic", config.Default())
	gen, err := p.BeginLoad()
	if err != nil {
		t.Fatalf("begin load: %v", err)
	}
	if err := p.CommitLoad(gen, testResult(w, h)); err != nil {
		t.Fatalf("commit load: %v", err)
	}
	return p
}

func TestLoadLifecycle(t *testing.T) {
	p := New("historic", config.Default())
	if p.Status != StatusEmpty || p.Image != nil {
		t.Fatal("new panel must be empty with nil image")
	}

	gen, err := p.BeginLoad()
	if err != nil {
		t.Fatalf("begin load: %v", err)
	}
	if p.Status != StatusLoading {
		t.Fatalf("status after begin = %v", p.Status)
	}

	if err := p.CommitLoad(gen, testResult(4000, 3000)); err != nil {
		t.Fatalf("commit load: %v", err)
	}
	if p.Status != StatusLoaded {
		t.Fatalf("status after commit = %v", p.Status)
	}
	if p.Image == nil || p.Source == nil {
		t.Fatal("both rasters must be set after load")
	}

	// 4000x3000 into the 800x600 base canvas fills it exactly.
	want := geometry.NewRect(0, 0, 800, 600)
	if p.Props.RenderDims != want {
		t.Errorf("render dims = %+v, want %+v", p.Props.RenderDims, want)
	}
}

func TestLoadFailureRevertsToEmpty(t *testing.T) {
	p := New("historic", config.Default())
	gen, _ := p.BeginLoad()

	err := p.FailLoad(gen, errors.New("bad stream"))
	pe := AsError(err)
	if pe == nil || pe.Kind != KindStream {
		t.Fatalf("expected stream error, got %v", err)
	}
	if p.Status != StatusEmpty || p.Image != nil {
		t.Errorf("failed load must revert to empty, got %v", p.Status)
	}
}

func TestStaleLoadResultDropped(t *testing.T) {
	p := New("historic", config.Default())
	gen, _ := p.BeginLoad()

	// teardown invalidates the in-flight decode
	p.Remove()

	if err := p.CommitLoad(gen, testResult(10, 10)); err != nil {
		t.Fatalf("stale commit should be a silent no-op, got %v", err)
	}
	if p.Status != StatusEmpty || p.Image != nil {
		t.Error("stale result must not resurrect a removed panel")
	}
}

func TestBeginLoadRejectedWhenLoaded(t *testing.T) {
	p := loadedPanel(t, 100, 100)
	if _, err := p.BeginLoad(); err == nil {
		t.Error("loading over a loaded panel must be rejected")
	}
}

func TestTransformLifecycle(t *testing.T) {
	p := loadedPanel(t, 400, 300)

	if err := p.BeginTransform("crop"); err != nil {
		t.Fatalf("begin transform: %v", err)
	}
	if p.Status != StatusLoading {
		t.Fatalf("status during transform = %v", p.Status)
	}

	if err := p.CommitTransform(image.NewRGBA(image.Rect(0, 0, 200, 100))); err != nil {
		t.Fatalf("commit transform: %v", err)
	}
	if p.Status != StatusLoaded {
		t.Fatalf("status after commit = %v", p.Status)
	}
	if p.Props.ImageDims != geometry.NewRect(0, 0, 200, 100) {
		t.Errorf("image dims = %+v", p.Props.ImageDims)
	}
	// render refits against the 800x600 base
	if p.Props.RenderDims.Width != 800 || p.Props.RenderDims.Height != 400 {
		t.Errorf("render dims = %+v", p.Props.RenderDims)
	}
}

func TestAbortTransformKeepsPriorImage(t *testing.T) {
	p := loadedPanel(t, 400, 300)
	prior := p.Image

	if err := p.BeginTransform("align"); err != nil {
		t.Fatalf("begin transform: %v", err)
	}
	err := p.AbortTransform(errors.New("degenerate matrix"))
	if err == nil {
		t.Fatal("abort should surface the error")
	}
	if p.Status != StatusLoaded || p.Image != prior {
		t.Error("abort must return to loaded with the prior image")
	}
}

func TestFailThenResetRecovers(t *testing.T) {
	p := loadedPanel(t, 400, 300)
	p.Fail(errors.New("draw exploded"))
	if p.Status != StatusError {
		t.Fatalf("status = %v, want error", p.Status)
	}

	// error is terminal for normal operations
	if err := p.BeginTransform("crop"); err == nil {
		t.Error("transform must be rejected in error status")
	}

	if err := p.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if p.Status != StatusLoaded || p.Image == nil {
		t.Error("reset must restore a loaded panel")
	}
}

func TestRemoveClearsEverything(t *testing.T) {
	p := loadedPanel(t, 400, 300)
	p.Ptr.Points = append(p.Ptr.Points, geometry.Point2D{X: 10, Y: 10})
	p.Ptr.SelectBox = geometry.NewRect(1, 1, 5, 5)

	p.Remove()

	if p.Status != StatusEmpty || p.Image != nil || p.Source != nil {
		t.Error("remove must clear rasters and return to empty")
	}
	if len(p.Ptr.Points) != 0 || !p.Ptr.SelectBox.Empty() || p.Ptr.Index != -1 {
		t.Error("remove must clear pointer state")
	}
}

func TestResetKeepsControlPoints(t *testing.T) {
	p := loadedPanel(t, 400, 300)
	p.Ptr.Points = []geometry.Point2D{{X: 10, Y: 10}, {X: 50, Y: 80}}
	p.CommitTransform(image.NewRGBA(image.Rect(0, 0, 100, 100))) // fails: not in loading
	_ = p.BeginTransform("crop")
	_ = p.CommitTransform(image.NewRGBA(image.Rect(0, 0, 100, 100)))

	if err := p.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(p.Ptr.Points) != 2 {
		t.Errorf("reset must keep control points, have %d", len(p.Ptr.Points))
	}
	if p.Props.ImageDims != geometry.NewRect(0, 0, 400, 300) {
		t.Errorf("reset must restore source dims, got %+v", p.Props.ImageDims)
	}
}

func TestSyncSource(t *testing.T) {
	p := loadedPanel(t, 400, 300)
	_ = p.BeginTransform("crop")
	_ = p.CommitTransform(image.NewRGBA(image.Rect(0, 0, 120, 90)))

	if err := p.SyncSource(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if err := p.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if p.Props.ImageDims != geometry.NewRect(0, 0, 120, 90) {
		t.Errorf("reset after sync should keep committed state, got %+v", p.Props.ImageDims)
	}
}

func TestDownloadLifecycle(t *testing.T) {
	p := loadedPanel(t, 100, 100)

	gen, err := p.BeginDownload()
	if err != nil {
		t.Fatalf("begin download: %v", err)
	}
	if p.Status != StatusDownloading {
		t.Fatalf("status = %v", p.Status)
	}
	if err := p.FinishDownload(gen); err != nil {
		t.Fatalf("finish download: %v", err)
	}
	if p.Status != StatusLoaded {
		t.Fatalf("status after download = %v", p.Status)
	}

	empty := New("repeat", config.Default())
	if _, err := empty.BeginDownload(); err == nil {
		t.Error("download from an empty panel must be rejected")
	}
}

func TestCoordinateConversion(t *testing.T) {
	p := loadedPanel(t, 4000, 3000)

	got := p.CanvasToImage(400, 300)
	if got != (geometry.Point2D{X: 2000, Y: 1500}) {
		t.Errorf("canvas (400,300) -> %+v, want (2000,1500)", got)
	}

	back := p.ImageToCanvas(got)
	if back != (geometry.Point2D{X: 400, Y: 300}) {
		t.Errorf("image (2000,1500) -> %+v, want (400,300)", back)
	}

	// pan shifts the conversion origin
	p.PanBy(100, 50)
	shifted := p.CanvasToImage(500, 350)
	if shifted != (geometry.Point2D{X: 2000, Y: 1500}) {
		t.Errorf("after pan, canvas (500,350) -> %+v, want (2000,1500)", shifted)
	}
}

func TestZoomAndFit(t *testing.T) {
	p := loadedPanel(t, 1600, 1200)
	p.Zoom(1.25)
	if p.Props.RenderDims.Width != 1000 || p.Props.RenderDims.Height != 750 {
		t.Errorf("zoomed render dims = %+v", p.Props.RenderDims)
	}
	p.FitToBase()
	if p.Props.RenderDims != geometry.NewRect(0, 0, 800, 600) {
		t.Errorf("fit render dims = %+v", p.Props.RenderDims)
	}
}
