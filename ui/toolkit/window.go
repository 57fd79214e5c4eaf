package toolkit

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"repeat-align/internal/imaging"
	"repeat-align/internal/mode"
	"repeat-align/ui/prefs"
)

// Window is the main application window: two panel canvases side by side,
// a toolbar and the command menus.
type Window struct {
	fyne.Window
	app     fyne.App
	toolkit *Toolkit

	statusBar *widget.Label
}

// NewWindow builds the main window around an assembled toolkit.
func NewWindow(fyneApp fyne.App, t *Toolkit) *Window {
	win := fyneApp.NewWindow("Repeat Align")

	w := &Window{
		Window:  win,
		app:     fyneApp,
		toolkit: t,
	}
	t.OnError = w.showError
	t.OnStatus = w.showStatus

	w.setupUI()
	w.setupMenus()
	w.restoreGeometry()
	return w
}

func (w *Window) setupUI() {
	w.statusBar = widget.NewLabel("Ready")

	split := container.NewHSplit(
		container.NewBorder(widget.NewLabel("Historic"), nil, nil, nil, w.toolkit.Historic.Canvas),
		container.NewBorder(widget.NewLabel("Repeat"), nil, nil, nil, w.toolkit.Repeat.Canvas),
	)
	split.SetOffset(0.5)

	content := container.NewBorder(
		w.createToolbar(),
		container.NewPadded(w.statusBar),
		nil,
		nil,
		split,
	)
	w.SetContent(content)
}

func (w *Window) createToolbar() fyne.CanvasObject {
	panBtn := widget.NewButton("Pan", func() { w.toolkit.SetMode(mode.ModePan) })
	selectBtn := widget.NewButton("Points", func() { w.toolkit.SetMode(mode.ModeSelect) })
	cropBtn := widget.NewButton("Crop", func() { w.toolkit.SetMode(mode.ModeCrop) })
	alignBtn := widget.NewButton("Align", w.toolkit.Align)

	return container.NewHBox(
		widget.NewLabel("Mode:"),
		panBtn, selectBtn, cropBtn,
		widget.NewSeparator(),
		alignBtn,
	)
}

func (w *Window) setupMenus() {
	t := w.toolkit

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Load Historic...", func() { w.openImage(t.Historic) }),
		fyne.NewMenuItem("Load Repeat...", func() { w.openImage(t.Repeat) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Historic As...", func() { w.saveImage(t.Historic) }),
		fyne.NewMenuItem("Save Repeat As...", func() { w.saveImage(t.Repeat) }),
		fyne.NewMenuItem("Save State", t.SaveState),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { w.saveGeometry(); w.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Clear Historic Points", func() { t.Clear(t.Historic) }),
		fyne.NewMenuItem("Clear Repeat Points", func() { t.Clear(t.Repeat) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset Historic", func() { t.Reset(t.Historic) }),
		fyne.NewMenuItem("Reset Repeat", func() { t.Reset(t.Repeat) }),
		fyne.NewMenuItem("Remove Historic", func() { t.Remove(t.Historic) }),
		fyne.NewMenuItem("Remove Repeat", func() { t.Remove(t.Repeat) }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Redraw", func() { w.eachSide(t.Redraw) }),
		fyne.NewMenuItem("Fit", func() { w.eachSide(t.Fit) }),
		fyne.NewMenuItem("Expand", func() { w.eachSide(t.Expand) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Zoom In", func() { w.eachSide(t.ZoomIn) }),
		fyne.NewMenuItem("Zoom Out", func() { w.eachSide(t.ZoomOut) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Magnifier", func() { w.eachSide(t.ToggleMagnify) }),
		fyne.NewMenuItem("Toggle Point Overlay", t.ToggleOverlay),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Align Historic to Repeat", t.Align),
		fyne.NewMenuItem("Apply Historic Crop", func() { t.ApplyCrop(t.Historic) }),
		fyne.NewMenuItem("Apply Repeat Crop", func() { t.ApplyCrop(t.Repeat) }),
		fyne.NewMenuItem("Toggle Projective Fit", t.ToggleProjective),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Resize Historic to Repeat", w.resizeHistoric),
	)

	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, toolsMenu))
}

func (w *Window) eachSide(cmd func(*Side)) {
	for _, s := range w.toolkit.Sides() {
		cmd(s)
	}
}

// resizeHistoric resamples the historic raster to the repeat panel's pixel
// grid, a cheap alternative to a full warp when the framings already match.
func (w *Window) resizeHistoric() {
	t := w.toolkit
	dims := t.Repeat.Panel.Props.ImageDims
	if dims.Empty() {
		w.showError(fmt.Errorf("load the repeat image first"))
		return
	}
	t.Resize(t.Historic, int(dims.Width), int(dims.Height))
}

// openImage shows the file picker and loads the chosen image into a panel.
func (w *Window) openImage(s *Side) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			w.showError(err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()
		w.toolkit.Load(s, path)
	}, w.Window)

	fd.SetFilter(storage.NewExtensionFileFilter(imaging.SupportedFormats()))
	if dir := w.toolkit.prefs.String(prefs.KeyLastDir); dir != "" {
		if uri, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(uri)
		}
	}
	fd.Show()
}

// saveImage shows the folder picker and exports a panel's raster there.
func (w *Window) saveImage(s *Side) {
	if s.Panel.Image == nil {
		w.showError(fmt.Errorf("nothing to save on the %s panel", s.Panel.ID))
		return
	}
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			w.showError(err)
			return
		}
		if uri == nil {
			return
		}
		w.toolkit.SaveAs(s, uri.Path(), "png")
	}, w.Window)
	fd.Show()
}

func (w *Window) showError(err error) {
	dialog.ShowError(err, w.Window)
}

func (w *Window) showStatus(msg string) {
	w.statusBar.SetText(msg)
}

func (w *Window) restoreGeometry() {
	pw := w.toolkit.prefs.Float(prefs.KeyWindowWidth, 1700)
	ph := w.toolkit.prefs.Float(prefs.KeyWindowHeight, 760)
	w.Resize(fyne.NewSize(float32(pw), float32(ph)))
}

func (w *Window) saveGeometry() {
	size := w.Canvas().Size()
	w.toolkit.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	w.toolkit.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	_ = w.toolkit.prefs.Save()
}
