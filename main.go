// Package main provides the entry point for the Repeat Align application.
package main

import (
	"log"
	"os"
	"time"

	fyneapp "fyne.io/fyne/v2/app"

	"repeat-align/internal/app"
	"repeat-align/internal/config"
	"repeat-align/internal/imaging"
	"repeat-align/internal/version"
	"repeat-align/internal/vision/cv"
	"repeat-align/ui/prefs"
	"repeat-align/ui/toolkit"
)

const appTitle = "Repeat Align"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s %s", appTitle, version.String())

	opts := config.Load()
	appPrefs := prefs.Load()

	fyneApp := fyneapp.NewWithID("repeat-align")
	tk := toolkit.New(cv.NewEngine(), opts, appPrefs)
	win := toolkit.NewWindow(fyneApp, tk)

	// Optional command line arguments: historic image, then repeat image.
	args := os.Args[1:]
	if len(args) > 0 && imaging.IsSupportedFormat(args[0]) {
		tk.Load(tk.Historic, args[0])
	}
	if len(args) > 1 && imaging.IsSupportedFormat(args[1]) {
		tk.Load(tk.Repeat, args[1])
	}

	setupHotReload()

	win.ShowAndRun()
}

// setupHotReload restarts the app when a newer binary is compiled over the
// running one, which keeps edit-run cycles short during development.
func setupHotReload() {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}
	log.Printf("Hot reload: watching %s", reloader.ExecPath())

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected, restarting")
		if err := reloader.Restart(); err != nil {
			log.Printf("Hot reload: restart failed: %v", err)
		}
	})
	reloader.Start()
}
