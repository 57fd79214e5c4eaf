// Package config holds the toolkit options. Options are threaded explicitly
// into the mode controller and the engines; nothing reads them ambiently.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const optionsFile = "options.json"

// Options carries the tunable constants of the alignment toolkit.
type Options struct {
	// MaxControlPoints caps the number of control points per panel.
	MaxControlPoints int `json:"max_control_points"`

	// PointerRadius is the hit-test radius, in canvas pixels, for selecting
	// an existing control point.
	PointerRadius float64 `json:"pointer_radius"`

	// BaseWidth and BaseHeight are the fixed on-screen canvas dimensions.
	BaseWidth  float64 `json:"base_width"`
	BaseHeight float64 `json:"base_height"`

	// MaxImageWidth and MaxImageHeight bound full-size rendering.
	MaxImageWidth  float64 `json:"max_image_width"`
	MaxImageHeight float64 `json:"max_image_height"`

	// Magnification is the zoom factor of the magnifier preview, and
	// MagnifySize the square preview edge in canvas pixels.
	Magnification float64 `json:"magnification"`
	MagnifySize   float64 `json:"magnify_size"`

	// ZoomStep is the multiplicative factor for zoomIn/zoomOut.
	ZoomStep float64 `json:"zoom_step"`

	// Projective selects a full homography solve when four or more
	// correspondences are available; otherwise the engine solves a
	// least-squares affine.
	Projective bool `json:"projective"`

	// ExportQuality is the JPEG quality used for downloads.
	ExportQuality int `json:"export_quality"`
}

// Default returns the options used when no file is present.
func Default() Options {
	return Options{
		MaxControlPoints: 20,
		PointerRadius:    20,
		BaseWidth:        800,
		BaseHeight:       600,
		MaxImageWidth:    8000,
		MaxImageHeight:   8000,
		Magnification:    4,
		MagnifySize:      160,
		ZoomStep:         1.25,
		Projective:       false,
		ExportQuality:    95,
	}
}

// Load reads options from ~/.config/repeat-align/options.json, falling back
// to defaults when the file is absent or unreadable.
func Load() Options {
	opts := Default()

	path, err := optionsPath()
	if err != nil {
		return opts
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opts
	}
	if err := json.Unmarshal(data, &opts); err != nil {
		return Default()
	}
	return opts.sanitized()
}

// Save writes options to disk.
func Save(opts Options) error {
	path, err := optionsPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first out-of-range field, if any.
func (o Options) Validate() error {
	if o.MaxControlPoints < 3 {
		return fmt.Errorf("max_control_points must be at least 3, got %d", o.MaxControlPoints)
	}
	if o.PointerRadius <= 0 {
		return fmt.Errorf("pointer_radius must be positive, got %v", o.PointerRadius)
	}
	if o.BaseWidth <= 0 || o.BaseHeight <= 0 {
		return fmt.Errorf("base canvas dimensions must be positive, got %vx%v", o.BaseWidth, o.BaseHeight)
	}
	if o.Magnification <= 1 {
		return fmt.Errorf("magnification must exceed 1, got %v", o.Magnification)
	}
	if o.ZoomStep <= 1 {
		return fmt.Errorf("zoom_step must exceed 1, got %v", o.ZoomStep)
	}
	if o.ExportQuality < 1 || o.ExportQuality > 100 {
		return fmt.Errorf("export_quality must be in [1,100], got %d", o.ExportQuality)
	}
	return nil
}

func (o Options) sanitized() Options {
	if o.Validate() != nil {
		return Default()
	}
	return o
}

func optionsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home := os.Getenv("HOME")
		if home == "" {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "repeat-align", optionsFile), nil
}
