// Command aligncheck runs the registration pipeline headless: it reads two
// images plus a correspondence file, solves the transform, reports the
// reprojection error and optionally writes the warped result.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"repeat-align/internal/export"
	"repeat-align/internal/imaging"
	"repeat-align/internal/register"
	"repeat-align/internal/vision"
	"repeat-align/internal/vision/cv"
	"repeat-align/pkg/geometry"
)

// correspondences is the on-disk control point format: paired image-space
// points, moving first.
type correspondences struct {
	Moving     []geometry.Point2D `json:"moving"`
	Fixed      []geometry.Point2D `json:"fixed"`
	Projective bool               `json:"projective,omitempty"`
}

func main() {
	moving := flag.String("m", "", "Path to the moving (historic) image")
	fixed := flag.String("f", "", "Path to the fixed (repeat) image")
	pointsPath := flag.String("points", "", "Path to the correspondence JSON file")
	out := flag.String("o", "", "Directory for the warped output (omit to skip writing)")
	native := flag.Bool("native", false, "Use the pure Go warp instead of OpenCV")
	flag.Parse()

	if *moving == "" || *fixed == "" || *pointsPath == "" {
		fmt.Println("Usage: aligncheck -m <moving> -f <fixed> -points <points.json> [-o <dir>] [-native]")
		os.Exit(1)
	}

	corr, err := readCorrespondences(*pointsPath)
	if err != nil {
		fail("read correspondences: %v", err)
	}

	fmt.Printf("=== Loading moving: %s ===\n", *moving)
	movingRes, err := imaging.Load(*moving)
	if err != nil {
		fail("load moving image: %v", err)
	}
	fmt.Printf("%.0fx%.0f, %s\n", movingRes.Props.SourceDims.Width,
		movingRes.Props.SourceDims.Height, movingRes.Props.MimeType)

	fmt.Printf("\n=== Loading fixed: %s ===\n", *fixed)
	fixedRes, err := imaging.Load(*fixed)
	if err != nil {
		fail("load fixed image: %v", err)
	}
	fmt.Printf("%.0fx%.0f, %s\n", fixedRes.Props.SourceDims.Width,
		fixedRes.Props.SourceDims.Height, fixedRes.Props.MimeType)

	var engine vision.Engine = cv.NewEngine()
	if *native {
		engine = vision.NewNativeEngine()
	}

	if len(corr.Moving) != len(corr.Fixed) {
		fail("correspondence counts differ: %d vs %d", len(corr.Moving), len(corr.Fixed))
	}
	fmt.Printf("\n=== Solving (%d correspondences) ===\n", len(corr.Moving))

	var tr geometry.ProjectiveTransform
	if corr.Projective && len(corr.Moving) >= 4 {
		tr, err = engine.SolveHomography(corr.Moving, corr.Fixed)
	} else {
		var aff geometry.AffineTransform
		aff, err = engine.SolveAffine(corr.Moving, corr.Fixed)
		tr = geometry.FromAffine(aff)
	}
	if err != nil {
		fail("solve: %v", err)
	}

	residual := register.MeanResidual(corr.Moving, corr.Fixed, tr)
	fmt.Printf("Mean reprojection error: %.3f px\n", residual)
	for i := range corr.Moving {
		proj := tr.Apply(corr.Moving[i])
		fmt.Printf("  %2d: (%7.1f,%7.1f) -> (%7.1f,%7.1f), want (%7.1f,%7.1f), off %.2f px\n",
			i+1, corr.Moving[i].X, corr.Moving[i].Y, proj.X, proj.Y,
			corr.Fixed[i].X, corr.Fixed[i].Y, proj.Distance(corr.Fixed[i]))
	}

	if *out == "" {
		return
	}

	fmt.Printf("\n=== Warping ===\n")
	w := int(fixedRes.Props.SourceDims.Width)
	h := int(fixedRes.Props.SourceDims.Height)
	warped, err := engine.Warp(movingRes.Image, tr, w, h)
	if err != nil {
		fail("warp: %v", err)
	}

	blob, err := export.Blob(warped, export.Params{Ext: "png"})
	if err != nil {
		fail("encode: %v", err)
	}
	name := export.Filename(movingRes.Props.Filename, "png", time.Now())
	path := filepath.Join(*out, name)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		fail("write output: %v", err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", path, len(blob))
}

func readCorrespondences(path string) (*correspondences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c correspondences
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
