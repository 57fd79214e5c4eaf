// Package imaging loads and decodes the photographs handled by the toolkit.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"repeat-align/pkg/geometry"

	_ "golang.org/x/image/tiff"
)

// Props describes a decoded photograph. SourceDims is the raw pixel grid of
// the decoded raster; the panel derives render dims from it at commit time.
type Props struct {
	SourceDims geometry.Rect `json:"source_dims"`
	Filename   string        `json:"filename"`
	MimeType   string        `json:"mime_type"`
	FileSize   int64         `json:"file_size"`
	DPI        float64       `json:"dpi,omitempty"`
}

// Result is a successful load: the decoded raster plus its properties.
type Result struct {
	Image image.Image
	Props Props
}

// Load reads and decodes an image file.
func Load(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}

	res, err := Decode(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	res.Props.FileSize = info.Size()

	// TIFF scans from the archive usually carry a resolution tag.
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".tiff" || ext == ".tif" {
		if dpi, err := extractTIFFDPI(path); err == nil {
			res.Props.DPI = dpi
		}
	}

	return res, nil
}

// Decode decodes an image from a reader. The filename is kept for export
// naming and format detection.
func Decode(r io.Reader, filename string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	return &Result{
		Image: img,
		Props: Props{
			SourceDims: geometry.NewRect(0, 0, float64(bounds.Dx()), float64(bounds.Dy())),
			Filename:   filename,
			MimeType:   mimeForFormat(format),
			FileSize:   int64(len(data)),
		},
	}, nil
}

func mimeForFormat(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// SupportedFormats returns the list of supported image file extensions.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
