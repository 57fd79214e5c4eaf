// Package export encodes a panel's raster for saving to disk.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"
	"time"
)

// Params selects the output encoding.
type Params struct {
	// Ext is the output format extension without the dot: "png" or "jpeg".
	Ext string

	// Quality applies to lossy formats, 1-100.
	Quality int
}

// MimeType returns the media type of the encoded blob.
func (p Params) MimeType() string {
	switch normalizeExt(p.Ext) {
	case "jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}

// Blob encodes the raster into a byte buffer ready to be written out.
func Blob(img image.Image, p Params) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("export: no image to encode")
	}

	var buf bytes.Buffer
	switch normalizeExt(p.Ext) {
	case "jpeg":
		q := p.Quality
		if q < 1 || q > 100 {
			q = jpeg.DefaultQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, fmt.Errorf("export: encode jpeg: %w", err)
		}
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("export: encode png: %w", err)
		}
	default:
		return nil, fmt.Errorf("export: unsupported format %q", p.Ext)
	}
	return buf.Bytes(), nil
}

// Filename derives an output name from the source filename, swapping the
// extension and appending a timestamp so repeated saves never collide.
func Filename(source, ext string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." {
		base = "aligned"
	}
	return fmt.Sprintf("%s-%s.%s", base, now.Format("20060102-150405"), normalizeExt(ext))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "jpg" {
		return "jpeg"
	}
	return ext
}
