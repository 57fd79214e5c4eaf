package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"repeat-align/pkg/geometry"

	xdraw "golang.org/x/image/draw"
)

// ToRGBA returns the image as *image.RGBA, copying only when necessary.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// Clone returns an independent copy of the raster.
func Clone(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// SubRegion extracts the given image-space rectangle as a new raster. The
// rectangle must already be clamped to the image bounds.
func SubRegion(img image.Image, box geometry.Rect) *image.RGBA {
	r := image.Rect(int(box.X), int(box.Y), int(box.X+box.Width), int(box.Y+box.Height))
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min.Add(r.Min), draw.Src)
	return dst
}

// Scale resamples the raster to the target size with bilinear filtering.
func Scale(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// ScaleNearest resamples with nearest-neighbor sampling. The magnifier uses
// this so enlarged pixels stay crisp.
func ScaleNearest(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// PixelAt returns the color at the given pixel, or opaque black outside the
// raster bounds.
func PixelAt(img image.Image, x, y int) color.Color {
	if img == nil {
		return color.Black
	}
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return color.Black
	}
	return img.At(x, y)
}
