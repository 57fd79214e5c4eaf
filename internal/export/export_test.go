package export

import (
	"bytes"
	"image"
	"testing"
	"time"
)

func TestBlobPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	blob, err := Blob(img, Params{Ext: "png"})
	if err != nil {
		t.Fatalf("blob: %v", err)
	}
	if !bytes.HasPrefix(blob, []byte("\x89PNG")) {
		t.Error("png blob missing signature")
	}
}

func TestBlobJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	blob, err := Blob(img, Params{Ext: "jpg", Quality: 95})
	if err != nil {
		t.Fatalf("blob: %v", err)
	}
	if !bytes.HasPrefix(blob, []byte{0xFF, 0xD8}) {
		t.Error("jpeg blob missing SOI marker")
	}
}

func TestBlobRejects(t *testing.T) {
	if _, err := Blob(nil, Params{Ext: "png"}); err == nil {
		t.Error("nil image must fail")
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if _, err := Blob(img, Params{Ext: "tiff"}); err == nil {
		t.Error("unsupported format must fail")
	}
}

func TestMimeType(t *testing.T) {
	if got := (Params{Ext: "jpg"}).MimeType(); got != "image/jpeg" {
		t.Errorf("jpg mime = %q", got)
	}
	if got := (Params{Ext: "png"}).MimeType(); got != "image/png" {
		t.Errorf("png mime = %q", got)
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	got := Filename("/scans/glacier-1902.tif", "png", at)
	want := "glacier-1902-20260314-092653.png"
	if got != want {
		t.Errorf("filename = %q, want %q", got, want)
	}

	if got := Filename("", "jpg", at); got != "aligned-20260314-092653.jpeg" {
		t.Errorf("fallback filename = %q", got)
	}
}
