package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// encodePNG creates a solid-color PNG of the given size.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestNormalize_SmallImagePassesThrough(t *testing.T) {
	data := encodePNG(t, 100, 80)

	out, err := Normalize(data, 1600)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not valid JPEG: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 80 {
		t.Errorf("dimensions changed: got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestNormalize_LargeImageDownscaled(t *testing.T) {
	data := encodePNG(t, 400, 200)

	out, err := Normalize(data, 100)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not valid JPEG: %v", err)
	}
	if img.Bounds().Dx() != 100 {
		t.Errorf("expected width 100, got %d", img.Bounds().Dx())
	}
	if img.Bounds().Dy() != 50 {
		t.Errorf("expected height 50 (aspect preserved), got %d", img.Bounds().Dy())
	}
}

func TestNormalize_InvalidBytes(t *testing.T) {
	if _, err := Normalize([]byte("definitely not an image"), 1600); err == nil {
		t.Fatal("expected error for undecodable bytes")
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	if _, err := Normalize(nil, 1600); err == nil {
		t.Fatal("expected error for empty input")
	}
}
