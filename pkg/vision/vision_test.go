package vision_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/animahq/anima/pkg/vision"
)

func testImage(t *testing.T) image.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		for y := range 8 {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	return img
}

func TestNormalizePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(t)); err != nil {
		t.Fatalf("png encode: %v", err)
	}

	out, err := vision.Normalize(buf.Bytes())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not decodable JPEG: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Fatalf("normalized bounds = %v, want 8x8", img.Bounds())
	}
}

func TestNormalizeJPEGPassthrough(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(t), nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}

	out, err := vision.Normalize(buf.Bytes())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(out)); err != nil {
		t.Fatalf("output is not decodable JPEG: %v", err)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	if _, err := vision.Normalize([]byte("not an image")); err == nil {
		t.Fatal("expected error for undecodable input")
	}
}
