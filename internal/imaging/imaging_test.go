package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/leftoverhq/leftover/internal/model"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func testJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(w, h, color.RGBA{200, 120, 40, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func testPNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, solid(w, h, color.RGBA{40, 160, 80, 255}))
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestPrepareJPEG(t *testing.T) {
	photo, err := Prepare(bytes.NewReader(testJPEG(200, 100)))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if photo.Width != 200 || photo.Height != 100 {
		t.Errorf("expected 200x100, got %dx%d", photo.Width, photo.Height)
	}
	if w, h := decodeSize(t, photo.Thumb); w != 200 || h != 100 {
		t.Errorf("small photo thumbnail should keep its size, got %dx%d", w, h)
	}
}

func TestPreparePNGBecomesJPEG(t *testing.T) {
	photo, err := Prepare(bytes.NewReader(testPNG(64, 64)))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	decodeSize(t, photo.Full)
}

func TestPrepareDownscales(t *testing.T) {
	photo, err := Prepare(bytes.NewReader(testJPEG(3200, 1600)))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	if w, h := decodeSize(t, photo.Full); w != PhotoDimension || h != PhotoDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", PhotoDimension, PhotoDimension/2, w, h)
	}
	if w, h := decodeSize(t, photo.Thumb); w != ThumbDimension || h != ThumbDimension/2 {
		t.Errorf("expected thumbnail %dx%d, got %dx%d", ThumbDimension, ThumbDimension/2, w, h)
	}
}

func TestPreparePortrait(t *testing.T) {
	photo, err := Prepare(bytes.NewReader(testJPEG(400, 800)))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if w, h := decodeSize(t, photo.Thumb); w != ThumbDimension/2 || h != ThumbDimension {
		t.Errorf("expected thumbnail %dx%d, got %dx%d", ThumbDimension/2, ThumbDimension, w, h)
	}
}

func TestPrepareRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("not an image")},
		{"gif", []byte("GIF89a...")},
		{"truncated jpeg", testJPEG(100, 100)[:64]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Prepare(bytes.NewReader(tt.data))
			if !errors.Is(err, model.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPrepareTooLarge(t *testing.T) {
	data := append(testJPEG(10, 10), make([]byte, MaxUploadBytes)...)
	if _, err := Prepare(bytes.NewReader(data)); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
