// Package imaging prepares uploaded donation photos for storage.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"

	"github.com/leftoverhq/leftover/internal/model"
)

const (
	// MaxUploadBytes caps the size of an uploaded photo.
	MaxUploadBytes = 10 << 20

	// PhotoDimension bounds the longer side of a stored photo.
	PhotoDimension = 1600

	// ThumbDimension bounds the longer side of a listing thumbnail.
	ThumbDimension = 320

	// JPEGQuality is the compression quality for JPEG output.
	JPEGQuality = 82
)

// OutputMIME is the content type of every prepared image.
const OutputMIME = "image/jpeg"

var acceptedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Photo is an uploaded donation photo re-encoded as JPEG at two sizes.
type Photo struct {
	Full   []byte
	Thumb  []byte
	Width  int
	Height int
}

// Prepare reads an uploaded photo, checks its real format from the leading
// bytes, and encodes a bounded full-size copy and a thumbnail. Bad input
// fails with a validation error.
func Prepare(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, model.Validationf("photo larger than %d MiB", MaxUploadBytes>>20)
	}

	if detected := http.DetectContentType(data); !acceptedMIME[detected] {
		return nil, model.Validationf("unsupported photo format %s, use JPEG or PNG", detected)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, model.Validationf("photo cannot be decoded: %v", err)
	}

	full := fit(src, PhotoDimension)
	fullData, err := encode(full)
	if err != nil {
		return nil, err
	}
	thumbData, err := encode(fit(full, ThumbDimension))
	if err != nil {
		return nil, err
	}

	b := full.Bounds()
	return &Photo{
		Full:   fullData,
		Thumb:  thumbData,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales img down with Catmull-Rom so its longer side is at most limit,
// keeping the aspect ratio. Smaller images are returned as is.
func fit(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return img
	}

	nw, nh := limit, limit
	if w > h {
		nh = h * limit / w
	} else {
		nw = w * limit / h
	}
	nw, nh = atLeastOne(nw), atLeastOne(nh)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
