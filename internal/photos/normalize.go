package photos

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth    = 1920
	DefaultMaxHeight   = 1080
	DefaultJPEGQuality = 80
)

// Normalizer converts any decodable image into a bounded JPEG
type Normalizer struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// NewNormalizer fills zero values with the default policy
func NewNormalizer(maxWidth, maxHeight, quality int) Normalizer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return Normalizer{MaxWidth: maxWidth, MaxHeight: maxHeight, Quality: quality}
}

// Normalize decodes r, applies EXIF orientation, shrinks the image to fit
// the bounding box keeping its aspect ratio, and re-encodes it as JPEG
// Images already inside the box keep their size
func (n Normalizer) Normalize(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	fitted := imaging.Fit(img, n.MaxWidth, n.MaxHeight, imaging.Lanczos)

	// JPEG has no alpha channel; transparent pixels become white
	bounds := fitted.Bounds()
	canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flat := imaging.Overlay(canvas, fitted, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(n.Quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
