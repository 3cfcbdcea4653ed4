package photos

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJPEG(t *testing.T, data []byte) (image.Image, string) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img, format
}

func TestNormalizeDownscalesToFit(t *testing.T) {
	n := NewNormalizer(192, 108, 80)

	out, err := n.Normalize(bytes.NewReader(encodePNG(t, 400, 200)))
	require.NoError(t, err)

	img, format := decodeJPEG(t, out)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 192, img.Bounds().Dx())
	assert.Equal(t, 96, img.Bounds().Dy())
}

func TestNormalizeNeverUpscales(t *testing.T) {
	n := NewNormalizer(1920, 1080, 80)

	out, err := n.Normalize(bytes.NewReader(encodePNG(t, 64, 48)))
	require.NoError(t, err)

	img, _ := decodeJPEG(t, out)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

func TestNormalizeTallImage(t *testing.T) {
	n := NewNormalizer(100, 100, 80)

	out, err := n.Normalize(bytes.NewReader(encodePNG(t, 50, 200)))
	require.NoError(t, err)

	img, _ := decodeJPEG(t, out)
	assert.Equal(t, 25, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestNormalizeFlattensTransparency(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := NewNormalizer(0, 0, 0).Normalize(&buf)
	require.NoError(t, err)

	img, _ := decodeJPEG(t, out)
	r, g, b, _ := img.At(4, 4).RGBA()
	white := uint32(0xf000)
	assert.Greater(t, r, white)
	assert.Greater(t, g, white)
	assert.Greater(t, b, white)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := NewNormalizer(0, 0, 0).Normalize(bytes.NewReader([]byte("definitely not an image")))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestNormalizeAcceptsJPEG(t *testing.T) {
	src := imaging.New(300, 300, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, src, imaging.JPEG))

	out, err := NewNormalizer(150, 150, 70).Normalize(&buf)
	require.NoError(t, err)

	img, _ := decodeJPEG(t, out)
	assert.Equal(t, 150, img.Bounds().Dx())
}

func TestNewNormalizerDefaults(t *testing.T) {
	n := NewNormalizer(0, -1, 0)
	assert.Equal(t, DefaultMaxWidth, n.MaxWidth)
	assert.Equal(t, DefaultMaxHeight, n.MaxHeight)
	assert.Equal(t, DefaultJPEGQuality, n.Quality)
}
