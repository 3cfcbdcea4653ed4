package photos

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"rental-portal/internal/models"

	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	properties map[uint]*models.Property
	units      map[uint]*models.Unit
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		properties: map[uint]*models.Property{},
		units:      map[uint]*models.Unit{},
	}
}

func (c *fakeCatalog) addProperty(id uint, name, city string) *models.Property {
	p := &models.Property{ID: id, Name: name, City: city}
	c.properties[id] = p
	return p
}

func (c *fakeCatalog) addUnit(id, propertyID uint, number string) *models.Unit {
	u := &models.Unit{ID: id, PropertyID: propertyID, UnitNumber: number}
	c.units[id] = u
	return u
}

func (c *fakeCatalog) GetPropertyByID(_ context.Context, id uint) (*models.Property, error) {
	if p, ok := c.properties[id]; ok {
		return p, nil
	}
	return nil, models.ErrNotFound
}

func (c *fakeCatalog) GetUnitByID(_ context.Context, id uint) (*models.Unit, error) {
	if u, ok := c.units[id]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

func (c *fakeCatalog) GetUnits(_ context.Context, propertyID uint) ([]models.Unit, error) {
	var out []models.Unit
	for _, u := range c.units {
		if u.PropertyID == propertyID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func fileInput(name, contentType string, data []byte) FileInput {
	return FileInput{
		OriginalName: name,
		ContentType:  contentType,
		Size:         int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
