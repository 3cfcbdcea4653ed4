package handlers

import (
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"rental-portal/internal/models"
	"rental-portal/internal/photos"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func form(values map[string]string) *multipart.Form {
	f := &multipart.Form{Value: map[string][]string{}}
	for k, v := range values {
		f.Value[k] = []string{v}
	}
	return f
}

func TestParseDestination(t *testing.T) {
	dest, err := parseDestination(form(map[string]string{"propertyId": "7", "type": " Interior "}))
	require.NoError(t, err)
	assert.Equal(t, uint(7), dest.PropertyID)
	assert.Equal(t, photos.CategoryInterior, dest.Category)
	assert.Nil(t, dest.UnitID)

	// unitId wins over type
	dest, err = parseDestination(form(map[string]string{"propertyId": "7", "unitId": "3", "type": "bogus"}))
	require.NoError(t, err)
	require.NotNil(t, dest.UnitID)
	assert.Equal(t, uint(3), *dest.UnitID)

	for name, values := range map[string]map[string]string{
		"missing property": {"type": "exterior"},
		"zero property":    {"propertyId": "0", "type": "exterior"},
		"bad property":     {"propertyId": "abc", "type": "exterior"},
		"bad unit":         {"propertyId": "1", "unitId": "-2"},
		"unknown type":     {"propertyId": "1", "type": "garage"},
		"no type":          {"propertyId": "1"},
	} {
		_, err := parseDestination(form(values))
		assert.Error(t, err, name)
	}
}

func validProperty() *models.Property {
	return &models.Property{
		Name:      "The Loft District",
		Address:   "1 Main St",
		City:      "Atlanta",
		State:     "GA",
		ZipCode:   "30303",
		Bathrooms: "1.5",
	}
}

func TestValidateProperty(t *testing.T) {
	p := validProperty()
	p.Latitude = "33.7489954"
	p.Longitude = "-84.3879824"
	require.NoError(t, validateProperty(p))
	assert.Equal(t, "33.74900", p.Latitude)
	assert.Equal(t, "-84.38798", p.Longitude)
	assert.NotNil(t, p.Images)

	p = &models.Property{Name: "x"}
	err := validateProperty(p)
	require.Error(t, err)
	assert.Equal(t, "invalid property data: missing address, bathrooms, city, state, zipCode", err.Error())

	p = validProperty()
	p.Latitude = "91"
	assert.Error(t, validateProperty(p))

	p = validProperty()
	p.TotalUnits = -1
	assert.Error(t, validateProperty(p))

	// the photo directory needs a slug
	p = validProperty()
	p.Name = "!!!"
	err = validateProperty(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "letters or digits")
}

func TestValidateUnit(t *testing.T) {
	rent := -5
	for name, u := range map[string]*models.Unit{
		"no property":  {UnitNumber: "1", Bathrooms: "1"},
		"no number":    {PropertyID: 1, Bathrooms: "1"},
		"no bathrooms": {PropertyID: 1, UnitNumber: "1"},
		"negative":     {PropertyID: 1, UnitNumber: "1", Bathrooms: "1", Rent: &rent},
		"no slug":      {PropertyID: 1, UnitNumber: "#-#", Bathrooms: "1"},
	} {
		assert.Error(t, validateUnit(u), name)
	}
	u := &models.Unit{PropertyID: 1, UnitNumber: "4B", Bathrooms: "1"}
	require.NoError(t, validateUnit(u))
	assert.Equal(t, []string{}, u.Images)
}

func TestParseID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for raw, want := range map[string]int{"12": http.StatusOK, "abc": http.StatusBadRequest, "0": http.StatusBadRequest} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}
		id, ok := parseID(c, "id", "property")
		if want == http.StatusOK {
			assert.True(t, ok, raw)
			assert.Equal(t, uint(12), id)
			continue
		}
		assert.False(t, ok, raw)
		assert.Equal(t, want, w.Code, raw)
		assert.JSONEq(t, `{"error":"Invalid property ID"}`, w.Body.String())
	}
}
