package photos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverPropertyRoot(t *testing.T) {
	r := NewResolver("")

	root, err := r.PropertyRoot("Atlanta", "The Loft District")
	require.NoError(t, err)
	assert.Equal(t, "photos/properties/atlanta-the-loft-district", root)

	again, err := r.PropertyRoot("Atlanta", "The Loft District")
	require.NoError(t, err)
	assert.Equal(t, root, again)

	assert.Equal(t, "photos/properties/atlanta-the-loft-district/property-exterior",
		r.CategoryDir(root, CategoryExterior))

	unitDir, err := r.UnitDir(root, "3B")
	require.NoError(t, err)
	assert.Equal(t, "photos/properties/atlanta-the-loft-district/unit-3b", unitDir)
}

func TestResolverRejectsEmptySlugs(t *testing.T) {
	r := NewResolver(DefaultRoot)

	_, err := r.PropertyRoot("", "The Loft District")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = r.PropertyRoot("Atlanta", "***")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = r.UnitDir("photos/properties/a-b", " - ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewResolverCleansRoot(t *testing.T) {
	assert.Equal(t, "media/photos", NewResolver("/media/photos/").Root)
	assert.Equal(t, DefaultRoot, NewResolver("/").Root)
}

func TestResolverContains(t *testing.T) {
	r := NewResolver("")
	assert.True(t, r.Contains("photos/properties/a-b/property-exterior/1-x.jpg"))
	assert.False(t, r.Contains("photos/properties"))
	assert.False(t, r.Contains("photos/propertiesx/a.jpg"))
	assert.False(t, r.Contains("etc/passwd"))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Interior ")
	require.NoError(t, err)
	assert.Equal(t, CategoryInterior, c)

	_, err = ParseCategory("garage")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDirNameClassifiers(t *testing.T) {
	assert.True(t, IsCategoryDir("property-amenities"))
	assert.False(t, IsCategoryDir("property-garage"))
	assert.True(t, IsUnitDir("unit-3b"))
	assert.False(t, IsUnitDir("property-exterior"))
}
