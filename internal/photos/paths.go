package photos

import (
	"fmt"
	"path"
	"strings"
)

// DefaultRoot is the storage root shared with the bulk import tooling
const DefaultRoot = "photos/properties"

// Category is a property level photo grouping
type Category string

const (
	CategoryExterior  Category = "exterior"
	CategoryInterior  Category = "interior"
	CategoryAmenities Category = "amenities"
)

// Categories lists the fixed categories in display order
var Categories = []Category{CategoryExterior, CategoryInterior, CategoryAmenities}

// ParseCategory validates a category name from a request
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: type must be one of exterior, interior, amenities", ErrValidation)
}

const (
	categoryDirPrefix = "property-"
	unitDirPrefix     = "unit-"
)

// Resolver maps property and unit identity onto storage keys. Keys are
// slash separated and relative to the store base, e.g.
// photos/properties/atlanta-the-loft-district/property-exterior
type Resolver struct {
	Root string
}

// NewResolver returns a resolver for root, falling back to DefaultRoot
func NewResolver(root string) Resolver {
	root = strings.Trim(path.Clean("/"+root), "/")
	if root == "" {
		root = DefaultRoot
	}
	return Resolver{Root: root}
}

// PropertyDirName returns "{city-slug}-{name-slug}"
func PropertyDirName(city, name string) (string, error) {
	citySlug := Slugify(city)
	nameSlug := Slugify(name)
	if citySlug == "" {
		return "", fmt.Errorf("%w: city %q has no letters or digits", ErrValidation, city)
	}
	if nameSlug == "" {
		return "", fmt.Errorf("%w: property name %q has no letters or digits", ErrValidation, name)
	}
	return citySlug + "-" + nameSlug, nil
}

// UnitDirName returns "unit-{unit-slug}"
func UnitDirName(unitNumber string) (string, error) {
	slug := Slugify(unitNumber)
	if slug == "" {
		return "", fmt.Errorf("%w: unit number %q has no letters or digits", ErrValidation, unitNumber)
	}
	return unitDirPrefix + slug, nil
}

// PropertyRoot returns the directory holding every photo of a property
func (r Resolver) PropertyRoot(city, name string) (string, error) {
	dir, err := PropertyDirName(city, name)
	if err != nil {
		return "", err
	}
	return path.Join(r.Root, dir), nil
}

// CategoryDir returns the directory for a property level category
func (r Resolver) CategoryDir(propertyRoot string, c Category) string {
	return path.Join(propertyRoot, categoryDirPrefix+string(c))
}

// UnitDir returns the directory for a unit's photos
func (r Resolver) UnitDir(propertyRoot, unitNumber string) (string, error) {
	dir, err := UnitDirName(unitNumber)
	if err != nil {
		return "", err
	}
	return path.Join(propertyRoot, dir), nil
}

// Contains reports whether key lies strictly below the storage root
func (r Resolver) Contains(key string) bool {
	return strings.HasPrefix(key, r.Root+"/")
}

// IsUnitDir reports whether a directory name under a property root holds
// unit photos
func IsUnitDir(name string) bool {
	return strings.HasPrefix(name, unitDirPrefix)
}

// IsCategoryDir reports whether a directory name is one of the fixed
// category directories
func IsCategoryDir(name string) bool {
	for _, c := range Categories {
		if name == categoryDirPrefix+string(c) {
			return true
		}
	}
	return false
}
