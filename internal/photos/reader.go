package photos

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Taxonomy lists a property's photo URLs by category and by unit id
type Taxonomy struct {
	Exterior  []string            `json:"exterior"`
	Interior  []string            `json:"interior"`
	Amenities []string            `json:"amenities"`
	Units     map[string][]string `json:"units"`
}

// Category returns the list for c
func (t *Taxonomy) Category(c Category) []string {
	switch c {
	case CategoryExterior:
		return t.Exterior
	case CategoryInterior:
		return t.Interior
	case CategoryAmenities:
		return t.Amenities
	}
	return nil
}

func (t *Taxonomy) set(c Category, urls []string) {
	switch c {
	case CategoryExterior:
		t.Exterior = urls
	case CategoryInterior:
		t.Interior = urls
	case CategoryAmenities:
		t.Amenities = urls
	}
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// IsImageFile reports whether name has an extension served as a photo
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}

// Taxonomy rebuilds the photo listing of a property from storage. Every
// category and every current unit is present; missing directories give
// empty lists
func (s *Service) Taxonomy(ctx context.Context, propertyID uint) (taxonomy *Taxonomy, err error) {
	start := time.Now()
	defer func() { s.observer.record("read", start, err) }()

	property, err := s.lookupProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	root, err := s.resolver.PropertyRoot(property.City, property.Name)
	if err != nil {
		return nil, err
	}

	taxonomy = &Taxonomy{Units: map[string][]string{}}
	for _, c := range Categories {
		urls, err := s.listURLs(ctx, s.resolver.CategoryDir(root, c))
		if err != nil {
			return nil, err
		}
		taxonomy.set(c, urls)
	}

	units, err := s.catalog.GetUnits(ctx, property.ID)
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	for _, unit := range units {
		dir, err := s.resolver.UnitDir(root, unit.UnitNumber)
		if err != nil {
			s.log.Warn("Unit number has no usable slug",
				zap.Uint("unit_id", unit.ID),
				zap.String("unit_number", unit.UnitNumber))
			taxonomy.Units[unit.IDString()] = []string{}
			continue
		}
		urls, err := s.listURLs(ctx, dir)
		if err != nil {
			return nil, err
		}
		taxonomy.Units[unit.IDString()] = urls
	}
	return taxonomy, nil
}

func (s *Service) listURLs(ctx context.Context, dir string) ([]string, error) {
	names, err := s.store.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path.Base(dir), err)
	}
	urls := make([]string, 0, len(names))
	for _, name := range names {
		if IsImageFile(name) {
			urls = append(urls, s.URL(path.Join(dir, name)))
		}
	}
	return urls, nil
}
