package photos

import (
	"context"
	"time"

	"rental-portal/internal/models"

	"go.uber.org/zap"
)

// MovePropertyPhotos follows a change of a property's city or name so its
// photos stay under the directory derived from the stored row
func (s *Service) MovePropertyPhotos(ctx context.Context, oldCity, oldName, newCity, newName string) error {
	to, err := s.resolver.PropertyRoot(newCity, newName)
	if err != nil {
		return err
	}
	from, err := s.resolver.PropertyRoot(oldCity, oldName)
	if err != nil || from == to {
		// Nothing can be stored under a name without a slug
		return nil
	}
	return s.move(ctx, from, to)
}

// MoveUnitPhotos follows a change of unit number
func (s *Service) MoveUnitPhotos(ctx context.Context, property *models.Property, oldNumber, newNumber string) error {
	root, err := s.resolver.PropertyRoot(property.City, property.Name)
	if err != nil {
		return err
	}
	to, err := s.resolver.UnitDir(root, newNumber)
	if err != nil {
		return err
	}
	from, err := s.resolver.UnitDir(root, oldNumber)
	if err != nil || from == to {
		return nil
	}
	return s.move(ctx, from, to)
}

func (s *Service) move(ctx context.Context, from, to string) (err error) {
	start := time.Now()
	defer func() { s.observer.record("move", start, err) }()

	n, err := s.store.Move(ctx, from, to)
	if err != nil {
		s.log.Error("Failed to move photo directory", zap.String("from", from), zap.String("to", to), zap.Error(err))
		return err
	}
	if n > 0 {
		s.log.Info("Photo directory moved", zap.String("from", from), zap.String("to", to), zap.Int("files", n))
	}
	return nil
}
