package database

import (
	"context"
	"fmt"

	"rental-portal/internal/models"
)

// ListUnits returns all units, or those of one property when propertyID
// is set
func (gdb *GormDB) ListUnits(ctx context.Context, propertyID *uint) ([]models.Unit, error) {
	query := gdb.db.WithContext(ctx).Order("id")
	if propertyID != nil {
		query = query.Where("property_id = ?", *propertyID)
	}
	units := []models.Unit{}
	if err := query.Find(&units).Error; err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

// GetUnits returns the units of a property
func (gdb *GormDB) GetUnits(ctx context.Context, propertyID uint) ([]models.Unit, error) {
	return gdb.ListUnits(ctx, &propertyID)
}

// GetUnitByID retrieves a unit by ID
func (gdb *GormDB) GetUnitByID(ctx context.Context, id uint) (*models.Unit, error) {
	var unit models.Unit
	if err := gdb.db.WithContext(ctx).First(&unit, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &unit, nil
}

// CreateUnit inserts a unit
func (gdb *GormDB) CreateUnit(ctx context.Context, u *models.Unit) error {
	if u.Images == nil {
		u.Images = []string{}
	}
	return gdb.db.WithContext(ctx).Create(u).Error
}

// UpdateUnit applies column updates and returns the stored row
func (gdb *GormDB) UpdateUnit(ctx context.Context, id uint, updates map[string]interface{}) (*models.Unit, error) {
	unit, err := gdb.GetUnitByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := gdb.db.WithContext(ctx).Model(unit).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update unit %d: %w", id, err)
		}
	}
	return gdb.GetUnitByID(ctx, id)
}

// DeleteUnit removes a unit
func (gdb *GormDB) DeleteUnit(ctx context.Context, id uint) error {
	result := gdb.db.WithContext(ctx).Delete(&models.Unit{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SaveUnit writes every column of an existing unit
func (gdb *GormDB) SaveUnit(ctx context.Context, u *models.Unit) error {
	if u.Images == nil {
		u.Images = []string{}
	}
	if err := gdb.db.WithContext(ctx).Save(u).Error; err != nil {
		return fmt.Errorf("failed to save unit %d: %w", u.ID, err)
	}
	return nil
}
