package database

import (
	"context"
	"fmt"

	"rental-portal/internal/models"

	"gorm.io/gorm"
)

// PropertyFilters holds the listing filters of GET /api/properties
type PropertyFilters struct {
	City        string
	IsAvailable *bool
}

const availableUnitExists = "EXISTS (SELECT 1 FROM units WHERE units.property_id = properties.id AND units.is_available = ?)"

// ListProperties returns properties matching filters, newest first. City
// matches case-insensitively; IsAvailable selects properties with (or
// without) at least one available unit
func (gdb *GormDB) ListProperties(ctx context.Context, filters PropertyFilters) ([]models.Property, error) {
	query := gdb.db.WithContext(ctx).Model(&models.Property{})

	if filters.City != "" {
		query = query.Where("LOWER(city) = LOWER(?)", filters.City)
	}
	if filters.IsAvailable != nil {
		if *filters.IsAvailable {
			query = query.Where(availableUnitExists, true)
		} else {
			query = query.Where("NOT "+availableUnitExists, true)
		}
	}

	properties := []models.Property{}
	if err := query.Order("created_at DESC, id DESC").Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

// GetAllProperties returns every property, oldest first
func (gdb *GormDB) GetAllProperties(ctx context.Context) ([]models.Property, error) {
	properties := []models.Property{}
	err := gdb.db.WithContext(ctx).Order("id").Find(&properties).Error
	return properties, err
}

// GetPropertyByID retrieves a property by ID
func (gdb *GormDB) GetPropertyByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	if err := gdb.db.WithContext(ctx).First(&property, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &property, nil
}

// CreateProperty inserts a property
func (gdb *GormDB) CreateProperty(ctx context.Context, p *models.Property) error {
	if p.Images == nil {
		p.Images = []string{}
	}
	return gdb.db.WithContext(ctx).Create(p).Error
}

// UpdateProperty applies column updates and returns the stored row
func (gdb *GormDB) UpdateProperty(ctx context.Context, id uint, updates map[string]interface{}) (*models.Property, error) {
	property, err := gdb.GetPropertyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := gdb.db.WithContext(ctx).Model(property).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update property %d: %w", id, err)
		}
	}
	return gdb.GetPropertyByID(ctx, id)
}

// SetCoordinates stores geocoded coordinates
func (gdb *GormDB) SetCoordinates(ctx context.Context, id uint, latitude, longitude string) error {
	result := gdb.db.WithContext(ctx).Model(&models.Property{}).Where("id = ?", id).
		Updates(map[string]interface{}{"latitude": latitude, "longitude": longitude})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteProperty removes a property and its units in one transaction
// Photo directories are not touched
func (gdb *GormDB) DeleteProperty(ctx context.Context, id uint) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.Unit{}).Error; err != nil {
			return fmt.Errorf("failed to delete units of property %d: %w", id, err)
		}
		result := tx.Delete(&models.Property{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete property %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

// PropertiesMissingCoordinates returns properties without a latitude or
// longitude
func (gdb *GormDB) PropertiesMissingCoordinates(ctx context.Context) ([]models.Property, error) {
	properties := []models.Property{}
	err := gdb.db.WithContext(ctx).
		Where("latitude IS NULL OR latitude = '' OR longitude IS NULL OR longitude = ''").
		Order("id").
		Find(&properties).Error
	return properties, err
}

// SaveProperty writes every column of an existing property
func (gdb *GormDB) SaveProperty(ctx context.Context, p *models.Property) error {
	if p.Images == nil {
		p.Images = []string{}
	}
	if err := gdb.db.WithContext(ctx).Omit("created_at").Save(p).Error; err != nil {
		return fmt.Errorf("failed to save property %d: %w", p.ID, err)
	}
	return nil
}
