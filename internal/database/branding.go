package database

import (
	"context"
	"errors"

	"rental-portal/internal/models"

	"gorm.io/gorm"
)

// GetBranding returns the stored theme or the default one
func (gdb *GormDB) GetBranding(ctx context.Context) (*models.Branding, error) {
	var branding models.Branding
	err := gdb.db.WithContext(ctx).Order("id").First(&branding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		def := models.DefaultBranding()
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	if branding.Cities == nil {
		branding.Cities = []string{}
	}
	return &branding, nil
}

// UpsertBranding replaces the theme, creating the row on first save
func (gdb *GormDB) UpsertBranding(ctx context.Context, b *models.Branding) (*models.Branding, error) {
	if b.Cities == nil {
		b.Cities = []string{}
	}
	err := gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Branding
		err := tx.Order("id").First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.ID = 0
			return tx.Create(b).Error
		}
		if err != nil {
			return err
		}
		b.ID = existing.ID
		return tx.Save(b).Error
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}
