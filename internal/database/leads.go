package database

import (
	"context"

	"rental-portal/internal/models"
)

// CreateLead stores a lead submission
func (gdb *GormDB) CreateLead(ctx context.Context, lead *models.LeadSubmission) error {
	return gdb.db.WithContext(ctx).Create(lead).Error
}

// ListLeads returns lead submissions, newest first
func (gdb *GormDB) ListLeads(ctx context.Context) ([]models.LeadSubmission, error) {
	leads := []models.LeadSubmission{}
	err := gdb.db.WithContext(ctx).Order("submitted_at DESC, id DESC").Find(&leads).Error
	return leads, err
}

// SetLeadContacted flags whether the lead has been contacted
func (gdb *GormDB) SetLeadContacted(ctx context.Context, id uint, contacted bool) (*models.LeadSubmission, error) {
	result := gdb.db.WithContext(ctx).Model(&models.LeadSubmission{}).Where("id = ?", id).
		Update("contacted", contacted)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Nothing changed either because the row is missing or because the
		// value was already set
		var count int64
		if err := gdb.db.WithContext(ctx).Model(&models.LeadSubmission{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, models.ErrNotFound
		}
	}
	var lead models.LeadSubmission
	if err := gdb.db.WithContext(ctx).First(&lead, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &lead, nil
}
