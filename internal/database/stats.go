package database

import (
	"context"
	"time"

	"rental-portal/internal/models"
)

// Stats are the admin dashboard counters
type Stats struct {
	Properties       int64            `json:"properties"`
	Units            int64            `json:"units"`
	AvailableUnits   int64            `json:"availableUnits"`
	Leads            int64            `json:"leads"`
	UncontactedLeads int64            `json:"uncontactedLeads"`
	LeadsLast7Days   int64            `json:"leadsLast7Days"`
	PropertiesByCity map[string]int64 `json:"propertiesByCity"`
	MissingGeocodes  int64            `json:"missingGeocodes"`
}

// Stats collects dashboard counters
func (gdb *GormDB) Stats(ctx context.Context) (*Stats, error) {
	db := gdb.db.WithContext(ctx)
	stats := &Stats{PropertiesByCity: map[string]int64{}}

	if err := db.Model(&models.Property{}).Count(&stats.Properties).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Unit{}).Count(&stats.Units).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Unit{}).Where("is_available = ?", true).Count(&stats.AvailableUnits).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.LeadSubmission{}).Count(&stats.Leads).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.LeadSubmission{}).Where("contacted = ?", false).Count(&stats.UncontactedLeads).Error; err != nil {
		return nil, err
	}
	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := db.Model(&models.LeadSubmission{}).Where("submitted_at >= ?", weekAgo).Count(&stats.LeadsLast7Days).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Property{}).
		Where("latitude IS NULL OR latitude = '' OR longitude IS NULL OR longitude = ''").
		Count(&stats.MissingGeocodes).Error; err != nil {
		return nil, err
	}

	var cityCounts []struct {
		City  string
		Count int64
	}
	if err := db.Model(&models.Property{}).
		Select("city, count(*) as count").
		Group("city").
		Scan(&cityCounts).Error; err != nil {
		return nil, err
	}
	for _, cc := range cityCounts {
		stats.PropertiesByCity[cc.City] = cc.Count
	}
	return stats, nil
}
