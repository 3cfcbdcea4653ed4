package models

import (
	"strconv"
	"time"
)

type Unit struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID    uint       `gorm:"not null;index" json:"propertyId"`
	UnitNumber    string     `gorm:"size:50;not null" json:"unitNumber"`
	Bedrooms      int        `gorm:"not null" json:"bedrooms"`
	Bathrooms     string     `gorm:"size:20;not null" json:"bathrooms"`
	IsAvailable   bool       `gorm:"not null;default:false;index" json:"isAvailable"`
	AvailableDate *time.Time `json:"availableDate"`
	// Rent in cents
	Rent   *int     `json:"rent"`
	Images []string `gorm:"serializer:json;type:text" json:"images"`
}

// TableName specifies the table name
func (Unit) TableName() string {
	return "units"
}

// IDString returns the id as a decimal string, the key used in photo listings
func (u *Unit) IDString() string {
	return strconv.FormatUint(uint64(u.ID), 10)
}
