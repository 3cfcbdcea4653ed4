package models

import (
	"errors"
	"strconv"
	"time"
)

// ErrNotFound is returned by the persistence layer when a row does not exist
var ErrNotFound = errors.New("record not found")

type Property struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"size:255;not null" json:"name"`
	Address string `gorm:"size:255;not null" json:"address"`
	City    string `gorm:"size:120;not null;index" json:"city"`
	State   string `gorm:"size:64;not null" json:"state"`
	ZipCode string `gorm:"column:zip_code;size:20;not null" json:"zipCode"`

	Bedrooms   int    `gorm:"not null" json:"bedrooms"`
	Bathrooms  string `gorm:"size:20;not null" json:"bathrooms"`
	TotalUnits int    `gorm:"not null" json:"totalUnits"`

	Description  string `gorm:"type:text" json:"description"`
	Neighborhood string `gorm:"size:255" json:"neighborhood"`
	Amenities    string `gorm:"type:text" json:"amenities"`
	PetPolicy    string `gorm:"type:text" json:"petPolicy"`
	FloorPlans   string `gorm:"type:text" json:"floorPlans"`

	Images []string `gorm:"serializer:json;type:text" json:"images"`

	// Coordinates are stored as text with five decimal places
	Latitude  string `gorm:"size:32" json:"latitude"`
	Longitude string `gorm:"size:32" json:"longitude"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

// TableName specifies the table name
func (Property) TableName() string {
	return "properties"
}

// HasCoordinates reports whether both coordinates are set
func (p *Property) HasCoordinates() bool {
	return p.Latitude != "" && p.Longitude != ""
}

// FullAddress joins the address parts the way geocoders expect them
func (p *Property) FullAddress() string {
	return p.Address + ", " + p.City + ", " + p.State + " " + p.ZipCode
}

// IDString returns the id as a decimal string
func (p *Property) IDString() string {
	return strconv.FormatUint(uint64(p.ID), 10)
}
