package models

import "time"

// Branding holds the site wide theme. There is at most one row
type Branding struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyName    string    `gorm:"size:255;not null;default:'UrbanLiving'" json:"companyName"`
	LogoURL        string    `gorm:"column:logo_url;type:text" json:"logoUrl"`
	PrimaryColor   string    `gorm:"size:20;not null;default:'#2563eb'" json:"primaryColor"`
	SecondaryColor string    `gorm:"size:20;not null;default:'#4f46e5'" json:"secondaryColor"`
	Cities         []string  `gorm:"serializer:json;type:text" json:"cities"`
	Header         string    `gorm:"type:text" json:"header"`
	Subtitle       string    `gorm:"type:text" json:"subtitle"`
	FooterText     string    `gorm:"type:text" json:"footerText"`
	ContactInfo    string    `gorm:"type:text" json:"contactInfo"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name
func (Branding) TableName() string {
	return "branding"
}

// DefaultBranding returns the theme served before an admin saves one
func DefaultBranding() Branding {
	return Branding{
		CompanyName:    "UrbanLiving",
		PrimaryColor:   "#2563eb",
		SecondaryColor: "#4f46e5",
		Cities:         []string{},
		Header:         "Find Your Perfect Home",
		Subtitle:       "Discover modern apartments in the city's best neighborhoods",
	}
}
