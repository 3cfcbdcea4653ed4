package models

import "time"

// LeadSubmission is a prospective tenant contact request
type LeadSubmission struct {
	ID              uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string     `gorm:"size:255;not null" json:"name"`
	Email           string     `gorm:"size:255;not null" json:"email"`
	Phone           string     `gorm:"size:50" json:"phone"`
	MoveInDate      *time.Time `json:"moveInDate"`
	DesiredBedrooms string     `gorm:"size:20" json:"desiredBedrooms"`
	AdditionalInfo  string     `gorm:"type:text" json:"additionalInfo"`
	Contacted       bool       `gorm:"not null;default:false;index" json:"contacted"`
	SubmittedAt     time.Time  `gorm:"autoCreateTime;index" json:"submittedAt"`
}

// TableName specifies the table name
func (LeadSubmission) TableName() string {
	return "lead_submissions"
}
