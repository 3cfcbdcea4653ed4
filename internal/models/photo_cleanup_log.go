package models

import "time"

// PhotoCleanupLog records a photo directory removed by the orphan sweep
type PhotoCleanupLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Directory string    `gorm:"size:500;not null;index" json:"directory"`
	FileCount int       `gorm:"not null" json:"fileCount"`
	Reason    string    `gorm:"size:50;not null" json:"reason"`
	DeletedAt time.Time `gorm:"not null;autoCreateTime;index" json:"deletedAt"`
}

// TableName specifies the table name
func (PhotoCleanupLog) TableName() string {
	return "photo_cleanup_logs"
}

// Cleanup reason constants
const (
	CleanupReasonOrphanProperty = "orphan_property"
	CleanupReasonOrphanUnit     = "orphan_unit"
)
