package db

import "time"

// Photo holds the ground truth for one catalog image.
type Photo struct {
	ID        uint      `gorm:"primaryKey"`
	ImageID   string    `gorm:"size:64;uniqueIndex;not null"`
	Title     string    `gorm:"size:140;not null"`
	Year      int       `gorm:"not null"`
	Lat       float64   `gorm:"not null"`
	Lng       float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
