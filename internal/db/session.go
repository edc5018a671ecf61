package db

import "time"

type Session struct {
	ID             uint      `gorm:"primaryKey"`
	RoomID         uint      `gorm:"index;not null"`
	UID            string    `gorm:"size:36;uniqueIndex;not null"`
	Status         string    `gorm:"size:32;not null"`
	CurrentRound   int       `gorm:"not null;default:0"`
	TotalRounds    int       `gorm:"not null"`
	CurrentImageID string    `gorm:"size:64"`
	RoundStartedAt time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
	Submissions    []GuessSubmission
}
