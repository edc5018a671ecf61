package db

import "time"

type Participant struct {
	ID          uint      `gorm:"primaryKey"`
	RoomID      uint      `gorm:"index;not null;uniqueIndex:idx_participants_room_name"`
	Name        string    `gorm:"size:64;not null;uniqueIndex:idx_participants_room_name"`
	Role        string    `gorm:"size:16;not null"`
	Status      string    `gorm:"size:16;not null"`
	AvatarColor string    `gorm:"size:16;not null"`
	JoinedAt    time.Time `gorm:"not null"`
	LastSeen    time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	Submissions []GuessSubmission
}
