package db

import (
	"time"

	"gorm.io/datatypes"
)

type Room struct {
	ID              uint           `gorm:"primaryKey"`
	Code            string         `gorm:"size:12;uniqueIndex;not null"`
	Status          string         `gorm:"size:32;not null"`
	RoundCount      int            `gorm:"not null;default:5"`
	SecondsPerRound int            `gorm:"not null;default:60"`
	MaxPlayers      int            `gorm:"not null;default:8"`
	AllowSpectators bool           `gorm:"not null;default:true"`
	ImageSequence   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"not null"`
	UpdatedAt       time.Time      `gorm:"not null"`
	Participants    []Participant
	Sessions        []Session
	Events          []Event
}
