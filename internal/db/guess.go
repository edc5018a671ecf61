package db

import "time"

// GuessSubmission rows are unique per (session, participant, round). The
// index backs the at-most-one-accepted-guess rule when concurrent submits
// race past the in-memory check.
type GuessSubmission struct {
	ID               uint      `gorm:"primaryKey"`
	SessionID        uint      `gorm:"index;not null;uniqueIndex:idx_submissions_session_participant_round"`
	ParticipantID    uint      `gorm:"index;not null;uniqueIndex:idx_submissions_session_participant_round"`
	RoundNumber      int       `gorm:"not null;uniqueIndex:idx_submissions_session_participant_round"`
	YearGuess        int       `gorm:"not null"`
	GuessLat         float64   `gorm:"not null"`
	GuessLng         float64   `gorm:"not null"`
	YearScore        int       `gorm:"not null"`
	LocationScore    int       `gorm:"not null"`
	TimeBonus        int       `gorm:"not null"`
	TotalScore       int       `gorm:"not null"`
	TimeTakenSeconds int       `gorm:"not null"`
	SubmittedAt      time.Time `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}
