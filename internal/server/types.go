package server

import "time"

const (
	roomWaiting  = "waiting"
	roomPlaying  = "playing"
	roomFinished = "finished"
)

const (
	sessionRoundActive  = "round_active"
	sessionRoundResults = "round_results"
	sessionGameFinished = "game_finished"
)

const (
	roleHost   = "host"
	rolePlayer = "player"
)

const (
	// statusIdle is the lobby default before a participant readies up; the
	// remaining statuses track the in-game lifecycle.
	statusIdle         = "idle"
	statusReady        = "ready"
	statusSubmitted    = "submitted"
	statusDisconnected = "disconnected"
)

type RoomSummary struct {
	ID           string
	Code         string
	Status       string
	Participants int
}

type Room struct {
	ID              string
	DBID            uint
	Code            string
	Status          string
	HostID          int
	PrevHostID      int
	MaxPlayers      int
	RoundCount      int
	SecondsPerRound int
	AllowSpectators bool
	ImageSequence   []string
	KickedNames     map[string]struct{}
	Participants    []Participant
	Spectators      []Spectator
	Session         *Session
	CreatedAt       time.Time
	LastActiveAt    time.Time
}

type Participant struct {
	ID          int
	DBID        uint
	Name        string
	Role        string
	Status      string
	AvatarColor string
	JoinedAt    time.Time
	LastSeen    time.Time
}

type Spectator struct {
	ID       int
	Name     string
	JoinedAt time.Time
}

type Session struct {
	UID            string
	DBID           uint
	Status         string
	CurrentRound   int
	TotalRounds    int
	CurrentImageID string
	RoundStartedAt time.Time
	Submissions    []GuessSubmission
}

type GuessSubmission struct {
	DBID             uint
	ParticipantID    int
	RoundNumber      int
	YearGuess        int
	GuessLat         float64
	GuessLng         float64
	YearScore        int
	LocationScore    int
	TimeBonus        int
	TotalScore       int
	TimeTakenSeconds int
	SubmittedAt      time.Time
}

// LeaderboardEntry is derived from the ledger, never stored.
type LeaderboardEntry struct {
	ParticipantID int
	Name          string
	AvatarColor   string
	TotalPoints   int
	RoundsPlayed  int
}
