package server

// EventPayload is the JSON body persisted to the events table and carried
// on fan-out frames. Fields are omitted when empty so each event type only
// shows what it touched.
type EventPayload struct {
	RoomID          string `json:"room_id,omitempty"`
	Code            string `json:"code,omitempty"`
	ParticipantID   int    `json:"participant_id,omitempty"`
	ParticipantName string `json:"participant,omitempty"`
	NewHostID       int    `json:"new_host_id,omitempty"`
	RoundNumber     int    `json:"round_number,omitempty"`
	ImageID         string `json:"image_id,omitempty"`
	Status          string `json:"status,omitempty"`
	Reason          string `json:"reason,omitempty"`
	TotalScore      int    `json:"total_score,omitempty"`
	RoundCount      int    `json:"round_count,omitempty"`
	SecondsPerRound int    `json:"seconds_per_round,omitempty"`
	MaxPlayers      int    `json:"max_players,omitempty"`
}
