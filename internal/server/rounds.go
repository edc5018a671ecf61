package server

import (
	"time"

	"github.com/google/uuid"
)

const sessionWaiting = "waiting"

// requireHost enforces the single-writer rule: only the current host may
// advance round state. A caller whose authority was migrated away gets
// ErrStaleHost so clients can tell a demotion from a plain permission error.
func requireHost(room *Room, participantID int) error {
	if _, ok := findParticipant(room, participantID); !ok {
		return ErrParticipantNotFound
	}
	if room.HostID == participantID {
		return nil
	}
	if room.PrevHostID == participantID {
		return ErrStaleHost
	}
	return ErrNotHost
}

func areAllPlayersReady(room *Room) bool {
	live := 0
	for _, participant := range room.Participants {
		if participant.Status == statusDisconnected {
			continue
		}
		live++
		if participant.Status != statusReady {
			return false
		}
	}
	return live > 0
}

func livePlayerIDs(room *Room) []int {
	ids := make([]int, 0, len(room.Participants))
	for _, participant := range room.Participants {
		if participant.Status != statusDisconnected {
			ids = append(ids, participant.ID)
		}
	}
	return ids
}

func (s *Server) toggleReadyOp(roomID string, participantID int) (*Room, error) {
	now := s.now()
	return s.store.UpdateRoom(roomID, func(room *Room) error {
		if room.Status != roomWaiting {
			return ErrIllegalTransition
		}
		participant, ok := findParticipant(room, participantID)
		if !ok {
			return ErrParticipantNotFound
		}
		participant.LastSeen = now
		switch participant.Status {
		case statusReady:
			participant.Status = statusIdle
		default:
			participant.Status = statusReady
		}
		room.LastActiveAt = now
		return nil
	})
}

// startGameOp creates the session and opens round 1 in a single store
// closure, so a failed guard leaves nothing half-built.
func (s *Server) startGameOp(roomID string, participantID int) (*Room, error) {
	now := s.now()
	return s.store.UpdateRoom(roomID, func(room *Room) error {
		if err := requireHost(room, participantID); err != nil {
			return err
		}
		if room.Status != roomWaiting || room.Session != nil {
			return ErrIllegalTransition
		}
		if !areAllPlayersReady(room) {
			return ErrIllegalTransition
		}
		sequence, err := s.photos.Sequence(room.RoundCount)
		if err != nil {
			return err
		}
		room.ImageSequence = sequence
		room.Session = &Session{
			UID:         uuid.NewString(),
			Status:      sessionWaiting,
			TotalRounds: room.RoundCount,
		}
		if err := startRound(room, 1, now); err != nil {
			room.Session = nil
			room.ImageSequence = nil
			return err
		}
		room.Status = roomPlaying
		room.LastActiveAt = now
		return nil
	})
}

// startRound moves the session into round n. Rounds never rewind and never
// skip: n must be the current round or the one right after it.
func startRound(room *Room, n int, now time.Time) error {
	session := room.Session
	if session == nil {
		return ErrIllegalTransition
	}
	if n < 1 || n > session.TotalRounds {
		return ErrIllegalTransition
	}
	if n != session.CurrentRound && n != session.CurrentRound+1 {
		return ErrIllegalTransition
	}
	if n-1 >= len(room.ImageSequence) {
		return ErrIllegalTransition
	}
	session.CurrentRound = n
	session.CurrentImageID = room.ImageSequence[n-1]
	session.RoundStartedAt = now
	session.Status = sessionRoundActive
	for i := range room.Participants {
		if room.Participants[i].Status == statusDisconnected {
			continue
		}
		room.Participants[i].Status = statusReady
	}
	return nil
}

// endRoundOp closes the active round. participantID <= 0 marks a system
// call (timer expiry or everyone submitted), which skips the host check.
func (s *Server) endRoundOp(roomID string, participantID int) (*Room, error) {
	now := s.now()
	return s.store.UpdateRoom(roomID, func(room *Room) error {
		if participantID > 0 {
			if err := requireHost(room, participantID); err != nil {
				return err
			}
		}
		session := room.Session
		if session == nil || session.Status != sessionRoundActive {
			return ErrIllegalTransition
		}
		session.Status = sessionRoundResults
		room.LastActiveAt = now
		return nil
	})
}

// nextRoundOp either opens the next round or finishes the game. The second
// return value names the event that must be fanned out.
func (s *Server) nextRoundOp(roomID string, participantID int) (*Room, string, error) {
	now := s.now()
	event := ""
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if err := requireHost(room, participantID); err != nil {
			return err
		}
		session := room.Session
		if session == nil || session.Status != sessionRoundResults {
			return ErrIllegalTransition
		}
		if session.CurrentRound == session.TotalRounds {
			session.Status = sessionGameFinished
			room.Status = roomFinished
			event = "game_ended"
		} else {
			if err := startRound(room, session.CurrentRound+1, now); err != nil {
				return err
			}
			event = "round_started"
		}
		room.LastActiveAt = now
		return nil
	})
	return room, event, err
}
