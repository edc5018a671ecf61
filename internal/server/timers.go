package server

import (
	"log"
	"time"
)

// The per-round countdown is advisory: it drives the UI and forces
// round_results when time runs out, but holds no lock and never blocks a
// host-driven transition.

func (s *Server) scheduleRoundTimer(room *Room) {
	if room.SecondsPerRound <= 0 {
		s.cancelRoundTimer(room.ID)
		return
	}
	session := room.Session
	if session == nil || session.Status != sessionRoundActive {
		return
	}
	roundNumber := session.CurrentRound
	duration := time.Duration(room.SecondsPerRound) * time.Second

	s.timersMu.Lock()
	if existing, ok := s.timers[room.ID]; ok {
		existing.Stop()
	}
	s.timers[room.ID] = s.clock.AfterFunc(duration, func() {
		s.autoEndRound(room.ID, roundNumber)
	})
	s.timersMu.Unlock()
}

func (s *Server) cancelRoundTimer(roomID string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[roomID]; ok {
		timer.Stop()
		delete(s.timers, roomID)
	}
}

// autoEndRound fires on timer expiry. The round guard makes a stale timer a
// no-op when the host already advanced.
func (s *Server) autoEndRound(roomID string, roundNumber int) {
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		session := room.Session
		if session == nil || session.Status != sessionRoundActive || session.CurrentRound != roundNumber {
			return ErrIllegalTransition
		}
		session.Status = sessionRoundResults
		return nil
	})
	if err != nil {
		return
	}
	log.Printf("round auto-ended room_id=%s round=%d reason=timeout", roomID, roundNumber)
	s.finishRound(room, "timeout")
}

// maybeEndRound closes the round early once every live player has
// submitted.
func (s *Server) maybeEndRound(roomID string) {
	ended := false
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if !roundComplete(room) {
			return nil
		}
		room.Session.Status = sessionRoundResults
		ended = true
		return nil
	})
	if err != nil || !ended {
		return
	}
	log.Printf("round ended room_id=%s round=%d reason=all_submitted", roomID, room.Session.CurrentRound)
	s.finishRound(room, "all_submitted")
}

// finishRound is the shared tail of every path into round_results.
func (s *Server) finishRound(room *Room, reason string) {
	s.cancelRoundTimer(room.ID)
	round := 0
	if room.Session != nil {
		round = room.Session.CurrentRound
	}
	if err := s.persistSessionState(room); err != nil {
		log.Printf("round end persist failed room_id=%s error=%v", room.ID, err)
	}
	s.persistEvent(room, "round_ended", EventPayload{RoundNumber: round, Reason: reason})
	s.broadcastRoomEvent(room, "round_ended", EventPayload{RoundNumber: round, Reason: reason})
}
