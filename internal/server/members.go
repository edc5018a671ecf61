package server

import "strings"

// Membership changes outside the join path: leaving, kicks, and host
// settings updates.

type departure struct {
	removed   Participant
	wasHost   bool
	newHostID int
	wasLast   bool
}

func (s *Server) leaveRoomOp(roomID string, participantID int) (*Room, *departure, error) {
	now := s.now()
	result := &departure{}
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		participant, ok := findParticipant(room, participantID)
		if !ok {
			return ErrParticipantNotFound
		}
		result.removed = *participant
		result.wasHost = room.HostID == participantID

		kept := room.Participants[:0]
		for _, p := range room.Participants {
			if p.ID != participantID {
				kept = append(kept, p)
			}
		}
		room.Participants = kept
		room.LastActiveAt = now

		if len(room.Participants) == 0 {
			result.wasLast = true
			return nil
		}
		if result.wasHost {
			successor, ok := electNextHost(room)
			if !ok {
				// Everyone left behind is stale. The earliest joiner takes
				// the role anyway so the room never goes hostless; the
				// sweeper re-elects if a different participant revives.
				successor, ok = electHost(room, true)
			}
			if ok {
				successor.Role = roleHost
				room.PrevHostID = room.HostID
				room.HostID = successor.ID
				result.newHostID = successor.ID
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return room, result, nil
}

func (s *Server) kickOp(roomID string, hostID, targetID int) (*Room, Participant, error) {
	now := s.now()
	var kicked Participant
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if err := requireHost(room, hostID); err != nil {
			return err
		}
		if room.Status != roomWaiting {
			return ErrIllegalTransition
		}
		if targetID == hostID {
			return ErrIllegalTransition
		}
		target, ok := findParticipant(room, targetID)
		if !ok {
			return ErrParticipantNotFound
		}
		kicked = *target
		room.KickedNames[strings.ToLower(target.Name)] = struct{}{}
		kept := room.Participants[:0]
		for _, p := range room.Participants {
			if p.ID != targetID {
				kept = append(kept, p)
			}
		}
		room.Participants = kept
		room.LastActiveAt = now
		return nil
	})
	if err != nil {
		return nil, Participant{}, err
	}
	return room, kicked, nil
}

func (s *Server) updateSettingsOp(roomID string, hostID int, settings RoomSettings) (*Room, error) {
	now := s.now()
	return s.store.UpdateRoom(roomID, func(room *Room) error {
		if err := requireHost(room, hostID); err != nil {
			return err
		}
		if room.Status != roomWaiting {
			return ErrIllegalTransition
		}
		if settings.MaxPlayers > 0 && settings.MaxPlayers < len(room.Participants) {
			return ErrIllegalTransition
		}
		room.RoundCount = settings.RoundCount
		room.SecondsPerRound = settings.SecondsPerRound
		room.MaxPlayers = settings.MaxPlayers
		room.AllowSpectators = settings.AllowSpectators
		room.LastActiveAt = now
		return nil
	})
}
