package server

import (
	"context"
	"log"
)

// Liveness is heartbeat-based: clients post a heartbeat every
// HeartbeatSeconds, and a participant is stale after missing two of them.
// The sweeper runs on the same clock interval, demotes stale participants,
// migrates the host role when the host goes stale, and tears down rooms
// nobody is left in.

func (s *Server) heartbeatOp(roomID string, participantID int) (*Room, error) {
	now := s.now()
	return s.store.UpdateRoom(roomID, func(room *Room) error {
		participant, ok := findParticipant(room, participantID)
		if !ok {
			return ErrParticipantNotFound
		}
		participant.LastSeen = now
		if participant.Status == statusDisconnected {
			participant.Status = rejoinStatus(room, participant.ID)
		}
		room.LastActiveAt = now
		return nil
	})
}

// RunPresenceSweeper blocks until ctx is cancelled. Callers start it in its
// own goroutine next to the HTTP listener.
func (s *Server) RunPresenceSweeper(ctx context.Context) {
	ticker := s.clock.NewTicker(s.heartbeatInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.SweepPresence()
		}
	}
}

type sweepChange struct {
	staleIDs  []int
	oldHostID int
	newHostID int
	abandoned bool
}

// SweepPresence runs one liveness pass over every room. Exported so tests
// can drive it directly against a fake clock.
func (s *Server) SweepPresence() {
	now := s.now()
	staleAfter := s.staleAfter()
	ttl := s.roomTTL()
	changes := make(map[string]*sweepChange)

	changedRooms := s.store.UpdateEachRoom(func(room *Room) bool {
		change := &sweepChange{}
		for i := range room.Participants {
			participant := &room.Participants[i]
			if participant.Status == statusDisconnected {
				continue
			}
			if now.Sub(participant.LastSeen) > staleAfter {
				participant.Status = statusDisconnected
				change.staleIDs = append(change.staleIDs, participant.ID)
			}
		}
		if host, ok := findParticipant(room, room.HostID); ok && host.Status == statusDisconnected {
			if successor, ok := electNextHost(room); ok {
				change.oldHostID = room.HostID
				change.newHostID = successor.ID
				host.Role = rolePlayer
				successor.Role = roleHost
				room.PrevHostID = room.HostID
				room.HostID = successor.ID
			}
		}
		if countLive(room) == 0 && now.Sub(room.LastActiveAt) > staleAfter {
			change.abandoned = true
		}
		if room.Status != roomFinished && now.Sub(room.LastActiveAt) > ttl {
			change.abandoned = true
		}
		if len(change.staleIDs) == 0 && change.newHostID == 0 && !change.abandoned {
			return false
		}
		changes[room.ID] = change
		return true
	})

	for _, room := range changedRooms {
		change := changes[room.ID]
		if change == nil {
			continue
		}
		for _, id := range change.staleIDs {
			log.Printf("participant disconnected room_id=%s participant_id=%d", room.ID, id)
			s.persistParticipantStatus(room, id, statusDisconnected)
			s.persistEvent(room, "participant_disconnected", EventPayload{ParticipantID: id})
		}
		if change.newHostID != 0 {
			log.Printf("host migrated room_id=%s old_host_id=%d new_host_id=%d", room.ID, change.oldHostID, change.newHostID)
			s.persistHostChange(room, change.oldHostID, change.newHostID)
			s.broadcastRoomEvent(room, "host_changed", EventPayload{
				ParticipantID: change.oldHostID,
				NewHostID:     change.newHostID,
			})
		} else if len(change.staleIDs) > 0 {
			s.broadcastRoomUpdate(room)
		}
		if change.abandoned {
			s.teardownRoom(room.ID, "abandoned")
		}
	}
}

// electNextHost picks the live participant with the earliest join time,
// ties broken by participant ID, so every node agrees on the successor.
func electNextHost(room *Room) (*Participant, bool) {
	return electHost(room, false)
}

// electHost with includeStale set considers disconnected participants too.
// The leave path uses it when nobody live remains, so a seated room always
// keeps exactly one host.
func electHost(room *Room, includeStale bool) (*Participant, bool) {
	var elected *Participant
	for i := range room.Participants {
		candidate := &room.Participants[i]
		if candidate.ID == room.HostID {
			continue
		}
		if !includeStale && candidate.Status == statusDisconnected {
			continue
		}
		if elected == nil {
			elected = candidate
			continue
		}
		if candidate.JoinedAt.Before(elected.JoinedAt) ||
			(candidate.JoinedAt.Equal(elected.JoinedAt) && candidate.ID < elected.ID) {
			elected = candidate
		}
	}
	return elected, elected != nil
}

func countLive(room *Room) int {
	live := 0
	for _, participant := range room.Participants {
		if participant.Status != statusDisconnected {
			live++
		}
	}
	return live
}

// teardownRoom archives and forgets a room. Abandonment is a normal end
// state, not an error.
func (s *Server) teardownRoom(roomID, reason string) {
	room, ok := s.store.RemoveRoom(roomID)
	if !ok {
		return
	}
	s.cancelRoundTimer(roomID)
	room.Status = roomFinished
	s.persistRoomStatus(room)
	s.persistEvent(room, "room_closed", EventPayload{Reason: reason})
	log.Printf("room closed room_id=%s reason=%s", roomID, reason)
	s.ws.CloseRoom(roomID)
	s.broadcastHomeUpdate()
}
