package server

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RoomSettings are the host-tunable knobs captured at room creation.
type RoomSettings struct {
	RoundCount      int
	SecondsPerRound int
	MaxPlayers      int
	AllowSpectators bool
}

// Store is the authoritative in-memory registry of live rooms. Every
// mutation runs under one mutex; cross-record invariants (unique codes,
// unique colors, one host) hold because writers are serialized here.
type Store struct {
	mu                sync.Mutex
	nextID            int
	nextParticipantID int
	nextSpectatorID   int
	rooms             map[string]*Room
}

func NewStore() *Store {
	return &Store{
		nextID:            1,
		nextParticipantID: 1,
		nextSpectatorID:   1,
		rooms:             make(map[string]*Room),
	}
}

func (s *Store) CreateRoom(settings RoomSettings, now time.Time) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("room-%d", s.nextID)
	s.nextID++
	room := &Room{
		ID:              id,
		Code:            s.uniqueCodeLocked(),
		Status:          roomWaiting,
		RoundCount:      settings.RoundCount,
		SecondsPerRound: settings.SecondsPerRound,
		MaxPlayers:      settings.MaxPlayers,
		AllowSpectators: settings.AllowSpectators,
		KickedNames:     make(map[string]struct{}),
		CreatedAt:       now,
		LastActiveAt:    now,
	}
	s.rooms[id] = room
	return room
}

func (s *Store) uniqueCodeLocked() string {
	for {
		code := newRoomCode()
		taken := false
		for _, room := range s.rooms {
			if strings.EqualFold(room.Code, code) {
				taken = true
				break
			}
		}
		if !taken {
			return code
		}
	}
}

func (s *Store) GetRoom(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	return room, ok
}

// FindRoomByCode matches codes case-insensitively.
func (s *Store) FindRoomByCode(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		if strings.EqualFold(room.Code, code) {
			return room, true
		}
	}
	return nil, false
}

func (s *Store) UpdateRoom(id string, update func(room *Room) error) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if err := update(room); err != nil {
		return nil, err
	}
	return room, nil
}

// UpdateEachRoom applies fn to every live room under the store lock. The
// presence sweeper uses it; fn returning true marks the room changed.
func (s *Store) UpdateEachRoom(fn func(room *Room) bool) []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := make([]*Room, 0)
	for _, room := range s.rooms {
		if fn(room) {
			changed = append(changed, room)
		}
	}
	return changed
}

func (s *Store) UpdateRoomID(room *Room, newID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room.ID == newID {
		return
	}
	delete(s.rooms, room.ID)
	room.ID = newID
	s.rooms[newID] = room
}

func (s *Store) RemoveRoom(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, false
	}
	delete(s.rooms, id)
	return room, true
}

// AddParticipant joins a room by ID or code. A name already present in the
// room reclaims that seat (reconnect); new seats are only handed out while
// the room is waiting and below capacity.
func (s *Store) AddParticipant(roomIDOrCode, name string, now time.Time) (*Room, *Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.lookupLocked(roomIDOrCode)
	if !ok {
		return nil, nil, ErrRoomNotFound
	}

	for i := range room.Participants {
		if strings.EqualFold(room.Participants[i].Name, name) {
			participant := &room.Participants[i]
			participant.LastSeen = now
			if participant.Status == statusDisconnected {
				participant.Status = rejoinStatus(room, participant.ID)
			}
			room.LastActiveAt = now
			return room, participant, nil
		}
	}
	if room.Status == roomFinished {
		return nil, nil, ErrRoomNotFound
	}
	if room.Status != roomWaiting {
		return nil, nil, ErrIllegalTransition
	}
	if room.MaxPlayers > 0 && len(room.Participants) >= room.MaxPlayers {
		return nil, nil, ErrRoomFull
	}
	if _, kicked := room.KickedNames[strings.ToLower(name)]; kicked {
		return nil, nil, ErrKickedFromRoom
	}

	participant := Participant{
		ID:          s.nextParticipantID,
		Name:        name,
		Role:        rolePlayer,
		Status:      statusIdle,
		AvatarColor: pickAvatarColor(usedColors(room)),
		JoinedAt:    now,
		LastSeen:    now,
	}
	s.nextParticipantID++
	if len(room.Participants) == 0 {
		participant.Role = roleHost
		room.HostID = participant.ID
	}
	room.Participants = append(room.Participants, participant)
	room.LastActiveAt = now
	return room, &room.Participants[len(room.Participants)-1], nil
}

func (s *Store) AddSpectator(roomIDOrCode, name string, now time.Time) (*Room, *Spectator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.lookupLocked(roomIDOrCode)
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	if !room.AllowSpectators {
		return nil, nil, ErrRoomFull
	}
	spectator := Spectator{
		ID:       s.nextSpectatorID,
		Name:     name,
		JoinedAt: now,
	}
	s.nextSpectatorID++
	room.Spectators = append(room.Spectators, spectator)
	room.LastActiveAt = now
	return room, &room.Spectators[len(room.Spectators)-1], nil
}

func (s *Store) lookupLocked(idOrCode string) (*Room, bool) {
	if room, ok := s.rooms[idOrCode]; ok {
		return room, true
	}
	for _, room := range s.rooms {
		if strings.EqualFold(room.Code, idOrCode) {
			return room, true
		}
	}
	return nil, false
}

// RestoreRoom re-registers a room rebuilt from the database, refusing
// collisions with anything already live.
func (s *Store) RestoreRoom(room *Room) error {
	if room == nil {
		return ErrRoomNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; ok {
		return ErrIllegalTransition
	}
	for _, existing := range s.rooms {
		if strings.EqualFold(existing.Code, room.Code) {
			return ErrIllegalTransition
		}
	}
	s.rooms[room.ID] = room
	if id := roomSortKey(room.ID); id >= s.nextID {
		s.nextID = id + 1
	}
	maxParticipantID := 0
	for _, participant := range room.Participants {
		if participant.ID > maxParticipantID {
			maxParticipantID = participant.ID
		}
	}
	if maxParticipantID >= s.nextParticipantID {
		s.nextParticipantID = maxParticipantID + 1
	}
	return nil
}

func (s *Store) ListRoomSummaries() []RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]RoomSummary, 0, len(s.rooms))
	for _, room := range s.rooms {
		list = append(list, RoomSummary{
			ID:           room.ID,
			Code:         room.Code,
			Status:       room.Status,
			Participants: len(room.Participants),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return roomSortKey(list[i].ID) < roomSortKey(list[j].ID)
	})
	return list
}

func roomSortKey(id string) int {
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return 0
	}
	value, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return value
}

func (s *Store) GetParticipant(roomID string, participantID int) (*Room, *Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, nil, false
	}
	for i := range room.Participants {
		if room.Participants[i].ID == participantID {
			return room, &room.Participants[i], true
		}
	}
	return room, nil, false
}

func findParticipant(room *Room, participantID int) (*Participant, bool) {
	for i := range room.Participants {
		if room.Participants[i].ID == participantID {
			return &room.Participants[i], true
		}
	}
	return nil, false
}

// rejoinStatus picks the right live status for a seat coming back: mid-round
// reconnects land on submitted when a guess is already banked.
func rejoinStatus(room *Room, participantID int) string {
	session := room.Session
	if session == nil {
		return statusIdle
	}
	switch session.Status {
	case sessionRoundActive, sessionRoundResults:
		if hasSubmission(session, participantID, session.CurrentRound) {
			return statusSubmitted
		}
		return statusReady
	default:
		return statusIdle
	}
}

// usedColors counts every seated participant's color as taken, disconnected
// seats included, so a reviving participant never collides with a joiner who
// arrived while they were stale.
func usedColors(room *Room) map[string]struct{} {
	used := make(map[string]struct{}, len(room.Participants))
	for _, participant := range room.Participants {
		used[participant.AvatarColor] = struct{}{}
	}
	return used
}
