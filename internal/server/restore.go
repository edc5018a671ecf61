package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"gorm.io/gorm"

	"timepin/internal/db"
)

// restoreRoomFromDB rebuilds a room from its persisted rows after a restart.
// Participants come back as disconnected until they heartbeat or rejoin. A
// session that was mid-round is demoted to round_results: the round clock
// did not survive the restart, so finishing it early beats replaying it with
// a fresh timer against guesses some players already banked.
func (s *Server) restoreRoomFromDB(idOrCode string) (*Room, error) {
	if s.db == nil {
		return nil, ErrRoomNotFound
	}
	code := idOrCode
	if id := roomSortKey(idOrCode); id > 0 {
		var byID db.Room
		if err := s.db.First(&byID, "id = ?", id).Error; err == nil {
			code = byID.Code
		}
	}

	var record db.Room
	err := s.db.Preload("Participants").Preload("Sessions").
		First(&record, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("restore room %s: %w", idOrCode, err)
	}
	if record.Status == roomFinished {
		return nil, ErrRoomNotFound
	}

	room := &Room{
		ID:              fmt.Sprintf("room-%d", record.ID),
		DBID:            record.ID,
		Code:            record.Code,
		Status:          record.Status,
		MaxPlayers:      record.MaxPlayers,
		RoundCount:      record.RoundCount,
		SecondsPerRound: record.SecondsPerRound,
		AllowSpectators: record.AllowSpectators,
		KickedNames:     map[string]struct{}{},
		CreatedAt:       record.CreatedAt,
		LastActiveAt:    s.now(),
	}
	if len(record.ImageSequence) > 0 {
		if err := json.Unmarshal(record.ImageSequence, &room.ImageSequence); err != nil {
			return nil, fmt.Errorf("restore room %s: decode image sequence: %w", idOrCode, err)
		}
	}

	sort.Slice(record.Participants, func(i, j int) bool {
		if record.Participants[i].JoinedAt.Equal(record.Participants[j].JoinedAt) {
			return record.Participants[i].ID < record.Participants[j].ID
		}
		return record.Participants[i].JoinedAt.Before(record.Participants[j].JoinedAt)
	})
	for i, row := range record.Participants {
		participant := Participant{
			ID:          i + 1,
			DBID:        row.ID,
			Name:        row.Name,
			Role:        row.Role,
			Status:      statusDisconnected,
			AvatarColor: row.AvatarColor,
			JoinedAt:    row.JoinedAt,
			LastSeen:    row.LastSeen,
		}
		if row.Role == roleHost {
			room.HostID = participant.ID
		}
		room.Participants = append(room.Participants, participant)
	}
	if room.HostID == 0 && len(room.Participants) > 0 {
		room.Participants[0].Role = roleHost
		room.HostID = room.Participants[0].ID
	}

	demoted := false
	if session := latestSession(record.Sessions); session != nil {
		restored, err := s.restoreSession(room, session)
		if err != nil {
			return nil, err
		}
		room.Session = restored
		demoted = restored.Status != session.Status
	}

	if err := s.store.RestoreRoom(room); err != nil {
		// Lost a race with a concurrent restore; the live copy wins.
		if live, ok := s.store.FindRoomByCode(room.Code); ok {
			return live, nil
		}
		return nil, err
	}
	if demoted {
		if err := s.persistSessionState(room); err != nil {
			log.Printf("restore persist failed room_id=%s error=%v", room.ID, err)
		}
	}
	log.Printf("room restored room_id=%s code=%s participants=%d", room.ID, room.Code, len(room.Participants))
	return room, nil
}

func latestSession(sessions []db.Session) *db.Session {
	var latest *db.Session
	for i := range sessions {
		if latest == nil || sessions[i].CreatedAt.After(latest.CreatedAt) {
			latest = &sessions[i]
		}
	}
	return latest
}

func (s *Server) restoreSession(room *Room, record *db.Session) (*Session, error) {
	session := &Session{
		UID:            record.UID,
		DBID:           record.ID,
		Status:         record.Status,
		CurrentRound:   record.CurrentRound,
		TotalRounds:    record.TotalRounds,
		CurrentImageID: record.CurrentImageID,
		RoundStartedAt: record.RoundStartedAt,
	}
	if session.Status == sessionRoundActive {
		session.Status = sessionRoundResults
	}

	dbidToID := make(map[uint]int, len(room.Participants))
	for _, participant := range room.Participants {
		dbidToID[participant.DBID] = participant.ID
	}
	var rows []db.GuessSubmission
	if err := s.db.Where("session_id = ?", record.ID).
		Order("round_number asc, submitted_at asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("restore session %s: %w", record.UID, err)
	}
	for _, row := range rows {
		participantID, ok := dbidToID[row.ParticipantID]
		if !ok {
			continue
		}
		session.Submissions = append(session.Submissions, GuessSubmission{
			DBID:             row.ID,
			ParticipantID:    participantID,
			RoundNumber:      row.RoundNumber,
			YearGuess:        row.YearGuess,
			GuessLat:         row.GuessLat,
			GuessLng:         row.GuessLng,
			YearScore:        row.YearScore,
			LocationScore:    row.LocationScore,
			TimeBonus:        row.TimeBonus,
			TotalScore:       row.TotalScore,
			TimeTakenSeconds: row.TimeTakenSeconds,
			SubmittedAt:      row.SubmittedAt,
		})
	}
	return session, nil
}
