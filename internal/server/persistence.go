package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"timepin/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// The in-memory store is authoritative for live rooms; Postgres mirrors it
// so rooms survive a restart and the submission ledger has a durable unique
// key. Every writer here is a no-op without a database, which is how the
// tests run.

func (s *Server) persistRoom(room *Room) error {
	if s.db == nil {
		return nil
	}
	record := db.Room{
		Code:            room.Code,
		Status:          room.Status,
		RoundCount:      room.RoundCount,
		SecondsPerRound: room.SecondsPerRound,
		MaxPlayers:      room.MaxPlayers,
		AllowSpectators: room.AllowSpectators,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	room.DBID = record.ID
	newID := fmt.Sprintf("room-%d", record.ID)
	if room.ID != newID {
		s.store.UpdateRoomID(room, newID)
	}
	return s.persistEvent(room, "room_created", EventPayload{
		RoomID: room.ID,
		Code:   room.Code,
	})
}

func (s *Server) ensureRoomDBID(room *Room) error {
	if s.db == nil || room.DBID != 0 {
		return nil
	}
	var record db.Room
	if err := s.db.Where("code = ?", room.Code).First(&record).Error; err != nil {
		return err
	}
	room.DBID = record.ID
	return nil
}

func (s *Server) persistParticipant(room *Room, participant *Participant) error {
	if s.db == nil {
		return nil
	}
	if participant.DBID != 0 {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil {
		return err
	}
	if room.DBID == 0 {
		return ErrRoomNotFound
	}
	record := db.Participant{
		RoomID:      room.DBID,
		Name:        participant.Name,
		Role:        participant.Role,
		Status:      participant.Status,
		AvatarColor: participant.AvatarColor,
		JoinedAt:    participant.JoinedAt,
		LastSeen:    participant.LastSeen,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			existing, lookupErr := s.findParticipantDBID(room.DBID, participant.Name)
			if lookupErr == nil && existing != 0 {
				participant.DBID = existing
				return nil
			}
		}
		return err
	}
	participant.DBID = record.ID
	return s.persistEvent(room, "participant_joined", EventPayload{
		ParticipantID:   participant.ID,
		ParticipantName: participant.Name,
	})
}

func (s *Server) findParticipantDBID(roomDBID uint, name string) (uint, error) {
	var record db.Participant
	if err := s.db.Where("room_id = ? AND name = ?", roomDBID, name).First(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

func (s *Server) persistParticipantStatus(room *Room, participantID int, status string) {
	if s.db == nil {
		return
	}
	participant, ok := findParticipant(room, participantID)
	if !ok || participant.DBID == 0 {
		return
	}
	_ = s.db.Model(&db.Participant{}).
		Where("id = ?", participant.DBID).
		Updates(map[string]any{"status": status, "last_seen": participant.LastSeen}).Error
}

func (s *Server) persistHostChange(room *Room, oldHostID, newHostID int) {
	if s.db != nil {
		if old, ok := findParticipant(room, oldHostID); ok && old.DBID != 0 {
			_ = s.db.Model(&db.Participant{}).Where("id = ?", old.DBID).
				Updates(map[string]any{"role": rolePlayer, "status": statusDisconnected}).Error
		}
		if next, ok := findParticipant(room, newHostID); ok && next.DBID != 0 {
			_ = s.db.Model(&db.Participant{}).Where("id = ?", next.DBID).
				Update("role", roleHost).Error
		}
	}
	_ = s.persistEvent(room, "host_changed", EventPayload{
		ParticipantID: oldHostID,
		NewHostID:     newHostID,
	})
}

func (s *Server) persistParticipantRemoval(room *Room, dbid uint) {
	if s.db == nil || dbid == 0 {
		return
	}
	_ = s.db.Delete(&db.Participant{}, dbid).Error
}

func (s *Server) persistRoomStatus(room *Room) {
	if s.db == nil {
		return
	}
	if err := s.ensureRoomDBID(room); err != nil || room.DBID == 0 {
		return
	}
	_ = s.db.Model(&db.Room{}).Where("id = ?", room.DBID).Update("status", room.Status).Error
}

func (s *Server) persistSettings(room *Room) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil {
		return err
	}
	if room.DBID == 0 {
		return ErrRoomNotFound
	}
	updates := map[string]any{
		"round_count":       room.RoundCount,
		"seconds_per_round": room.SecondsPerRound,
		"max_players":       room.MaxPlayers,
		"allow_spectators":  room.AllowSpectators,
	}
	if err := s.db.Model(&db.Room{}).Where("id = ?", room.DBID).Updates(updates).Error; err != nil {
		return err
	}
	return s.persistEvent(room, "settings_updated", EventPayload{
		RoundCount:      room.RoundCount,
		SecondsPerRound: room.SecondsPerRound,
		MaxPlayers:      room.MaxPlayers,
	})
}

// persistSession writes the freshly created session and the room's image
// sequence in one pass.
func (s *Server) persistSession(room *Room) error {
	if s.db == nil || room.Session == nil {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil {
		return err
	}
	if room.DBID == 0 {
		return ErrRoomNotFound
	}
	session := room.Session
	record := db.Session{
		RoomID:         room.DBID,
		UID:            session.UID,
		Status:         session.Status,
		CurrentRound:   session.CurrentRound,
		TotalRounds:    session.TotalRounds,
		CurrentImageID: session.CurrentImageID,
		RoundStartedAt: session.RoundStartedAt,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	session.DBID = record.ID

	sequence, err := json.Marshal(room.ImageSequence)
	if err != nil {
		return err
	}
	updates := map[string]any{
		"status":         room.Status,
		"image_sequence": datatypes.JSON(sequence),
	}
	return s.db.Model(&db.Room{}).Where("id = ?", room.DBID).Updates(updates).Error
}

func (s *Server) persistSessionState(room *Room) error {
	if s.db == nil || room.Session == nil || room.Session.DBID == 0 {
		return nil
	}
	session := room.Session
	updates := map[string]any{
		"status":           session.Status,
		"current_round":    session.CurrentRound,
		"current_image_id": session.CurrentImageID,
		"round_started_at": session.RoundStartedAt,
	}
	if err := s.db.Model(&db.Session{}).Where("id = ?", session.DBID).Updates(updates).Error; err != nil {
		return err
	}
	if room.Status == roomFinished {
		s.persistRoomStatus(room)
	}
	return nil
}

// persistSubmission mirrors an accepted guess. A unique violation means the
// durable ledger already has this key (possible after a restore race) and
// surfaces as ErrDuplicateSubmission so the caller can roll back.
func (s *Server) persistSubmission(room *Room, submission *GuessSubmission) error {
	if s.db == nil || room.Session == nil {
		return nil
	}
	session := room.Session
	if session.DBID == 0 {
		return nil
	}
	participant, ok := findParticipant(room, submission.ParticipantID)
	if !ok {
		return ErrParticipantNotFound
	}
	record := db.GuessSubmission{
		SessionID:        session.DBID,
		ParticipantID:    participant.DBID,
		RoundNumber:      submission.RoundNumber,
		YearGuess:        submission.YearGuess,
		GuessLat:         submission.GuessLat,
		GuessLng:         submission.GuessLng,
		YearScore:        submission.YearScore,
		LocationScore:    submission.LocationScore,
		TimeBonus:        submission.TimeBonus,
		TotalScore:       submission.TotalScore,
		TimeTakenSeconds: submission.TimeTakenSeconds,
		SubmittedAt:      submission.SubmittedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSubmission
		}
		return err
	}
	submission.DBID = record.ID
	return nil
}

func (s *Server) persistEvent(room *Room, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureRoomDBID(room); err != nil || room.DBID == 0 {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := db.Event{
		RoomID:  room.DBID,
		Type:    eventType,
		Payload: datatypes.JSON(body),
	}
	if room.Session != nil && room.Session.DBID != 0 {
		sessionID := room.Session.DBID
		record.SessionID = &sessionID
	}
	if payload.ParticipantID != 0 {
		if participant, ok := findParticipant(room, payload.ParticipantID); ok && participant.DBID != 0 {
			participantID := participant.DBID
			record.ParticipantID = &participantID
		}
	}
	return s.db.Create(&record).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
