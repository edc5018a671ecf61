package server

import (
	"errors"
	"io"
	"log"
	"net/http"

	"timepin/internal/db"
)

type createRoomRequest struct {
	Rounds          int   `json:"rounds"`
	SecondsPerRound *int  `json:"seconds_per_round"`
	MaxPlayers      int   `json:"max_players"`
	AllowSpectators *bool `json:"allow_spectators"`
}

type joinRequest struct {
	Name string `json:"name"`
}

type actorRequest struct {
	ParticipantID int `json:"participant_id"`
}

type guessRequest struct {
	ParticipantID int     `json:"participant_id"`
	RoundNumber   int     `json:"round_number"`
	Year          int     `json:"year"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
}

type settingsRequest struct {
	ParticipantID   int   `json:"participant_id"`
	Rounds          int   `json:"rounds"`
	SecondsPerRound *int  `json:"seconds_per_round"`
	MaxPlayers      int   `json:"max_players"`
	AllowSpectators *bool `json:"allow_spectators"`
}

type kickRequest struct {
	ParticipantID int `json:"participant_id"`
	TargetID      int `json:"target_id"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "create") {
		return
	}
	var req createRoomRequest
	if err := readJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid settings")
		return
	}
	secondsPerRound := s.cfg.SecondsPerRound
	if req.SecondsPerRound != nil {
		secondsPerRound = *req.SecondsPerRound
	}
	allowSpectators := s.cfg.AllowSpectators
	if req.AllowSpectators != nil {
		allowSpectators = *req.AllowSpectators
	}
	settings := s.clampSettings(req.Rounds, secondsPerRound, req.MaxPlayers, allowSpectators)

	room := s.store.CreateRoom(settings, s.now())
	if err := s.persistRoom(room); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}
	log.Printf("room created room_id=%s code=%s rounds=%d", room.ID, room.Code, room.RoundCount)
	writeJSON(w, http.StatusCreated, map[string]any{
		"room_id": room.ID,
		"code":    room.Code,
	})
	s.broadcastHomeUpdate()
}

func (s *Server) handleRoomSubroutes(w http.ResponseWriter, r *http.Request) {
	roomID, action, ok := parseRoomPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		switch action {
		case "":
			s.handleGetRoom(w, r, roomID)
		case "results":
			s.handleResults(w, r, roomID)
		case "events":
			s.handleEvents(w, r, roomID)
		default:
			http.NotFound(w, r)
		}
	case http.MethodPost:
		switch action {
		case "join":
			s.handleJoinRoom(w, r, roomID)
		case "spectate":
			s.handleSpectate(w, r, roomID)
		case "ready":
			s.handleToggleReady(w, r, roomID)
		case "start":
			s.handleStartGame(w, r, roomID)
		case "guesses":
			s.handleSubmitGuess(w, r, roomID)
		case "end":
			s.handleEndRound(w, r, roomID)
		case "next":
			s.handleNextRound(w, r, roomID)
		case "heartbeat":
			s.handleHeartbeat(w, r, roomID)
		case "leave":
			s.handleLeaveRoom(w, r, roomID)
		case "settings":
			s.handleSettings(w, r, roomID)
		case "kick":
			s.handleKick(w, r, roomID)
		default:
			http.NotFound(w, r)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// resolveRoom finds a live room by ID or code, falling back to a database
// restore so a durable room stays joinable after a server restart.
func (s *Server) resolveRoom(idOrCode string) (*Room, bool) {
	if room, ok := s.store.GetRoom(idOrCode); ok {
		return room, true
	}
	if room, ok := s.store.FindRoomByCode(idOrCode); ok {
		return room, true
	}
	if room, err := s.restoreRoomFromDB(idOrCode); err == nil {
		return room, true
	}
	return nil, false
}

// handleGetRoom is the reconciliation read-path: the full snapshot a client
// refetches whenever its local state and an incoming event disagree.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	room, ok := s.resolveRoom(roomID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot(room))
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	if !s.enforceRateLimit(w, r, "join") {
		return
	}
	var req joinRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	room, ok := s.resolveRoom(roomID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	room, participant, err := s.store.AddParticipant(room.ID, name, s.now())
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	if err := s.persistParticipant(room, participant); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to join room")
		return
	}
	log.Printf("participant joined room_id=%s participant_id=%d name=%s role=%s", room.ID, participant.ID, name, participant.Role)
	writeJSON(w, http.StatusOK, map[string]any{
		"room_id":        room.ID,
		"code":           room.Code,
		"participant_id": participant.ID,
		"role":           participant.Role,
		"avatar_color":   participant.AvatarColor,
	})
	s.broadcastRoomEvent(room, "participant_joined", EventPayload{
		ParticipantID:   participant.ID,
		ParticipantName: participant.Name,
	})
}

func (s *Server) handleSpectate(w http.ResponseWriter, r *http.Request, roomID string) {
	if !s.enforceRateLimit(w, r, "spectate") {
		return
	}
	var req joinRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	room, spectator, err := s.store.AddSpectator(roomID, name, s.now())
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	log.Printf("spectator joined room_id=%s spectator_id=%d", room.ID, spectator.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"room_id":      room.ID,
		"spectator_id": spectator.ID,
	})
	s.broadcastRoomUpdate(room)
}

func (s *Server) handleToggleReady(w http.ResponseWriter, r *http.Request, roomID string) {
	var req actorRequest
	if err := readJSON(r.Body, &req); err != nil || req.ParticipantID <= 0 {
		writeError(w, http.StatusBadRequest, "participant_id is required")
		return
	}
	room, err := s.toggleReadyOp(roomID, req.ParticipantID)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	participant, _ := findParticipant(room, req.ParticipantID)
	s.persistParticipantStatus(room, req.ParticipantID, participant.Status)
	writeJSON(w, http.StatusOK, map[string]any{"status": participant.Status})
	s.broadcastRoomEvent(room, "participant_ready", EventPayload{
		ParticipantID: req.ParticipantID,
		Status:        participant.Status,
	})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request, roomID string) {
	var req actorRequest
	if err := readJSON(r.Body, &req); err != nil || req.ParticipantID <= 0 {
		writeError(w, http.StatusBadRequest, "participant_id is required")
		return
	}
	room, err := s.startGameOp(roomID, req.ParticipantID)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	if err := s.persistSession(room); err != nil {
		log.Printf("start persist failed room_id=%s error=%v", room.ID, err)
	}
	s.persistEvent(room, "game_started", EventPayload{ParticipantID: req.ParticipantID})
	s.persistEvent(room, "round_started", EventPayload{
		RoundNumber: room.Session.CurrentRound,
		ImageID:     room.Session.CurrentImageID,
	})
	log.Printf("game started room_id=%s rounds=%d", room.ID, room.Session.TotalRounds)
	writeJSON(w, http.StatusOK, s.snapshot(room))
	s.broadcastRoomEvent(room, "round_started", EventPayload{
		RoundNumber: room.Session.CurrentRound,
		ImageID:     room.Session.CurrentImageID,
	})
	s.scheduleRoundTimer(room)
}

func (s *Server) handleSubmitGuess(w http.ResponseWriter, r *http.Request, roomID string) {
	var req guessRequest
	if err := readJSON(r.Body, &req); err != nil || req.ParticipantID <= 0 {
		writeError(w, http.StatusBadRequest, "guess is required")
		return
	}
	room, submission, err := s.submitGuess(roomID, req.ParticipantID, req.RoundNumber, req.Year, req.Lat, req.Lng)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	if err := s.persistSubmission(room, submission); err != nil {
		if errors.Is(err, ErrDuplicateSubmission) {
			s.rollbackSubmission(room.ID, req.ParticipantID, req.RoundNumber)
			writeError(w, errorStatus(err), err.Error())
			return
		}
		log.Printf("submission persist failed room_id=%s participant_id=%d error=%v", room.ID, req.ParticipantID, err)
	}
	s.persistParticipantStatus(room, req.ParticipantID, statusSubmitted)
	s.persistEvent(room, "guess_submitted", EventPayload{
		ParticipantID: req.ParticipantID,
		RoundNumber:   submission.RoundNumber,
		TotalScore:    submission.TotalScore,
	})
	log.Printf("guess submitted room_id=%s participant_id=%d round=%d score=%d",
		room.ID, req.ParticipantID, submission.RoundNumber, submission.TotalScore)
	writeJSON(w, http.StatusOK, map[string]any{
		"round_number":   submission.RoundNumber,
		"year_score":     submission.YearScore,
		"location_score": submission.LocationScore,
		"time_bonus":     submission.TimeBonus,
		"total_score":    submission.TotalScore,
	})
	s.broadcastRoomEvent(room, "guess_submitted", EventPayload{
		ParticipantID: req.ParticipantID,
		RoundNumber:   submission.RoundNumber,
	})
	s.maybeEndRound(room.ID)
}

func (s *Server) handleEndRound(w http.ResponseWriter, r *http.Request, roomID string) {
	var req actorRequest
	if err := readJSON(r.Body, &req); err != nil || req.ParticipantID <= 0 {
		writeError(w, http.StatusBadRequest, "participant_id is required")
		return
	}
	room, err := s.endRoundOp(roomID, req.ParticipantID)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	log.Printf("round ended room_id=%s round=%d reason=host", room.ID, room.Session.CurrentRound)
	writeJSON(w, http.StatusOK, s.snapshot(room))
	s.finishRound(room, "host")
}

func (s *Server) handleNextRound(w http.ResponseWriter, r *http.Request, roomID string) {
	var req actorRequest
	if err := readJSON(r.Body, &req); err != nil || req.ParticipantID <= 0 {
		writeError(w, http.StatusBadRequest, "participant_id is required")
		return
	}
	room, event, err := s.nextRoundOp(roomID, req.ParticipantID)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	if err := s.persistSessionState(room); err != nil {
		log.Printf("next round persist failed room_id=%s error=%v", room.ID, err)
	}
	writeJSON(w, http.StatusOK, s.snapshot(room))
	switch event {
	case "game_ended":
		s.cancelRoundTimer(room.ID)
		s.persistEvent(room, "game_ended", EventPayload{RoundNumber: room.Session.CurrentRound})
		log.Printf("game ended room_id=%s rounds=%d", room.ID, room.Session.TotalRounds)
		s.broadcastRoomEvent(room, "game_ended", EventPayload{})
	case "round_started":
		s.persistEvent(room, "round_started", EventPayload{
			RoundNumber: room.Session.CurrentRound,
			ImageID:     room.Session.CurrentImageID,
		})
		log.Printf("round started room_id=%s round=%d", room.ID, room.Session.CurrentRound)
		s.broadcastRoomEvent(room, "round_started", EventPayload{
			RoundNumber: room.Session.CurrentRound,
			ImageID:     room.Session.CurrentImageID,
		})
		s.scheduleRoundTimer(room)
	}
}

// handleHeartbeat is fire-and-forget on the client side; the response just
// echoes the server clock.
func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request, roomID string) {
	var req actorRequest
	if err := readJSON(r.Body, &req); err != nil || req.ParticipantID <= 0 {
		writeError(w, http.StatusBadRequest, "participant_id is required")
		return
	}
	_, err := s.heartbeatOp(roomID, req.ParticipantID)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"server_time": s.now()})
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	var req actorRequest
	if err := readJSON(r.Body, &req); err != nil || req.ParticipantID <= 0 {
		writeError(w, http.StatusBadRequest, "participant_id is required")
		return
	}
	room, result, err := s.leaveRoomOp(roomID, req.ParticipantID)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	s.persistParticipantRemoval(room, result.removed.DBID)
	s.persistEvent(room, "participant_left", EventPayload{ParticipantName: result.removed.Name})
	log.Printf("participant left room_id=%s participant_id=%d", room.ID, req.ParticipantID)
	writeJSON(w, http.StatusOK, map[string]any{"left": true})

	if result.wasLast {
		s.teardownRoom(room.ID, "empty")
		return
	}
	if result.newHostID != 0 {
		s.persistHostChange(room, req.ParticipantID, result.newHostID)
		s.broadcastRoomEvent(room, "host_changed", EventPayload{
			ParticipantID: req.ParticipantID,
			NewHostID:     result.newHostID,
		})
		return
	}
	s.broadcastRoomEvent(room, "participant_left", EventPayload{ParticipantID: req.ParticipantID})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request, roomID string) {
	var req settingsRequest
	if err := readJSON(r.Body, &req); err != nil || req.ParticipantID <= 0 {
		writeError(w, http.StatusBadRequest, "settings are required")
		return
	}
	current, ok := s.store.GetRoom(roomID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	secondsPerRound := current.SecondsPerRound
	if req.SecondsPerRound != nil {
		secondsPerRound = *req.SecondsPerRound
	}
	allowSpectators := current.AllowSpectators
	if req.AllowSpectators != nil {
		allowSpectators = *req.AllowSpectators
	}
	settings := s.clampSettings(req.Rounds, secondsPerRound, req.MaxPlayers, allowSpectators)

	room, err := s.updateSettingsOp(roomID, req.ParticipantID, settings)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	if err := s.persistSettings(room); err != nil {
		log.Printf("settings persist failed room_id=%s error=%v", room.ID, err)
	}
	log.Printf("settings updated room_id=%s rounds=%d seconds=%d", room.ID, room.RoundCount, room.SecondsPerRound)
	writeJSON(w, http.StatusOK, s.snapshot(room))
	s.broadcastRoomEvent(room, "settings_updated", EventPayload{
		RoundCount:      room.RoundCount,
		SecondsPerRound: room.SecondsPerRound,
		MaxPlayers:      room.MaxPlayers,
	})
}

func (s *Server) handleKick(w http.ResponseWriter, r *http.Request, roomID string) {
	var req kickRequest
	if err := readJSON(r.Body, &req); err != nil || req.ParticipantID <= 0 || req.TargetID <= 0 {
		writeError(w, http.StatusBadRequest, "target_id is required")
		return
	}
	room, kicked, err := s.kickOp(roomID, req.ParticipantID, req.TargetID)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	s.persistParticipantRemoval(room, kicked.DBID)
	s.persistEvent(room, "participant_kicked", EventPayload{ParticipantName: kicked.Name})
	log.Printf("participant kicked room_id=%s target_id=%d", room.ID, req.TargetID)
	writeJSON(w, http.StatusOK, map[string]any{"kicked": true})
	s.broadcastRoomEvent(room, "participant_kicked", EventPayload{ParticipantID: req.TargetID})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request, roomID string) {
	room, ok := s.resolveRoom(roomID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	session := room.Session
	if session == nil {
		writeError(w, http.StatusConflict, "game not started")
		return
	}
	rounds := make([]map[string]any, 0, session.CurrentRound)
	for n := 1; n <= session.CurrentRound; n++ {
		rounds = append(rounds, map[string]any{
			"round_number": n,
			"results":      resultsPayload(s, room, n),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room_id":     room.ID,
		"status":      session.Status,
		"leaderboard": leaderboardPayload(computeLeaderboard(room)),
		"rounds":      rounds,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, roomID string) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "events not available")
		return
	}
	room, ok := s.resolveRoom(roomID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if room.DBID == 0 {
		if err := s.ensureRoomDBID(room); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load room")
			return
		}
	}
	var records []db.Event
	if err := s.db.Where("room_id = ?", room.DBID).Order("created_at asc").Find(&records).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}
	events := make([]map[string]any, 0, len(records))
	for _, record := range records {
		events = append(events, map[string]any{
			"type":       record.Type,
			"payload":    record.Payload,
			"created_at": record.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
