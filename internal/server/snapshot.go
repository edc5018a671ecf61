package server

import "time"

// snapshot is the full authoritative room state. It is what a freshly
// connected websocket receives and what the reconciliation GET returns, so
// it must be self-contained: a client holding only the latest snapshot has
// not missed anything that matters.
func (s *Server) snapshot(room *Room) map[string]any {
	participants := make([]map[string]any, 0, len(room.Participants))
	for _, participant := range room.Participants {
		participants = append(participants, map[string]any{
			"id":           participant.ID,
			"name":         participant.Name,
			"role":         participant.Role,
			"status":       participant.Status,
			"avatar_color": participant.AvatarColor,
			"joined_at":    participant.JoinedAt,
			"last_seen":    participant.LastSeen,
		})
	}
	spectators := make([]string, 0, len(room.Spectators))
	for _, spectator := range room.Spectators {
		spectators = append(spectators, spectator.Name)
	}

	payload := map[string]any{
		"room_id":              room.ID,
		"code":                 room.Code,
		"status":               room.Status,
		"host_id":              room.HostID,
		"max_players":          room.MaxPlayers,
		"current_player_count": countLive(room),
		"round_count":          room.RoundCount,
		"seconds_per_round":    room.SecondsPerRound,
		"allow_spectators":     room.AllowSpectators,
		"heartbeat_seconds":    s.cfg.HeartbeatSeconds,
		"participants":         participants,
		"spectators":           spectators,
		"leaderboard":          leaderboardPayload(computeLeaderboard(room)),
	}

	if session := room.Session; session != nil {
		sessionPayload := map[string]any{
			"uid":           session.UID,
			"status":        session.Status,
			"current_round": session.CurrentRound,
			"total_rounds":  session.TotalRounds,
		}
		if session.Status == sessionRoundActive {
			sessionPayload["current_image_id"] = session.CurrentImageID
			sessionPayload["round_started_at"] = session.RoundStartedAt
			if room.SecondsPerRound > 0 {
				endsAt := session.RoundStartedAt.Add(time.Duration(room.SecondsPerRound) * time.Second)
				sessionPayload["round_ends_at"] = endsAt.UTC().Format(time.RFC3339)
			}
			sessionPayload["submitted_ids"] = submittedIDs(session, session.CurrentRound)
		}
		if session.Status == sessionRoundResults || session.Status == sessionGameFinished {
			sessionPayload["round_results"] = resultsPayload(s, room, session.CurrentRound)
		}
		payload["session"] = sessionPayload
	}
	return payload
}

func submittedIDs(session *Session, roundNumber int) []int {
	ids := make([]int, 0)
	for _, submission := range session.Submissions {
		if submission.RoundNumber == roundNumber {
			ids = append(ids, submission.ParticipantID)
		}
	}
	return ids
}

func resultsPayload(s *Server, room *Room, roundNumber int) []map[string]any {
	session := room.Session
	results := make([]map[string]any, 0)
	imageID := session.CurrentImageID
	if roundNumber >= 1 && roundNumber <= len(room.ImageSequence) {
		imageID = room.ImageSequence[roundNumber-1]
	}
	truth, truthKnown := s.photos.Resolve(imageID)
	for _, submission := range resultsFor(session, roundNumber) {
		name := ""
		if participant, ok := findParticipant(room, submission.ParticipantID); ok {
			name = participant.Name
		}
		entry := map[string]any{
			"participant_id":     submission.ParticipantID,
			"name":               name,
			"round_number":       submission.RoundNumber,
			"year_guess":         submission.YearGuess,
			"guess_lat":          submission.GuessLat,
			"guess_lng":          submission.GuessLng,
			"year_score":         submission.YearScore,
			"location_score":     submission.LocationScore,
			"time_bonus":         submission.TimeBonus,
			"total_score":        submission.TotalScore,
			"time_taken_seconds": submission.TimeTakenSeconds,
		}
		if truthKnown {
			entry["actual_year"] = truth.Year
			entry["actual_lat"] = truth.Lat
			entry["actual_lng"] = truth.Lng
		}
		results = append(results, entry)
	}
	return results
}

func leaderboardPayload(entries []LeaderboardEntry) []map[string]any {
	payload := make([]map[string]any, 0, len(entries))
	for rank, entry := range entries {
		payload = append(payload, map[string]any{
			"rank":           rank + 1,
			"participant_id": entry.ParticipantID,
			"name":           entry.Name,
			"avatar_color":   entry.AvatarColor,
			"total_points":   entry.TotalPoints,
			"rounds_played":  entry.RoundsPlayed,
		})
	}
	return payload
}
