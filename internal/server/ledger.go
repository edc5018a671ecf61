package server

import (
	"errors"

	"timepin/internal/score"
)

// The guess ledger accepts at most one submission per (session, participant,
// round). The store mutex serializes concurrent submits for the in-memory
// check; the unique index on guess_submissions backs it durably.

func hasSubmission(session *Session, participantID, roundNumber int) bool {
	for _, submission := range session.Submissions {
		if submission.ParticipantID == participantID && submission.RoundNumber == roundNumber {
			return true
		}
	}
	return false
}

func resultsFor(session *Session, roundNumber int) []GuessSubmission {
	results := make([]GuessSubmission, 0)
	for _, submission := range session.Submissions {
		if submission.RoundNumber == roundNumber {
			results = append(results, submission)
		}
	}
	return results
}

func allSubmitted(session *Session, roundNumber int, participantIDs []int) bool {
	if len(participantIDs) == 0 {
		return false
	}
	for _, id := range participantIDs {
		if !hasSubmission(session, id, roundNumber) {
			return false
		}
	}
	return true
}

// submitGuess scores and records a guess for the active round. Scoring runs
// inside the accept path so a submission is never stored unscored.
func (s *Server) submitGuess(roomID string, participantID, roundNumber, yearGuess int, lat, lng float64) (*Room, *GuessSubmission, error) {
	now := s.now()
	var accepted GuessSubmission
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		session := room.Session
		if session == nil || session.Status != sessionRoundActive {
			return ErrInvalidRound
		}
		if roundNumber != session.CurrentRound {
			return ErrInvalidRound
		}
		participant, ok := findParticipant(room, participantID)
		if !ok {
			return ErrParticipantNotFound
		}
		if hasSubmission(session, participantID, roundNumber) {
			return ErrDuplicateSubmission
		}
		truth, ok := s.photos.Resolve(session.CurrentImageID)
		if !ok {
			return errors.New("round image missing from catalog")
		}

		elapsed := int(now.Sub(session.RoundStartedAt).Seconds())
		if elapsed < 0 {
			elapsed = 0
		}
		if room.SecondsPerRound > 0 && elapsed > room.SecondsPerRound {
			elapsed = room.SecondsPerRound
		}

		guess := score.Guess{
			Year: sanitizeYear(yearGuess),
			Lat:  sanitizeLat(lat),
			Lng:  sanitizeLng(lng),
		}
		breakdown := score.Score(guess, score.Truth(truth), score.Context{
			SecondsPerRound:        room.SecondsPerRound,
			TimeTakenSeconds:       elapsed,
			YearPenaltyPerYear:     s.cfg.YearPenaltyPerYear,
			DistancePenaltyPerMile: s.cfg.DistancePenaltyPerMile,
			TimeBonusPerSecond:     s.cfg.TimeBonusPerSecond,
		})

		accepted = GuessSubmission{
			ParticipantID:    participantID,
			RoundNumber:      roundNumber,
			YearGuess:        guess.Year,
			GuessLat:         guess.Lat,
			GuessLng:         guess.Lng,
			YearScore:        breakdown.YearScore,
			LocationScore:    breakdown.LocationScore,
			TimeBonus:        breakdown.TimeBonus,
			TotalScore:       breakdown.TotalScore,
			TimeTakenSeconds: elapsed,
			SubmittedAt:      now,
		}
		session.Submissions = append(session.Submissions, accepted)
		participant.Status = statusSubmitted
		participant.LastSeen = now
		room.LastActiveAt = now
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return room, &accepted, nil
}

// rollbackSubmission drops a submission the database later refused, keeping
// memory and the durable ledger in agreement.
func (s *Server) rollbackSubmission(roomID string, participantID, roundNumber int) {
	_, _ = s.store.UpdateRoom(roomID, func(room *Room) error {
		session := room.Session
		if session == nil {
			return nil
		}
		kept := session.Submissions[:0]
		for _, submission := range session.Submissions {
			if submission.ParticipantID == participantID && submission.RoundNumber == roundNumber {
				continue
			}
			kept = append(kept, submission)
		}
		session.Submissions = kept
		return nil
	})
}

// roundComplete reports whether every live player has a guess in for the
// active round.
func roundComplete(room *Room) bool {
	session := room.Session
	if session == nil || session.Status != sessionRoundActive {
		return false
	}
	return allSubmitted(session, session.CurrentRound, livePlayerIDs(room))
}
