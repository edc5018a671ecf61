package server

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	maxNameLength   = 20
	maxRoundsPerSet = 10
	maxRoomPlayers  = 12
	maxRoundSeconds = 300

	minGuessYear = 1800
	maxGuessYear = 2100
)

func validateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.New("name is required")
	}
	if len(trimmed) > maxNameLength {
		return "", fmt.Errorf("name must be %d characters or fewer", maxNameLength)
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", errors.New("name contains unsupported characters")
		}
	}
	return trimmed, nil
}

// clampSettings folds request values into a valid RoomSettings, falling
// back to defaults for anything out of range.
func (s *Server) clampSettings(roundCount, secondsPerRound, maxPlayers int, allowSpectators bool) RoomSettings {
	settings := RoomSettings{
		RoundCount:      s.cfg.RoundCount,
		SecondsPerRound: s.cfg.SecondsPerRound,
		MaxPlayers:      s.cfg.MaxPlayers,
		AllowSpectators: allowSpectators,
	}
	if roundCount > 0 && roundCount <= maxRoundsPerSet {
		settings.RoundCount = roundCount
	}
	if secondsPerRound >= 0 && secondsPerRound <= maxRoundSeconds {
		settings.SecondsPerRound = secondsPerRound
	}
	if maxPlayers > 1 && maxPlayers <= maxRoomPlayers {
		settings.MaxPlayers = maxPlayers
	}
	return settings
}

// Guess inputs are sanitized here so the scoring engine never sees
// out-of-range values.

func sanitizeYear(year int) int {
	if year < minGuessYear {
		return minGuessYear
	}
	if year > maxGuessYear {
		return maxGuessYear
	}
	return year
}

func sanitizeLat(lat float64) float64 {
	if lat < -90 {
		return -90
	}
	if lat > 90 {
		return 90
	}
	return lat
}

func sanitizeLng(lng float64) float64 {
	for lng < -180 {
		lng += 360
	}
	for lng > 180 {
		lng -= 360
	}
	return lng
}
