package server

import (
	"errors"
	"net/http"
)

// Coordination failures are typed so callers can tell a rejected action from
// a transport fault. They map onto HTTP statuses at the handler edge.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrRoomFull            = errors.New("room is full")
	ErrKickedFromRoom      = errors.New("removed from this room by the host")
	ErrNotHost             = errors.New("only the host may do that")
	ErrStaleHost           = errors.New("host authority has migrated")
	ErrIllegalTransition   = errors.New("illegal session transition")
	ErrInvalidRound        = errors.New("guess does not match the active round")
	ErrDuplicateSubmission = errors.New("guess already submitted for this round")
)

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrParticipantNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotHost),
		errors.Is(err, ErrStaleHost),
		errors.Is(err, ErrKickedFromRoom):
		return http.StatusForbidden
	case errors.Is(err, ErrRoomFull),
		errors.Is(err, ErrIllegalTransition),
		errors.Is(err, ErrInvalidRound),
		errors.Is(err, ErrDuplicateSubmission):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
