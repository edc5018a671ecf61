package server

import (
	"errors"
	"testing"
)

func TestToggleReadyFlipsStatus(t *testing.T) {
	srv, _ := newTestEngine(t)
	room, ids := makeLobby(t, srv, "Ada", "Grace")

	if _, err := srv.toggleReadyOp(room.ID, ids[0]); err != nil {
		t.Fatalf("ready: %v", err)
	}
	participant, _ := findParticipant(room, ids[0])
	if participant.Status != statusReady {
		t.Fatalf("expected %q, got %q", statusReady, participant.Status)
	}

	if _, err := srv.toggleReadyOp(room.ID, ids[0]); err != nil {
		t.Fatalf("unready: %v", err)
	}
	if participant.Status != statusIdle {
		t.Fatalf("expected %q, got %q", statusIdle, participant.Status)
	}
}

func TestStartGameRequiresAllReady(t *testing.T) {
	srv, _ := newTestEngine(t)
	room, ids := makeLobby(t, srv, "Ada", "Grace")

	if _, err := srv.toggleReadyOp(room.ID, ids[0]); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if _, err := srv.startGameOp(room.ID, ids[0]); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition with unready player, got %v", err)
	}
}

func TestStartGameRequiresHost(t *testing.T) {
	srv, _ := newTestEngine(t)
	room, ids := makeLobby(t, srv, "Ada", "Grace")
	for _, id := range ids {
		if _, err := srv.toggleReadyOp(room.ID, id); err != nil {
			t.Fatalf("ready: %v", err)
		}
	}

	if _, err := srv.startGameOp(room.ID, ids[1]); !errors.Is(err, ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
}

func TestStartGameOpensRoundOne(t *testing.T) {
	srv, _ := newTestEngine(t)
	room, ids := makeLobby(t, srv, "Ada", "Grace")
	startLobbyGame(t, srv, room, ids)

	if room.Status != roomPlaying {
		t.Fatalf("expected room status %q, got %q", roomPlaying, room.Status)
	}
	session := room.Session
	if session == nil {
		t.Fatal("expected a session")
	}
	if session.Status != sessionRoundActive || session.CurrentRound != 1 {
		t.Fatalf("expected active round 1, got %q round %d", session.Status, session.CurrentRound)
	}
	if session.CurrentImageID != room.ImageSequence[0] {
		t.Fatalf("expected image %q, got %q", room.ImageSequence[0], session.CurrentImageID)
	}
	if session.UID == "" {
		t.Fatal("expected session uid to be set")
	}
}

func TestStartGameTwiceFails(t *testing.T) {
	srv, _ := newTestEngine(t)
	room, ids := makeLobby(t, srv, "Ada", "Grace")
	startLobbyGame(t, srv, room, ids)

	if _, err := srv.startGameOp(room.ID, ids[0]); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition on second start, got %v", err)
	}
}

func TestEndRoundMovesToResults(t *testing.T) {
	srv, _ := newTestEngine(t)
	room, ids := makeLobby(t, srv, "Ada", "Grace")
	startLobbyGame(t, srv, room, ids)

	if _, err := srv.endRoundOp(room.ID, ids[0]); err != nil {
		t.Fatalf("end round: %v", err)
	}
	if room.Session.Status != sessionRoundResults {
		t.Fatalf("expected %q, got %q", sessionRoundResults, room.Session.Status)
	}

	if _, err := srv.endRoundOp(room.ID, ids[0]); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition ending a closed round, got %v", err)
	}
}

func TestEndRoundRejectsNonHost(t *testing.T) {
	srv, _ := newTestEngine(t)
	room, ids := makeLobby(t, srv, "Ada", "Grace")
	startLobbyGame(t, srv, room, ids)

	if _, err := srv.endRoundOp(room.ID, ids[1]); !errors.Is(err, ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
}

func TestNextRoundAdvancesThenFinishes(t *testing.T) {
	srv, _ := newTestEngine(t)
	room, ids := makeLobby(t, srv, "Ada", "Grace")
	startLobbyGame(t, srv, room, ids)

	if _, err := srv.endRoundOp(room.ID, ids[0]); err != nil {
		t.Fatalf("end round 1: %v", err)
	}
	_, event, err := srv.nextRoundOp(room.ID, ids[0])
	if err != nil {
		t.Fatalf("next round: %v", err)
	}
	if event != "round_started" {
		t.Fatalf("expected round_started, got %q", event)
	}
	if room.Session.CurrentRound != 2 || room.Session.Status != sessionRoundActive {
		t.Fatalf("expected active round 2, got %q round %d", room.Session.Status, room.Session.CurrentRound)
	}
	if room.Session.CurrentImageID != room.ImageSequence[1] {
		t.Fatalf("expected image %q, got %q", room.ImageSequence[1], room.Session.CurrentImageID)
	}

	if _, err := srv.endRoundOp(room.ID, ids[0]); err != nil {
		t.Fatalf("end round 2: %v", err)
	}
	_, event, err = srv.nextRoundOp(room.ID, ids[0])
	if err != nil {
		t.Fatalf("finish game: %v", err)
	}
	if event != "game_ended" {
		t.Fatalf("expected game_ended, got %q", event)
	}
	if room.Session.Status != sessionGameFinished || room.Status != roomFinished {
		t.Fatalf("expected finished game, got session %q room %q", room.Session.Status, room.Status)
	}
}

func TestNextRoundRequiresResultsPhase(t *testing.T) {
	srv, _ := newTestEngine(t)
	room, ids := makeLobby(t, srv, "Ada", "Grace")
	startLobbyGame(t, srv, room, ids)

	if _, _, err := srv.nextRoundOp(room.ID, ids[0]); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition mid-round, got %v", err)
	}
}

func TestRoundStartResetsStatusesToReady(t *testing.T) {
	srv, _ := newTestEngine(t)
	room, ids := makeLobby(t, srv, "Ada", "Grace")
	startLobbyGame(t, srv, room, ids)

	if _, _, err := srv.submitGuess(room.ID, ids[0], 1, 1950, 40.0, -74.0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := srv.endRoundOp(room.ID, ids[0]); err != nil {
		t.Fatalf("end round: %v", err)
	}
	if _, _, err := srv.nextRoundOp(room.ID, ids[0]); err != nil {
		t.Fatalf("next round: %v", err)
	}
	for _, id := range ids {
		participant, _ := findParticipant(room, id)
		if participant.Status != statusReady {
			t.Fatalf("expected participant %d reset to ready, got %q", id, participant.Status)
		}
	}
}
