package server

import (
	"testing"
)

func TestAutoEndRoundClosesActiveRound(t *testing.T) {
	srv, _ := newTestEngine(t)
	room, ids := makeLobby(t, srv, "Ada", "Grace")
	startLobbyGame(t, srv, room, ids)

	srv.autoEndRound(room.ID, 1)
	if room.Session.Status != sessionRoundResults {
		t.Fatalf("expected %q after timeout, got %q", sessionRoundResults, room.Session.Status)
	}
}

func TestStaleTimerIsNoOp(t *testing.T) {
	srv, _ := newTestEngine(t)
	room, ids := makeLobby(t, srv, "Ada", "Grace")
	startLobbyGame(t, srv, room, ids)

	if _, err := srv.endRoundOp(room.ID, ids[0]); err != nil {
		t.Fatalf("end round: %v", err)
	}
	if _, _, err := srv.nextRoundOp(room.ID, ids[0]); err != nil {
		t.Fatalf("next round: %v", err)
	}

	// A timer armed for round 1 firing during round 2 must change nothing.
	srv.autoEndRound(room.ID, 1)
	if room.Session.Status != sessionRoundActive || room.Session.CurrentRound != 2 {
		t.Fatalf("stale timer advanced state: %q round %d", room.Session.Status, room.Session.CurrentRound)
	}
}

func TestMaybeEndRoundWaitsForAllPlayers(t *testing.T) {
	srv, _ := newTestEngine(t)
	room, ids := makeLobby(t, srv, "Ada", "Grace")
	startLobbyGame(t, srv, room, ids)

	if _, _, err := srv.submitGuess(room.ID, ids[0], 1, 1950, 40.0, -74.0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	srv.maybeEndRound(room.ID)
	if room.Session.Status != sessionRoundActive {
		t.Fatal("round must stay open while a live player has not submitted")
	}

	if _, _, err := srv.submitGuess(room.ID, ids[1], 1, 1960, 41.0, -75.0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	srv.maybeEndRound(room.ID)
	if room.Session.Status != sessionRoundResults {
		t.Fatalf("expected early close once everyone submitted, got %q", room.Session.Status)
	}
}

func TestScheduleRoundTimerTracksRoom(t *testing.T) {
	srv, _ := newTestEngine(t)
	room, ids := makeLobby(t, srv, "Ada", "Grace")
	startLobbyGame(t, srv, room, ids)

	srv.scheduleRoundTimer(room)
	srv.timersMu.Lock()
	_, armed := srv.timers[room.ID]
	srv.timersMu.Unlock()
	if !armed {
		t.Fatal("expected a timer for the active round")
	}

	srv.cancelRoundTimer(room.ID)
	srv.timersMu.Lock()
	_, armed = srv.timers[room.ID]
	srv.timersMu.Unlock()
	if armed {
		t.Fatal("expected timer to be cancelled")
	}
}

func TestUntimedRoomsGetNoTimer(t *testing.T) {
	srv, _ := newTestEngine(t)
	room := srv.store.CreateRoom(RoomSettings{RoundCount: 2, SecondsPerRound: 0, MaxPlayers: 4}, srv.now())
	for _, name := range []string{"Ada", "Grace"} {
		if _, _, err := srv.store.AddParticipant(room.ID, name, srv.now()); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	ids := []int{room.Participants[0].ID, room.Participants[1].ID}
	startLobbyGame(t, srv, room, ids)

	srv.scheduleRoundTimer(room)
	srv.timersMu.Lock()
	_, armed := srv.timers[room.ID]
	srv.timersMu.Unlock()
	if armed {
		t.Fatal("untimed rooms must not arm a round timer")
	}
}
