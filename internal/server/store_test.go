package server

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCreateRoomAssignsCode(t *testing.T) {
	store := NewStore()
	room := store.CreateRoom(RoomSettings{RoundCount: 5, SecondsPerRound: 60, MaxPlayers: 8}, time.Now())

	if len(room.Code) != 6 {
		t.Fatalf("expected 6-character code, got %q", room.Code)
	}
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	for _, r := range room.Code {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("code %q contains disallowed character %q", room.Code, r)
		}
	}
	if room.Status != roomWaiting {
		t.Fatalf("expected status %q, got %q", roomWaiting, room.Status)
	}
}

func TestFirstJoinerBecomesHost(t *testing.T) {
	store := NewStore()
	now := time.Now()
	room := store.CreateRoom(RoomSettings{MaxPlayers: 4}, now)

	_, first, err := store.AddParticipant(room.ID, "Ada", now)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if first.Role != roleHost {
		t.Fatalf("expected first joiner to be host, got %q", first.Role)
	}
	if room.HostID != first.ID {
		t.Fatalf("expected host id %d, got %d", first.ID, room.HostID)
	}

	_, second, err := store.AddParticipant(room.ID, "Grace", now)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if second.Role != rolePlayer {
		t.Fatalf("expected second joiner to be player, got %q", second.Role)
	}
}

func TestJoinByCodeIsCaseInsensitive(t *testing.T) {
	store := NewStore()
	now := time.Now()
	room := store.CreateRoom(RoomSettings{MaxPlayers: 4}, now)

	joined, _, err := store.AddParticipant(strings.ToLower(room.Code), "Ada", now)
	if err != nil {
		t.Fatalf("join by lowercase code: %v", err)
	}
	if joined.ID != room.ID {
		t.Fatalf("expected room %s, got %s", room.ID, joined.ID)
	}

	if _, ok := store.FindRoomByCode(strings.ToLower(room.Code)); !ok {
		t.Fatal("expected FindRoomByCode to match lowercase input")
	}
}

func TestRejoinReclaimsSeat(t *testing.T) {
	store := NewStore()
	now := time.Now()
	room := store.CreateRoom(RoomSettings{MaxPlayers: 2}, now)

	_, first, err := store.AddParticipant(room.ID, "Ada", now)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	firstID := first.ID
	first.Status = statusDisconnected

	_, again, err := store.AddParticipant(room.ID, "ada", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if again.ID != firstID {
		t.Fatalf("expected reclaimed seat %d, got %d", firstID, again.ID)
	}
	if again.Status == statusDisconnected {
		t.Fatal("expected rejoin to clear disconnected status")
	}
	if len(room.Participants) != 1 {
		t.Fatalf("expected 1 participant, got %d", len(room.Participants))
	}
}

func TestJoinRejectedWhenFull(t *testing.T) {
	store := NewStore()
	now := time.Now()
	room := store.CreateRoom(RoomSettings{MaxPlayers: 2}, now)

	for _, name := range []string{"Ada", "Grace"} {
		if _, _, err := store.AddParticipant(room.ID, name, now); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
	}
	if _, _, err := store.AddParticipant(room.ID, "Edsger", now); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestJoinRejectedAfterKick(t *testing.T) {
	store := NewStore()
	now := time.Now()
	room := store.CreateRoom(RoomSettings{MaxPlayers: 4}, now)
	room.KickedNames["grace"] = struct{}{}

	if _, _, err := store.AddParticipant(room.ID, "Grace", now); !errors.Is(err, ErrKickedFromRoom) {
		t.Fatalf("expected ErrKickedFromRoom, got %v", err)
	}
}

func TestJoinRejectedMidGame(t *testing.T) {
	store := NewStore()
	now := time.Now()
	room := store.CreateRoom(RoomSettings{MaxPlayers: 4}, now)
	if _, _, err := store.AddParticipant(room.ID, "Ada", now); err != nil {
		t.Fatalf("join: %v", err)
	}
	room.Status = roomPlaying

	if _, _, err := store.AddParticipant(room.ID, "Grace", now); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestAvatarColorsUniquePerRoom(t *testing.T) {
	store := NewStore()
	now := time.Now()
	room := store.CreateRoom(RoomSettings{MaxPlayers: 8}, now)

	seen := make(map[string]struct{})
	for _, name := range []string{"Ada", "Grace", "Edsger", "Barbara"} {
		_, participant, err := store.AddParticipant(room.ID, name, now)
		if err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
		if _, taken := seen[participant.AvatarColor]; taken {
			t.Fatalf("color %s assigned twice", participant.AvatarColor)
		}
		seen[participant.AvatarColor] = struct{}{}
	}
}

func TestStaleParticipantColorStaysTaken(t *testing.T) {
	store := NewStore()
	now := time.Now()
	room := store.CreateRoom(RoomSettings{MaxPlayers: 4}, now)

	_, ada, err := store.AddParticipant(room.ID, "Ada", now)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	ada.Status = statusDisconnected

	_, grace, err := store.AddParticipant(room.ID, "Grace", now)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	adaSeat, _ := findParticipant(room, ada.ID)
	if grace.AvatarColor == adaSeat.AvatarColor {
		t.Fatalf("color %s reused while its holder was only stale", grace.AvatarColor)
	}
}

func TestRestoreRoomRefusesLiveCollision(t *testing.T) {
	store := NewStore()
	now := time.Now()
	room := store.CreateRoom(RoomSettings{MaxPlayers: 4}, now)

	clone := &Room{ID: room.ID, Code: "ZZZZZZ", KickedNames: map[string]struct{}{}}
	if err := store.RestoreRoom(clone); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition for duplicate id, got %v", err)
	}

	other := &Room{ID: "room-999", Code: room.Code, KickedNames: map[string]struct{}{}}
	if err := store.RestoreRoom(other); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition for duplicate code, got %v", err)
	}
}

func TestRemoveRoomForgetsIt(t *testing.T) {
	store := NewStore()
	room := store.CreateRoom(RoomSettings{MaxPlayers: 4}, time.Now())
	if _, ok := store.RemoveRoom(room.ID); !ok {
		t.Fatal("expected RemoveRoom to find the room")
	}
	if _, ok := store.GetRoom(room.ID); ok {
		t.Fatal("expected room to be gone after removal")
	}
}
