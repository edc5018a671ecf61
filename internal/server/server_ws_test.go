package server

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func readWSFrame(t *testing.T, conn *websocket.Conn, timeout time.Duration) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read ws frame: %v", err)
	}
	var frame map[string]any
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("decode ws frame: %v", err)
	}
	return frame
}

func TestWebsocketSendsSnapshotOnConnect(t *testing.T) {
	_, ts := newFlowServer(t)
	roomID := createRoom(t, ts)
	joinParticipant(t, ts, roomID, "Ada")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/rooms/" + roomID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	defer conn.Close()

	frame := readWSFrame(t, conn, 5*time.Second)
	if frame["event"] != "snapshot" {
		t.Fatalf("expected snapshot frame first, got %v", frame["event"])
	}
	room, ok := frame["room"].(map[string]any)
	if !ok {
		t.Fatalf("expected room payload, got %T", frame["room"])
	}
	if room["room_id"] != roomID {
		t.Fatalf("expected room %s, got %v", roomID, room["room_id"])
	}
	participants := room["participants"].([]any)
	if len(participants) != 1 {
		t.Fatalf("expected 1 participant in snapshot, got %d", len(participants))
	}
}

func TestWebsocketBroadcastsJoin(t *testing.T) {
	_, ts := newFlowServer(t)
	roomID := createRoom(t, ts)
	joinParticipant(t, ts, roomID, "Ada")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/rooms/" + roomID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	defer conn.Close()

	// Drain the connect snapshot.
	readWSFrame(t, conn, 5*time.Second)

	joinParticipant(t, ts, roomID, "Grace")

	frame := readWSFrame(t, conn, 5*time.Second)
	if frame["event"] != "participant_joined" {
		t.Fatalf("expected participant_joined, got %v", frame["event"])
	}
	room := frame["room"].(map[string]any)
	participants := room["participants"].([]any)
	if len(participants) != 2 {
		t.Fatalf("expected snapshot with 2 participants, got %d", len(participants))
	}
}

func TestWebsocketUnknownRoom(t *testing.T) {
	_, ts := newFlowServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/rooms/room-404"
	if _, _, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatal("expected dial to an unknown room to fail")
	}
}

func TestHomeWebsocketListsRooms(t *testing.T) {
	_, ts := newFlowServer(t)
	createRoom(t, ts)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/home"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	defer conn.Close()

	frame := readWSFrame(t, conn, 5*time.Second)
	rooms, ok := frame["rooms"].([]any)
	if !ok || len(rooms) != 1 {
		t.Fatalf("expected 1 room in home feed, got %#v", frame["rooms"])
	}
}
