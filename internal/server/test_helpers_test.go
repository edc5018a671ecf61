package server

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"timepin/internal/config"

	"github.com/jonboulle/clockwork"
)

// stubPhotos hands out a fixed sequence so round flow and scoring are
// deterministic in tests.
type stubPhotos struct {
	sequence []string
	truths   map[string]Truth
}

func newStubPhotos() *stubPhotos {
	return &stubPhotos{
		sequence: []string{"photo-1", "photo-2", "photo-3"},
		truths: map[string]Truth{
			"photo-1": {Year: 1950, Lat: 40.0, Lng: -74.0},
			"photo-2": {Year: 1900, Lat: 51.5, Lng: -0.1},
			"photo-3": {Year: 1970, Lat: -33.9, Lng: 151.2},
		},
	}
}

func (p *stubPhotos) Sequence(n int) ([]string, error) {
	if n > len(p.sequence) {
		n = len(p.sequence)
	}
	return p.sequence[:n], nil
}

func (p *stubPhotos) Resolve(imageID string) (Truth, bool) {
	truth, ok := p.truths[imageID]
	return truth, ok
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.RoundCount = 2
	cfg.SecondsPerRound = 60
	return cfg
}

// newTestEngine builds a server on a fake clock with the stub catalog, for
// tests that drive operations directly without HTTP.
func newTestEngine(t *testing.T) (*Server, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	srv := NewWithClock(nil, testConfig(), clock)
	srv.photos = newStubPhotos()
	return srv, clock
}

// makeLobby creates a room and joins the given names, returning the room
// and participant IDs in join order. The first name becomes host.
func makeLobby(t *testing.T, srv *Server, names ...string) (*Room, []int) {
	t.Helper()
	room := srv.store.CreateRoom(srv.clampSettings(0, 60, 0, true), srv.now())
	ids := make([]int, 0, len(names))
	for _, name := range names {
		_, participant, err := srv.store.AddParticipant(room.ID, name, srv.now())
		if err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
		ids = append(ids, participant.ID)
	}
	return room, ids
}

// startLobbyGame readies every participant and starts the game as the host.
func startLobbyGame(t *testing.T, srv *Server, room *Room, ids []int) {
	t.Helper()
	for _, id := range ids {
		if _, err := srv.toggleReadyOp(room.ID, id); err != nil {
			t.Fatalf("ready %d: %v", id, err)
		}
	}
	if _, err := srv.startGameOp(room.ID, ids[0]); err != nil {
		t.Fatalf("start game: %v", err)
	}
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func createRoom(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return body["room_id"].(string)
}

func createRoomWithCode(t *testing.T, ts *httptest.Server) (string, string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return body["room_id"].(string), body["code"].(string)
}

func joinParticipant(t *testing.T, ts *httptest.Server, roomID, name string) int {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/join", map[string]string{
		"name": name,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return int(body["participant_id"].(float64))
}

func fetchSnapshot(t *testing.T, ts *httptest.Server, roomID string) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodGet, "/api/rooms/"+roomID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func assertString(t *testing.T, value any) {
	t.Helper()
	if _, ok := value.(string); !ok {
		t.Fatalf("expected string, got %T", value)
	}
}
