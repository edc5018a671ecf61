package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"timepin/internal/web"
)

// The hub is the fan-out half of the sync transport: one broadcast group
// per room, delivery best-effort. A connection that fails a write is
// dropped and is expected to reconnect, at which point it receives a fresh
// snapshot. The reconciliation read-path, not redelivery, is what makes
// missed frames safe.

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*websocket.Conn]struct{}
}

type homeHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{groups: make(map[string]map[*websocket.Conn]struct{})}
}

func newHomeHub() *homeHub {
	return &homeHub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *wsHub) Add(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.groups[roomID] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Remove(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.groups, roomID)
	}
}

func (h *wsHub) CloseRoom(roomID string) {
	h.mu.Lock()
	group := h.groups[roomID]
	delete(h.groups, roomID)
	h.mu.Unlock()
	for conn := range group {
		_ = conn.Close()
	}
}

func (h *wsHub) Send(conn *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

func (h *wsHub) Broadcast(roomID string, payload any) {
	h.mu.Lock()
	group := h.groups[roomID]
	conns := make([]*websocket.Conn, 0, len(group))
	for conn := range group {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(roomID, conn)
		}
	}
}

func (h *homeHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *homeHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	_ = conn.Close()
}

func (h *homeHub) Send(conn *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

func (h *homeHub) Broadcast(payload any) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(conn)
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseRoomWebsocketPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, exists := s.store.GetRoom(roomID); !exists {
		http.NotFound(w, r)
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected room_id=%s remote=%s", roomID, r.RemoteAddr)
	s.ws.Add(roomID, conn)
	if room, ok := s.store.GetRoom(roomID); ok {
		s.ws.Send(conn, wsFrame("snapshot", EventPayload{}, s.snapshot(room)))
	}
	go s.readWS(roomID, conn)
}

func (s *Server) handleHomeWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected home remote=%s", r.RemoteAddr)
	s.homeWS.Add(conn)
	s.homeWS.Send(conn, map[string]any{"rooms": s.homeSummaries()})
	go s.readHomeWS(conn)
}

func (s *Server) readWS(roomID string, conn *websocket.Conn) {
	defer s.ws.Remove(roomID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("ws disconnected room_id=%s error=%v", roomID, err)
			return
		}
	}
}

func (s *Server) readHomeWS(conn *websocket.Conn) {
	defer s.homeWS.Remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("home ws disconnected error=%v", err)
			return
		}
	}
}

func wsFrame(event string, payload EventPayload, snapshot map[string]any) map[string]any {
	return map[string]any{
		"event": event,
		"data":  payload,
		"room":  snapshot,
	}
}

// broadcastRoomEvent fans a coordination event out to every connection in
// the room group, snapshot attached so receivers never depend on having
// seen the previous frame.
func (s *Server) broadcastRoomEvent(room *Room, event string, payload EventPayload) {
	if s.ws == nil {
		return
	}
	s.ws.Broadcast(room.ID, wsFrame(event, payload, s.snapshot(room)))
	s.broadcastHomeUpdate()
}

func (s *Server) broadcastRoomUpdate(room *Room) {
	s.broadcastRoomEvent(room, "room_updated", EventPayload{})
}

func (s *Server) broadcastHomeUpdate() {
	if s.homeWS == nil {
		return
	}
	s.homeWS.Broadcast(map[string]any{"rooms": s.homeSummaries()})
}

func (s *Server) homeSummaries() []web.RoomSummary {
	summaries := s.store.ListRoomSummaries()
	list := make([]web.RoomSummary, 0, len(summaries))
	for _, summary := range summaries {
		list = append(list, web.RoomSummary{
			ID:           summary.ID,
			Code:         summary.Code,
			Status:       summary.Status,
			Participants: summary.Participants,
		})
	}
	return list
}
