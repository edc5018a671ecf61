package server

import (
	"log"
	"net/http"
	"strings"

	"timepin/internal/web"

	"github.com/a-h/templ"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	templ.Handler(web.Home(s.homeSummaries())).ServeHTTP(w, r)
}

func (s *Server) handleJoinView(w http.ResponseWriter, r *http.Request) {
	code := ""
	if strings.HasPrefix(r.URL.Path, "/join/") {
		code = strings.TrimPrefix(r.URL.Path, "/join/")
		code = strings.Trim(code, "/")
		if code != "" && strings.Contains(code, "/") {
			http.NotFound(w, r)
			return
		}
	}
	templ.Handler(web.JoinView(code)).ServeHTTP(w, r)
}

func (s *Server) handleRoomView(w http.ResponseWriter, r *http.Request) {
	roomID := strings.TrimPrefix(r.URL.Path, "/rooms/")
	roomID = strings.Trim(roomID, "/")
	if roomID == "" || strings.Contains(roomID, "/") {
		http.NotFound(w, r)
		return
	}
	room, ok := s.resolveRoom(roomID)
	if !ok {
		log.Printf("room view missing room_id=%s", roomID)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	templ.Handler(web.RoomView(room.ID)).ServeHTTP(w, r)
}
