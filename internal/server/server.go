package server

import (
	"net/http"
	"sync"
	"time"

	"timepin/internal/config"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

type Server struct {
	store    *Store
	db       *gorm.DB
	ws       *wsHub
	homeWS   *homeHub
	cfg      config.Config
	photos   PhotoProvider
	limiter  *rateLimiter
	clock    clockwork.Clock
	timersMu sync.Mutex
	timers   map[string]clockwork.Timer
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return NewWithClock(conn, cfg, clockwork.NewRealClock())
}

// NewWithClock lets tests drive round timers and presence staleness with a
// fake clock.
func NewWithClock(conn *gorm.DB, cfg config.Config, clock clockwork.Clock) *Server {
	return &Server{
		store:   NewStore(),
		db:      conn,
		ws:      newWSHub(),
		homeWS:  newHomeHub(),
		cfg:     cfg,
		photos:  newCatalogProvider(conn),
		limiter: newRateLimiter(clock),
		clock:   clock,
		timers:  make(map[string]clockwork.Timer),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleHome)
	mux.HandleFunc("GET /join", s.handleJoinView)
	mux.HandleFunc("GET /join/", s.handleJoinView)
	mux.HandleFunc("GET /rooms/", s.handleRoomView)
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms/", s.handleRoomSubroutes)
	mux.HandleFunc("POST /api/rooms/", s.handleRoomSubroutes)
	mux.HandleFunc("GET /ws/rooms/", s.handleWebsocket)
	mux.HandleFunc("GET /ws/home", s.handleHomeWebsocket)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	return mux
}

func (s *Server) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *Server) heartbeatInterval() time.Duration {
	return time.Duration(s.cfg.HeartbeatSeconds) * time.Second
}

// staleAfter is two missed heartbeats.
func (s *Server) staleAfter() time.Duration {
	return 2 * s.heartbeatInterval()
}

func (s *Server) roomTTL() time.Duration {
	return time.Duration(s.cfg.RoomTTLMinutes) * time.Minute
}
