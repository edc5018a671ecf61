package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	limiterWindow     = time.Minute
	limiterMaxPerIP   = 20
	limiterMaxTracked = 10000
)

// rateLimiter is a small sliding-window counter keyed by action and remote
// IP, guarding the unauthenticated create/join endpoints.
type rateLimiter struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	events map[string][]time.Time
}

func newRateLimiter(clock clockwork.Clock) *rateLimiter {
	return &rateLimiter{
		clock:  clock,
		events: make(map[string][]time.Time),
	}
}

func (l *rateLimiter) allow(action, ip string) bool {
	now := l.clock.Now()
	key := action + "|" + ip

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) > limiterMaxTracked {
		l.events = make(map[string][]time.Time)
	}
	recent := l.events[key][:0]
	for _, at := range l.events[key] {
		if now.Sub(at) < limiterWindow {
			recent = append(recent, at)
		}
	}
	if len(recent) >= limiterMaxPerIP {
		l.events[key] = recent
		return false
	}
	l.events[key] = append(recent, now)
	return true
}

func (s *Server) enforceRateLimit(w http.ResponseWriter, r *http.Request, action string) bool {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if s.limiter.allow(action, ip) {
		return true
	}
	writeError(w, http.StatusTooManyRequests, "slow down")
	return false
}
