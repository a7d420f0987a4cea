package sessions

import (
	"darkdungeon/internal/broadcast"
	"darkdungeon/internal/events"
	"darkdungeon/internal/leaderboard"
	"darkdungeon/internal/wshub"
	"sync"
	"time"
)

// Session is one viewer's leaderboard view and the streams watching it.
type Session struct {
	ID          string
	Board       *leaderboard.Board
	Bus         *events.Bus
	Broadcaster *broadcast.Broadcaster
	Hub         *wshub.Hub
	CreatedAt   time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close() {
	s.Bus.Close()
	s.Broadcaster.CloseAll()
	s.Hub.CloseAll()
}

func stateName(st leaderboard.State) string {
	switch {
	case st.Loading:
		return events.StateLoading
	case st.Err != "":
		return events.StateError
	}
	return events.StateLoaded
}
