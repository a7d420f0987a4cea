package sessions

import (
	"darkdungeon/internal/broadcast"
	"darkdungeon/internal/events"
	"darkdungeon/internal/leaderboard"
	"darkdungeon/internal/wshub"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultTTL = 1 * time.Hour

type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	fetcher  leaderboard.Fetcher
	ttl      time.Duration
	onLoaded func(*leaderboard.Page)
}

// NewStore creates a store whose sessions load pages through f and expire after
// ttl without activity.
func NewStore(f leaderboard.Fetcher, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		sessions: make(map[string]*Session),
		fetcher:  f,
		ttl:      ttl,
	}
	go s.sweepStale()
	return s
}

// OnLoaded registers fn on the boards of sessions created afterwards.
func (s *Store) OnLoaded(fn func(*leaderboard.Page)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLoaded = fn
}

func (s *Store) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	bus := events.NewBus()
	sess := &Session{
		ID:          uuid.New().String(),
		Board:       leaderboard.NewBoard(s.fetcher),
		Bus:         bus,
		Broadcaster: broadcast.NewBroadcaster(bus),
		Hub:         wshub.NewHub(),
		CreatedAt:   now,
		lastSeen:    now,
	}
	sess.Board.OnChange(func(st leaderboard.State) {
		sess.Hub.Broadcast(wshub.NewStateMessage(st))
		bus.Publish(events.BoardChangeEvent{Page: st.CurrentPage, State: stateName(st)})
	})
	if s.onLoaded != nil {
		sess.Board.OnLoaded(s.onLoaded)
	}
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session and marks it as seen, or nil when unknown.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	sess := s.sessions[id]
	s.mu.Unlock()
	if sess != nil {
		sess.Touch()
	}
	return sess
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		sess.close()
	}
}

func (s *Store) List() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	return list
}

// RemoveStale drops sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) RemoveStale(now time.Time) int {
	s.mu.Lock()
	var stale []*Session
	for id, sess := range s.sessions {
		if now.Sub(sess.LastSeen()) > s.ttl {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.close()
	}
	return len(stale)
}

func (s *Store) sweepStale() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.RemoveStale(time.Now())
	}
}
