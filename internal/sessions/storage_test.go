package sessions

import (
	"context"
	"darkdungeon/internal/leaderboard"
	"sync"
	"testing"
	"time"
)

type stubFetcher struct{}

func (stubFetcher) FetchPage(ctx context.Context, page int) (*leaderboard.Page, error) {
	return &leaderboard.Page{
		Entries:    []leaderboard.Entry{{UserID: 1, Username: "alice", Rank: 1, Score: 10}},
		Pagination: leaderboard.Pagination{Page: page, Limit: 10, Total: 1, TotalPages: 1},
	}, nil
}

func TestNewStore(t *testing.T) {
	s := NewStore(stubFetcher{}, time.Hour)
	if s == nil {
		t.Fatal("NewStore() returned nil")
	}
	if len(s.List()) != 0 {
		t.Error("new store should have no sessions")
	}
}

func TestStore_Create(t *testing.T) {
	s := NewStore(stubFetcher{}, time.Hour)
	sess := s.Create()

	if sess.ID == "" {
		t.Error("session ID should not be empty")
	}
	if sess.Board == nil || sess.Broadcaster == nil || sess.Hub == nil || sess.Bus == nil {
		t.Errorf("session is missing parts: %+v", sess)
	}
	if got := s.Get(sess.ID); got != sess {
		t.Error("Get() should return the created session")
	}
}

func TestStore_UniqueIDs(t *testing.T) {
	s := NewStore(stubFetcher{}, time.Hour)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sess := s.Create()
		if seen[sess.ID] {
			t.Fatalf("duplicate session ID %s", sess.ID)
		}
		seen[sess.ID] = true
	}
	if len(s.List()) != 50 {
		t.Errorf("List() = %d sessions, want 50", len(s.List()))
	}
}

func TestStore_GetUnknown(t *testing.T) {
	s := NewStore(stubFetcher{}, time.Hour)
	if s.Get("nope") != nil {
		t.Error("Get() should return nil for an unknown session")
	}
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(stubFetcher{}, time.Hour)
	sess := s.Create()
	ch := sess.Broadcaster.Subscribe()

	s.Delete(sess.ID)

	if s.Get(sess.ID) != nil {
		t.Error("session should be gone after Delete()")
	}
	if _, ok := <-ch; ok {
		t.Error("event streams should be closed when the session is deleted")
	}
	// Board changes after deletion must not panic on the closed bus.
	sess.Board.Load(context.Background(), 1)
}

func TestStore_RemoveStale(t *testing.T) {
	s := NewStore(stubFetcher{}, time.Minute)
	old := s.Create()
	fresh := s.Create()

	old.mu.Lock()
	old.lastSeen = time.Now().Add(-2 * time.Minute)
	old.mu.Unlock()

	if n := s.RemoveStale(time.Now()); n != 1 {
		t.Errorf("RemoveStale() = %d, want 1", n)
	}
	if s.Get(old.ID) != nil {
		t.Error("stale session should be removed")
	}
	if s.Get(fresh.ID) == nil {
		t.Error("fresh session should be kept")
	}
}

func TestStore_BoardChangesReachSubscribers(t *testing.T) {
	s := NewStore(stubFetcher{}, time.Hour)
	sess := s.Create()
	ch := sess.Broadcaster.Subscribe()

	if err := sess.Board.Load(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	var got []string
	timeout := time.After(time.Second)
	for len(got) < 2 {
		select {
		case msg := <-ch:
			got = append(got, msg.Msg)
		case <-timeout:
			t.Fatalf("received %v, want loading then loaded", got)
		}
	}
	if got[0] != "loading" || got[1] != "loaded" {
		t.Errorf("received %v, want [loading loaded]", got)
	}
}

func TestStore_OnLoadedHook(t *testing.T) {
	s := NewStore(stubFetcher{}, time.Hour)
	var mu sync.Mutex
	var pages []int
	s.OnLoaded(func(p *leaderboard.Page) {
		mu.Lock()
		defer mu.Unlock()
		pages = append(pages, p.Pagination.Page)
	})

	sess := s.Create()
	sess.Board.Load(context.Background(), 1)

	mu.Lock()
	defer mu.Unlock()
	if len(pages) != 1 || pages[0] != 1 {
		t.Errorf("OnLoaded pages = %v, want [1]", pages)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore(stubFetcher{}, time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := s.Create()
			s.Get(sess.ID)
			s.List()
		}()
	}
	wg.Wait()
	if len(s.List()) != 20 {
		t.Errorf("List() = %d sessions, want 20", len(s.List()))
	}
}
