package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const player = "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"

func TestNormalizeWallet(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"0xABCDEFabcdefABCDEFabcdefABCDEFabcdefABCD", player, true},
		{player, player, true},
		{"not-an-address", "not-an-address", false},
		{"", "", false},
		{"0x123", "0x123", false},
		{"abcdefabcdefabcdefabcdefabcdefabcdefabcd", "abcdefabcdefabcdefabcdefabcdefabcdefabcd", false},
		{player + "0", player + "0", false},
		{"0xghijklmnopqrstuvwxyzghijklmnopqrstuvwxyz", "0xghijklmnopqrstuvwxyzghijklmnopqrstuvwxyz", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeWallet(tt.in)
		if got != tt.want || ok != tt.valid {
			t.Errorf("NormalizeWallet(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.valid)
		}
	}
}

// newIndexer fakes the stats and events endpoints and counts requests.
func newIndexer(t *testing.T, stats, events http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/get-stats", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		stats(w, r)
	})
	mux.HandleFunc("/api/player/events", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		events(w, r)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, &calls
}

func statsOK(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, `{"ok": true, "total": {"score": "125000", "transactions": "42"}, "game": {"score": "9000", "transactions": 7, "gameAddress": "0xEEfa0c1605562B4Aa419821204836Aa1826775D4"}}`)
}

func eventsOK(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, `{"ok": true, "fromBlock": 100, "toBlock": "10100", "rows": [
		{"blockNumber": "10001", "txHash": "0xaaa", "game": "0xgame", "player": "0xabc", "scoreAmount": "1500", "transactionAmount": "1"},
		{"blockNumber": "10002", "txHash": "0xbbb", "game": "0xgame", "player": "0xabc", "scoreAmount": "25000", "transactionAmount": "3"}
	]}`)
}

func newClient(url string) *Client {
	return NewClient(Options{BaseURL: url, EventsLimit: 50, EventsRange: 10000})
}

func TestClient_Stats(t *testing.T) {
	var gotPlayer string
	ts, _ := newIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPlayer = r.URL.Query().Get("player")
		statsOK(w, r)
	}, eventsOK)

	st, err := newClient(ts.URL).Stats(context.Background(), player)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if gotPlayer != player {
		t.Errorf("player param = %q, want %q", gotPlayer, player)
	}
	if st.Total == nil || st.Total.Score != "125000" || st.Total.Transactions != "42" {
		t.Errorf("Total = %+v", st.Total)
	}
	if st.Game == nil || st.Game.Transactions != "7" || st.Game.GameAddress == "" {
		t.Errorf("Game = %+v", st.Game)
	}
}

func TestClient_StatsPartial(t *testing.T) {
	ts, _ := newIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok": true}`)
	}, eventsOK)

	st, err := newClient(ts.URL).Stats(context.Background(), player)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if st.Total != nil || st.Game != nil {
		t.Errorf("Stats() = %+v, want both parts absent", st)
	}
}

func TestClient_NotOK(t *testing.T) {
	ts, _ := newIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok": false, "error": "indexer offline"}`)
	}, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok": false}`)
	})
	c := newClient(ts.URL)

	_, err := c.Stats(context.Background(), player)
	var ae *APIError
	if !errors.As(err, &ae) || ae.Message != "indexer offline" {
		t.Errorf("Stats() error = %v, want APIError(indexer offline)", err)
	}

	_, err = c.Events(context.Background(), player)
	if !errors.As(err, &ae) || ae.Message != "Failed to load events" {
		t.Errorf("Events() error = %v, want default APIError message", err)
	}
}

func TestClient_StatusError(t *testing.T) {
	ts, _ := newIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}, eventsOK)

	_, err := newClient(ts.URL).Stats(context.Background(), player)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway {
		t.Fatalf("Stats() error = %v, want StatusError 502", err)
	}
	if err.Error() != "HTTP error! status: 502" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestClient_EventsQuery(t *testing.T) {
	var limit, rng string
	ts, _ := newIndexer(t, statsOK, func(w http.ResponseWriter, r *http.Request) {
		limit = r.URL.Query().Get("limit")
		rng = r.URL.Query().Get("range")
		eventsOK(w, r)
	})

	page, err := newClient(ts.URL).Events(context.Background(), player)
	if err != nil {
		t.Fatalf("Events() error: %v", err)
	}
	if limit != "50" || rng != "10000" {
		t.Errorf("limit/range = %s/%s, want 50/10000", limit, rng)
	}
	if len(page.Rows) != 2 || page.Rows[1].ScoreAmount != "25000" {
		t.Errorf("rows = %+v", page.Rows)
	}
	if page.FromBlock != "100" || page.ToBlock != "10100" {
		t.Errorf("block window = %s..%s, want 100..10100", page.FromBlock, page.ToBlock)
	}
}

func TestLoad_InvalidAddressMakesNoCalls(t *testing.T) {
	ts, calls := newIndexer(t, statsOK, eventsOK)

	v := Load(context.Background(), newClient(ts.URL), "not-an-address")
	if !v.Invalid {
		t.Error("view should be Invalid")
	}
	if calls.Load() != 0 {
		t.Errorf("network calls = %d, want 0", calls.Load())
	}
}

func TestLoad_Success(t *testing.T) {
	ts, calls := newIndexer(t, statsOK, eventsOK)

	v := Load(context.Background(), newClient(ts.URL), "0xABCDEFabcdefABCDEFabcdefABCDEFabcdefABCD")
	if v.Invalid {
		t.Fatal("view should be valid")
	}
	if v.Address != player {
		t.Errorf("Address = %q, want lowercased %q", v.Address, player)
	}
	if v.Stats == nil || len(v.Events) != 2 {
		t.Errorf("view = %+v, want stats and two events", v)
	}
	if calls.Load() != 2 {
		t.Errorf("network calls = %d, want 2", calls.Load())
	}
}

func TestLoad_PanelsFailIndependently(t *testing.T) {
	ts, _ := newIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}, eventsOK)

	v := Load(context.Background(), newClient(ts.URL), player)
	if v.StatsErr == "" || v.Stats != nil {
		t.Errorf("stats panel should have failed, got %+v / %q", v.Stats, v.StatsErr)
	}
	if v.EventsErr != "" || len(v.Events) != 2 {
		t.Errorf("events panel should have loaded, got %d rows / %q", len(v.Events), v.EventsErr)
	}
}
