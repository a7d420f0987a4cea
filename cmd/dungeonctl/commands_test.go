package main

import (
	"bytes"
	"darkdungeon/internal/profile"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newFakeHost(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"data": [
				{"userId": 1, "username": "alice", "walletAddress": "0x1111111111111111111111111111111111111111", "score": 1234567, "gameId": 135, "gameName": "Dark Dungeon", "rank": 1},
				{"userId": 2, "username": "bob", "walletAddress": "0x2222222222222222222222222222222222222222", "score": 900, "gameId": 135, "gameName": "Dark Dungeon", "rank": 2}
			],
			"pagination": {"page": %s, "limit": 2, "total": 2000, "totalPages": 1000}
		}`, r.URL.Query().Get("page"))
	})
	mux.HandleFunc("/api/get-stats", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok": true, "total": {"score": "125000", "transactions": "42"}}`)
	})
	mux.HandleFunc("/api/player/events", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok": false, "error": "indexer offline"}`)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLeaderboardCmd(t *testing.T) {
	ts := newFakeHost(t)
	t.Setenv("LEADERBOARD_URL", ts.URL+"/api/leaderboard")

	out, err := execute(t, "leaderboard", "--page", "7", "--username", "bob")
	if err != nil {
		t.Fatalf("leaderboard error: %v", err)
	}
	for _, want := range []string{"🥇#1", "alice", "1,234,567", "0x1111...1111", "Page 7 of 1000 (2,000 players)", "Your position: #2 with 900"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLeaderboardCmd_InvalidPage(t *testing.T) {
	ts := newFakeHost(t)
	t.Setenv("LEADERBOARD_URL", ts.URL+"/api/leaderboard")

	if _, err := execute(t, "leaderboard", "--page", "0"); err == nil {
		t.Error("page 0 should fail")
	}
}

func TestProfileCmd(t *testing.T) {
	ts := newFakeHost(t)
	t.Setenv("STATS_BASE_URL", ts.URL)

	out, err := execute(t, "profile", "0xABCDEFabcdefABCDEFabcdefABCDEFabcdefABCD")
	if err != nil {
		t.Fatalf("profile error: %v", err)
	}
	for _, want := range []string{"0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", "Total gold:   125.000", "Game gold:    0", "Events: indexer offline"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestProfileCmd_InvalidAddress(t *testing.T) {
	_, err := execute(t, "profile", "0x123")
	if !errors.Is(err, profile.ErrInvalidWallet) {
		t.Errorf("error = %v, want ErrInvalidWallet", err)
	}
}

func TestProfileCmd_RequiresAddress(t *testing.T) {
	if _, err := execute(t, "profile"); err == nil {
		t.Error("profile without an address should fail")
	}
}
