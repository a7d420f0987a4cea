package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_URL", "LEADERBOARD_URL", "LEADERBOARD_FALLBACK_URLS",
		"LEADERBOARD_GAME_ID", "LEADERBOARD_SORT_BY", "FETCH_ATTEMPTS", "FETCH_TIMEOUT",
		"FETCH_ATTEMPT_TIMEOUT_MS", "FETCH_BACKOFF_MS",
		"UPSTREAM_RPS", "STATS_BASE_URL", "EVENTS_LIMIT", "EVENTS_RANGE", "GAME_ADDRESS",
		"SESSION_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, "")
	}
	if cfg.LeaderboardURL != "https://monad-games-id-site.vercel.app/api/leaderboard" {
		t.Errorf("LeaderboardURL = %q", cfg.LeaderboardURL)
	}
	if len(cfg.LeaderboardFallbacks) != 0 {
		t.Errorf("LeaderboardFallbacks = %v, want none", cfg.LeaderboardFallbacks)
	}
	if cfg.GameID != 135 {
		t.Errorf("GameID = %d, want %d", cfg.GameID, 135)
	}
	if cfg.SortBy != "scores" {
		t.Errorf("SortBy = %q, want %q", cfg.SortBy, "scores")
	}
	if cfg.FetchAttempts != 1 {
		t.Errorf("FetchAttempts = %d, want 1", cfg.FetchAttempts)
	}
	if cfg.FetchTimeout != 10 {
		t.Errorf("FetchTimeout = %d, want 10", cfg.FetchTimeout)
	}
	if cfg.AttemptTimeout() != 4*time.Second {
		t.Errorf("AttemptTimeout() = %v, want 4s", cfg.AttemptTimeout())
	}
	if cfg.Backoff() != 250*time.Millisecond {
		t.Errorf("Backoff() = %v, want 250ms", cfg.Backoff())
	}
	if cfg.FetchBudget() != 10*time.Second {
		t.Errorf("FetchBudget() = %v, want the 10s floor", cfg.FetchBudget())
	}
	if cfg.UpstreamRPS != 5 {
		t.Errorf("UpstreamRPS = %v, want 5", cfg.UpstreamRPS)
	}
	if cfg.EventsLimit != 50 || cfg.EventsRange != 10000 {
		t.Errorf("EventsLimit/EventsRange = %d/%d, want 50/10000", cfg.EventsLimit, cfg.EventsRange)
	}
	if cfg.GameAddress != DefaultGameAddress {
		t.Errorf("GameAddress = %q, want %q", cfg.GameAddress, DefaultGameAddress)
	}
	if cfg.SessionTTL != 3600 {
		t.Errorf("SessionTTL = %d, want 3600", cfg.SessionTTL)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://localhost/darkdungeon")
	t.Setenv("LEADERBOARD_URL", "http://lb.local/api/leaderboard")
	t.Setenv("LEADERBOARD_FALLBACK_URLS", "http://a.local/lb, ,http://b.local/lb")
	t.Setenv("LEADERBOARD_GAME_ID", "21")
	t.Setenv("FETCH_ATTEMPTS", "3")
	t.Setenv("UPSTREAM_RPS", "0.5")
	t.Setenv("FETCH_ATTEMPT_TIMEOUT_MS", "3000")
	t.Setenv("FETCH_BACKOFF_MS", "500")

	cfg := Load()

	if cfg.Backoff() != 500*time.Millisecond {
		t.Errorf("Backoff() = %v, want 500ms", cfg.Backoff())
	}
	// 3 sources x (3 attempts x 3s + 0.5s + 1s of backoff)
	if cfg.FetchBudget() != 31500*time.Millisecond {
		t.Errorf("FetchBudget() = %v, want 31.5s", cfg.FetchBudget())
	}

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "3000")
	}
	if cfg.DatabaseURL != "postgres://localhost/darkdungeon" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.GameID != 21 {
		t.Errorf("GameID = %d, want 21", cfg.GameID)
	}
	if cfg.FetchAttempts != 3 {
		t.Errorf("FetchAttempts = %d, want 3", cfg.FetchAttempts)
	}
	if cfg.UpstreamRPS != 0.5 {
		t.Errorf("UpstreamRPS = %v, want 0.5", cfg.UpstreamRPS)
	}

	sources := cfg.LeaderboardSources()
	want := []string{"http://lb.local/api/leaderboard", "http://a.local/lb", "http://b.local/lb"}
	if len(sources) != len(want) {
		t.Fatalf("LeaderboardSources() = %v, want %v", sources, want)
	}
	for i := range want {
		if sources[i] != want[i] {
			t.Errorf("sources[%d] = %q, want %q", i, sources[i], want[i])
		}
	}
}

func TestLoad_InvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEADERBOARD_GAME_ID", "abc")
	t.Setenv("FETCH_ATTEMPTS", "0")
	t.Setenv("UPSTREAM_RPS", "fast")
	t.Setenv("FETCH_BACKOFF_MS", "-5")

	cfg := Load()

	if cfg.Backoff() != 0 {
		t.Errorf("Backoff() = %v, want 0 (clamped)", cfg.Backoff())
	}

	if cfg.GameID != 135 {
		t.Errorf("GameID = %d, want %d (fallback)", cfg.GameID, 135)
	}
	if cfg.FetchAttempts != 1 {
		t.Errorf("FetchAttempts = %d, want 1 (clamped)", cfg.FetchAttempts)
	}
	if cfg.UpstreamRPS != 5 {
		t.Errorf("UpstreamRPS = %v, want 5 (fallback)", cfg.UpstreamRPS)
	}
}
