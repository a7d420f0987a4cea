package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const DefaultGameAddress = "0xEEfa0c1605562B4Aa419821204836Aa1826775D4"

type Config struct {
	Port        string
	DatabaseURL string

	LeaderboardURL       string
	LeaderboardFallbacks []string
	GameID               int
	SortBy               string
	FetchAttempts        int
	FetchTimeout         int     // seconds, lower bound of the whole fetch budget
	FetchAttemptTimeout  int     // milliseconds per request
	FetchBackoff         int     // milliseconds, multiplied by the retry number
	UpstreamRPS          float64 // requests per second to the leaderboard host

	StatsBaseURL string
	EventsLimit  int
	EventsRange  int
	GameAddress  string

	SessionTTL int // seconds
}

func Load() Config {
	cfg := Config{
		Port:                 getEnv("PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		LeaderboardURL:       getEnv("LEADERBOARD_URL", "https://monad-games-id-site.vercel.app/api/leaderboard"),
		LeaderboardFallbacks: getEnvList("LEADERBOARD_FALLBACK_URLS"),
		GameID:               getEnvInt("LEADERBOARD_GAME_ID", 135),
		SortBy:               getEnv("LEADERBOARD_SORT_BY", "scores"),
		FetchAttempts:        getEnvInt("FETCH_ATTEMPTS", 1),
		FetchTimeout:         getEnvInt("FETCH_TIMEOUT", 10),
		FetchAttemptTimeout:  getEnvInt("FETCH_ATTEMPT_TIMEOUT_MS", 4000),
		FetchBackoff:         getEnvInt("FETCH_BACKOFF_MS", 250),
		UpstreamRPS:          getEnvFloat("UPSTREAM_RPS", 5),
		StatsBaseURL:         getEnv("STATS_BASE_URL", "http://localhost:3000"),
		EventsLimit:          getEnvInt("EVENTS_LIMIT", 50),
		EventsRange:          getEnvInt("EVENTS_RANGE", 10000),
		GameAddress:          getEnv("GAME_ADDRESS", DefaultGameAddress),
		SessionTTL:           getEnvInt("SESSION_TTL", 3600),
	}
	if cfg.FetchAttempts < 1 {
		cfg.FetchAttempts = 1
	}
	if cfg.FetchAttemptTimeout < 0 {
		cfg.FetchAttemptTimeout = 0
	}
	if cfg.FetchBackoff < 0 {
		cfg.FetchBackoff = 0
	}
	return cfg
}

func (c Config) AttemptTimeout() time.Duration {
	return time.Duration(c.FetchAttemptTimeout) * time.Millisecond
}

func (c Config) Backoff() time.Duration {
	return time.Duration(c.FetchBackoff) * time.Millisecond
}

// FetchBudget is the deadline for one page load: long enough for every source to
// use all of its attempts and backoffs, and never below FETCH_TIMEOUT.
func (c Config) FetchBudget() time.Duration {
	perSource := time.Duration(c.FetchAttempts) * c.AttemptTimeout()
	for try := 1; try < c.FetchAttempts; try++ {
		perSource += time.Duration(try) * c.Backoff()
	}
	budget := perSource * time.Duration(len(c.LeaderboardSources()))
	if floor := time.Duration(c.FetchTimeout) * time.Second; budget < floor {
		budget = floor
	}
	return budget
}

// LeaderboardSources returns the primary endpoint followed by the fallbacks, in the
// order they are tried.
func (c Config) LeaderboardSources() []string {
	sources := make([]string, 0, 1+len(c.LeaderboardFallbacks))
	if c.LeaderboardURL != "" {
		sources = append(sources, c.LeaderboardURL)
	}
	return append(sources, c.LeaderboardFallbacks...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
