package server

import (
	"darkdungeon/internal/analytics"
	"darkdungeon/internal/profile"
	"log"
	"net/http"
	"strconv"
)

const defaultTopPlayers = 10

func (s *Server) handleAnalyticsTop(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "Analytics requires a database connection", http.StatusServiceUnavailable)
		return
	}

	limit := defaultTopPlayers
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	q := analytics.NewQueries(s.DB)
	players, err := q.GetTopPlayers(r.Context(), s.GameID, limit)
	if err != nil {
		log.Printf("[Analytics] top players error: %v\n", err)
		http.Error(w, "Error loading top players", http.StatusInternalServerError)
		return
	}
	if players == nil {
		players = []analytics.TopPlayer{}
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Server) handleAnalyticsPlayer(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "Analytics requires a database connection", http.StatusServiceUnavailable)
		return
	}

	// /api/analytics/player/{wallet}
	wallet, ok := profile.NormalizeWallet(r.PathValue("wallet"))
	if !ok {
		http.Error(w, profile.ErrInvalidWallet.Error(), http.StatusBadRequest)
		return
	}

	q := analytics.NewQueries(s.DB)
	history, err := q.GetPlayerHistory(r.Context(), wallet)
	if err != nil {
		log.Printf("[Analytics] player history error: %v\n", err)
		http.Error(w, "Error loading player history", http.StatusInternalServerError)
		return
	}
	if history == nil {
		http.Error(w, "Player not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
