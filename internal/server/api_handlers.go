package server

import (
	"context"
	"darkdungeon/internal/analytics"
	"darkdungeon/internal/leaderboard"
	"darkdungeon/internal/profile"
	"darkdungeon/internal/sessions"
	"darkdungeon/internal/wshub"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

type errorResponse struct {
	Error string `json:"error"`
}

type leaderboardResponse struct {
	*leaderboard.Page
	Highlight *leaderboard.Entry `json:"highlight,omitempty"`
}

type profileResponse struct {
	Address     string                   `json:"address"`
	Stats       *profile.Stats           `json:"stats,omitempty"`
	StatsError  string                   `json:"statsError,omitempty"`
	Events      []profile.EventRow       `json:"events"`
	FromBlock   string                   `json:"fromBlock,omitempty"`
	ToBlock     string                   `json:"toBlock,omitempty"`
	EventsError string                   `json:"eventsError,omitempty"`
	Views       int                      `json:"views,omitempty"`
	History     *analytics.PlayerHistory `json:"history,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println(err)
	}
}

// handleAPILeaderboard fetches one page without touching any session.
func (s *Server) handleAPILeaderboard(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid page"})
			return
		}
		page = p
	}

	ctx, cancel := s.fetchContext(r.Context())
	defer cancel()
	p, err := s.Leaderboard.FetchPage(ctx, page)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, leaderboard.ErrPageOutOfRange) {
			status = http.StatusBadRequest
		}
		log.Printf("[Handle:APILeaderboard] %v\n", err)
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	resp := leaderboardResponse{Page: p}
	if e, ok := leaderboard.Highlight(p.Entries, identityFromQuery(r)); ok {
		resp.Highlight = &e
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPIProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.fetchContext(r.Context())
	defer cancel()

	view := profile.Load(ctx, s.Profiles, r.URL.Query().Get("address"))
	if view.Invalid {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: profile.ErrInvalidWallet.Error()})
		return
	}

	events := view.Events
	if events == nil {
		events = []profile.EventRow{}
	}
	rec := s.profileArchive(r.Context(), view.Address)
	writeJSON(w, http.StatusOK, profileResponse{
		Address:     view.Address,
		Stats:       view.Stats,
		StatsError:  view.StatsErr,
		Events:      events,
		FromBlock:   view.FromBlock,
		ToBlock:     view.ToBlock,
		EventsError: view.EventsErr,
		Views:       rec.Views,
		History:     rec.History,
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(r)
	if sess == nil {
		http.Error(w, "Session not found", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[WSHub] Accept error: %v\n", err)
		return
	}
	defer conn.CloseNow()

	client := &wshub.Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, 16),
	}
	sess.Hub.Register(client)
	defer sess.Hub.Unregister(client.ID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		client.WritePump(ctx)
		cancel()
	}()

	sess.Hub.SendTo(client.ID, wshub.NewStateMessage(sess.Board.State()))

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg wshub.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WSHub] Bad message from %s: %v\n", client.ID, err)
			continue
		}
		s.dispatch(ctx, sess, msg)
	}
}

// dispatch applies a websocket navigation message. The resulting state reaches
// the client through the session hub.
func (s *Server) dispatch(parent context.Context, sess *sessions.Session, msg wshub.ClientMessage) {
	sess.Touch()
	ctx, cancel := s.fetchContext(parent)
	defer cancel()

	var err error
	switch msg.Type {
	case "page":
		err = sess.Board.Jump(ctx, msg.Page)
	case "next":
		err = sess.Board.Next(ctx)
	case "prev":
		err = sess.Board.Previous(ctx)
	case "retry":
		err = sess.Board.Retry(ctx)
	case "dismiss":
		sess.Board.DismissError()
	default:
		log.Printf("[WSHub] Unknown message type %q\n", msg.Type)
		return
	}
	if err != nil && !errors.Is(err, leaderboard.ErrPageOutOfRange) && !errors.Is(err, leaderboard.ErrSuperseded) {
		log.Printf("[WSHub] %s failed: %v\n", msg.Type, err)
	}
}
