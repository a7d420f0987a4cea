package server

import (
	"context"
	"darkdungeon/internal/analytics"
	"darkdungeon/internal/db"
	"darkdungeon/internal/leaderboard"
	"darkdungeon/internal/metrics"
	"darkdungeon/internal/profile"
	"darkdungeon/internal/sessions"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const sessionCookie = "session_id"

type Server struct {
	Sessions       *sessions.Store
	Leaderboard    leaderboard.Fetcher
	Profiles       profile.Source
	Tmpl           *template.Template
	Metrics        *metrics.Metrics
	FetchTimeout   time.Duration
	GameID         int
	GameAddress    string
	DB             *db.DB           // nil if no database configured
	SnapshotBuffer chan db.Snapshot // nil if no database configured
}

// fetchContext bounds an upstream call so a hung host cannot leave a view loading.
func (s *Server) fetchContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.FetchTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.FetchTimeout)
}

// getSession resolves the viewer's session from the session_id cookie.
func (s *Server) getSession(r *http.Request) *sessions.Session {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	return s.Sessions.Get(cookie.Value)
}

// session returns the viewer's session, creating one and setting its cookie when
// the request has none.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *sessions.Session {
	if sess := s.getSession(r); sess != nil {
		return sess
	}
	sess := s.Sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
	})
	return sess
}

// identityFromQuery reads the viewer's own player record. It returns nil when
// neither a username nor a wallet is given.
func identityFromQuery(r *http.Request) *leaderboard.Identity {
	q := r.URL.Query()
	id := &leaderboard.Identity{
		Username:      strings.TrimSpace(q.Get("username")),
		WalletAddress: strings.TrimSpace(q.Get("wallet")),
	}
	if id.WalletAddress == "" {
		id.WalletAddress = strings.TrimSpace(q.Get("highlight"))
	}
	if score, err := strconv.ParseInt(q.Get("score"), 10, 64); err == nil {
		id.Score = score
	}
	if id.Username == "" && id.WalletAddress == "" {
		return nil
	}
	return id
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{"GameAddress": s.GameAddress}
	if err := s.Tmpl.ExecuteTemplate(w, "home", data); err != nil {
		log.Println(err)
		http.Error(w, "Error rendering home page", http.StatusInternalServerError)
	}
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	fmt.Println("[Handle:Leaderboard] Request Received")
	sess := s.session(w, r)
	if id := identityFromQuery(r); id != nil {
		sess.Board.SetIdentity(id)
	}

	ctx, cancel := s.fetchContext(r.Context())
	defer cancel()
	if err := sess.Board.Load(ctx, 1); err != nil && !errors.Is(err, leaderboard.ErrSuperseded) {
		log.Printf("[Handle:Leaderboard] load failed: %v\n", err)
	}

	if err := s.Tmpl.ExecuteTemplate(w, "leaderboard", sess.Board.State()); err != nil {
		log.Println(err)
		http.Error(w, "Error rendering leaderboard", http.StatusInternalServerError)
	}
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	s.renderTable(w, sess)
}

func (s *Server) renderTable(w http.ResponseWriter, sess *sessions.Session) {
	if err := s.Tmpl.ExecuteTemplate(w, "leaderboardTable", sess.Board.State()); err != nil {
		log.Println(err)
		http.Error(w, "Error rendering leaderboard table", http.StatusInternalServerError)
	}
}

// navigate runs one board operation and answers with the refreshed table.
// Out of range requests and superseded loads leave the board as it is.
func (s *Server) navigate(w http.ResponseWriter, r *http.Request, op func(context.Context, *leaderboard.Board) error) {
	sess := s.session(w, r)

	ctx, cancel := s.fetchContext(r.Context())
	defer cancel()
	err := op(ctx, sess.Board)
	switch {
	case err == nil, errors.Is(err, leaderboard.ErrPageOutOfRange), errors.Is(err, leaderboard.ErrSuperseded):
	default:
		log.Printf("[Handle:Navigate] %v\n", err)
	}
	s.renderTable(w, sess)
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	fmt.Println("[Handle:Jump] Request Received")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	page, err := strconv.Atoi(r.FormValue("page"))
	if err != nil {
		http.Error(w, "Invalid page", http.StatusBadRequest)
		return
	}
	s.navigate(w, r, func(ctx context.Context, b *leaderboard.Board) error {
		return b.Jump(ctx, page)
	})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	fmt.Println("[Handle:Next] Request Received")
	s.navigate(w, r, func(ctx context.Context, b *leaderboard.Board) error {
		return b.Next(ctx)
	})
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	fmt.Println("[Handle:Previous] Request Received")
	s.navigate(w, r, func(ctx context.Context, b *leaderboard.Board) error {
		return b.Previous(ctx)
	})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	fmt.Println("[Handle:Retry] Request Received")
	s.navigate(w, r, func(ctx context.Context, b *leaderboard.Board) error {
		return b.Retry(ctx)
	})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Board.DismissError()
	s.renderTable(w, sess)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(r)
	if sess == nil {
		http.Error(w, "Session not found", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	msgChan := sess.Broadcaster.Subscribe()
	defer sess.Broadcaster.Unsubscribe(msgChan)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-msgChan:
			if !ok {
				// session expired
				return
			}
			fmt.Fprintf(w, "event: %s\n", msg.Event)
			for _, line := range strings.Split(msg.Msg, "\n") {
				fmt.Fprintf(w, "data: %s\n", line)
			}
			fmt.Fprint(w, "\n")
			flusher.Flush()
			sess.Touch()
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	status := "ok"
	if s.DB != nil {
		ctx, cancel := s.fetchContext(r.Context())
		defer cancel()
		if err := s.DB.Ping(ctx); err != nil {
			status = "db_error"
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"%s","error":%q}`, status, err.Error())
			return
		}
	}
	fmt.Fprintf(w, `{"status":"%s"}`, status)
}

// archiveRecord is what the database knows about a profile.
type archiveRecord struct {
	Views   int
	History *analytics.PlayerHistory
}

// profileArchive counts a profile view and returns the wallet's archived record.
// Without a database the record is empty.
func (s *Server) profileArchive(parent context.Context, wallet string) archiveRecord {
	var rec archiveRecord
	if s.DB == nil {
		return rec
	}
	ctx, cancel := s.fetchContext(parent)
	defer cancel()

	if err := s.DB.RecordProfileView(ctx, wallet); err != nil {
		log.Printf("[DB] RecordProfileView error: %v\n", err)
	} else if pv, err := s.DB.GetProfileView(ctx, wallet); err != nil {
		log.Printf("[DB] GetProfileView error: %v\n", err)
	} else {
		rec.Views = pv.Views
	}

	h, err := analytics.NewQueries(s.DB).GetPlayerHistory(ctx, wallet)
	if err != nil {
		log.Printf("[DB] GetPlayerHistory error: %v\n", err)
		return rec
	}
	rec.History = h
	return rec
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	fmt.Println("[Handle:Profile] Request Received")
	ctx, cancel := s.fetchContext(r.Context())
	defer cancel()

	view := profile.Load(ctx, s.Profiles, r.URL.Query().Get("address"))
	data := struct {
		View *profile.View
		archiveRecord
	}{View: view}
	if !view.Invalid {
		data.archiveRecord = s.profileArchive(r.Context(), view.Address)
	}

	if err := s.Tmpl.ExecuteTemplate(w, "profile", data); err != nil {
		log.Println(err)
		http.Error(w, "Error rendering profile", http.StatusInternalServerError)
	}
}
