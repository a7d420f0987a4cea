package server

import (
	"context"
	"darkdungeon/internal/config"
	"darkdungeon/internal/db"
	"darkdungeon/internal/format"
	"darkdungeon/internal/leaderboard"
	"darkdungeon/internal/metrics"
	"darkdungeon/internal/profile"
	"darkdungeon/internal/sessions"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	snapshotBufferSize = 256
	snapshotBatchSize  = 20
	dbTimeout          = 10 * time.Second
)

// NewTemplates parses the page templates found under dir.
func NewTemplates(dir string) *template.Template {
	funcMap := template.FuncMap{
		"inc":         func(i int) int { return i + 1 },
		"medal":       leaderboard.Medal,
		"number":      format.Number,
		"amount":      format.AmountString,
		"shortWallet": format.ShortWallet,
		"shortHash":   format.ShortHash,
	}
	return template.Must(template.New("").Funcs(funcMap).ParseFiles(
		dir+"/home.html",
		dir+"/leaderboard.html",
		dir+"/profile.html",
	))
}

func Run() error {
	appCfg := config.Load()
	m := metrics.New()

	fetchBudget := appCfg.FetchBudget()
	httpClient := &http.Client{Timeout: time.Duration(appCfg.FetchTimeout) * time.Second}

	var limiter *rate.Limiter
	if appCfg.UpstreamRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(appCfg.UpstreamRPS), 1)
	}
	lb := leaderboard.NewClient(leaderboard.Options{
		Sources:        appCfg.LeaderboardSources(),
		GameID:         appCfg.GameID,
		SortBy:         appCfg.SortBy,
		Attempts:       appCfg.FetchAttempts,
		Backoff:        appCfg.Backoff(),
		AttemptTimeout: appCfg.AttemptTimeout(),
		Limiter:        limiter,
		Metrics:        m,
	})
	profiles := profile.NewClient(profile.Options{
		BaseURL:     appCfg.StatsBaseURL,
		EventsLimit: appCfg.EventsLimit,
		EventsRange: appCfg.EventsRange,
		HTTPClient:  httpClient,
		Metrics:     m,
	})

	srv := &Server{
		Sessions:     sessions.NewStore(lb, time.Duration(appCfg.SessionTTL)*time.Second),
		Leaderboard:  lb,
		Profiles:     profiles,
		Tmpl:         NewTemplates("templates"),
		Metrics:      m,
		FetchTimeout: fetchBudget,
		GameID:       appCfg.GameID,
		GameAddress:  appCfg.GameAddress,
	}

	// Optional database connection
	if appCfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		database, err := db.Connect(ctx, appCfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running without database)\n", err)
		} else {
			if err := database.Migrate(ctx); err != nil {
				log.Printf("[DB] Migration failed: %v\n", err)
			}
			srv.DB = database
			srv.SnapshotBuffer = make(chan db.Snapshot, snapshotBufferSize)
			srv.Sessions.OnLoaded(srv.archivePage)
			go snapshotBatchWriter(database, srv.SnapshotBuffer)
			log.Println("[DB] Database connected and migrations applied")
		}
		cancel()
	} else {
		log.Println("[DB] DATABASE_URL not set, running without database")
	}

	addr := "0.0.0.0:" + appCfg.Port
	fmt.Printf("Server listening on http://localhost:%s\n", appCfg.Port)
	return http.ListenAndServe(addr, srv.Routes())
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /leaderboard/table", s.handleTable)
	mux.HandleFunc("POST /leaderboard/page", s.handleJump)
	mux.HandleFunc("POST /leaderboard/next", s.handleNext)
	mux.HandleFunc("POST /leaderboard/prev", s.handlePrevious)
	mux.HandleFunc("POST /leaderboard/retry", s.handleRetry)
	mux.HandleFunc("POST /leaderboard/dismiss", s.handleDismiss)
	mux.HandleFunc("GET /leaderboard/events", s.handleEvents)
	mux.HandleFunc("GET /leaderboard/ws", s.handleWS)
	mux.HandleFunc("GET /api/leaderboard", s.handleAPILeaderboard)
	mux.HandleFunc("GET /profile", s.handleProfile)
	mux.HandleFunc("GET /api/profile", s.handleAPIProfile)
	mux.HandleFunc("GET /api/analytics/top", s.handleAnalyticsTop)
	mux.HandleFunc("GET /api/analytics/player/{wallet}", s.handleAnalyticsPlayer)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.Metrics.Handler())
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	return mux
}

// archivePage queues a loaded page for the snapshot writer, dropping it when the
// buffer is full.
func (s *Server) archivePage(p *leaderboard.Page) {
	snap := db.Snapshot{GameID: s.GameID, Page: *p, FetchedAt: time.Now()}
	select {
	case s.SnapshotBuffer <- snap:
	default:
		s.Metrics.ArchiveDrop()
		log.Println("[DB] Snapshot buffer full, dropping page")
	}
}

func snapshotBatchWriter(database *db.DB, buffer chan db.Snapshot) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	batch := make([]db.Snapshot, 0, snapshotBatchSize)
	flush := func() {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		if err := database.BatchRecordSnapshots(ctx, batch); err != nil {
			log.Printf("[DB] BatchRecordSnapshots error: %v\n", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case snap := <-buffer:
			batch = append(batch, snap)
			if len(batch) >= snapshotBatchSize {
				flush()
			}
		case <-ticker.C:
			if len(batch) > 0 {
				flush()
			}
		}
	}
}
