package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry        *prometheus.Registry
	FetchAttempts   *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	ProfileRequests *prometheus.CounterVec
	ArchiveDropped  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "darkdungeon",
			Subsystem: "leaderboard",
			Name:      "fetch_attempts_total",
			Help:      "Leaderboard fetch attempts by source host and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "darkdungeon",
			Subsystem: "leaderboard",
			Name:      "fetch_duration_seconds",
			Help:      "Leaderboard fetch attempt latency by source host.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		ProfileRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "darkdungeon",
			Subsystem: "profile",
			Name:      "requests_total",
			Help:      "Profile upstream requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		ArchiveDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "darkdungeon",
			Subsystem: "archive",
			Name:      "dropped_snapshots_total",
			Help:      "Leaderboard snapshots dropped because the archive buffer was full.",
		}),
	}
	m.Registry.MustRegister(m.FetchAttempts, m.FetchDuration, m.ProfileRequests, m.ArchiveDropped)
	return m
}

func (m *Metrics) ObserveFetch(source, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchAttempts.WithLabelValues(source, outcome).Inc()
	m.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) ObserveProfile(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.ProfileRequests.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) ArchiveDrop() {
	if m == nil {
		return
	}
	m.ArchiveDropped.Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
