// Package metrics exposes Prometheus collectors for the bot.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Proton-105/cocktail-bot/internal/catalog"
	"github.com/Proton-105/cocktail-bot/internal/conversation"
	"github.com/Proton-105/cocktail-bot/internal/session"
)

var (
	updatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of Telegram updates handled labeled by kind and status",
		},
		[]string{"kind", "status"},
	)
	updateDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_update_duration_seconds",
			Help:    "Duration of update handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searches_total",
			Help: "Total number of searches labeled by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)
	sessionTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Total number of session mode transitions",
		},
		[]string{"from", "to"},
	)
	catalogCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_calls_total",
			Help: "Total number of catalog queries labeled by operation and outcome",
		},
		[]string{"op", "outcome"},
	)
	catalogCallDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_call_duration_seconds",
			Help:    "Catalog query latency including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by code and severity",
		},
		[]string{"code", "severity"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of users with a pending search",
		},
	)
	sessionsByMode = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sessions_by_mode",
			Help: "Number of pending searches per mode",
		},
		[]string{"mode"},
	)
)

func init() {
	session.RegisterTransitionRecorder(RecordSessionTransition)
	conversation.RegisterSearchRecorder(RecordSearch)
	catalog.RegisterCallRecorder(RecordCatalogCall)
}

// RecordUpdate increments update counters and records duration.
func RecordUpdate(kind, status string, duration time.Duration) {
	updatesTotal.WithLabelValues(orUnknown(kind), orUnknown(status)).Inc()
	updateDurationSeconds.WithLabelValues(orUnknown(kind)).Observe(duration.Seconds())
}

// RecordSessionTransition tracks session mode changes.
func RecordSessionTransition(from, to session.Mode) {
	sessionTransitionsTotal.WithLabelValues(from.Label(), to.Label()).Inc()
}

// RecordSearch tracks a resolved search.
func RecordSearch(mode session.Mode, outcome string) {
	searchesTotal.WithLabelValues(mode.Label(), orUnknown(outcome)).Inc()
}

// RecordCatalogCall tracks one guarded catalog query.
func RecordCatalogCall(op, outcome string, duration time.Duration) {
	catalogCallsTotal.WithLabelValues(orUnknown(op), orUnknown(outcome)).Inc()
	catalogCallDurationSeconds.WithLabelValues(orUnknown(op)).Observe(duration.Seconds())
}

// RecordError increments error counters with metadata.
func RecordError(code, severity string) {
	errorsTotal.WithLabelValues(orUnknown(code), orUnknown(severity)).Inc()
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

// SessionSource is the read side of the session store.
type SessionSource interface {
	Range(fn func(userID int64, mode session.Mode) bool)
}

// SessionCollector periodically counts live sessions and emits gauge metrics.
type SessionCollector struct {
	sessions SessionSource
	interval time.Duration
}

// NewSessionCollector builds a collector bound to the provided store.
func NewSessionCollector(sessions SessionSource, interval time.Duration) *SessionCollector {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &SessionCollector{sessions: sessions, interval: interval}
}

// Run polls the store until ctx is cancelled.
func (c *SessionCollector) Run(ctx context.Context) {
	if c == nil || c.sessions == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.Collect()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Collect refreshes the gauges once.
func (c *SessionCollector) Collect() {
	counts := make(map[session.Mode]int, len(session.SearchModes))
	total := 0
	c.sessions.Range(func(_ int64, mode session.Mode) bool {
		counts[mode]++
		total++
		return true
	})

	activeSessions.Set(float64(total))
	for _, mode := range session.SearchModes {
		sessionsByMode.WithLabelValues(mode.Label()).Set(float64(counts[mode]))
	}
}
