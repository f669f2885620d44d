package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle results.
const (
	CycleOK           = "ok"
	CycleFetchFailed  = "fetch_failed"
	CycleLedgerFailed = "ledger_failed"
)

// Skip reasons.
const (
	SkipRead        = "read"
	SkipAlreadySent = "already_sent"
	SkipInvalidID   = "invalid_id"
)

var (
	ReminderCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_cycles_total",
			Help: "Total number of bridge poll cycles by result",
		},
		[]string{"result"},
	)

	ReminderCycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reminder_cycle_duration_seconds",
			Help:    "Duration of a bridge poll cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	RemindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_emails_sent_total",
			Help: "Total number of reminder emails sent",
		},
		[]string{"provider"},
	)

	RemindersFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_emails_failed_total",
			Help: "Total number of reminder emails that failed to send",
		},
		[]string{"provider", "error_code"},
	)

	NotificationsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_notifications_skipped_total",
			Help: "Notifications not emailed, by reason",
		},
		[]string{"reason"},
	)

	LedgerSaveFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_ledger_save_failures_total",
			Help: "Ledger writes that failed at the end of a cycle",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reminder_active_sessions",
			Help: "Number of users with a running bridge",
		},
	)
)
