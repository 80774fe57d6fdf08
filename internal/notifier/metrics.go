package notifier

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for reminder runs. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Runs             *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	Created          *prometheus.CounterVec
	Skipped          *prometheus.CounterVec
	ItemFailures     *prometheus.CounterVec
	TriggersSkipped  *prometheus.CounterVec
	LastRunTimestamp prometheus.Gauge
}

// NewMetrics registers the reminder metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "budgetbell_reminder_runs_total",
			Help: "Reminder runs by outcome",
		}, []string{"outcome"}), // outcome: "ok", "partial", "failed"

		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "budgetbell_reminder_run_duration_seconds",
			Help:    "Duration of a full reminder run",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		}),

		Created: f.NewCounterVec(prometheus.CounterOpts{
			Name: "budgetbell_notifications_created_total",
			Help: "Notifications created by type",
		}, []string{"type"}),

		Skipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "budgetbell_reminder_candidates_skipped_total",
			Help: "Candidates dropped because the occurrence was already notified",
		}, []string{"type"}),

		ItemFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "budgetbell_reminder_item_failures_total",
			Help: "Per-entity failures by kind",
		}, []string{"kind"}),

		TriggersSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "budgetbell_reminder_triggers_skipped_total",
			Help: "Scheduled ticks that did not start a run",
		}, []string{"reason"}), // reason: "in_progress", "locked"

		LastRunTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "budgetbell_reminder_last_run_timestamp_seconds",
			Help: "Unix time the last reminder run finished",
		}),
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(outcome string, d time.Duration, finished time.Time) {
	if m != nil {
		m.Runs.WithLabelValues(outcome).Inc()
		m.RunDuration.Observe(d.Seconds())
		m.LastRunTimestamp.Set(float64(finished.Unix()))
	}
}

// IncrementCreated records a notification written.
func (m *Metrics) IncrementCreated(notificationType string) {
	if m != nil {
		m.Created.WithLabelValues(notificationType).Inc()
	}
}

// IncrementSkipped records a candidate dropped by dedup.
func (m *Metrics) IncrementSkipped(notificationType string) {
	if m != nil {
		m.Skipped.WithLabelValues(notificationType).Inc()
	}
}

// IncrementItemFailure records a per-entity failure.
func (m *Metrics) IncrementItemFailure(kind ErrorKind) {
	if m != nil {
		m.ItemFailures.WithLabelValues(string(kind)).Inc()
	}
}

// IncrementTriggerSkipped records a tick that did not start a run.
func (m *Metrics) IncrementTriggerSkipped(reason string) {
	if m != nil {
		m.TriggersSkipped.WithLabelValues(reason).Inc()
	}
}
