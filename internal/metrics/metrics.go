// Package metrics declares the Prometheus collectors of the archivist.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "archivist"

// Outcome labels of MessagesTotal.
const (
	OutcomeNoConsent = "no_consent"
	OutcomeEmpty     = "empty"
	OutcomeArchived  = "archived"
	OutcomeBot       = "bot"
	OutcomeFailed    = "failed"
)

// Analysis metrics
var (
	// MessagesTotal counts analyze requests by outcome.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Messages seen by the analyzer by outcome",
		},
		[]string{"outcome"},
	)

	HighlightsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "highlights_total",
			Help:      "Archived messages that qualified as highlights",
		},
	)

	// HighlightScore observes the composite score of every archived message.
	HighlightScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "highlight_score",
			Help:      "Composite highlight score of archived messages",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	PointsAwardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Points credited to users",
		},
	)
)

// Storage metrics
var (
	// StorageErrorsTotal counts failed store operations by operation name.
	StorageErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Failed storage operations by operation",
		},
		[]string{"operation"},
	)
)

// Retention metrics
var (
	RetentionSweepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retention",
			Name:      "sweeps_total",
			Help:      "Retention sweeps by status",
		},
		[]string{"status"},
	)

	RetentionDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retention",
			Name:      "deleted_rows_total",
			Help:      "Archive rows removed by retention sweeps",
		},
	)

	RetentionLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "retention",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful sweep",
		},
	)
)

// Backup metrics
var (
	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Backup exports by sink and status",
		},
		[]string{"sink", "status"},
	)
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Status maps an error to a status label.
func Status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
