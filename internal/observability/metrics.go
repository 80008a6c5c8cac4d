// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Workflow metrics
	RegistrationsTotal *prometheus.CounterVec
	PurchasesTotal     *prometheus.CounterVec
	OrphanedPins       prometheus.Counter

	// Collaborator metrics
	CollaboratorLatency *prometheus.HistogramVec
	CollaboratorErrors  *prometheus.CounterVec

	// Listing metrics
	SnapshotRecords   prometheus.Gauge
	SnapshotRefreshes *prometheus.CounterVec
	WSReconnects      prometheus.Counter
	EventsDropped     prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "land_registry"
	}

	return &Metrics{
		// Workflow metrics
		RegistrationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "registrations_total",
			Help:      "Total number of registration attempts by outcome",
		}, []string{"outcome"}),
		PurchasesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "purchases_total",
			Help:      "Total number of purchase attempts by outcome",
		}, []string{"outcome"}),
		OrphanedPins: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "orphaned_pins_total",
			Help:      "Total number of documents pinned for registrations the ledger rejected",
		}),

		// Collaborator metrics
		CollaboratorLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "collaborator",
			Name:      "call_latency_seconds",
			Help:      "Collaborator call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collaborator", "operation"}),
		CollaboratorErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collaborator",
			Name:      "call_errors_total",
			Help:      "Total number of failed collaborator calls",
		}, []string{"collaborator", "operation"}),

		// Listing metrics
		SnapshotRecords: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "listing",
			Name:      "snapshot_records",
			Help:      "Number of records in the current listing snapshot",
		}),
		SnapshotRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listing",
			Name:      "snapshot_refreshes_total",
			Help:      "Total number of snapshot refreshes by status",
		}, []string{"status"}),
		WSReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listing",
			Name:      "ws_reconnects_total",
			Help:      "Total number of event feed reconnections",
		}),
		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listing",
			Name:      "events_dropped_total",
			Help:      "Total number of record events dropped due to a full buffer",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRegistration increments the registration counter for an outcome code.
func RecordRegistration(outcome string) {
	DefaultMetrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
}

// RecordPurchase increments the purchase counter for an outcome code.
func RecordPurchase(outcome string) {
	DefaultMetrics.PurchasesTotal.WithLabelValues(outcome).Inc()
}

// RecordOrphanedPin increments the orphaned pin counter.
func RecordOrphanedPin() {
	DefaultMetrics.OrphanedPins.Inc()
}
