package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal counts latest-update fetches by result ("success" or "error")
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "latest_block_fetches_total",
		Help: "Total number of latest update fetches",
	}, []string{"result"})

	// FetchesInFlight tracks the number of fetches currently outstanding
	FetchesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "latest_block_fetches_in_flight",
		Help: "Number of latest update fetches currently in flight",
	})

	// FetchDuration observes latest update fetch latency in seconds
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "latest_block_fetch_duration_seconds",
		Help:    "Latency of latest update fetches",
		Buckets: prometheus.DefBuckets,
	})

	// HostWritesTotal counts entity store writes by operation and result.
	// Operations: "create_entity_type", "create_entity", "update_entity".
	HostWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "latest_block_host_writes_total",
		Help: "Total number of entity store write operations",
	}, []string{"operation", "result"})

	// CircuitState reports the upstream circuit breaker state
	// (0=closed, 1=open, 2=half-open) per breaker name
	CircuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "latest_block_circuit_state",
		Help: "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"name"})

	// LiveSessions tracks the number of connected websocket sessions
	LiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "latest_block_live_sessions",
		Help: "Number of active websocket sessions",
	})
)

// RecordHostWrite increments the host write counter for an operation
func RecordHostWrite(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	HostWritesTotal.WithLabelValues(operation, result).Inc()
}
