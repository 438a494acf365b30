// Package metrics exposes the editor's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlaylistMutations counts applied edits by operation name
	PlaylistMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3u8_editor_mutations_total",
		Help: "Total number of playlist edits applied",
	}, []string{"operation"})

	// PlaylistImports counts M3U8 imports by result (ok, error)
	PlaylistImports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3u8_editor_imports_total",
		Help: "Total number of playlist imports",
	}, []string{"result"})

	// PlaylistChannels tracks the number of channels in the working playlist
	PlaylistChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "m3u8_editor_playlist_channels",
		Help: "Number of channels in the working playlist",
	})

	// PlaylistGroups tracks the number of groups in the working playlist
	PlaylistGroups = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "m3u8_editor_playlist_groups",
		Help: "Number of groups in the working playlist",
	})

	// SnapshotSaveFailures counts failed attempts to persist the playlist
	SnapshotSaveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "m3u8_editor_snapshot_save_failures_total",
		Help: "Total number of failed playlist snapshot writes",
	})

	// DragIntents counts resolved drag gestures by dispatched operation
	DragIntents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3u8_editor_drag_intents_total",
		Help: "Total number of drag gestures by resolved operation",
	}, []string{"op"})

	// GuideRefreshes counts guide refresh attempts by result (upstream, cache, error)
	GuideRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3u8_editor_guide_refreshes_total",
		Help: "Total number of programme guide refreshes",
	}, []string{"result"})

	// GuideChannels tracks the number of channel names in the loaded guide
	GuideChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "m3u8_editor_guide_channels",
		Help: "Number of channel names in the loaded programme guide",
	})

	// HTTPRequests counts served HTTP requests by method and status code
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3u8_editor_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "status"})

	// HTTPRequestDuration observes request latency by method
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "m3u8_editor_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// CircuitBreakerState tracks the current state of circuit breakers
	// 0=closed, 1=open, 2=half-open
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "m3u8_editor_circuit_breaker_state",
		Help: "Current state of circuit breaker (0=closed, 1=open, 2=half-open)",
	}, []string{"name"})

	// CircuitBreakerTrips tracks how many times a circuit breaker transitioned to OPEN
	CircuitBreakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3u8_editor_circuit_breaker_trips_total",
		Help: "Total number of times circuit breaker transitioned to OPEN state",
	}, []string{"name"})

	// HealthCheckFailures tracks health check failures
	HealthCheckFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "m3u8_editor_health_check_failures_total",
		Help: "Total number of health check failures",
	})
)

// RecordMutation increments the edit counter for an operation
func RecordMutation(operation string) {
	PlaylistMutations.WithLabelValues(operation).Inc()
}

// RecordImport increments the import counter for a result
func RecordImport(result string) {
	PlaylistImports.WithLabelValues(result).Inc()
}

// SetPlaylistSize updates the channel and group gauges
func SetPlaylistSize(groups, channels int) {
	PlaylistGroups.Set(float64(groups))
	PlaylistChannels.Set(float64(channels))
}

// RecordSnapshotSaveFailure increments the persistence failure counter
func RecordSnapshotSaveFailure() {
	SnapshotSaveFailures.Inc()
}

// RecordDragIntent increments the drag counter for a resolved operation
func RecordDragIntent(op string) {
	DragIntents.WithLabelValues(op).Inc()
}

// RecordGuideRefresh increments the guide refresh counter for a result
func RecordGuideRefresh(result string) {
	GuideRefreshes.WithLabelValues(result).Inc()
}

// SetGuideChannels sets the number of channel names in the loaded guide
func SetGuideChannels(count int) {
	GuideChannels.Set(float64(count))
}

// SetCircuitBreakerState updates the circuit breaker state metric
// state should be one of: "CLOSED" (0), "OPEN" (1), "HALF-OPEN" (2)
func SetCircuitBreakerState(name, state string) {
	var value float64
	switch state {
	case "CLOSED":
		value = 0
	case "OPEN":
		value = 1
	case "HALF-OPEN":
		value = 2
	}
	CircuitBreakerState.WithLabelValues(name).Set(value)
}

// RecordCircuitBreakerTrip increments the circuit breaker trip counter
func RecordCircuitBreakerTrip(name string) {
	CircuitBreakerTrips.WithLabelValues(name).Inc()
}

// RecordHealthCheckFailure increments the health check failure counter
func RecordHealthCheckFailure() {
	HealthCheckFailures.Inc()
}

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}
