// Package metrics exposes Prometheus collectors for the map server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors registered by InitRegistry.
var (
	// HTTPRequests counts handled requests by route pattern.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "edumap", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	// HTTPLatency observes handler duration by route pattern.
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edumap", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	// ExternalRequests counts dataset and tile fetches by upstream status.
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "edumap", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "status"},
	)
	// ExternalLatency observes outbound fetch duration.
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edumap", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	// Records counts loaded records by outcome.
	Records = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "edumap", Name: "records_total", Help: "Establishment records by outcome."},
		[]string{"outcome"}, // outcome: marker|skipped
	)
	// TileEvents counts tile cache hits, misses and fallbacks.
	TileEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "edumap", Name: "tile_cache_events_total", Help: "Tile cache hits/misses/fallbacks."},
		[]string{"event"}, // event: hit|miss|fallback
	)
	// Sessions tracks live sessions in the store.
	Sessions = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "edumap", Name: "sessions", Help: "Live map sessions."},
	)
)

// InitRegistry registers all collectors in a fresh registry.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, Records, TileEvents, Sessions)
	return reg
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObserveHTTP records one handled request.
func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveExternal records an outbound fetch. Status 0 means a transport error.
func ObserveExternal(service string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service).Observe(dur.Seconds())
}

// ObserveRecords adds the outcome of one dataset load.
func ObserveRecords(markers, skipped int) {
	Records.WithLabelValues("marker").Add(float64(markers))
	Records.WithLabelValues("skipped").Add(float64(skipped))
}

// ObserveTile records a tile cache event: hit, miss or fallback.
func ObserveTile(event string) {
	TileEvents.WithLabelValues(event).Inc()
}
