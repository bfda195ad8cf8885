package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Service metrics - using explicit registration
var (
	// HTTP request counters
	RequestsTotal *prometheus.CounterVec

	// Search invocation counters
	SearchesTotal *prometheus.CounterVec

	// Search duration histogram
	SearchDuration *prometheus.HistogramVec

	// Script-injection reads currently waiting on their callback
	JSONPInFlight prometheus.Gauge

	// Script-injection read outcomes
	JSONPTotal *prometheus.CounterVec
)

// init creates and registers all metrics with the default registry
func init() {
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitesearch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "path", "status"},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitesearch",
			Subsystem: "search",
			Name:      "searches_total",
			Help:      "Total search invocations against the remote index",
		},
		[]string{"transport", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sitesearch",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search round-trip duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"transport"},
	)

	JSONPInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sitesearch",
			Subsystem: "jsonp",
			Name:      "in_flight",
			Help:      "Pending script-injection callbacks",
		},
	)

	JSONPTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitesearch",
			Subsystem: "jsonp",
			Name:      "requests_total",
			Help:      "Script-injection read outcomes",
		},
		[]string{"status"},
	)

	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(JSONPInFlight)
	prometheus.MustRegister(JSONPTotal)
	log.Debug().Msg("sitesearch metrics registered with Prometheus")
}

// RecordRequest records one served HTTP request
func RecordRequest(method, path, status string) {
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordSearch records one search invocation
func RecordSearch(transport, status string, durationSec float64) {
	if transport == "" {
		transport = "unknown"
	}
	SearchesTotal.WithLabelValues(transport, status).Inc()
	SearchDuration.WithLabelValues(transport).Observe(durationSec)
}

// RecordJSONP records the outcome of one script-injection read
func RecordJSONP(status string) {
	JSONPTotal.WithLabelValues(status).Inc()
}
