// Package metrics exposes the Prometheus instrumentation the dashboard's
// /metrics endpoint serves: scan latency, emitted-opportunity counts, and
// quote cache health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ScanLatencyMs records how long one scanner pass took, per scanner kind
// ("direct" or "triangular"). Buckets cover a single-threaded scan loop
// running on every inbound quote, so they stay well under a millisecond
// at the low end and allow for slow paths during triangular enumeration.
var ScanLatencyMs = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "audarb",
		Name:      "scan_latency_ms",
		Help:      "Latency of one scanner pass in milliseconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 25},
	},
	[]string{"scanner"},
)

// OpportunitiesEmittedTotal counts every opportunity the dispatcher sent
// to the sink, by kind ("direct" or "triangular").
var OpportunitiesEmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "audarb",
		Name:      "opportunities_emitted_total",
		Help:      "Total number of arbitrage opportunities emitted",
	},
	[]string{"kind"},
)

// QuotesProcessedTotal counts every BestBook update the dispatcher
// processed, by exchange.
var QuotesProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "audarb",
		Name:      "quotes_processed_total",
		Help:      "Total number of top-of-book updates processed",
	},
	[]string{"exchange"},
)

// CacheSize is the current number of (exchange, pair) entries held in
// the quote cache.
var CacheSize = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "audarb",
		Name:      "quote_cache_size",
		Help:      "Current number of entries in the quote cache",
	},
)

// DashboardClients is the current number of connected dashboard
// WebSocket subscribers.
var DashboardClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "audarb",
		Name:      "dashboard_clients",
		Help:      "Current number of connected dashboard WebSocket clients",
	},
)

// SinkWriteFailuresTotal counts CSV write failures, by file.
var SinkWriteFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "audarb",
		Name:      "sink_write_failures_total",
		Help:      "Total number of CSV sink write failures",
	},
	[]string{"file"},
)

// RecordScan observes one scanner pass's latency.
func RecordScan(scanner string, latencyMs float64) {
	ScanLatencyMs.WithLabelValues(scanner).Observe(latencyMs)
}

// RecordOpportunity increments the emitted-opportunity counter for kind.
func RecordOpportunity(kind string) {
	OpportunitiesEmittedTotal.WithLabelValues(kind).Inc()
}

// RecordQuote increments the processed-quote counter for exchange.
func RecordQuote(exchange string) {
	QuotesProcessedTotal.WithLabelValues(exchange).Inc()
}

// SetCacheSize sets the current quote cache size gauge.
func SetCacheSize(n int) {
	CacheSize.Set(float64(n))
}

// SetDashboardClients sets the current dashboard client count gauge.
func SetDashboardClients(n int) {
	DashboardClients.Set(float64(n))
}

// RecordSinkWriteFailure increments the sink write-failure counter for file.
func RecordSinkWriteFailure(file string) {
	SinkWriteFailuresTotal.WithLabelValues(file).Inc()
}
