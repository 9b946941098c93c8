// Package metrics bundles the Prometheus collectors exposed for the
// scheduling layer's dashboards. All methods are nil-safe so callers can
// run without metrics wired up (tests, one-off CLI invocations).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all scrape pipeline collectors on a dedicated registry.
type Metrics struct {
	Registry       *prometheus.Registry
	FetchesTotal   *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	OutcomesTotal  *prometheus.CounterVec
	RetriesTotal   prometheus.Counter
	RotationsTotal *prometheus.CounterVec
	BlocksTotal    prometheus.Counter
}

// New constructs and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	fetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_fetches_total",
			Help: "HTTP fetch attempts issued, by source type.",
		},
		[]string{"source"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvest_fetch_duration_seconds",
			Help:    "Latency of listing page fetches.",
			Buckets: prometheus.DefBuckets,
		},
	)
	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_outcomes_total",
			Help: "Terminal scrape outcomes by status (success, network, blocked, validation, exhausted).",
		},
		[]string{"status"},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "harvest_retries_total",
			Help: "Retry attempts scheduled by the orchestrator.",
		},
	)
	rotations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_rotations_total",
			Help: "Identity rotations by pool and reason (block, retry, interval).",
		},
		[]string{"pool", "reason"},
	)
	blocks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "harvest_blocked_pages_total",
			Help: "Responses identified as block/CAPTCHA pages.",
		},
	)

	registry.MustRegister(fetches, fetchDuration, outcomes, retries, rotations, blocks)

	return &Metrics{
		Registry:       registry,
		FetchesTotal:   fetches,
		FetchDuration:  fetchDuration,
		OutcomesTotal:  outcomes,
		RetriesTotal:   retries,
		RotationsTotal: rotations,
		BlocksTotal:    blocks,
	}
}

// IncFetch counts one fetch attempt for a source type.
func (m *Metrics) IncFetch(source string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(source).Inc()
}

// ObserveFetch records a fetch latency.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncOutcome counts one terminal outcome by status label.
func (m *Metrics) IncOutcome(status string) {
	if m == nil {
		return
	}
	m.OutcomesTotal.WithLabelValues(status).Inc()
}

// IncRetry counts one scheduled retry.
func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncRotation counts one identity rotation.
func (m *Metrics) IncRotation(pool, reason string) {
	if m == nil {
		return
	}
	m.RotationsTotal.WithLabelValues(pool, reason).Inc()
}

// IncBlocked counts one detected block page.
func (m *Metrics) IncBlocked() {
	if m == nil {
		return
	}
	m.BlocksTotal.Inc()
}
