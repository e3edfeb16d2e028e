// Package metrics holds the Prometheus collectors for upstream feeds and caches.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors shared by the provider clients and services.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamSeconds  *prometheus.HistogramVec
	CacheResults     *prometheus.CounterVec
	CatalogSize      *prometheus.GaugeVec
	RefreshRuns      *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		UpstreamRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "breezyday_upstream_requests_total",
			Help: "Total number of requests sent to upstream providers.",
		}, []string{"provider", "outcome"}),
		UpstreamSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "breezyday_upstream_request_duration_seconds",
			Help:    "Duration of requests to upstream providers.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		CacheResults: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "breezyday_cache_lookups_total",
			Help: "Cache lookups by cache name and result (hit, miss, stale).",
		}, []string{"cache", "result"}),
		CatalogSize: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "breezyday_catalog_entries",
			Help: "Number of entries in the most recently fetched catalog.",
		}, []string{"catalog"}),
		RefreshRuns: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "breezyday_refresh_runs_total",
			Help: "Background refresh runs by target and status.",
		}, []string{"target", "status"}),
	}
}

// ObserveUpstream records one upstream call. A nil receiver is a no-op.
func (m *Metrics) ObserveUpstream(provider string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamRequests.WithLabelValues(provider, outcome).Inc()
	m.UpstreamSeconds.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}

// CacheHit records a fresh cache hit.
func (m *Metrics) CacheHit(cache string) {
	if m == nil {
		return
	}
	m.CacheResults.WithLabelValues(cache, "hit").Inc()
}

// CacheMiss records a lookup that had to go upstream.
func (m *Metrics) CacheMiss(cache string) {
	if m == nil {
		return
	}
	m.CacheResults.WithLabelValues(cache, "miss").Inc()
}

// CacheStale records a stale entry served after an upstream failure.
func (m *Metrics) CacheStale(cache string) {
	if m == nil {
		return
	}
	m.CacheResults.WithLabelValues(cache, "stale").Inc()
}

// SetCatalogSize sets the entry count gauge for a catalog.
func (m *Metrics) SetCatalogSize(catalog string, n int) {
	if m == nil {
		return
	}
	m.CatalogSize.WithLabelValues(catalog).Set(float64(n))
}

// RefreshRun records a background refresh result.
func (m *Metrics) RefreshRun(target string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.RefreshRuns.WithLabelValues(target, status).Inc()
}
