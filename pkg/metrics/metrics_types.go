// Package metrics exports adaptation, cache, and HTTP metrics to Prometheus.
//
// A [Registry] implements the observability hook interfaces, so wiring it in
// is a matter of registering it at startup:
//
//	reg := metrics.NewRegistry()
//	observability.SetAdaptHooks(reg)
//	observability.SetCacheHooks(reg)
//	observability.SetServerHooks(reg)
//	http.Handle("/metrics", reg.Handler())
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/schemadapt/pkg/observability"
)

const namespace = "schemadapt"

// Registry holds all metrics for the application.
type Registry struct {
	// Adaptation metrics
	AdaptationsTotal     *prometheus.CounterVec
	AdaptationDuration   prometheus.Histogram
	AdaptationIterations prometheus.Histogram
	AdaptationCost       prometheus.Histogram
	AdaptationsInFlight  prometheus.Gauge

	// Ranking metrics
	RankingsTotal     *prometheus.CounterVec
	RankingDuration   prometheus.Histogram
	RankingTemplates  prometheus.Histogram
	DistanceDuration  prometheus.Histogram
	DistanceEvaluated prometheus.Counter

	// Cache metrics
	CacheRequestsTotal *prometheus.CounterVec
	CacheWrittenBytes  *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialized, plus the
// standard Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r.initAdaptMetrics()
	r.initRankMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

var (
	_ observability.AdaptHooks  = (*Registry)(nil)
	_ observability.CacheHooks  = (*Registry)(nil)
	_ observability.ServerHooks = (*Registry)(nil)
)
