package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAdaptMetrics() {
	f := promauto.With(r.registry)

	r.AdaptationsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adaptations_total",
			Help:      "Total number of adaptations by final state",
		},
		[]string{"state"},
	)

	r.AdaptationDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "adaptation_duration_seconds",
		Help:      "Wall time of a complete adaptation",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
	})

	r.AdaptationIterations = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "adaptation_iterations",
		Help:      "Transformer rounds per adaptation",
		Buckets:   []float64{0, 1, 2, 3, 5, 10, 25, 100, 1000, 5000},
	})

	r.AdaptationCost = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "adaptation_cost",
		Help:      "Accumulated cost per adaptation",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	r.AdaptationsInFlight = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "adaptations_in_flight",
		Help:      "Adaptations currently running",
	})
}

func (r *Registry) initRankMetrics() {
	f := promauto.With(r.registry)

	r.RankingsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rankings_total",
			Help:      "Total number of corpus rankings by status",
		},
		[]string{"status"},
	)

	r.RankingDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ranking_duration_seconds",
		Help:      "Wall time of ranking a corpus",
		Buckets:   prometheus.DefBuckets,
	})

	r.RankingTemplates = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ranking_templates",
		Help:      "Templates compared per ranking",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	r.DistanceDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "distance_duration_seconds",
		Help:      "Wall time of one heuristic distance",
		Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 10),
	})

	r.DistanceEvaluated = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "distances_total",
		Help:      "Total number of heuristic distances computed",
	})
}

func (r *Registry) initCacheMetrics() {
	f := promauto.With(r.registry)

	r.CacheRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by key kind and result",
		},
		[]string{"kind", "result"},
	)

	r.CacheWrittenBytes = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key kind",
		},
		[]string{"kind"},
	)
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)

	r.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}
