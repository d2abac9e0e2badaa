package metrics

import (
	"context"
	"strconv"
	"time"
)

// OnAdaptStart implements observability.AdaptHooks.
func (r *Registry) OnAdaptStart(context.Context, int, int) {
	r.AdaptationsInFlight.Inc()
}

// OnAdaptComplete implements observability.AdaptHooks.
func (r *Registry) OnAdaptComplete(_ context.Context, state string, iterations int, cost float64, duration time.Duration, err error) {
	r.AdaptationsInFlight.Dec()
	if err != nil {
		state = "error"
	}
	r.AdaptationsTotal.WithLabelValues(state).Inc()
	r.AdaptationDuration.Observe(duration.Seconds())
	if err == nil {
		r.AdaptationIterations.Observe(float64(iterations))
		r.AdaptationCost.Observe(cost)
	}
}

// OnRankStart implements observability.AdaptHooks.
func (r *Registry) OnRankStart(_ context.Context, templates int) {
	r.RankingTemplates.Observe(float64(templates))
}

// OnRankComplete implements observability.AdaptHooks.
func (r *Registry) OnRankComplete(_ context.Context, _ int, duration time.Duration, err error) {
	r.RankingsTotal.WithLabelValues(status(err)).Inc()
	r.RankingDuration.Observe(duration.Seconds())
}

// OnDistance implements observability.AdaptHooks.
func (r *Registry) OnDistance(_ context.Context, duration time.Duration) {
	r.DistanceEvaluated.Inc()
	r.DistanceDuration.Observe(duration.Seconds())
}

// OnCacheHit implements observability.CacheHooks.
func (r *Registry) OnCacheHit(_ context.Context, kind string) {
	r.CacheRequestsTotal.WithLabelValues(kind, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (r *Registry) OnCacheMiss(_ context.Context, kind string) {
	r.CacheRequestsTotal.WithLabelValues(kind, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (r *Registry) OnCacheSet(_ context.Context, kind string, size int) {
	r.CacheWrittenBytes.WithLabelValues(kind).Add(float64(size))
}

// OnRequest implements observability.ServerHooks.
func (r *Registry) OnRequest(_ context.Context, method, route string, code int, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
