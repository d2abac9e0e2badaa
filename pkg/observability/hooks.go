// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through package-level hooks. The defaults are
// no-ops, so nothing is recorded unless main registers an implementation
// (see pkg/metrics for the Prometheus one).
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    reg := metrics.NewRegistry()
//	    observability.SetAdaptHooks(reg)
//	    observability.SetCacheHooks(reg)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Adapt().OnAdaptStart(ctx, boxes, pins)
//	// ... run the transformer ...
//	observability.Adapt().OnAdaptComplete(ctx, state, iterations, cost, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// AdaptHooks receives events from adaptation and ranking.
type AdaptHooks interface {
	OnAdaptStart(ctx context.Context, boxes, pins int)
	OnAdaptComplete(ctx context.Context, state string, iterations int, cost float64, duration time.Duration, err error)

	OnRankStart(ctx context.Context, templates int)
	OnRankComplete(ctx context.Context, templates int, duration time.Duration, err error)

	// OnDistance records a single heuristic distance evaluation.
	OnDistance(ctx context.Context, duration time.Duration)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ServerHooks receives events from the HTTP API.
type ServerHooks interface {
	// OnRequest records a served request. route is the route pattern,
	// not the raw path.
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// NoopAdaptHooks is a no-op implementation of AdaptHooks.
type NoopAdaptHooks struct{}

func (NoopAdaptHooks) OnAdaptStart(context.Context, int, int) {}
func (NoopAdaptHooks) OnAdaptComplete(context.Context, string, int, float64, time.Duration, error) {
}
func (NoopAdaptHooks) OnRankStart(context.Context, int)                          {}
func (NoopAdaptHooks) OnRankComplete(context.Context, int, time.Duration, error) {}
func (NoopAdaptHooks) OnDistance(context.Context, time.Duration)                 {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

var (
	adaptHooks  AdaptHooks  = NoopAdaptHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	serverHooks ServerHooks = NoopServerHooks{}
	hooksMu     sync.RWMutex
)

// SetAdaptHooks registers adaptation hooks. Call once at startup.
func SetAdaptHooks(h AdaptHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		adaptHooks = h
	}
}

// SetCacheHooks registers cache hooks. Call once at startup.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers HTTP server hooks. Call once at startup.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Adapt returns the registered adaptation hooks.
func Adapt() AdaptHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return adaptHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	adaptHooks = NoopAdaptHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
