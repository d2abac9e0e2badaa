// Package cache provides the caching layer for adaptation results.
//
// Entries are opaque byte slices addressed by string keys. Keys are derived
// by a [Keyer] from content hashes of the inputs, so a cached result is
// reused exactly when the graphs, the cost config, and the options match.
//
// Backends:
//
//   - [FileCache]: JSON files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values by key.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per entry kind.
const (
	TTLAdapt    = 7 * 24 * time.Hour
	TTLRank     = 24 * time.Hour
	TTLDistance = 7 * 24 * time.Hour
)

// Key kinds, used as key prefixes and as labels for cache hooks.
const (
	KindAdapt    = "adapt"
	KindRank     = "rank"
	KindDistance = "distance"
)

// Keyer derives cache keys.
type Keyer interface {
	// AdaptKey addresses the result of adapting one graph to another.
	AdaptKey(templateHash, targetHash string, opts AdaptKeyOpts) string

	// RankKey addresses a ranking of a corpus against a target graph.
	RankKey(corpusHash, targetHash string, opts RankKeyOpts) string

	// DistanceKey addresses a single heuristic distance.
	DistanceKey(aHash, bHash string, opts DistanceKeyOpts) string
}

// AdaptKeyOpts holds the options that change an adaptation result.
type AdaptKeyOpts struct {
	CostHash      string
	MaxIterations int
	Policy        string
}

// RankKeyOpts holds the options that change a ranking.
type RankKeyOpts struct {
	CostHash string
	Policy   string
	TopK     int
}

// DistanceKeyOpts holds the options that change a distance.
type DistanceKeyOpts struct {
	CostHash string
	Policy   string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// AdaptKey implements [Keyer].
func (DefaultKeyer) AdaptKey(templateHash, targetHash string, opts AdaptKeyOpts) string {
	return hashKey(KindAdapt, templateHash, targetHash, opts)
}

// RankKey implements [Keyer].
func (DefaultKeyer) RankKey(corpusHash, targetHash string, opts RankKeyOpts) string {
	return hashKey(KindRank, corpusHash, targetHash, opts)
}

// DistanceKey implements [Keyer].
func (DefaultKeyer) DistanceKey(aHash, bHash string, opts DistanceKeyOpts) string {
	return hashKey(KindDistance, aHash, bHash, opts)
}
