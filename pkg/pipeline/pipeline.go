// Package pipeline runs adaptations, rankings, and diffs with caching.
//
// The CLI and the HTTP server both go through a [Runner], so caching,
// logging, metrics hooks, and error codes behave the same at every entry
// point.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Adapt(ctx, template, circuit, pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.State, res.Cost)
//
// Rank a corpus, then adapt the best template:
//
//	matches, err := runner.Rank(ctx, circuit, source, pipeline.Options{TopK: 5})
//	best, err := source.Get(ctx, matches[0].Name)
//	res, err := runner.Adapt(ctx, best.Graph, circuit, opts)
package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schemadapt/pkg/adapt"
	"github.com/matzehuels/schemadapt/pkg/cache"
	"github.com/matzehuels/schemadapt/pkg/correspondence"
	"github.com/matzehuels/schemadapt/pkg/corpus"
	"github.com/matzehuels/schemadapt/pkg/cost"
	errs "github.com/matzehuels/schemadapt/pkg/errors"
)

// Defaults shared by the CLI and the API.
const (
	DefaultMaxIterations = adapt.DefaultMaxIterations
	DefaultWorkers       = corpus.DefaultWorkers
	DefaultPolicy        = correspondence.PolicyChain
)

// Options configures a Runner call.
// This struct supports JSON serialization for API requests.
type Options struct {
	MaxIterations int    `json:"max_iterations,omitempty"`
	Policy        string `json:"policy,omitempty"` // majority, histogram, or chain
	Workers       int    `json:"workers,omitempty"`
	TopK          int    `json:"top_k,omitempty"`
	Refresh       bool   `json:"refresh,omitempty"` // bypass cache reads

	// Runtime options (not serialized)
	Costs  *cost.Config `json:"-"`
	Logger *log.Logger  `json:"-"`

	policy    correspondence.NetworkPolicy
	validated bool
}

// ValidateAndSetDefaults checks the options and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.MaxIterations < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "max_iterations must be positive, got %d", o.MaxIterations)
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Workers < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "workers must be positive, got %d", o.Workers)
	}
	if o.TopK < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "top_k must not be negative, got %d", o.TopK)
	}
	if o.Policy == "" {
		o.Policy = DefaultPolicy
	}
	p, err := correspondence.PolicyByName(o.Policy)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidOptions, err, "policy")
	}
	o.policy = p

	if o.Costs == nil {
		o.Costs = cost.Default()
	}
	if err := o.Costs.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidCostConfig, err, "cost config")
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.validated = true
	return nil
}

// AdaptKeyOpts returns the cache key options for an adaptation.
func (o *Options) AdaptKeyOpts() cache.AdaptKeyOpts {
	return cache.AdaptKeyOpts{
		CostHash:      o.Costs.Hash(),
		MaxIterations: o.MaxIterations,
		Policy:        o.Policy,
	}
}

// RankKeyOpts returns the cache key options for a ranking.
func (o *Options) RankKeyOpts() cache.RankKeyOpts {
	return cache.RankKeyOpts{
		CostHash: o.Costs.Hash(),
		Policy:   o.Policy,
		TopK:     o.TopK,
	}
}

func (o *Options) correspondenceOptions() []correspondence.Option {
	return []correspondence.Option{correspondence.WithNetworkPolicy(o.policy)}
}

func (o *Options) String() string {
	return fmt.Sprintf("max_iterations=%d policy=%s workers=%d top_k=%d", o.MaxIterations, o.Policy, o.Workers, o.TopK)
}
