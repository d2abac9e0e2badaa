package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schemadapt/pkg/adapt"
	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/cache"
	"github.com/matzehuels/schemadapt/pkg/corpus"
	"github.com/matzehuels/schemadapt/pkg/editscript"
	"github.com/matzehuels/schemadapt/pkg/graph"
	"github.com/matzehuels/schemadapt/pkg/observability"
)

// Runner executes adaptations with caching.
//
// The Runner holds no per-call state, so multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Adapt transforms template toward target and returns the final graph, the
// applied script, and the accumulated cost. Results are cached by the
// content of both graphs and the options.
func (r *Runner) Adapt(ctx context.Context, template, target *bpc.Graph, opts Options) (*AdaptResult, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}
	th, err := graphHash(template)
	if err != nil {
		return nil, Classify("adapt", err)
	}
	ch, err := graphHash(target)
	if err != nil {
		return nil, Classify("adapt", err)
	}
	key := r.Keyer.AdaptKey(th, ch, opts.AdaptKeyOpts())

	if !opts.Refresh {
		var cached AdaptResult
		if r.lookup(ctx, cache.KindAdapt, key, &cached) {
			cached.CacheHit = true
			opts.Logger.Info("adaptation cache hit", "state", cached.State, "cost", cached.Cost)
			return &cached, nil
		}
	}

	tr, err := adapt.New(template, target, opts.Costs,
		adapt.WithMaxIterations(opts.MaxIterations),
		adapt.WithNetworkPolicy(opts.policy),
		adapt.WithLogger(opts.Logger))
	if err != nil {
		return nil, Classify("adapt", err)
	}

	start := time.Now()
	observability.Adapt().OnAdaptStart(ctx, template.BoxCount(), template.PinCount())
	res, err := tr.SolveContext(ctx)
	observability.Adapt().OnAdaptComplete(ctx, res.State.String(), res.Iterations, res.Cost, time.Since(start), err)
	if err != nil {
		return nil, Classify("adapt", err)
	}

	out := newAdaptResult(res)
	r.store(ctx, cache.KindAdapt, key, out, cache.TTLAdapt)
	return out, nil
}

// Rank loads every template of src and orders them by heuristic distance
// to target. The bool result reports a cache hit.
func (r *Runner) Rank(ctx context.Context, target *bpc.Graph, src corpus.Source, opts Options) ([]corpus.Match, bool, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, false, err
	}
	templates, err := corpus.LoadAll(ctx, src, opts.Workers)
	if err != nil {
		return nil, false, Classify("load corpus", err)
	}
	return r.RankTemplates(ctx, target, templates, opts)
}

// RankTemplates is Rank over already loaded templates.
func (r *Runner) RankTemplates(ctx context.Context, target *bpc.Graph, templates []corpus.Template, opts Options) ([]corpus.Match, bool, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, false, err
	}
	th, err := graphHash(target)
	if err != nil {
		return nil, false, Classify("rank", err)
	}
	corpusHash, err := templatesHash(templates)
	if err != nil {
		return nil, false, Classify("rank", err)
	}
	key := r.Keyer.RankKey(corpusHash, th, opts.RankKeyOpts())

	if !opts.Refresh {
		var cached []corpus.Match
		if r.lookup(ctx, cache.KindRank, key, &cached) {
			return cached, true, nil
		}
	}

	start := time.Now()
	observability.Adapt().OnRankStart(ctx, len(templates))
	matches, err := corpus.Rank(ctx, target, templates, opts.Costs, corpus.RankOptions{
		Workers: opts.Workers,
		TopK:    opts.TopK,
		Policy:  opts.policy,
	})
	observability.Adapt().OnRankComplete(ctx, len(templates), time.Since(start), err)
	if err != nil {
		return nil, false, Classify("rank", err)
	}
	opts.Logger.Info("ranked corpus",
		"templates", len(templates),
		"returned", len(matches),
		"duration", time.Since(start))

	r.store(ctx, cache.KindRank, key, matches, cache.TTLRank)
	return matches, false, nil
}

// Distance returns the heuristic distance from a to b. The bool result
// reports a cache hit.
func (r *Runner) Distance(ctx context.Context, a, b *bpc.Graph, opts Options) (adapt.Distance, bool, error) {
	if err := r.prepare(&opts); err != nil {
		return adapt.Distance{}, false, err
	}
	ah, err := graphHash(a)
	if err != nil {
		return adapt.Distance{}, false, Classify("distance", err)
	}
	bh, err := graphHash(b)
	if err != nil {
		return adapt.Distance{}, false, Classify("distance", err)
	}
	key := r.Keyer.DistanceKey(ah, bh, cache.DistanceKeyOpts{CostHash: opts.Costs.Hash(), Policy: opts.Policy})

	var d adapt.Distance
	if !opts.Refresh && r.lookup(ctx, cache.KindDistance, key, &d) {
		return d, true, nil
	}

	start := time.Now()
	d, err = adapt.HeuristicDistance(a, b, opts.Costs, opts.correspondenceOptions()...)
	if err != nil {
		return adapt.Distance{}, false, Classify("distance", err)
	}
	observability.Adapt().OnDistance(ctx, time.Since(start))

	r.store(ctx, cache.KindDistance, key, d, cache.TTLDistance)
	return d, false, nil
}

// Diff returns the first-round edit script from a to b without applying it.
func (r *Runner) Diff(_ context.Context, a, b *bpc.Graph, opts Options) (*DiffResult, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}
	ops, corr, err := adapt.Diff(a, b, opts.correspondenceOptions()...)
	if err != nil {
		return nil, Classify("diff", err)
	}
	opts.Logger.Debug("diff", "ops", len(ops), "boxes", len(corr.Boxes), "networks", len(corr.Networks))
	return &DiffResult{
		Script:   ops,
		Stats:    editscript.Summarize(ops),
		Boxes:    corr.Boxes,
		Networks: corr.Networks,
		Pins:     corr.Pins(),
	}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) prepare(opts *Options) error {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	opts.Logger.Debug("options", "opts", opts.String())
	return nil
}

// lookup decodes a cached value into v. Read and decode failures count as
// misses.
func (r *Runner) lookup(ctx context.Context, kind, key string, v any) bool {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "kind", kind, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, kind)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		r.Logger.Warn("discarding unreadable cache entry", "kind", kind, "err", err)
		observability.Cache().OnCacheMiss(ctx, kind)
		return false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	return true
}

// store caches v. Failures are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, kind, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Warn("cache encode failed", "kind", kind, "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "kind", kind, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

func graphHash(g *bpc.Graph) (string, error) {
	if g == nil {
		return "", fmt.Errorf("nil graph: %w", adapt.ErrInvalidGraph)
	}
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// templatesHash fingerprints a corpus by template names and contents.
func templatesHash(templates []corpus.Template) (string, error) {
	var b strings.Builder
	for _, t := range templates {
		h, err := graphHash(t.Graph)
		if err != nil {
			return "", fmt.Errorf("template %s: %w", t.Name, err)
		}
		fmt.Fprintf(&b, "%s=%s\n", t.Name, h)
	}
	return cache.Hash([]byte(b.String())), nil
}
