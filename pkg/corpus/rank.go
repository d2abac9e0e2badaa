package corpus

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/schemadapt/pkg/adapt"
	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/correspondence"
	"github.com/matzehuels/schemadapt/pkg/cost"
)

// Match is one ranked template.
type Match struct {
	Name     string         `json:"name"`
	Distance adapt.Distance `json:"distance"`
}

// RankOptions configures Rank.
type RankOptions struct {
	// Workers bounds parallel distance evaluations. Zero means DefaultWorkers.
	Workers int
	// TopK truncates the result. Zero keeps every template.
	TopK int
	// Policy overrides the network correspondence policy.
	Policy correspondence.NetworkPolicy
}

// Rank scores every template by its heuristic distance to target and
// returns the matches ordered by distance, then by name.
func Rank(ctx context.Context, target *bpc.Graph, templates []Template, costs *cost.Config, opts RankOptions) ([]Match, error) {
	if target == nil {
		return nil, fmt.Errorf("nil target: %w", adapt.ErrInvalidGraph)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	var corrOpts []correspondence.Option
	if opts.Policy != nil {
		corrOpts = append(corrOpts, correspondence.WithNetworkPolicy(opts.Policy))
	}

	matches := make([]Match, len(templates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, t := range templates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := adapt.HeuristicDistance(t.Graph, target, costs, corrOpts...)
			if err != nil {
				return fmt.Errorf("template %s: %w", t.Name, err)
			}
			matches[i] = Match{Name: t.Name, Distance: d}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(a.Distance.Value, b.Distance.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if opts.TopK > 0 && opts.TopK < len(matches) {
		matches = matches[:opts.TopK]
	}
	return matches, nil
}
