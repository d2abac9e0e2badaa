// Package correspondence computes a best-effort partial mapping between the
// boxes, networks, and flattened nodes of two box-pin-color graphs.
//
// The solver is approximate and deterministic:
//
//  1. Each box is summarized by a histogram of its pin colors.
//  2. Exact phase: source boxes take the first unassigned target box with an
//     identical histogram, in declaration order.
//  3. Greedy phase: remaining source boxes take the unassigned target box with
//     the highest Jaccard similarity of their color sets. A score of 0 never
//     matches.
//  4. Networks are matched by a swappable [NetworkPolicy].
//  5. Pins are paired only inside matched box pairs, and only when the
//     pairing is unambiguous.
//
// Ties are always resolved by declaration order, so identical inputs give
// identical mappings. Empty graphs yield empty mappings.
package correspondence

import (
	"slices"

	"github.com/matzehuels/schemadapt/pkg/bpc"
)

// Mapping is a partial injective mapping from source IDs to target IDs.
type Mapping map[string]string

// Inverse returns the target→source mapping.
func (m Mapping) Inverse() Mapping {
	inv := make(Mapping, len(m))
	for s, t := range m {
		inv[t] = s
	}
	return inv
}

// Keys returns the source IDs in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Result holds the three mappings produced by [Solve].
type Result struct {
	Boxes    Mapping // source box ID → target box ID
	Networks Mapping // source network ID → target network ID
	Nodes    Mapping // source node ID → target node ID (boxes and pins)
}

// Pins returns the pin part of Nodes.
func (r Result) Pins() Mapping {
	out := make(Mapping)
	for s, t := range r.Nodes {
		if bpc.IsPinNode(s) {
			out[s] = t
		}
	}
	return out
}

type options struct {
	policy NetworkPolicy
}

// Option configures [Solve].
type Option func(*options)

// WithNetworkPolicy replaces [DefaultNetworkPolicy].
func WithNetworkPolicy(p NetworkPolicy) Option {
	return func(o *options) {
		if p != nil {
			o.policy = p
		}
	}
}

// Solve computes the correspondence from src to tgt. Neither graph is modified.
func Solve(src, tgt *bpc.Graph, opts ...Option) Result {
	o := options{policy: DefaultNetworkPolicy}
	for _, opt := range opts {
		opt(&o)
	}

	boxes := Mapping(matchBoxes(src, tgt))

	nodes := make(Mapping, len(boxes))
	for _, s := range src.Boxes() {
		t, ok := boxes[s.ID]
		if !ok {
			continue
		}
		nodes[s.ID] = t
		for sp, tp := range pairPins(src.PinsOf(s.ID), tgt.PinsOf(t)) {
			nodes[sp] = tp
		}
	}

	pins := make(map[string]string)
	for s, t := range nodes {
		if bpc.IsPinNode(s) {
			pins[s] = t
		}
	}
	networks := o.policy(NetworkInput{
		Source:    src,
		Target:    tgt,
		Pins:      pins,
		Unmatched: src.Networks(),
		Available: tgt.Networks(),
	})

	return Result{
		Boxes:    boxes,
		Networks: Mapping(networks),
		Nodes:    nodes,
	}
}

// BoxHistograms returns the color histogram of every box, keyed by box ID.
func BoxHistograms(g *bpc.Graph) map[string]Histogram {
	out := make(map[string]Histogram, g.BoxCount())
	for _, b := range g.Boxes() {
		out[b.ID] = make(Histogram)
	}
	for _, p := range g.Pins() {
		out[p.BoxID][p.Color]++
	}
	return out
}

func matchBoxes(src, tgt *bpc.Graph) map[string]string {
	return assignByHistogram(boxIDs(src), BoxHistograms(src), boxIDs(tgt), BoxHistograms(tgt))
}

func boxIDs(g *bpc.Graph) []string {
	ids := make([]string, 0, g.BoxCount())
	for _, b := range g.Boxes() {
		ids = append(ids, b.ID)
	}
	return ids
}
