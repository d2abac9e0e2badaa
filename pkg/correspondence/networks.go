package correspondence

import (
	"fmt"

	"github.com/matzehuels/schemadapt/pkg/bpc"
)

// NetworkInput is what a [NetworkPolicy] sees when lifting a box
// correspondence to networks.
type NetworkInput struct {
	Source *bpc.Graph
	Target *bpc.Graph

	// Pins maps source pin node IDs to target pin node IDs.
	Pins map[string]string

	// Unmatched lists source networks still without a partner, in first-appearance order.
	Unmatched []string

	// Available lists target networks not yet taken, in first-appearance order.
	Available []string
}

// NetworkPolicy decides which source networks correspond to which target
// networks. Implementations must return an injective mapping restricted to
// in.Unmatched and in.Available, and must be deterministic.
type NetworkPolicy func(in NetworkInput) map[string]string

// Policy names accepted by [PolicyByName].
const (
	PolicyMajority  = "majority"
	PolicyHistogram = "histogram"
	PolicyChain     = "chain"
)

// DefaultNetworkPolicy runs the majority vote first and falls back to color
// histograms for networks the vote left open.
var DefaultNetworkPolicy = Chain(MajorityVote, ColorHistogram)

// PolicyByName returns the policy registered under name.
func PolicyByName(name string) (NetworkPolicy, error) {
	switch name {
	case "", PolicyChain:
		return DefaultNetworkPolicy, nil
	case PolicyMajority:
		return MajorityVote, nil
	case PolicyHistogram:
		return ColorHistogram, nil
	}
	return nil, fmt.Errorf("unknown network policy %q (must be one of: %s, %s, %s)",
		name, PolicyChain, PolicyMajority, PolicyHistogram)
}

// MajorityVote maps a source network to the target network that receives a
// strict majority of its mapped pins. Networks whose pins are mostly
// unmapped, or split without a majority, stay open.
func MajorityVote(in NetworkInput) map[string]string {
	available := make(map[string]bool, len(in.Available))
	for _, t := range in.Available {
		available[t] = true
	}

	out := make(map[string]string)
	for _, s := range in.Unmatched {
		votes := make(map[string]int)
		var order []string
		total := 0
		for _, p := range in.Source.NetworkPins(s) {
			tgtPinID, ok := in.Pins[p.NodeID()]
			if !ok {
				continue
			}
			total++
			tp, ok := in.Target.PinByNodeID(tgtPinID)
			if !ok || !available[tp.NetworkID] {
				continue
			}
			if votes[tp.NetworkID] == 0 {
				order = append(order, tp.NetworkID)
			}
			votes[tp.NetworkID]++
		}
		for _, t := range order {
			if 2*votes[t] > total {
				out[s] = t
				delete(available, t)
				break
			}
		}
	}
	return out
}

// ColorHistogram matches networks by their pin color histograms using the
// same exact-then-Jaccard procedure as boxes.
func ColorHistogram(in NetworkInput) map[string]string {
	srcH := make(map[string]Histogram, len(in.Unmatched))
	for _, s := range in.Unmatched {
		srcH[s] = networkHistogram(in.Source, s)
	}
	tgtH := make(map[string]Histogram, len(in.Available))
	for _, t := range in.Available {
		tgtH[t] = networkHistogram(in.Target, t)
	}
	return assignByHistogram(in.Unmatched, srcH, in.Available, tgtH)
}

// Chain applies policies in order. Each policy only sees the networks the
// previous ones left unmatched.
func Chain(policies ...NetworkPolicy) NetworkPolicy {
	return func(in NetworkInput) map[string]string {
		out := make(map[string]string)
		for _, p := range policies {
			if len(in.Unmatched) == 0 || len(in.Available) == 0 {
				break
			}
			got := p(in)
			taken := make(map[string]bool, len(got))
			for s, t := range got {
				out[s] = t
				taken[t] = true
			}
			in.Unmatched = without(in.Unmatched, func(s string) bool { _, ok := got[s]; return ok })
			in.Available = without(in.Available, func(t string) bool { return taken[t] })
		}
		return out
	}
}

func networkHistogram(g *bpc.Graph, net string) Histogram {
	h := make(Histogram)
	for _, p := range g.NetworkPins(net) {
		h[p.Color]++
	}
	return h
}

func without(ids []string, drop func(string) bool) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !drop(id) {
			out = append(out, id)
		}
	}
	return out
}
