package correspondence

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/schemadapt/pkg/bpc"
)

// distanceEpsilon treats offsets closer than this as the same position
// when looking for a unique nearest pin.
const distanceEpsilon = 1e-9

// pairPins maps the pins of a matched box pair. Source pins are visited in
// declaration order, and each pass only considers pins left open by the
// previous one:
//
//  1. same pin ID
//  2. the only remaining target pin with the same color, or the unique
//     nearest one by offset among several
//  3. the unique nearest remaining target pin of any color
//
// Ties leave the source pin unmapped.
func pairPins(src, tgt []bpc.Pin) map[string]string {
	out := make(map[string]string)
	taken := make([]bool, len(tgt))
	done := make([]bool, len(src))

	for i, sp := range src {
		for j, tp := range tgt {
			if !taken[j] && sp.ID == tp.ID {
				out[sp.NodeID()] = tp.NodeID()
				taken[j], done[i] = true, true
				break
			}
		}
	}

	for i, sp := range src {
		if done[i] {
			continue
		}
		j := nearest(sp, tgt, taken, func(tp bpc.Pin) bool { return tp.Color == sp.Color })
		if j >= 0 {
			out[sp.NodeID()] = tgt[j].NodeID()
			taken[j], done[i] = true, true
		}
	}

	for i, sp := range src {
		if done[i] {
			continue
		}
		j := nearest(sp, tgt, taken, func(bpc.Pin) bool { return true })
		if j >= 0 {
			out[sp.NodeID()] = tgt[j].NodeID()
			taken[j], done[i] = true, true
		}
	}
	return out
}

// nearest returns the index of the unique closest untaken candidate, or -1
// when there is none or the closest distance is shared.
func nearest(sp bpc.Pin, tgt []bpc.Pin, taken []bool, eligible func(bpc.Pin) bool) int {
	best, bestDist, tied := -1, 0.0, false
	for j, tp := range tgt {
		if taken[j] || !eligible(tp) {
			continue
		}
		d := r2.Norm(r2.Sub(sp.Offset, tp.Offset))
		switch {
		case best < 0 || d < bestDist-distanceEpsilon:
			best, bestDist, tied = j, d, false
		case d <= bestDist+distanceEpsilon:
			tied = true
		}
	}
	if tied {
		return -1
	}
	return best
}
