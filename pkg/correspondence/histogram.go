package correspondence

import (
	"maps"

	"github.com/matzehuels/schemadapt/pkg/bpc"
)

// Histogram counts pins per color.
type Histogram map[bpc.Color]int

// Equal reports whether both histograms describe the same multiset.
// Zero counts are ignored.
func (h Histogram) Equal(o Histogram) bool {
	return maps.EqualFunc(h.compact(), o.compact(), func(a, b int) bool { return a == b })
}

// Jaccard returns |A∩B| / |A∪B| over the sets of colors present in h and o.
// Counts do not matter. Two empty histograms score 0.
func (h Histogram) Jaccard(o Histogram) float64 {
	a, b := h.compact(), o.compact()
	union := len(a)
	inter := 0
	for c := range b {
		if _, ok := a[c]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func (h Histogram) compact() map[bpc.Color]int {
	out := make(map[bpc.Color]int, len(h))
	for c, n := range h {
		if n > 0 {
			out[c] = n
		}
	}
	return out
}

// assignByHistogram pairs keys of src with keys of tgt in two phases.
//
// Exact phase: each source key, in order, takes the first unassigned target
// key with an identical histogram. Greedy phase: each remaining source key,
// in order, takes the remaining target key with the highest Jaccard score;
// a score of 0 never matches and ties go to the earlier target.
func assignByHistogram(src []string, srcH map[string]Histogram, tgt []string, tgtH map[string]Histogram) map[string]string {
	out := make(map[string]string)
	taken := make(map[string]bool, len(tgt))

	var pending []string
	for _, s := range src {
		matched := false
		for _, t := range tgt {
			if taken[t] || !srcH[s].Equal(tgtH[t]) {
				continue
			}
			out[s] = t
			taken[t] = true
			matched = true
			break
		}
		if !matched {
			pending = append(pending, s)
		}
	}

	for _, s := range pending {
		best, bestScore := "", 0.0
		for _, t := range tgt {
			if taken[t] {
				continue
			}
			if score := srcH[s].Jaccard(tgtH[t]); score > bestScore {
				best, bestScore = t, score
			}
		}
		if best != "" {
			out[s] = best
			taken[best] = true
		}
	}
	return out
}
