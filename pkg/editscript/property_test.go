package editscript

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/schemadapt/pkg/adjacency"
)

// randomMatrix builds an n-node matrix with ids prefix0..prefix{n-1} and
// roughly a third of the off-diagonal pairs connected.
func randomMatrix(rng *rand.Rand, prefix string, n int) *adjacency.Matrix {
	ids := make([]string, n)
	rows := make([][]int, n)
	for i := range rows {
		ids[i] = fmt.Sprintf("%s%d", prefix, i)
		rows[i] = make([]int, n)
		rows[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.IntN(3) == 0 {
				rows[i][j], rows[j][i] = 1, 1
			}
		}
	}
	m, err := adjacency.New(ids, rows)
	if err != nil {
		panic(err)
	}
	return m
}

// randomCorrespondence pairs k randomly chosen source nodes with k randomly
// chosen target nodes.
func randomCorrespondence(rng *rand.Rand, src, tgt *adjacency.Matrix) map[string]string {
	s, t := src.IDs(), tgt.IDs()
	rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
	rng.Shuffle(len(t), func(i, j int) { t[i], t[j] = t[j], t[i] })
	k := rng.IntN(min(len(s), len(t)) + 1)
	corr := make(map[string]string, k)
	for i := 0; i < k; i++ {
		corr[s[i]] = t[i]
	}
	return corr
}

type scenario struct {
	src, tgt *adjacency.Matrix
	corr     map[string]string
}

func newScenario(m, n int, seed uint64) scenario {
	rng := rand.New(rand.NewPCG(seed, uint64(m*31+n)))
	src := randomMatrix(rng, "s", m)
	tgt := randomMatrix(rng, "t", n)
	return scenario{src: src, tgt: tgt, corr: randomCorrespondence(rng, src, tgt)}
}

func TestSynthesizeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	sizes := gen.IntRange(0, 9)

	properties.Property("self-synthesis is empty", prop.ForAll(
		func(n int, seed uint64) bool {
			m := randomMatrix(rand.New(rand.NewPCG(seed, 0)), "n", n)
			corr := make(map[string]string, n)
			for _, id := range m.IDs() {
				corr[id] = id
			}
			ops, err := Synthesize(m, m.Clone(), corr)
			return err == nil && len(ops) == 0
		},
		sizes, gen.UInt64(),
	))

	properties.Property("phases are emitted in order", prop.ForAll(
		func(m, n int, seed uint64) bool {
			sc := newScenario(m, n, seed)
			ops, err := Synthesize(sc.src, sc.tgt, sc.corr)
			if err != nil {
				return false
			}
			for i := 1; i < len(ops); i++ {
				if ops[i-1].Kind().Phase() > ops[i].Kind().Phase() {
					return false
				}
			}
			return true
		},
		sizes, sizes, gen.UInt64(),
	))

	properties.Property("one delete per unmapped source, one create per unmatched target", prop.ForAll(
		func(m, n int, seed uint64) bool {
			sc := newScenario(m, n, seed)
			ops, err := Synthesize(sc.src, sc.tgt, sc.corr)
			if err != nil {
				return false
			}
			s := Summarize(ops)
			if s.Deletes != m-len(sc.corr) || s.Creates != n-len(sc.corr) {
				return false
			}
			for _, op := range ops {
				if c, ok := op.(CreateNode); ok && (c.NewRowAndColumnIndex < 0 || c.NewRowAndColumnIndex >= n) {
					return false
				}
			}
			return true
		},
		sizes, sizes, gen.UInt64(),
	))

	properties.Property("swaps align positions with the target", prop.ForAll(
		func(m, n int, seed uint64) bool {
			sc := newScenario(m, n, seed)
			ops, err := Synthesize(sc.src, sc.tgt, sc.corr)
			if err != nil {
				return false
			}
			var structural []Operation
			for _, op := range ops {
				if op.Kind().Phase() <= KindSwapIndices.Phase() {
					structural = append(structural, op)
				}
			}
			w, err := Apply(sc.src, structural)
			if err != nil {
				return false
			}
			return alignedWith(w, sc)
		},
		sizes, sizes, gen.UInt64(),
	))

	properties.Property("replay reaches the target", prop.ForAll(
		func(m, n int, seed uint64) bool {
			sc := newScenario(m, n, seed)
			ops, err := Synthesize(sc.src, sc.tgt, sc.corr)
			if err != nil {
				return false
			}
			w, err := Apply(sc.src, ops)
			if err != nil {
				return false
			}
			return w.SameStructure(sc.tgt) && alignedWith(w, sc)
		},
		sizes, sizes, gen.UInt64(),
	))

	properties.Property("output is byte-identical across runs", prop.ForAll(
		func(m, n int, seed uint64) bool {
			a, errA := Synthesize(newScenario(m, n, seed).src, newScenario(m, n, seed).tgt, newScenario(m, n, seed).corr)
			b, errB := Synthesize(newScenario(m, n, seed).src, newScenario(m, n, seed).tgt, newScenario(m, n, seed).corr)
			if errA != nil || errB != nil {
				return false
			}
			ja, _ := MarshalScript(a)
			jb, _ := MarshalScript(b)
			return bytes.Equal(ja, jb)
		},
		sizes, sizes, gen.UInt64(),
	))

	properties.TestingRun(t)
}

// alignedWith reports whether every position of w holds the node standing
// for the target node at the same position.
func alignedWith(w *adjacency.Matrix, sc scenario) bool {
	if w.Size() != sc.tgt.Size() {
		return false
	}
	inv := make(map[string]string, len(sc.corr))
	for s, t := range sc.corr {
		inv[t] = s
	}
	for p := 0; p < w.Size(); p++ {
		tid := sc.tgt.ID(p)
		want, ok := inv[tid]
		if !ok {
			want = SyntheticID(tid)
		}
		if w.ID(p) != want {
			return false
		}
	}
	return true
}
