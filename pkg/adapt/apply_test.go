package adapt

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/schemadapt/pkg/adjacency"
	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/correspondence"
	"github.com/matzehuels/schemadapt/pkg/editscript"
)

// playRound applies one synthesized script to g and returns the applier.
func playRound(t *testing.T, g, target *bpc.Graph) *applier {
	t.Helper()
	corr := correspondence.Solve(g, target)
	src := adjacency.FromGraph(g)
	ops, err := editscript.Synthesize(src, adjacency.FromGraph(target), corr.Nodes)
	require.NoError(t, err)

	a := newApplier(g, target, src, corr)
	for _, op := range ops {
		require.NoError(t, a.apply(op))
	}
	g.Reorder(a.order())
	return a
}

func TestApplier_GraphFollowsMirror(t *testing.T) {
	for seed := range uint64(500) {
		rng := rand.New(rand.NewPCG(seed, 11))
		g, target := randomGraph(t, rng), randomGraph(t, rng)
		a := playRound(t, g, target)

		got := adjacency.FromGraph(g)
		assert.True(t, got.SameStructure(a.mirror), "seed %d: graph\n%v\nmirror\n%v", seed, got.Rows(), a.mirror.Rows())
		assert.True(t, a.mirror.SameStructure(adjacency.FromGraph(target)), "seed %d: mirror differs from target", seed)
	}
}

func TestApplier_DisconnectRegroupsByTarget(t *testing.T) {
	g := graphOf(t, []string{"A", "B", "C"},
		pin{box: "A", id: "1", net: "x", color: bpc.ColorSignal},
		pin{box: "B", id: "1", net: "x", color: bpc.ColorPower},
		pin{box: "C", id: "1", net: "x", color: bpc.ColorGround},
	)
	target := graphOf(t, []string{"A", "B", "C"},
		pin{box: "A", id: "1", net: "p", color: bpc.ColorSignal},
		pin{box: "B", id: "1", net: "q", color: bpc.ColorPower},
		pin{box: "C", id: "1", net: "q", color: bpc.ColorGround},
	)
	playRound(t, g, target)

	a1, _ := g.PinByNodeID(bpc.PinNodeID("A", "1"))
	b1, _ := g.PinByNodeID(bpc.PinNodeID("B", "1"))
	c1, _ := g.PinByNodeID(bpc.PinNodeID("C", "1"))
	assert.Equal(t, b1.NetworkID, c1.NetworkID)
	assert.NotEqual(t, a1.NetworkID, b1.NetworkID)
}

func TestApplier_UntrackedDisconnectMovesSecondPin(t *testing.T) {
	g := graphOf(t, []string{"A", "B"},
		pin{box: "A", id: "1", net: "x"},
		pin{box: "B", id: "1", net: "x"},
	)
	a := newApplier(g, g, adjacency.FromGraph(g), correspondence.Result{})
	require.NoError(t, a.disconnect(bpc.PinNodeID("A", "1"), bpc.PinNodeID("B", "1")))

	a1, _ := g.PinByNodeID(bpc.PinNodeID("A", "1"))
	b1, _ := g.PinByNodeID(bpc.PinNodeID("B", "1"))
	assert.Equal(t, "x", a1.NetworkID)
	assert.NotEqual(t, "x", b1.NetworkID)
	assert.NotEmpty(t, b1.NetworkID)
}

func TestApplier_ConnectUnconnectedPins(t *testing.T) {
	g := graphOf(t, []string{"A", "B"},
		pin{box: "A", id: "1"},
		pin{box: "B", id: "1"},
	)
	a := newApplier(g, g, adjacency.FromGraph(g), correspondence.Result{})
	require.NoError(t, a.connect(bpc.PinNodeID("A", "1"), bpc.PinNodeID("B", "1")))

	a1, _ := g.PinByNodeID(bpc.PinNodeID("A", "1"))
	b1, _ := g.PinByNodeID(bpc.PinNodeID("B", "1"))
	assert.NotEmpty(t, a1.NetworkID)
	assert.Equal(t, a1.NetworkID, b1.NetworkID)
}

func TestAlignPins(t *testing.T) {
	initial := graphOf(t, []string{"A"}, pin{box: "A", id: "1", color: bpc.ColorSignal})
	target := graphOf(t, []string{"A"}, pin{box: "A", id: "1", color: bpc.ColorPower, off: r2.Vec{X: 3, Y: 4}})
	tr, err := New(initial, target, unitCosts())
	require.NoError(t, err)

	pins := correspondence.Mapping{
		bpc.PinNodeID("A", "1"): bpc.PinNodeID("A", "1"),
		bpc.PinNodeID("A", "9"): bpc.PinNodeID("A", "1"),
	}
	recolors, moves, total, err := tr.alignPins(pins)
	require.NoError(t, err)
	assert.Equal(t, 1, recolors)
	assert.Equal(t, 1, moves)
	assert.InDelta(t, 1.0, total, 1e-9)

	p, ok := tr.Graph().PinByNodeID(bpc.PinNodeID("A", "1"))
	require.True(t, ok)
	assert.Equal(t, bpc.ColorPower, p.Color)
	assert.Equal(t, r2.Vec{X: 3, Y: 4}, p.Offset)
}
