package adapt

import (
	"github.com/matzehuels/schemadapt/pkg/adjacency"
	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/correspondence"
	"github.com/matzehuels/schemadapt/pkg/editscript"
)

// Diff returns the script of a single round from a to b without applying
// it, together with the correspondence it was derived from. Pin colors and
// offsets are not part of the script.
func Diff(a, b *bpc.Graph, opts ...correspondence.Option) ([]editscript.Operation, correspondence.Result, error) {
	if err := checkGraphs(a, b); err != nil {
		return nil, correspondence.Result{}, err
	}
	corr := correspondence.Solve(a, b, opts...)
	ops, err := editscript.Synthesize(adjacency.FromGraph(a), adjacency.FromGraph(b), corr.Nodes)
	if err != nil {
		return nil, corr, err
	}
	return ops, corr, nil
}
