package editscript

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/matzehuels/schemadapt/pkg/adjacency"
)

// syntheticNamespace seeds the name-based UUIDs of created nodes.
var syntheticNamespace = uuid.MustParse("5d0f8a4e-3c1b-5b6e-9a57-2f4c1e0d7b93")

// SyntheticID returns the identifier given to the node created for targetID.
func SyntheticID(targetID string) string {
	return uuid.NewSHA1(syntheticNamespace, []byte(targetID)).String()
}

// Synthesize computes the script that turns src into tgt under corr, a
// partial injective mapping from source node IDs to target node IDs.
//
// Neither matrix is modified. The phases run against a private working copy
// of src and are emitted in order: deletes, creates, swaps, disconnects,
// connects. An empty script means src already equals tgt under corr.
func Synthesize(src, tgt *adjacency.Matrix, corr map[string]string) ([]Operation, error) {
	if err := validateInputs(src, tgt, corr); err != nil {
		return nil, err
	}

	w := src.Clone()
	var ops []Operation

	// Phase 1: unmapped source nodes, lowest index first. Indices are as
	// observed after the preceding deletions.
	for i := 0; i < w.Size(); {
		id := w.ID(i)
		if _, ok := corr[id]; ok {
			i++
			continue
		}
		ops = append(ops, DeleteNode{Index: i, NodeID: id})
		if err := w.DeleteAt(i); err != nil {
			return nil, err
		}
	}

	// Phase 2: target nodes without preimage, in target order.
	working := make(map[string]string, tgt.Size()) // target ID -> working ID
	for s, t := range corr {
		working[t] = s
	}
	for t := 0; t < tgt.Size(); t++ {
		tid := tgt.ID(t)
		if _, ok := working[tid]; ok {
			continue
		}
		sid := SyntheticID(tid)
		at := min(t, w.Size())
		if err := w.InsertAt(at, sid); err != nil {
			return nil, fmt.Errorf("create node for %q: %w", tid, err)
		}
		working[tid] = sid
		ops = append(ops, CreateNode{NewRowAndColumnIndex: at, NodeID: sid, TargetID: tid})
	}

	// Phase 3: selection pass, one transposition per misplaced position.
	for p := 0; p < tgt.Size(); p++ {
		q, _ := w.Index(working[tgt.ID(p)])
		if q == p {
			continue
		}
		ops = append(ops, SwapIndices{I: p, J: q, NodeA: w.ID(p), NodeB: w.ID(q)})
		if err := w.Swap(p, q); err != nil {
			return nil, err
		}
	}

	// Phases 4 and 5: positions now line up, compare entries directly.
	n := w.Size()
	var connects []Operation
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			have, want := w.Connected(i, j), tgt.Connected(i, j)
			switch {
			case have && !want:
				ops = append(ops, DisconnectNodes{I: i, J: j, NodeA: w.ID(i), NodeB: w.ID(j)})
			case want && !have:
				connects = append(connects, ConnectNodes{I: i, J: j, NodeA: w.ID(i), NodeB: w.ID(j)})
			}
		}
	}
	return append(ops, connects...), nil
}

// Apply replays ops on a copy of m and returns the result.
func Apply(m *adjacency.Matrix, ops []Operation) (*adjacency.Matrix, error) {
	out := m.Clone()
	for k, op := range ops {
		if err := op.Apply(out); err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", k, op, err)
		}
	}
	return out, nil
}

func validateInputs(src, tgt *adjacency.Matrix, corr map[string]string) error {
	if src == nil || tgt == nil {
		return fmt.Errorf("nil matrix: %w", ErrInvalidMatrix)
	}
	if err := src.Validate(); err != nil {
		return fmt.Errorf("source: %w: %w", ErrInvalidMatrix, err)
	}
	if err := tgt.Validate(); err != nil {
		return fmt.Errorf("target: %w: %w", ErrInvalidMatrix, err)
	}
	seen := make(map[string]string, len(corr))
	for s, t := range corr {
		if !src.Has(s) {
			return fmt.Errorf("%q is not a source node: %w", s, ErrInvalidCorrespondence)
		}
		if !tgt.Has(t) {
			return fmt.Errorf("%q is not a target node: %w", t, ErrInvalidCorrespondence)
		}
		if prev, dup := seen[t]; dup {
			a, b := min(prev, s), max(prev, s)
			return fmt.Errorf("%q and %q both map to %q: %w", a, b, t, ErrInvalidCorrespondence)
		}
		seen[t] = s
	}
	return nil
}
