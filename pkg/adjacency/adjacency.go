// Package adjacency builds the flattened adjacency projection of a box-pin graph.
//
// The node set is boxes ∪ pins. Two nodes are adjacent when they belong to a
// common box group (a box together with all pins it owns) or to a common
// network group (all pins sharing a network identifier). Every node is
// adjacent to itself, so the diagonal is always 1.
//
// A [Matrix] pairs the 0/1 values with an index↔identifier table. Indices are
// view state: every structural edit ([Matrix.DeleteAt], [Matrix.InsertAt],
// [Matrix.Swap]) rebuilds the table, and callers should hold node identifiers,
// never indices, across edits.
package adjacency

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/schemadapt/pkg/bpc"
)

var (
	// ErrNotSquare is returned when the supplied rows do not form a square matrix.
	ErrNotSquare = errors.New("matrix is not square")

	// ErrDimensionMismatch is returned when the identifier table and the
	// matrix disagree on the number of nodes.
	ErrDimensionMismatch = errors.New("mapping and matrix dimensions differ")

	// ErrDuplicateNode is returned when a node identifier appears twice.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrUnknownNode is returned when a node identifier is not in the matrix.
	ErrUnknownNode = errors.New("unknown node")

	// ErrIndexOutOfRange is returned for indices outside [0, Size()).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidEntry is returned for values other than 0 and 1, or a 0 on the diagonal.
	ErrInvalidEntry = errors.New("invalid matrix entry")
)

// Matrix is a symmetric 0/1 adjacency matrix with a stable index↔ID table.
//
// The zero value is an empty matrix.
type Matrix struct {
	data  *mat.Dense // nil when the matrix is empty
	ids   []string
	index map[string]int
}

// FromGraph projects g using its default node order (boxes, then pins).
func FromGraph(g *bpc.Graph) *Matrix {
	m, err := FromGraphOrdered(g, g.NodeIDs())
	if err != nil {
		// NodeIDs is always a permutation of the graph's nodes.
		panic(fmt.Sprintf("adjacency: %v", err))
	}
	return m
}

// FromGraphOrdered projects g with rows and columns in the given order.
// order must be a permutation of g.NodeIDs().
func FromGraphOrdered(g *bpc.Graph, order []string) (*Matrix, error) {
	if len(order) != g.NodeCount() {
		return nil, fmt.Errorf("order has %d nodes, graph has %d: %w", len(order), g.NodeCount(), ErrDimensionMismatch)
	}
	m, err := empty(order)
	if err != nil {
		return nil, err
	}
	for _, id := range order {
		if !g.HasNode(id) {
			return nil, fmt.Errorf("%q: %w", id, ErrUnknownNode)
		}
	}

	var groups [][]string
	for _, b := range g.Boxes() {
		group := []string{b.ID}
		for _, p := range g.PinsOf(b.ID) {
			group = append(group, p.NodeID())
		}
		groups = append(groups, group)
	}
	for _, net := range g.Networks() {
		var group []string
		for _, p := range g.NetworkPins(net) {
			group = append(group, p.NodeID())
		}
		groups = append(groups, group)
	}

	for _, group := range groups {
		for _, a := range group {
			for _, b := range group {
				m.data.Set(m.index[a], m.index[b], 1)
			}
		}
	}
	return m, nil
}

// New builds a matrix from explicit rows. rows must be square with one row per id,
// contain only 0 and 1, and have 1 on the diagonal. Symmetry is enforced by
// treating an edge in either triangle as an edge in both.
func New(ids []string, rows [][]int) (*Matrix, error) {
	if len(rows) != len(ids) {
		return nil, fmt.Errorf("%d ids, %d rows: %w", len(ids), len(rows), ErrDimensionMismatch)
	}
	for i, row := range rows {
		if len(row) != len(rows) {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), len(rows), ErrNotSquare)
		}
	}
	m, err := empty(ids)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		for j, v := range row {
			if v != 0 && v != 1 {
				return nil, fmt.Errorf("(%d,%d)=%d: %w", i, j, v, ErrInvalidEntry)
			}
			if i == j && v != 1 {
				return nil, fmt.Errorf("diagonal (%d,%d) must be 1: %w", i, j, ErrInvalidEntry)
			}
			if v == 1 {
				m.data.Set(i, j, 1)
				m.data.Set(j, i, 1)
			}
		}
	}
	return m, nil
}

// Identity returns a matrix with no edges besides self-identity.
func Identity(ids []string) (*Matrix, error) {
	return empty(ids)
}

func empty(ids []string) (*Matrix, error) {
	m := &Matrix{ids: slices.Clone(ids)}
	if err := m.reindex(); err != nil {
		return nil, err
	}
	if n := len(ids); n > 0 {
		m.data = mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			m.data.Set(i, i, 1)
		}
	}
	return m, nil
}

// Size returns the number of nodes (the matrix dimension).
func (m *Matrix) Size() int { return len(m.ids) }

// At returns the 0/1 entry at (i, j). It panics on out-of-range indices.
func (m *Matrix) At(i, j int) int {
	if m.data == nil || i < 0 || j < 0 || i >= len(m.ids) || j >= len(m.ids) {
		panic(fmt.Sprintf("adjacency: At(%d, %d) on %d×%d matrix", i, j, len(m.ids), len(m.ids)))
	}
	return int(m.data.At(i, j))
}

// Connected reports whether the nodes at i and j share a group.
func (m *Matrix) Connected(i, j int) bool { return m.At(i, j) == 1 }

// ID returns the node identifier at index i.
func (m *Matrix) ID(i int) string { return m.ids[i] }

// Index returns the current index of a node identifier.
func (m *Matrix) Index(id string) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// IDs returns a copy of the identifiers in index order.
func (m *Matrix) IDs() []string { return slices.Clone(m.ids) }

// Has reports whether id is a node of the matrix.
func (m *Matrix) Has(id string) bool {
	_, ok := m.index[id]
	return ok
}

// Connect sets (i, j) and (j, i) to 1.
func (m *Matrix) Connect(i, j int) error { return m.set(i, j, 1) }

// Disconnect sets (i, j) and (j, i) to 0. The diagonal cannot be cleared.
func (m *Matrix) Disconnect(i, j int) error {
	if i == j {
		return fmt.Errorf("disconnect (%d,%d): %w", i, j, ErrInvalidEntry)
	}
	return m.set(i, j, 0)
}

func (m *Matrix) set(i, j int, v float64) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	if err := m.checkIndex(j); err != nil {
		return err
	}
	m.data.Set(i, j, v)
	m.data.Set(j, i, v)
	return nil
}

// DeleteAt removes row and column i. Higher indices shift down by one.
func (m *Matrix) DeleteAt(i int) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	n := len(m.ids)
	keep := make([]int, 0, n-1)
	for k := 0; k < n; k++ {
		if k != i {
			keep = append(keep, k)
		}
	}
	m.data = m.project(keep, n-1)
	m.ids = slices.Delete(m.ids, i, i+1)
	return m.reindex()
}

// InsertAt inserts an isolated node at index i (0 ≤ i ≤ Size()).
// Nodes at i and above shift up by one.
func (m *Matrix) InsertAt(i int, id string) error {
	n := len(m.ids)
	if i < 0 || i > n {
		return fmt.Errorf("insert at %d into %d nodes: %w", i, n, ErrIndexOutOfRange)
	}
	if _, exists := m.index[id]; exists {
		return fmt.Errorf("insert %q: %w", id, ErrDuplicateNode)
	}
	src := make([]int, 0, n+1) // -1 marks the new node
	for k := 0; k < n; k++ {
		if k == i {
			src = append(src, -1)
		}
		src = append(src, k)
	}
	if i == n {
		src = append(src, -1)
	}
	m.data = m.project(src, n+1)
	m.ids = slices.Insert(m.ids, i, id)
	return m.reindex()
}

// Swap exchanges rows and columns i and j together with their identifiers.
func (m *Matrix) Swap(i, j int) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	if err := m.checkIndex(j); err != nil {
		return err
	}
	if i == j {
		return nil
	}
	n := len(m.ids)
	perm := make([]int, n)
	for k := range perm {
		perm[k] = k
	}
	perm[i], perm[j] = j, i
	m.data = m.project(perm, n)
	m.ids[i], m.ids[j] = m.ids[j], m.ids[i]
	return m.reindex()
}

// project builds a fresh n×n matrix whose entry (a, b) is the old entry
// (src[a], src[b]). A source of -1 denotes a new isolated node.
func (m *Matrix) project(src []int, n int) *mat.Dense {
	if n == 0 {
		return nil
	}
	out := mat.NewDense(n, n, nil)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			switch {
			case a == b:
				out.Set(a, b, 1)
			case src[a] < 0 || src[b] < 0:
			default:
				out.Set(a, b, m.data.At(src[a], src[b]))
			}
		}
	}
	return out
}

// Clone returns an independent copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{ids: slices.Clone(m.ids)}
	if m.data != nil {
		c.data = mat.DenseCopyOf(m.data)
	}
	_ = c.reindex()
	return c
}

// Equal reports whether both matrices have the same identifiers in the same
// order and the same entries.
func (m *Matrix) Equal(o *Matrix) bool {
	if !slices.Equal(m.ids, o.ids) {
		return false
	}
	return m.SameStructure(o)
}

// SameStructure reports whether both matrices have equal entries, ignoring
// identifiers.
func (m *Matrix) SameStructure(o *Matrix) bool {
	if len(m.ids) != len(o.ids) {
		return false
	}
	if m.data == nil || o.data == nil {
		return m.data == nil && o.data == nil
	}
	return mat.Equal(m.data, o.data)
}

// EdgeCount returns the number of off-diagonal edges (each pair counted once).
func (m *Matrix) EdgeCount() int {
	n := 0
	for i := 0; i < len(m.ids); i++ {
		for j := i + 1; j < len(m.ids); j++ {
			if m.data.At(i, j) == 1 {
				n++
			}
		}
	}
	return n
}

// Validate checks the structural invariants: square, dimension matches the
// identifier table, 0/1 entries, unit diagonal, symmetry.
func (m *Matrix) Validate() error {
	n := len(m.ids)
	if m.data == nil {
		if n != 0 {
			return fmt.Errorf("%d ids, empty matrix: %w", n, ErrDimensionMismatch)
		}
		return nil
	}
	r, c := m.data.Dims()
	if r != c {
		return fmt.Errorf("%d×%d: %w", r, c, ErrNotSquare)
	}
	if r != n || len(m.index) != n {
		return fmt.Errorf("%d ids, %d×%d matrix: %w", n, r, c, ErrDimensionMismatch)
	}
	for i := 0; i < n; i++ {
		if m.data.At(i, i) != 1 {
			return fmt.Errorf("diagonal %d: %w", i, ErrInvalidEntry)
		}
		for j := 0; j < n; j++ {
			v := m.data.At(i, j)
			if (v != 0 && v != 1) || v != m.data.At(j, i) {
				return fmt.Errorf("(%d,%d): %w", i, j, ErrInvalidEntry)
			}
		}
	}
	return nil
}

// Rows returns the entries as a slice of int rows.
func (m *Matrix) Rows() [][]int {
	n := len(m.ids)
	rows := make([][]int, n)
	for i := range rows {
		rows[i] = make([]int, n)
		for j := range rows[i] {
			rows[i][j] = int(m.data.At(i, j))
		}
	}
	return rows
}

func (m *Matrix) checkIndex(i int) error {
	if i < 0 || i >= len(m.ids) {
		return fmt.Errorf("index %d of %d: %w", i, len(m.ids), ErrIndexOutOfRange)
	}
	return nil
}

func (m *Matrix) reindex() error {
	m.index = make(map[string]int, len(m.ids))
	for i, id := range m.ids {
		if id == "" {
			return fmt.Errorf("index %d: %w", i, ErrUnknownNode)
		}
		if _, dup := m.index[id]; dup {
			return fmt.Errorf("%q: %w", id, ErrDuplicateNode)
		}
		m.index[id] = i
	}
	return nil
}
