package editscript

import (
	"errors"
	"fmt"

	"github.com/matzehuels/schemadapt/pkg/adjacency"
)

var (
	// ErrInvalidCorrespondence is returned when a correspondence references
	// unknown nodes or maps two source nodes to the same target node.
	ErrInvalidCorrespondence = errors.New("invalid correspondence")

	// ErrInvalidMatrix is returned when an input matrix fails validation.
	ErrInvalidMatrix = errors.New("invalid matrix")

	// ErrStaleOperation is returned when an operation names a node that is
	// not at the recorded index of the matrix it is applied to.
	ErrStaleOperation = errors.New("operation does not match matrix")

	// ErrUnknownOperation is returned when decoding an unrecognized op kind.
	ErrUnknownOperation = errors.New("unknown operation")
)

// Kind names an operation type. The values double as the JSON discriminator.
type Kind string

const (
	KindDeleteNode      Kind = "delete_node"
	KindCreateNode      Kind = "create_node"
	KindSwapIndices     Kind = "swap_indices"
	KindDisconnectNodes Kind = "disconnect_nodes"
	KindConnectNodes    Kind = "connect_nodes"
)

// Phase returns the position of the kind in the emission order (0-4), or -1.
func (k Kind) Phase() int {
	switch k {
	case KindDeleteNode:
		return 0
	case KindCreateNode:
		return 1
	case KindSwapIndices:
		return 2
	case KindDisconnectNodes:
		return 3
	case KindConnectNodes:
		return 4
	}
	return -1
}

// Operation is one atomic matrix edit.
type Operation interface {
	Kind() Kind
	Apply(m *adjacency.Matrix) error
	String() string
}

// DeleteNode removes row and column Index, which holds NodeID.
type DeleteNode struct {
	Index  int    `json:"index"`
	NodeID string `json:"node"`
}

func (DeleteNode) Kind() Kind { return KindDeleteNode }

func (o DeleteNode) Apply(m *adjacency.Matrix) error {
	if err := expect(m, o.Index, o.NodeID); err != nil {
		return err
	}
	return m.DeleteAt(o.Index)
}

func (o DeleteNode) String() string {
	return fmt.Sprintf("delete %s @%d", o.NodeID, o.Index)
}

// CreateNode inserts an isolated node NodeID at NewRowAndColumnIndex.
// TargetID is the target node the new node stands for.
type CreateNode struct {
	NewRowAndColumnIndex int    `json:"index"`
	NodeID               string `json:"node"`
	TargetID             string `json:"target"`
}

func (CreateNode) Kind() Kind { return KindCreateNode }

func (o CreateNode) Apply(m *adjacency.Matrix) error {
	return m.InsertAt(o.NewRowAndColumnIndex, o.NodeID)
}

func (o CreateNode) String() string {
	return fmt.Sprintf("create %s @%d (for %s)", o.NodeID, o.NewRowAndColumnIndex, o.TargetID)
}

// SwapIndices exchanges rows and columns I and J, occupied by NodeA and NodeB.
type SwapIndices struct {
	I     int    `json:"i"`
	J     int    `json:"j"`
	NodeA string `json:"a"`
	NodeB string `json:"b"`
}

func (SwapIndices) Kind() Kind { return KindSwapIndices }

func (o SwapIndices) Apply(m *adjacency.Matrix) error {
	if err := expectPair(m, o.I, o.J, o.NodeA, o.NodeB); err != nil {
		return err
	}
	return m.Swap(o.I, o.J)
}

func (o SwapIndices) String() string {
	return fmt.Sprintf("swap %s @%d <-> %s @%d", o.NodeA, o.I, o.NodeB, o.J)
}

// DisconnectNodes clears the edge between I and J.
type DisconnectNodes struct {
	I     int    `json:"i"`
	J     int    `json:"j"`
	NodeA string `json:"a"`
	NodeB string `json:"b"`
}

func (DisconnectNodes) Kind() Kind { return KindDisconnectNodes }

func (o DisconnectNodes) Apply(m *adjacency.Matrix) error {
	if err := expectPair(m, o.I, o.J, o.NodeA, o.NodeB); err != nil {
		return err
	}
	return m.Disconnect(o.I, o.J)
}

func (o DisconnectNodes) String() string {
	return fmt.Sprintf("disconnect %s -x- %s", o.NodeA, o.NodeB)
}

// ConnectNodes sets the edge between I and J.
type ConnectNodes struct {
	I     int    `json:"i"`
	J     int    `json:"j"`
	NodeA string `json:"a"`
	NodeB string `json:"b"`
}

func (ConnectNodes) Kind() Kind { return KindConnectNodes }

func (o ConnectNodes) Apply(m *adjacency.Matrix) error {
	if err := expectPair(m, o.I, o.J, o.NodeA, o.NodeB); err != nil {
		return err
	}
	return m.Connect(o.I, o.J)
}

func (o ConnectNodes) String() string {
	return fmt.Sprintf("connect %s --- %s", o.NodeA, o.NodeB)
}

// expect checks that id sits at index i. An empty id skips the check.
func expect(m *adjacency.Matrix, i int, id string) error {
	if i < 0 || i >= m.Size() {
		return fmt.Errorf("index %d of %d: %w", i, m.Size(), adjacency.ErrIndexOutOfRange)
	}
	if id != "" && m.ID(i) != id {
		return fmt.Errorf("index %d holds %q, not %q: %w", i, m.ID(i), id, ErrStaleOperation)
	}
	return nil
}

func expectPair(m *adjacency.Matrix, i, j int, a, b string) error {
	if err := expect(m, i, a); err != nil {
		return err
	}
	return expect(m, j, b)
}

// Stats counts the operations of a script per kind.
type Stats struct {
	Deletes     int `json:"deletes"`
	Creates     int `json:"creates"`
	Swaps       int `json:"swaps"`
	Disconnects int `json:"disconnects"`
	Connects    int `json:"connects"`
}

// Summarize counts the operations in ops.
func Summarize(ops []Operation) Stats {
	var s Stats
	for _, op := range ops {
		switch op.Kind() {
		case KindDeleteNode:
			s.Deletes++
		case KindCreateNode:
			s.Creates++
		case KindSwapIndices:
			s.Swaps++
		case KindDisconnectNodes:
			s.Disconnects++
		case KindConnectNodes:
			s.Connects++
		}
	}
	return s
}

// Total returns the number of operations.
func (s Stats) Total() int {
	return s.Deletes + s.Creates + s.Swaps + s.Disconnects + s.Connects
}

// Structural returns the number of non-swap operations.
func (s Stats) Structural() int { return s.Total() - s.Swaps }
