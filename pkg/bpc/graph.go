package bpc

import (
	"fmt"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/spatial/r2"
)

// Graph is an ordered collection of boxes and pins.
//
// The zero value is not usable - use New to create a graph.
type Graph struct {
	boxes    []Box
	pins     []Pin
	boxIndex map[string]int // box ID -> position in boxes
	pinIndex map[string]int // pin node ID -> position in pins
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		boxIndex: make(map[string]int),
		pinIndex: make(map[string]int),
	}
}

// AddBox appends a box. The Attrs map is copied.
func (g *Graph) AddBox(b Box) error {
	if !validID(b.ID) {
		return fmt.Errorf("box %q: %w", b.ID, ErrInvalidID)
	}
	if _, exists := g.boxIndex[b.ID]; exists {
		return fmt.Errorf("box %q: %w", b.ID, ErrDuplicateBox)
	}
	g.boxIndex[b.ID] = len(g.boxes)
	g.boxes = append(g.boxes, b.clone())
	return nil
}

// AddPin appends a pin. The owning box must already exist.
func (g *Graph) AddPin(p Pin) error {
	if !validID(p.ID) {
		return fmt.Errorf("pin %q: %w", p.ID, ErrInvalidID)
	}
	if _, ok := g.boxIndex[p.BoxID]; !ok {
		return fmt.Errorf("pin %q: %w %q", p.ID, ErrUnknownBox, p.BoxID)
	}
	id := p.NodeID()
	if _, exists := g.pinIndex[id]; exists {
		return fmt.Errorf("pin %q: %w", id, ErrDuplicatePin)
	}
	g.pinIndex[id] = len(g.pins)
	g.pins = append(g.pins, p)
	return nil
}

// Boxes returns a copy of the boxes in declaration order.
func (g *Graph) Boxes() []Box {
	out := make([]Box, len(g.boxes))
	for i, b := range g.boxes {
		out[i] = b.clone()
	}
	return out
}

// Pins returns a copy of the pins in declaration order.
func (g *Graph) Pins() []Pin { return slices.Clone(g.pins) }

// BoxCount returns the number of boxes.
func (g *Graph) BoxCount() int { return len(g.boxes) }

// PinCount returns the number of pins.
func (g *Graph) PinCount() int { return len(g.pins) }

// NodeCount returns |boxes| + |pins|.
func (g *Graph) NodeCount() int { return len(g.boxes) + len(g.pins) }

// Box returns the box with the given ID.
func (g *Graph) Box(id string) (Box, bool) {
	i, ok := g.boxIndex[id]
	if !ok {
		return Box{}, false
	}
	return g.boxes[i].clone(), true
}

// Pin returns the pin identified by its box and pin IDs.
func (g *Graph) Pin(boxID, pinID string) (Pin, bool) {
	i, ok := g.pinIndex[PinNodeID(boxID, pinID)]
	if !ok {
		return Pin{}, false
	}
	return g.pins[i], true
}

// PinByNodeID returns the pin with the given node ID.
func (g *Graph) PinByNodeID(nodeID string) (Pin, bool) {
	i, ok := g.pinIndex[nodeID]
	if !ok {
		return Pin{}, false
	}
	return g.pins[i], true
}

// HasNode reports whether nodeID names a box or pin of the graph.
func (g *Graph) HasNode(nodeID string) bool {
	if _, ok := g.boxIndex[nodeID]; ok {
		return true
	}
	_, ok := g.pinIndex[nodeID]
	return ok
}

// PinsOf returns the pins owned by a box, in declaration order.
func (g *Graph) PinsOf(boxID string) []Pin {
	var out []Pin
	for _, p := range g.pins {
		if p.BoxID == boxID {
			out = append(out, p)
		}
	}
	return out
}

// Networks returns the distinct network IDs in order of first appearance.
// Pins with an empty network ID do not belong to any network.
func (g *Graph) Networks() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range g.pins {
		if p.NetworkID == "" || seen[p.NetworkID] {
			continue
		}
		seen[p.NetworkID] = true
		out = append(out, p.NetworkID)
	}
	return out
}

// NetworkPins returns the pins of a network in declaration order.
func (g *Graph) NetworkPins(networkID string) []Pin {
	if networkID == "" {
		return nil
	}
	var out []Pin
	for _, p := range g.pins {
		if p.NetworkID == networkID {
			out = append(out, p)
		}
	}
	return out
}

// NodeIDs returns box node IDs followed by pin node IDs, in declaration order.
// This is the default row order of the adjacency projection.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, g.NodeCount())
	for _, b := range g.boxes {
		ids = append(ids, b.ID)
	}
	for _, p := range g.pins {
		ids = append(ids, p.NodeID())
	}
	return ids
}

// ColorHistogram counts the pins of a box per color.
func (g *Graph) ColorHistogram(boxID string) map[Color]int {
	h := make(map[Color]int)
	for _, p := range g.pins {
		if p.BoxID == boxID {
			h[p.Color]++
		}
	}
	return h
}

// RemoveBox deletes a box and every pin it owns.
func (g *Graph) RemoveBox(id string) error {
	i, ok := g.boxIndex[id]
	if !ok {
		return fmt.Errorf("remove box %q: %w", id, ErrUnknownBox)
	}
	g.boxes = slices.Delete(g.boxes, i, i+1)
	g.pins = slices.DeleteFunc(g.pins, func(p Pin) bool { return p.BoxID == id })
	g.reindex()
	return nil
}

// RemovePin deletes a single pin.
func (g *Graph) RemovePin(boxID, pinID string) error {
	i, ok := g.pinIndex[PinNodeID(boxID, pinID)]
	if !ok {
		return fmt.Errorf("remove pin %q: %w", PinNodeID(boxID, pinID), ErrUnknownPin)
	}
	g.pins = slices.Delete(g.pins, i, i+1)
	g.reindex()
	return nil
}

// SetNetwork assigns a network ID to a pin.
func (g *Graph) SetNetwork(boxID, pinID, networkID string) error {
	p, err := g.pinRef(boxID, pinID)
	if err != nil {
		return err
	}
	p.NetworkID = networkID
	return nil
}

// MergeNetworks moves every pin of network from into network into.
// Returns the number of pins that changed network.
func (g *Graph) MergeNetworks(into, from string) int {
	if into == from || from == "" {
		return 0
	}
	n := 0
	for i := range g.pins {
		if g.pins[i].NetworkID == from {
			g.pins[i].NetworkID = into
			n++
		}
	}
	return n
}

// Recolor changes a pin's color.
func (g *Graph) Recolor(boxID, pinID string, c Color) error {
	p, err := g.pinRef(boxID, pinID)
	if err != nil {
		return err
	}
	p.Color = c
	return nil
}

// Reposition changes a pin's offset.
func (g *Graph) Reposition(boxID, pinID string, offset r2.Vec) error {
	p, err := g.pinRef(boxID, pinID)
	if err != nil {
		return err
	}
	p.Offset = offset
	return nil
}

// MovePin transfers a pin to another box, keeping its network, color and
// offset. If the destination already owns a pin with the same ID the pin is
// renamed with a numeric suffix. The pin's new ID is returned.
func (g *Graph) MovePin(boxID, pinID, toBoxID string) (string, error) {
	if _, ok := g.boxIndex[toBoxID]; !ok {
		return "", fmt.Errorf("move pin to %q: %w", toBoxID, ErrUnknownBox)
	}
	i, ok := g.pinIndex[PinNodeID(boxID, pinID)]
	if !ok {
		return "", fmt.Errorf("move pin %q: %w", PinNodeID(boxID, pinID), ErrUnknownPin)
	}
	if boxID == toBoxID {
		return pinID, nil
	}
	newID := g.FreshPinID(toBoxID, pinID)
	g.pins[i].BoxID = toBoxID
	g.pins[i].ID = newID
	g.reindex()
	return newID, nil
}

// FreshPinID returns want if the box has no pin with that ID, otherwise
// want suffixed with the smallest free counter.
func (g *Graph) FreshPinID(boxID, want string) string {
	if _, taken := g.pinIndex[PinNodeID(boxID, want)]; !taken {
		return want
	}
	for n := 1; ; n++ {
		id := want + "~" + strconv.Itoa(n)
		if _, taken := g.pinIndex[PinNodeID(boxID, id)]; !taken {
			return id
		}
	}
}

// FreshBoxID returns want if unused, otherwise want suffixed with the
// smallest free counter.
func (g *Graph) FreshBoxID(want string) string {
	if _, taken := g.boxIndex[want]; !taken {
		return want
	}
	for n := 1; ; n++ {
		id := want + "~" + strconv.Itoa(n)
		if _, taken := g.boxIndex[id]; !taken {
			return id
		}
	}
}

// FreshNetworkID returns a network ID not used by any pin.
func (g *Graph) FreshNetworkID(prefix string) string {
	used := make(map[string]bool, len(g.pins))
	for _, p := range g.pins {
		used[p.NetworkID] = true
	}
	for n := len(used); ; n++ {
		id := prefix + strconv.Itoa(n)
		if !used[id] {
			return id
		}
	}
}

// Reorder sorts boxes and pins by their position in order. Nodes missing
// from order keep their relative order after all listed nodes.
func (g *Graph) Reorder(order []string) {
	rank := make(map[string]int, len(order))
	for i, id := range order {
		rank[id] = i
	}
	pos := func(id string) int {
		if r, ok := rank[id]; ok {
			return r
		}
		return len(order)
	}
	slices.SortStableFunc(g.boxes, func(a, b Box) int { return pos(a.ID) - pos(b.ID) })
	slices.SortStableFunc(g.pins, func(a, b Pin) int { return pos(a.NodeID()) - pos(b.NodeID()) })
	g.reindex()
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		boxes:    make([]Box, len(g.boxes)),
		pins:     slices.Clone(g.pins),
		boxIndex: make(map[string]int, len(g.boxes)),
		pinIndex: make(map[string]int, len(g.pins)),
	}
	for i, b := range g.boxes {
		c.boxes[i] = b.clone()
	}
	c.reindex()
	return c
}

// Validate checks identifier validity, uniqueness, and that every pin
// references an existing box.
func (g *Graph) Validate() error {
	boxes := make(map[string]bool, len(g.boxes))
	for _, b := range g.boxes {
		if !validID(b.ID) {
			return fmt.Errorf("box %q: %w", b.ID, ErrInvalidID)
		}
		if boxes[b.ID] {
			return fmt.Errorf("box %q: %w", b.ID, ErrDuplicateBox)
		}
		boxes[b.ID] = true
	}
	pins := make(map[string]bool, len(g.pins))
	for _, p := range g.pins {
		if !validID(p.ID) {
			return fmt.Errorf("pin %q: %w", p.ID, ErrInvalidID)
		}
		if !boxes[p.BoxID] {
			return fmt.Errorf("pin %q: %w %q", p.ID, ErrUnknownBox, p.BoxID)
		}
		if pins[p.NodeID()] {
			return fmt.Errorf("pin %q: %w", p.NodeID(), ErrDuplicatePin)
		}
		pins[p.NodeID()] = true
	}
	return nil
}

func (g *Graph) pinRef(boxID, pinID string) (*Pin, error) {
	i, ok := g.pinIndex[PinNodeID(boxID, pinID)]
	if !ok {
		return nil, fmt.Errorf("pin %q: %w", PinNodeID(boxID, pinID), ErrUnknownPin)
	}
	return &g.pins[i], nil
}

func (g *Graph) reindex() {
	clear(g.boxIndex)
	clear(g.pinIndex)
	for i, b := range g.boxes {
		g.boxIndex[b.ID] = i
	}
	for i, p := range g.pins {
		g.pinIndex[p.NodeID()] = i
	}
}
