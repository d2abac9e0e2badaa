package bpc

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrInvalidID is returned when a box or pin identifier is empty or
	// contains the node separator.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrDuplicateBox is returned when a box with the same ID already exists.
	ErrDuplicateBox = errors.New("duplicate box ID")

	// ErrDuplicatePin is returned when the box already owns a pin with the same ID.
	ErrDuplicatePin = errors.New("duplicate pin ID")

	// ErrUnknownBox is returned when a pin references a box that does not exist.
	ErrUnknownBox = errors.New("unknown box")

	// ErrUnknownPin is returned when a (box, pin) pair does not exist.
	ErrUnknownPin = errors.New("unknown pin")

	// ErrInvalidNodeID is returned by [ParseNodeID] for malformed identifiers.
	ErrInvalidNodeID = errors.New("invalid node ID")

	// ErrInvalidPlacement is returned by [ParsePlacement] for unknown names.
	ErrInvalidPlacement = errors.New("invalid placement")
)

// NodeSeparator joins box and pin IDs in pin node identifiers.
const NodeSeparator = "/"

// AttrNetLabel marks a box that stands for a net label rather than a component.
const AttrNetLabel = "net_label"

// Placement tells whether a box already has a position.
type Placement int

const (
	// Floating boxes have no position yet.
	Floating Placement = iota
	// Fixed boxes carry a center taken from a laid-out schematic.
	Fixed
)

// String returns "floating" or "fixed".
func (p Placement) String() string {
	if p == Fixed {
		return "fixed"
	}
	return "floating"
}

// ParsePlacement converts "fixed" or "floating", in any case, to a
// Placement. The empty string means floating.
func ParsePlacement(s string) (Placement, error) {
	switch {
	case strings.EqualFold(s, "fixed"):
		return Fixed, nil
	case s == "", strings.EqualFold(s, "floating"):
		return Floating, nil
	}
	return Floating, fmt.Errorf("%q: %w", s, ErrInvalidPlacement)
}

// Color tags the semantic role of a pin (signal, power, net-label anchor...).
type Color string

// Common colors. Graphs may use any other string.
const (
	ColorSignal   Color = "signal"
	ColorPower    Color = "power"
	ColorGround   Color = "ground"
	ColorNetLabel Color = "net_label"
)

// Box is a placeholder component.
type Box struct {
	ID        string
	Placement Placement
	Center    r2.Vec            // meaningful only when Placement == Fixed
	Attrs     map[string]string // free-form, may be nil
}

// IsFixed reports whether the box has a position.
func (b Box) IsFixed() bool { return b.Placement == Fixed }

// IsNetLabel reports whether the box is a net label.
func (b Box) IsNetLabel() bool { return b.Attrs[AttrNetLabel] == "true" }

// NodeID returns the flattened node identifier of the box.
func (b Box) NodeID() string { return b.ID }

func (b Box) clone() Box {
	b.Attrs = maps.Clone(b.Attrs)
	return b
}

// Pin is a connection point owned by a box.
type Pin struct {
	BoxID     string
	ID        string
	Offset    r2.Vec // relative to the owning box's center
	NetworkID string
	Color     Color
}

// NodeID returns the flattened node identifier of the pin.
func (p Pin) NodeID() string { return PinNodeID(p.BoxID, p.ID) }

// PinNodeID builds the node identifier for a pin.
func PinNodeID(boxID, pinID string) string {
	return boxID + NodeSeparator + pinID
}

// ParseNodeID splits a node identifier. For box nodes pinID is empty.
func ParseNodeID(nodeID string) (boxID, pinID string, err error) {
	if nodeID == "" {
		return "", "", ErrInvalidNodeID
	}
	boxID, pinID, found := strings.Cut(nodeID, NodeSeparator)
	if !found {
		return nodeID, "", nil
	}
	if boxID == "" || pinID == "" {
		return "", "", ErrInvalidNodeID
	}
	return boxID, pinID, nil
}

// IsPinNode reports whether nodeID names a pin.
func IsPinNode(nodeID string) bool { return strings.Contains(nodeID, NodeSeparator) }

func validID(id string) bool {
	return id != "" && !strings.Contains(id, NodeSeparator)
}
