package graph

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/schemadapt/pkg/bpc"
)

// Graph is the canonical serialization format for box-pin graphs.
//
// The format is human-readable and designed for round-trip fidelity:
// import → export → re-import produces identical results.
type Graph struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Boxes []Box  `json:"boxes" bson:"boxes"`
	Pins  []Pin  `json:"pins" bson:"pins"`
}

// Point is a 2-D coordinate.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Box is the serialized form of a bpc.Box.
type Box struct {
	ID        string            `json:"id" bson:"id"`
	Placement string            `json:"placement,omitempty" bson:"placement,omitempty"` // "fixed" or "floating"
	Center    *Point            `json:"center,omitempty" bson:"center,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty" bson:"attrs,omitempty"`
}

// Pin is the serialized form of a bpc.Pin.
type Pin struct {
	Box    string `json:"box" bson:"box"`
	ID     string `json:"id" bson:"id"`
	Net    string `json:"net,omitempty" bson:"net,omitempty"`
	Color  string `json:"color,omitempty" bson:"color,omitempty"`
	Offset *Point `json:"offset,omitempty" bson:"offset,omitempty"`
}

// FromBPC converts an in-memory graph to its serialized form.
func FromBPC(g *bpc.Graph) Graph {
	out := Graph{
		Boxes: make([]Box, 0, g.BoxCount()),
		Pins:  make([]Pin, 0, g.PinCount()),
	}
	for _, b := range g.Boxes() {
		sb := Box{ID: b.ID, Attrs: b.Attrs}
		if b.IsFixed() {
			sb.Placement = bpc.Fixed.String()
			sb.Center = pointOf(b.Center)
		}
		out.Boxes = append(out.Boxes, sb)
	}
	for _, p := range g.Pins() {
		sp := Pin{Box: p.BoxID, ID: p.ID, Net: p.NetworkID, Color: string(p.Color)}
		if p.Offset != (r2.Vec{}) {
			sp.Offset = pointOf(p.Offset)
		}
		out.Pins = append(out.Pins, sp)
	}
	return out
}

// ToBPC builds an in-memory graph, validating identifiers and references.
func ToBPC(data Graph) (*bpc.Graph, error) {
	g := bpc.New()
	for _, b := range data.Boxes {
		placement, err := bpc.ParsePlacement(b.Placement)
		if err != nil {
			return nil, fmt.Errorf("box %q: %w", b.ID, err)
		}
		box := bpc.Box{ID: b.ID, Placement: placement, Attrs: b.Attrs}
		if b.Center != nil {
			box.Center = b.Center.vec()
		}
		if err := g.AddBox(box); err != nil {
			return nil, err
		}
	}
	for _, p := range data.Pins {
		pin := bpc.Pin{BoxID: p.Box, ID: p.ID, NetworkID: p.Net, Color: bpc.Color(p.Color)}
		if p.Offset != nil {
			pin.Offset = p.Offset.vec()
		}
		if err := g.AddPin(pin); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Validate checks the document without building a graph.
func (g Graph) Validate() error {
	if _, err := ToBPC(g); err != nil {
		return fmt.Errorf("graph %q: %w", g.Name, err)
	}
	return nil
}

func pointOf(v r2.Vec) *Point { return &Point{X: v.X, Y: v.Y} }

func (p Point) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }
