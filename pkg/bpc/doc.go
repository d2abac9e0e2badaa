// Package bpc provides the box-pin-color graph model used throughout schemadapt.
//
// # Overview
//
// A schematic is reduced to three concepts:
//
//   - A [Box] is a placeholder component. It is either fixed (it has a 2-D
//     center taken from a laid-out template) or floating (it has no position yet).
//   - A [Pin] belongs to exactly one box. It has an offset relative to the box
//     center, a network identifier, and a [Color] describing its electrical role.
//   - A network is the set of pins sharing a network identifier. Networks are
//     not stored; they are implied by the pins.
//
// A [Graph] keeps boxes and pins in declaration order. That order is the
// tie-breaking policy for every deterministic decision made downstream, so
// the graph never reorders anything unless [Graph.Reorder] is called.
//
// # Node Identifiers
//
// The flattened node set used by the adjacency projection contains both boxes
// and pins. A box node is identified by its box ID; a pin node by
// [PinNodeID], which joins the box ID and pin ID with [NodeSeparator].
//
// # Integrity
//
// [Graph.AddPin] refuses pins whose box does not exist, and [Graph.Validate]
// re-checks the whole graph after bulk construction. Graphs built from
// external descriptions should be validated once before use.
//
// Graph is not safe for concurrent use without external synchronization.
// Use [Graph.Clone] to hand an isolated copy to another goroutine.
package bpc
