// Package editscript synthesizes ordered edit scripts that turn one adjacency
// matrix into another.
//
// # Operations
//
// A script is a slice of [Operation] values of five kinds, always emitted in
// this phase order:
//
//   - [DeleteNode]: remove a source node that has no counterpart
//   - [CreateNode]: insert an isolated node for a target node without preimage
//   - [SwapIndices]: reorder rows and columns so positions line up with the target
//   - [DisconnectNodes]: clear an edge the target does not have
//   - [ConnectNodes]: add an edge the target has
//
// Every operation records both the indices it touches and the identifiers of
// the nodes sitting at those indices at the moment it is applied. Indices
// are only meaningful in sequence: each structural operation shifts the
// positions seen by the next one.
//
// # Determinism
//
// [Synthesize] walks indices in ascending order and derives synthetic node
// identifiers from the target identifier with a name-based UUID, so the same
// inputs always produce the same script, byte for byte once encoded with
// [MarshalScript].
//
// # Replay
//
// [Apply] replays a script on a copy of the source matrix. The result has the
// same entries as the target, with created nodes carrying their synthetic
// identifiers.
package editscript
