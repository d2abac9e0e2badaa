// Package adapt rewrites a template box-pin graph until its topology matches
// a target graph.
//
// # Transformer
//
// A [Transformer] owns private copies of a working graph (initially the
// template) and a target graph. [Transformer.Solve] repeats rounds of:
//
//  1. solving the correspondence between working and target graph
//  2. aligning color and offset of matched pins
//  3. synthesizing an edit script over both adjacency projections
//  4. applying the script to the working graph
//
// until a round produces an empty script ([StateSolved]) or the iteration
// budget runs out ([StateFailed]). Non-convergence is an outcome, not an
// error: the partially adapted graph and the accumulated cost stay
// available through the accessors. Errors are reserved for malformed input.
//
// # Graph effects
//
// Matrix operations map onto the graph as follows:
//
//   - delete: remove the box (with its pins) or the pin
//   - create: add a floating placeholder box, or a pin inside the box that
//     stands for the target pin's owner, on a network of its own
//   - swap: reorders boxes and pins after the round, no other effect
//   - connect two pins: merge their networks
//   - disconnect two pins on one network: move the second pin to a new network
//   - connect a box to a pin of another box: move the pin into the box
//
// Operations that the graph already satisfies are free of side effects but
// are still charged.
//
// # Distance
//
// [HeuristicDistance] prices an adaptation without running it, using the
// same [cost.Config] contract, and is the ranking function for template
// corpora.
package adapt
