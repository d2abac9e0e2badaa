// Package pkg provides the libraries behind schemadapt, a schematic template
// adaptation engine.
//
// # Overview
//
// Schematics are modeled as box-pin-color graphs: boxes (components and net
// labels) own pins, pins carry a color and belong to at most one network.
// Given a laid-out template schematic and a new circuit that has no layout
// yet, schemadapt rewrites the template until its topology matches the
// circuit. The result is the adapted graph, the ordered edit script that
// produced it, and an accumulated cost. The cost doubles as a similarity
// measure for choosing the best template out of a corpus.
//
// # Architecture
//
// The typical data flow:
//
//	template + circuit (JSON, MongoDB)
//	         ↓
//	    [correspondence] (which boxes, networks, pins match)
//	         ↓
//	    [adjacency] (flattened box/pin adjacency matrices)
//	         ↓
//	    [editscript] (delete, create, swap, disconnect, connect)
//	         ↓
//	    [adapt] (apply, re-match, repeat until the graphs agree)
//
// # Quick Start
//
//	template, _ := graph.ReadGraphFile("templates/divider.json")
//	circuit, _ := graph.ReadGraphFile("circuit.json")
//
//	tr, err := adapt.New(template, circuit, cost.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, _ := tr.Solve()
//	fmt.Println(res.State, res.Cost)
//
// # Main Packages
//
// ## Core
//
// [bpc] - The box-pin-color graph model: boxes, pins, networks, node IDs,
// validation, and the mutations the transformer needs.
//
// [adjacency] - The adjacency projection of a graph onto a square 0/1
// matrix with a stable index-to-node-ID table.
//
// [correspondence] - Box, network, and pin matching between two graphs.
// Network matching is a swappable policy.
//
// [editscript] - Edit-script synthesis between two matrices, application,
// and JSON encoding.
//
// [cost] - Operation, recolor, and reposition prices loaded from TOML.
//
// [adapt] - The iterative transformer and the heuristic distance.
//
// ## Around the Core
//
// [corpus] - Template sources (directory, MongoDB) and parallel ranking.
//
// [graph] - JSON serialization of graphs.
//
// [pipeline] - Cached adaptation, ranking, and diffing for the CLI and API.
//
// [cache] - File, Redis, and null caches with content-hash keys.
//
// [observability] and [metrics] - Event hooks and their Prometheus
// implementation.
//
// [render/nodelink] - Graphviz diagrams for debugging.
//
// [errors] - Coded errors shared by the CLI and the API.
package pkg
