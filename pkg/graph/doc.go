// Package graph provides the serialization format for box-pin graphs.
//
// This package defines the canonical wire format for schemadapt's graph data,
// used for template corpora, circuit inputs, API requests, caching, and
// adapted outputs. It sits at the boundary between the in-memory model
// (pkg/bpc.Graph) and external formats.
//
// # Format
//
// Graphs use a flat box/pin JSON document:
//
//	{
//	  "name": "divider",
//	  "boxes": [
//	    {"id": "R1", "placement": "fixed", "center": {"x": 0, "y": 0}},
//	    {"id": "R2"}
//	  ],
//	  "pins": [
//	    {"box": "R1", "id": "1", "net": "vin", "color": "signal"},
//	    {"box": "R1", "id": "2", "net": "mid", "color": "signal", "offset": {"x": 0, "y": 10}}
//	  ]
//	}
//
// Boxes without "placement" are floating. Pins without "net" belong to no
// network. Box and pin order in the document is the declaration order used
// for tie-breaking, so round trips preserve it.
//
// The same structs carry bson tags so corpora can live in MongoDB.
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("circuit.json")   // File → bpc.Graph
//	graph.WriteGraphFile(g, "adapted.json")        // bpc.Graph → File
//	data, _ := graph.MarshalGraph(g)               // bpc.Graph → []byte
//	doc := graph.FromBPC(g)                        // bpc.Graph → Graph
//	g, _ = graph.ToBPC(doc)                        // Graph → bpc.Graph
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
