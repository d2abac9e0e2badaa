// Package nodelink renders box-pin graphs as node-link diagrams.
//
// # Overview
//
// Every box becomes a Graphviz cluster holding its pins. Networks become
// edges between pins: a two-pin network is a single edge, larger networks
// fan out from a small junction point. Pins are filled by color, so a
// recolored template is easy to spot against its target.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// Fixed boxes can be pinned to their stored centers, which switches the
// layout engine to neato:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{UsePositions: true})
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process
// rendering. No system Graphviz installation is needed.
package nodelink
