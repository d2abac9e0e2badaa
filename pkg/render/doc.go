// Package render holds the debugging renderers for box-pin graphs.
//
// The [nodelink] subpackage turns a graph into Graphviz DOT source and
// renders it to SVG or PNG in-process.
package render
