package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/schemadapt/pkg/bpc"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds pin colors and box attributes to labels.
	Detailed bool

	// UsePositions pins fixed boxes to their centers (neato layout).
	UsePositions bool

	// Highlight lists node IDs drawn with a red outline, such as the nodes
	// an edit script touches.
	Highlight []string
}

// pinFill maps pin colors to fill colors.
var pinFill = map[bpc.Color]string{
	bpc.ColorSignal:   "lightblue",
	bpc.ColorPower:    "salmon",
	bpc.ColorGround:   "grey70",
	bpc.ColorNetLabel: "khaki",
}

// ToDOT converts a graph to Graphviz DOT source.
func ToDOT(g *bpc.Graph, opts Options) string {
	hl := make(map[string]bool, len(opts.Highlight))
	for _, id := range opts.Highlight {
		hl[id] = true
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	if opts.UsePositions {
		buf.WriteString("  layout=neato;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10, width=0.3];\n")
	buf.WriteString("\n")

	for i, b := range g.Boxes() {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", boxLabel(b, opts.Detailed))
		style := "rounded"
		if !b.IsFixed() {
			style += ",dashed"
		}
		fmt.Fprintf(&buf, "    style=%q;\n", style)
		if hl[b.ID] {
			buf.WriteString("    color=red; penwidth=2;\n")
		}
		// Anchor node so boxes without pins are still drawn.
		anchor := []string{"shape=point", "style=invis"}
		if opts.UsePositions && b.IsFixed() {
			anchor = append(anchor, fmt.Sprintf("pos=\"%g,%g!\"", b.Center.X, b.Center.Y))
		}
		fmt.Fprintf(&buf, "    %q [%s];\n", b.ID, strings.Join(anchor, ", "))
		for _, p := range g.PinsOf(b.ID) {
			fmt.Fprintf(&buf, "    %q [%s];\n", p.NodeID(), strings.Join(pinAttrs(p, opts.Detailed, hl[p.NodeID()]), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, net := range g.Networks() {
		pins := g.NetworkPins(net)
		switch len(pins) {
		case 0, 1:
			continue
		case 2:
			fmt.Fprintf(&buf, "  %q -- %q [label=%q, fontsize=8];\n", pins[0].NodeID(), pins[1].NodeID(), net)
		default:
			junction := "net:" + net
			fmt.Fprintf(&buf, "  %q [shape=point, width=0.08, xlabel=%q];\n", junction, net)
			for _, p := range pins {
				fmt.Fprintf(&buf, "  %q -- %q;\n", junction, p.NodeID())
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func boxLabel(b bpc.Box, detailed bool) string {
	if !detailed || len(b.Attrs) == 0 {
		return b.ID
	}
	parts := []string{b.ID}
	for _, k := range slices.Sorted(maps.Keys(b.Attrs)) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, b.Attrs[k]))
	}
	return strings.Join(parts, "\n")
}

func pinAttrs(p bpc.Pin, detailed, highlight bool) []string {
	label := p.ID
	if detailed && p.Color != "" {
		label += "\n" + string(p.Color)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if fill, ok := pinFill[p.Color]; ok {
		attrs = append(attrs, "fillcolor="+fill)
	}
	if highlight {
		attrs = append(attrs, "color=red", "penwidth=2")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders DOT source to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
