package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/editscript"
	errs "github.com/matzehuels/schemadapt/pkg/errors"
	"github.com/matzehuels/schemadapt/pkg/pipeline"
	"github.com/matzehuels/schemadapt/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// validFormats is the set of supported output formats.
var validFormats = []string{formatDOT, formatSVG, formatPNG}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string
	formats   []string
	detailed  bool
	positions bool
	against   string // graph whose diff is highlighted
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		opts       renderOpts
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a graph as a node-link diagram",
		Long: `Render a graph as a node-link diagram with Graphviz.

Boxes are drawn as clusters around their pins and networks as edges between
the pins they join. Placeholder boxes created during adaptation are dashed.
With --against, the nodes an edit script toward that graph would touch are
outlined in red.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	completeValues(cmd, "format", validFormats...)
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show pin colors and box attributes")
	cmd.Flags().BoolVar(&opts.positions, "positions", false, "place fixed boxes at their stored centers")
	cmd.Flags().StringVar(&opts.against, "against", "", "highlight the nodes a diff toward this graph touches")

	return cmd
}

// parseFormats parses the --format flag. If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if !slices.Contains(validFormats, f) {
			return errs.New(errs.ErrCodeInvalidOptions, "invalid format %q (must be one of %s)", f, strings.Join(validFormats, ", "))
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// Known format extensions are stripped from output.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(validFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	g, err := loadGraph(input)
	if err != nil {
		return err
	}
	c.Logger.Debug("Loaded graph", "boxes", g.BoxCount(), "pins", g.PinCount(), "networks", len(g.Networks()))

	dopts := nodelink.Options{Detailed: opts.detailed, UsePositions: opts.positions}
	if opts.against != "" {
		highlight, err := c.diffHighlight(ctx, g, opts.against)
		if err != nil {
			return err
		}
		dopts.Highlight = highlight
	}
	dot := nodelink.ToDOT(g, dopts)

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		data, err := renderDOT(dot, format)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		if err := writeOutput(path, data); err != nil {
			return err
		}
		printFile(path)
	}
	printSuccess("Rendered %d boxes, %d pins", g.BoxCount(), g.PinCount())
	return nil
}

func renderDOT(dot, format string) ([]byte, error) {
	switch format {
	case formatSVG:
		return nodelink.RenderSVG(dot)
	case formatPNG:
		return nodelink.RenderPNG(dot)
	}
	return []byte(dot), nil
}

// diffHighlight returns the nodes of g that a script toward the graph at
// path deletes, rewires, or swaps.
func (c *CLI) diffHighlight(ctx context.Context, g *bpc.Graph, path string) ([]string, error) {
	other, err := loadGraph(path)
	if err != nil {
		return nil, err
	}
	var flags optionFlags
	opts, err := flags.options(c.Logger)
	if err != nil {
		return nil, err
	}
	res, err := pipeline.NewRunner(nil, nil, c.Logger).Diff(ctx, g, other, opts)
	if err != nil {
		return nil, err
	}
	return touchedNodes(g, res.Script), nil
}

// touchedNodes lists the existing nodes of g named by ops, in graph order.
func touchedNodes(g *bpc.Graph, ops []editscript.Operation) []string {
	seen := make(map[string]bool)
	for _, op := range ops {
		switch o := op.(type) {
		case editscript.DeleteNode:
			seen[o.NodeID] = true
		case editscript.SwapIndices:
			seen[o.NodeA], seen[o.NodeB] = true, true
		case editscript.DisconnectNodes:
			seen[o.NodeA], seen[o.NodeB] = true, true
		case editscript.ConnectNodes:
			seen[o.NodeA], seen[o.NodeB] = true, true
		}
	}
	var out []string
	for _, id := range g.NodeIDs() {
		if seen[id] {
			out = append(out, id)
		}
	}
	return out
}
