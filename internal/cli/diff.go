package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/schemadapt/pkg/editscript"
)

// diffCommand creates the diff command, which prints the first-round edit
// script between two graphs without applying it.
func (c *CLI) diffCommand() *cobra.Command {
	var (
		flags  optionFlags
		asJSON bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "diff [from.json] [to.json]",
		Short: "Print the edit script between two graphs",
		Long: `Print the edit script that turns one graph's connectivity into another's.

The script is the first round an adaptation would apply: node deletions,
creations, index swaps, disconnections, and connections, in that order.
With --json the script and the box, network, and pin correspondences are
printed as JSON.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiff(cmd.Context(), args[0], args[1], &flags, asJSON, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the script and correspondences as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to this file instead of stdout (implies --json)")

	return cmd
}

func (c *CLI) runDiff(ctx context.Context, fromPath, toPath string, flags *optionFlags, asJSON bool, output string) error {
	from, err := loadGraph(fromPath)
	if err != nil {
		return err
	}
	to, err := loadGraph(toPath)
	if err != nil {
		return err
	}
	opts, err := flags.options(c.Logger)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Diff(ctx, from, to, opts)
	if err != nil {
		return err
	}

	if asJSON || output != "" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		return writeOutput(output, append(data, '\n'))
	}

	if len(res.Script) == 0 {
		printSuccess("Graphs have the same connectivity")
		return nil
	}
	printInfo("%s operations, %d boxes and %d networks matched",
		StyleNumber.Render(fmt.Sprint(len(res.Script))), len(res.Boxes), len(res.Networks))
	for i, op := range res.Script {
		fmt.Printf("  %s %s\n", StyleDim.Render(fmt.Sprintf("%3d", i+1)), opStyle(op.Kind()).Render(op.String()))
	}
	printNewline()
	printScriptStats(res.Stats)
	return nil
}

// opStyle colors operations by kind.
func opStyle(k editscript.Kind) lipgloss.Style {
	switch k {
	case editscript.KindDeleteNode, editscript.KindDisconnectNodes:
		return styleIconError
	case editscript.KindCreateNode, editscript.KindConnectNodes:
		return StyleSuccess
	}
	return StyleDim
}

// distanceCommand creates the distance command.
func (c *CLI) distanceCommand() *cobra.Command {
	var (
		flags  optionFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "distance [from.json] [to.json]",
		Short: "Estimate the cost of adapting one graph to another",
		Long: `Estimate the cost of adapting one graph to another without running the adaptation.

The estimate charges every box of the first graph that has no counterpart in
the second, together with its pins, plus the recolor and move prices of
matched pins that differ. Boxes only the second graph has are free, so the
distance is not symmetric.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDistance(cmd.Context(), args[0], args[1], &flags, asJSON)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the distance as JSON")

	return cmd
}

func (c *CLI) runDistance(ctx context.Context, fromPath, toPath string, flags *optionFlags, asJSON bool) error {
	from, err := loadGraph(fromPath)
	if err != nil {
		return err
	}
	to, err := loadGraph(toPath)
	if err != nil {
		return err
	}
	opts, err := flags.options(c.Logger)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d, cached, err := runner.Distance(ctx, from, to, opts)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return err
		}
		return writeOutput("", append(data, '\n'))
	}

	status := iconFresh
	if cached {
		status = iconCached
	}
	printSuccess("Distance %s %s", StyleNumber.Render(fmt.Sprintf("%.2f", d.Value)), StyleDim.Render("("+status+")"))
	printKeyValue("boxes", fmt.Sprint(d.UnmatchedBoxes))
	printKeyValue("pins", fmt.Sprint(d.UnmatchedPins))
	printKeyValue("recolors", fmt.Sprint(d.Recolors))
	printKeyValue("moves", fmt.Sprint(d.Moves))
	return nil
}
