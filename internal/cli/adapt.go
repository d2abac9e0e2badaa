package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schemadapt/pkg/editscript"
	"github.com/matzehuels/schemadapt/pkg/graph"
	"github.com/matzehuels/schemadapt/pkg/pipeline"
)

// adaptCommand creates the adapt command.
func (c *CLI) adaptCommand() *cobra.Command {
	var (
		flags  optionFlags
		output string
		script string
	)

	cmd := &cobra.Command{
		Use:   "adapt [template.json] [circuit.json]",
		Short: "Adapt a schematic template to a circuit",
		Long: `Adapt a schematic template to a circuit.

The template's boxes, pins, and networks are matched against the circuit and
edited round by round until both have the same connectivity. Boxes the circuit
lacks are deleted, missing ones are created as floating placeholders, and
matched pins take the circuit's colors and offsets.

The adapted graph is written to <circuit>.adapted.json unless --output is set.
A run that exhausts --max-iterations still writes its partial result and
reports the adaptation as failed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAdapt(cmd.Context(), args[0], args[1], &flags, output, script)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&flags.opts.MaxIterations, "max-iterations", pipeline.DefaultMaxIterations, "maximum adaptation rounds")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <circuit>.adapted.json)")
	cmd.Flags().StringVar(&script, "script", "", "also write the applied edit script to this file")

	return cmd
}

// runAdapt loads both graphs, adapts the template, and writes the results.
func (c *CLI) runAdapt(ctx context.Context, templatePath, circuitPath string, flags *optionFlags, output, scriptPath string) error {
	template, err := loadGraph(templatePath)
	if err != nil {
		return err
	}
	circuit, err := loadGraph(circuitPath)
	if err != nil {
		return err
	}
	opts, err := flags.options(c.Logger)
	if err != nil {
		return err
	}
	c.Logger.Debug("Adapting", "template", templatePath, "circuit", circuitPath, "opts", opts.String())

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Adapting %s...", filepath.Base(templatePath)))
	spinner.Start()

	res, err := runner.Adapt(ctx, template, circuit, opts)
	if err != nil {
		spinner.StopWithError("Adaptation failed")
		return err
	}
	spinner.Stop()
	prog.done("Adaptation finished", "state", res.State, "iterations", res.Iterations)

	output, err = writeAdaptResult(res, circuitPath, output, scriptPath)
	if err != nil {
		return err
	}
	printNewline()
	printNextStep("Render", appName+" render "+output)

	return nil
}

// writeAdaptResult writes the adapted graph (and optionally its script) and
// prints a summary. It returns the graph's output path.
func writeAdaptResult(res *pipeline.AdaptResult, circuitPath, output, scriptPath string) (string, error) {
	if output == "" {
		output = strings.TrimSuffix(circuitPath, filepath.Ext(circuitPath)) + ".adapted.json"
	}
	if err := graph.WriteGraphFile(res.Graph, output); err != nil {
		return "", fmt.Errorf("write output %s: %w", output, err)
	}
	if scriptPath != "" {
		data, err := editscript.MarshalScript(res.Script)
		if err != nil {
			return "", err
		}
		if err := writeOutput(scriptPath, data); err != nil {
			return "", err
		}
	}

	if res.Solved() {
		printSuccess("Adaptation solved in %s rounds", StyleNumber.Render(fmt.Sprint(res.Iterations)))
	} else {
		printWarning("Adaptation did not converge after %d rounds", res.Iterations)
	}
	printFile(output)
	if scriptPath != "" {
		printFile(scriptPath)
	}
	printStats(res.Graph.BoxCount(), res.Graph.PinCount(), editscript.Summarize(res.Script), res.CacheHit)
	printKeyValue("cost", fmt.Sprintf("%.2f", res.Cost))
	return output, nil
}
