package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schemadapt/pkg/corpus"
	errs "github.com/matzehuels/schemadapt/pkg/errors"
)

// sourceFlags select the template corpus: a directory or a MongoDB collection.
type sourceFlags struct {
	dir        string
	mongoURI   string
	database   string
	collection string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "corpus", "", "directory of template JSON files")
	cmd.Flags().StringVar(&f.mongoURI, "mongo", "", "mongodb:// URI of a template collection")
	cmd.Flags().StringVar(&f.database, "mongo-db", corpus.DefaultMongoDatabase, "MongoDB database")
	cmd.Flags().StringVar(&f.collection, "mongo-collection", corpus.DefaultMongoCollection, "MongoDB collection")
	cmd.MarkFlagsMutuallyExclusive("corpus", "mongo")
}

// corpusSource is a Source that also stores templates.
type corpusSource interface {
	corpus.Source
	Put(ctx context.Context, t corpus.Template) error
}

// open returns the selected source and a function releasing it.
func (f *sourceFlags) open(ctx context.Context) (corpusSource, func(), error) {
	switch {
	case f.mongoURI != "":
		src, err := corpus.NewMongoSource(ctx, f.mongoURI, f.database, f.collection)
		if err != nil {
			return nil, nil, errs.Wrap(errs.ErrCodeBackend, err, "open corpus")
		}
		return src, func() { _ = src.Close(context.WithoutCancel(ctx)) }, nil
	case f.dir != "":
		src, err := corpus.NewDirSource(f.dir)
		if err != nil {
			return nil, nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "open corpus")
		}
		return src, func() {}, nil
	}
	return nil, nil, errs.New(errs.ErrCodeInvalidOptions, "one of --corpus or --mongo is required")
}

// rankCommand creates the rank command.
func (c *CLI) rankCommand() *cobra.Command {
	var (
		flags   optionFlags
		source  sourceFlags
		asJSON  bool
		pick    bool
		output  string
		maxIter int
	)

	cmd := &cobra.Command{
		Use:   "rank [circuit.json]",
		Short: "Rank corpus templates by distance to a circuit",
		Long: `Rank corpus templates by their estimated adaptation cost to a circuit.

Every template is compared to the circuit with the heuristic distance, which
prices unmatched template boxes and pins plus the recolors and moves of
matched pins. Lower is better; ties are broken by template name.

With --pick, an interactive list lets you choose a template, which is then
adapted to the circuit as if by 'schemadapt adapt'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRank(cmd.Context(), args[0], &flags, &source, rankOutput{
				json:    asJSON,
				pick:    pick,
				output:  output,
				maxIter: maxIter,
			})
		},
	}

	flags.register(cmd)
	source.register(cmd)
	cmd.Flags().IntVar(&flags.opts.TopK, "top", 10, "number of templates to show (0 for all)")
	cmd.Flags().IntVar(&flags.opts.Workers, "workers", 0, "parallel distance evaluations (default 8)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the ranking as JSON")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose a template interactively and adapt it")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for --pick (default: <circuit>.adapted.json)")
	cmd.Flags().IntVar(&maxIter, "max-iterations", 0, "maximum adaptation rounds for --pick")
	cmd.MarkFlagsMutuallyExclusive("json", "pick")

	return cmd
}

type rankOutput struct {
	json    bool
	pick    bool
	output  string
	maxIter int
}

func (c *CLI) runRank(ctx context.Context, circuitPath string, flags *optionFlags, source *sourceFlags, out rankOutput) error {
	circuit, err := loadGraph(circuitPath)
	if err != nil {
		return err
	}
	opts, err := flags.options(c.Logger)
	if err != nil {
		return err
	}
	src, release, err := source.open(ctx)
	if err != nil {
		return err
	}
	defer release()

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Loading corpus...")
	spinner.Start()
	templates, err := corpus.LoadAll(ctx, src, opts.Workers)
	if err != nil {
		spinner.StopWithError("Loading corpus failed")
		return err
	}
	spinner.SetMessage(fmt.Sprintf("Ranking %d templates...", len(templates)))
	matches, cached, err := runner.RankTemplates(ctx, circuit, templates, opts)
	if err != nil {
		spinner.StopWithError("Ranking failed")
		return err
	}
	spinner.Stop()

	if out.json {
		data, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			return err
		}
		return writeOutput("", append(data, '\n'))
	}

	if len(matches) == 0 {
		printWarning("Corpus is empty")
		return nil
	}

	if !out.pick {
		status := iconFresh
		if cached {
			status = iconCached
		}
		printSuccess("Ranked %d templates %s", len(templates), StyleDim.Render("("+status+")"))
		fmt.Println(matchTable(matches))
		printNewline()
		printNextStep("Adapt the best match", fmt.Sprintf("%s rank %s --pick", appName, circuitPath))
		return nil
	}

	sel, err := pickMatch(matches)
	if err != nil {
		return err
	}
	if sel == nil {
		printDetail("No selection made")
		return nil
	}
	var picked *corpus.Template
	for i := range templates {
		if templates[i].Name == sel.Name {
			picked = &templates[i]
			break
		}
	}
	if picked == nil {
		return errs.New(errs.ErrCodeTemplateNotFound, "template %q", sel.Name)
	}
	printInfo("Adapting %s", StyleHighlight.Render(picked.Name))

	if out.maxIter > 0 {
		opts.MaxIterations = out.maxIter
	}
	res, err := runner.Adapt(ctx, picked.Graph, circuit, opts)
	if err != nil {
		return err
	}
	_, err = writeAdaptResult(res, circuitPath, out.output, "")
	return err
}
