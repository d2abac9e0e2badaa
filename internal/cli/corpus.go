package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schemadapt/pkg/corpus"
	errs "github.com/matzehuels/schemadapt/pkg/errors"
)

// corpusCommand creates the corpus management command.
func (c *CLI) corpusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "List and import corpus templates",
	}

	cmd.AddCommand(c.corpusListCommand())
	cmd.AddCommand(c.corpusImportCommand())

	return cmd
}

func (c *CLI) corpusListCommand() *cobra.Command {
	var source sourceFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List template names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, release, err := source.open(ctx)
			if err != nil {
				return err
			}
			defer release()

			names, err := src.Names(ctx)
			if err != nil {
				return errs.Wrap(errs.ErrCodeBackend, err, "list templates")
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}

	source.register(cmd)
	return cmd
}

func (c *CLI) corpusImportCommand() *cobra.Command {
	var (
		source sourceFlags
		name   string
	)

	cmd := &cobra.Command{
		Use:   "import [graph.json...]",
		Short: "Store graph files as corpus templates",
		Long: `Store graph files as corpus templates.

Each file is validated and stored under its base name without extension,
replacing any template of that name. --name overrides the name when a
single file is imported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name != "" && len(args) > 1 {
				return errs.New(errs.ErrCodeInvalidOptions, "--name needs exactly one file")
			}
			ctx := cmd.Context()
			src, release, err := source.open(ctx)
			if err != nil {
				return err
			}
			defer release()
			return c.runImport(ctx, src, args, name)
		},
	}

	source.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "template name (default: file base name)")
	return cmd
}

func (c *CLI) runImport(ctx context.Context, dst corpusSource, paths []string, name string) error {
	for _, path := range paths {
		g, err := loadGraph(path)
		if err != nil {
			return err
		}
		n := name
		if n == "" {
			n = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		if err := errs.ValidateTemplateName(n); err != nil {
			return err
		}
		if err := dst.Put(ctx, corpus.Template{Name: n, Graph: g}); err != nil {
			return errs.Wrap(errs.ErrCodeBackend, err, "store %s", n)
		}
		c.Logger.Debug("Imported template", "name", n, "boxes", g.BoxCount(), "pins", g.PinCount())
		printFile(n)
	}
	printSuccess("Imported %d templates", len(paths))
	return nil
}
