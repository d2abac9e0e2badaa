// Package cli implements the schemadapt command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/buildinfo"
	"github.com/matzehuels/schemadapt/pkg/cache"
	"github.com/matzehuels/schemadapt/pkg/cost"
	errs "github.com/matzehuels/schemadapt/pkg/errors"
	"github.com/matzehuels/schemadapt/pkg/graph"
	"github.com/matzehuels/schemadapt/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "schemadapt"

	// cachePrefix namespaces keys in shared Redis instances.
	cachePrefix = "schemadapt:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Global flags, bound by RootCommand.
	cacheURL string
	noCache  bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Schemadapt adapts schematic templates to circuits",
		Long: `Schemadapt adapts the layout of a schematic template to a new circuit.

It matches the boxes, pins, and networks of the template against the circuit,
derives an edit script that turns one into the other, and replays it until the
template's connectivity equals the circuit's. Fixed box positions survive, so
the adapted schematic keeps the template's layout where the two agree.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.cacheURL, "cache-url", os.Getenv("SCHEMADAPT_CACHE_URL"), "redis:// URL of a shared result cache (default: local files)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.adaptCommand())
	root.AddCommand(c.rankCommand())
	root.AddCommand(c.diffCommand())
	root.AddCommand(c.distanceCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.corpusCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	// Entries are scoped to the build version.
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	if c.cacheURL != "" {
		rc, err := cache.NewRedisCache(ctx, c.cacheURL, cachePrefix)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeBackend, err, "connect cache")
		}
		c.Logger.Debug("Using redis cache", "url", c.cacheURL)
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("Caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/schemadapt/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// loadGraph reads a graph file and tags failures with an error code.
func loadGraph(path string) (*bpc.Graph, error) {
	g, err := graph.ReadGraphFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "load graph")
	case err != nil:
		return nil, errs.Wrap(errs.ErrCodeInvalidGraph, err, "load graph")
	}
	return g, nil
}

// loadCosts reads a TOML cost config, or returns the defaults when path is empty.
func loadCosts(path string) (*cost.Config, error) {
	if path == "" {
		return cost.Default(), nil
	}
	cfg, err := cost.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "load costs")
	case err != nil:
		return nil, errs.Wrap(errs.ErrCodeInvalidCostConfig, err, "load costs")
	}
	return cfg, nil
}

// optionFlags are the pipeline options shared by adapt, rank, diff, and distance.
type optionFlags struct {
	costs string
	opts  pipeline.Options
}

func (f *optionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.costs, "costs", "", "cost config TOML file (default: built-in prices)")
	cmd.Flags().StringVar(&f.opts.Policy, "policy", pipeline.DefaultPolicy, "network matching policy: majority, histogram, chain")
	cmd.Flags().BoolVar(&f.opts.Refresh, "refresh", false, "ignore cached results")
	completeValues(cmd, "policy", policyNames...)
}

// options returns validated pipeline options with the cost config loaded.
func (f *optionFlags) options(logger *log.Logger) (pipeline.Options, error) {
	costs, err := loadCosts(f.costs)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := f.opts
	opts.Costs = costs
	opts.Logger = logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
