package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schemadapt/internal/server"
	"github.com/matzehuels/schemadapt/pkg/metrics"
	"github.com/matzehuels/schemadapt/pkg/observability"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	timeout   time.Duration
	noMetrics bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		opts   serveOpts
		source sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the adaptation API over HTTP",
		Long: `Serve the adaptation API over HTTP.

The API accepts graphs as JSON and exposes adapt, rank, distance, and diff
under /v1. With --corpus or --mongo, templates can be ranked and adapted by
name, and with --corpus each subdirectory is a collection a rank request can
select. Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts, &source)
		},
	}

	source.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", server.DefaultRequestTimeout, "per-request time limit")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not serve /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts, source *sourceFlags) error {
	cfg := server.Config{
		Addr:           opts.addr,
		Logger:         c.Logger,
		RequestTimeout: opts.timeout,
	}

	if source.dir != "" || source.mongoURI != "" {
		src, release, err := source.open(ctx)
		if err != nil {
			return err
		}
		defer release()
		cfg.Corpus = src
		cfg.CorpusRoot = source.dir
		c.Logger.Debug("Serving corpus", "dir", source.dir, "mongo", source.mongoURI != "")
	}

	if !opts.noMetrics {
		reg := metrics.DefaultRegistry()
		observability.SetAdaptHooks(reg)
		observability.SetCacheHooks(reg)
		observability.SetServerHooks(reg)
		defer observability.Reset()
		cfg.Metrics = reg.Handler()
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	cfg.Runner = runner

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	printSuccess("Listening on %s", StyleNumber.Render("http://"+srv.Addr()))
	if cfg.Corpus != nil {
		if names, err := cfg.Corpus.Names(ctx); err == nil {
			printDetail("%d templates", len(names))
		}
	}
	return srv.ListenAndServe(ctx)
}
