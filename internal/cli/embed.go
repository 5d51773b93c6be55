package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/umapsgd"
	"github.com/hupe1980/umapsgd/checkpoint"
	"github.com/hupe1980/umapsgd/resource"
)

// runFlags are shared by embed and transform.
type runFlags struct {
	config      string
	output      string
	init        string
	nVertices   int
	seed        uint64
	workers     int
	epochs      int
	dim         int
	spread      float64
	minDist     float64
	metricsAddr string
	resume      bool

	ckptURI      string
	ckptPrefix   string
	ckptEvery    int
	ckptInterval time.Duration
	ckptKeep     int
	compression  string
}

func (f *runFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "TOML config file")
	fl.StringVarP(&f.output, "output", "o", "", "output CSV (default: <input>.emb.csv)")
	fl.StringVar(&f.init, "init", "", "initial embedding CSV (default: seeded uniform in [-10, 10))")
	fl.IntVarP(&f.nVertices, "vertices", "n", 0, "vertex count (default: largest index + 1)")
	fl.Uint64Var(&f.seed, "seed", 0, "random seed (default: clock)")
	fl.IntVarP(&f.workers, "workers", "w", 0, "kernel workers (default: GOMAXPROCS)")
	fl.IntVarP(&f.epochs, "epochs", "e", 0, "epochs (default: 500 for small graphs, 200 above 10000 vertices)")
	fl.IntVarP(&f.dim, "dim", "d", 0, "embedding dimension (default: params.n_components)")
	fl.Float64Var(&f.spread, "spread", 0, "fit a/b from spread and --min-dist")
	fl.Float64Var(&f.minDist, "min-dist", 0.1, "minimum distance used with --spread")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fl.BoolVar(&f.resume, "resume", false, "start from the latest checkpoint")

	fl.StringVar(&f.ckptURI, "checkpoint", "", "checkpoint location (dir, file://, s3://, minio://)")
	fl.StringVar(&f.ckptPrefix, "checkpoint-prefix", "", "checkpoint name prefix")
	fl.IntVar(&f.ckptEvery, "checkpoint-every", 0, "save every N epochs")
	fl.DurationVar(&f.ckptInterval, "checkpoint-interval", 0, "also save when this much time has passed")
	fl.IntVar(&f.ckptKeep, "checkpoint-keep", 0, "keep only the newest N checkpoints")
	fl.StringVar(&f.compression, "compression", "", "checkpoint compression: none, lz4, zstd")
}

// resolve merges the config file with flags that were set explicitly.
func (f *runFlags) resolve(cmd *cobra.Command) (Config, error) {
	cfg, err := LoadConfig(f.config)
	if err != nil {
		return cfg, err
	}

	changed := cmd.Flags().Changed
	if changed("seed") {
		cfg.Seed, cfg.HasSeed = f.seed, true
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("epochs") {
		cfg.Params.NEpochs = f.epochs
	}
	if changed("dim") {
		cfg.Params.NComponents = f.dim
	}
	if changed("spread") {
		cfg.Curve.Spread = f.spread
	}
	if changed("min-dist") {
		cfg.Curve.MinDist = f.minDist
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	if changed("checkpoint") {
		cfg.Checkpoint.URI = f.ckptURI
	}
	if changed("checkpoint-prefix") {
		cfg.Checkpoint.Prefix = f.ckptPrefix
	}
	if changed("checkpoint-every") {
		cfg.Checkpoint.Every = f.ckptEvery
	}
	if changed("checkpoint-interval") {
		cfg.Checkpoint.Interval = f.ckptInterval
	}
	if changed("checkpoint-keep") {
		cfg.Checkpoint.Keep = f.ckptKeep
	}
	if changed("compression") {
		cfg.Checkpoint.Compression = f.compression
	}
	return cfg, nil
}

func (f *runFlags) outputPath(input string) string {
	if f.output != "" {
		return f.output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".emb.csv"
}

// embedCommand creates the embed command.
func (c *CLI) embedCommand() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "embed [edges.tsv]",
		Short: "Optimize a layout for a weighted graph",
		Long: `Optimize a low-dimensional layout for a weighted graph.

The input is a whitespace separated edge list ("row col weight" per line) of a
symmetric fuzzy graph. The layout is initialized from --init, from the latest
checkpoint with --resume, or uniformly at random, and written as CSV.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			return c.runEmbed(cmd.Context(), args[0], &f, cfg)
		},
	}
	f.register(cmd)
	return cmd
}

func (c *CLI) runEmbed(ctx context.Context, input string, f *runFlags, cfg Config) error {
	params, err := cfg.resolveParams()
	if err != nil {
		return err
	}
	rc := cfg.resources()

	graph, err := readEdgesFile(ctx, input, f.nVertices, f.nVertices, rc)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	if params.NEpochs == 0 {
		params.NEpochs = umapsgd.DefaultEpochs(graph.NRows)
	}

	emb, err := c.initialEmbedding(ctx, f, cfg, graph.NRows, params.NComponents)
	if err != nil {
		return err
	}

	res, err := c.run(ctx, cfg, rc, params, func(params umapsgd.Params, opts []umapsgd.Option) (*umapsgd.Result, error) {
		return umapsgd.Embed(ctx, graph, emb, params, opts...)
	})
	if err != nil {
		return err
	}

	out := f.outputPath(input)
	if err := writeEmbeddingFile(ctx, out, emb, rc); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}
	c.report(res, out)
	return nil
}

func (c *CLI) initialEmbedding(ctx context.Context, f *runFlags, cfg Config, n, dim int) (*umapsgd.Embedding, error) {
	switch {
	case f.resume:
		if cfg.Checkpoint.URI == "" {
			return nil, errors.New("--resume needs a checkpoint location")
		}
		store, err := openStore(ctx, cfg.Checkpoint.URI)
		if err != nil {
			return nil, err
		}
		snap, err := checkpoint.Latest(ctx, store, cfg.Checkpoint.Prefix)
		if err != nil {
			return nil, fmt.Errorf("resume: %w", err)
		}
		c.Logger.Info("resuming", "epoch", snap.Epoch, "vertices", snap.Rows)
		emb, err := snap.Embedding()
		if err != nil {
			return nil, err
		}
		return checkShape(emb, n, dim)

	case f.init != "":
		emb, err := readEmbeddingFile(f.init)
		if err != nil {
			return nil, err
		}
		return checkShape(emb, n, dim)

	default:
		seed := cfg.Seed
		if !cfg.HasSeed {
			seed = uint64(time.Now().UnixNano())
		}
		return uniformEmbedding(n, dim, seed), nil
	}
}

// checkShape validates a loaded embedding against the graph.
func checkShape(emb *umapsgd.Embedding, n, dim int) (*umapsgd.Embedding, error) {
	if emb.Len() != n {
		return nil, &umapsgd.DimensionMismatchError{Expected: n, Actual: emb.Len()}
	}
	if emb.Dim() != dim {
		return nil, &umapsgd.DimensionMismatchError{Expected: dim, Actual: emb.Dim()}
	}
	return emb, nil
}

// run wires checkpoints and metrics around one launcher call.
func (c *CLI) run(ctx context.Context, cfg Config, rc *resource.Controller, params umapsgd.Params,
	launch func(umapsgd.Params, []umapsgd.Option) (*umapsgd.Result, error),
) (*umapsgd.Result, error) {
	mc, stop, err := c.serveMetrics(ctx, cfg.MetricsAddr)
	if err != nil {
		return nil, fmt.Errorf("metrics endpoint: %w", err)
	}
	defer stop()

	if cfg.Checkpoint.URI != "" {
		w, err := c.checkpointWriter(ctx, cfg, rc, params)
		if err != nil {
			return nil, err
		}
		params.Callback = w
	}

	p := newProgress(c.Logger)
	res, err := launch(params, cfg.options(c, rc, mc))
	if err != nil {
		return nil, err
	}
	p.done(fmt.Sprintf("Optimized %d edges over %d epochs", res.ActiveEdges, res.NEpochs))
	return res, nil
}

func (c *CLI) checkpointWriter(ctx context.Context, cfg Config, rc *resource.Controller, params umapsgd.Params) (*checkpoint.Writer, error) {
	store, err := openStore(ctx, cfg.Checkpoint.URI)
	if err != nil {
		return nil, err
	}
	comp, err := checkpoint.ParseCompression(cfg.Checkpoint.Compression)
	if err != nil {
		return nil, err
	}

	return checkpoint.NewWriter(store, cfg.Checkpoint.Prefix, func(o *checkpoint.Options) {
		o.Every = cfg.Checkpoint.Every
		o.Interval = cfg.Checkpoint.Interval
		o.Keep = cfg.Checkpoint.Keep
		o.NEpochs = params.NEpochs
		o.Compression = comp
		o.Logger = c.slogger()
		o.Resources = rc
	}), nil
}

func (c *CLI) report(res *umapsgd.Result, output string) {
	pruned := uint64(0)
	if res.Pruned != nil {
		pruned = res.Pruned.GetCardinality()
	}
	c.Logger.Info("layout written",
		"output", output,
		"epochs", res.NEpochs,
		"active_edges", res.ActiveEdges,
		"pruned_edges", pruned,
		"threshold", res.Threshold,
		"duration", res.Duration.Round(time.Millisecond),
	)
}

// transformCommand creates the transform command.
func (c *CLI) transformCommand() *cobra.Command {
	var (
		f         runFlags
		reference string
	)

	cmd := &cobra.Command{
		Use:   "transform [edges.tsv]",
		Short: "Place new points against a fixed reference layout",
		Long: `Place new points against a fixed reference layout.

Rows of the edge list index the new points, columns index rows of the
--reference embedding, which is never moved. New points start at the weighted
mean of their reference neighbors unless --init is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			return c.runTransform(cmd.Context(), args[0], reference, &f, cfg)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "reference embedding CSV")
	_ = cmd.MarkFlagRequired("reference")
	return cmd
}

func (c *CLI) runTransform(ctx context.Context, input, reference string, f *runFlags, cfg Config) error {
	params, err := cfg.resolveParams()
	if err != nil {
		return err
	}
	rc := cfg.resources()

	tail, err := readEmbeddingFile(reference)
	if err != nil {
		return fmt.Errorf("load reference: %w", err)
	}
	params.NComponents = tail.Dim()

	graph, err := readEdgesFile(ctx, input, f.nVertices, tail.Len(), rc)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	if params.NEpochs == 0 {
		params.NEpochs = umapsgd.DefaultEpochs(graph.NRows)
	}

	var head *umapsgd.Embedding
	if f.init != "" || f.resume {
		head, err = c.initialEmbedding(ctx, f, cfg, graph.NRows, tail.Dim())
		if err != nil {
			return err
		}
	} else {
		head = referenceEmbedding(graph, tail)
	}

	res, err := c.run(ctx, cfg, rc, params, func(params umapsgd.Params, opts []umapsgd.Option) (*umapsgd.Result, error) {
		return umapsgd.Transform(ctx, graph, head, tail, params, opts...)
	})
	if err != nil {
		return err
	}

	out := f.outputPath(input)
	if err := writeEmbeddingFile(ctx, out, head, rc); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}
	c.report(res, out)
	return nil
}
