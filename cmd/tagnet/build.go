package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cognicore/tagnet/pkg/tagnet/config"
	"github.com/cognicore/tagnet/pkg/tagnet/cooc"
	"github.com/cognicore/tagnet/pkg/tagnet/export"
	"github.com/cognicore/tagnet/pkg/tagnet/graph"
	"github.com/cognicore/tagnet/pkg/tagnet/report"
	"github.com/cognicore/tagnet/pkg/tagnet/stoplist"
	"github.com/cognicore/tagnet/pkg/tagnet/store/sqlite"
)

// Output file names written by build.
const (
	edgesFile  = "hashtag_edges.csv"
	gmlFile    = "hashtag_graph.gml"
	dotFile    = "hashtag_graph.dot"
	jsonFile   = "hashtag_graph.json"
	layoutFile = "hashtag_layout.json"
	reportFile = "report.json"
)

const (
	defaultSeed = 42
	layoutK     = 0.6
)

type buildOptions struct {
	outDir         string
	dbPath         string
	minEdgeSupport int64
	seed           uint64
	unseeded       bool
	workers        int
	topN           int
}

func newBuildCmd(g *globalOptions) *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the co-occurrence graph and write it out",
		Long: `Count hashtag pairs over the inputs, keep pairs seen at least
min_edge_support times, detect communities and write:

  hashtag_edges.csv    source,target,weight
  hashtag_graph.gml    nodes with frequency and community, weighted edges
  hashtag_graph.dot    the same graph for Graphviz
  hashtag_graph.json   node-link JSON
  hashtag_layout.json  positions for the top-N preview
  report.json          run summary

Exits with status 2 when no pair reaches the threshold.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, g, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.outDir, "out", "o", ".", "output directory")
	f.StringVar(&opts.dbPath, "db", "", "also store the run in this SQLite file")
	f.Int64Var(&opts.minEdgeSupport, "min-edge-support", 0, "minimum pair count for an edge (overrides config)")
	f.Uint64Var(&opts.seed, "seed", defaultSeed, "community detection seed, used when the config sets none")
	f.BoolVar(&opts.unseeded, "unseeded", false, "leave community detection unseeded (results vary between runs)")
	f.IntVar(&opts.workers, "workers", 0, "parallel extraction workers (overrides config)")
	f.IntVar(&opts.topN, "top-n", 0, "nodes in the layout preview (overrides config)")
	return cmd
}

func (o *buildOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("min-edge-support") {
		cfg.MinEdgeSupport = o.minEdgeSupport
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("top-n") {
		cfg.TopN = o.topN
	}
	switch {
	case o.unseeded:
		cfg.Seed = nil
	case flags.Changed("seed") || cfg.Seed == nil:
		seed := o.seed
		cfg.Seed = &seed
	}
}

func runBuild(cmd *cobra.Command, g *globalOptions, opts *buildOptions) error {
	ctx := cmd.Context()
	logger := g.logger(cmd)

	cfg, err := g.config()
	if err != nil {
		return err
	}
	opts.apply(cmd, &cfg)

	c, err := countCorpus(ctx, cfg, logger)
	if err != nil {
		return err
	}
	counts := c.result.Counts

	gr, err := graph.Build(counts.Nodes, counts.Edges, graph.BuildOptions{
		MinEdgeSupport: cfg.MinEdgeSupport,
		MinNodeCount:   cfg.MinNodeCount,
		DropIsolated:   cfg.DropIsolated,
	})
	empty := errors.Is(err, graph.ErrEmptyGraph)
	if err != nil && !empty {
		return err
	}

	var (
		assignment graph.Assignment
		modularity float64
	)
	if !empty {
		if cfg.Seed == nil {
			logger.Warn("community detection is unseeded; labels may differ between runs")
		}
		assignment, err = graph.Louvain{Resolution: cfg.Resolution}.Partition(gr, cfg.Seed)
		if err != nil {
			return fmt.Errorf("partition: %w", err)
		}
		modularity = graph.Modularity(gr, assignment, cfg.Resolution)
	}

	pairs, err := cooc.TopPairs(counts, cfg.MinEdgeSupport, cfg.TopPairs)
	if err != nil && !errors.Is(err, cooc.ErrNoPairs) {
		return err
	}
	noise := c.components.Stoplist.SuggestCandidates(c.result.Summary.NoiseStats(counts), stoplist.DefaultThresholds())

	rep := report.New().Build(report.Input{
		Inputs:         cfg.Inputs,
		Policy:         cfg.Policy,
		MinEdgeSupport: cfg.MinEdgeSupport,
		Seed:           cfg.Seed,
		Summary:        c.result.Summary,
		Graph:          gr,
		Assignment:     assignment,
		Modularity:     modularity,
		Pairs:          pairs,
		Noise:          noise,
	})

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := writeFile(opts.outDir, reportFile, func(w io.Writer) error { return report.Write(w, rep) }); err != nil {
		return err
	}
	if empty {
		return &exitError{code: 2, err: fmt.Errorf(
			"no pair was seen %d or more times; lower the threshold with --min-edge-support: %w",
			cfg.MinEdgeSupport, graph.ErrEmptyGraph)}
	}

	preview := graph.TopN(gr, cfg.TopN)
	layoutSeed := uint64(defaultSeed)
	if cfg.Seed != nil {
		layoutSeed = *cfg.Seed
	}
	positions := graph.Layout(preview, graph.LayoutOptions{
		Iterations: cfg.LayoutIterations,
		K:          layoutK,
		Seed:       layoutSeed,
	})

	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{edgesFile, func(w io.Writer) error { return export.WriteEdgeList(w, gr) }},
		{gmlFile, func(w io.Writer) error { return export.WriteGML(w, gr, assignment) }},
		{dotFile, func(w io.Writer) error { return export.WriteDOT(w, gr, assignment) }},
		{jsonFile, func(w io.Writer) error { return export.WriteJSON(w, gr, assignment) }},
		{layoutFile, func(w io.Writer) error { return export.WriteLayout(w, preview, positions, assignment) }},
	}
	for _, out := range outputs {
		if err := writeFile(opts.outDir, out.name, out.write); err != nil {
			return err
		}
	}

	if opts.dbPath != "" {
		st, err := sqlite.OpenSQLite(ctx, opts.dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveRun(ctx, rep.Run(gr, assignment)); err != nil {
			return fmt.Errorf("store run: %w", err)
		}
		logger.Info("run stored", "id", rep.ID, "db", opts.dbPath)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %s nodes, %s edges, %d communities (modularity %.3f) in %s\n",
		rep.ID,
		humanize.Comma(int64(gr.NumNodes())),
		humanize.Comma(int64(gr.NumEdges())),
		assignment.Count(),
		modularity,
		opts.outDir,
	)
	return nil
}

func writeFile(dir, name string, write func(io.Writer) error) (err error) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
