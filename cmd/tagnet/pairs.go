package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cognicore/tagnet/pkg/tagnet/cooc"
	"github.com/cognicore/tagnet/pkg/tagnet/export"
	"github.com/cognicore/tagnet/pkg/tagnet/store"
	"github.com/cognicore/tagnet/pkg/tagnet/store/sqlite"
)

type pairsOptions struct {
	top    int
	min    int64
	csv    bool
	dbPath string
	runID  string
	entity string
}

func newPairsCmd(g *globalOptions) *cobra.Command {
	opts := &pairsOptions{}
	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "List the most frequent hashtag pairs",
		Long: `List hashtag pairs ordered by how many posts contain both.

Without --db the inputs are counted again. With --db the pairs come from a
run stored by "tagnet build --db" (the latest one unless --run is given),
and --entity lists the strongest neighbours of one hashtag instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.dbPath != "" {
				return runStoredPairs(cmd, opts)
			}
			return runPairs(cmd, g, opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.top, "top", "n", 0, "pairs to list (default: top_pairs from config)")
	f.Int64Var(&opts.min, "min", 0, "minimum pair count (default: min_edge_support from config)")
	f.BoolVar(&opts.csv, "csv", false, "write CSV instead of text")
	f.StringVar(&opts.dbPath, "db", "", "read pairs from a stored run in this SQLite file")
	f.StringVar(&opts.runID, "run", "", "stored run ID (default: latest)")
	f.StringVar(&opts.entity, "entity", "", "list neighbours of this hashtag (with --db)")
	return cmd
}

func runPairs(cmd *cobra.Command, g *globalOptions, opts *pairsOptions) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("top") {
		cfg.TopPairs = opts.top
	}
	if cmd.Flags().Changed("min") {
		cfg.MinEdgeSupport = opts.min
	}

	c, err := countCorpus(cmd.Context(), cfg, g.logger(cmd))
	if err != nil {
		return err
	}

	pairs, err := cooc.TopPairs(c.result.Counts, cfg.MinEdgeSupport, cfg.TopPairs)
	if errors.Is(err, cooc.ErrNoPairs) {
		return &exitError{code: 2, err: fmt.Errorf(
			"no pair was seen %d or more times; lower the threshold with --min: %w",
			cfg.MinEdgeSupport, err)}
	}
	if err != nil {
		return err
	}

	if opts.csv {
		return export.WritePairsCSV(cmd.OutOrStdout(), pairs)
	}
	return export.WritePairsText(cmd.OutOrStdout(), pairs)
}

func runStoredPairs(cmd *cobra.Command, opts *pairsOptions) error {
	ctx := cmd.Context()
	st, err := sqlite.OpenSQLite(ctx, opts.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	var run store.RunInfo
	if opts.runID != "" {
		r, err := st.GetRun(ctx, opts.runID)
		if err != nil {
			return fmt.Errorf("run %s: %w", opts.runID, err)
		}
		run = r.RunInfo
	} else {
		r, err := st.LatestRun(ctx)
		if err != nil {
			return fmt.Errorf("latest run: %w", err)
		}
		run = r.RunInfo
	}

	top := opts.top
	if top <= 0 {
		top = 10
	}
	out := cmd.OutOrStdout()

	if opts.entity != "" {
		entity := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(opts.entity), "#"))
		neighbors, err := st.TopNeighbors(ctx, run.ID, entity, top)
		if err != nil {
			return err
		}
		return writeNeighbors(out, entity, neighbors)
	}

	edges, err := st.TopEdges(ctx, run.ID, top)
	if err != nil {
		return err
	}
	if opts.csv {
		pairs := make([]cooc.RankedPair, 0, len(edges))
		for _, e := range edges {
			pairs = append(pairs, cooc.RankedPair{Pair: cooc.Pair{A: e.Source, B: e.Target}, Count: e.Weight})
		}
		return export.WritePairsCSV(out, pairs)
	}
	return writeEdges(out, edges)
}

func writeEdges(w io.Writer, edges []store.EdgeRow) error {
	for i, e := range edges {
		if _, err := fmt.Fprintf(w, "%2d. #%s + #%s: %s\n", i+1, e.Source, e.Target, humanize.Comma(e.Weight)); err != nil {
			return err
		}
	}
	return nil
}

func writeNeighbors(w io.Writer, entity string, neighbors []store.Neighbor) error {
	for i, n := range neighbors {
		if _, err := fmt.Fprintf(w, "%2d. #%s + #%s: %s\n", i+1, entity, n.Entity, humanize.Comma(n.Weight)); err != nil {
			return err
		}
	}
	return nil
}
