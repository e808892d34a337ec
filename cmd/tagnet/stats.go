package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cognicore/tagnet/pkg/tagnet/analytics"
	"github.com/cognicore/tagnet/pkg/tagnet/stoplist"
)

type statsOptions struct {
	json      bool
	top       int
	dfPercent float64
	npmiMax   float64
}

func newStatsCmd(g *globalOptions) *cobra.Command {
	def := stoplist.DefaultThresholds()
	opts := &statsOptions{}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise hashtag usage and suggest noise tags",
		Long: `Print corpus totals (records, duplicates, tagged records, average tags
per record, unique hashtags), the most frequent hashtags and hashtags that
look like noise: present in a large share of tagged records yet not
associated with anything in particular. Search-query hashtags usually show
up here and are good candidates for the exclude list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, g, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.json, "json", false, "print JSON")
	f.IntVarP(&opts.top, "top", "n", 0, "hashtags to list (default: top_entities from config)")
	f.Float64Var(&opts.dfPercent, "df", def.DFPercent, "noise: minimum share of tagged records, in percent")
	f.Float64Var(&opts.npmiMax, "npmi", def.NPMIMax, "noise: maximum NPMI with any partner")
	return cmd
}

type statsReport struct {
	Summary analytics.Summary `json:"summary"`
	Skipped int64             `json:"skipped_rows"`
	Noise   []noiseEntry      `json:"noise_candidates"`
}

type noiseEntry struct {
	Entity    string  `json:"entity"`
	DFPercent float64 `json:"df_percent"`
	NPMIMax   float64 `json:"npmi_max"`
	Score     float64 `json:"score"`
}

func runStats(cmd *cobra.Command, g *globalOptions, opts *statsOptions) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("top") {
		cfg.TopEntities = opts.top
	}

	c, err := countCorpus(cmd.Context(), cfg, g.logger(cmd))
	if err != nil {
		return err
	}

	summary := c.result.Summary
	candidates := c.components.Stoplist.SuggestCandidates(
		summary.NoiseStats(c.result.Counts),
		stoplist.Thresholds{DFPercent: opts.dfPercent, NPMIMax: opts.npmiMax},
	)
	rep := statsReport{Summary: summary, Skipped: c.skipped, Noise: make([]noiseEntry, 0, len(candidates))}
	for _, cand := range candidates {
		rep.Noise = append(rep.Noise, noiseEntry{
			Entity:    cand.Token,
			DFPercent: cand.Reason.DFPercent,
			NPMIMax:   cand.Reason.NPMIMax,
			Score:     cand.Score,
		})
	}

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return writeStats(cmd.OutOrStdout(), rep)
}

func writeStats(w io.Writer, rep statsReport) error {
	s := rep.Summary
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p := &printer{w: tw}
	p.printf("records\t%s\n", humanize.Comma(s.Records))
	p.printf("duplicates dropped\t%s\n", humanize.Comma(s.Duplicates))
	p.printf("skipped rows\t%s\n", humanize.Comma(rep.Skipped))
	p.printf("malformed fields\t%s\n", humanize.Comma(s.Malformed))
	p.printf("records with tags\t%s\n", humanize.Comma(s.Tagged))
	p.printf("records with 2+ tags\t%s\n", humanize.Comma(s.MultiTagged))
	p.printf("avg tags per record\t%.2f\n", s.AvgTags)
	p.printf("unique hashtags\t%s\n", humanize.Comma(int64(s.UniqueEntities)))

	if len(s.Top) > 0 {
		p.printf("\ntop hashtags\n")
		for i, e := range s.Top {
			p.printf("%2d. #%s\t%s\n", i+1, e.Entity, humanize.Comma(e.Count))
		}
	}
	if len(rep.Noise) > 0 {
		p.printf("\nnoise candidates\n")
		for _, n := range rep.Noise {
			p.printf("#%s\tdf %.1f%%\tscore %.2f\n", n.Entity, n.DFPercent, n.Score)
		}
	}
	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
