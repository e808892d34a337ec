package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/tagnet/pkg/tagnet/config"
)

type extractOptions struct {
	policy       string
	minLength    int
	showExcluded bool
}

func newExtractCmd(g *globalOptions) *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract [flags] VALUE...",
		Short: "Show the hashtags extracted from raw field values",
		Long: `Run the configured extractor over each argument and print the
resulting hashtags, sorted and space separated, one line per argument.

  tagnet extract "['#NATO', '#Ukraine', '#NATO']"
  tagnet extract --policy marker "Kyiv today #StandWithUkraine #NATO"

With --show-excluded the active exclusion set is written to stderr first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, g, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.policy, "policy", "p", "", "fallback policy: separator or marker (overrides config)")
	f.IntVar(&opts.minLength, "min-length", 0, "separator-split minimum length (overrides config)")
	f.BoolVar(&opts.showExcluded, "show-excluded", false, "print the excluded entities to stderr")
	return cmd
}

func runExtract(cmd *cobra.Command, g *globalOptions, opts *extractOptions, args []string) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	if opts.policy != "" {
		cfg.Policy = opts.policy
	}
	if cmd.Flags().Changed("min-length") {
		cfg.MinLength = opts.minLength
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	loader := config.Loader{Config: cfg}
	comp, err := loader.Load()
	if err != nil {
		return err
	}

	logger := g.logger(cmd)
	if opts.showExcluded {
		excluded := comp.Stoplist.All()
		if _, err := fmt.Fprintf(cmd.ErrOrStderr(), "excluded (%d): %s\n", len(excluded), strings.Join(excluded, " ")); err != nil {
			return err
		}
	}
	out := cmd.OutOrStdout()
	for _, raw := range args {
		o := comp.Extractor.ExtractDetailed(raw)
		logger.Debug("extracted", "strategy", o.Strategy, "malformed", o.Malformed, "tags", o.Tags.Len())
		if _, err := fmt.Fprintln(out, strings.Join(o.Tags.Sorted(), " ")); err != nil {
			return err
		}
	}
	return nil
}
