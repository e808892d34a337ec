package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cognicore/tagnet/internal/logging"
	"github.com/cognicore/tagnet/internal/records"
	"github.com/cognicore/tagnet/pkg/tagnet/config"
	"github.com/cognicore/tagnet/pkg/tagnet/internalerr"
	"github.com/cognicore/tagnet/pkg/tagnet/pipeline"
)

// exitError carries a process exit status other than 1.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

type globalOptions struct {
	configPath string
	inputs     []string
	debug      bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:   "tagnet",
		Short: "Hashtag co-occurrence graphs from exported posts",
		Long: `tagnet extracts hashtags from exported posts, counts how often each pair
appears in the same post and turns the counts into a weighted graph with
communities.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "run configuration (YAML)")
	pf.StringSliceVarP(&g.inputs, "input", "i", nil, "input files; replaces the configured inputs")
	pf.BoolVar(&g.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newBuildCmd(g),
		newPairsCmd(g),
		newStatsCmd(g),
		newExtractCmd(g),
		newRunsCmd(),
	)
	return root
}

// config loads the configuration file, or the defaults when none is given.
func (g *globalOptions) config() (config.Config, error) {
	cfg := config.Defaults()
	if g.configPath != "" {
		var err error
		if cfg, err = config.Load(g.configPath); err != nil {
			return config.Config{}, err
		}
	}
	if len(g.inputs) > 0 {
		cfg.Inputs = g.inputs
	}
	return cfg, nil
}

func (g *globalOptions) logger(cmd *cobra.Command) *log.Logger {
	return logging.New(logging.Options{Debug: g.debug, Output: cmd.ErrOrStderr()})
}

// corpus is the outcome of one counting pass over the configured inputs.
type corpus struct {
	components *config.Components
	result     *pipeline.Result
	skipped    int64
}

func countCorpus(ctx context.Context, cfg config.Config, logger *log.Logger) (*corpus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Inputs) == 0 {
		return nil, fmt.Errorf("no inputs; list them in the config or pass --input: %w", internalerr.ErrInvalidConfig)
	}

	loader := config.Loader{Config: cfg}
	comp, err := loader.Load()
	if err != nil {
		return nil, err
	}

	readers, err := records.OpenAll(cfg.Inputs, records.Options{
		Format: cfg.Format,
		Field:  cfg.Field,
		Key:    cfg.Key,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	sources := make([]pipeline.Source, len(readers))
	for i, r := range readers {
		sources[i] = r
	}

	logger.Info("counting", "inputs", len(readers), "policy", comp.Extractor.Policy(), "workers", cfg.Workers)
	res, err := pipeline.Run(ctx, sources, pipeline.Options{
		Extractor:     comp.Extractor,
		Dedupe:        cfg.Key != "",
		PairFilter:    comp.Pairs,
		Workers:       cfg.Workers,
		MaxTags:       cfg.MaxTags,
		ProgressEvery: cfg.ProgressEvery,
		TopEntities:   cfg.TopEntities,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	c := &corpus{components: comp, result: res}
	for _, r := range readers {
		c.skipped += r.Skipped()
	}
	if c.skipped > 0 {
		logger.Warn("malformed rows skipped", "rows", humanize.Comma(c.skipped))
	}
	return c, nil
}
