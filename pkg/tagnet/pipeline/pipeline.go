// Package pipeline runs the extract, dedupe and count stages over a set of
// record sources and returns the final counts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/tagnet/pkg/tagnet/analytics"
	"github.com/cognicore/tagnet/pkg/tagnet/cooc"
	"github.com/cognicore/tagnet/pkg/tagnet/dedupe"
	"github.com/cognicore/tagnet/pkg/tagnet/extract"
	"github.com/cognicore/tagnet/pkg/tagnet/internalerr"
)

// Record is one input row. A nil Field is a missing value.
type Record struct {
	Key   string
	Field *string
}

// Source yields records and returns io.EOF once exhausted.
type Source interface {
	Next() (Record, error)
}

// Options configures Run.
type Options struct {
	Extractor  *extract.Extractor // required
	Dedupe     bool               // drop records whose Key was already seen
	PairFilter cooc.PairFilter

	// Workers > 1 extracts and counts in parallel, each worker into a
	// private counter; counters are merged once every worker is done.
	Workers int
	// MaxTags caps the entities counted per record (sorted order, first
	// MaxTags kept). Zero disables the cap.
	MaxTags int

	ProgressEvery int64 // log progress every N records; zero disables
	TopEntities   int   // entities listed in the summary
	Logger        *log.Logger
}

// Result holds the final counts of a run.
type Result struct {
	Counts  cooc.Snapshot
	Summary analytics.Summary
}

const batchSize = 256

// Run consumes every source in order. A source error other than io.EOF
// aborts the run; there is no partial result.
func Run(ctx context.Context, sources []Source, opts Options) (*Result, error) {
	if opts.Extractor == nil {
		return nil, fmt.Errorf("pipeline needs an extractor: %w", internalerr.ErrInvalidInput)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	r := &reader{sources: sources, opts: opts}
	if opts.Dedupe {
		r.seen = dedupe.New()
	}

	var (
		counter  *cooc.Counter
		analyzer *analytics.Analyzer
		err      error
	)
	if opts.Workers > 1 {
		counter, analyzer, err = runParallel(ctx, r, opts)
	} else {
		counter, analyzer, err = runSequential(ctx, r, opts)
	}
	if err != nil {
		return nil, err
	}

	analyzer.Merge(r.stats)
	if r.seen != nil {
		opts.Logger.Debug("dedupe done", "keys", r.seen.Len(), "dropped", r.seen.Dropped())
	}
	res := &Result{
		Counts:  counter.Snapshot(),
		Summary: analyzer.Summary(opts.TopEntities),
	}
	opts.Logger.Info("counting done",
		"records", humanize.Comma(res.Summary.Records),
		"duplicates", humanize.Comma(res.Summary.Duplicates),
		"tagged", humanize.Comma(res.Summary.Tagged),
		"unique_entities", humanize.Comma(int64(len(res.Counts.Nodes))),
		"unique_pairs", humanize.Comma(int64(len(res.Counts.Edges))),
	)
	return res, nil
}

func runSequential(ctx context.Context, r *reader, opts Options) (*cooc.Counter, *analytics.Analyzer, error) {
	w := newWorker(opts)
	for {
		rec, ok, err := r.next(ctx)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return w.counter, w.analyzer, nil
		}
		w.process(rec)
		if opts.ProgressEvery > 0 && r.read%opts.ProgressEvery == 0 {
			opts.Logger.Info("progress",
				"records", humanize.Comma(r.read),
				"unique_entities", humanize.Comma(int64(w.counter.UniqueNodes())),
				"unique_pairs", humanize.Comma(int64(w.counter.UniquePairs())),
			)
		}
	}
}

func runParallel(ctx context.Context, r *reader, opts Options) (*cooc.Counter, *analytics.Analyzer, error) {
	batches := make(chan []Record, opts.Workers)
	workers := make([]*worker, opts.Workers)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers + 1)

	g.Go(func() error {
		defer close(batches)
		batch := make([]Record, 0, batchSize)
		for {
			rec, ok, err := r.next(gCtx)
			if err != nil {
				return err
			}
			if ok {
				batch = append(batch, rec)
				if opts.ProgressEvery > 0 && r.read%opts.ProgressEvery == 0 {
					opts.Logger.Info("progress", "records", humanize.Comma(r.read))
				}
			}
			if len(batch) == batchSize || (!ok && len(batch) > 0) {
				select {
				case batches <- batch:
				case <-gCtx.Done():
					return gCtx.Err()
				}
				batch = make([]Record, 0, batchSize)
			}
			if !ok {
				return nil
			}
		}
	})

	for i := range workers {
		w := newWorker(opts)
		workers[i] = w
		g.Go(func() error {
			for batch := range batches {
				for _, rec := range batch {
					w.process(rec)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	counter := cooc.NewCounter()
	analyzer := analytics.NewAnalyzer()
	for _, w := range workers {
		counter.Merge(w.counter)
		analyzer.Merge(w.analyzer)
	}
	return counter, analyzer, nil
}

// reader walks the sources and applies dedup. It is only ever used from one
// goroutine.
type reader struct {
	sources []Source
	current int
	opts    Options
	seen    *dedupe.Set
	stats   *analytics.Analyzer // duplicates only
	read    int64
}

// next returns the next non-duplicate record; ok is false at the end of
// the last source.
func (r *reader) next(ctx context.Context) (Record, bool, error) {
	if r.stats == nil {
		r.stats = analytics.NewAnalyzer()
	}
	for r.current < len(r.sources) {
		if r.read%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return Record{}, false, err
			}
		}
		rec, err := r.sources[r.current].Next()
		if errors.Is(err, io.EOF) {
			r.current++
			continue
		}
		if err != nil {
			return Record{}, false, fmt.Errorf("source %d: %w", r.current, err)
		}
		if r.seen != nil && !r.seen.First(rec.Key) {
			r.stats.Duplicate()
			continue
		}
		r.read++
		return rec, true, nil
	}
	return Record{}, false, nil
}

type worker struct {
	extractor *extract.Extractor
	counter   *cooc.Counter
	analyzer  *analytics.Analyzer
	maxTags   int
	logger    *log.Logger
}

func newWorker(opts Options) *worker {
	c := cooc.NewCounter()
	if opts.PairFilter != nil {
		c.SetPairFilter(opts.PairFilter)
	}
	return &worker{
		extractor: opts.Extractor,
		counter:   c,
		analyzer:  analytics.NewAnalyzer(),
		maxTags:   opts.MaxTags,
		logger:    opts.Logger,
	}
}

func (w *worker) process(rec Record) {
	var out extract.Outcome
	if rec.Field != nil {
		out = w.extractor.ExtractDetailed(*rec.Field)
	}
	if out.Malformed {
		w.analyzer.Malformed()
		w.logger.Debug("list field fell back", "key", rec.Key, "strategy", out.Strategy)
	}

	tags := out.Tags.Sorted()
	if w.maxTags > 0 && len(tags) > w.maxTags {
		tags = tags[:w.maxTags]
	}
	w.analyzer.Process(tags)
	w.counter.Observe(tags)
}
