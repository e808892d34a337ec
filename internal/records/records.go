// Package records reads exported post files (CSV or JSON lines, optionally
// gzipped) and yields one pipeline record per row.
package records

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cognicore/tagnet/pkg/tagnet/internalerr"
	"github.com/cognicore/tagnet/pkg/tagnet/pipeline"
)

// Options selects the columns to read.
type Options struct {
	Format string // csv, jsonl or auto (from the file extension)
	Field  string // column holding the raw tag field
	Key    string // record key column; empty yields records without keys
	Logger *log.Logger
}

// Reader is a pipeline.Source over one file.
type Reader struct {
	path    string
	closers []io.Closer
	next    func() (pipeline.Record, error)
	skipped int64
	logger  *log.Logger
}

// Open opens path and prepares a reader for its format.
func Open(path string, opts Options) (*Reader, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	format, err := detectFormat(path, opts.Format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r := &Reader{path: path, closers: []io.Closer{f}, logger: opts.Logger}

	var in io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		r.closers = append(r.closers, gz)
		in = gz
	}

	switch format {
	case "csv":
		err = r.initCSV(in, opts)
	default:
		r.initJSONL(in, opts)
	}
	if err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// OpenAll opens every path; on failure the readers opened so far are closed.
func OpenAll(paths []string, opts Options) ([]*Reader, error) {
	readers := make([]*Reader, 0, len(paths))
	for _, p := range paths {
		r, err := Open(p, opts)
		if err != nil {
			for _, open := range readers {
				open.Close()
			}
			return nil, err
		}
		readers = append(readers, r)
	}
	return readers, nil
}

// Next implements pipeline.Source.
func (r *Reader) Next() (pipeline.Record, error) {
	return r.next()
}

// Skipped returns the number of malformed rows skipped so far.
func (r *Reader) Skipped() int64 { return r.skipped }

// Path returns the file being read.
func (r *Reader) Path() string { return r.path }

// Close releases the file.
func (r *Reader) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

func (r *Reader) skip(line int64, err error) {
	r.skipped++
	r.logger.Warn("skipping malformed row", "file", r.path, "line", line, "err", err)
}

func detectFormat(path, format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "csv", "jsonl":
		return format, nil
	case "", "auto":
	default:
		return "", fmt.Errorf("unknown input format %q: %w", format, internalerr.ErrInvalidConfig)
	}

	name := strings.ToLower(path)
	name = strings.TrimSuffix(name, ".gz")
	switch filepath.Ext(name) {
	case ".csv", ".tsv":
		return "csv", nil
	case ".jsonl", ".ndjson", ".json":
		return "jsonl", nil
	default:
		return "", fmt.Errorf("cannot infer format of %s: %w", path, internalerr.ErrInvalidConfig)
	}
}
