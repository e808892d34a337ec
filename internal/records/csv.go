package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cognicore/tagnet/pkg/tagnet/internalerr"
	"github.com/cognicore/tagnet/pkg/tagnet/pipeline"
)

func (r *Reader) initCSV(in io.Reader, opts Options) error {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	if strings.EqualFold(filepath.Ext(strings.TrimSuffix(strings.ToLower(r.path), ".gz")), ".tsv") {
		cr.Comma = '\t'
	}

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		r.next = func() (pipeline.Record, error) { return pipeline.Record{}, io.EOF }
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header of %s: %w", r.path, err)
	}

	fieldIdx, keyIdx := -1, -1
	for i, col := range head {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		switch {
		case strings.EqualFold(col, opts.Field):
			fieldIdx = i
		case opts.Key != "" && strings.EqualFold(col, opts.Key):
			keyIdx = i
		}
	}
	if fieldIdx < 0 {
		return fmt.Errorf("%s has no %q column: %w", r.path, opts.Field, internalerr.ErrInvalidInput)
	}
	if opts.Key != "" && keyIdx < 0 {
		r.logger.Warn("key column missing, records will not be deduplicated", "file", r.path, "key", opts.Key)
	}

	r.next = func() (pipeline.Record, error) {
		for {
			row, err := cr.Read()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return pipeline.Record{}, io.EOF
				}
				var perr *csv.ParseError
				if errors.As(err, &perr) {
					r.skip(int64(perr.Line), err)
					continue
				}
				return pipeline.Record{}, fmt.Errorf("read %s: %w", r.path, err)
			}

			var rec pipeline.Record
			if keyIdx >= 0 && keyIdx < len(row) {
				rec.Key = strings.TrimSpace(row[keyIdx])
			}
			if fieldIdx < len(row) && strings.TrimSpace(row[fieldIdx]) != "" {
				v := row[fieldIdx]
				rec.Field = &v
			}
			return rec, nil
		}
	}
	return nil
}
