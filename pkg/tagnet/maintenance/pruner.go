// Package maintenance keeps a run store bounded.
package maintenance

import (
	"context"
	"fmt"

	"github.com/cognicore/tagnet/pkg/tagnet/internalerr"
	"github.com/cognicore/tagnet/pkg/tagnet/store"
)

// Pruner deletes stored runs older than the newest Keep.
type Pruner struct {
	Store store.Store
	Keep  int
}

// Result summarizes a pruning pass.
type Result struct {
	Kept    int
	Deleted []string
	Errors  int
}

// Prune walks the runs newest first, keeps the first Keep of them and
// deletes the rest. A run that fails to delete is counted in Errors and
// the pass continues.
func (p *Pruner) Prune(ctx context.Context) (Result, error) {
	var res Result
	if p.Store == nil {
		return res, fmt.Errorf("pruner needs a store: %w", internalerr.ErrInvalidConfig)
	}
	if p.Keep < 1 {
		return res, fmt.Errorf("keep must be at least 1, got %d: %w", p.Keep, internalerr.ErrInvalidConfig)
	}

	infos, err := p.Store.ListRuns(ctx, 0)
	if err != nil {
		return res, fmt.Errorf("list runs: %w", err)
	}
	for i, info := range infos {
		if i < p.Keep {
			res.Kept++
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := p.Store.DeleteRun(ctx, info.ID); err != nil {
			res.Errors++
			continue
		}
		res.Deleted = append(res.Deleted, info.ID)
	}
	return res, nil
}
