package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/tagnet/pkg/tagnet/internalerr"
	"github.com/cognicore/tagnet/pkg/tagnet/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu   sync.RWMutex
	runs map[string]store.Run
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{runs: make(map[string]store.Run)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun stores a copy of r.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("run id is required: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[r.ID] = copyRun(r)
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return copyRun(r), nil
}

// LatestRun returns the run with the newest CreatedAt, ties broken by ID.
func (s *Store) LatestRun(ctx context.Context) (store.Run, error) {
	infos, _ := s.ListRuns(ctx, 1)
	if len(infos) == 0 {
		return store.Run{}, fmt.Errorf("no runs stored: %w", internalerr.ErrNotFound)
	}
	return s.GetRun(ctx, infos[0].ID)
}

// ListRuns returns run headers, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]store.RunInfo, 0, len(s.runs))
	for _, r := range s.runs {
		infos = append(infos, r.RunInfo)
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.After(infos[j].CreatedAt)
		}
		return infos[i].ID > infos[j].ID
	})
	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}
	return infos, nil
}

// DeleteRun removes a run.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	delete(s.runs, id)
	return nil
}

// TopEdges returns the k heaviest edges of a run.
func (s *Store) TopEdges(ctx context.Context, runID string, k int) ([]store.EdgeRow, error) {
	r, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	edges := r.Edges
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Weight != edges[j].Weight {
			return edges[i].Weight > edges[j].Weight
		}
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	if k > 0 && len(edges) > k {
		edges = edges[:k]
	}
	return edges, nil
}

// TopNeighbors returns the k entities most strongly linked to entity.
func (s *Store) TopNeighbors(ctx context.Context, runID, entity string, k int) ([]store.Neighbor, error) {
	r, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	var out []store.Neighbor
	for _, e := range r.Edges {
		switch entity {
		case e.Source:
			out = append(out, store.Neighbor{Entity: e.Target, Weight: e.Weight})
		case e.Target:
			out = append(out, store.Neighbor{Entity: e.Source, Weight: e.Weight})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Entity < out[j].Entity
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func copyRun(r store.Run) store.Run {
	r.Inputs = append([]string(nil), r.Inputs...)
	r.Nodes = append([]store.NodeRow(nil), r.Nodes...)
	r.Edges = append([]store.EdgeRow(nil), r.Edges...)
	return r
}

var _ store.Store = (*Store)(nil)
