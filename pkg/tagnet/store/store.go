package store

import (
	"context"
	"time"
)

// Store persists the results of graph runs
type Store interface {
	Close() error

	// SaveRun writes a run, replacing any run with the same ID.
	SaveRun(ctx context.Context, r Run) error
	// GetRun returns internalerr.ErrNotFound for unknown IDs.
	GetRun(ctx context.Context, id string) (Run, error)
	// LatestRun returns the most recently created run.
	LatestRun(ctx context.Context) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]RunInfo, error)
	// DeleteRun removes a run with its nodes and edges.
	DeleteRun(ctx context.Context, id string) error

	TopEdges(ctx context.Context, runID string, k int) ([]EdgeRow, error)
	TopNeighbors(ctx context.Context, runID, entity string, k int) ([]Neighbor, error)
}

// RunInfo is the header of a stored run
type RunInfo struct {
	ID             string
	CreatedAt      time.Time
	Inputs         []string
	Policy         string
	MinEdgeSupport int64
	Records        int64
	NodeCount      int
	EdgeCount      int
	Modularity     float64
}

// Run is a stored graph with its header
type Run struct {
	RunInfo
	Nodes []NodeRow
	Edges []EdgeRow
}

// NodeRow is one stored node. Community is -1 when no partition was computed.
type NodeRow struct {
	Entity    string
	Frequency int64
	Community int
}

// EdgeRow is one stored edge with Source < Target
type EdgeRow struct {
	Source string
	Target string
	Weight int64
}

// Neighbor is an entity adjacent to a queried entity
type Neighbor struct {
	Entity string
	Weight int64
}
