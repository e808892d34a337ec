package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/tagnet/pkg/tagnet/internalerr"
	"github.com/cognicore/tagnet/pkg/tagnet/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, internalerr.ErrStoreUnavailable)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %v: %w", err, internalerr.ErrStoreUnavailable)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	inputs TEXT,
	policy TEXT,
	min_edge_support INTEGER NOT NULL,
	records INTEGER NOT NULL DEFAULT 0,
	node_count INTEGER NOT NULL DEFAULT 0,
	edge_count INTEGER NOT NULL DEFAULT 0,
	modularity REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS nodes (
	run_id TEXT NOT NULL,
	entity TEXT NOT NULL,
	frequency INTEGER NOT NULL,
	community INTEGER NOT NULL DEFAULT -1,
	PRIMARY KEY(run_id, entity),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS edges (
	run_id TEXT NOT NULL,
	source TEXT NOT NULL,
	target TEXT NOT NULL,
	weight INTEGER NOT NULL,
	PRIMARY KEY(run_id, source, target),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_edges_weight ON edges(run_id, weight DESC);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(run_id, target);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun writes the run header, nodes and edges in one transaction.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("run id is required: %w", internalerr.ErrInvalidInput)
	}
	inputs, err := json.Marshal(r.Inputs)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := deleteRun(ctx, tx, r.ID); err != nil {
		return err
	}

	const stmt = `
INSERT INTO runs (id, created_at, inputs, policy, min_edge_support, records, node_count, edge_count, modularity)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err = tx.ExecContext(
		ctx,
		stmt,
		r.ID,
		r.CreatedAt.UTC().Format(createdAtLayout),
		string(inputs),
		r.Policy,
		r.MinEdgeSupport,
		r.Records,
		len(r.Nodes),
		len(r.Edges),
		r.Modularity,
	)
	if err != nil {
		return err
	}

	if err := insertNodes(ctx, tx, r.ID, r.Nodes); err != nil {
		return err
	}
	if err := insertEdges(ctx, tx, r.ID, r.Edges); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteRun removes a run with its nodes and edges.
func (s *sqliteStore) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	n, err := deleteRun(ctx, tx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return tx.Commit()
}

// deleteRun returns the number of run rows removed.
func deleteRun(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	// foreign_keys is per connection, so do not rely on the cascade
	for _, table := range []string{"edges", "nodes"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id=?`, id); err != nil {
			return 0, err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id=?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func insertNodes(ctx context.Context, tx *sql.Tx, runID string, nodes []store.NodeRow) error {
	if len(nodes) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO nodes (run_id, entity, frequency, community) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, n := range nodes {
		if n.Entity == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, runID, n.Entity, n.Frequency, n.Community); err != nil {
			return fmt.Errorf("insert node %q: %w", n.Entity, err)
		}
	}
	return nil
}

func insertEdges(ctx context.Context, tx *sql.Tx, runID string, edges []store.EdgeRow) error {
	if len(edges) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO edges (run_id, source, target, weight) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range edges {
		src, dst := e.Source, e.Target
		if src > dst {
			src, dst = dst, src
		}
		if _, err := stmt.ExecContext(ctx, runID, src, dst, e.Weight); err != nil {
			return fmt.Errorf("insert edge %s-%s: %w", src, dst, err)
		}
	}
	return nil
}

// GetRun loads a run with its nodes and edges.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	info, err := s.loadInfo(ctx, `SELECT `+infoColumns+` FROM runs WHERE id=?`, id)
	if err != nil {
		return store.Run{}, err
	}
	return s.loadRun(ctx, info)
}

// LatestRun loads the newest run.
func (s *sqliteStore) LatestRun(ctx context.Context) (store.Run, error) {
	info, err := s.loadInfo(ctx, `SELECT `+infoColumns+` FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`)
	if err != nil {
		return store.Run{}, err
	}
	return s.loadRun(ctx, info)
}

// ListRuns returns run headers, newest first.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.RunInfo, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+infoColumns+` FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []store.RunInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// TopEdges returns the k heaviest edges of a run.
func (s *sqliteStore) TopEdges(ctx context.Context, runID string, k int) ([]store.EdgeRow, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT source, target, weight
FROM edges
WHERE run_id = ?
ORDER BY weight DESC, source, target
LIMIT ?;
`, runID, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []store.EdgeRow
	for rows.Next() {
		var e store.EdgeRow
		if err := rows.Scan(&e.Source, &e.Target, &e.Weight); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// TopNeighbors returns the k entities most strongly linked to entity.
func (s *sqliteStore) TopNeighbors(ctx context.Context, runID, entity string, k int) ([]store.Neighbor, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT
	CASE WHEN source = ? THEN target ELSE source END AS neighbor,
	weight
FROM edges
WHERE run_id = ? AND (source = ? OR target = ?)
ORDER BY weight DESC, neighbor
LIMIT ?;
`, entity, runID, entity, entity, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Neighbor
	for rows.Next() {
		var n store.Neighbor
		if err := rows.Scan(&n.Entity, &n.Weight); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// createdAtLayout is fixed width so created_at sorts as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

const infoColumns = `id, created_at, inputs, policy, min_edge_support, records, node_count, edge_count, modularity`

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(row scanner) (store.RunInfo, error) {
	var (
		info            store.RunInfo
		created, inputs string
		policy          sql.NullString
	)
	err := row.Scan(
		&info.ID,
		&created,
		&inputs,
		&policy,
		&info.MinEdgeSupport,
		&info.Records,
		&info.NodeCount,
		&info.EdgeCount,
		&info.Modularity,
	)
	if err != nil {
		return store.RunInfo{}, err
	}
	info.Policy = policy.String
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		info.CreatedAt = t
	}
	if inputs != "" {
		if err := json.Unmarshal([]byte(inputs), &info.Inputs); err != nil {
			return store.RunInfo{}, fmt.Errorf("decode inputs of run %s: %w", info.ID, err)
		}
	}
	return info, nil
}

func (s *sqliteStore) loadInfo(ctx context.Context, query string, args ...any) (store.RunInfo, error) {
	info, err := scanInfo(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return store.RunInfo{}, fmt.Errorf("run not found: %w", internalerr.ErrNotFound)
	}
	return info, err
}

func (s *sqliteStore) requireRun(ctx context.Context, runID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id=?`, runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	return err
}

func (s *sqliteStore) loadRun(ctx context.Context, info store.RunInfo) (store.Run, error) {
	r := store.Run{RunInfo: info}

	rows, err := s.db.QueryContext(ctx, `SELECT entity, frequency, community FROM nodes WHERE run_id=? ORDER BY entity`, info.ID)
	if err != nil {
		return store.Run{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var n store.NodeRow
		if err := rows.Scan(&n.Entity, &n.Frequency, &n.Community); err != nil {
			return store.Run{}, err
		}
		r.Nodes = append(r.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return store.Run{}, err
	}

	edges, err := s.TopEdges(ctx, info.ID, 0)
	if err != nil {
		return store.Run{}, err
	}
	r.Edges = edges
	return r, nil
}
