package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/tagnet/pkg/tagnet/internalerr"
	"github.com/cognicore/tagnet/pkg/tagnet/store"
)

func sampleRun(id string, created time.Time) store.Run {
	return store.Run{
		RunInfo: store.RunInfo{
			ID:             id,
			CreatedAt:      created,
			Inputs:         []string{"Data/Russia_invade.csv", "Data/Russian_border_Ukraine.csv"},
			Policy:         "separator-split",
			MinEdgeSupport: 3,
			Records:        120,
			Modularity:     0.42,
		},
		Nodes: []store.NodeRow{
			{Entity: "nato", Frequency: 40, Community: 0},
			{Entity: "ukraine", Frequency: 90, Community: 0},
			{Entity: "kyiv", Frequency: 12, Community: 1},
		},
		Edges: []store.EdgeRow{
			{Source: "nato", Target: "ukraine", Weight: 30},
			{Source: "ukraine", Target: "kyiv", Weight: 8},
		},
	}
}

func openTemp(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLiteSaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	created := time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := st.SaveRun(ctx, sampleRun("01RUN", created)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := st.GetRun(ctx, "01RUN")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if len(got.Inputs) != 2 || got.Policy != "separator-split" || got.MinEdgeSupport != 3 {
		t.Errorf("header mismatch: %+v", got.RunInfo)
	}
	if got.NodeCount != 3 || got.EdgeCount != 2 {
		t.Errorf("counts = %d nodes, %d edges; want 3 and 2", got.NodeCount, got.EdgeCount)
	}
	if len(got.Nodes) != 3 || got.Nodes[0].Entity != "kyiv" {
		t.Errorf("nodes = %v, want 3 ordered by entity", got.Nodes)
	}
	if len(got.Edges) != 2 || got.Edges[0].Weight != 30 {
		t.Errorf("edges = %v, want heaviest first", got.Edges)
	}
	// stored in canonical order
	if got.Edges[1].Source != "kyiv" || got.Edges[1].Target != "ukraine" {
		t.Errorf("edge not canonical: %+v", got.Edges[1])
	}
}

func TestSQLiteSaveRunReplaces(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	r := sampleRun("01RUN", time.Now())
	if err := st.SaveRun(ctx, r); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	r.Edges = r.Edges[:1]
	if err := st.SaveRun(ctx, r); err != nil {
		t.Fatalf("SaveRun again: %v", err)
	}

	got, err := st.GetRun(ctx, "01RUN")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(got.Edges) != 1 {
		t.Errorf("expected 1 edge after replace, got %d", len(got.Edges))
	}
}

func TestSQLiteNotFound(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	if _, err := st.GetRun(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("GetRun error = %v, want ErrNotFound", err)
	}
	if _, err := st.LatestRun(ctx); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("LatestRun error = %v, want ErrNotFound", err)
	}
	if _, err := st.TopEdges(ctx, "missing", 5); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("TopEdges error = %v, want ErrNotFound", err)
	}
	if err := st.SaveRun(ctx, store.Run{}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("SaveRun error = %v, want ErrInvalidInput", err)
	}
}

func TestSQLiteLatestAndList(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	base := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"01A", "01B", "01C"} {
		if err := st.SaveRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("SaveRun %s: %v", id, err)
		}
	}

	latest, err := st.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if latest.ID != "01C" {
		t.Errorf("latest = %s, want 01C", latest.ID)
	}

	infos, err := st.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(infos) != 2 || infos[0].ID != "01C" || infos[1].ID != "01B" {
		t.Errorf("ListRuns = %v, want [01C 01B]", infos)
	}

	all, err := st.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 runs, got %d", len(all))
	}
}

func TestSQLiteTopEdgesAndNeighbors(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)
	if err := st.SaveRun(ctx, sampleRun("01RUN", time.Now())); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	top, err := st.TopEdges(ctx, "01RUN", 1)
	if err != nil {
		t.Fatalf("TopEdges: %v", err)
	}
	if len(top) != 1 || top[0] != (store.EdgeRow{Source: "nato", Target: "ukraine", Weight: 30}) {
		t.Errorf("TopEdges = %v", top)
	}

	nbrs, err := st.TopNeighbors(ctx, "01RUN", "ukraine", 0)
	if err != nil {
		t.Fatalf("TopNeighbors: %v", err)
	}
	want := []store.Neighbor{{Entity: "nato", Weight: 30}, {Entity: "kyiv", Weight: 8}}
	if len(nbrs) != len(want) {
		t.Fatalf("TopNeighbors = %v, want %v", nbrs, want)
	}
	for i := range want {
		if nbrs[i] != want[i] {
			t.Errorf("neighbor %d = %v, want %v", i, nbrs[i], want[i])
		}
	}
}

func TestSQLiteReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	st, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := st.SaveRun(ctx, sampleRun("01RUN", time.Now())); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	st.Close()

	st2, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()

	got, err := st2.GetRun(ctx, "01RUN")
	if err != nil {
		t.Fatalf("GetRun after reopen: %v", err)
	}
	if len(got.Nodes) != 3 {
		t.Errorf("expected 3 nodes after reopen, got %d", len(got.Nodes))
	}
}

func TestSQLiteDeleteRun(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	base := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	st.SaveRun(ctx, sampleRun("01A", base))
	st.SaveRun(ctx, sampleRun("01B", base.Add(time.Hour)))

	if err := st.DeleteRun(ctx, "01B"); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if _, err := st.GetRun(ctx, "01B"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("GetRun after delete: %v", err)
	}
	if _, err := st.TopEdges(ctx, "01B", 0); !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("TopEdges after delete: %v", err)
	}
	if err := st.DeleteRun(ctx, "01B"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("second DeleteRun: %v", err)
	}

	latest, err := st.LatestRun(ctx)
	if err != nil || latest.ID != "01A" {
		t.Fatalf("LatestRun = %v, %v; want 01A", latest.ID, err)
	}
	if len(latest.Edges) != 2 {
		t.Errorf("remaining run lost its edges: %v", latest.Edges)
	}
}
