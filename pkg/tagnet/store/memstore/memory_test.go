package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/tagnet/pkg/tagnet/internalerr"
	"github.com/cognicore/tagnet/pkg/tagnet/store"
)

func run(id string, created time.Time) store.Run {
	return store.Run{
		RunInfo: store.RunInfo{ID: id, CreatedAt: created, MinEdgeSupport: 3},
		Nodes: []store.NodeRow{
			{Entity: "a", Frequency: 4, Community: 0},
			{Entity: "b", Frequency: 4, Community: 0},
			{Entity: "c", Frequency: 3, Community: 0},
		},
		Edges: []store.EdgeRow{
			{Source: "a", Target: "c", Weight: 2},
			{Source: "a", Target: "b", Weight: 3},
			{Source: "b", Target: "c", Weight: 2},
		},
	}
}

func TestMemstoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	r := run("01A", time.Now())
	if err := s.SaveRun(ctx, r); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	r.Nodes[0].Entity = "mutated"

	got, err := s.GetRun(ctx, "01A")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Nodes[0].Entity != "a" {
		t.Error("store must keep its own copy of the run")
	}
}

func TestMemstoreLatestAndTopEdges(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.LatestRun(ctx); !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("LatestRun on empty store: %v", err)
	}

	base := time.Date(2022, 2, 24, 0, 0, 0, 0, time.UTC)
	s.SaveRun(ctx, run("01A", base))
	s.SaveRun(ctx, run("01B", base.Add(time.Minute)))

	latest, err := s.LatestRun(ctx)
	if err != nil || latest.ID != "01B" {
		t.Fatalf("LatestRun = %v, %v; want 01B", latest.ID, err)
	}

	top, err := s.TopEdges(ctx, "01A", 2)
	if err != nil {
		t.Fatalf("TopEdges: %v", err)
	}
	if len(top) != 2 || top[0].Weight != 3 || top[1] != (store.EdgeRow{Source: "a", Target: "c", Weight: 2}) {
		t.Errorf("TopEdges = %v", top)
	}

	nbrs, err := s.TopNeighbors(ctx, "01A", "c", 0)
	if err != nil {
		t.Fatalf("TopNeighbors: %v", err)
	}
	if len(nbrs) != 2 || nbrs[0].Entity != "a" || nbrs[1].Entity != "b" {
		t.Errorf("TopNeighbors = %v", nbrs)
	}

	if _, err := s.TopEdges(ctx, "nope", 1); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("TopEdges unknown run: %v", err)
	}
	if err := s.SaveRun(ctx, store.Run{}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("SaveRun without id: %v", err)
	}
}

func TestMemstoreDeleteRun(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.SaveRun(ctx, run("01A", time.Now()))

	if err := s.DeleteRun(ctx, "01A"); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if err := s.DeleteRun(ctx, "01A"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("second DeleteRun: %v", err)
	}
	if infos, _ := s.ListRuns(ctx, 0); len(infos) != 0 {
		t.Errorf("ListRuns after delete = %v", infos)
	}
}
