package report

import (
	"crypto/rand"
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/tagnet/pkg/tagnet/analytics"
	"github.com/cognicore/tagnet/pkg/tagnet/cooc"
	"github.com/cognicore/tagnet/pkg/tagnet/graph"
	"github.com/cognicore/tagnet/pkg/tagnet/stoplist"
	"github.com/cognicore/tagnet/pkg/tagnet/store"
)

// MaxCommunityMembers caps the members listed per community.
const MaxCommunityMembers = 10

// Builder constructs run reports
type Builder struct {
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// New creates a new report builder
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Input is everything a report is built from. Graph and Assignment may be
// nil.
type Input struct {
	Inputs         []string
	Policy         string
	MinEdgeSupport int64
	Seed           *uint64
	Summary        analytics.Summary
	Graph          *graph.Graph
	Assignment     graph.Assignment
	Modularity     float64
	Pairs          []cooc.RankedPair
	Noise          []stoplist.Candidate
}

// Report describes one run
type Report struct {
	ID             string            `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	Inputs         []string          `json:"inputs"`
	Policy         string            `json:"policy"`
	MinEdgeSupport int64             `json:"min_edge_support"`
	Seed           *uint64           `json:"seed,omitempty"`
	Summary        analytics.Summary `json:"summary"`
	Graph          GraphStats        `json:"graph"`
	TopPairs       []PairLine        `json:"top_pairs"`
	Communities    []Community       `json:"communities,omitempty"`
	Noise          []NoiseLine       `json:"noise_candidates,omitempty"`
}

// GraphStats summarises the thresholded graph
type GraphStats struct {
	Nodes       int     `json:"nodes"`
	Edges       int     `json:"edges"`
	Empty       bool    `json:"empty"`
	Communities int     `json:"communities"`
	Modularity  float64 `json:"modularity"`
}

// PairLine is one ranked pair
type PairLine struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Count  int64   `json:"count"`
	NPMI   float64 `json:"npmi"`
}

// Community lists the most frequent members of one community
type Community struct {
	Label   int      `json:"label"`
	Size    int      `json:"size"`
	Members []string `json:"members"`
}

// NoiseLine is a suggested exclusion
type NoiseLine struct {
	Entity    string  `json:"entity"`
	DFPercent float64 `json:"df_percent"`
	Score     float64 `json:"score"`
}

// Build creates a report with a fresh ULID.
func (b *Builder) Build(in Input) Report {
	now := b.now().UTC()
	r := Report{
		ID:             ulid.MustNew(ulid.Timestamp(now), b.entropy).String(),
		CreatedAt:      now,
		Inputs:         append([]string(nil), in.Inputs...),
		Policy:         in.Policy,
		MinEdgeSupport: in.MinEdgeSupport,
		Seed:           in.Seed,
		Summary:        in.Summary,
		TopPairs:       make([]PairLine, 0, len(in.Pairs)),
	}

	for _, p := range in.Pairs {
		r.TopPairs = append(r.TopPairs, PairLine{Source: p.A, Target: p.B, Count: p.Count, NPMI: p.NPMI})
	}
	for _, c := range in.Noise {
		r.Noise = append(r.Noise, NoiseLine{Entity: c.Token, DFPercent: c.Reason.DFPercent, Score: c.Score})
	}

	if in.Graph != nil {
		r.Graph = GraphStats{
			Nodes:       in.Graph.NumNodes(),
			Edges:       in.Graph.NumEdges(),
			Empty:       in.Graph.NumEdges() == 0,
			Communities: in.Assignment.Count(),
			Modularity:  in.Modularity,
		}
		r.Communities = communities(in.Graph, in.Assignment)
	} else {
		r.Graph.Empty = true
	}
	return r
}

func communities(g *graph.Graph, a graph.Assignment) []Community {
	var out []Community
	for label, members := range a.Members() {
		sort.SliceStable(members, func(i, j int) bool {
			ni, _ := g.Node(members[i])
			nj, _ := g.Node(members[j])
			return ni.Frequency > nj.Frequency
		})
		size := len(members)
		if len(members) > MaxCommunityMembers {
			members = members[:MaxCommunityMembers]
		}
		out = append(out, Community{Label: label, Size: size, Members: members})
	}
	return out
}

// Run converts the report and its graph into a storable run.
func (r Report) Run(g *graph.Graph, a graph.Assignment) store.Run {
	run := store.Run{
		RunInfo: store.RunInfo{
			ID:             r.ID,
			CreatedAt:      r.CreatedAt,
			Inputs:         r.Inputs,
			Policy:         r.Policy,
			MinEdgeSupport: r.MinEdgeSupport,
			Records:        r.Summary.Records,
			Modularity:     r.Graph.Modularity,
		},
	}
	if g == nil {
		return run
	}
	for _, n := range g.Nodes() {
		c, ok := a[n.Entity]
		if !ok {
			c = -1
		}
		run.Nodes = append(run.Nodes, store.NodeRow{Entity: n.Entity, Frequency: n.Frequency, Community: c})
	}
	for _, e := range g.Edges() {
		run.Edges = append(run.Edges, store.EdgeRow{Source: e.Source, Target: e.Target, Weight: e.Weight})
	}
	run.NodeCount = len(run.Nodes)
	run.EdgeCount = len(run.Edges)
	return run
}

// Write encodes r as indented JSON.
func Write(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}
