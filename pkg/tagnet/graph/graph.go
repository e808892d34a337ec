// Package graph turns final co-occurrence counts into a thresholded,
// weighted undirected graph and derives community structure and a
// presentation layout from it.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/cognicore/tagnet/pkg/tagnet/cooc"
	"github.com/cognicore/tagnet/pkg/tagnet/internalerr"
)

// ErrEmptyGraph reports that no edge survived thresholding. Build still
// returns the graph so callers can emit an empty artifact.
var ErrEmptyGraph = errors.New("graph has no edges at the requested minimum support")

// Node is an entity annotated with its record frequency.
type Node struct {
	Entity    string
	Frequency int64

	id int64
}

// ID implements graph.Node.
func (n Node) ID() int64 { return n.id }

// DOTID implements dot.Node.
func (n Node) DOTID() string { return n.Entity }

// Edge is an undirected weighted edge with Source < Target.
type Edge struct {
	Source string
	Target string
	Weight int64
}

// BuildOptions controls thresholding.
type BuildOptions struct {
	MinEdgeSupport int64 // edges below this count are dropped
	MinNodeCount   int64 // nodes below this frequency are dropped; <1 means 1
	DropIsolated   bool  // drop nodes left without edges
}

// Graph is an immutable view built once from final counts.
type Graph struct {
	nodes []Node
	edges []Edge
	index map[string]int
	byID  map[int64]int

	degree   map[string]int
	wdegree  map[string]int64
	adjacent map[string][]string
	weights  map[cooc.Pair]int64

	once     sync.Once
	weighted *simple.WeightedUndirectedGraph
}

// Build constructs the graph for one run. Nodes are entities with a
// positive count (at least MinNodeCount). Edges are pairs with count at
// least MinEdgeSupport whose endpoints are both nodes.
//
// When no edge survives, Build returns the graph together with
// ErrEmptyGraph.
func Build(nodes map[string]int64, edges map[cooc.Pair]int64, opts BuildOptions) (*Graph, error) {
	if opts.MinEdgeSupport < 1 {
		return nil, fmt.Errorf("min edge support %d: %w", opts.MinEdgeSupport, internalerr.ErrInvalidInput)
	}
	minNode := opts.MinNodeCount
	if minNode < 1 {
		minNode = 1
	}

	kept := make(map[string]int64, len(nodes))
	for entity, n := range nodes {
		if entity == "" || n < minNode {
			continue
		}
		kept[entity] = n
	}

	var es []Edge
	linked := make(map[string]struct{})
	for p, w := range edges {
		if w < opts.MinEdgeSupport {
			continue
		}
		cp, ok := cooc.NewPair(p.A, p.B)
		if !ok {
			continue
		}
		if _, ok := kept[cp.A]; !ok {
			continue
		}
		if _, ok := kept[cp.B]; !ok {
			continue
		}
		es = append(es, Edge{Source: cp.A, Target: cp.B, Weight: w})
		linked[cp.A] = struct{}{}
		linked[cp.B] = struct{}{}
	}

	ns := make([]Node, 0, len(kept))
	for entity, n := range kept {
		if opts.DropIsolated {
			if _, ok := linked[entity]; !ok {
				continue
			}
		}
		ns = append(ns, Node{Entity: entity, Frequency: n})
	}
	sort.Slice(ns, func(i, j int) bool { return ns[i].Entity < ns[j].Entity })
	for i := range ns {
		ns[i].id = int64(i)
	}

	g := newGraph(ns, es)
	if len(g.edges) == 0 {
		return g, ErrEmptyGraph
	}
	return g, nil
}

// newGraph indexes nodes (which must already carry unique ids) and the
// edges between them.
func newGraph(nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		nodes:    nodes,
		index:    make(map[string]int, len(nodes)),
		byID:     make(map[int64]int, len(nodes)),
		degree:   make(map[string]int, len(nodes)),
		wdegree:  make(map[string]int64, len(nodes)),
		adjacent: make(map[string][]string, len(nodes)),
		weights:  make(map[cooc.Pair]int64, len(edges)),
	}
	sort.Slice(g.nodes, func(i, j int) bool { return g.nodes[i].Entity < g.nodes[j].Entity })
	for i, n := range g.nodes {
		g.index[n.Entity] = i
		g.byID[n.id] = i
	}

	for _, e := range edges {
		if _, ok := g.index[e.Source]; !ok {
			continue
		}
		if _, ok := g.index[e.Target]; !ok {
			continue
		}
		g.edges = append(g.edges, e)
		g.weights[cooc.Pair{A: e.Source, B: e.Target}] = e.Weight
		g.degree[e.Source]++
		g.degree[e.Target]++
		g.wdegree[e.Source] += e.Weight
		g.wdegree[e.Target] += e.Weight
		g.adjacent[e.Source] = append(g.adjacent[e.Source], e.Target)
		g.adjacent[e.Target] = append(g.adjacent[e.Target], e.Source)
	}
	sort.Slice(g.edges, func(i, j int) bool {
		a, b := g.edges[i], g.edges[j]
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Target < b.Target
	})
	for _, adj := range g.adjacent {
		sort.Strings(adj)
	}
	return g
}

// Nodes returns the nodes ordered by entity.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the edges ordered by weight (descending), then endpoints.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Node looks up an entity.
func (g *Graph) Node(entity string) (Node, bool) {
	i, ok := g.index[entity]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Neighbors returns the entities adjacent to entity, sorted.
func (g *Graph) Neighbors(entity string) []string {
	return append([]string(nil), g.adjacent[entity]...)
}

// Degree returns the number of edges incident to entity
func (g *Graph) Degree(entity string) int { return g.degree[entity] }

// WeightedDegree returns the summed weight of edges incident to entity
func (g *Graph) WeightedDegree(entity string) int64 { return g.wdegree[entity] }

// NumNodes returns the node count
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the edge count
func (g *Graph) NumEdges() int { return len(g.edges) }

// Weight returns the weight of the edge between a and b, if any.
func (g *Graph) Weight(a, b string) (int64, bool) {
	p, ok := cooc.NewPair(a, b)
	if !ok {
		return 0, false
	}
	w, ok := g.weights[p]
	return w, ok
}

// Weighted returns the graph as a gonum weighted undirected graph. Node
// values are of type Node. The result is shared and must not be modified.
func (g *Graph) Weighted() *simple.WeightedUndirectedGraph {
	g.once.Do(func() {
		wg := simple.NewWeightedUndirectedGraph(0, 0)
		for _, n := range g.nodes {
			wg.AddNode(n)
		}
		for _, e := range g.edges {
			from := g.nodes[g.index[e.Source]]
			to := g.nodes[g.index[e.Target]]
			wg.SetWeightedEdge(weightedEdge{from: from, to: to, weight: float64(e.Weight)})
		}
		g.weighted = wg
	})
	return g.weighted
}

// nodeByID maps a gonum node back to its entity.
func (g *Graph) nodeByID(id int64) (Node, bool) {
	i, ok := g.byID[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

type weightedEdge struct {
	from, to Node
	weight   float64
}

func (e weightedEdge) From() graph.Node { return e.from }
func (e weightedEdge) To() graph.Node   { return e.to }
func (e weightedEdge) Weight() float64  { return e.weight }
func (e weightedEdge) ReversedEdge() graph.Edge {
	e.from, e.to = e.to, e.from
	return e
}
