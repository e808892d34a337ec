package export

import (
	"fmt"
	"io"
	"strconv"

	gg "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/cognicore/tagnet/pkg/tagnet/graph"
)

type dotNode struct {
	graph.Node
	community *int
}

func (n dotNode) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{
		{Key: "frequency", Value: strconv.FormatInt(n.Frequency, 10)},
	}
	if n.community != nil {
		attrs = append(attrs, encoding.Attribute{Key: "community", Value: strconv.Itoa(*n.community)})
	}
	return attrs
}

type dotEdge struct {
	from, to dotNode
	weight   int64
}

func (e dotEdge) From() gg.Node   { return e.from }
func (e dotEdge) To() gg.Node     { return e.to }
func (e dotEdge) Weight() float64 { return float64(e.weight) }
func (e dotEdge) ReversedEdge() gg.Edge {
	e.from, e.to = e.to, e.from
	return e
}

func (e dotEdge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "weight", Value: strconv.FormatInt(e.weight, 10)}}
}

// WriteDOT writes g in Graphviz DOT with frequency, community and weight
// attributes.
func WriteDOT(w io.Writer, g *graph.Graph, a graph.Assignment) error {
	dg := simple.NewWeightedUndirectedGraph(0, 0)
	nodes := make(map[string]dotNode, g.NumNodes())
	for _, n := range g.Nodes() {
		dn := dotNode{Node: n, community: community(a, n.Entity)}
		nodes[n.Entity] = dn
		dg.AddNode(dn)
	}
	for _, e := range g.Edges() {
		dg.SetWeightedEdge(dotEdge{from: nodes[e.Source], to: nodes[e.Target], weight: e.Weight})
	}

	b, err := dot.Marshal(dg, "hashtags", "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dot: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
