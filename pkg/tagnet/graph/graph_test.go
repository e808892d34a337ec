package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/tagnet/pkg/tagnet/cooc"
	"github.com/cognicore/tagnet/pkg/tagnet/internalerr"
)

func scenarioCounts() (map[string]int64, map[cooc.Pair]int64) {
	c := cooc.NewCounter()
	for _, s := range [][]string{{"a", "b"}, {"a", "b"}, {"a", "c"}, {"b", "c"}, {"a", "b", "c"}} {
		c.Observe(s)
	}
	snap := c.Snapshot()
	return snap.Nodes, snap.Edges
}

// twoTriangles returns two dense triangles joined by one light edge.
func twoTriangles(t *testing.T) *Graph {
	t.Helper()
	nodes := map[string]int64{"a": 10, "b": 10, "c": 10, "x": 10, "y": 10, "z": 10}
	edges := map[cooc.Pair]int64{
		{A: "a", B: "b"}: 5, {A: "a", B: "c"}: 5, {A: "b", B: "c"}: 5,
		{A: "x", B: "y"}: 5, {A: "x", B: "z"}: 5, {A: "y", B: "z"}: 5,
		{A: "c", B: "x"}: 1,
	}
	g, err := Build(nodes, edges, BuildOptions{MinEdgeSupport: 1})
	require.NoError(t, err)
	return g
}

func TestBuildScenarioThresholdTwo(t *testing.T) {
	nodes, edges := scenarioCounts()

	g, err := Build(nodes, edges, BuildOptions{MinEdgeSupport: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, g.NumNodes())
	assert.Equal(t, 3, g.NumEdges())

	es := g.Edges()
	assert.Equal(t, Edge{Source: "a", Target: "b", Weight: 3}, es[0])
	assert.Equal(t, Edge{Source: "a", Target: "c", Weight: 2}, es[1])
	assert.Equal(t, Edge{Source: "b", Target: "c", Weight: 2}, es[2])

	a, ok := g.Node("a")
	require.True(t, ok)
	assert.Equal(t, int64(4), a.Frequency)
	c, _ := g.Node("c")
	assert.Equal(t, int64(3), c.Frequency)

	w, ok := g.Weight("b", "a")
	assert.True(t, ok)
	assert.Equal(t, int64(3), w)
}

func TestBuildScenarioThresholdFourIsEmpty(t *testing.T) {
	nodes, edges := scenarioCounts()

	g, err := Build(nodes, edges, BuildOptions{MinEdgeSupport: 4})
	assert.ErrorIs(t, err, ErrEmptyGraph)
	require.NotNil(t, g)
	assert.Zero(t, g.NumEdges())
	assert.Equal(t, 3, g.NumNodes())
}

func TestBuildInvalidSupport(t *testing.T) {
	nodes, edges := scenarioCounts()
	_, err := Build(nodes, edges, BuildOptions{MinEdgeSupport: 0})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestBuildRespectsThresholdAndNodes(t *testing.T) {
	nodes := map[string]int64{"a": 5, "b": 5, "c": 1, "zero": 0}
	edges := map[cooc.Pair]int64{
		{A: "a", B: "b"}:     4,
		{A: "a", B: "c"}:     1,
		{A: "a", B: "ghost"}: 9, // endpoint missing from node counts
		{A: "b", B: "zero"}:  9,
		{A: "b", B: "a"}:     0, // non-canonical key below threshold
	}

	g, err := Build(nodes, edges, BuildOptions{MinEdgeSupport: 2})
	require.NoError(t, err)

	for _, e := range g.Edges() {
		assert.GreaterOrEqual(t, e.Weight, int64(2))
		_, okS := g.Node(e.Source)
		_, okT := g.Node(e.Target)
		assert.True(t, okS && okT, "edge %v has a missing endpoint", e)
	}
	for _, n := range g.Nodes() {
		assert.Positive(t, nodes[n.Entity])
	}
	_, ok := g.Node("zero")
	assert.False(t, ok)
	assert.Equal(t, 1, g.NumEdges())
}

func TestBuildNodeFilters(t *testing.T) {
	nodes := map[string]int64{"a": 5, "b": 5, "c": 1, "d": 5}
	edges := map[cooc.Pair]int64{{A: "a", B: "b"}: 3, {A: "a", B: "c"}: 3}

	g, err := Build(nodes, edges, BuildOptions{MinEdgeSupport: 1, MinNodeCount: 2})
	require.NoError(t, err)
	_, ok := g.Node("c")
	assert.False(t, ok)
	assert.Equal(t, 1, g.NumEdges())
	assert.Equal(t, 3, g.NumNodes())

	g, err = Build(nodes, edges, BuildOptions{MinEdgeSupport: 1, MinNodeCount: 2, DropIsolated: true})
	require.NoError(t, err)
	assert.Equal(t, 2, g.NumNodes())
	_, ok = g.Node("d")
	assert.False(t, ok)
}

func TestDegreesAndNeighbors(t *testing.T) {
	g := twoTriangles(t)

	assert.Equal(t, 3, g.Degree("c"))
	assert.Equal(t, int64(11), g.WeightedDegree("c"))
	assert.Equal(t, []string{"a", "b", "x"}, g.Neighbors("c"))
	assert.Equal(t, 2, g.Degree("a"))
}

func TestWeightedConversion(t *testing.T) {
	g := twoTriangles(t)
	wg := g.Weighted()

	assert.Equal(t, 6, wg.Nodes().Len())
	a, _ := g.Node("a")
	b, _ := g.Node("b")
	w, ok := wg.Weight(a.ID(), b.ID())
	assert.True(t, ok)
	assert.Equal(t, 5.0, w)
	assert.Same(t, wg, g.Weighted())
}

func TestLouvainSeparatesTriangles(t *testing.T) {
	g := twoTriangles(t)
	seed := uint64(42)

	a, err := Louvain{}.Partition(g, &seed)
	require.NoError(t, err)
	require.Len(t, a, 6)
	assert.Equal(t, 2, a.Count())

	assert.Equal(t, a["a"], a["b"])
	assert.Equal(t, a["a"], a["c"])
	assert.Equal(t, a["x"], a["y"])
	assert.Equal(t, a["x"], a["z"])
	assert.NotEqual(t, a["a"], a["x"])

	// equal sizes: the group holding the smallest entity gets label 0
	assert.Equal(t, 0, a["a"])
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"x", "y", "z"}}, a.Members())
}

func TestLouvainSeededIsRepeatable(t *testing.T) {
	g := twoTriangles(t)
	seed := uint64(7)

	first, err := Louvain{Resolution: 1}.Partition(g, &seed)
	require.NoError(t, err)
	second, err := Louvain{Resolution: 1}.Partition(g, &seed)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLouvainEdgeless(t *testing.T) {
	nodes, edges := scenarioCounts()
	g, err := Build(nodes, edges, BuildOptions{MinEdgeSupport: 10})
	require.ErrorIs(t, err, ErrEmptyGraph)

	a, err := Louvain{}.Partition(g, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Count())

	empty, err := Louvain{}.Partition(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestModularity(t *testing.T) {
	g := twoTriangles(t)
	seed := uint64(42)
	a, err := Louvain{}.Partition(g, &seed)
	require.NoError(t, err)

	q := Modularity(g, a, 1)
	assert.Greater(t, q, 0.3)

	whole := Assignment{"a": 0, "b": 0, "c": 0, "x": 0, "y": 0, "z": 0}
	assert.InDelta(t, 0.0, Modularity(g, whole, 1), 1e-9)
	assert.Greater(t, q, Modularity(g, whole, 1))
}

func TestTopN(t *testing.T) {
	g := twoTriangles(t)

	sub := TopN(g, 2)
	require.Equal(t, 2, sub.NumNodes())
	_, okC := sub.Node("c")
	_, okX := sub.Node("x")
	assert.True(t, okC && okX)
	assert.Equal(t, []Edge{{Source: "c", Target: "x", Weight: 1}}, sub.Edges())

	assert.Same(t, g, TopN(g, 0))
	assert.Same(t, g, TopN(g, 100))

	four := TopN(g, 4)
	assert.Equal(t, 4, four.NumNodes())
	for _, e := range four.Edges() {
		_, okS := four.Node(e.Source)
		_, okT := four.Node(e.Target)
		assert.True(t, okS && okT)
	}
}

func TestLayoutDeterministicAndBounded(t *testing.T) {
	g := twoTriangles(t)
	opts := LayoutOptions{Seed: 42}

	first := Layout(g, opts)
	second := Layout(g, opts)
	require.Len(t, first, 6)
	assert.Equal(t, first, second)

	for entity, p := range first {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y), entity)
		assert.LessOrEqual(t, math.Abs(p.X), 1.0+1e-9, entity)
		assert.LessOrEqual(t, math.Abs(p.Y), 1.0+1e-9, entity)
	}
}

func TestLayoutSmallGraphs(t *testing.T) {
	assert.Empty(t, Layout(nil, LayoutOptions{}))

	g, err := Build(map[string]int64{"solo": 1}, nil, BuildOptions{MinEdgeSupport: 1})
	require.ErrorIs(t, err, ErrEmptyGraph)
	pos := Layout(g, LayoutOptions{})
	require.Len(t, pos, 1)
	assert.Zero(t, pos["solo"].X)
	assert.Zero(t, pos["solo"].Y)
}
