package graph

import "sort"

// TopN returns the subgraph induced by the n nodes of highest degree.
// Ties are broken by weighted degree, then entity. n <= 0 or n at least the
// node count returns g itself.
func TopN(g *Graph, n int) *Graph {
	if g == nil || n <= 0 || n >= g.NumNodes() {
		return g
	}

	ranked := g.Nodes()
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i].Entity, ranked[j].Entity
		if g.degree[a] != g.degree[b] {
			return g.degree[a] > g.degree[b]
		}
		if g.wdegree[a] != g.wdegree[b] {
			return g.wdegree[a] > g.wdegree[b]
		}
		return a < b
	})
	ranked = ranked[:n]

	keep := make(map[string]struct{}, n)
	for _, node := range ranked {
		keep[node.Entity] = struct{}{}
	}

	var edges []Edge
	for _, e := range g.edges {
		_, okS := keep[e.Source]
		_, okT := keep[e.Target]
		if okS && okT {
			edges = append(edges, e)
		}
	}
	return newGraph(ranked, edges)
}
