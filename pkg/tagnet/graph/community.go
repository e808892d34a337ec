package graph

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
)

// Assignment maps each entity to a community label. Labels run from 0 to
// k-1, with 0 the largest community.
type Assignment map[string]int

// Count returns the number of distinct communities
func (a Assignment) Count() int {
	seen := make(map[int]struct{})
	for _, c := range a {
		seen[c] = struct{}{}
	}
	return len(seen)
}

// Members returns the sorted entities of each community, indexed by label.
func (a Assignment) Members() [][]string {
	out := make([][]string, a.Count())
	for entity, c := range a {
		if c >= 0 && c < len(out) {
			out[c] = append(out[c], entity)
		}
	}
	for _, m := range out {
		sort.Strings(m)
	}
	return out
}

// Partitioner splits a graph into communities.
//
// With a nil seed the result may differ between runs over identical input;
// the partitions are comparable in quality but not equal.
type Partitioner interface {
	Partition(g *Graph, seed *uint64) (Assignment, error)
}

// Louvain partitions by greedy modularity optimisation, using edge weights.
type Louvain struct {
	Resolution float64 // <= 0 means 1
}

// Partition implements Partitioner.
func (l Louvain) Partition(g *Graph, seed *uint64) (Assignment, error) {
	if g == nil || g.NumNodes() == 0 {
		return Assignment{}, nil
	}

	var groups [][]string
	if g.NumEdges() == 0 {
		for _, n := range g.nodes {
			groups = append(groups, []string{n.Entity})
		}
	} else {
		var src rand.Source
		if seed != nil {
			src = rand.NewPCG(*seed, *seed)
		}
		reduced := community.Modularize(g.Weighted(), resolution(l.Resolution), src)

		placed := make(map[string]struct{}, g.NumNodes())
		for _, members := range reduced.Communities() {
			var group []string
			for _, m := range members {
				n, ok := g.nodeByID(m.ID())
				if !ok {
					continue
				}
				group = append(group, n.Entity)
				placed[n.Entity] = struct{}{}
			}
			if len(group) > 0 {
				groups = append(groups, group)
			}
		}
		for _, n := range g.nodes {
			if _, ok := placed[n.Entity]; !ok {
				groups = append(groups, []string{n.Entity})
			}
		}
	}

	return label(groups), nil
}

// label numbers groups by size (descending), then by smallest member.
func label(groups [][]string) Assignment {
	for _, grp := range groups {
		sort.Strings(grp)
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i]) != len(groups[j]) {
			return len(groups[i]) > len(groups[j])
		}
		return groups[i][0] < groups[j][0]
	})

	a := make(Assignment)
	for c, grp := range groups {
		for _, entity := range grp {
			a[entity] = c
		}
	}
	return a
}

// Modularity scores an assignment on g. Entities missing from the
// assignment are treated as singleton communities. A graph without edges
// scores 0.
func Modularity(g *Graph, a Assignment, res float64) float64 {
	if g == nil || g.NumEdges() == 0 {
		return 0
	}

	byLabel := make(map[int][]graph.Node)
	var singletons [][]graph.Node
	for _, n := range g.nodes {
		c, ok := a[n.Entity]
		if !ok {
			singletons = append(singletons, []graph.Node{n})
			continue
		}
		byLabel[c] = append(byLabel[c], n)
	}

	labels := make([]int, 0, len(byLabel))
	for c := range byLabel {
		labels = append(labels, c)
	}
	sort.Ints(labels)

	communities := make([][]graph.Node, 0, len(labels)+len(singletons))
	for _, c := range labels {
		communities = append(communities, byLabel[c])
	}
	communities = append(communities, singletons...)

	return community.Q(g.Weighted(), communities, resolution(res))
}

func resolution(r float64) float64 {
	if r <= 0 {
		return 1
	}
	return r
}
