package graph

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultLayoutIterations matches the usual spring layout default.
const DefaultLayoutIterations = 50

// LayoutOptions controls Layout.
type LayoutOptions struct {
	Iterations int     // <= 0 means DefaultLayoutIterations
	K          float64 // optimal node distance; <= 0 means 1/sqrt(n)
	Seed       uint64  // initial positions
}

// Layout places nodes with the Fruchterman-Reingold force model. Edge
// weight scales attraction. Positions are centred on the origin and scaled
// so the largest coordinate magnitude is 1. The result depends only on g
// and opts.
func Layout(g *Graph, opts LayoutOptions) map[string]r2.Vec {
	out := make(map[string]r2.Vec)
	if g == nil || g.NumNodes() == 0 {
		return out
	}
	n := g.NumNodes()
	if n == 1 {
		out[g.nodes[0].Entity] = r2.Vec{}
		return out
	}

	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = DefaultLayoutIterations
	}
	k := opts.K
	if k <= 0 {
		k = 1 / math.Sqrt(float64(n))
	}

	rnd := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	pos := make([]r2.Vec, n)
	for i := range pos {
		pos[i] = r2.Vec{X: rnd.Float64(), Y: rnd.Float64()}
	}

	weight := make(map[[2]int]float64, len(g.edges))
	for _, e := range g.edges {
		i, j := g.index[e.Source], g.index[e.Target]
		weight[[2]int{i, j}] = float64(e.Weight)
		weight[[2]int{j, i}] = float64(e.Weight)
	}

	// temperature starts at a tenth of the initial spread and cools linearly
	t := 0.1 * spread(pos)
	dt := t / float64(iterations+1)

	disp := make([]r2.Vec, n)
	for it := 0; it < iterations; it++ {
		for i := range disp {
			disp[i] = r2.Vec{}
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				delta := r2.Sub(pos[i], pos[j])
				d := math.Max(r2.Norm(delta), 0.01)
				f := k*k/(d*d) - weight[[2]int{i, j}]*d/k
				disp[i] = r2.Add(disp[i], r2.Scale(f, delta))
			}
		}
		for i := range pos {
			l := math.Max(r2.Norm(disp[i]), 0.01)
			pos[i] = r2.Add(pos[i], r2.Scale(t/l, disp[i]))
		}
		t -= dt
	}

	rescale(pos)
	for i, node := range g.nodes {
		out[node.Entity] = pos[i]
	}
	return out
}

func spread(pos []r2.Vec) float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pos {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return math.Max(maxX-minX, maxY-minY)
}

func rescale(pos []r2.Vec) {
	var mean r2.Vec
	for _, p := range pos {
		mean = r2.Add(mean, p)
	}
	mean = r2.Scale(1/float64(len(pos)), mean)

	var lim float64
	for i := range pos {
		pos[i] = r2.Sub(pos[i], mean)
		lim = math.Max(lim, math.Max(math.Abs(pos[i].X), math.Abs(pos[i].Y)))
	}
	if lim == 0 {
		return
	}
	for i := range pos {
		pos[i] = r2.Scale(1/lim, pos[i])
	}
}
