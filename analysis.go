package boidswarm

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Polarization measures the alignment of the flock as the length of
// its mean heading, from 0 (disordered) to 1 (all boids parallel).
// An empty flock has polarization 0.
func Polarization(m *Model) float64 {
	if len(m.Boids) == 0 {
		return 0
	}
	var sum r2.Vec
	for i := range m.Boids {
		v := m.Boids[i].Vel
		if n := r2.Norm(v); n > 0 {
			sum = sum.Add(v.Scale(1 / n))
		}
	}
	return r2.Norm(sum) / float64(len(m.Boids))
}

// Groups partitions the flock into the connected components of the
// proximity graph that links two boids when their wrapped distance is
// at most maxDist. It returns one group label per boid id. Labels
// count up from 0 in order of each group's smallest member id, so the
// labeling is deterministic.
func Groups(m *Model, maxDist float64) ([]int, error) {
	if !(maxDist > 0) || math.IsInf(maxDist, 0) {
		return nil, fmt.Errorf("%w: group distance %v", ErrInvalidParameter, maxDist)
	}
	if len(m.Boids) == 0 {
		return nil, nil
	}

	grid, err := NewGrid(m.Torus, maxDist)
	if err != nil {
		return nil, err
	}
	ps := make([]r2.Vec, len(m.Boids))
	for i := range m.Boids {
		ps[i] = m.Boids[i].Pos
	}
	grid.Build(ps)

	g := simple.NewUndirectedGraph()
	for i := range m.Boids {
		g.AddNode(simple.Node(i))
	}
	for i := range m.Boids {
		grid.Visit(ps[i], maxDist, func(j int) {
			if j > i {
				g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		})
	}

	comps := topo.ConnectedComponents(g)
	sort.Slice(comps, func(a, b int) bool { return minID(comps[a]) < minID(comps[b]) })
	labels := make([]int, len(m.Boids))
	for k, comp := range comps {
		for _, node := range comp {
			labels[int(node.ID())] = k
		}
	}
	return labels, nil
}

func minID(nodes []graph.Node) int64 {
	lo := nodes[0].ID()
	for _, n := range nodes[1:] {
		if n.ID() < lo {
			lo = n.ID()
		}
	}
	return lo
}
