package boidswarm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Grid is a uniform bucket index over a toroidal domain. It holds a
// snapshot of positions keyed by dense integer ids and answers
// fixed-radius neighborhood queries without scanning the whole
// population.
//
// The domain is partitioned into cols × rows cells of equal size, so
// periodic wrapping never produces a partial cell. Cells are at least
// cellSize wide, which keeps radius ≈ cellSize queries to one ring of
// cells around the query point.
type Grid struct {
	torus Torus
	cols  int
	rows  int
	cellW float64
	cellH float64
	cells [][]int
	pos   []r2.Vec
}

// NewGrid returns an empty index over the given domain. cellSize is a
// performance hint, typically the common query radius.
func NewGrid(torus Torus, cellSize float64) (*Grid, error) {
	if !(torus.Extent.X > 0) || math.IsInf(torus.Extent.X, 0) ||
		!(torus.Extent.Y > 0) || math.IsInf(torus.Extent.Y, 0) {
		return nil, fmt.Errorf("%w: domain extent %v", ErrInvalidParameter, torus.Extent)
	}
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("%w: cell size %v", ErrInvalidParameter, cellSize)
	}
	g := &Grid{
		torus: torus,
		cols:  max(1, int(torus.Extent.X/cellSize)),
		rows:  max(1, int(torus.Extent.Y/cellSize)),
	}
	g.cellW = torus.Extent.X / float64(g.cols)
	g.cellH = torus.Extent.Y / float64(g.rows)
	g.cells = make([][]int, g.cols*g.rows)
	return g, nil
}

// Build replaces the indexed snapshot with the given positions, keyed
// by their index. Positions are wrapped into the domain. Buckets are
// reused across builds so steady-state builds do not allocate.
func (g *Grid) Build(ps []r2.Vec) {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.pos = g.pos[:0]
	for id, p := range ps {
		p = g.torus.Wrap(p)
		g.pos = append(g.pos, p)
		c := g.cellIndex(p)
		g.cells[c] = append(g.cells[c], id)
	}
}

// Pos returns the indexed position of id as of the last Build.
func (g *Grid) Pos(id int) (r2.Vec, error) {
	if id < 0 || id >= len(g.pos) {
		return r2.Vec{}, fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	return g.pos[id], nil
}

// Visit calls fn for every indexed id whose wrapped distance from p is
// at most radius, including an id indexed at p itself. Callers that
// want strict neighbors skip their own id in fn. The visiting order is
// fixed for a given snapshot, so iteration is deterministic.
func (g *Grid) Visit(p r2.Vec, radius float64, fn func(id int)) {
	p = g.torus.Wrap(p)
	cx := clamp(int(p.X/g.cellW), 0, g.cols-1)
	cy := clamp(int(p.Y/g.cellH), 0, g.rows-1)

	// A ring of k cells on each side covers the radius. When the ring
	// would wrap onto itself, scan each axis exactly once instead.
	x0, nx := span(cx, int(math.Ceil(radius/g.cellW)), g.cols)
	y0, ny := span(cy, int(math.Ceil(radius/g.cellH)), g.rows)

	rr := radius * radius
	for j := 0; j < ny; j++ {
		row := ((y0+j)%g.rows + g.rows) % g.rows * g.cols
		for i := 0; i < nx; i++ {
			col := ((x0+i)%g.cols + g.cols) % g.cols
			for _, id := range g.cells[row+col] {
				d := g.torus.Direction(p, g.pos[id])
				if r2.Norm2(d) <= rr {
					fn(id)
				}
			}
		}
	}
}

func span(c, k, n int) (start, count int) {
	if 2*k+1 >= n {
		return 0, n
	}
	return c - k, 2*k + 1
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func (g *Grid) cellIndex(p r2.Vec) int {
	cx := clamp(int(p.X/g.cellW), 0, g.cols-1)
	cy := clamp(int(p.Y/g.cellH), 0, g.rows-1)
	return cy*g.cols + cx
}
