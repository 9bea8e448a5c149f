package boidswarm

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Torus is a rectangular domain with periodic boundary conditions.
// Points live in [0, Extent.X) × [0, Extent.Y).
type Torus struct {
	Extent r2.Vec
}

// Wrap maps an arbitrary point back into the domain.
func (t Torus) Wrap(p r2.Vec) r2.Vec {
	p.X = wrap(p.X, t.Extent.X)
	p.Y = wrap(p.Y, t.Extent.Y)
	return p
}

func wrap(x, size float64) float64 {
	x = math.Mod(x, size)
	if x < 0 {
		x += size
	}
	// Adding size to a tiny negative remainder can round to size itself.
	if x >= size {
		x = 0
	}
	return x
}

// Direction returns the shortest vector leading from p to q across
// the periodic boundary. Both points must already lie in the domain.
// When p and q are exactly half the domain apart the positive
// direction is chosen.
func (t Torus) Direction(p, q r2.Vec) r2.Vec {
	return r2.Vec{
		X: shortest(q.X-p.X, t.Extent.X),
		Y: shortest(q.Y-p.Y, t.Extent.Y),
	}
}

func shortest(x, size float64) float64 {
	if 2*x <= -size {
		x += size
	} else if 2*x > size {
		x -= size
	}
	return x
}

// Distance returns the length of the shortest path from p to q.
func (t Torus) Distance(p, q r2.Vec) float64 {
	return r2.Norm(t.Direction(p, q))
}
