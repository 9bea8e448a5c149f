package boidswarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestTorusWrap(t *testing.T) {
	torus := Torus{Extent: r2.Vec{X: 10, Y: 5}}

	for _, tt := range []struct {
		name string
		in   r2.Vec
		want r2.Vec
	}{
		{"inside", r2.Vec{X: 3, Y: 2}, r2.Vec{X: 3, Y: 2}},
		{"origin", r2.Vec{}, r2.Vec{}},
		{"above", r2.Vec{X: 12.5, Y: 6}, r2.Vec{X: 2.5, Y: 1}},
		{"below", r2.Vec{X: -1, Y: -2}, r2.Vec{X: 9, Y: 3}},
		{"exact extent", r2.Vec{X: 10, Y: 5}, r2.Vec{}},
		{"many periods", r2.Vec{X: 103, Y: -52}, r2.Vec{X: 3, Y: 3}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, torus.Wrap(tt.in))
		})
	}
}

// Wrapping a tiny negative coordinate must not round up to the extent
// itself, since points live in the half-open interval.
func TestTorusWrapHalfOpen(t *testing.T) {
	torus := Torus{Extent: r2.Vec{X: 5, Y: 5}}
	p := torus.Wrap(r2.Vec{X: -1e-18, Y: -1e-18})
	assert.Less(t, p.X, 5.0)
	assert.Less(t, p.Y, 5.0)
	assert.GreaterOrEqual(t, p.X, 0.0)
	assert.GreaterOrEqual(t, p.Y, 0.0)
}

func TestTorusDirection(t *testing.T) {
	torus := Torus{Extent: r2.Vec{X: 100, Y: 100}}

	for _, tt := range []struct {
		name string
		p, q r2.Vec
		want r2.Vec
	}{
		{"same point", r2.Vec{X: 4, Y: 4}, r2.Vec{X: 4, Y: 4}, r2.Vec{}},
		{"direct", r2.Vec{X: 10, Y: 10}, r2.Vec{X: 13, Y: 14}, r2.Vec{X: 3, Y: 4}},
		{"across right edge", r2.Vec{X: 99, Y: 50}, r2.Vec{X: 1, Y: 50}, r2.Vec{X: 2, Y: 0}},
		{"across left edge", r2.Vec{X: 1, Y: 50}, r2.Vec{X: 99, Y: 50}, r2.Vec{X: -2, Y: 0}},
		{"across corner", r2.Vec{X: 99, Y: 99}, r2.Vec{X: 1, Y: 1}, r2.Vec{X: 2, Y: 2}},
		{"half extent tie", r2.Vec{X: 0, Y: 0}, r2.Vec{X: 50, Y: 0}, r2.Vec{X: 50, Y: 0}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, torus.Direction(tt.p, tt.q))
		})
	}
}

func TestTorusDirectionAntisymmetric(t *testing.T) {
	torus := Torus{Extent: r2.Vec{X: 37, Y: 53}}
	p := r2.Vec{X: 1.5, Y: 50}
	q := r2.Vec{X: 36, Y: 2}
	d := torus.Direction(p, q)
	e := torus.Direction(q, p)
	assert.Equal(t, d, e.Scale(-1))
}

// Two points just inside opposite edges are nearly touching, not
// nearly an extent apart.
func TestTorusDistanceAcrossBoundary(t *testing.T) {
	torus := Torus{Extent: r2.Vec{X: 100, Y: 100}}
	a := r2.Vec{X: 0.1, Y: 50}
	b := r2.Vec{X: 99.9, Y: 50}
	assert.InDelta(t, 0.2, torus.Distance(a, b), 1e-9)
	assert.InDelta(t, 0.2, torus.Distance(b, a), 1e-9)
}

func TestTorusDistanceMax(t *testing.T) {
	torus := Torus{Extent: r2.Vec{X: 10, Y: 10}}
	// No two points can be farther apart than half the extent per axis.
	assert.InDelta(t, 5, torus.Distance(r2.Vec{X: 0, Y: 3}, r2.Vec{X: 5, Y: 3}), 1e-12)
	assert.InDelta(t, 5, torus.Distance(r2.Vec{X: 2, Y: 3}, r2.Vec{X: 7, Y: 3}), 1e-12)
}
