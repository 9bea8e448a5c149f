package boidswarm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"
)

func randomPoints(seed uint64, n int, extent r2.Vec) []r2.Vec {
	rng := rand.New(rand.NewSource(seed))
	ps := make([]r2.Vec, n)
	for i := range ps {
		ps[i] = r2.Vec{X: rng.Float64() * extent.X, Y: rng.Float64() * extent.Y}
	}
	return ps
}

func bruteNeighbors(torus Torus, ps []r2.Vec, p r2.Vec, radius float64) []int {
	var ids []int
	for id, q := range ps {
		if torus.Distance(p, q) <= radius {
			ids = append(ids, id)
		}
	}
	return ids
}

func TestGridMatchesBruteForce(t *testing.T) {
	torus := Torus{Extent: r2.Vec{X: 100, Y: 80}}
	ps := randomPoints(1, 200, torus.Extent)

	for _, radius := range []float64{0.5, 5, 17, 60} {
		t.Run(fmt.Sprintf("radius=%v", radius), func(t *testing.T) {
			grid, err := NewGrid(torus, 5)
			require.NoError(t, err)
			grid.Build(ps)

			for _, p := range ps[:50] {
				var got []int
				grid.Visit(p, radius, func(id int) { got = append(got, id) })
				assert.ElementsMatch(t, bruteNeighbors(torus, ps, p, radius), got)
			}
		})
	}
}

func TestGridWrapsAroundEdges(t *testing.T) {
	torus := Torus{Extent: r2.Vec{X: 100, Y: 100}}
	ps := []r2.Vec{
		{X: 1, Y: 50},
		{X: 99, Y: 50},
		{X: 50, Y: 1},
		{X: 50, Y: 99},
		{X: 1, Y: 1},
		{X: 99, Y: 99},
	}
	grid, err := NewGrid(torus, 5)
	require.NoError(t, err)
	grid.Build(ps)

	var got []int
	grid.Visit(r2.Vec{X: 0, Y: 50}, 2, func(id int) { got = append(got, id) })
	assert.ElementsMatch(t, []int{0, 1}, got)

	got = got[:0]
	grid.Visit(r2.Vec{X: 50, Y: 0}, 2, func(id int) { got = append(got, id) })
	assert.ElementsMatch(t, []int{2, 3}, got)

	got = got[:0]
	grid.Visit(r2.Vec{X: 0, Y: 0}, 2, func(id int) { got = append(got, id) })
	assert.ElementsMatch(t, []int{4, 5}, got)
}

func TestGridBoundaryInclusive(t *testing.T) {
	torus := Torus{Extent: r2.Vec{X: 100, Y: 100}}
	grid, err := NewGrid(torus, 5)
	require.NoError(t, err)
	grid.Build([]r2.Vec{{X: 10, Y: 10}, {X: 13, Y: 14}})

	// The second point sits at distance exactly 5.
	var got []int
	grid.Visit(r2.Vec{X: 10, Y: 10}, 5, func(id int) { got = append(got, id) })
	assert.ElementsMatch(t, []int{0, 1}, got)

	got = got[:0]
	grid.Visit(r2.Vec{X: 10, Y: 10}, 4.999999, func(id int) { got = append(got, id) })
	assert.ElementsMatch(t, []int{0}, got)
}

// A radius beyond the domain size must visit everyone exactly once,
// not once per wrapped image.
func TestGridHugeRadiusVisitsOnce(t *testing.T) {
	torus := Torus{Extent: r2.Vec{X: 10, Y: 10}}
	ps := randomPoints(2, 40, torus.Extent)
	grid, err := NewGrid(torus, 1)
	require.NoError(t, err)
	grid.Build(ps)

	seen := make(map[int]int)
	grid.Visit(r2.Vec{X: 5, Y: 5}, 1000, func(id int) { seen[id]++ })
	assert.Len(t, seen, len(ps))
	for id, count := range seen {
		assert.Equalf(t, 1, count, "id %d visited %d times", id, count)
	}
}

func TestGridCellLargerThanExtent(t *testing.T) {
	torus := Torus{Extent: r2.Vec{X: 10, Y: 10}}
	ps := randomPoints(3, 25, torus.Extent)
	grid, err := NewGrid(torus, 50)
	require.NoError(t, err)
	grid.Build(ps)

	for _, p := range ps[:5] {
		var got []int
		grid.Visit(p, 3, func(id int) { got = append(got, id) })
		assert.ElementsMatch(t, bruteNeighbors(torus, ps, p, 3), got)
	}
}

func TestGridVisitDeterministic(t *testing.T) {
	torus := Torus{Extent: r2.Vec{X: 100, Y: 80}}
	ps := randomPoints(4, 150, torus.Extent)
	grid, err := NewGrid(torus, 5)
	require.NoError(t, err)
	grid.Build(ps)

	var first, second []int
	grid.Visit(ps[7], 12, func(id int) { first = append(first, id) })
	grid.Visit(ps[7], 12, func(id int) { second = append(second, id) })
	assert.Equal(t, first, second)
}

func TestGridRebuildReplacesSnapshot(t *testing.T) {
	torus := Torus{Extent: r2.Vec{X: 100, Y: 100}}
	grid, err := NewGrid(torus, 5)
	require.NoError(t, err)

	grid.Build([]r2.Vec{{X: 10, Y: 10}, {X: 20, Y: 20}})
	grid.Build([]r2.Vec{{X: 90, Y: 90}})

	var got []int
	grid.Visit(r2.Vec{X: 10, Y: 10}, 3, func(id int) { got = append(got, id) })
	assert.Empty(t, got)

	p, err := grid.Pos(0)
	require.NoError(t, err)
	assert.Equal(t, r2.Vec{X: 90, Y: 90}, p)

	_, err = grid.Pos(1)
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestGridPosUnknown(t *testing.T) {
	grid, err := NewGrid(Torus{Extent: r2.Vec{X: 10, Y: 10}}, 1)
	require.NoError(t, err)
	_, err = grid.Pos(-1)
	assert.ErrorIs(t, err, ErrUnknownID)
	_, err = grid.Pos(0)
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestNewGridInvalid(t *testing.T) {
	for _, tt := range []struct {
		name     string
		extent   r2.Vec
		cellSize float64
	}{
		{"zero extent", r2.Vec{}, 1},
		{"negative extent", r2.Vec{X: -10, Y: 10}, 1},
		{"zero cell", r2.Vec{X: 10, Y: 10}, 0},
		{"negative cell", r2.Vec{X: 10, Y: 10}, -2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(Torus{Extent: tt.extent}, tt.cellSize)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}
