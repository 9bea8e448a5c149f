// Package boidswarm implements an agent-based model of flocking
// behavior in a two-dimensional periodic domain.
//
// A Model advances in synchronous ticks. During a tick every boid sees
// the flock as it stood when the tick began, and stages its next state
// through the model's mutation primitives. The staged states commit
// together when the tick ends, so update order never influences the
// outcome. The classic three-rule flocking update ships as Flocking;
// custom behaviors implement Rule.
package boidswarm

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/spatial/r2"
)

// Model is the full state of a flock simulation.
//
// Boids and Torus are exported for inspection and for setup code that
// needs to adjust individual agents between ticks. During a Step they
// must be treated as read-only.
type Model struct {
	Boids []Boid
	Torus Torus

	// Rule computes the staged update of one boid. A nil Rule means
	// Flocking.
	Rule Rule

	// Workers sets how many goroutines evaluate rules during a Step.
	// Values below 2 mean serial evaluation. Parallel evaluation is
	// deterministic because rules read only tick-start state and
	// write only their own boid.
	Workers int

	grid   *Grid
	staged []Boid
	held   []bool
	snap   []r2.Vec
	tick   int
}

// Report summarizes one committed tick.
type Report struct {
	Tick int   // number of ticks committed so far
	Held []int // ids that kept their prior heading, ascending
}

// New returns a model of n boids sharing the given parameters on a
// periodic domain of the given extent. init supplies the initial
// position and velocity of each boid; positions are wrapped into the
// domain and velocities are normalized, so a seeded random sampler can
// be plugged in directly. A zero initial velocity is rejected.
func New(n int, extent r2.Vec, p Params, init func(i int) (pos, vel r2.Vec)) (*Model, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: population %d", ErrInvalidParameter, n)
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	if init == nil && n > 0 {
		return nil, fmt.Errorf("%w: nil init", ErrInvalidParameter)
	}
	m := &Model{
		Torus:  Torus{Extent: extent},
		Rule:   Flocking,
		Boids:  make([]Boid, 0, n),
		staged: make([]Boid, 0, n),
		held:   make([]bool, n),
		snap:   make([]r2.Vec, 0, n),
	}
	grid, err := NewGrid(m.Torus, p.VisualRadius)
	if err != nil {
		return nil, err
	}
	m.grid = grid
	for i := 0; i < n; i++ {
		pos, vel := init(i)
		if !finite(pos) {
			return nil, fmt.Errorf("%w: boid %d position %v", ErrInvalidParameter, i, pos)
		}
		nv := r2.Norm(vel)
		if nv == 0 || math.IsNaN(nv) || math.IsInf(nv, 0) {
			return nil, fmt.Errorf("%w: boid %d velocity %v", ErrInvalidParameter, i, vel)
		}
		m.Boids = append(m.Boids, Boid{
			ID:     i,
			Pos:    m.Torus.Wrap(pos),
			Vel:    vel.Scale(1 / nv),
			Params: p,
		})
	}
	m.staged = append(m.staged, m.Boids...)
	m.index()
	return m, nil
}

// Tick returns the number of committed ticks.
func (m *Model) Tick() int {
	return m.tick
}

// Step advances the model by one tick: it snapshots the flock, runs
// the rule for every boid against that snapshot, and commits all
// staged states at once. If any rule evaluation fails the tick is
// abandoned and the model is left at its pre-tick state.
func (m *Model) Step() (Report, error) {
	rule := m.Rule
	if rule == nil {
		rule = Flocking
	}

	m.index()
	m.staged = append(m.staged[:0], m.Boids...)
	for i := range m.held {
		m.held[i] = false
	}

	if err := m.run(rule); err != nil {
		return Report{}, err
	}

	m.Boids, m.staged = m.staged, m.Boids
	m.tick++
	rep := Report{Tick: m.tick}
	for id, h := range m.held {
		if h {
			rep.Held = append(rep.Held, id)
		}
	}
	return rep, nil
}

// index rebuilds the neighborhood index from the current positions.
func (m *Model) index() {
	m.snap = m.snap[:0]
	for i := range m.Boids {
		m.snap = append(m.snap, m.Boids[i].Pos)
	}
	m.grid.Build(m.snap)
}

func (m *Model) run(rule Rule) error {
	w := m.Workers
	if w > len(m.Boids) {
		w = len(m.Boids)
	}
	if w < 2 {
		for id := range m.Boids {
			if err := rule(id, m); err != nil {
				return fmt.Errorf("boid %d: %w", id, err)
			}
		}
		return nil
	}

	errs := make([]error, w)
	var wg sync.WaitGroup
	wg.Add(w)
	for k := 0; k < w; k++ {
		go func(k int) {
			defer wg.Done()
			lo := k * len(m.Boids) / w
			hi := (k + 1) * len(m.Boids) / w
			for id := lo; id < hi; id++ {
				if err := rule(id, m); err != nil {
					errs[k] = fmt.Errorf("boid %d: %w", id, err)
					return
				}
			}
		}(k)
	}
	wg.Wait()
	return multierr.Combine(errs...)
}

// Boid returns the state of id as it stood at the start of the most
// recent Step, or the initial state if no Step has run.
func (m *Model) Boid(id int) (Boid, error) {
	if err := m.valid(id); err != nil {
		return Boid{}, err
	}
	return m.Boids[id], nil
}

// VisitNeighbors calls fn for every boid within id's visual radius,
// excluding id itself. Like Boid, it reads the flock as it stood at
// the start of the most recent Step. The order of visits is fixed for
// a given snapshot.
func (m *Model) VisitNeighbors(id int, fn func(nid int)) error {
	if err := m.valid(id); err != nil {
		return err
	}
	b := &m.Boids[id]
	m.grid.Visit(b.Pos, b.VisualRadius, func(nid int) {
		if nid != id {
			fn(nid)
		}
	})
	return nil
}

// SetVelocity stages a new velocity for id, assigned as given;
// normalizing is the rule's concern. The write takes effect when the
// current tick commits; like the other mutation primitives it is
// meant to be called from a Rule. Zero and non-finite velocities are
// rejected since a committed velocity must never vanish.
func (m *Model) SetVelocity(id int, v r2.Vec) error {
	if err := m.valid(id); err != nil {
		return err
	}
	n := r2.Norm(v)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("%w: velocity %v", ErrInvalidParameter, v)
	}
	m.staged[id].Vel = v
	m.held[id] = false
	return nil
}

// HoldVelocity stages id to keep the heading it had at the start of
// the tick and records the hold in the tick's Report.
func (m *Model) HoldVelocity(id int) error {
	if err := m.valid(id); err != nil {
		return err
	}
	m.staged[id].Vel = m.Boids[id].Vel
	m.held[id] = true
	return nil
}

// Displace stages a move of id by d. Repeated calls within a tick
// accumulate, and the final position is wrapped into the domain.
func (m *Model) Displace(id int, d r2.Vec) error {
	if err := m.valid(id); err != nil {
		return err
	}
	if !finite(d) {
		return fmt.Errorf("%w: displacement %v", ErrInvalidParameter, d)
	}
	m.staged[id].Pos = m.Torus.Wrap(m.staged[id].Pos.Add(d))
	return nil
}

func (m *Model) valid(id int) error {
	if id < 0 || id >= len(m.Boids) {
		return fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	return nil
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
