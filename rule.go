package boidswarm

import "gonum.org/v1/gonum/spatial/r2"

// Rule computes and stages the next state of one boid during a Step.
// Reads through Boid and VisitNeighbors see the tick-start snapshot;
// writes go through SetVelocity, HoldVelocity and Displace. A rule
// must not stage state for any boid other than its own.
type Rule func(id int, m *Model) error

// Flocking is the classic three-rule boid update. Every visible
// neighbor attracts the boid toward the local center of mass and
// pulls its heading toward the local mean heading. Neighbors closer
// than the separation radius also push the boid away. The new heading
// is the mean of the old velocity and the summed contributions, and
// the boid moves along it at its fixed speed.
//
// When the new heading vanishes exactly, the boid keeps its prior
// heading for this tick and the Step reports it as held.
func Flocking(id int, m *Model) error {
	self, err := m.Boid(id)
	if err != nil {
		return err
	}

	var cohere, separate, match r2.Vec
	n := 0
	err = m.VisitNeighbors(id, func(nid int) {
		n++
		nb := m.Boids[nid]
		d := m.Torus.Direction(self.Pos, nb.Pos)
		cohere = cohere.Add(d)
		if r2.Norm(d) < self.SeparationRadius {
			separate = separate.Sub(d)
		}
		match = match.Add(nb.Vel)
	})
	if err != nil {
		return err
	}
	if n > 0 {
		inv := 1 / float64(n)
		cohere = cohere.Scale(inv * self.CohereFactor)
		separate = separate.Scale(inv * self.SeparateFactor)
		match = match.Scale(inv * self.MatchFactor)
	}

	v := self.Vel.Add(cohere).Add(separate).Add(match).Scale(0.5)
	nv := r2.Norm(v)
	if nv == 0 {
		if err := m.HoldVelocity(id); err != nil {
			return err
		}
		v = self.Vel
	} else {
		v = v.Scale(1 / nv)
		if err := m.SetVelocity(id, v); err != nil {
			return err
		}
	}
	return m.Displace(id, v.Scale(self.Speed))
}
