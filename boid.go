package boidswarm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Errors reported by model operations.
var (
	// ErrUnknownID indicates a boid id outside the current population.
	ErrUnknownID = errors.New("boidswarm: unknown boid id")
	// ErrInvalidParameter indicates a Params or model argument that
	// cannot describe a valid simulation.
	ErrInvalidParameter = errors.New("boidswarm: invalid parameter")
)

// Params holds the per-boid behavioral parameters.
type Params struct {
	Speed            float64 // distance moved per tick
	VisualRadius     float64 // neighborhood radius
	SeparationRadius float64 // radius below which separation applies
	CohereFactor     float64 // weight of attraction to visible boids
	SeparateFactor   float64 // weight of repulsion from close boids
	MatchFactor      float64 // weight of velocity matching
}

func (p Params) check() error {
	if !(p.Speed > 0) || math.IsInf(p.Speed, 0) {
		return fmt.Errorf("%w: speed %v", ErrInvalidParameter, p.Speed)
	}
	if !(p.VisualRadius > 0) || math.IsInf(p.VisualRadius, 0) {
		return fmt.Errorf("%w: visual radius %v", ErrInvalidParameter, p.VisualRadius)
	}
	if !(p.SeparationRadius >= 0) || math.IsInf(p.SeparationRadius, 0) {
		return fmt.Errorf("%w: separation radius %v", ErrInvalidParameter, p.SeparationRadius)
	}
	if !(p.CohereFactor >= 0) || math.IsInf(p.CohereFactor, 0) {
		return fmt.Errorf("%w: cohere factor %v", ErrInvalidParameter, p.CohereFactor)
	}
	if !(p.SeparateFactor >= 0) || math.IsInf(p.SeparateFactor, 0) {
		return fmt.Errorf("%w: separate factor %v", ErrInvalidParameter, p.SeparateFactor)
	}
	if !(p.MatchFactor >= 0) || math.IsInf(p.MatchFactor, 0) {
		return fmt.Errorf("%w: match factor %v", ErrInvalidParameter, p.MatchFactor)
	}
	return nil
}

// Boid is one agent of the flock.
//
// Pos always lies inside the model domain and Vel is never zero.
// Flocking additionally keeps Vel normalized to unit length. Code
// mutating boids directly between ticks must preserve both.
type Boid struct {
	ID  int
	Pos r2.Vec
	Vel r2.Vec
	Params
}
