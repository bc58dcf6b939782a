package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// State is the spacecraft state at a single instant. It is a value: every
// integration step produces a new State rather than mutating the previous one.
type State struct {
	Pos  r3.Vec  // km
	Vel  r3.Vec  // km/s
	Time float64 // s
}

// NewState returns a State at t = 0.
func NewState(pos, vel r3.Vec) State {
	return State{Pos: pos, Vel: vel}
}

// Radius is the distance from the central body.
func (s State) Radius() float64 {
	return r3.Norm(s.Pos)
}

// Speed is the velocity magnitude.
func (s State) Speed() float64 {
	return r3.Norm(s.Vel)
}

func (s State) IsValid() bool {
	for _, v := range [...]float64{s.Pos.X, s.Pos.Y, s.Pos.Z, s.Vel.X, s.Vel.Y, s.Vel.Z, s.Time} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Components flattens the state into [x, y, z, vx, vy, vz].
func (s State) Components() [6]float64 {
	return [6]float64{s.Pos.X, s.Pos.Y, s.Pos.Z, s.Vel.X, s.Vel.Y, s.Vel.Z}
}
