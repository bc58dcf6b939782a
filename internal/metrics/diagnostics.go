package metrics

import (
	"math"

	"github.com/san-kum/trajprop/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// negligibleEnergy is the |e₀| below which drift is reported as absolute.
const negligibleEnergy = 1e-30

// SpecificEnergy is |v|²/2 - μ/|r|.
func SpecificEnergy(s dynamo.State, mu float64) float64 {
	return 0.5*r3.Norm2(s.Vel) - mu/s.Radius()
}

// AngularMomentum is the specific angular momentum vector r × v.
func AngularMomentum(s dynamo.State) r3.Vec {
	return r3.Cross(s.Pos, s.Vel)
}

// EnergyDrift compares every state's specific energy against the first
// state's and returns the maximum and final relative errors.
func EnergyDrift(states []dynamo.State, mu float64) (maxRel, finalRel float64) {
	d := NewEnergyDrift(mu)
	for _, s := range states {
		d.Observe(s)
	}
	return d.Value(), d.Final()
}

// AngularMomentumDrift is EnergyDrift for |r × v|.
func AngularMomentumDrift(states []dynamo.State) (maxRel, finalRel float64) {
	d := NewMomentumDrift()
	for _, s := range states {
		d.Observe(s)
	}
	return d.Value(), d.Final()
}

// PositionError is the distance between two states' positions.
func PositionError(a, b dynamo.State) float64 {
	return r3.Norm(r3.Sub(a.Pos, b.Pos))
}

// RelativeStateError is the position and velocity error of got against
// want, each relative to want's magnitude.
func RelativeStateError(got, want dynamo.State) (pos, vel float64) {
	pos = PositionError(got, want) / want.Radius()
	vel = r3.Norm(r3.Sub(got.Vel, want.Vel)) / want.Speed()
	return pos, vel
}

func relativeError(v, ref float64) float64 {
	if math.Abs(ref) > negligibleEnergy {
		return math.Abs((v - ref) / ref)
	}
	return math.Abs(v - ref)
}
