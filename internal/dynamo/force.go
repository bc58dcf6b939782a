package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ForceModel is two-body gravity about a central mass plus a thrust profile.
// It must not be evaluated at |r| = 0.
type ForceModel struct {
	Mu     float64 // km³/s²
	Thrust Thrust
}

// Derive returns (dr/dt, dv/dt) = (v, -μ r/|r|³ + a_thrust).
func (f ForceModel) Derive(pos, vel r3.Vec, t float64) (r3.Vec, r3.Vec) {
	return vel, r3.Add(f.Gravity(pos), f.Thrust.Acceleration(vel, t))
}

// Gravity is the inverse-square acceleration at pos.
func (f ForceModel) Gravity(pos r3.Vec) r3.Vec {
	rSq := r3.Norm2(pos)
	rCubed := rSq * math.Sqrt(rSq)
	return r3.Scale(-f.Mu/rCubed, pos)
}
