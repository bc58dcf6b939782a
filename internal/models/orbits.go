package models

import (
	"math"

	"github.com/san-kum/trajprop/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// CircularOrbit places a craft at (r, 0, 0) moving at circular speed along +Y.
func CircularOrbit(mu, radius float64) dynamo.State {
	return dynamo.NewState(
		r3.Vec{X: radius},
		r3.Vec{Y: CircularSpeed(mu, radius)},
	)
}

// EllipticalAtPeriapsis places a craft at periapsis of an orbit in the XY
// plane with semi-major axis a and eccentricity e < 1.
func EllipticalAtPeriapsis(mu, a, e float64) dynamo.State {
	rp := a * (1 - e)
	vp := math.Sqrt(mu * (2/rp - 1/a))
	return dynamo.NewState(r3.Vec{X: rp}, r3.Vec{Y: vp})
}

func CircularSpeed(mu, radius float64) float64 {
	return math.Sqrt(mu / radius)
}

// OrbitalPeriod is 2π sqrt(a³/μ).
func OrbitalPeriod(mu, a float64) float64 {
	return 2 * math.Pi * math.Sqrt(a*a*a/mu)
}

// BrachistochroneAccel is the constant acceleration that covers distance in
// duration with a flip at the midpoint: 4d/t².
func BrachistochroneAccel(distance, duration float64) float64 {
	return 4 * distance / (duration * duration)
}

// TransferDeparture places a craft at (r1, 0, 0) with total speed split
// into the tangential speed of the ellipse touching r1 and r2 plus an
// outward radial remainder. If speed is below that tangential speed the
// departure is purely tangential at the ellipse speed.
func TransferDeparture(mu, r1, r2, speed float64) dynamo.State {
	a := (r1 + r2) / 2
	vt := math.Sqrt(mu * (2/r1 - 1/a))
	var vr float64
	if speed > vt {
		vr = math.Sqrt(speed*speed - vt*vt)
	}
	return dynamo.NewState(r3.Vec{X: r1}, r3.Vec{X: vr, Y: vt})
}
