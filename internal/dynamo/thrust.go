package dynamo

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ThrustKind enumerates the thrust profiles a propagation can use.
type ThrustKind uint8

const (
	// ThrustNone coasts under gravity alone.
	ThrustNone ThrustKind = iota
	// ThrustPrograde applies a constant acceleration along the velocity.
	ThrustPrograde
	// ThrustBrachistochrone thrusts prograde until the flip time, retrograde after.
	ThrustBrachistochrone
)

// minThrustSpeed is the speed below which the thrust direction is undefined
// and the thrust term is dropped.
const minThrustSpeed = 1e-15

func (k ThrustKind) String() string {
	switch k {
	case ThrustNone:
		return "none"
	case ThrustPrograde:
		return "prograde"
	case ThrustBrachistochrone:
		return "brachistochrone"
	}
	return fmt.Sprintf("ThrustKind(%d)", uint8(k))
}

// ParseThrustKind is the inverse of ThrustKind.String.
func ParseThrustKind(s string) (ThrustKind, error) {
	switch s {
	case "", "none", "coast":
		return ThrustNone, nil
	case "prograde", "constant-prograde":
		return ThrustPrograde, nil
	case "brachistochrone", "flip-and-burn":
		return ThrustBrachistochrone, nil
	}
	return ThrustNone, fmt.Errorf("%w: thrust kind %q", ErrParameterBounds, s)
}

// Thrust is a closed variant: it can only be built with NoThrust,
// ConstantPrograde or Brachistochrone, and is immutable afterwards.
// The zero value is NoThrust.
type Thrust struct {
	kind     ThrustKind
	accel    float64 // km/s²
	flipTime float64 // s, on the state clock
}

func NoThrust() Thrust {
	return Thrust{kind: ThrustNone}
}

// ConstantPrograde thrusts with magnitude accel along the instantaneous
// velocity. Propellant mass loss is ignored.
func ConstantPrograde(accel float64) Thrust {
	return Thrust{kind: ThrustPrograde, accel: accel}
}

// Brachistochrone thrusts prograde before flipTime and retrograde from
// flipTime on.
func Brachistochrone(accel, flipTime float64) Thrust {
	return Thrust{kind: ThrustBrachistochrone, accel: accel, flipTime: flipTime}
}

func (th Thrust) Kind() ThrustKind { return th.kind }

// Accel is the thrust acceleration magnitude; zero for NoThrust.
func (th Thrust) Accel() float64 { return th.accel }

// FlipTime is the thrust reversal time; zero unless Brachistochrone.
func (th Thrust) FlipTime() float64 { return th.flipTime }

// Event reports the time of the thrust discontinuity, if the profile has one.
func (th Thrust) Event() (float64, bool) {
	if th.kind == ThrustBrachistochrone {
		return th.flipTime, true
	}
	return 0, false
}

// Acceleration returns the thrust acceleration for velocity vel at time t.
func (th Thrust) Acceleration(vel r3.Vec, t float64) r3.Vec {
	switch th.kind {
	case ThrustNone:
		return r3.Vec{}
	case ThrustPrograde:
		return alongVelocity(vel, th.accel)
	case ThrustBrachistochrone:
		if t < th.flipTime {
			return alongVelocity(vel, th.accel)
		}
		return alongVelocity(vel, -th.accel)
	}
	return r3.Vec{}
}

func (th Thrust) String() string {
	switch th.kind {
	case ThrustPrograde:
		return fmt.Sprintf("prograde(a=%g km/s²)", th.accel)
	case ThrustBrachistochrone:
		return fmt.Sprintf("brachistochrone(a=%g km/s², flip=%gs)", th.accel, th.flipTime)
	}
	return th.kind.String()
}

func alongVelocity(vel r3.Vec, accel float64) r3.Vec {
	speed := r3.Norm(vel)
	if speed <= minThrustSpeed {
		return r3.Vec{}
	}
	return r3.Scale(accel/speed, vel)
}
