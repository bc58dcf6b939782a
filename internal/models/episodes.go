package models

import (
	"github.com/san-kum/trajprop/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Reference transfers. EP01 is a 72 h brachistochrone from Mars orbit over
// the Mars-Jupiter closest distance; EP02 is a 455 day heliocentric coast
// from Jupiter outward to Saturn; EP03 is a 143 h 12 m brachistochrone from
// Saturn to Uranus; EP05 is the 35 h deceleration leg of the return to
// Earth, flown inward from 3 AU at cruise speed.
const (
	EP01Distance = 550_630_800.0 // km
	EP01Duration = 72 * 3600.0   // s

	EP02DepartureSpeed = 18.99             // km/s, heliocentric
	EP02Duration       = 455 * 24 * 3600.0 // s

	EP03Distance = 1_438_930_000.0 // km
	EP03Duration = 515_520.0       // s

	EP05DeltaV       = 7_600.0        // km/s
	EP05BurnDuration = 35 * 3600.0    // s
	EP05CruiseSpeed  = 1_500.0        // km/s
	EP05StartRadius  = 3 * OrbitEarth // km
)

// EP01Departure returns the Mars-orbit start state and the brachistochrone
// thrust that flips at mid-transfer.
func EP01Departure() (dynamo.State, dynamo.Thrust) {
	accel := BrachistochroneAccel(EP01Distance, EP01Duration)
	return CircularOrbit(MuSun, OrbitMars), dynamo.Brachistochrone(accel, EP01Duration/2)
}

func EP02Departure() dynamo.State {
	return TransferDeparture(MuSun, OrbitJupiter, OrbitSaturn, EP02DepartureSpeed)
}

// EP03Departure starts on Saturn's circular orbit.
func EP03Departure() (dynamo.State, dynamo.Thrust) {
	accel := BrachistochroneAccel(EP03Distance, EP03Duration)
	return CircularOrbit(MuSun, OrbitSaturn), dynamo.Brachistochrone(accel, EP03Duration/2)
}

// EP05DecelerationBurn starts at EP05StartRadius moving straight at the Sun.
// The burn spends EP05DeltaV in total, half accelerating and half braking.
func EP05DecelerationBurn() (dynamo.State, dynamo.Thrust) {
	x0 := dynamo.NewState(r3.Vec{X: EP05StartRadius}, r3.Vec{X: -EP05CruiseSpeed})
	return x0, dynamo.Brachistochrone(EP05DeltaV/EP05BurnDuration, EP05BurnDuration/2)
}
