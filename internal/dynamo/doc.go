// Package dynamo provides the core primitives for two-body trajectory propagation.
//
// The package defines the value types shared by every integrator:
//
//   - [State]: position, velocity and elapsed time of a spacecraft
//   - [Thrust]: closed tagged variant selecting the thrust contribution
//   - [ForceModel]: two-body gravity plus thrust, dX/dt = f(r, v, t)
//
// # Example
//
//	x0 := dynamo.NewState(r3.Vec{X: 6778}, r3.Vec{Y: 7.6688})
//	fm := dynamo.ForceModel{Mu: 398600.4418, Thrust: dynamo.NoThrust()}
//	drdt, dvdt := fm.Derive(x0.Pos, x0.Vel, x0.Time)
//
// # Units
//
// The package is unit-agnostic but every caller in this module uses km, km/s,
// km/s² and km³/s² for gravitational parameters.
//
// # Thread Safety
//
// All types are plain values. A [ForceModel] is read-only during a
// propagation and may be shared between goroutines.
package dynamo
