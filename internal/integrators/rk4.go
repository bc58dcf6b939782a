package integrators

import (
	"math"

	"github.com/san-kum/trajprop/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// FixedConfig configures the fixed-step integrators.
type FixedConfig struct {
	Step   float64 // s
	Mu     float64 // km³/s²
	Thrust dynamo.Thrust
}

// RK4 is the classical fourth-order Runge-Kutta method with a constant step.
type RK4 struct {
	cfg FixedConfig
	fm  dynamo.ForceModel
}

func NewRK4(cfg FixedConfig) *RK4 {
	return &RK4{
		cfg: cfg,
		fm:  dynamo.ForceModel{Mu: cfg.Mu, Thrust: cfg.Thrust},
	}
}

func (r *RK4) Config() FixedConfig { return r.cfg }

// Step advances x by dt.
func (r *RK4) Step(x dynamo.State, dt float64) dynamo.State {
	t := x.Time
	half := 0.5 * dt

	k1r, k1v := r.fm.Derive(x.Pos, x.Vel, t)

	k2r, k2v := r.fm.Derive(
		r3.Add(x.Pos, r3.Scale(half, k1r)),
		r3.Add(x.Vel, r3.Scale(half, k1v)),
		t+half,
	)

	k3r, k3v := r.fm.Derive(
		r3.Add(x.Pos, r3.Scale(half, k2r)),
		r3.Add(x.Vel, r3.Scale(half, k2v)),
		t+half,
	)

	k4r, k4v := r.fm.Derive(
		r3.Add(x.Pos, r3.Scale(dt, k3r)),
		r3.Add(x.Vel, r3.Scale(dt, k3v)),
		t+dt,
	)

	dt6 := dt / 6.0
	return dynamo.State{
		Pos:  r3.Add(x.Pos, r3.Scale(dt6, weighted(k1r, k2r, k3r, k4r))),
		Vel:  r3.Add(x.Vel, r3.Scale(dt6, weighted(k1v, k2v, k3v, k4v))),
		Time: t + dt,
	}
}

// Propagate integrates for duration seconds and returns every state,
// starting with x0 itself.
func (r *RK4) Propagate(x0 dynamo.State, duration float64) []dynamo.State {
	states := make([]dynamo.State, 0, StepCount(duration, r.cfg.Step)+1)
	states = append(states, x0)
	fixedLoop(x0, r.cfg.Step, duration, r.Step, func(s dynamo.State) {
		states = append(states, s)
	})
	return states
}

// PropagateFinal runs the same steps as Propagate but keeps only the last state.
func (r *RK4) PropagateFinal(x0 dynamo.State, duration float64) dynamo.State {
	return fixedLoop(x0, r.cfg.Step, duration, r.Step, nil)
}

// fixedLoop takes ceil(duration/step) steps, shortening the last one so the
// elapsed time lands on duration.
func fixedLoop(x0 dynamo.State, step, duration float64, advance func(dynamo.State, float64) dynamo.State, emit func(dynamo.State)) dynamo.State {
	n := StepCount(duration, step)
	x := x0
	for i := 0; i < n; i++ {
		dt := step
		if i == n-1 {
			if remaining := duration - (x.Time - x0.Time); remaining < dt {
				dt = remaining
			}
		}
		x = advance(x, dt)
		if emit != nil {
			emit(x)
		}
	}
	return x
}

// StepCount is the number of steps a fixed-step run of duration takes.
func StepCount(duration, step float64) int {
	if duration <= 0 || step <= 0 {
		return 0
	}
	return int(math.Ceil(duration / step))
}

func weighted(k1, k2, k3, k4 r3.Vec) r3.Vec {
	return r3.Add(r3.Add(k1, r3.Scale(2, r3.Add(k2, k3))), k4)
}
