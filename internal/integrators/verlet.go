package integrators

import (
	"github.com/san-kum/trajprop/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Verlet is the Störmer-Verlet (kick-drift-kick) method for ballistic arcs.
// It integrates gravity only: the velocity-dependent thrust term would break
// the symplectic structure, so cfg.Thrust is ignored. Energy error stays
// bounded instead of drifting secularly.
type Verlet struct {
	cfg FixedConfig
	fm  dynamo.ForceModel
}

func NewVerlet(cfg FixedConfig) *Verlet {
	return &Verlet{
		cfg: cfg,
		fm:  dynamo.ForceModel{Mu: cfg.Mu},
	}
}

func (v *Verlet) Config() FixedConfig { return v.cfg }

func (v *Verlet) Step(x dynamo.State, dt float64) dynamo.State {
	halfDt := 0.5 * dt

	velHalf := r3.Add(x.Vel, r3.Scale(halfDt, v.fm.Gravity(x.Pos)))
	pos := r3.Add(x.Pos, r3.Scale(dt, velHalf))
	vel := r3.Add(velHalf, r3.Scale(halfDt, v.fm.Gravity(pos)))

	return dynamo.State{Pos: pos, Vel: vel, Time: x.Time + dt}
}

func (v *Verlet) Propagate(x0 dynamo.State, duration float64) []dynamo.State {
	states := make([]dynamo.State, 0, StepCount(duration, v.cfg.Step)+1)
	states = append(states, x0)
	fixedLoop(x0, v.cfg.Step, duration, v.Step, func(s dynamo.State) {
		states = append(states, s)
	})
	return states
}

func (v *Verlet) PropagateFinal(x0 dynamo.State, duration float64) dynamo.State {
	return fixedLoop(x0, v.cfg.Step, duration, v.Step, nil)
}
