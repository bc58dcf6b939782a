package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/trajprop/internal/config"
	"github.com/san-kum/trajprop/internal/dynamo"
	"github.com/san-kum/trajprop/internal/integrators"
	"github.com/san-kum/trajprop/internal/metrics"
)

// Output is what every integrator reports through the registry.
type Output struct {
	States []dynamo.State // nil for final-only runs
	Final  dynamo.State
	Stats  integrators.Stats
}

// Propagator runs one integrator over a resolved scenario.
type Propagator interface {
	Propagate(x0 dynamo.State, duration float64, finalOnly bool) Output
}

type fixedStepper interface {
	Propagate(x0 dynamo.State, duration float64) []dynamo.State
	PropagateFinal(x0 dynamo.State, duration float64) dynamo.State
}

// fixed adapts RK4 and Verlet; evalsPerStep is their force model cost.
type fixed struct {
	integ        fixedStepper
	step         float64
	evalsPerStep int
}

func (f fixed) Propagate(x0 dynamo.State, duration float64, finalOnly bool) Output {
	var out Output
	if finalOnly {
		out.Final = f.integ.PropagateFinal(x0, duration)
	} else {
		out.States = f.integ.Propagate(x0, duration)
		out.Final = out.States[len(out.States)-1]
	}
	n := integrators.StepCount(duration, f.step)
	out.Stats = integrators.Stats{Evaluations: n * f.evalsPerStep, Accepted: n}
	return out
}

type adaptive struct {
	integ *integrators.RK45
}

func (a adaptive) Propagate(x0 dynamo.State, duration float64, finalOnly bool) Output {
	if finalOnly {
		final, st := a.integ.PropagateFinalStats(x0, duration)
		return Output{Final: final, Stats: st}
	}
	res := a.integ.Propagate(x0, duration)
	return Output{States: res.States, Final: res.Final(), Stats: res.Stats}
}

type Registry struct {
	integrators map[string]func(*config.Scenario) Propagator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func(*config.Scenario) Propagator),
	}

	r.integrators["rk4"] = func(sc *config.Scenario) Propagator {
		return fixed{integ: integrators.NewRK4(sc.Fixed), step: sc.Fixed.Step, evalsPerStep: 4}
	}
	r.integrators["rk45"] = func(sc *config.Scenario) Propagator {
		return adaptive{integ: integrators.NewRK45(sc.Adaptive)}
	}
	r.integrators["verlet"] = func(sc *config.Scenario) Propagator {
		return fixed{integ: integrators.NewVerlet(sc.Fixed), step: sc.Fixed.Step, evalsPerStep: 2}
	}

	return r
}

func (r *Registry) GetIntegrator(name string, sc *config.Scenario) (Propagator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownIntegrator, name)
	}
	if name != "rk45" && sc.Fixed.Step <= 0 {
		return nil, fmt.Errorf("%w: %s needs a positive step", dynamo.ErrParameterBounds, name)
	}
	return fn(sc), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics are the trackers reported for every run.
func (r *Registry) DefaultMetrics(sc *config.Scenario) []metrics.Metric {
	return []metrics.Metric{
		metrics.NewEnergyDrift(sc.Mu),
		metrics.NewMomentumDrift(),
		metrics.NewRadiusExtrema(),
		metrics.NewDeltaV(sc.Thrust),
	}
}
