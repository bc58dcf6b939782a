package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/trajprop/internal/config"
	"github.com/san-kum/trajprop/internal/dynamo"
	"github.com/san-kum/trajprop/internal/integrators"
	"github.com/san-kum/trajprop/internal/metrics"
)

// ctxCheckEvery is how many states are observed between context checks.
const ctxCheckEvery = 4096

// Result is the unified report of one scenario run.
type Result struct {
	Scenario   string
	Integrator string
	States     []dynamo.State // nil for final-only runs
	Initial    dynamo.State
	Final      dynamo.State
	Stats      integrators.Stats
	Requested  float64 // s
	Covered    float64 // s
	Metrics    map[string]float64
	Elapsed    time.Duration
}

// UnderCovered reports whether the run stopped short of the requested
// duration, which happens when an adaptive run exhausts MaxSteps.
func (r *Result) UnderCovered() bool {
	return r.Requested-r.Covered > 1e-9*max(1, r.Requested)
}

type Experiment struct {
	sc         *config.Scenario
	integrator string
	propagator Propagator
	metrics    []metrics.Metric
}

// New builds an experiment for sc using the named integrator; an empty
// name uses the scenario's own.
func New(sc *config.Scenario, reg *Registry, integrator string) (*Experiment, error) {
	if integrator == "" {
		integrator = sc.Integrator
	}
	p, err := reg.GetIntegrator(integrator, sc)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	return &Experiment{
		sc:         sc,
		integrator: integrator,
		propagator: p,
		metrics:    reg.DefaultMetrics(sc),
	}, nil
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	out := e.propagator.Propagate(e.sc.Initial, e.sc.Duration, e.sc.FinalOnly)
	elapsed := time.Since(start)

	result := &Result{
		Scenario:   e.sc.Name,
		Integrator: e.integrator,
		States:     out.States,
		Initial:    e.sc.Initial,
		Final:      out.Final,
		Stats:      out.Stats,
		Requested:  e.sc.Duration,
		Covered:    out.Final.Time - e.sc.Initial.Time,
		Metrics:    make(map[string]float64),
		Elapsed:    elapsed,
	}

	observed := out.States
	if observed == nil {
		observed = []dynamo.State{e.sc.Initial, out.Final}
	}
	for _, m := range e.metrics {
		m.Reset()
	}
	for i, s := range observed {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}
		for _, m := range e.metrics {
			m.Observe(s)
		}
	}
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	if fd, ok := e.energyFinal(); ok {
		result.Metrics["energy_drift_final"] = fd
	}

	if !out.Final.IsValid() {
		return result, &dynamo.SimulationError{
			Step:    out.Stats.Trials(),
			Time:    out.Final.Time,
			State:   out.Final,
			Wrapped: dynamo.ErrInvalidState,
		}
	}
	return result, nil
}

func (e *Experiment) energyFinal() (float64, bool) {
	for _, m := range e.metrics {
		if ed, ok := m.(*metrics.EnergyDriftMetric); ok {
			return ed.Final(), true
		}
	}
	return 0, false
}
