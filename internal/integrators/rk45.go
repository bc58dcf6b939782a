package integrators

import (
	"math"

	"github.com/san-kum/trajprop/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Dormand-Prince 5(4) tableau.
const (
	c2 = 1.0 / 5.0
	c3 = 3.0 / 10.0
	c4 = 4.0 / 5.0
	c5 = 8.0 / 9.0

	a21 = 1.0 / 5.0
	a31 = 3.0 / 40.0
	a32 = 9.0 / 40.0
	a41 = 44.0 / 45.0
	a42 = -56.0 / 15.0
	a43 = 32.0 / 9.0
	a51 = 19372.0 / 6561.0
	a52 = -25360.0 / 2187.0
	a53 = 64448.0 / 6561.0
	a54 = -212.0 / 729.0
	a61 = 9017.0 / 3168.0
	a62 = -355.0 / 33.0
	a63 = 46732.0 / 5247.0
	a64 = 49.0 / 176.0
	a65 = -5103.0 / 18656.0

	// fifth-order weights; also the seventh row of A (FSAL)
	b1 = 35.0 / 384.0
	b3 = 500.0 / 1113.0
	b4 = 125.0 / 192.0
	b5 = -2187.0 / 6784.0
	b6 = 11.0 / 84.0

	// fifth minus fourth order weights
	e1 = b1 - 5179.0/57600.0
	e3 = b3 - 7571.0/16695.0
	e4 = b4 - 393.0/640.0
	e5 = b5 - -92097.0/339200.0
	e6 = b6 - 187.0/2100.0
	e7 = -1.0 / 40.0
)

// Step-size controller.
const (
	safety          = 0.9
	minFactor       = 0.2
	maxFactor       = 5.0
	rejectMinFactor = 0.1
	alpha           = 0.20
	beta            = 0.08
	minErrPrev      = 1e-4

	timeEps          = 1e-12
	fallbackStep     = 1e-6
	defaultMaxSteps  = 1_000_000
	negligibleNormHW = 1e-5
)

// AdaptiveConfig configures RK45.
type AdaptiveConfig struct {
	Mu     float64 // km³/s²
	Thrust dynamo.Thrust

	RelTol float64
	AbsTol float64

	// InitialStep of 0 estimates the first step from the initial state.
	InitialStep float64
	MinStep     float64
	MaxStep     float64

	// MaxSteps bounds the number of trial steps, accepted or rejected.
	// Non-positive means 1,000,000.
	MaxSteps int
}

// NearBody suits planet-centred orbits: one hour maximum step.
func NearBody(mu float64, thrust dynamo.Thrust) AdaptiveConfig {
	return AdaptiveConfig{
		Mu:       mu,
		Thrust:   thrust,
		RelTol:   1e-10,
		AbsTol:   1e-12,
		MinStep:  1e-3,
		MaxStep:  3600,
		MaxSteps: defaultMaxSteps,
	}
}

// Planetocentric is NearBody.
func Planetocentric(mu float64, thrust dynamo.Thrust) AdaptiveConfig {
	return NearBody(mu, thrust)
}

// Heliocentric suits interplanetary arcs: one day maximum step.
func Heliocentric(mu float64, thrust dynamo.Thrust) AdaptiveConfig {
	cfg := NearBody(mu, thrust)
	cfg.MaxStep = 86400
	return cfg
}

// Stats counts the work done by one adaptive propagation.
type Stats struct {
	Evaluations int // force model calls
	Accepted    int
	Rejected    int
}

// Trials is the number of attempted steps.
func (s Stats) Trials() int { return s.Accepted + s.Rejected }

// AdaptiveResult is the report of RK45.Propagate.
type AdaptiveResult struct {
	States []dynamo.State
	Stats
}

// Final returns the last state of the trajectory.
func (r *AdaptiveResult) Final() dynamo.State {
	return r.States[len(r.States)-1]
}

type stage struct {
	dr, dv r3.Vec
}

// RK45 is the Dormand-Prince embedded 5(4) pair with a PI step controller.
// It steps exactly onto the thrust flip time of a brachistochrone profile.
type RK45 struct {
	cfg AdaptiveConfig
	fm  dynamo.ForceModel
}

func NewRK45(cfg AdaptiveConfig) *RK45 {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = defaultMaxSteps
	}
	return &RK45{
		cfg: cfg,
		fm:  dynamo.ForceModel{Mu: cfg.Mu, Thrust: cfg.Thrust},
	}
}

func (r *RK45) Config() AdaptiveConfig { return r.cfg }

// Propagate integrates for duration seconds and returns every accepted
// state, starting with x0 itself. If MaxSteps trials are exhausted first the
// trajectory ends early; compare the final time to the duration to detect it.
func (r *RK45) Propagate(x0 dynamo.State, duration float64) *AdaptiveResult {
	res := &AdaptiveResult{States: []dynamo.State{x0}}
	_, res.Stats = r.run(x0, duration, func(s dynamo.State) {
		res.States = append(res.States, s)
	})
	return res
}

// PropagateFinal runs the same steps as Propagate but keeps only the last
// state. It returns the number of force model evaluations.
func (r *RK45) PropagateFinal(x0 dynamo.State, duration float64) (dynamo.State, int) {
	x, st := r.run(x0, duration, nil)
	return x, st.Evaluations
}

// PropagateFinalStats is PropagateFinal with the full step accounting.
func (r *RK45) PropagateFinalStats(x0 dynamo.State, duration float64) (dynamo.State, Stats) {
	return r.run(x0, duration, nil)
}

func (r *RK45) run(x0 dynamo.State, duration float64, emit func(dynamo.State)) (dynamo.State, Stats) {
	var st Stats
	x := x0
	if duration <= 0 {
		return x, st
	}
	cfg := r.cfg
	event, hasEvent := cfg.Thrust.Event()

	var k [7]stage
	k1 := r.eval(x.Pos, x.Vel, x.Time)
	st.Evaluations++
	haveK1 := true

	h := cfg.InitialStep
	if h <= 0 {
		h = r.initialStep(x, k1)
	}
	h = r.clamp(h)

	errPrev := minErrPrev
	rejectedLast := false

	for st.Trials() < cfg.MaxSteps {
		remaining := duration - (x.Time - x0.Time)
		if remaining <= timeEps {
			break
		}
		if !haveK1 {
			k1 = r.eval(x.Pos, x.Vel, x.Time)
			st.Evaluations++
			haveK1 = true
		}

		step := math.Min(h, remaining)
		landing := false
		if hasEvent && x.Time < event && x.Time+step >= event {
			step = event - x.Time
			landing = true
		}
		last := step >= remaining

		// Stages at the end of a step that lands on the flip see the thrust
		// from before it.
		tEnd := x.Time + step
		if landing {
			tEnd = math.Nextafter(event, math.Inf(-1))
		}

		k[0] = k1
		next, errs := r.trial(x, step, tEnd, &k)
		st.Evaluations += 6

		switch {
		case landing:
			next.Time = event
		case last:
			next.Time = x0.Time + duration
		default:
			next.Time = x.Time + step
		}

		errNorm := r.errorNorm(x, next, errs)
		if errNorm <= 1 || step <= cfg.MinStep {
			st.Accepted++
			x = next
			if emit != nil {
				emit(x)
			}

			factor := maxFactor
			if errNorm > 0 {
				factor = safety * math.Pow(errNorm, -alpha) * math.Pow(errPrev, beta)
				factor = math.Min(maxFactor, math.Max(minFactor, factor))
			}
			if rejectedLast {
				factor = math.Min(factor, 1)
			}
			hNew := step * factor
			errPrev = math.Max(errNorm, minErrPrev)
			rejectedLast = false

			if landing {
				// resume at the step planned before it was cut short
				hNew = math.Max(hNew, h)
				errPrev = minErrPrev
				haveK1 = false
			} else {
				k1 = k[6]
			}
			h = r.clamp(hNew)
			if last {
				break
			}
			continue
		}

		st.Rejected++
		rejectedLast = true
		factor := math.Max(rejectMinFactor, safety*math.Pow(errNorm, -alpha))
		h = r.clamp(step * factor)
	}

	return x, st
}

// trial computes one step of size h from x. k[0] must hold f(x); tEnd is
// the time used for the stages at the end of the step. It returns the
// fifth-order state (without its time) and the local error estimate.
func (r *RK45) trial(x dynamo.State, h, tEnd float64, k *[7]stage) (dynamo.State, [6]float64) {
	t := x.Time

	p, v := offset(x, h, k, a21)
	k[1] = r.eval(p, v, t+c2*h)

	p, v = offset(x, h, k, a31, a32)
	k[2] = r.eval(p, v, t+c3*h)

	p, v = offset(x, h, k, a41, a42, a43)
	k[3] = r.eval(p, v, t+c4*h)

	p, v = offset(x, h, k, a51, a52, a53, a54)
	k[4] = r.eval(p, v, t+c5*h)

	p, v = offset(x, h, k, a61, a62, a63, a64, a65)
	k[5] = r.eval(p, v, tEnd)

	p, v = offset(x, h, k, b1, 0, b3, b4, b5, b6)
	k[6] = r.eval(p, v, tEnd)

	dr, dv := weightedSum(k, e1, 0, e3, e4, e5, e6, e7)
	errs := [6]float64{
		h * dr.X, h * dr.Y, h * dr.Z,
		h * dv.X, h * dv.Y, h * dv.Z,
	}
	return dynamo.State{Pos: p, Vel: v}, errs
}

// errorNorm is the RMS of the error components, each scaled by
// atol + rtol*max(|old|, |new|).
func (r *RK45) errorNorm(prev, next dynamo.State, errs [6]float64) float64 {
	old, cur := prev.Components(), next.Components()
	var scaled [6]float64
	for i := range errs {
		sc := r.cfg.AbsTol + r.cfg.RelTol*math.Max(math.Abs(old[i]), math.Abs(cur[i]))
		scaled[i] = scaleBy(errs[i], sc)
	}
	return rms(scaled[:])
}

// scaleBy is x/sc, with 0/0 taken as 0: a component that is exactly zero
// on both sides of a step with no absolute tolerance contributes no error.
func scaleBy(x, sc float64) float64 {
	if sc == 0 {
		if x == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return x / sc
}

// initialStep is the Hairer-Nørsett-Wanner first guess 0.01*d0/d1, with d0
// and d1 the scaled norms of the state and its derivative.
func (r *RK45) initialStep(x dynamo.State, f stage) float64 {
	y := x.Components()
	dy := [6]float64{f.dr.X, f.dr.Y, f.dr.Z, f.dv.X, f.dv.Y, f.dv.Z}
	var sy, sdy [6]float64
	for i := range y {
		sc := r.cfg.AbsTol + r.cfg.RelTol*math.Abs(y[i])
		if sc == 0 {
			// no scale for this component yet
			continue
		}
		sy[i] = y[i] / sc
		sdy[i] = dy[i] / sc
	}
	d0, d1 := rms(sy[:]), rms(sdy[:])
	if d0 < negligibleNormHW || d1 < negligibleNormHW {
		return fallbackStep
	}
	return 0.01 * d0 / d1
}

func (r *RK45) clamp(h float64) float64 {
	if math.IsNaN(h) {
		return r.cfg.MinStep
	}
	if r.cfg.MaxStep > 0 && h > r.cfg.MaxStep {
		h = r.cfg.MaxStep
	}
	if h < r.cfg.MinStep {
		h = r.cfg.MinStep
	}
	return h
}

func (r *RK45) eval(pos, vel r3.Vec, t float64) stage {
	dr, dv := r.fm.Derive(pos, vel, t)
	return stage{dr: dr, dv: dv}
}

// offset returns x + h*Σ a_j k_j over the leading stages.
func offset(x dynamo.State, h float64, k *[7]stage, a ...float64) (r3.Vec, r3.Vec) {
	dr, dv := weightedSum(k, a...)
	return r3.Add(x.Pos, r3.Scale(h, dr)), r3.Add(x.Vel, r3.Scale(h, dv))
}

func weightedSum(k *[7]stage, w ...float64) (r3.Vec, r3.Vec) {
	var dr, dv r3.Vec
	for j, wj := range w {
		if wj == 0 {
			continue
		}
		dr = r3.Add(dr, r3.Scale(wj, k[j].dr))
		dv = r3.Add(dv, r3.Scale(wj, k[j].dv))
	}
	return dr, dv
}

func rms(v []float64) float64 {
	return math.Sqrt(floats.Dot(v, v) / float64(len(v)))
}
