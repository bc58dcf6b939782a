package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/trajprop/internal/dynamo"
	"github.com/san-kum/trajprop/internal/metrics"
	"github.com/san-kum/trajprop/internal/models"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRK4_StepCount(t *testing.T) {
	integ := NewRK4(coast(10))
	x0 := leoState()

	states := integ.Propagate(x0, 95)

	if len(states) != 11 {
		t.Fatalf("expected 11 states, got %d", len(states))
	}
	if states[0] != x0 {
		t.Error("first state should be the initial state")
	}
	if states[len(states)-1].Time != 95 {
		t.Errorf("final time = %v, want 95 (last step shortened)", states[len(states)-1].Time)
	}
	for i := 1; i < len(states); i++ {
		if states[i].Time <= states[i-1].Time {
			t.Fatalf("time not increasing at %d: %v -> %v", i, states[i-1].Time, states[i].Time)
		}
	}
}

func TestRK4_NonZeroStartTime(t *testing.T) {
	integ := NewRK4(coast(7))
	x0 := leoState()
	x0.Time = 1000

	final := integ.PropagateFinal(x0, 50)
	if math.Abs(final.Time-1050) > 1e-9 {
		t.Errorf("final time = %v, want 1050", final.Time)
	}
}

func TestRK4_ZeroDuration(t *testing.T) {
	integ := NewRK4(coast(10))
	x0 := leoState()

	states := integ.Propagate(x0, 0)
	if len(states) != 1 || states[0] != x0 {
		t.Errorf("expected only the initial state, got %d states", len(states))
	}
	if integ.PropagateFinal(x0, 0) != x0 {
		t.Error("PropagateFinal with zero duration should return the initial state")
	}
}

func TestRK4_FinalMatchesTrajectory(t *testing.T) {
	thrusts := map[string]dynamo.Thrust{
		"coast":           dynamo.NoThrust(),
		"prograde":        dynamo.ConstantPrograde(1e-5),
		"brachistochrone": dynamo.Brachistochrone(1e-5, 1234.5),
	}

	for name, th := range thrusts {
		t.Run(name, func(t *testing.T) {
			integ := NewRK4(FixedConfig{Step: 10, Mu: models.MuEarth, Thrust: th})
			states := integ.Propagate(leoState(), 3000)
			final := integ.PropagateFinal(leoState(), 3000)

			if final != states[len(states)-1] {
				t.Errorf("final-only %v differs from trajectory end %v", final, states[len(states)-1])
			}
		})
	}
}

func TestRK4_EnergyConservationCircular(t *testing.T) {
	integ := NewRK4(coast(1))
	states := integ.Propagate(leoState(), leoPeriod())

	maxErr, finalErr := metrics.EnergyDrift(states, models.MuEarth)
	if maxErr > 1e-10 {
		t.Errorf("max energy drift %e exceeds 1e-10", maxErr)
	}
	if finalErr > 1e-10 {
		t.Errorf("final energy drift %e exceeds 1e-10", finalErr)
	}
}

func TestRK4_AngularMomentumConservation(t *testing.T) {
	integ := NewRK4(coast(1))
	states := integ.Propagate(leoState(), leoPeriod())

	h0 := r3.Norm(metrics.AngularMomentum(states[0]))
	for i, s := range states {
		h := r3.Norm(metrics.AngularMomentum(s))
		if rel := math.Abs(h-h0) / h0; rel > 1e-10 {
			t.Fatalf("angular momentum drift %e at step %d", rel, i)
		}
	}
}

func TestRK4_Periodicity(t *testing.T) {
	x0 := leoState()
	final := NewRK4(coast(1)).PropagateFinal(x0, leoPeriod())

	pos, vel := metrics.RelativeStateError(final, x0)
	if pos > 1e-8 {
		t.Errorf("position error after one period %e exceeds 1e-8", pos)
	}
	if vel > 1e-8 {
		t.Errorf("velocity error after one period %e exceeds 1e-8", vel)
	}
}

func TestRK4_ConvergenceOrder(t *testing.T) {
	x0 := leoState()
	period := leoPeriod()

	coarse := periodError(NewRK4(coast(60)).PropagateFinal(x0, period), x0)
	fine := periodError(NewRK4(coast(30)).PropagateFinal(x0, period), x0)

	ratio := coarse / fine
	t.Logf("RK4 error dt=60: %e, dt=30: %e, ratio %.2f", coarse, fine, ratio)
	if ratio < 8 {
		t.Errorf("halving the step reduced error only %.2fx, expected >= 8x", ratio)
	}
}

func TestRK4_Deterministic(t *testing.T) {
	integ := NewRK4(FixedConfig{Step: 5, Mu: models.MuEarth, Thrust: dynamo.ConstantPrograde(1e-6)})
	a := integ.PropagateFinal(leoState(), 2000)
	b := integ.PropagateFinal(leoState(), 2000)
	if a != b {
		t.Errorf("identical inputs produced %v and %v", a, b)
	}
}

func TestRK4_ProgradeThrustRaisesOrbit(t *testing.T) {
	accel := 1e-6 // 1 mm/s²
	integ := NewRK4(FixedConfig{Step: 10, Mu: models.MuEarth, Thrust: dynamo.ConstantPrograde(accel)})
	x0 := leoState()
	states := integ.Propagate(x0, 10*leoPeriod())

	prev := metrics.SpecificEnergy(x0, models.MuEarth)
	for i, s := range states[1:] {
		e := metrics.SpecificEnergy(s, models.MuEarth)
		if e <= prev {
			t.Fatalf("energy did not increase at step %d under prograde thrust", i+1)
		}
		prev = e
	}

	final := states[len(states)-1]
	if final.Radius() <= x0.Radius() {
		t.Errorf("expected spiral out, radius %v -> %v", x0.Radius(), final.Radius())
	}
}
