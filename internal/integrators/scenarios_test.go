package integrators_test

import (
	"github.com/san-kum/trajprop/internal/dynamo"
	"github.com/san-kum/trajprop/internal/integrators"
	"github.com/san-kum/trajprop/internal/metrics"
	"github.com/san-kum/trajprop/internal/models"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func finalDrift(x0, final dynamo.State, mu float64) float64 {
	_, drift := metrics.EnergyDrift([]dynamo.State{x0, final}, mu)
	return drift
}

var _ = Describe("Long-horizon scenarios", func() {
	Context("circular low Earth orbit", func() {
		var (
			x0     dynamo.State
			period float64
		)

		BeforeEach(func() {
			x0 = models.CircularOrbit(models.MuEarth, 6778)
			period = models.OrbitalPeriod(models.MuEarth, 6778)
		})

		It("starts at the documented circular speed", func() {
			Expect(x0.Speed()).To(BeNumerically("~", models.CircularSpeed(models.MuEarth, 6778), 1e-12))
			Expect(x0.Speed()).To(BeNumerically("~", 7.6688, 5e-4))
		})

		It("keeps RK4 energy drift below 1e-8 over 100 periods at a 10 s step", func() {
			rk4 := integrators.NewRK4(integrators.FixedConfig{Step: 10, Mu: models.MuEarth})
			final := rk4.PropagateFinal(x0, 100*period)

			Expect(finalDrift(x0, final, models.MuEarth)).To(BeNumerically("<", 1e-8))
		})

		It("returns RK45 to the start within 1e-8 after one period at tight tolerance", func() {
			cfg := integrators.NearBody(models.MuEarth, dynamo.NoThrust())
			cfg.RelTol, cfg.AbsTol = 1e-12, 1e-14
			final, _ := integrators.NewRK45(cfg).PropagateFinal(x0, period)

			pos, _ := metrics.RelativeStateError(final, x0)
			Expect(pos).To(BeNumerically("<", 1e-8))
		})

		It("spirals outward under continuous prograde thrust", func() {
			cfg := integrators.NearBody(models.MuEarth, dynamo.ConstantPrograde(1e-6))
			res := integrators.NewRK45(cfg).Propagate(x0, 20*period)

			radius := metrics.NewRadiusExtrema()
			for _, s := range res.States {
				radius.Observe(s)
			}
			Expect(radius.Value()).To(BeNumerically("~", 6778, 1e-6))
			Expect(res.Final().Radius()).To(BeNumerically(">", 6778))
			Expect(radius.Max()).To(BeNumerically("~", res.Final().Radius(), 5))
		})
	})

	Context("EP01 brachistochrone from Mars orbit", func() {
		var (
			x0     dynamo.State
			thrust dynamo.Thrust
		)

		BeforeEach(func() {
			x0, thrust = models.EP01Departure()
		})

		It("agrees between RK4 and RK45 on the final position", func() {
			rk4 := integrators.NewRK4(integrators.FixedConfig{Step: 60, Mu: models.MuSun, Thrust: thrust})
			rk45 := integrators.NewRK45(integrators.Heliocentric(models.MuSun, thrust))

			fixed := rk4.PropagateFinal(x0, models.EP01Duration)
			adaptive, _ := rk45.PropagateFinal(x0, models.EP01Duration)

			Expect(metrics.PositionError(fixed, adaptive) / models.EP01Distance).To(BeNumerically("<", 1e-3))
		})

		It("agrees on the peak speed at the flip", func() {
			flip, _ := thrust.Event()
			rk4 := integrators.NewRK4(integrators.FixedConfig{Step: 60, Mu: models.MuSun, Thrust: thrust})
			rk45 := integrators.NewRK45(integrators.Heliocentric(models.MuSun, thrust))

			fixed := rk4.PropagateFinal(x0, flip)
			adaptive, _ := rk45.PropagateFinal(x0, flip)

			avg := (fixed.Speed() + adaptive.Speed()) / 2
			Expect((fixed.Speed() - adaptive.Speed()) / avg).To(BeNumerically("~", 0, 5e-4))
		})

		It("travels the transfer distance and ends near Jupiter's orbit", func() {
			res := integrators.NewRK45(integrators.Heliocentric(models.MuSun, thrust)).Propagate(x0, models.EP01Duration)
			final := res.Final()

			travelled := metrics.PositionError(final, x0) / models.EP01Distance
			Expect(travelled).To(And(BeNumerically(">", 0.5), BeNumerically("<", 2)))
			Expect(final.Radius() / models.OrbitJupiter).To(And(BeNumerically(">", 0.3), BeNumerically("<", 3)))

			dv := metrics.NewDeltaV(thrust)
			for _, s := range res.States {
				dv.Observe(s)
			}
			Expect(dv.Value()).To(BeNumerically("~", thrust.Accel()*models.EP01Duration, 1e-6))
		})
	})

	Context("EP02 coast from Jupiter to Saturn", func() {
		var x0 dynamo.State

		BeforeEach(func() {
			x0 = models.EP02Departure()
		})

		It("reaches Saturn's neighbourhood with every integrator", func() {
			fixed := integrators.FixedConfig{Step: 3600, Mu: models.MuSun}
			rk4 := integrators.NewRK4(fixed).PropagateFinal(x0, models.EP02Duration)
			rk45, _ := integrators.NewRK45(integrators.Heliocentric(models.MuSun, dynamo.NoThrust())).PropagateFinal(x0, models.EP02Duration)
			verlet := integrators.NewVerlet(fixed).PropagateFinal(x0, models.EP02Duration)

			for name, final := range map[string]dynamo.State{"rk4": rk4, "rk45": rk45, "verlet": verlet} {
				ratio := final.Radius() / models.OrbitSaturn
				Expect(ratio).To(And(BeNumerically(">", 0.5), BeNumerically("<", 2)), name)
				Expect(finalDrift(x0, final, models.MuSun)).To(BeNumerically("<", 1e-8), name)
			}

			Expect(metrics.PositionError(rk4, rk45) / models.OrbitSaturn).To(BeNumerically("<", 0.01))
			Expect(metrics.PositionError(rk4, verlet) / models.OrbitSaturn).To(BeNumerically("<", 0.05))
		})

		It("matches the vis-viva speed on arrival", func() {
			final, _ := integrators.NewRK45(integrators.Heliocentric(models.MuSun, dynamo.NoThrust())).PropagateFinal(x0, models.EP02Duration)

			e0 := metrics.SpecificEnergy(x0, models.MuSun)
			visViva := 2 * (e0 + models.MuSun/final.Radius())
			Expect(final.Speed() * final.Speed() / visViva).To(BeNumerically("~", 1, 1e-6))
		})
	})

	Context("EP03 brachistochrone from Saturn to Uranus", func() {
		var (
			x0     dynamo.State
			thrust dynamo.Thrust
		)

		BeforeEach(func() {
			x0, thrust = models.EP03Departure()
		})

		It("agrees between RK4 and RK45 and arrives near Uranus", func() {
			rk4 := integrators.NewRK4(integrators.FixedConfig{Step: 60, Mu: models.MuSun, Thrust: thrust})
			rk45 := integrators.NewRK45(integrators.Heliocentric(models.MuSun, thrust))

			fixed := rk4.PropagateFinal(x0, models.EP03Duration)
			adaptive, _ := rk45.PropagateFinal(x0, models.EP03Duration)

			Expect(metrics.PositionError(fixed, adaptive) / models.EP03Distance).To(BeNumerically("<", 1e-3))
			Expect(fixed.Speed() - adaptive.Speed()).To(BeNumerically("~", 0, 10))
			for name, final := range map[string]dynamo.State{"rk4": fixed, "rk45": adaptive} {
				Expect(final.Radius() / models.OrbitUranus).To(And(BeNumerically(">", 0.5), BeNumerically("<", 2)), name)
			}
		})

		It("agrees to within 100,000 km at the flip", func() {
			flip, _ := thrust.Event()
			fixed := integrators.NewRK4(integrators.FixedConfig{Step: 60, Mu: models.MuSun, Thrust: thrust}).PropagateFinal(x0, flip)
			adaptive, _ := integrators.NewRK45(integrators.Heliocentric(models.MuSun, thrust)).PropagateFinal(x0, flip)

			Expect(metrics.PositionError(fixed, adaptive)).To(BeNumerically("<", 100_000))
		})
	})

	Context("EP05 deceleration burn inbound from 3 AU", func() {
		var (
			x0     dynamo.State
			thrust dynamo.Thrust
		)

		BeforeEach(func() {
			x0, thrust = models.EP05DecelerationBurn()
		})

		It("agrees between RK4 and RK45 over the burn", func() {
			fixed := integrators.NewRK4(integrators.FixedConfig{Step: 10, Mu: models.MuSun, Thrust: thrust}).PropagateFinal(x0, models.EP05BurnDuration)
			adaptive, _ := integrators.NewRK45(integrators.Heliocentric(models.MuSun, thrust)).PropagateFinal(x0, models.EP05BurnDuration)

			scale := models.EP05CruiseSpeed * models.EP05BurnDuration
			Expect(metrics.PositionError(fixed, adaptive) / scale).To(BeNumerically("<", 1e-2))
			Expect(fixed.Speed() - adaptive.Speed()).To(BeNumerically("~", 0, 50))
		})

		It("peaks at the flip and brakes back to cruise speed", func() {
			res := integrators.NewRK45(integrators.Heliocentric(models.MuSun, thrust)).Propagate(x0, models.EP05BurnDuration)
			flip, _ := thrust.Event()

			var atFlip dynamo.State
			peak := 0.0
			for _, s := range res.States {
				if s.Time == flip {
					atFlip = s
				}
				peak = max(peak, s.Speed())
			}
			Expect(atFlip.Time).To(Equal(flip))
			Expect(atFlip.Speed()).To(Equal(peak))
			Expect(peak).To(BeNumerically("~", models.EP05CruiseSpeed+models.EP05DeltaV/2, 50))
			Expect(res.Final().Speed() / models.EP05CruiseSpeed).To(BeNumerically("~", 1, 0.02))
		})
	})
})
