package metrics

import (
	"math"

	"github.com/san-kum/trajprop/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Metric observes a trajectory one state at a time.
type Metric interface {
	Name() string
	Observe(s dynamo.State)
	Value() float64
	Reset()
}

// conservedDrift tracks the relative drift of a conserved scalar against
// its first observed value.
type conservedDrift struct {
	name     string
	quantity func(dynamo.State) float64
	initial  float64
	maxDrift float64
	last     float64
	samples  int
}

func (c *conservedDrift) Name() string { return c.name }

func (c *conservedDrift) Observe(s dynamo.State) {
	q := c.quantity(s)
	if c.samples == 0 {
		c.initial = q
	}
	c.samples++

	drift := relativeError(q, c.initial)
	c.last = drift
	c.maxDrift = math.Max(c.maxDrift, drift)
}

// Value is the largest drift seen so far.
func (c *conservedDrift) Value() float64 { return c.maxDrift }

// Final is the drift of the most recent observation.
func (c *conservedDrift) Final() float64 { return c.last }

func (c *conservedDrift) Reset() {
	c.initial = 0
	c.maxDrift = 0
	c.last = 0
	c.samples = 0
}

// EnergyDriftMetric tracks relative specific-energy drift.
type EnergyDriftMetric struct {
	conservedDrift
}

func NewEnergyDrift(mu float64) *EnergyDriftMetric {
	return &EnergyDriftMetric{conservedDrift{
		name:     "energy_drift",
		quantity: func(s dynamo.State) float64 { return SpecificEnergy(s, mu) },
	}}
}

// MomentumDriftMetric tracks relative drift of |r × v|.
type MomentumDriftMetric struct {
	conservedDrift
}

func NewMomentumDrift() *MomentumDriftMetric {
	return &MomentumDriftMetric{conservedDrift{
		name:     "momentum_drift",
		quantity: func(s dynamo.State) float64 { return r3.Norm(AngularMomentum(s)) },
	}}
}
