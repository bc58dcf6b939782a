package metrics

import (
	"github.com/san-kum/trajprop/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// DeltaV accumulates the thrust Δv spent between observed states, using
// the thrust magnitude at the start of each interval.
type DeltaV struct {
	name    string
	thrust  dynamo.Thrust
	total   float64
	prev    dynamo.State
	samples int
}

func NewDeltaV(thrust dynamo.Thrust) *DeltaV {
	return &DeltaV{
		name:   "delta_v",
		thrust: thrust,
	}
}

func (d *DeltaV) Name() string {
	return d.name
}

func (d *DeltaV) Observe(s dynamo.State) {
	if d.samples > 0 {
		a := d.thrust.Acceleration(d.prev.Vel, d.prev.Time)
		d.total += r3.Norm(a) * (s.Time - d.prev.Time)
	}
	d.prev = s
	d.samples++
}

func (d *DeltaV) Value() float64 {
	return d.total
}

func (d *DeltaV) Reset() {
	d.total = 0
	d.prev = dynamo.State{}
	d.samples = 0
}
