package metrics

import (
	"math"

	"github.com/san-kum/trajprop/internal/dynamo"
)

// RadiusExtrema records the closest and farthest approach to the central
// body. Value reports the closest.
type RadiusExtrema struct {
	name    string
	min     float64
	max     float64
	samples int
}

func NewRadiusExtrema() *RadiusExtrema {
	return &RadiusExtrema{name: "min_radius"}
}

func (r *RadiusExtrema) Name() string {
	return r.name
}

func (r *RadiusExtrema) Observe(s dynamo.State) {
	rad := s.Radius()
	if r.samples == 0 {
		r.min, r.max = rad, rad
	} else {
		r.min = math.Min(r.min, rad)
		r.max = math.Max(r.max, rad)
	}
	r.samples++
}

func (r *RadiusExtrema) Value() float64 {
	return r.min
}

func (r *RadiusExtrema) Max() float64 {
	return r.max
}

func (r *RadiusExtrema) Reset() {
	r.min = 0
	r.max = 0
	r.samples = 0
}
