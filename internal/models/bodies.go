package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/trajprop/internal/dynamo"
)

// Gravitational parameters, km³/s² (JPL DE440).
const (
	MuSun     = 1.32712440041e11
	MuMercury = 2.2032e4
	MuVenus   = 3.24859e5
	MuEarth   = 3.986004418e5
	MuMars    = 4.28283714e4
	MuJupiter = 1.266865349e8
	MuSaturn  = 3.793120749e7
	MuUranus  = 5.793939e6
	MuNeptune = 6.836529e6
)

// Mean heliocentric orbit radii, km.
const (
	OrbitMercury = 57_909_050.0
	OrbitVenus   = 108_208_000.0
	OrbitEarth   = 149_597_870.7
	OrbitMars    = 227_939_200.0
	OrbitJupiter = 778_570_000.0
	OrbitSaturn  = 1_433_530_000.0
	OrbitUranus  = 2_867_043_000.0
	OrbitNeptune = 4_514_953_000.0
)

// Reference radii about Earth, km.
const (
	EarthRadius = 6_378.137
	LEORadius   = 6_578.0
	GEORadius   = 42_164.0
)

// Body is a central mass with, for planets, its mean distance from the Sun.
type Body struct {
	Name        string
	Mu          float64
	OrbitRadius float64
}

var bodies = map[string]Body{
	"sun":     {"sun", MuSun, 0},
	"mercury": {"mercury", MuMercury, OrbitMercury},
	"venus":   {"venus", MuVenus, OrbitVenus},
	"earth":   {"earth", MuEarth, OrbitEarth},
	"mars":    {"mars", MuMars, OrbitMars},
	"jupiter": {"jupiter", MuJupiter, OrbitJupiter},
	"saturn":  {"saturn", MuSaturn, OrbitSaturn},
	"uranus":  {"uranus", MuUranus, OrbitUranus},
	"neptune": {"neptune", MuNeptune, OrbitNeptune},
}

// LookupBody finds a body by case-insensitive name.
func LookupBody(name string) (Body, error) {
	b, ok := bodies[strings.ToLower(name)]
	if !ok {
		return Body{}, fmt.Errorf("%w: %q", dynamo.ErrUnknownBody, name)
	}
	return b, nil
}

func ListBodies() []string {
	names := make([]string, 0, len(bodies))
	for name := range bodies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
