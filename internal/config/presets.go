package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/trajprop/internal/dynamo"
	"github.com/san-kum/trajprop/internal/models"
)

var Presets = map[string]*Config{
	"leo": {
		Name: "leo", Body: "earth", Integrator: "rk4", Step: 10, Periods: 100,
		Orbit: OrbitConfig{Radius: 6778},
	},
	"leo-adaptive": {
		Name: "leo-adaptive", Body: "earth", Integrator: "rk45", Periods: 1,
		Orbit:     OrbitConfig{Radius: 6778},
		Tolerance: ToleranceConfig{RelTol: 1e-12, AbsTol: 1e-14},
	},
	"leo-spiral": {
		Name: "leo-spiral", Body: "earth", Integrator: "rk45", Periods: 20,
		Orbit:  OrbitConfig{Radius: 6778},
		Thrust: ThrustConfig{Kind: "prograde", Accel: 1e-6},
	},
	"molniya": {
		Name: "molniya", Body: "earth", Integrator: "rk45", Periods: 3,
		Orbit: OrbitConfig{SemiMajor: 26600, Eccentricity: 0.74},
	},
	"eccentric-0.9": {
		Name: "eccentric-0.9", Body: "earth", Integrator: "rk45", Periods: 1,
		Orbit:     OrbitConfig{SemiMajor: 60000, Eccentricity: 0.9},
		Tolerance: ToleranceConfig{RelTol: 1e-12, AbsTol: 1e-14},
	},
	"heliocentric-earth": {
		Name: "heliocentric-earth", Body: "sun", Integrator: "rk45", Periods: 1,
		Orbit:     OrbitConfig{Radius: models.OrbitEarth},
		Tolerance: ToleranceConfig{Preset: "heliocentric"},
	},
	"ep01-brachistochrone": {
		Name: "ep01-brachistochrone", Body: "sun", Integrator: "rk45", Step: 60,
		Duration:  models.EP01Duration,
		Orbit:     OrbitConfig{Radius: models.OrbitMars},
		Thrust:    ThrustConfig{Kind: "brachistochrone", Distance: models.EP01Distance},
		Tolerance: ToleranceConfig{Preset: "heliocentric"},
	},
	"ep02-coast": {
		Name: "ep02-coast", Body: "sun", Integrator: "rk45", Step: 3600,
		Duration: models.EP02Duration,
		Orbit: OrbitConfig{
			Radius:     models.OrbitJupiter,
			TransferTo: models.OrbitSaturn,
			Speed:      models.EP02DepartureSpeed,
		},
		Tolerance: ToleranceConfig{Preset: "heliocentric"},
	},
	"ep03-brachistochrone": {
		Name: "ep03-brachistochrone", Body: "sun", Integrator: "rk45", Step: 60,
		Duration:  models.EP03Duration,
		Orbit:     OrbitConfig{Radius: models.OrbitSaturn},
		Thrust:    ThrustConfig{Kind: "brachistochrone", Distance: models.EP03Distance},
		Tolerance: ToleranceConfig{Preset: "heliocentric"},
	},
	"ep05-deceleration": {
		Name: "ep05-deceleration", Body: "sun", Integrator: "rk45", Step: 10,
		Duration: models.EP05BurnDuration,
		Orbit: OrbitConfig{
			Position: []float64{models.EP05StartRadius, 0, 0},
			Velocity: []float64{-models.EP05CruiseSpeed, 0, 0},
		},
		Thrust:    ThrustConfig{Kind: "brachistochrone", Accel: models.EP05DeltaV / models.EP05BurnDuration},
		Tolerance: ToleranceConfig{Preset: "heliocentric"},
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Config, error) {
	cfg, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownPreset, name)
	}
	return cfg.Clone(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
