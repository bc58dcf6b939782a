package integrators

import (
	"github.com/san-kum/trajprop/internal/dynamo"
	"github.com/san-kum/trajprop/internal/metrics"
	"github.com/san-kum/trajprop/internal/models"
)

const leoRadius = 6778.0

func leoState() dynamo.State {
	return models.CircularOrbit(models.MuEarth, leoRadius)
}

func leoPeriod() float64 {
	return models.OrbitalPeriod(models.MuEarth, leoRadius)
}

func coast(step float64) FixedConfig {
	return FixedConfig{Step: step, Mu: models.MuEarth, Thrust: dynamo.NoThrust()}
}

func tightLEO() AdaptiveConfig {
	cfg := NearBody(models.MuEarth, dynamo.NoThrust())
	cfg.RelTol = 1e-12
	cfg.AbsTol = 1e-14
	return cfg
}

// periodError is the relative position error after returning to x0.
func periodError(final, x0 dynamo.State) float64 {
	pos, _ := metrics.RelativeStateError(final, x0)
	return pos
}
