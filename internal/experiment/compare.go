package experiment

import (
	"context"
	"math"

	"github.com/san-kum/trajprop/internal/config"
	"github.com/san-kum/trajprop/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Difference compares one run's final state against the reference run.
type Difference struct {
	Reference  string
	Integrator string
	Position   float64 // km
	Speed      float64 // km/s
	Radius     float64 // km
}

// Compare runs sc through every named integrator concurrently and measures
// each final state against the first. Results keep the order of names.
func Compare(ctx context.Context, sc *config.Scenario, reg *Registry, names []string) ([]*Result, []Difference, error) {
	exps := make([]*Experiment, len(names))
	for i, name := range names {
		exp, err := New(sc, reg, name)
		if err != nil {
			return nil, nil, err
		}
		exps[i] = exp
	}

	results := make([]*Result, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, exp := range exps {
		g.Go(func() error {
			res, err := exp.Run(ctx)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, nil, err
	}

	var diffs []Difference
	if len(results) == 0 {
		return results, diffs, nil
	}
	ref := results[0]
	for _, res := range results[1:] {
		diffs = append(diffs, Difference{
			Reference:  ref.Integrator,
			Integrator: res.Integrator,
			Position:   metrics.PositionError(ref.Final, res.Final),
			Speed:      math.Abs(ref.Final.Speed() - res.Final.Speed()),
			Radius:     math.Abs(ref.Final.Radius() - res.Final.Radius()),
		})
	}
	return results, diffs, nil
}
