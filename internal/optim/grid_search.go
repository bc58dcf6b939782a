package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/trajprop/internal/config"
	"github.com/san-kum/trajprop/internal/dynamo"
	"github.com/san-kum/trajprop/internal/experiment"
)

// Point is one evaluated grid point.
type Point struct {
	Params      map[string]float64
	Metric      float64
	Evaluations int
}

// GridSearch runs a scenario over every combination of parameter values,
// for work-precision studies of step size and tolerances.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	onPoint    func(Point)
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// OnPoint registers fn to be called after each point is evaluated.
func (g *GridSearch) OnPoint(fn func(Point)) { g.onPoint = fn }

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search returns every point in grid order and the index of the cheapest
// point (fewest force evaluations) whose metric is at most target, or -1.
// A run that diverges scores +Inf instead of failing the search.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
	target float64,
) ([]Point, int, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, -1, fmt.Errorf("%w: %d parameters, %d ranges", dynamo.ErrParameterBounds, len(g.paramNames), len(g.ranges))
	}

	var points []Point
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &points); err != nil {
		return points, -1, err
	}

	best := -1
	for i, p := range points {
		if p.Metric > target {
			continue
		}
		if best < 0 || p.Evaluations < points[best].Evaluations {
			best = i
		}
	}
	return points, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	points *[]Point,
) error {
	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			return err
		}

		result, err := exp.Run(ctx)
		var simErr *dynamo.SimulationError
		var pt Point
		switch {
		case errors.As(err, &simErr):
			pt = Point{Params: current, Metric: math.Inf(1), Evaluations: result.Stats.Evaluations}
		case err != nil:
			return err
		default:
			val, ok := result.Metrics[metricName]
			if !ok {
				return fmt.Errorf("%w: no metric %q", dynamo.ErrParameterBounds, metricName)
			}
			pt = Point{Params: current, Metric: val, Evaluations: result.Stats.Evaluations}
		}

		*points = append(*points, pt)
		if g.onPoint != nil {
			g.onPoint(pt)
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, points); err != nil {
			return err
		}
	}
	return nil
}

// Apply sets the named sweep parameters on cfg.
func Apply(cfg *config.Config, params map[string]float64) error {
	for name, val := range params {
		switch name {
		case "step":
			cfg.Step = val
		case "rtol":
			cfg.Tolerance.RelTol = val
		case "atol":
			cfg.Tolerance.AbsTol = val
		case "max_step":
			cfg.Tolerance.MaxStep = val
		case "accel":
			cfg.Thrust.Accel = val
		default:
			return fmt.Errorf("%w: unknown sweep parameter %q", dynamo.ErrParameterBounds, name)
		}
	}
	return nil
}

// Builder returns a buildExperiment function that applies each point's
// parameters to a copy of base.
func Builder(base *config.Config, reg *experiment.Registry, integrator string) func(map[string]float64) (*experiment.Experiment, error) {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		cfg.FinalOnly = true
		if err := Apply(cfg, params); err != nil {
			return nil, err
		}
		sc, err := cfg.Resolve()
		if err != nil {
			return nil, err
		}
		return experiment.New(sc, reg, integrator)
	}
}
