package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/san-kum/trajprop/internal/config"
	"github.com/san-kum/trajprop/internal/experiment"
	"gopkg.in/yaml.v3"
)

// Batch is a scripted sequence of scenario runs.
type Batch struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Runs        []BatchRun `yaml:"runs"`
}

// BatchRun starts from a preset (or the default scenario) and applies the
// fields given under scenario on top of it.
type BatchRun struct {
	Preset      string    `yaml:"preset,omitempty"`
	Scenario    yaml.Node `yaml:"scenario,omitempty"`
	Integrators []string  `yaml:"integrators,omitempty"`
}

func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}

	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse batch %s: %w", path, err)
	}
	return &b, nil
}

// Config resolves the run's scenario config.
func (r *BatchRun) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if r.Preset != "" {
		var err error
		if cfg, err = config.GetPreset(r.Preset); err != nil {
			return nil, err
		}
	}
	if !r.Scenario.IsZero() {
		if err := r.Scenario.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode scenario: %w", err)
		}
	}
	return cfg, nil
}

// Size is the number of experiments the batch runs.
func (b *Batch) Size() int {
	n := 0
	for _, r := range b.Runs {
		n += max(1, len(r.Integrators))
	}
	return n
}

// RunBatch executes every run in order, once per listed integrator, and
// stops at the first error. onResult, if not nil, sees each result as it
// finishes.
func RunBatch(ctx context.Context, b *Batch, reg *experiment.Registry, logger log.Logger, onResult func(*experiment.Result)) ([]*experiment.Result, error) {
	var results []*experiment.Result

	for i := range b.Runs {
		run := &b.Runs[i]
		cfg, err := run.Config()
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}
		sc, err := cfg.Resolve()
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}

		names := run.Integrators
		if len(names) == 0 {
			names = []string{sc.Integrator}
		}
		for _, name := range names {
			level.Info(logger).Log("msg", "batch run", "n", i+1, "of", len(b.Runs), "scenario", sc.Name, "integrator", name)

			exp, err := experiment.New(sc, reg, name)
			if err != nil {
				return results, fmt.Errorf("run %d: %w", i+1, err)
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return results, fmt.Errorf("run %d (%s): %w", i+1, name, err)
			}
			results = append(results, res)
			if onResult != nil {
				onResult(res)
			}
		}
	}

	return results, nil
}
