package main

import (
	"github.com/go-kit/kit/log/level"
	"github.com/san-kum/trajprop/internal/config"
	"github.com/spf13/cobra"
)

// scenarioFlags registers the flags that select and override a scenario.
// Every flag can also be set as TRAJPROP_<NAME>, e.g. TRAJPROP_MAX_STEPS.
func scenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("config", "", "scenario config file (yaml)")
	f.String("preset", "", "scenario preset, see `trajprop presets`")
	f.String("integrator", "", "rk4, rk45 or verlet")
	f.String("body", "", "central body")
	f.Float64("duration", 0, "duration in seconds")
	f.Float64("periods", 0, "duration in orbital periods")
	f.Float64("step", 0, "fixed step in seconds")
	f.Float64("rtol", 0, "adaptive relative tolerance")
	f.Float64("atol", 0, "adaptive absolute tolerance")
	f.Float64("max-step", 0, "adaptive maximum step in seconds")
	f.Int("max-steps", 0, "adaptive trial step limit")
	f.Bool("final-only", false, "keep only the final state")
}

// loadConfig picks the config file, the preset or the default scenario and
// overlays any flag or environment value that was set.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case v.GetString("config") != "":
		cfg, err = config.Load(v.GetString("config"))
	case v.GetString("preset") != "":
		cfg, err = config.GetPreset(v.GetString("preset"))
	default:
		cfg = config.DefaultConfig()
	}
	if err != nil {
		return nil, err
	}

	if v.IsSet("integrator") {
		cfg.Integrator = v.GetString("integrator")
	}
	if v.IsSet("body") {
		cfg.Body = v.GetString("body")
		cfg.Mu = 0
	}
	if v.IsSet("duration") {
		cfg.Duration = v.GetFloat64("duration")
	}
	if v.IsSet("periods") {
		cfg.Periods = v.GetFloat64("periods")
		cfg.Duration = 0
	}
	if v.IsSet("step") {
		cfg.Step = v.GetFloat64("step")
	}
	if v.IsSet("rtol") {
		cfg.Tolerance.RelTol = v.GetFloat64("rtol")
	}
	if v.IsSet("atol") {
		cfg.Tolerance.AbsTol = v.GetFloat64("atol")
	}
	if v.IsSet("max-step") {
		cfg.Tolerance.MaxStep = v.GetFloat64("max-step")
	}
	if v.IsSet("max-steps") {
		cfg.Tolerance.MaxSteps = v.GetInt("max-steps")
	}
	if v.IsSet("final-only") {
		cfg.FinalOnly = v.GetBool("final-only")
	}

	level.Debug(logger).Log("msg", "scenario loaded", "name", cfg.Name, "integrator", cfg.Integrator)
	return cfg, nil
}
