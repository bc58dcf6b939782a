package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/san-kum/trajprop/internal/dynamo"
	"github.com/san-kum/trajprop/internal/integrators"
	"github.com/san-kum/trajprop/internal/models"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBody       = "earth"
	DefaultIntegrator = "rk4"
	DefaultStep       = 10.0
	DefaultPeriods    = 1.0
)

// Config is a propagation scenario as written in YAML.
type Config struct {
	Name       string          `yaml:"name"`
	Body       string          `yaml:"body,omitempty"`
	Mu         float64         `yaml:"mu,omitempty"`
	Integrator string          `yaml:"integrator"`
	Orbit      OrbitConfig     `yaml:"orbit"`
	Duration   float64         `yaml:"duration,omitempty"`
	Periods    float64         `yaml:"periods,omitempty"`
	Step       float64         `yaml:"step,omitempty"`
	Thrust     ThrustConfig    `yaml:"thrust,omitempty"`
	Tolerance  ToleranceConfig `yaml:"tolerance,omitempty"`
	FinalOnly  bool            `yaml:"final_only,omitempty"`
}

// OrbitConfig selects the initial state. Explicit r/v wins, then a/e at
// periapsis, then a circular orbit (or a transfer departure) at radius.
type OrbitConfig struct {
	Radius       float64   `yaml:"radius,omitempty"`
	SemiMajor    float64   `yaml:"a,omitempty"`
	Eccentricity float64   `yaml:"e,omitempty"`
	Position     []float64 `yaml:"r,omitempty,flow"`
	Velocity     []float64 `yaml:"v,omitempty,flow"`
	TransferTo   float64   `yaml:"transfer_to,omitempty"`
	Speed        float64   `yaml:"speed,omitempty"`
}

// ThrustConfig describes the thrust profile. A brachistochrone with no
// accel derives it from distance and the scenario duration; a zero flip
// time means mid-transfer.
type ThrustConfig struct {
	Kind     string  `yaml:"kind,omitempty"`
	Accel    float64 `yaml:"accel,omitempty"`
	FlipTime float64 `yaml:"flip_time,omitempty"`
	Distance float64 `yaml:"distance,omitempty"`
}

// ToleranceConfig overrides the adaptive preset field by field.
type ToleranceConfig struct {
	Preset      string  `yaml:"preset,omitempty"`
	RelTol      float64 `yaml:"rtol,omitempty"`
	AbsTol      float64 `yaml:"atol,omitempty"`
	InitialStep float64 `yaml:"initial_step,omitempty"`
	MinStep     float64 `yaml:"min_step,omitempty"`
	MaxStep     float64 `yaml:"max_step,omitempty"`
	MaxSteps    int     `yaml:"max_steps,omitempty"`
}

// Scenario is a validated Config resolved into propagation inputs.
type Scenario struct {
	Name       string
	Integrator string
	Mu         float64
	Initial    dynamo.State
	Duration   float64
	Thrust     dynamo.Thrust
	Fixed      integrators.FixedConfig
	Adaptive   integrators.AdaptiveConfig
	FinalOnly  bool
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "default",
		Body:       DefaultBody,
		Integrator: DefaultIntegrator,
		Orbit:      OrbitConfig{Radius: 6778},
		Periods:    DefaultPeriods,
		Step:       DefaultStep,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Orbit.Position = append([]float64(nil), c.Orbit.Position...)
	cp.Orbit.Velocity = append([]float64(nil), c.Orbit.Velocity...)
	return &cp
}

// GravParam resolves mu from the explicit value or the body name.
func (c *Config) GravParam() (float64, error) {
	if c.Mu != 0 {
		return c.Mu, nil
	}
	body, err := models.LookupBody(c.Body)
	if err != nil {
		return 0, err
	}
	return body.Mu, nil
}

func (c *Config) Validate() error {
	mu, err := c.GravParam()
	if err != nil {
		return err
	}
	if mu <= 0 || math.IsNaN(mu) || math.IsInf(mu, 0) {
		return fmt.Errorf("%w: mu must be positive, got %g", dynamo.ErrParameterBounds, mu)
	}
	if c.Duration < 0 || c.Periods < 0 {
		return fmt.Errorf("%w: duration and periods must not be negative", dynamo.ErrParameterBounds)
	}
	if c.Duration == 0 && c.Periods == 0 {
		return fmt.Errorf("%w: one of duration or periods is required", dynamo.ErrParameterBounds)
	}
	if c.Integrator != "rk45" && c.Step <= 0 {
		return fmt.Errorf("%w: %s needs a positive step, got %g", dynamo.ErrParameterBounds, c.Integrator, c.Step)
	}
	if err := c.Orbit.validate(); err != nil {
		return err
	}
	if err := c.Thrust.validate(); err != nil {
		return err
	}
	return c.Tolerance.validate()
}

func (o OrbitConfig) validate() error {
	switch {
	case len(o.Position) > 0 || len(o.Velocity) > 0:
		if len(o.Position) != 3 || len(o.Velocity) != 3 {
			return fmt.Errorf("%w: orbit r and v need three components each", dynamo.ErrParameterBounds)
		}
	case o.SemiMajor != 0:
		if o.SemiMajor < 0 || o.Eccentricity < 0 || o.Eccentricity >= 1 {
			return fmt.Errorf("%w: need a > 0 and 0 <= e < 1, got a=%g e=%g",
				dynamo.ErrParameterBounds, o.SemiMajor, o.Eccentricity)
		}
	case o.Radius <= 0:
		return fmt.Errorf("%w: orbit needs radius, a/e or r/v", dynamo.ErrParameterBounds)
	case o.TransferTo < 0 || o.Speed < 0:
		return fmt.Errorf("%w: transfer target and speed must not be negative", dynamo.ErrParameterBounds)
	}
	return nil
}

func (t ThrustConfig) validate() error {
	kind, err := dynamo.ParseThrustKind(t.Kind)
	if err != nil {
		return err
	}
	if t.Accel < 0 || t.Distance < 0 || t.FlipTime < 0 {
		return fmt.Errorf("%w: thrust values must not be negative", dynamo.ErrParameterBounds)
	}
	if kind == dynamo.ThrustPrograde && t.Accel == 0 {
		return fmt.Errorf("%w: prograde thrust needs accel", dynamo.ErrParameterBounds)
	}
	if kind == dynamo.ThrustBrachistochrone && t.Accel == 0 && t.Distance == 0 {
		return fmt.Errorf("%w: brachistochrone needs accel or distance", dynamo.ErrParameterBounds)
	}
	return nil
}

func (t ToleranceConfig) validate() error {
	switch strings.ToLower(t.Preset) {
	case "", "near-body", "planetocentric", "heliocentric":
	default:
		return fmt.Errorf("%w: tolerance preset %q", dynamo.ErrUnknownPreset, t.Preset)
	}
	if t.RelTol < 0 || t.AbsTol < 0 || t.MinStep < 0 || t.MaxStep < 0 || t.InitialStep < 0 {
		return fmt.Errorf("%w: tolerances must not be negative", dynamo.ErrParameterBounds)
	}
	if t.MaxStep > 0 && t.MinStep > t.MaxStep {
		return fmt.Errorf("%w: min_step %g above max_step %g", dynamo.ErrParameterBounds, t.MinStep, t.MaxStep)
	}
	return nil
}

// Resolve validates the config and builds the propagation inputs.
func (c *Config) Resolve() (*Scenario, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", c.Name, err)
	}
	mu, _ := c.GravParam()

	x0 := c.Orbit.initialState(mu)
	duration := c.Duration
	if duration == 0 {
		period, err := referencePeriod(mu, x0)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", c.Name, err)
		}
		duration = c.Periods * period
	}

	thrust := c.Thrust.build(duration)

	return &Scenario{
		Name:       c.Name,
		Integrator: c.Integrator,
		Mu:         mu,
		Initial:    x0,
		Duration:   duration,
		Thrust:     thrust,
		Fixed:      integrators.FixedConfig{Step: c.Step, Mu: mu, Thrust: thrust},
		Adaptive:   c.Tolerance.adaptive(mu, thrust, c.Body),
		FinalOnly:  c.FinalOnly,
	}, nil
}

func (o OrbitConfig) initialState(mu float64) dynamo.State {
	switch {
	case len(o.Position) == 3:
		return dynamo.NewState(vec(o.Position), vec(o.Velocity))
	case o.SemiMajor > 0:
		return models.EllipticalAtPeriapsis(mu, o.SemiMajor, o.Eccentricity)
	case o.TransferTo > 0:
		return models.TransferDeparture(mu, o.Radius, o.TransferTo, o.Speed)
	default:
		return models.CircularOrbit(mu, o.Radius)
	}
}

// referencePeriod is the period of the osculating ellipse of x.
func referencePeriod(mu float64, x dynamo.State) (float64, error) {
	energy := 0.5*x.Speed()*x.Speed() - mu/x.Radius()
	if !(energy < 0) {
		return 0, fmt.Errorf("%w: periods need a bound orbit, use duration", dynamo.ErrParameterBounds)
	}
	return models.OrbitalPeriod(mu, -mu/(2*energy)), nil
}

func (t ThrustConfig) build(duration float64) dynamo.Thrust {
	kind, _ := dynamo.ParseThrustKind(t.Kind)
	switch kind {
	case dynamo.ThrustPrograde:
		return dynamo.ConstantPrograde(t.Accel)
	case dynamo.ThrustBrachistochrone:
		accel := t.Accel
		if accel == 0 {
			accel = models.BrachistochroneAccel(t.Distance, duration)
		}
		flip := t.FlipTime
		if flip == 0 {
			flip = duration / 2
		}
		return dynamo.Brachistochrone(accel, flip)
	default:
		return dynamo.NoThrust()
	}
}

func (t ToleranceConfig) adaptive(mu float64, thrust dynamo.Thrust, body string) integrators.AdaptiveConfig {
	preset := strings.ToLower(t.Preset)
	if preset == "" && strings.EqualFold(body, "sun") {
		preset = "heliocentric"
	}

	var cfg integrators.AdaptiveConfig
	if preset == "heliocentric" {
		cfg = integrators.Heliocentric(mu, thrust)
	} else {
		cfg = integrators.NearBody(mu, thrust)
	}

	if t.RelTol > 0 {
		cfg.RelTol = t.RelTol
	}
	if t.AbsTol > 0 {
		cfg.AbsTol = t.AbsTol
	}
	if t.InitialStep > 0 {
		cfg.InitialStep = t.InitialStep
	}
	if t.MinStep > 0 {
		cfg.MinStep = t.MinStep
	}
	if t.MaxStep > 0 {
		cfg.MaxStep = t.MaxStep
	}
	if t.MaxSteps > 0 {
		cfg.MaxSteps = t.MaxSteps
	}
	return cfg
}

func vec(c []float64) r3.Vec {
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}
}
