package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ddrfluid/internal/dynamo"
	"github.com/san-kum/ddrfluid/internal/fluid"
)

const (
	DefaultScene     = "random"
	DefaultParticles = 100
	DefaultDt        = 1.0 / 60
	DefaultDuration  = 10.0
	DefaultMaxDt     = dynamo.DefaultMaxDt
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Scene       string       `yaml:"scene"`
	Particles   int          `yaml:"particles"`
	Seed        int64        `yaml:"seed"`
	Dt          float64      `yaml:"dt"`
	Duration    float64      `yaml:"duration"`
	MaxDt       float64      `yaml:"max_dt"`
	Policy      string       `yaml:"policy"`
	SampleEvery int          `yaml:"sample_every"`
	Solver      SolverConfig `yaml:"solver"`
}

// SolverConfig is fluid.Params plus the behaviour switches spelled as
// strings. Empty strings select the defaults.
type SolverConfig struct {
	fluid.Params `yaml:",inline"`
	Neighborhood string `yaml:"neighborhood,omitempty"`
	Rebuild      string `yaml:"rebuild,omitempty"`
	Pairs        string `yaml:"pairs,omitempty"`
	Viscosity    string `yaml:"viscosity,omitempty"`
	Walls        string `yaml:"walls,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:       DefaultScene,
		Particles:   DefaultParticles,
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		MaxDt:       DefaultMaxDt,
		Policy:      dynamo.SubStep.String(),
		SampleEvery: 1,
		Solver:      SolverConfig{Params: fluid.DefaultParams()},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Scene == "":
		return fmt.Errorf("%w: scene is required", ErrInvalidConfig)
	case c.Particles < 0:
		return fmt.Errorf("%w: particles must not be negative, got %d", ErrInvalidConfig, c.Particles)
	case !(c.Dt > 0) || math.IsInf(c.Dt, 0):
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	case !(c.Duration > 0) || math.IsInf(c.Duration, 0):
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Duration)
	case c.SampleEvery < 0:
		return fmt.Errorf("%w: sample_every must not be negative", ErrInvalidConfig)
	}

	policy, err := dynamo.ParsePolicy(c.Policy)
	if err != nil {
		return err
	}
	if policy == dynamo.SubStep && !(c.MaxDt > 0) {
		return fmt.Errorf("%w: max_dt must be positive for sub-stepping, got %g", ErrInvalidConfig, c.MaxDt)
	}

	_, err = c.SolverParams()
	return err
}

// SolverParams resolves the solver block into validated fluid.Params.
func (c *Config) SolverParams() (fluid.Params, error) {
	p := c.Solver.Params
	var err error
	if p.Options.Neighborhood, err = fluid.ParseNeighborhood(c.Solver.Neighborhood); err != nil {
		return p, err
	}
	if p.Options.Rebuild, err = fluid.ParseRebuildPolicy(c.Solver.Rebuild); err != nil {
		return p, err
	}
	if p.Options.Pairs, err = fluid.ParsePairPolicy(c.Solver.Pairs); err != nil {
		return p, err
	}
	if p.Options.Viscosity, err = fluid.ParseViscosityPolicy(c.Solver.Viscosity); err != nil {
		return p, err
	}
	if p.Options.Walls, err = fluid.ParseWallPolicy(c.Solver.Walls); err != nil {
		return p, err
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func (c *Config) DriverConfig() (dynamo.Config, error) {
	policy, err := dynamo.ParsePolicy(c.Policy)
	if err != nil {
		return dynamo.Config{}, err
	}
	return dynamo.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		MaxDt:         c.MaxDt,
		Policy:        policy,
		Seed:          c.Seed,
		ValidateState: true,
		SampleEvery:   c.SampleEvery,
	}, nil
}

// UseReferenceOptions switches every solver policy to the reference
// behaviour.
func (c *Config) UseReferenceOptions() {
	o := fluid.ReferenceParams().Options
	c.Solver.Neighborhood = o.Neighborhood.String()
	c.Solver.Rebuild = o.Rebuild.String()
	c.Solver.Pairs = o.Pairs.String()
	c.Solver.Viscosity = o.Viscosity.String()
	c.Solver.Walls = o.Walls.String()
}
