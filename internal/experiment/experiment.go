package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/ddrfluid/internal/config"
	"github.com/san-kum/ddrfluid/internal/dynamo"
	"github.com/san-kum/ddrfluid/internal/fluid"
	"github.com/san-kum/ddrfluid/internal/metrics"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	world     *fluid.World
	simulator *dynamo.Simulator
}

func New(cfg *config.Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{cfg: cfg, registry: registry}
}

// BuildWorld validates cfg and returns a world populated by its scene,
// seeded with seed.
func BuildWorld(cfg *config.Config, registry *Registry, seed int64) (*fluid.World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	params, err := cfg.SolverParams()
	if err != nil {
		return nil, err
	}
	scene, err := registry.GetScene(cfg.Scene)
	if err != nil {
		return nil, err
	}

	w, err := fluid.NewWorld(params)
	if err != nil {
		return nil, err
	}
	if err := scene(w, cfg.Particles, rand.New(rand.NewSource(seed))); err != nil {
		return nil, fmt.Errorf("scene %s: %w", cfg.Scene, err)
	}
	return w, nil
}

// StandardMetrics are attached to every experiment run.
func StandardMetrics(p fluid.Params) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewKineticEnergy(),
		metrics.NewPotentialEnergy(p.Gravity),
		metrics.NewEnergyDrift(p.Gravity),
		metrics.NewMaxSpeed(),
		metrics.NewContainment(p.WorldWidth, p.WorldHeight, p.ParticleRadius),
	}
}

// Setup builds the world and the driver. It may be called again to start
// over from the initial scene.
func (e *Experiment) Setup() error {
	w, err := BuildWorld(e.cfg, e.registry, e.cfg.Seed)
	if err != nil {
		return err
	}

	s := dynamo.New(w)
	for _, m := range StandardMetrics(w.Params()) {
		s.AddMetric(m)
	}
	dc, err := e.cfg.DriverConfig()
	if err != nil {
		return err
	}
	if err := s.SetPolicy(dc.Policy, dc.MaxDt); err != nil {
		return err
	}

	e.world, e.simulator = w, s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	dc, err := e.cfg.DriverConfig()
	if err != nil {
		return nil, err
	}
	return e.simulator.Run(ctx, dc)
}

// Factory builds independent worlds for an ensemble, one per seed.
func (e *Experiment) Factory() dynamo.Factory {
	return func(seed int64) (dynamo.System, []dynamo.Metric, error) {
		w, err := BuildWorld(e.cfg, e.registry, seed)
		if err != nil {
			return nil, nil, err
		}
		return w, StandardMetrics(w.Params()), nil
	}
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) World() *fluid.World { return e.world }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}
