package fluid

import (
	"fmt"
	"math"
)

// World owns the particles and the neighbour grid and advances them with
// Step.
type World struct {
	params    Params
	particles []Particle
	grid      *Grid
	scratch   scratch
}

// scratch holds per-step buffers sized to the particle count. They are
// reused across steps and never read across steps.
type scratch struct {
	neighbors    []int
	pressure     []float64
	pressureNear []float64
	dPos         []Vec2
	dVel         []Vec2
}

func (s *scratch) resize(n int) {
	if cap(s.pressure) < n {
		s.pressure = make([]float64, n)
		s.pressureNear = make([]float64, n)
		s.dPos = make([]Vec2, n)
		s.dVel = make([]Vec2, n)
	}
	s.pressure = s.pressure[:n]
	s.pressureNear = s.pressureNear[:n]
	s.dPos = s.dPos[:n]
	s.dVel = s.dVel[:n]
}

// New returns an empty world with DefaultParams.
func New() *World {
	w, _ := NewWorld(DefaultParams())
	return w
}

func NewWorld(p Params) (*World, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &World{
		params:    p,
		particles: make([]Particle, 0, 64),
		grid:      NewGrid(p.CellSize),
	}, nil
}

// AddParticle appends a particle at rest.
func (w *World) AddParticle(x, y, mass float64) error {
	if math.IsNaN(mass) || math.IsInf(mass, 0) || mass <= 0 {
		return fmt.Errorf("%w: mass must be positive and finite, got %g", ErrInvalidParticle, mass)
	}
	pos := Vec2{X: x, Y: y}
	if !pos.IsFinite() {
		return fmt.Errorf("%w: position (%g, %g) is not finite", ErrInvalidParticle, x, y)
	}
	w.particles = append(w.particles, Particle{Position: pos, Mass: mass})
	return nil
}

func (w *World) Len() int { return len(w.particles) }

// Particles returns a copy of the particle state in insertion order.
func (w *World) Particles() []ParticleState {
	return w.Snapshot(nil)
}

// Snapshot is Particles reusing dst's storage.
func (w *World) Snapshot(dst []ParticleState) []ParticleState {
	dst = dst[:0]
	for i := range w.particles {
		dst = append(dst, w.particles[i].state())
	}
	return dst
}

// Reset removes all particles. Parameters are kept.
func (w *World) Reset() {
	w.particles = w.particles[:0]
}

func (w *World) Params() Params { return w.params }

// SetParams replaces the solver parameters. The grid is resized if the cell
// size changed; it is rebuilt on the next step either way.
func (w *World) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.CellSize != w.params.CellSize {
		w.grid = NewGrid(p.CellSize)
	}
	w.params = p
	return nil
}

// GetParams returns the live-tunable parameters by name.
func (w *World) GetParams() map[string]float64 {
	out := make(map[string]float64, len(tunables))
	for name, field := range tunables {
		out[name] = *field(&w.params)
	}
	return out
}

// SetParam updates one live-tunable parameter.
func (w *World) SetParam(name string, value float64) error {
	p := w.params
	if err := p.Set(name, value); err != nil {
		return err
	}
	return w.SetParams(p)
}

// Step advances the world by dt. A negative or non-finite dt is rejected
// before any state changes.
func (w *World) Step(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return fmt.Errorf("%w: dt=%g", ErrInvalidStep, dt)
	}
	w.scratch.resize(len(w.particles))

	w.grid.Build(w.particles)
	w.applyGravity()
	w.integrateVelocity(dt)
	w.applyViscosity(dt)
	w.integratePosition(dt)
	if w.params.Options.Rebuild == RebuildPerPass {
		w.grid.Build(w.particles)
	}
	w.doubleDensityRelaxation(dt)
	w.wallCollisions()
	return nil
}

func (w *World) applyGravity() {
	g := w.params.Gravity
	for i := range w.particles {
		p := &w.particles[i]
		p.Force = Vec2{X: 0, Y: -g * p.Mass}
	}
}

func (w *World) integrateVelocity(dt float64) {
	for i := range w.particles {
		p := &w.particles[i]
		p.Velocity = p.Velocity.Add(p.Force.Div(p.Mass).Scale(dt))
	}
}

func (w *World) integratePosition(dt float64) {
	for i := range w.particles {
		p := &w.particles[i]
		p.Position = p.Position.Add(p.Velocity.Scale(dt))
	}
}

// neighbors fills the scratch neighbour list for particle i from the grid.
func (w *World) neighbors(i int) []int {
	w.scratch.neighbors = w.grid.Around(w.grid.CellOf(i), w.params.Options.Neighborhood, w.scratch.neighbors[:0])
	return w.scratch.neighbors
}
