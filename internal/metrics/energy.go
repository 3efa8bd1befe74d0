package metrics

import (
	"math"

	"github.com/san-kum/ddrfluid/internal/dynamo"
	"github.com/san-kum/ddrfluid/internal/fluid"
)

// Kinetic returns Σ ½mv² over the particles.
func Kinetic(particles []fluid.ParticleState) float64 {
	var e float64
	for _, p := range particles {
		e += 0.5 * p.Mass * p.Velocity.Dot(p.Velocity)
	}
	return e
}

// Potential returns Σ m·g·y, measured from the floor.
func Potential(particles []fluid.ParticleState, gravity float64) float64 {
	var e float64
	for _, p := range particles {
		e += p.Mass * gravity * p.Position.Y
	}
	return e
}

// KineticEnergy reports the mean kinetic energy over observed frames.
type KineticEnergy struct {
	name    string
	last    float64
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(f dynamo.Frame) {
	k.last = Kinetic(f.Particles)
	k.total += k.last
	k.samples++
}

func (k *KineticEnergy) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.total / float64(k.samples)
}

// Last is the kinetic energy of the most recent frame.
func (k *KineticEnergy) Last() float64 { return k.last }

func (k *KineticEnergy) Reset() {
	k.last, k.total, k.samples = 0, 0, 0
}

type PotentialEnergy struct {
	name    string
	gravity float64
	last    float64
	total   float64
	samples int
}

func NewPotentialEnergy(gravity float64) *PotentialEnergy {
	return &PotentialEnergy{name: "potential_energy", gravity: gravity}
}

func (p *PotentialEnergy) Name() string { return p.name }

func (p *PotentialEnergy) Observe(f dynamo.Frame) {
	p.last = Potential(f.Particles, p.gravity)
	p.total += p.last
	p.samples++
}

func (p *PotentialEnergy) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.total / float64(p.samples)
}

func (p *PotentialEnergy) Last() float64 { return p.last }

func (p *PotentialEnergy) Reset() {
	p.last, p.total, p.samples = 0, 0, 0
}

// EnergyDrift tracks the largest relative change of total mechanical
// energy from the first observed frame. Wall restitution and viscosity
// dissipate, so a fluid drifts downward; a rise signals instability.
type EnergyDrift struct {
	name          string
	gravity       float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(gravity float64) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", gravity: gravity}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f dynamo.Frame) {
	energy := Kinetic(f.Particles) + Potential(f.Particles, e.gravity)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
