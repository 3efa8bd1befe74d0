package fluid

// Particle is the mutable per-particle solver state. Force is overwritten
// at the start of every step.
type Particle struct {
	Position Vec2
	Velocity Vec2
	Mass     float64
	Force    Vec2
}

// ParticleState is the read-only view handed to renderers and tests.
type ParticleState struct {
	Position Vec2
	Velocity Vec2
	Mass     float64
}

func (p *Particle) state() ParticleState {
	return ParticleState{Position: p.Position, Velocity: p.Velocity, Mass: p.Mass}
}
