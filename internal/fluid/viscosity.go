package fluid

// applyViscosity damps the approach velocity of every neighbouring pair
// i < j closer than the interaction radius.
func (w *World) applyViscosity(dt float64) {
	h := w.params.InteractionRadius
	sigma, beta := w.params.ViscosityLinear, w.params.ViscosityQuad
	symmetric := w.params.Options.Viscosity == ViscositySymmetric

	for i := range w.particles {
		for _, j := range w.neighbors(i) {
			if j <= i {
				continue
			}
			a, b := &w.particles[i], &w.particles[j]
			rel := b.Position.Sub(a.Position)
			dist := rel.Len()
			if dist < Epsilon || dist >= h {
				continue
			}
			inward := a.Velocity.Sub(b.Velocity).Dot(rel)
			if inward <= 0 {
				continue
			}
			inward /= dist
			unit := rel.Div(dist)
			q := dist / h
			impulse := unit.Scale(0.5 * dt * (1 - q) * (sigma*inward + beta*inward*inward))

			a.Velocity = a.Velocity.Sub(impulse)
			if symmetric {
				b.Velocity = b.Velocity.Add(impulse)
			}
		}
	}
}
