package fluid

import "math"

// wallCollisions clamps particles into the world box, reflecting and
// damping the offending velocity component. A particle touching a wall
// always leaves with at least BoundaryMinDV of inward speed.
func (w *World) wallCollisions() {
	p := &w.params
	lo := p.ParticleRadius
	hiX, hiY := p.WorldWidth-lo, p.WorldHeight-lo
	firstMatch := p.Options.Walls == WallsFirstMatch

	for i := range w.particles {
		pt := &w.particles[i]
		var hit bool
		pt.Position.X, pt.Velocity.X, hit = collide(pt.Position.X, pt.Velocity.X, lo, hiX, p.BoundaryCOR, p.BoundaryMinDV)
		if hit && firstMatch {
			continue
		}
		pt.Position.Y, pt.Velocity.Y, _ = collide(pt.Position.Y, pt.Velocity.Y, lo, hiY, p.BoundaryCOR, p.BoundaryMinDV)
	}
}

// collide resolves one axis against [lo, hi].
func collide(x, v, lo, hi, cor, minDV float64) (float64, float64, bool) {
	switch {
	case x <= lo:
		return lo, math.Max(-cor*v, minDV), true
	case x >= hi:
		return hi, math.Min(-cor*v, -minDV), true
	}
	return x, v, false
}
