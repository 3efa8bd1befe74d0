package experiment

import (
	"math"
	"math/rand"

	"github.com/san-kum/ddrfluid/internal/fluid"
)

// Random scatters n particles over the whole box with mass in [0.75, 1).
func Random(w *fluid.World, n int, rng *rand.Rand) error {
	p := w.Params()
	for i := 0; i < n; i++ {
		x := rng.Float64() * p.WorldWidth
		y := rng.Float64() * p.WorldHeight
		if err := w.AddParticle(x, y, 0.75+rng.Float64()*0.25); err != nil {
			return err
		}
	}
	return nil
}

// DamBreak stacks n unit-mass particles in a column against the left wall.
func DamBreak(w *fluid.World, n int, rng *rand.Rand) error {
	p := w.Params()
	spacing := 2 * math.Max(p.ParticleRadius, 0.5)
	cols := int(0.35 * p.WorldWidth / spacing)
	if cols < 1 {
		cols = 1
	}
	return lattice(w, n, cols, spacing, p.ParticleRadius+spacing/2, p.ParticleRadius+spacing/2, rng)
}

// Drop fills the bottom with two thirds of the particles and releases the
// rest as a square blob from the upper middle of the box.
func Drop(w *fluid.World, n int, rng *rand.Rand) error {
	p := w.Params()
	spacing := 2 * math.Max(p.ParticleRadius, 0.5)

	pool := 2 * n / 3
	cols := int((p.WorldWidth - 2*p.ParticleRadius) / spacing)
	if cols < 1 {
		cols = 1
	}
	if err := lattice(w, pool, cols, spacing, p.ParticleRadius+spacing/2, p.ParticleRadius+spacing/2, rng); err != nil {
		return err
	}

	blob := n - pool
	side := int(math.Ceil(math.Sqrt(float64(blob))))
	x0 := p.WorldWidth/2 - float64(side)*spacing/2
	y0 := 0.65 * p.WorldHeight
	return lattice(w, blob, max(side, 1), spacing, x0, y0, rng)
}

// Pair places the two-particle scene: (0.5W, 0.5H) and two units to its
// right. n is ignored.
func Pair(w *fluid.World, _ int, _ *rand.Rand) error {
	p := w.Params()
	cx, cy := p.WorldWidth/2, p.WorldHeight/2
	if err := w.AddParticle(cx, cy, 1); err != nil {
		return err
	}
	return w.AddParticle(cx+2, cy, 1)
}

// lattice fills rows of cols particles upward from (x0, y0). A small
// jitter breaks the symmetry of a perfect grid.
func lattice(w *fluid.World, n, cols int, spacing, x0, y0 float64, rng *rand.Rand) error {
	jitter := 0.05 * spacing
	for i := 0; i < n; i++ {
		x := x0 + float64(i%cols)*spacing + (rng.Float64()-0.5)*jitter
		y := y0 + float64(i/cols)*spacing + (rng.Float64()-0.5)*jitter
		if err := w.AddParticle(x, y, 1); err != nil {
			return err
		}
	}
	return nil
}
