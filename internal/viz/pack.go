package viz

import "github.com/san-kum/ddrfluid/internal/fluid"

// PackPositions appends one (x/worldW, y/worldH) pair per particle to
// dst[:0]. This is the 2xN float32 payload a GPU renderer uploads.
func PackPositions(particles []fluid.ParticleState, worldW, worldH float64, dst []float32) []float32 {
	dst = dst[:0]
	for _, p := range particles {
		dst = append(dst, float32(p.Position.X/worldW), float32(p.Position.Y/worldH))
	}
	return dst
}
