package metrics

import (
	"github.com/san-kum/ddrfluid/internal/dynamo"
)

// Containment reports the fraction of frames in which every particle lay
// inside [r, W-r] x [r, H-r].
type Containment struct {
	name          string
	width, height float64
	radius        float64
	tolerance     float64
	violations    int
	samples       int
}

func NewContainment(width, height, radius float64) *Containment {
	return &Containment{
		name:      "containment",
		width:     width,
		height:    height,
		radius:    radius,
		tolerance: 1e-9,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(f dynamo.Frame) {
	c.samples++
	lo := c.radius - c.tolerance
	for _, p := range f.Particles {
		x, y := p.Position.X, p.Position.Y
		if x < lo || y < lo || x > c.width-lo || y > c.height-lo {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

// Violations is the number of frames with at least one escaped particle.
func (c *Containment) Violations() int { return c.violations }

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
