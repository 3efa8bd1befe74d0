package metrics

import (
	"math"

	"github.com/san-kum/ddrfluid/internal/dynamo"
)

// MaxSpeed is the largest particle speed seen in any frame.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string {
	return m.name
}

func (m *MaxSpeed) Observe(f dynamo.Frame) {
	for _, p := range f.Particles {
		m.max = math.Max(m.max, p.Velocity.Len())
	}
}

func (m *MaxSpeed) Value() float64 {
	return m.max
}

func (m *MaxSpeed) Reset() {
	m.max = 0
}
