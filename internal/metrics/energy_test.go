package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/ddrfluid/internal/dynamo"
	"github.com/san-kum/ddrfluid/internal/fluid"
)

func frameOf(states ...fluid.ParticleState) dynamo.Frame {
	return dynamo.Frame{Particles: states}
}

func state(x, y, vx, vy, m float64) fluid.ParticleState {
	return fluid.ParticleState{
		Position: fluid.Vec2{X: x, Y: y},
		Velocity: fluid.Vec2{X: vx, Y: vy},
		Mass:     m,
	}
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy()

	m.Observe(frameOf(state(10, 10, 3, 4, 2), state(20, 10, 0, 0, 1)))
	if math.Abs(m.Last()-25) > 1e-12 {
		t.Errorf("expected energy 25, got %f", m.Last())
	}

	m.Observe(frameOf(state(10, 10, 0, 0, 2)))
	if math.Abs(m.Value()-12.5) > 1e-12 {
		t.Errorf("expected mean 12.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 || m.Last() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestPotentialEnergy(t *testing.T) {
	m := NewPotentialEnergy(9.8)
	m.Observe(frameOf(state(50, 10, 0, 0, 0.5), state(50, 20, 0, 0, 1)))

	expected := 9.8 * (0.5*10 + 20)
	if math.Abs(m.Value()-expected) > 1e-9 {
		t.Errorf("expected energy %f, got %f", expected, m.Value())
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(10)
	m.Observe(frameOf(state(0, 10, 0, 0, 1)))
	// all potential converted to kinetic: no drift
	m.Observe(frameOf(state(0, 0, 0, math.Sqrt(200), 1)))
	if m.Value() > 1e-9 {
		t.Errorf("expected no drift, got %f", m.Value())
	}

	m.Observe(frameOf(state(0, 5, 0, 0, 1)))
	if math.Abs(m.Value()-0.5) > 1e-9 {
		t.Errorf("expected drift 0.5, got %f", m.Value())
	}
}

func TestContainment(t *testing.T) {
	m := NewContainment(100, 100, 1)

	if m.Value() != 1 {
		t.Error("expected full containment before any frame")
	}

	m.Observe(frameOf(state(1, 1, 0, 0, 1), state(99, 99, 0, 0, 1)))
	m.Observe(frameOf(state(0.5, 50, 0, 0, 1)))
	m.Observe(frameOf(state(50, 101, 0, 0, 1), state(-3, 50, 0, 0, 1)))

	if m.Violations() != 2 {
		t.Errorf("expected 2 violating frames, got %d", m.Violations())
	}
	if math.Abs(m.Value()-1.0/3) > 1e-12 {
		t.Errorf("expected containment 1/3, got %f", m.Value())
	}
}

func TestMaxSpeed(t *testing.T) {
	m := NewMaxSpeed()
	m.Observe(frameOf(state(0, 0, 3, 4, 1)))
	m.Observe(frameOf(state(0, 0, 1, 1, 1)))
	if m.Value() != 5 {
		t.Errorf("expected 5, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestMetricsImplementInterface(t *testing.T) {
	var _ dynamo.Metric = NewKineticEnergy()
	var _ dynamo.Metric = NewPotentialEnergy(9.8)
	var _ dynamo.Metric = NewEnergyDrift(9.8)
	var _ dynamo.Metric = NewContainment(100, 100, 1)
	var _ dynamo.Metric = NewMaxSpeed()
}

func TestContainmentOverRun(t *testing.T) {
	w := fluid.New()
	for i := 0; i < 50; i++ {
		if err := w.AddParticle(20+float64(i%10)*3, 40+float64(i/10)*3, 1); err != nil {
			t.Fatal(err)
		}
	}
	s := dynamo.New(w)
	c := NewContainment(fluid.WorldWidth, fluid.WorldHeight, fluid.ParticleRadius)
	s.AddMetric(c)

	cfg := dynamo.DefaultConfig()
	cfg.Duration = 2
	if _, err := s.Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if c.Violations() != 0 {
		t.Errorf("expected particles to stay in the box, %d frames escaped", c.Violations())
	}
}
