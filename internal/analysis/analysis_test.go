package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/ddrfluid/internal/dynamo"
	"github.com/san-kum/ddrfluid/internal/fluid"
)

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		n          int
		sampleRate float64
		freq       float64
	}{
		{128, 64, 2},
		{100, 50, 5},
		{60, 60, 3},
	}

	for _, tt := range tests {
		data := make([]float64, tt.n)
		for i := range data {
			data[i] = 40 + 3*math.Sin(2*math.Pi*tt.freq*float64(i)/tt.sampleRate)
		}
		got, power := DominantFrequency(data, tt.sampleRate)
		if math.Abs(got-tt.freq) > 1e-9 {
			t.Errorf("n=%d: expected %f Hz, got %f", tt.n, tt.freq, got)
		}
		if power <= 0 {
			t.Errorf("n=%d: expected positive power", tt.n)
		}
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	ps := PowerSpectrum([]float64{5, 5, 5, 5, 5, 5})
	if len(ps) != 4 {
		t.Fatalf("expected 4 bins, got %d", len(ps))
	}
	for i, v := range ps {
		if v > 1e-18 {
			t.Errorf("bin %d: expected zero power for constant input, got %g", i, v)
		}
	}
	if PowerSpectrum([]float64{1}) != nil {
		t.Error("expected nil spectrum for a single sample")
	}
}

func TestCenterOfMass(t *testing.T) {
	ps := []fluid.ParticleState{
		{Position: fluid.Vec2{X: 0, Y: 10}, Mass: 1},
		{Position: fluid.Vec2{X: 30, Y: 40}, Mass: 2},
	}
	c := CenterOfMass(ps)
	if math.Abs(c.X-20) > 1e-12 || math.Abs(c.Y-30) > 1e-12 {
		t.Errorf("expected (20, 30), got %v", c)
	}
	if got := CenterOfMass(nil); got != (fluid.Vec2{}) {
		t.Errorf("expected zero vector, got %v", got)
	}
}

func TestMomentumAndSpeed(t *testing.T) {
	ps := []fluid.ParticleState{
		{Velocity: fluid.Vec2{X: 3, Y: 0}, Mass: 1},
		{Velocity: fluid.Vec2{X: -1, Y: 0}, Mass: 3},
	}
	if Momentum(ps) != 0 {
		t.Errorf("expected zero momentum, got %f", Momentum(ps))
	}
	if MeanSpeed(ps) != 2 {
		t.Errorf("expected mean speed 2, got %f", MeanSpeed(ps))
	}
}

func TestExtractAndSummarize(t *testing.T) {
	frames := []dynamo.Frame{
		{Time: 0, Particles: []fluid.ParticleState{{Position: fluid.Vec2{Y: 10}, Mass: 1}}},
		{Time: 0.5, Particles: []fluid.ParticleState{{Position: fluid.Vec2{Y: 20}, Mass: 1}}},
		{Time: 1, Particles: []fluid.ParticleState{{Position: fluid.Vec2{Y: 30}, Mass: 1}}},
	}
	heights := Extract(frames, CenterOfMassHeight)
	s := Summarize(heights)
	if s.Mean != 20 || s.Min != 10 || s.Max != 30 {
		t.Errorf("unexpected summary %+v", s)
	}
	if math.Abs(s.Std-math.Sqrt(200.0/3)) > 1e-12 {
		t.Errorf("unexpected std %f", s.Std)
	}
	if times := Times(frames); times[2] != 1 {
		t.Errorf("unexpected times %v", times)
	}
}

func TestTrajectoryToASCII(t *testing.T) {
	frames := []dynamo.Frame{
		{Particles: []fluid.ParticleState{{Position: fluid.Vec2{X: 0, Y: 0}}}},
		{Particles: []fluid.ParticleState{{Position: fluid.Vec2{X: 100, Y: 100}}}},
	}
	traj := ParticleTrajectory(frames, 0)
	if len(traj.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(traj.Points))
	}
	if got := ParticleTrajectory(frames, 3); len(got.Points) != 0 {
		t.Error("expected no points for a missing particle")
	}

	out := TrajectoryToASCII(traj, 100, 100, 10, 5)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(lines))
	}
	if []rune(lines[4])[0] != '•' {
		t.Errorf("expected start in the bottom-left corner:\n%s", out)
	}
	if []rune(lines[0])[9] != '◆' {
		t.Errorf("expected end in the top-right corner:\n%s", out)
	}
}
