package analysis

import (
	"math"

	"github.com/san-kum/ddrfluid/internal/dynamo"
	"github.com/san-kum/ddrfluid/internal/fluid"
)

// Reducer maps one frame's particles to a scalar.
type Reducer func(particles []fluid.ParticleState) float64

// Extract applies fn to every frame.
func Extract(frames []dynamo.Frame, fn Reducer) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = fn(f.Particles)
	}
	return out
}

func Times(frames []dynamo.Frame) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = f.Time
	}
	return out
}

// CenterOfMass returns the mass-weighted mean position, or the zero
// vector for an empty or massless set.
func CenterOfMass(particles []fluid.ParticleState) fluid.Vec2 {
	var sum fluid.Vec2
	var mass float64
	for _, p := range particles {
		sum = sum.Add(p.Position.Scale(p.Mass))
		mass += p.Mass
	}
	if mass == 0 {
		return fluid.Vec2{}
	}
	return sum.Div(mass)
}

func CenterOfMassHeight(particles []fluid.ParticleState) float64 {
	return CenterOfMass(particles).Y
}

func CenterOfMassX(particles []fluid.ParticleState) float64 {
	return CenterOfMass(particles).X
}

func MeanSpeed(particles []fluid.ParticleState) float64 {
	if len(particles) == 0 {
		return 0
	}
	var sum float64
	for _, p := range particles {
		sum += p.Velocity.Len()
	}
	return sum / float64(len(particles))
}

// Momentum returns |Σ m·v|.
func Momentum(particles []fluid.ParticleState) float64 {
	var sum fluid.Vec2
	for _, p := range particles {
		sum = sum.Add(p.Velocity.Scale(p.Mass))
	}
	return sum.Len()
}

type Summary struct {
	Mean, Std, Min, Max float64
}

func Summarize(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range data {
		s.Mean += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean /= float64(len(data))
	for _, v := range data {
		s.Std += (v - s.Mean) * (v - s.Mean)
	}
	s.Std = math.Sqrt(s.Std / float64(len(data)))
	return s
}
