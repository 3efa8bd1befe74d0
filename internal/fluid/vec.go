package fluid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec2 is an immutable 2-D vector. Every operation returns a new value.
type Vec2 r2.Vec

func (v Vec2) Add(o Vec2) Vec2 { return Vec2(r2.Add(r2.Vec(v), r2.Vec(o))) }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2(r2.Sub(r2.Vec(v), r2.Vec(o))) }

func (v Vec2) Scale(s float64) Vec2 { return Vec2(r2.Scale(s, r2.Vec(v))) }

// Div divides both components by s. The result is not finite when s is 0;
// callers guard against coincident points before normalising.
func (v Vec2) Div(s float64) Vec2 { return Vec2{X: v.X / s, Y: v.Y / s} }

func (v Vec2) Dot(o Vec2) float64 { return r2.Dot(r2.Vec(v), r2.Vec(o)) }

// Len is the Euclidean norm.
func (v Vec2) Len() float64 { return r2.Norm(r2.Vec(v)) }

func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
