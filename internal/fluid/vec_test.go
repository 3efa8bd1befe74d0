package fluid

import (
	"math"
	"testing"
)

func TestVec2Arithmetic(t *testing.T) {
	a := Vec2{X: 3, Y: 4}
	b := Vec2{X: 1, Y: -2}

	if got := a.Add(b); got != (Vec2{X: 4, Y: 2}) {
		t.Errorf("Add: got %v", got)
	}
	if got := a.Sub(b); got != (Vec2{X: 2, Y: 6}) {
		t.Errorf("Sub: got %v", got)
	}
	if got := a.Scale(2); got != (Vec2{X: 6, Y: 8}) {
		t.Errorf("Scale: got %v", got)
	}
	if got := a.Div(2); got != (Vec2{X: 1.5, Y: 2}) {
		t.Errorf("Div: got %v", got)
	}
	if got := a.Len(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Len: got %v", got)
	}
	if got := a.Dot(b); got != -5 {
		t.Errorf("Dot: got %v", got)
	}
	if a != (Vec2{X: 3, Y: 4}) {
		t.Error("operations must not mutate the receiver")
	}
}

func TestVec2DivByZeroIsNotFinite(t *testing.T) {
	if (Vec2{X: 1, Y: 0}).Div(0).IsFinite() {
		t.Error("expected non-finite result")
	}
	if !(Vec2{X: 1, Y: 2}).IsFinite() {
		t.Error("expected finite vector")
	}
}
