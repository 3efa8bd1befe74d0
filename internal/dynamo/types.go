package dynamo

import (
	"fmt"

	"github.com/san-kum/ddrfluid/internal/fluid"
)

// DefaultMaxDt bounds the solver step under the SubStep policy.
const DefaultMaxDt = 0.01

// System is a steppable particle world. *fluid.World implements it.
type System interface {
	Step(dt float64) error
	Snapshot(dst []fluid.ParticleState) []fluid.ParticleState
	Len() int
}

// Configurable exposes named parameters for live tuning.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Frame is the world as seen after one Advance.
type Frame struct {
	Index     int
	Time      float64
	Substeps  int
	Particles []fluid.ParticleState
}

// Valid reports whether every position and velocity is finite.
func (f Frame) Valid() bool {
	for _, p := range f.Particles {
		if !p.Position.IsFinite() || !p.Velocity.IsFinite() {
			return false
		}
	}
	return true
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

// Policy selects how a frame delta maps to solver steps.
type Policy int

const (
	SubStep Policy = iota
	Single
)

var policyNames = []string{"substep", "single"}

func (p Policy) String() string {
	if p < 0 || int(p) >= len(policyNames) {
		return fmt.Sprintf("unknown(%d)", int(p))
	}
	return policyNames[p]
}

func ParsePolicy(s string) (Policy, error) {
	if s == "" {
		return SubStep, nil
	}
	for i, name := range policyNames {
		if name == s {
			return Policy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown step policy %q (want one of %v)", ErrInvalidConfig, s, policyNames)
}

type Config struct {
	Dt            float64
	Duration      float64
	MaxDt         float64
	Policy        Policy
	Seed          int64
	ValidateState bool
	// SampleEvery records every n-th frame in Result.Frames. The first and
	// last frames are always recorded. Zero records every frame.
	SampleEvery int
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Duration:      10.0,
		MaxDt:         DefaultMaxDt,
		Policy:        SubStep,
		ValidateState: true,
		SampleEvery:   1,
	}
}

type Result struct {
	Frames     []Frame
	Metrics    map[string]float64
	StepsTaken int // frames advanced
	Substeps   int // solver invocations
	Errors     []error
}
