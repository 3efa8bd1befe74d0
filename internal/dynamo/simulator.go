package dynamo

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/ddrfluid/internal/fluid"
)

// subStepTolerance absorbs rounding in dt/maxDt so a frame that is an
// exact multiple of maxDt does not gain an extra slice.
const subStepTolerance = 1e-9

// MaxSubSteps bounds the solver steps a single frame may be sliced into.
const MaxSubSteps = 1 << 20

// SubSteps returns the smallest n with n*maxDt >= dt, capped at
// MaxSubSteps+1 so callers can reject oversized frames.
func SubSteps(dt, maxDt float64) int {
	if dt <= 0 {
		return 0
	}
	if maxDt <= 0 {
		return 1
	}
	if dt/maxDt > MaxSubSteps+1 {
		return MaxSubSteps + 1
	}
	target := dt * (1 - subStepTolerance)
	n := int(math.Ceil(dt / maxDt))
	for n > 1 && float64(n-1)*maxDt >= target {
		n--
	}
	for float64(n)*maxDt < target {
		n++
	}
	return n
}

type Simulator struct {
	sys       System
	policy    Policy
	maxDt     float64
	metrics   []Metric
	observers []Observer
	t         float64
	steps     int
	frame     int
	scratch   []fluid.ParticleState
}

func New(sys System) *Simulator {
	return &Simulator{
		sys:       sys,
		policy:    SubStep,
		maxDt:     DefaultMaxDt,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) System() System { return s.sys }
func (s *Simulator) Time() float64  { return s.t }
func (s *Simulator) Steps() int     { return s.steps }

// SetPolicy changes how Advance slices a frame.
func (s *Simulator) SetPolicy(p Policy, maxDt float64) error {
	if p == SubStep && (maxDt <= 0 || math.IsNaN(maxDt) || math.IsInf(maxDt, 0)) {
		return fmt.Errorf("%w: max_dt must be positive, got %g", ErrInvalidConfig, maxDt)
	}
	s.policy, s.maxDt = p, maxDt
	return nil
}

// Advance moves the world forward by one frame delta and returns the number
// of solver steps taken. A frame delta of zero takes no steps under the
// SubStep policy.
func (s *Simulator) Advance(dt float64) (int, error) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return 0, fmt.Errorf("%w: %g", ErrInvalidDt, dt)
	}

	n, stepDt := 1, dt
	if s.policy == SubStep {
		n, stepDt = SubSteps(dt, s.maxDt), s.maxDt
		if n > MaxSubSteps {
			return 0, fmt.Errorf("%w: %g needs more than %d steps of %g", ErrInvalidDt, dt, MaxSubSteps, s.maxDt)
		}
	}

	for i := 0; i < n; i++ {
		if err := s.sys.Step(stepDt); err != nil {
			return i, &SimulationError{Step: s.steps, Time: s.t, Wrapped: err}
		}
		s.t += stepDt
		s.steps++
	}
	return n, nil
}

// Frame captures the current world. The particle slice is freshly
// allocated.
func (s *Simulator) Frame(substeps int) Frame {
	return Frame{
		Index:     s.frame,
		Time:      s.t,
		Substeps:  substeps,
		Particles: s.sys.Snapshot(nil),
	}
}

func (s *Simulator) scratchFrame(substeps int) Frame {
	s.scratch = s.sys.Snapshot(s.scratch)
	return Frame{Index: s.frame, Time: s.t, Substeps: substeps, Particles: s.scratch}
}

func (s *Simulator) observe(f Frame) {
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, obs := range s.observers {
		obs.OnFrame(f)
	}
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.configure(cfg); err != nil {
		return nil, err
	}

	frames := frameCount(cfg)
	every := cfg.SampleEvery
	if every < 1 {
		every = 1
	}
	result := &Result{
		Frames:  make([]Frame, 0, frames/every+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	first := s.Frame(0)
	result.Frames = append(result.Frames, first)
	s.observe(first)

	for i := 1; i <= frames; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		n, err := s.Advance(cfg.Dt)
		result.Substeps += n
		if err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
		s.frame++
		result.StepsTaken++

		record := i%every == 0 || i == frames
		var f Frame
		if record {
			f = s.Frame(n)
		} else {
			f = s.scratchFrame(n)
		}

		if cfg.ValidateState && !f.Valid() {
			result.Errors = append(result.Errors, &SimulationError{Step: s.steps, Time: s.t, Wrapped: ErrInvalidState})
			break
		}

		s.observe(f)
		if record {
			result.Frames = append(result.Frames, f)
		}
	}

	s.collect(result)
	return result, nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// RunWithCallback advances frame by frame until the duration elapses or
// callback returns false. The frame passed to callback is only valid for
// the duration of the call.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Frame) bool) error {
	if err := s.configure(cfg); err != nil {
		return err
	}

	frames := frameCount(cfg)
	if !callback(s.scratchFrame(0)) {
		return nil
	}
	for i := 1; i <= frames; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		n, err := s.Advance(cfg.Dt)
		if err != nil {
			return err
		}
		s.frame++

		f := s.scratchFrame(n)
		if cfg.ValidateState && !f.Valid() {
			return &SimulationError{Step: s.steps, Time: s.t, Wrapped: ErrInvalidState}
		}
		s.observe(f)
		if !callback(f) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) configure(cfg Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	return s.SetPolicy(cfg.Policy, cfg.MaxDt)
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 || math.IsNaN(cfg.Dt) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 || math.IsNaN(cfg.Duration) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Policy == SubStep && cfg.MaxDt <= 0 {
		return fmt.Errorf("%w: max_dt must be positive for sub-stepping", ErrInvalidConfig)
	}
	return nil
}

func frameCount(cfg Config) int {
	return int(math.Ceil(cfg.Duration/cfg.Dt - subStepTolerance))
}
