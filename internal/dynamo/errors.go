package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for driver operations.
var (
	// ErrInvalidDt indicates a negative or non-finite frame delta.
	ErrInvalidDt = errors.New("dynamo: invalid frame delta")

	// ErrInvalidState indicates NaN or Inf in particle state.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates run settings that cannot be executed.
	ErrInvalidConfig = errors.New("dynamo: invalid config")

	// ErrContextCanceled indicates the run was interrupted between frames.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with the solver step and time it
// happened at.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
