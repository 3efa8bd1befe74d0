package fluid

import "errors"

var (
	// ErrInvalidParticle is returned for a non-positive mass or a
	// non-finite coordinate.
	ErrInvalidParticle = errors.New("fluid: invalid particle")

	// ErrInvalidStep is returned for a negative or non-finite dt. The world
	// is left untouched.
	ErrInvalidStep = errors.New("fluid: invalid step size")

	// ErrInvalidParams indicates solver parameters that cannot produce a
	// well-defined step.
	ErrInvalidParams = errors.New("fluid: invalid parameters")
)
