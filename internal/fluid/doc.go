// Package fluid implements a 2-D particle fluid advanced by double density
// relaxation, a position based SPH variant.
//
// A [World] owns an ordered set of particles and a uniform spatial hash
// [Grid]. Each call to [World.Step] runs a fixed pipeline:
//
//   - gravity resets the force accumulator
//   - semi-implicit Euler velocity update
//   - pairwise viscosity impulses
//   - position update
//   - double density relaxation
//   - wall collisions
//
// The passes must run in that order; later passes read state the earlier
// ones produced.
//
// # Reference behaviour
//
// Several details of the solver are selectable through [Options]:
// neighbour search width, grid rebuild frequency, how relaxation visits
// pairs, viscosity symmetry and wall precedence. [ReferenceOptions]
// selects the narrow same-cell, double-visit behaviour the default
// constants were tuned against; [DefaultOptions] (the zero value) uses the 3x3
// search and visits each unordered pair once.
//
//	w := fluid.New()
//	_ = w.AddParticle(50, 50, 1)
//	_ = w.AddParticle(52, 50, 1)
//	if err := w.Step(0.01); err != nil {
//	    // dt was negative or not finite
//	}
//
// # Thread Safety
//
// A World is not safe for concurrent use. Readers must take a copy via
// [World.Particles] between steps.
package fluid
