// Package dynamo drives a fluid world frame by frame.
//
// A frame delta is turned into solver invocations by a [Policy]:
//
//   - [SubStep]: repeat Step(MaxDt) until the stepped time covers the frame
//     delta; bounds per-step displacement regardless of frame rate
//   - [Single]: one Step(dt) per frame
//
// The [Simulator] records frames, feeds [Metric] and [Observer]
// implementations and validates state between frames.
//
// # Example
//
//	w := fluid.New()
//	sim := dynamo.New(w)
//	result, _ := sim.Run(ctx, dynamo.DefaultConfig())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Each one steps its world on the
// calling goroutine. [Ensemble] runs independent worlds concurrently, one
// goroutine per world.
package dynamo
