// Package analysis turns recorded fluid frames into time series and
// summaries.
//
//   - [Extract] and the per-frame reducers ([CenterOfMass], [MeanSpeed])
//     build series from a run
//   - [PowerSpectrum] and [DominantFrequency] find the sloshing frequency
//     of a series
//   - [ParticleTrajectory] and [TrajectoryToASCII] trace paths through
//     the box
//
// # Sloshing
//
// A dam break settles into a standing wave. The centre-of-mass height
// oscillates at the wave's frequency:
//
//	heights := analysis.Extract(frames, analysis.CenterOfMassHeight)
//	f, _ := analysis.DominantFrequency(heights, 60)
package analysis
