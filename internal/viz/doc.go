// Package viz draws fluid frames in the terminal.
//
//   - [Canvas]: braille sub-pixel canvas with dot and metaball renderers
//   - [PackPositions]: normalised position payload shared by the renderers
//   - [Model]: live Bubble Tea view that steps a world every tick
//   - [RunInteractive]: scene picker in front of the live view
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Rebuild the scene
//	M     - Toggle dots / metaballs
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[]/   - Time travel (rewind/forward)
//
// # Recording
//
// G starts and stops recording the canvas; the frames are written as an
// animated GIF to LiveConfig.GIFPath.
package viz
