// Package viz is the interactive terminal control surface.
//
// [App] drives a [sim.Simulation] from Bubble Tea ticks and renders bodies
// and trail segments onto a Braille [Canvas] through a spring-smoothed
// [Camera]. The sidebar shows tick statistics and an energy plot.
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	S, Tab - Open the scene panel (h/l change scene or parameter, n commits)
//	N      - Commit the edited scene, or reload the current one
//	Drag   - Place a body; the drag vector is its velocity
//	[ ]    - Placement mass
//	HJKL   - Pan, +/- zoom, F fit
//	T      - Cycle color themes
//	?      - Show help overlay
package viz
