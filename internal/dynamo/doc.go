// Package dynamo provides core primitives shared by the gravity simulation.
//
// The package defines the small vocabulary every other package speaks:
//
//   - [Vec]: 3D vector (2D scenes keep z = 0)
//   - [IsFinite]: guard against NaN/Inf leaking into state
//   - [ParallelFor]: row partitioning for embarrassingly parallel loops
//   - sentinel errors ([ErrInvalidMass], [ErrNoScene], ...)
//
// # Thread Safety
//
// Nothing in this package holds state. [ParallelFor] only runs the supplied
// function concurrently; the caller must ensure disjoint writes.
package dynamo
