// Package nbody couples the body world to pairwise gravity.
//
// Every tick the [Registry] is emptied and refilled from the live bodies, an
// [Accumulator] turns it into one acceleration per record, and [Writeback]
// overwrites each body's acceleration slot. Records hold generational entity
// handles, so a body despawned between rebuild and writeback is skipped rather
// than confused with a newer body.
//
//	reg.Rebuild(w)
//	results := acc.Accumulate(reg)
//	applied, stale := nbody.Writeback(w, results)
package nbody
