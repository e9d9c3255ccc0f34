package nbody

import "github.com/san-kum/gravsim/internal/world"

// Writeback overwrites the acceleration slot of every body named in results.
// Bodies despawned since the registry was built are skipped and counted as stale.
func Writeback(w *world.World, results []Result) (applied, stale int) {
	for _, r := range results {
		if w.SetAcceleration(r.Entity, r.Acceleration) {
			applied++
		} else {
			stale++
		}
	}
	return applied, stale
}
