package nbody

import (
	"math"
	"sync/atomic"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/world"
)

// Result is the acceleration computed for one registry record.
type Result struct {
	Entity       world.Entity
	Acceleration dynamo.Vec
}

// Accumulator turns a registry into accelerations, one per record.
type Accumulator interface {
	Accumulate(reg *Registry) []Result
}

const defaultMinChunk = 64

// DirectSum is the O(n²) pairwise sum
//
//	a_i = Σ_{j≠i} μ_j (p_j − p_i) / (|p_j − p_i|² + ε²)^{3/2}
//
// With Softening = 0, coincident pairs are excluded. A row whose sum is not
// finite is zeroed. Both cases are counted in Degenerate.
type DirectSum struct {
	Softening float64
	Workers   int // 0 uses every CPU, 1 is serial
	MinChunk  int

	degenerate atomic.Int64
}

// NewDirectSum creates a direct summation accumulator.
func NewDirectSum(softening float64, workers int) *DirectSum {
	return &DirectSum{Softening: softening, Workers: workers, MinChunk: defaultMinChunk}
}

// Degenerate is the number of guarded pairs or rows in the last pass.
func (d *DirectSum) Degenerate() int { return int(d.degenerate.Load()) }

// Accumulate computes one result per record. Each row is summed over sources
// in registry order, so the output does not depend on how rows are split.
func (d *DirectSum) Accumulate(reg *Registry) []Result {
	d.degenerate.Store(0)

	records := reg.records
	massive := reg.massive
	results := make([]Result, len(records))
	eps2 := d.Softening * d.Softening

	minChunk := d.MinChunk
	if minChunk <= 0 {
		minChunk = defaultMinChunk
	}

	dynamo.ParallelFor(len(records), minChunk, d.Workers, func(start, end int) {
		var guarded int64
		for i := start; i < end; i++ {
			pi := records[i].Position
			var ax, ay, az float64

			for _, j := range massive {
				if j == i {
					continue
				}
				rj := records[j]
				rx := rj.Position[0] - pi[0]
				ry := rj.Position[1] - pi[1]
				rz := rj.Position[2] - pi[2]
				r2 := rx*rx + ry*ry + rz*rz + eps2
				if r2 == 0 {
					guarded++
					continue
				}

				rInv := 1.0 / math.Sqrt(r2)
				f := rj.Mu * rInv * rInv * rInv
				ax += f * rx
				ay += f * ry
				az += f * rz
			}

			a := dynamo.Vec{ax, ay, az}
			if !dynamo.IsFinite(a) {
				a = dynamo.Vec{}
				guarded++
			}
			results[i] = Result{Entity: records[i].Entity, Acceleration: a}
		}
		if guarded > 0 {
			d.degenerate.Add(guarded)
		}
	})

	return results
}
