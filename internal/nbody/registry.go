package nbody

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/world"
)

// Record is the per-tick snapshot of one body.
type Record struct {
	Position dynamo.Vec
	Mu       float64
	Entity   world.Entity
}

// Registry is rebuilt from scratch every tick; it never outlives one.
type Registry struct {
	G       float64
	records []Record
	massive []int
}

// NewRegistry creates a registry for gravitational constant g.
func NewRegistry(g float64) *Registry {
	return &Registry{G: g}
}

// Reset drops every record. Backing storage is reused.
func (r *Registry) Reset() {
	r.records = r.records[:0]
	r.massive = r.massive[:0]
}

// Add appends a record; records with Mu > 0 become field sources.
func (r *Registry) Add(rec Record) {
	if rec.Mu > 0 {
		r.massive = append(r.massive, len(r.records))
	}
	r.records = append(r.records, rec)
}

// Rebuild replaces the contents with one record per live body in w.
func (r *Registry) Rebuild(w *world.World) {
	r.Reset()
	w.EachMass(func(e world.Entity, pos dynamo.Vec, mass world.PointMass) {
		r.Add(Record{Position: pos, Mu: mass.Mu(r.G), Entity: e})
	})
}

// Len is the number of records.
func (r *Registry) Len() int { return len(r.records) }

// Massive is the number of field sources.
func (r *Registry) Massive() int { return len(r.massive) }

// Records exposes the current records. The slice is invalidated by the next Reset.
func (r *Registry) Records() []Record { return r.records }
