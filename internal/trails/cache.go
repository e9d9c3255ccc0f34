// Package trails keeps one rolling sample per trailed body and turns it into
// trail segments.
//
// A body's first sample only records a baseline. Each following sample draws
// a one-frame fine segment from the committed position to the current one,
// until Resolution fine samples have been drawn; the next sample draws a
// long-lived coarse segment and commits the current position.
//
// Entries are removed when the world reports a despawn or a trail removal, so
// the cache never holds more entries than there are trailed bodies.
package trails

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/world"
)

type entry struct {
	last  dynamo.Vec
	count int
}

type Cache struct {
	sink    Sink
	entries map[world.Entity]*entry
}

func NewCache(sink Sink) *Cache {
	return &Cache{sink: sink, entries: make(map[world.Entity]*entry)}
}

// Attach subscribes the cache to removal events of w.
func (c *Cache) Attach(w *world.World) {
	w.Subscribe(func(e world.Entity, _ world.Removal) {
		c.Forget(e)
	})
}

// Forget drops the entry for e, if any.
func (c *Cache) Forget(e world.Entity) {
	delete(c.entries, e)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	clear(c.entries)
}

func (c *Cache) Len() int { return len(c.entries) }

// Entry returns the committed position and counter of e.
func (c *Cache) Entry(e world.Entity) (last dynamo.Vec, count int, ok bool) {
	en, ok := c.entries[e]
	if !ok {
		return dynamo.Vec{}, 0, false
	}
	return en.last, en.count, true
}

// Sample runs one pass over every trailed body. dt is the lifetime of fine
// segments.
func (c *Cache) Sample(w *world.World, dt float64) (fine, coarse int) {
	w.EachTrail(func(e world.Entity, pos dynamo.Vec, tr world.Trail) {
		en, ok := c.entries[e]
		if !ok {
			c.entries[e] = &entry{last: pos}
			return
		}

		if en.count >= tr.Resolution {
			c.sink.Line(en.last, pos, tr.Length, true)
			en.last = pos
			en.count = 0
			coarse++
			return
		}

		c.sink.Line(en.last, pos, dt, false)
		en.count++
		fine++
	})
	return fine, coarse
}
