// Package world stores simulated bodies in an ark ECS world.
//
// Bodies are ark entities. Their handles carry a generation, so a handle kept
// past despawn is detected with [World.Alive] instead of aliasing a newer body
// that reused the slot. Despawns and trail removals notify subscribers, which
// is how per-body caches stay in step with the population.
//
// Callbacks passed to the Each* iterators run while a query holds the ark
// world locked; they must not spawn or despawn.
package world

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Entity is a generational body or root handle.
type Entity = ecs.Entity

var (
	// ErrInvalidTarget indicates a spawn target that is not a live scene root.
	ErrInvalidTarget = errors.New("world: spawn target is not a live root")
	// ErrNotBody indicates a handle that does not name a live body.
	ErrNotBody = errors.New("world: not a live body")
)

// Removal tells subscribers what went away.
type Removal uint8

const (
	BodyRemoved Removal = iota + 1
	TrailRemoved
)

// RemovalFunc observes body and trail removals. It runs before the entity is
// removed from the ark world, outside any query.
type RemovalFunc func(e Entity, what Removal)

type World struct {
	ecs *ecs.World

	bodies  *ecs.Map6[Position, Velocity, Acceleration, PointMass, Appearance, Parent]
	roots   *ecs.Map[Root]
	trails  *ecs.Map[Trail]
	accel   *ecs.Map[Acceleration]
	parents *ecs.Map[Parent]

	massFilter   *ecs.Filter2[Position, PointMass]
	motionFilter *ecs.Filter3[Position, Velocity, Acceleration]
	trailFilter  *ecs.Filter2[Position, Trail]
	parentFilter *ecs.Filter1[Parent]
	renderFilter *ecs.Filter5[Position, Velocity, Acceleration, PointMass, Appearance]

	listeners []RemovalFunc
	count     int
}

// New creates an empty world.
func New() *World {
	w := ecs.NewWorld()
	ew := &w
	return &World{
		ecs:          ew,
		bodies:       ecs.NewMap6[Position, Velocity, Acceleration, PointMass, Appearance, Parent](ew),
		roots:        ecs.NewMap[Root](ew),
		trails:       ecs.NewMap[Trail](ew),
		accel:        ecs.NewMap[Acceleration](ew),
		parents:      ecs.NewMap[Parent](ew),
		massFilter:   ecs.NewFilter2[Position, PointMass](ew),
		motionFilter: ecs.NewFilter3[Position, Velocity, Acceleration](ew),
		trailFilter:  ecs.NewFilter2[Position, Trail](ew),
		parentFilter: ecs.NewFilter1[Parent](ew),
		renderFilter: ecs.NewFilter5[Position, Velocity, Acceleration, PointMass, Appearance](ew),
	}
}

// Subscribe registers fn for removal notifications.
func (w *World) Subscribe(fn RemovalFunc) {
	w.listeners = append(w.listeners, fn)
}

func (w *World) notify(e Entity, what Removal) {
	for _, fn := range w.listeners {
		fn(e, what)
	}
}

// Alive reports whether e still names a live entity of this generation.
func (w *World) Alive(e Entity) bool {
	return !e.IsZero() && w.ecs.Alive(e)
}

// Len is the number of live bodies (roots excluded).
func (w *World) Len() int { return w.count }

// NewRoot creates an empty scene container.
func (w *World) NewRoot(name string) Entity {
	return w.roots.NewEntity(&Root{Name: name})
}

// IsRoot reports whether e is a live scene container.
func (w *World) IsRoot(e Entity) bool {
	return w.Alive(e) && w.roots.Has(e)
}

// Spawn creates a body under root.
func (w *World) Spawn(root Entity, spec BodySpec) (Entity, error) {
	if !w.IsRoot(root) {
		return Entity{}, ErrInvalidTarget
	}
	if err := spec.Mass.Validate(); err != nil {
		return Entity{}, err
	}
	if !dynamo.IsFinite(spec.Position) || !dynamo.IsFinite(spec.Velocity) {
		return Entity{}, fmt.Errorf("spawn at %v: %w", spec.Position, dynamo.ErrInvalidState)
	}

	e := w.bodies.NewEntity(
		&Position{V: spec.Position},
		&Velocity{V: spec.Velocity},
		&Acceleration{},
		&spec.Mass,
		&Appearance{Radius: spec.Radius, Color: spec.Color},
		&Parent{Root: root},
	)
	if spec.Trail != nil {
		tr := *spec.Trail
		w.trails.Add(e, &tr)
	}
	w.count++
	return e, nil
}

// Despawn removes a body. Dead handles are ignored.
func (w *World) Despawn(e Entity) {
	if !w.Alive(e) || w.roots.Has(e) {
		return
	}
	w.notify(e, BodyRemoved)
	w.ecs.RemoveEntity(e)
	w.count--
}

// Children lists the bodies parented to root.
func (w *World) Children(root Entity) []Entity {
	var out []Entity
	query := w.parentFilter.Query()
	for query.Next() {
		if query.Get().Root == root {
			out = append(out, query.Entity())
		}
	}
	return out
}

// DespawnChildren removes every body under root, keeping root itself.
func (w *World) DespawnChildren(root Entity) int {
	children := w.Children(root)
	for _, e := range children {
		w.Despawn(e)
	}
	return len(children)
}

// HasTrail reports whether e has trail drawing enabled.
func (w *World) HasTrail(e Entity) bool {
	return w.Alive(e) && w.trails.Has(e)
}

// SetTrail enables or updates trail drawing on a live body.
func (w *World) SetTrail(e Entity, t Trail) bool {
	if !w.Alive(e) || w.roots.Has(e) {
		return false
	}
	if w.trails.Has(e) {
		*w.trails.Get(e) = t
		return true
	}
	w.trails.Add(e, &t)
	return true
}

// RemoveTrail disables trail drawing and notifies subscribers.
func (w *World) RemoveTrail(e Entity) {
	if !w.HasTrail(e) {
		return
	}
	w.notify(e, TrailRemoved)
	w.trails.Remove(e)
}

// SetAcceleration overwrites the acceleration slot of a live body.
func (w *World) SetAcceleration(e Entity, a dynamo.Vec) bool {
	if !w.Alive(e) || !w.accel.Has(e) {
		return false
	}
	w.accel.Get(e).V = a
	return true
}

// Body returns a snapshot of e.
func (w *World) Body(e Entity) (Body, bool) {
	if !w.Alive(e) || w.roots.Has(e) {
		return Body{}, false
	}
	pos, vel, acc, mass, app, _ := w.bodies.Get(e)
	b := Body{
		Position:     pos.V,
		Velocity:     vel.V,
		Acceleration: acc.V,
		Mass:         *mass,
		Appearance:   *app,
	}
	if w.trails.Has(e) {
		tr := *w.trails.Get(e)
		b.Trail = &tr
	}
	return b, true
}

// RootOf returns the scene root a body belongs to.
func (w *World) RootOf(e Entity) (Entity, bool) {
	if !w.Alive(e) || !w.parents.Has(e) {
		return Entity{}, false
	}
	return w.parents.Get(e).Root, true
}

// EachMass visits position and classification of every body.
func (w *World) EachMass(fn func(e Entity, pos dynamo.Vec, mass PointMass)) {
	query := w.massFilter.Query()
	for query.Next() {
		pos, mass := query.Get()
		fn(query.Entity(), pos.V, *mass)
	}
}

// EachMotion gives mutable access to the integrator-owned state.
func (w *World) EachMotion(fn func(pos *Position, vel *Velocity, acc *Acceleration)) {
	query := w.motionFilter.Query()
	for query.Next() {
		fn(query.Get())
	}
}

// EachTrail visits every trailed body.
func (w *World) EachTrail(fn func(e Entity, pos dynamo.Vec, trail Trail)) {
	query := w.trailFilter.Query()
	for query.Next() {
		pos, tr := query.Get()
		fn(query.Entity(), pos.V, *tr)
	}
}

// EachBody visits a read-only snapshot of every body.
func (w *World) EachBody(fn func(e Entity, b Body)) {
	query := w.renderFilter.Query()
	for query.Next() {
		pos, vel, acc, mass, app := query.Get()
		e := query.Entity()
		b := Body{
			Position:     pos.V,
			Velocity:     vel.V,
			Acceleration: acc.V,
			Mass:         *mass,
			Appearance:   *app,
		}
		if w.trails.Has(e) {
			tr := *w.trails.Get(e)
			b.Trail = &tr
		}
		fn(e, b)
	}
}
