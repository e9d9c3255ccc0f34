package sim

import (
	"fmt"
	"math/rand"
	"time"

	"k8s.io/klog/v2"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/trails"
	"github.com/san-kum/gravsim/internal/world"
)

// Simulation owns the world and every per-tick system. It is not safe for
// concurrent use; drive it from one goroutine.
type Simulation struct {
	g         float64
	softening float64

	world    *world.World
	catalog  *scene.Catalog
	loaded   *scene.Loaded
	manager  *scene.Manager
	registry *nbody.Registry
	accum    *nbody.DirectSum
	stepper  integrators.Stepper
	clock    *integrators.Clock
	lines    *trails.Lines
	cache    *trails.Cache

	collectors *metrics.Collectors
	metrics    []Metric
	observers  []Observer

	ticks int
}

// New builds a simulation from a validated configuration. The configured
// scene is pending until the first Tick.
func New(cfg *config.Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	catalog := scene.DefaultCatalog(cfg.G)
	initial, err := cfg.Descriptor(catalog)
	if err != nil {
		return nil, err
	}
	stepper, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		g:         cfg.G,
		softening: cfg.Softening,
		world:     world.New(),
		catalog:   catalog,
		loaded:    scene.NewLoaded(initial),
		registry:  nbody.NewRegistry(cfg.G),
		accum:     nbody.NewDirectSum(cfg.Softening, cfg.Workers),
		stepper:   stepper,
		clock:     integrators.NewClock(),
		lines:     trails.NewLines(),
	}
	s.cache = trails.NewCache(s.lines)
	s.cache.Attach(s.world)
	s.manager = scene.NewManager(s.world, s.loaded, rand.New(rand.NewSource(cfg.Seed)), s.lines)
	return s, nil
}

func (s *Simulation) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetCollectors enables Prometheus reporting.
func (s *Simulation) SetCollectors(c *metrics.Collectors) { s.collectors = c }

func (s *Simulation) World() *world.World          { return s.world }
func (s *Simulation) Catalog() *scene.Catalog      { return s.catalog }
func (s *Simulation) Loaded() *scene.Loaded        { return s.loaded }
func (s *Simulation) Lines() *trails.Lines         { return s.lines }
func (s *Simulation) Cache() *trails.Cache         { return s.cache }
func (s *Simulation) Clock() *integrators.Clock    { return s.clock }
func (s *Simulation) Stepper() integrators.Stepper { return s.stepper }
func (s *Simulation) G() float64                   { return s.g }
func (s *Simulation) Softening() float64           { return s.softening }
func (s *Simulation) Ticks() int                   { return s.ticks }

func (s *Simulation) LoadedName() string { return s.loaded.Name() }

func (s *Simulation) MaxSpawnableMass() float64 { return s.loaded.MaxSpawnableMass() }

// Commit makes a copy of d the live scene from the next tick on.
func (s *Simulation) Commit(d scene.Descriptor) {
	s.loaded.Load(d)
	klog.V(1).InfoS("scene committed", "scene", d.Name(), "generation", s.loaded.Generation())
}

// TogglePause flips the clock and reports whether it is now paused.
func (s *Simulation) TogglePause() bool { return s.clock.Toggle() }

// PlaceBody adds an operator body under the scene root. In a scene whose
// spawnables are massive the mass is clamped to the allowed range; otherwise
// a test body is placed.
func (s *Simulation) PlaceBody(position, velocity dynamo.Vec, mass float64) (world.Entity, error) {
	root, ok := s.loaded.LookupRoot()
	if !ok || !s.world.IsRoot(root) {
		return world.Entity{}, dynamo.ErrNoScene
	}
	sp := s.loaded.Spawnable()
	pm := sp.PointMass(mass)
	e, err := s.world.Spawn(root, world.BodySpec{
		Position: position,
		Velocity: velocity,
		Mass:     pm,
		Radius:   sp.Radius(pm.Mass),
		Color:    world.White,
	})
	if err != nil {
		return world.Entity{}, fmt.Errorf("place body: %w", err)
	}
	if s.collectors != nil {
		s.collectors.Placed()
	}
	klog.V(2).InfoS("body placed", "position", position, "velocity", velocity, "kind", pm.Kind, "mass", pm.Mass)
	return e, nil
}

const toggledTrailLength = 15

// ToggleTrail switches trail drawing on e and reports whether it is now on.
// Switching off drops the body's trail cache entry; its drawn segments fade
// out on their own.
func (s *Simulation) ToggleTrail(e world.Entity) (bool, error) {
	if !s.world.Alive(e) || s.world.IsRoot(e) {
		return false, world.ErrNotBody
	}
	if s.world.HasTrail(e) {
		s.world.RemoveTrail(e)
		return false, nil
	}
	s.world.SetTrail(e, world.NewTrail(toggledTrailLength, 1))
	return true, nil
}

// Tick advances the simulation by dt of wall time in fixed phase order:
// scene reload, registry rebuild, force accumulation, writeback,
// integration, trail sampling, line aging. A failed scene instantiation is
// returned after the tick completes.
func (s *Simulation) Tick(dt float64) (Report, error) {
	start := time.Now()
	r := Report{Tick: s.ticks}

	rep, reloaded, reloadErr := s.manager.Update()
	r.Reloaded = reloaded
	r.Spawned = rep.Spawned
	r.Scene = s.loaded.Name()

	s.registry.Rebuild(s.world)
	r.Sources = s.registry.Massive()

	results := s.accum.Accumulate(s.registry)
	r.Applied, r.Stale = nbody.Writeback(s.world, results)
	r.Degenerate = s.accum.Degenerate()

	r.Dt = s.clock.Advance(dt)
	r.Paused = s.clock.Paused()
	if r.Dt > 0 {
		s.stepper.Step(s.world, r.Dt)
		r.FineSegments, r.CoarseSegments = s.cache.Sample(s.world, r.Dt)
	}
	s.lines.Age(r.Dt)

	s.ticks++
	r.Elapsed = s.clock.Elapsed()
	r.Bodies = s.world.Len()
	r.TrailEntries = s.cache.Len()
	r.Segments = s.lines.Len()

	for _, m := range s.metrics {
		m.Observe(s.world, r.Elapsed)
	}
	r.Duration = time.Since(start)

	if s.collectors != nil {
		s.collectors.Observe(metrics.Tick{
			Duration:     r.Duration,
			Bodies:       r.Bodies,
			TrailEntries: r.TrailEntries,
			Segments:     r.Segments,
			Stale:        r.Stale,
			Degenerate:   r.Degenerate,
			Reloaded:     r.Reloaded,
		})
	}
	for _, o := range s.observers {
		o.OnTick(s.world, r)
	}

	if klog.V(3).Enabled() {
		klog.InfoS("tick", "n", r.Tick, "bodies", r.Bodies, "sources", r.Sources,
			"stale", r.Stale, "degenerate", r.Degenerate, "duration", r.Duration)
	}
	return r, reloadErr
}

// Energy measures the current population.
func (s *Simulation) Energy() metrics.Snapshot {
	return metrics.Measure(s.world, s.g, s.softening)
}

// Bodies returns a snapshot of every live body.
func (s *Simulation) Bodies() []world.Body {
	out := make([]world.Body, 0, s.world.Len())
	s.world.EachBody(func(_ world.Entity, b world.Body) {
		out = append(out, b)
	})
	return out
}
