package scene_test

import (
	"math"
	"math/rand"

	g "github.com/onsi/ginkgo/v2"
	o "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/trails"
	"github.com/san-kum/gravsim/internal/world"
)

const gravity = 1000.0

// swarm spawns n trailed test bodies on a line.
type swarm struct{ n int }

func (s *swarm) Name() string                   { return "Swarm" }
func (s *swarm) Params() []dynamo.Param         { return nil }
func (s *swarm) SetParam(string, float64) error { return dynamo.ErrUnknownParameter }
func (s *swarm) Spawnable() scene.Spawnable     { return scene.Spawnable{Kind: scene.Massless} }

func (s *swarm) Clone() scene.Descriptor {
	c := *s
	return &c
}

func (s *swarm) Instance(t scene.Target, _ *rand.Rand) error {
	for i := 0; i < s.n; i++ {
		tr := world.NewTrail(15, 1)
		if _, err := t.Spawn(world.BodySpec{
			Position: dynamo.V2(float64(i), 0),
			Velocity: dynamo.V2(0, 1),
			Mass:     world.HasGravity(1),
			Trail:    &tr,
		}); err != nil {
			return err
		}
	}
	return nil
}

type collector struct{ bodies []world.Body }

func (c *collector) Spawn(spec world.BodySpec) (world.Entity, error) {
	c.bodies = append(c.bodies, world.Body{
		Position: spec.Position,
		Velocity: spec.Velocity,
		Mass:     spec.Mass,
		Trail:    spec.Trail,
	})
	return world.Entity{}, nil
}

func instance(d scene.Descriptor, seed int64) []world.Body {
	c := &collector{}
	o.Expect(d.Instance(c, rand.New(rand.NewSource(seed)))).To(o.Succeed())
	return c.bodies
}

var _ = g.Describe("Catalog", func() {
	cat := scene.DefaultCatalog(gravity)

	g.It("lists the stock scenes in order", func() {
		o.Expect(cat.Names()).To(o.Equal([]string{"Empty", "Orbits", "Figure8", "TernaryOrbit", "DoubleOval"}))
	})

	g.It("looks scenes up ignoring case and separators", func() {
		d, err := cat.Lookup("figure-8")
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(d.Name()).To(o.Equal("Figure8"))

		d, err = cat.Lookup("ternary_orbit")
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(d.Name()).To(o.Equal("TernaryOrbit"))
	})

	g.It("rejects unknown names", func() {
		_, err := cat.Lookup("nebula")
		o.Expect(err).To(o.MatchError(dynamo.ErrUnknownScene))
	})

	g.It("hands out independent copies", func() {
		a, _ := cat.Lookup("orbits")
		o.Expect(a.SetParam("bodies_count", 10)).To(o.Succeed())
		b, _ := cat.Lookup("orbits")
		o.Expect(b.(*scene.Orbits).BodiesCount).To(o.Equal(1000))
	})

	g.It("applies parameter maps in declaration order", func() {
		d, _ := cat.Lookup("orbits")
		o.Expect(scene.Apply(d, map[string]float64{"bodies_count": 50, "main_mass": 5e5})).To(o.Succeed())
		orb := d.(*scene.Orbits)
		o.Expect(orb.BodiesCount).To(o.Equal(50))
		o.Expect(orb.MainMass).To(o.Equal(5e5))

		err := scene.Apply(d, map[string]float64{"wobble": 1})
		o.Expect(err).To(o.MatchError(dynamo.ErrUnknownParameter))
	})
})

var _ = g.Describe("Orbits", func() {
	var orb *scene.Orbits

	g.BeforeEach(func() {
		orb = scene.NewOrbits(gravity)
		o.Expect(orb.SetParam("bodies_count", 40)).To(o.Succeed())
	})

	g.It("spawns the central mass plus bodies_count bodies", func() {
		bodies := instance(orb, 1)
		o.Expect(bodies).To(o.HaveLen(41))
		o.Expect(bodies[0].Mass.Mass).To(o.Equal(1e5))
		o.Expect(bodies[0].Position).To(o.Equal(dynamo.Vec{}))
	})

	g.It("is deterministic for a fixed seed", func() {
		o.Expect(instance(orb, 7)).To(o.Equal(instance(orb, 7)))
		o.Expect(instance(orb, 7)).NotTo(o.Equal(instance(orb, 8)))
	})

	g.It("puts bodies on circular orbits outside twice the main radius", func() {
		mainRadius := math.Sqrt(orb.MainMass / (orb.MainDensity * math.Pi))
		for _, b := range instance(orb, 3)[1:] {
			r := b.Position.Len()
			o.Expect(r).To(o.BeNumerically(">=", 2*mainRadius-1e-9))
			o.Expect(r).To(o.BeNumerically("<=", orb.BodiesMaxPos+1e-9))
			o.Expect(b.Position.Dot(b.Velocity)).To(o.BeNumerically("~", 0, 1e-6))

			want := gravity * (orb.MainMass + b.Mass.Mass) / r
			o.Expect(b.Velocity.Dot(b.Velocity)).To(o.BeNumerically("~", want, want*1e-9))
		}
	})

	g.It("spawns test bodies when bodies_with_mass is off", func() {
		o.Expect(orb.SetParam("bodies_with_mass", 0)).To(o.Succeed())
		for _, b := range instance(orb, 2)[1:] {
			o.Expect(b.Mass.Kind).To(o.Equal(world.Test))
		}
	})

	g.It("rejects out-of-range and unknown parameters", func() {
		o.Expect(orb.SetParam("main_mass", 10)).To(o.MatchError(dynamo.ErrParameterBounds))
		o.Expect(orb.SetParam("density", 1)).To(o.MatchError(dynamo.ErrUnknownParameter))
	})

	g.It("clamps dependent parameters when the main mass shrinks", func() {
		o.Expect(orb.SetParam("bodies_max_mass", 20)).To(o.Succeed())
		o.Expect(orb.SetParam("main_mass", 1e4)).To(o.Succeed())
		o.Expect(orb.BodiesMaxMass).To(o.Equal(2.0))
		o.Expect(orb.Spawnable().MaxSpawnableMass()).To(o.Equal(2.0))
	})

	g.It("deep-copies on Clone", func() {
		c := orb.Clone().(*scene.Orbits)
		o.Expect(c.SetParam("main_mass", 2e5)).To(o.Succeed())
		o.Expect(orb.MainMass).To(o.Equal(1e5))
	})
})

var _ = g.Describe("Three-body choreographies", func() {
	cat := scene.DefaultCatalog(gravity)

	for _, name := range []string{"Figure8", "TernaryOrbit", "DoubleOval"} {
		name := name
		g.It(name+" starts with three trailed bodies and near-zero momentum", func() {
			d, err := cat.Lookup(name)
			o.Expect(err).NotTo(o.HaveOccurred())
			bodies := instance(d, 0)
			o.Expect(bodies).To(o.HaveLen(3))

			var p dynamo.Vec
			for _, b := range bodies {
				o.Expect(b.Trail).NotTo(o.BeNil())
				o.Expect(*b.Trail).To(o.Equal(world.NewTrail(15, 1)))
				p = p.Add(b.Velocity.Mul(b.Mass.Mass))
			}
			o.Expect(p.Len()).To(o.BeNumerically("<", 1e-2*bodies[0].Velocity.Len()*bodies[0].Mass.Mass))
			o.Expect(d.Spawnable().MaxSpawnableMass()).To(o.BeZero())
		})
	}

	g.It("scales Figure8 by the cube root of G*m", func() {
		d, _ := cat.Lookup("Figure8")
		bodies := instance(d, 0)
		dist := math.Cbrt(gravity * 1e5)
		o.Expect(bodies[0].Position.X()).To(o.BeNumerically("~", -0.9700044*dist, 1e-9))
		o.Expect(bodies[2].Velocity.X()).To(o.BeNumerically("~", -2*0.4662037*dist, 1e-9))
	})
})

var _ = g.Describe("Loaded", func() {
	g.It("panics on Root before the first instantiation", func() {
		l := scene.NewLoaded(scene.Empty{})
		_, ok := l.LookupRoot()
		o.Expect(ok).To(o.BeFalse())
		o.Expect(func() { l.Root() }).To(o.Panic())
	})

	g.It("is insulated from edits to the committed draft", func() {
		draft := scene.NewOrbits(gravity)
		l := scene.NewLoaded(draft)
		o.Expect(draft.SetParam("bodies_count", 3)).To(o.Succeed())
		o.Expect(l.Scene().(*scene.Orbits).BodiesCount).To(o.Equal(1000))
	})
})

var _ = g.Describe("Manager", func() {
	var (
		w      *world.World
		loaded *scene.Loaded
		lines  *trails.Lines
		cache  *trails.Cache
		mgr    *scene.Manager
	)

	g.BeforeEach(func() {
		w = world.New()
		loaded = scene.NewLoaded(&swarm{n: 50})
		lines = trails.NewLines()
		cache = trails.NewCache(lines)
		cache.Attach(w)
		mgr = scene.NewManager(w, loaded, rand.New(rand.NewSource(1)), lines)
	})

	g.It("instantiates the pending scene once", func() {
		o.Expect(mgr.Pending()).To(o.BeTrue())
		r, reloaded, err := mgr.Update()
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(reloaded).To(o.BeTrue())
		o.Expect(r.Spawned).To(o.Equal(50))

		_, reloaded, err = mgr.Update()
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(reloaded).To(o.BeFalse())
		o.Expect(mgr.Reloads()).To(o.Equal(1))
		o.Expect(w.Len()).To(o.Equal(50))
	})

	g.It("parents every body to the scene root", func() {
		_, _, err := mgr.Update()
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(w.Children(loaded.Root())).To(o.HaveLen(50))
	})

	g.It("swapping to Empty drops bodies, trail entries and lines", func() {
		_, _, err := mgr.Update()
		o.Expect(err).NotTo(o.HaveOccurred())
		root := loaded.Root()

		for i := 0; i < 3; i++ {
			cache.Sample(w, 0.01)
			w.EachMotion(func(pos *world.Position, vel *world.Velocity, _ *world.Acceleration) {
				pos.V = pos.V.Add(vel.V.Mul(0.01))
			})
		}
		o.Expect(cache.Len()).To(o.Equal(50))
		o.Expect(lines.Len()).NotTo(o.BeZero())

		loaded.Load(scene.Empty{})
		r, reloaded, err := mgr.Update()
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(reloaded).To(o.BeTrue())
		o.Expect(r.Despawned).To(o.Equal(50))

		o.Expect(w.Len()).To(o.BeZero())
		o.Expect(cache.Len()).To(o.BeZero())
		o.Expect(lines.Len()).To(o.BeZero())
		o.Expect(loaded.Root()).To(o.Equal(root))

		reg := nbody.NewRegistry(gravity)
		reg.Rebuild(w)
		o.Expect(reg.Len()).To(o.BeZero())
	})

	g.It("reloading the same scene twice yields the same population size", func() {
		_, _, err := mgr.Update()
		o.Expect(err).NotTo(o.HaveOccurred())
		_, err = mgr.Reload()
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(w.Len()).To(o.Equal(50))
		o.Expect(w.Children(loaded.Root())).To(o.HaveLen(50))
	})
})

var _ = g.Describe("Snapshot", func() {
	g.It("replays the saved bodies and clones deeply", func() {
		tr := world.NewTrail(15, 1)
		snap := scene.NewSnapshot("saved", []world.BodySpec{
			{Position: dynamo.V2(1, 2), Mass: world.HasGravity(5), Trail: &tr},
			{Position: dynamo.V2(3, 4), Mass: world.AffectedByGravity()},
		})
		c := snap.Clone()
		tr.Length = 99

		bodies := instance(c, 0)
		o.Expect(bodies).To(o.HaveLen(2))
		o.Expect(bodies[0].Trail.Length).To(o.Equal(15.0))
		o.Expect(bodies[1].Position).To(o.Equal(dynamo.V2(3, 4)))
	})
})
