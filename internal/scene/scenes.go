package scene

import (
	"math"
	"math/rand"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/world"
)

// Empty spawns nothing; bodies come only from operator placement.
type Empty struct{}

func (Empty) Name() string                      { return "Empty" }
func (Empty) Instance(Target, *rand.Rand) error { return nil }
func (Empty) Params() []dynamo.Param            { return nil }
func (e Empty) Clone() Descriptor               { return e }

func (Empty) Spawnable() Spawnable {
	return Spawnable{Kind: Massive, MinMass: 0.1, MaxMass: 100, Density: 1}
}

func (e Empty) SetParam(name string, value float64) error {
	_, err := setParam(e, name, value)
	return err
}

// Orbits is a central mass with a disc of bodies on circular orbits.
type Orbits struct {
	G              float64
	MainMass       float64
	MainDensity    float64
	BodiesCount    int
	BodiesDensity  float64
	BodiesMaxPos   float64
	BodiesMinMass  float64
	BodiesMaxMass  float64
	BodiesWithMass bool
}

func NewOrbits(g float64) *Orbits {
	return &Orbits{
		G:              g,
		MainMass:       1e5,
		MainDensity:    20,
		BodiesCount:    1000,
		BodiesDensity:  0.1,
		BodiesMaxPos:   1000,
		BodiesMinMass:  1,
		BodiesMaxMass:  10,
		BodiesWithMass: true,
	}
}

func (o *Orbits) Name() string { return "Orbits" }

func (o *Orbits) Clone() Descriptor {
	c := *o
	return &c
}

func (o *Orbits) mainRadius() float64 {
	return radiusFor(o.MainMass, o.MainDensity)
}

func (o *Orbits) minSpawnablePosition() float64 {
	return math.Max(math.Sqrt(float64(o.BodiesCount))*o.BodiesMaxMass, o.mainRadius()*4)
}

func (o *Orbits) Spawnable() Spawnable {
	return Spawnable{Kind: Massive, MinMass: 1, MaxMass: o.MainMass / 5e3, Density: 0.1}
}

func (o *Orbits) Params() []dynamo.Param {
	withMass := 0.0
	if o.BodiesWithMass {
		withMass = 1
	}
	return []dynamo.Param{
		{Name: "main_mass", Value: o.MainMass, Min: 1e3, Max: 1e6, Log: true},
		{Name: "bodies_count", Value: float64(o.BodiesCount), Min: 1, Max: 20000, Log: true, Integer: true},
		{Name: "bodies_max_pos", Value: o.BodiesMaxPos, Min: o.minSpawnablePosition(), Max: 1e4, Log: true, Integer: true},
		{Name: "bodies_max_mass", Value: o.BodiesMaxMass, Min: o.BodiesMinMass, Max: o.Spawnable().MaxMass},
		{Name: "bodies_with_mass", Value: withMass, Min: 0, Max: 1, Integer: true},
	}
}

func (o *Orbits) SetParam(name string, value float64) error {
	p, err := setParam(o, name, value)
	if err != nil {
		return err
	}
	switch p.Name {
	case "main_mass":
		o.MainMass = p.Value
	case "bodies_count":
		o.BodiesCount = int(p.Value)
	case "bodies_max_pos":
		o.BodiesMaxPos = p.Value
	case "bodies_max_mass":
		o.BodiesMaxMass = p.Value
	case "bodies_with_mass":
		o.BodiesWithMass = p.Value != 0
	}
	o.normalize()
	return nil
}

// normalize pulls dependent parameters back inside the bounds implied by the others.
func (o *Orbits) normalize() {
	o.BodiesMaxMass = dynamo.Clamp(o.BodiesMaxMass, o.BodiesMinMass, math.Max(o.BodiesMinMass, o.Spawnable().MaxMass))
	if o.BodiesMaxPos < o.minSpawnablePosition() {
		o.BodiesMaxPos = math.Ceil(o.minSpawnablePosition())
	}
}

func (o *Orbits) Instance(t Target, rng *rand.Rand) error {
	if _, err := t.Spawn(world.BodySpec{
		Mass:   world.HasGravity(o.MainMass),
		Radius: o.mainRadius(),
		Color:  world.White,
	}); err != nil {
		return err
	}

	minRadius := 2 * o.mainRadius()
	minP := minRadius * minRadius / (o.BodiesMaxPos * o.BodiesMaxPos)

	for i := 0; i < o.BodiesCount; i++ {
		radius := o.BodiesMaxPos * math.Sqrt(uniform(rng, minP, 1))
		theta := uniform(rng, 0, 2*math.Pi)
		position := dynamo.V2(radius*math.Cos(theta), radius*math.Sin(theta))

		mass := uniform(rng, o.BodiesMinMass, o.BodiesMaxMass)

		density, renderMass, pm := o.BodiesDensity, mass, world.HasGravity(mass)
		if !o.BodiesWithMass {
			density, renderMass, pm = o.BodiesDensity/100, o.BodiesMinMass/100, world.AffectedByGravity()
		}

		// |v| = sqrt(G(M+m)/r), perpendicular to the radius.
		dist2 := position.Dot(position)
		vel := math.Sqrt(o.G*(o.MainMass+mass)) * math.Pow(dist2, -0.75)
		velocity := dynamo.V2(-position.Y()*vel, position.X()*vel)

		if _, err := t.Spawn(world.BodySpec{
			Position: position,
			Velocity: velocity,
			Mass:     pm,
			Radius:   radiusFor(renderMass, density),
			Color:    world.RGB(rng.Float64(), rng.Float64(), rng.Float64()),
		}); err != nil {
			return err
		}
	}
	return nil
}

// threeBody is shared by the periodic three-body choreographies.
type threeBody struct {
	name       string
	G          float64
	Radius     float64
	Mass       float64
	maxRadius  float64
	density    func(mass, radius float64) float64
	spawnable  func(mass, radius float64) Spawnable
	positions  [3]dynamo.Vec
	velocities [3]dynamo.Vec
}

func (s *threeBody) Name() string { return s.name }

func (s *threeBody) Clone() Descriptor {
	c := *s
	return &c
}

func (s *threeBody) Spawnable() Spawnable { return s.spawnable(s.Mass, s.Radius) }

func (s *threeBody) Params() []dynamo.Param {
	return []dynamo.Param{
		{Name: "radius", Value: s.Radius, Min: 5, Max: s.maxRadius, Log: true, Integer: true},
	}
}

func (s *threeBody) SetParam(name string, value float64) error {
	p, err := setParam(s, name, value)
	if err != nil {
		return err
	}
	s.Radius = p.Value
	return nil
}

// Instance scales the unit choreography so that G*m = distance^3.
func (s *threeBody) Instance(t Target, _ *rand.Rand) error {
	distance := math.Cbrt(s.G * s.Mass)
	density := s.density(s.Mass, s.Radius)

	for i := range s.positions {
		tr := world.NewTrail(15, 1)
		if _, err := t.Spawn(world.BodySpec{
			Position: s.positions[i].Mul(distance),
			Velocity: s.velocities[i].Mul(distance),
			Mass:     world.HasGravity(s.Mass),
			Radius:   radiusFor(s.Mass, density),
			Color:    world.White,
			Trail:    &tr,
		}); err != nil {
			return err
		}
	}
	return nil
}

func discDensity(mass, radius float64) float64 {
	return mass / (radius * radius * math.Pi)
}

func fixedMassless(density float64) func(float64, float64) Spawnable {
	return func(float64, float64) Spawnable {
		return Spawnable{Kind: Massless, Density: density}
	}
}

// NewFigure8 is the Chenciner-Montgomery figure-eight orbit.
func NewFigure8(g float64) Descriptor {
	p1 := dynamo.V2(-0.9700044, 0.24308753)
	v1 := dynamo.V2(0.4662037, 0.43236573)
	return &threeBody{
		name:      "Figure8",
		G:         g,
		Radius:    30,
		Mass:      1e5,
		maxRadius: 100,
		density: func(mass, radius float64) float64 {
			return 0.5 * discDensity(mass, radius)
		},
		spawnable: func(mass, radius float64) Spawnable {
			return Spawnable{Kind: Massless, Density: 3e-7 * discDensity(mass, radius)}
		},
		positions:  [3]dynamo.Vec{p1, p1.Mul(-1), {}},
		velocities: [3]dynamo.Vec{v1, v1, v1.Mul(-2)},
	}
}

// NewTernaryOrbit is three equal masses on a rotating equilateral triangle.
func NewTernaryOrbit(g float64) Descriptor {
	h := math.Sqrt(3) / 2
	return &threeBody{
		name:       "TernaryOrbit",
		G:          g,
		Radius:     20,
		Mass:       1e5,
		maxRadius:  100,
		density:    discDensity,
		spawnable:  fixedMassless(1e-4),
		positions:  [3]dynamo.Vec{dynamo.V2(1, 0), dynamo.V2(-0.5, h), dynamo.V2(-0.5, -h)},
		velocities: [3]dynamo.Vec{dynamo.V2(0, 0.5), dynamo.V2(-h*0.5, -0.25), dynamo.V2(h*0.5, -0.25)},
	}
}

// NewDoubleOval is a periodic three-body orbit tracing two ovals.
func NewDoubleOval(g float64) Descriptor {
	return &threeBody{
		name:      "DoubleOval",
		G:         g,
		Radius:    20,
		Mass:      1e5,
		maxRadius: 50,
		density:   discDensity,
		spawnable: fixedMassless(1e-4),
		positions: [3]dynamo.Vec{
			dynamo.V2(0.48665768, 0.7550419),
			dynamo.V2(-0.681738, 0.29366022),
			dynamo.V2(-0.022596328, -0.6126456),
		},
		velocities: [3]dynamo.Vec{
			dynamo.V2(-0.18270986, 0.3630133),
			dynamo.V2(-0.5790749, -0.7481575),
			dynamo.V2(0.7617848, 0.3851442),
		},
	}
}
