// Package scene holds the preset initial configurations and swaps the live
// population when the operator commits a different one.
//
// A [Descriptor] is a named, editable generator of bodies. [Loaded] is the
// currently committed descriptor plus the root entity its bodies hang from.
// [Manager] notices a new commit and, in the first phase of the next tick,
// empties the root and instantiates the new descriptor into it.
package scene

import (
	"math"
	"math/rand"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/world"
)

// Target receives the bodies a descriptor instantiates.
type Target interface {
	Spawn(spec world.BodySpec) (world.Entity, error)
}

// Descriptor is one preset scene. Instance must depend only on the
// descriptor's parameters and rng; Clone must deep-copy.
type Descriptor interface {
	dynamo.Configurable

	Name() string
	Instance(t Target, rng *rand.Rand) error
	Spawnable() Spawnable
	Clone() Descriptor
}

// SpawnKind says what operator-placed bodies look like in a scene.
type SpawnKind uint8

const (
	Massive SpawnKind = iota + 1
	Massless
)

// Spawnable bounds interactive body placement.
type Spawnable struct {
	Kind    SpawnKind
	MinMass float64
	MaxMass float64
	Density float64
}

// MaxSpawnableMass is the upper mass bound, 0 when placed bodies are test bodies.
func (s Spawnable) MaxSpawnableMass() float64 {
	if s.Kind != Massive {
		return 0
	}
	return s.MaxMass
}

// PointMass classifies a placed body, clamping mass into the allowed range.
func (s Spawnable) PointMass(mass float64) world.PointMass {
	if s.Kind != Massive {
		return world.AffectedByGravity()
	}
	return world.HasGravity(dynamo.Clamp(mass, s.MinMass, s.MaxMass))
}

// Radius is the render radius of a placed body of the given mass.
func (s Spawnable) Radius(mass float64) float64 {
	if s.Kind != Massive {
		mass = 1
	}
	return radiusFor(mass, s.Density)
}

func radiusFor(mass, density float64) float64 {
	if density <= 0 {
		return 1
	}
	return math.Sqrt(mass / (density * math.Pi))
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func setParam(d dynamo.Configurable, name string, value float64) (*dynamo.Param, error) {
	for _, p := range d.Params() {
		if p.Name != name {
			continue
		}
		if err := dynamo.CheckParam(p, value); err != nil {
			return nil, err
		}
		if p.Integer {
			value = math.Round(value)
		}
		p.Value = value
		return &p, nil
	}
	return nil, &dynamo.ParamError{Name: name, Value: value, Wrapped: dynamo.ErrUnknownParameter}
}
