package world

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Position is owned by the integrator after spawn.
type Position struct{ V dynamo.Vec }

// Velocity is owned by the integrator after spawn.
type Velocity struct{ V dynamo.Vec }

// Acceleration is the integrator's input slot. Only gravity writeback sets it.
type Acceleration struct{ V dynamo.Vec }

// MassKind is the closed set of mass classifications.
type MassKind uint8

const (
	// Gravitating bodies source the field and are accelerated by it.
	Gravitating MassKind = iota + 1
	// Test bodies are accelerated but contribute nothing.
	Test
)

func (k MassKind) String() string {
	switch k {
	case Gravitating:
		return "gravitating"
	case Test:
		return "test"
	default:
		return fmt.Sprintf("MassKind(%d)", uint8(k))
	}
}

// PointMass is fixed for the lifetime of a body.
type PointMass struct {
	Kind MassKind
	Mass float64
}

// HasGravity returns the classification of a body sourcing the field.
func HasGravity(mass float64) PointMass {
	return PointMass{Kind: Gravitating, Mass: mass}
}

// AffectedByGravity returns the classification of a test body.
func AffectedByGravity() PointMass {
	return PointMass{Kind: Test}
}

// Mu is the gravitational parameter mass*g, zero for test bodies.
func (p PointMass) Mu(g float64) float64 {
	if p.Kind != Gravitating {
		return 0
	}
	return p.Mass * g
}

// Validate rejects unknown kinds and non-positive gravitating masses.
func (p PointMass) Validate() error {
	switch p.Kind {
	case Gravitating:
		if p.Mass <= 0 || math.IsNaN(p.Mass) || math.IsInf(p.Mass, 0) {
			return fmt.Errorf("mass %g: %w", p.Mass, dynamo.ErrInvalidMass)
		}
	case Test:
	default:
		return fmt.Errorf("%v: %w", p.Kind, dynamo.ErrInvalidMass)
	}
	return nil
}

// Color is a packed 0xRRGGBB value.
type Color uint32

const White Color = 0xffffff

// RGB packs unit-range channels.
func RGB(r, g, b float64) Color {
	ch := func(v float64) Color { return Color(dynamo.Clamp(v, 0, 1)*255 + 0.5) }
	return ch(r)<<16 | ch(g)<<8 | ch(b)
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

// ParseColor is the inverse of Hex.
func ParseColor(s string) (Color, error) {
	var v uint32
	if _, err := fmt.Sscanf(s, "#%06x", &v); err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return Color(v), nil
}

// Appearance is read by renderers only.
type Appearance struct {
	Radius float64
	Color  Color
}

// Parent links a body to its scene root.
type Parent struct{ Root Entity }

// Root marks a scene container entity.
type Root struct{ Name string }

// Trail enables trail drawing. Length is the lifetime of coarse segments in
// simulated seconds; Resolution is the number of fine samples between them.
type Trail struct {
	Length     float64
	Resolution int
}

// NewTrail builds a trail flag.
func NewTrail(length float64, resolution int) Trail {
	return Trail{Length: length, Resolution: resolution}
}

// BodySpec is everything needed to create a body.
type BodySpec struct {
	Position dynamo.Vec
	Velocity dynamo.Vec
	Mass     PointMass
	Radius   float64
	Color    Color
	Trail    *Trail
}

// Body is a read-only snapshot of one body.
type Body struct {
	Position     dynamo.Vec
	Velocity     dynamo.Vec
	Acceleration dynamo.Vec
	Mass         PointMass
	Appearance   Appearance
	Trail        *Trail
}
