// Package integrators advances body positions and velocities.
//
// Steppers read only the acceleration slot that gravity writeback filled in
// earlier in the tick. They own position and velocity.
package integrators

import (
	"fmt"

	"github.com/san-kum/gravsim/internal/world"
)

type Stepper interface {
	Name() string
	Step(w *world.World, dt float64)
}

// Euler is the explicit (forward) Euler step: position uses the old velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(w *world.World, dt float64) {
	if dt == 0 {
		return
	}
	w.EachMotion(func(pos *world.Position, vel *world.Velocity, acc *world.Acceleration) {
		pos.V = pos.V.Add(vel.V.Mul(dt))
		vel.V = vel.V.Add(acc.V.Mul(dt))
	})
}

// SymplecticEuler kicks velocity first, then drifts with the new velocity.
// It is the default: orbits stay bounded where explicit Euler spirals out.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (s *SymplecticEuler) Name() string { return "symplectic" }

func (s *SymplecticEuler) Step(w *world.World, dt float64) {
	if dt == 0 {
		return
	}
	w.EachMotion(func(pos *world.Position, vel *world.Velocity, acc *world.Acceleration) {
		vel.V = vel.V.Add(acc.V.Mul(dt))
		pos.V = pos.V.Add(vel.V.Mul(dt))
	})
}

// DefaultName is the stepper used when none is configured.
const DefaultName = "symplectic"

// New returns the stepper registered under name.
func New(name string) (Stepper, error) {
	switch name {
	case "euler":
		return NewEuler(), nil
	case "symplectic", "":
		return NewSymplecticEuler(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

// Names lists the registered steppers.
func Names() []string {
	return []string{DefaultName, "euler"}
}
