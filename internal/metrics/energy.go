package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/world"
)

// Snapshot is the mechanical state of the gravitating population.
// Test bodies carry no mass and contribute nothing.
type Snapshot struct {
	Kinetic   float64
	Potential float64
	Momentum  dynamo.Vec
	Bodies    int
	Massive   int
}

func (s Snapshot) Total() float64 { return s.Kinetic + s.Potential }

type massBody struct {
	pos  dynamo.Vec
	vel  dynamo.Vec
	mass float64
}

// Measure computes kinetic and potential energy and linear momentum. The
// potential uses the same softening as the force sum so that the two agree.
func Measure(w *world.World, g, softening float64) Snapshot {
	var s Snapshot
	var massive []massBody
	w.EachBody(func(_ world.Entity, b world.Body) {
		s.Bodies++
		if b.Mass.Kind != world.Gravitating {
			return
		}
		m := b.Mass.Mass
		massive = append(massive, massBody{pos: b.Position, vel: b.Velocity, mass: m})
		s.Kinetic += 0.5 * m * b.Velocity.Dot(b.Velocity)
		s.Momentum = s.Momentum.Add(b.Velocity.Mul(m))
	})
	s.Massive = len(massive)

	eps2 := softening * softening
	for i := range massive {
		for j := i + 1; j < len(massive); j++ {
			d := massive[j].pos.Sub(massive[i].pos)
			r2 := d.Dot(d) + eps2
			if r2 == 0 {
				continue
			}
			s.Potential -= g * massive[i].mass * massive[j].mass / math.Sqrt(r2)
		}
	}
	return s
}

// EnergyDrift tracks the largest relative deviation of total energy from
// the first observation.
type EnergyDrift struct {
	name      string
	g         float64
	softening float64
	initial   float64
	current   float64
	maxDrift  float64
	samples   int
}

func NewEnergyDrift(g, softening float64) *EnergyDrift {
	return &EnergyDrift{
		name:      "energy_drift",
		g:         g,
		softening: softening,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(w *world.World, t float64) {
	energy := Measure(w, e.g, e.softening).Total()

	if e.samples == 0 {
		e.initial = energy
	}
	e.current = energy
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

// Current is the total energy at the last observation.
func (e *EnergyDrift) Current() float64 { return e.current }

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.current = 0
	e.maxDrift = 0
	e.samples = 0
}
