package metrics

import (
	"github.com/san-kum/gravsim/internal/world"
)

// Stability is the fraction of observations in which every body stayed
// within radius of the origin. Escapers and numerical blow-ups lower it.
type Stability struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewStability(radius float64) *Stability {
	return &Stability{
		name:   "stability",
		radius: radius,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w *world.World, t float64) {
	s.samples++
	r2 := s.radius * s.radius
	escaped := false
	w.EachBody(func(_ world.Entity, b world.Body) {
		if !escaped && !(b.Position.Dot(b.Position) <= r2) {
			escaped = true
		}
	})
	if escaped {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
