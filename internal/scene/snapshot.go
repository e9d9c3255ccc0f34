package scene

import (
	"math/rand"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/world"
)

// Snapshot replays a saved body list verbatim.
type Snapshot struct {
	name   string
	bodies []world.BodySpec
}

func NewSnapshot(name string, bodies []world.BodySpec) *Snapshot {
	return &Snapshot{name: name, bodies: bodies}
}

func (s *Snapshot) Name() string           { return s.name }
func (s *Snapshot) Params() []dynamo.Param { return nil }
func (s *Snapshot) Len() int               { return len(s.bodies) }

func (s *Snapshot) SetParam(name string, value float64) error {
	_, err := setParam(s, name, value)
	return err
}

func (s *Snapshot) Spawnable() Spawnable { return Empty{}.Spawnable() }

func (s *Snapshot) Clone() Descriptor {
	c := &Snapshot{name: s.name, bodies: make([]world.BodySpec, len(s.bodies))}
	for i, b := range s.bodies {
		if b.Trail != nil {
			tr := *b.Trail
			b.Trail = &tr
		}
		c.bodies[i] = b
	}
	return c
}

func (s *Snapshot) Instance(t Target, _ *rand.Rand) error {
	for _, b := range s.bodies {
		if _, err := t.Spawn(b); err != nil {
			return err
		}
	}
	return nil
}
