package scene

import (
	"math/rand"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/world"
)

// Loaded is the scene that is (or is about to be) live, together with the
// root entity its bodies are attached to. Every Load bumps the generation;
// the manager compares generations to decide whether a reload is due.
type Loaded struct {
	scene      Descriptor
	root       world.Entity
	hasRoot    bool
	generation uint64
}

// NewLoaded starts with d pending, so the first reload instantiates it.
func NewLoaded(d Descriptor) *Loaded {
	if d == nil {
		d = Empty{}
	}
	return &Loaded{scene: d.Clone(), generation: 1}
}

// Load commits a copy of d. Later edits to d do not affect the live scene.
func (l *Loaded) Load(d Descriptor) {
	l.scene = d.Clone()
	l.generation++
}

func (l *Loaded) Generation() uint64 { return l.generation }

func (l *Loaded) Name() string { return l.scene.Name() }

// Scene returns a copy of the committed descriptor, suitable as an edit draft.
func (l *Loaded) Scene() Descriptor { return l.scene.Clone() }

func (l *Loaded) Params() []dynamo.Param { return l.scene.Params() }

func (l *Loaded) Spawnable() Spawnable { return l.scene.Spawnable() }

func (l *Loaded) MaxSpawnableMass() float64 { return l.scene.Spawnable().MaxSpawnableMass() }

// Root returns the scene root. It panics before the first instantiation;
// use LookupRoot where that is reachable.
func (l *Loaded) Root() world.Entity {
	if !l.hasRoot {
		panic("scene: root requested before first instantiation")
	}
	return l.root
}

func (l *Loaded) LookupRoot() (world.Entity, bool) {
	return l.root, l.hasRoot
}

func (l *Loaded) setRoot(root world.Entity) {
	l.root = root
	l.hasRoot = true
}

func (l *Loaded) instance(t Target, rng *rand.Rand) error {
	return l.scene.Instance(t, rng)
}
