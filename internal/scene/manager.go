package scene

import (
	"fmt"
	"math/rand"

	"k8s.io/klog/v2"

	"github.com/san-kum/gravsim/internal/world"
)

// Clearer is anything holding per-scene state that must be dropped on reload,
// such as the trail line buffer.
type Clearer interface {
	Clear()
}

// Report summarizes one reload.
type Report struct {
	Scene      string
	Generation uint64
	Despawned  int
	Spawned    int
}

// Manager applies committed scenes to the world.
type Manager struct {
	world    *world.World
	loaded   *Loaded
	rng      *rand.Rand
	clearers []Clearer
	seen     uint64
	reloads  int
}

func NewManager(w *world.World, loaded *Loaded, rng *rand.Rand, clearers ...Clearer) *Manager {
	return &Manager{world: w, loaded: loaded, rng: rng, clearers: clearers}
}

// Pending reports whether a commit has not been instantiated yet.
func (m *Manager) Pending() bool {
	return m.seen != m.loaded.Generation()
}

// Reloads counts completed reloads.
func (m *Manager) Reloads() int { return m.reloads }

// Update reloads when the committed scene changed since the last reload and
// is a no-op otherwise.
func (m *Manager) Update() (Report, bool, error) {
	if !m.Pending() {
		return Report{}, false, nil
	}
	r, err := m.Reload()
	return r, true, err
}

// Reload empties the scene root (creating it the first time), clears
// per-scene buffers and instantiates the committed descriptor under the root.
func (m *Manager) Reload() (Report, error) {
	r := Report{Scene: m.loaded.Name(), Generation: m.loaded.Generation()}

	if root, ok := m.loaded.LookupRoot(); ok && m.world.Alive(root) {
		r.Despawned = m.world.DespawnChildren(root)
	} else {
		m.loaded.setRoot(m.world.NewRoot("scene"))
	}
	for _, c := range m.clearers {
		c.Clear()
	}

	t := &rootTarget{world: m.world, root: m.loaded.Root()}
	err := m.loaded.instance(t, m.rng)
	r.Spawned = t.spawned

	// A failed instance still counts as seen, otherwise every tick would retry it.
	m.seen = r.Generation
	m.reloads++

	if err != nil {
		klog.ErrorS(err, "scene instantiation failed", "scene", r.Scene, "spawned", r.Spawned)
		return r, fmt.Errorf("instance %s: %w", r.Scene, err)
	}
	klog.V(1).InfoS("scene reloaded", "scene", r.Scene, "generation", r.Generation,
		"despawned", r.Despawned, "spawned", r.Spawned)
	return r, nil
}

type rootTarget struct {
	world   *world.World
	root    world.Entity
	spawned int
}

func (t *rootTarget) Spawn(spec world.BodySpec) (world.Entity, error) {
	e, err := t.world.Spawn(t.root, spec)
	if err == nil {
		t.spawned++
	}
	return e, err
}
