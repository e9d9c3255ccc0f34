package sim

import (
	"time"

	"github.com/san-kum/gravsim/internal/world"
)

// Metric is sampled once per tick after integration.
type Metric interface {
	Name() string
	Observe(w *world.World, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every tick.
type Observer interface {
	OnTick(w *world.World, r Report)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(w *world.World, r Report)

func (f ObserverFunc) OnTick(w *world.World, r Report) { f(w, r) }

// Report describes one tick.
type Report struct {
	Tick     int
	Elapsed  float64
	Dt       float64
	Paused   bool
	Reloaded bool
	Scene    string
	Spawned  int

	Bodies     int
	Sources    int
	Applied    int
	Stale      int
	Degenerate int

	FineSegments   int
	CoarseSegments int
	TrailEntries   int
	Segments       int

	Duration time.Duration
}

// Result summarizes a headless run.
type Result struct {
	Scene      string
	Ticks      int
	Elapsed    float64
	Bodies     int
	Energy     []float64
	Metrics    map[string]float64
	StaleTotal int
}
