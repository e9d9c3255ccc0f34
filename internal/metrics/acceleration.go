package metrics

import (
	"github.com/san-kum/gravsim/internal/world"
)

// MeanAcceleration averages |a| over bodies and observations.
type MeanAcceleration struct {
	name    string
	sum     float64
	samples int
}

func NewMeanAcceleration() *MeanAcceleration {
	return &MeanAcceleration{
		name: "mean_acceleration",
	}
}

func (m *MeanAcceleration) Name() string {
	return m.name
}

func (m *MeanAcceleration) Observe(w *world.World, t float64) {
	w.EachBody(func(_ world.Entity, b world.Body) {
		m.sum += b.Acceleration.Len()
		m.samples++
	})
}

func (m *MeanAcceleration) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanAcceleration) Reset() {
	m.sum = 0
	m.samples = 0
}
