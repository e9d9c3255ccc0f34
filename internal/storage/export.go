package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/gravsim/internal/world"
)

type ExportBody struct {
	Position     [3]float64 `json:"position"`
	Velocity     [3]float64 `json:"velocity"`
	Kind         string     `json:"kind"`
	Mass         float64    `json:"mass,omitempty"`
	Radius       float64    `json:"radius"`
	Color        string     `json:"color"`
	TrailLength  float64    `json:"trail_length,omitempty"`
	TrailSamples int        `json:"trail_resolution,omitempty"`
}

type ExportData struct {
	Metadata Metadata     `json:"metadata"`
	Bodies   []ExportBody `json:"bodies"`
}

// ExportJSON writes a run and its bodies as one indented JSON document.
func ExportJSON(out io.Writer, meta Metadata, bodies []world.BodySpec) error {
	data := ExportData{
		Metadata: meta,
		Bodies:   make([]ExportBody, len(bodies)),
	}
	for i, b := range bodies {
		eb := ExportBody{
			Position: [3]float64(b.Position),
			Velocity: [3]float64(b.Velocity),
			Kind:     b.Mass.Kind.String(),
			Mass:     b.Mass.Mass,
			Radius:   b.Radius,
			Color:    b.Color.Hex(),
		}
		if b.Trail != nil {
			eb.TrailLength = b.Trail.Length
			eb.TrailSamples = b.Trail.Resolution
		}
		data.Bodies[i] = eb
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
