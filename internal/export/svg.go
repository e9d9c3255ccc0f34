// Package export renders body snapshots for use outside the terminal.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/gravsim/internal/world"
)

const padding = 0.1

// SnapshotSVG draws bodies as discs on a size x size canvas, y up. The view
// is fitted to the bodies with a 10% margin on each side; bodies smaller than
// half a pixel are drawn at that size. Test bodies are drawn hollow.
func SnapshotSVG(out io.Writer, bodies []world.BodySpec, size int) error {
	if size <= 0 {
		return fmt.Errorf("export: size must be positive, got %d", size)
	}

	minX, maxX, minY, maxY := bounds(bodies)
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	span *= 1 + 2*padding
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	scale := float64(size) / span

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size)

	half := float64(size) / 2
	for _, b := range bodies {
		x := half + (b.Position.X()-cx)*scale
		y := half - (b.Position.Y()-cy)*scale
		r := math.Max(b.Radius*scale, 0.5)
		if b.Mass.Kind == world.Gravitating {
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", x, y, r, b.Color.Hex())
		} else {
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"none\" stroke=\"%s\"/>\n", x, y, r, b.Color.Hex())
		}
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(out, sb.String())
	return err
}

func bounds(bodies []world.BodySpec) (minX, maxX, minY, maxY float64) {
	if len(bodies) == 0 {
		return -1, 1, -1, 1
	}
	minX, maxX = bodies[0].Position.X(), bodies[0].Position.X()
	minY, maxY = bodies[0].Position.Y(), bodies[0].Position.Y()
	for _, b := range bodies[1:] {
		minX = math.Min(minX, b.Position.X())
		maxX = math.Max(maxX, b.Position.X())
		minY = math.Min(minY, b.Position.Y())
		maxY = math.Max(maxY, b.Position.Y())
	}
	return
}
