package viz

import (
	"math"

	"github.com/san-kum/gravsim/internal/trails"
	"github.com/san-kum/gravsim/internal/world"
)

// drag is an in-progress body placement in dot coordinates.
type drag struct {
	startX, startY float64
	curX, curY     float64
}

// drawScene rasterizes trail segments, then bodies, then the placement drag.
func drawScene(c *Canvas, cam *Camera, w *world.World, segments []trails.Segment, d *drag) {
	c.Clear()
	sw, sh := c.SubWidth(), c.SubHeight()

	for _, seg := range segments {
		x0, y0 := cam.Project(seg.From, sw, sh)
		x1, y1 := cam.Project(seg.To, sw, sh)
		tint := TintFine
		if seg.Coarse {
			tint = TintCoarse
		}
		c.DrawSegment(x0, y0, x1, y1, tint)
	}

	w.EachBody(func(_ world.Entity, b world.Body) {
		x, y := cam.Project(b.Position, sw, sh)
		if x < -1 || y < -1 || x > float64(sw) || y > float64(sh) || math.IsNaN(x+y) {
			return
		}
		c.DrawDisc(int(math.Round(x)), int(math.Round(y)), math.Min(cam.Scale(b.Appearance.Radius), 8), TintBody)
	})

	if d != nil {
		c.DrawSegment(d.startX, d.startY, d.curX, d.curY, TintCursor)
		c.DrawDisc(int(d.startX), int(d.startY), 1, TintCursor)
	}
}

// sceneExtent is the largest distance of any body from the origin.
func sceneExtent(w *world.World) float64 {
	extent := 0.0
	w.EachBody(func(_ world.Entity, b world.Body) {
		if r := b.Position.Len(); r > extent && !math.IsInf(r, 0) {
			extent = r
		}
	})
	return extent
}
