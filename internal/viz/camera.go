package viz

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/san-kum/gravsim/internal/dynamo"
)

const (
	minZoom = 1e-4
	maxZoom = 1e3
)

// Camera maps the simulation plane onto canvas dots. Pan and zoom move a
// target; the visible values follow it on critically damped springs.
type Camera struct {
	X, Y, Zoom float64

	targetX, targetY, targetZoom float64
	velX, velY, velZoom          float64
	spring                       harmonica.Spring
}

func NewCamera(fps int) *Camera {
	return &Camera{
		Zoom:       1,
		targetZoom: 1,
		spring:     harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Update advances the springs by one frame.
func (c *Camera) Update() {
	c.X, c.velX = c.spring.Update(c.X, c.velX, c.targetX)
	c.Y, c.velY = c.spring.Update(c.Y, c.velY, c.targetY)
	c.Zoom, c.velZoom = c.spring.Update(c.Zoom, c.velZoom, c.targetZoom)
	if c.Zoom < minZoom {
		c.Zoom = minZoom
	}
}

// Snap jumps to the target immediately.
func (c *Camera) Snap() {
	c.X, c.Y, c.Zoom = c.targetX, c.targetY, c.targetZoom
	c.velX, c.velY, c.velZoom = 0, 0, 0
}

// Pan moves the target by a fraction of the visible extent.
func (c *Camera) Pan(fx, fy float64, w, h int) {
	c.targetX += fx * float64(w) / c.targetZoom
	c.targetY += fy * float64(h) / c.targetZoom
}

func (c *Camera) ZoomBy(f float64) {
	c.targetZoom = dynamo.Clamp(c.targetZoom*f, minZoom, maxZoom)
}

// Fit centers on the origin and zooms so that a disc of the given radius fills
// the smaller canvas dimension.
func (c *Camera) Fit(radius float64, w, h int) {
	c.targetX, c.targetY = 0, 0
	if radius <= 0 || w <= 0 || h <= 0 {
		c.targetZoom = 1
		return
	}
	c.targetZoom = dynamo.Clamp(0.45*float64(min(w, h))/radius, minZoom, maxZoom)
}

// Project converts a world position into dot coordinates on a w x h canvas.
// Y grows upward in the world and downward on screen.
func (c *Camera) Project(p dynamo.Vec, w, h int) (float64, float64) {
	return float64(w)/2 + (p.X()-c.X)*c.Zoom,
		float64(h)/2 - (p.Y()-c.Y)*c.Zoom
}

// Unproject is the inverse of Project.
func (c *Camera) Unproject(x, y float64, w, h int) dynamo.Vec {
	return dynamo.V2(
		c.X+(x-float64(w)/2)/c.Zoom,
		c.Y-(y-float64(h)/2)/c.Zoom,
	)
}

// Scale converts a world length into dots.
func (c *Camera) Scale(l float64) float64 { return math.Abs(l) * c.Zoom }
