package integrators

// Clock scales simulated time. A paused clock has scale 0: forces are still
// computed each tick but positions and velocities do not move.
type Clock struct {
	scale   float64
	resume  float64
	elapsed float64
}

func NewClock() *Clock {
	return &Clock{scale: 1, resume: 1}
}

func (c *Clock) Scale() float64 { return c.scale }

// SetScale changes the running speed. Non-positive values pause.
func (c *Clock) SetScale(s float64) {
	if s <= 0 {
		c.Pause()
		return
	}
	c.scale = s
	c.resume = s
}

func (c *Clock) Paused() bool { return c.scale == 0 }

func (c *Clock) Pause() {
	if c.scale != 0 {
		c.resume = c.scale
	}
	c.scale = 0
}

func (c *Clock) Resume() {
	c.scale = c.resume
}

// Toggle flips pause state and reports whether the clock is now paused.
func (c *Clock) Toggle() bool {
	if c.Paused() {
		c.Resume()
	} else {
		c.Pause()
	}
	return c.Paused()
}

// Advance converts a wall-clock tick into simulated time.
func (c *Clock) Advance(dt float64) float64 {
	scaled := dt * c.scale
	c.elapsed += scaled
	return scaled
}

// Elapsed is the total simulated time.
func (c *Clock) Elapsed() float64 { return c.elapsed }
