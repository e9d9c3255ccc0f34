package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Tint classifies what was drawn into a cell. A cell keeps the highest tint
// drawn into it, so bodies stay visible over trails.
type Tint uint8

const (
	TintNone Tint = iota
	TintFine
	TintCoarse
	TintBody
	TintCursor
)

type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Tints         [][]Tint
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Tints:  make([][]Tint, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Tints[i] = make([]Tint, w)
	}
	c.Clear()
	return c
}

// SubWidth and SubHeight give the canvas size in dots.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

// Set sets the dot at (x, y) in sub-pixel coordinates.
func (c *Canvas) Set(x, y int) { c.Plot(x, y, TintNone) }

// Plot sets a dot and raises the cell's tint to at least t.
func (c *Canvas) Plot(x, y int, t Tint) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if t > c.Tints[row][col] {
		c.Tints[row][col] = t
	}
}

// Unset clears a dot.
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Tints[i][j] = TintNone
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm. Callers with
// unbounded endpoints should use DrawSegment, which clips first.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, t Tint) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Plot(x0, y0, t)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawSegment clips a segment in dot coordinates to the canvas
// (Liang-Barsky) and rasterizes what is left.
func (c *Canvas) DrawSegment(x0, y0, x1, y1 float64, t Tint) {
	for _, v := range [...]float64{x0, y0, x1, y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
	}
	maxX, maxY := float64(c.SubWidth()-1), float64(c.SubHeight()-1)
	dx, dy := x1-x0, y1-y0
	lo, hi := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > hi {
				return false
			}
			if r > lo {
				lo = r
			}
		} else {
			if r < lo {
				return false
			}
			if r < hi {
				hi = r
			}
		}
		return true
	}
	if !clip(-dx, x0) || !clip(dx, maxX-x0) || !clip(-dy, y0) || !clip(dy, maxY-y0) {
		return
	}
	c.DrawLine(
		int(x0+lo*dx+0.5), int(y0+lo*dy+0.5),
		int(x0+hi*dx+0.5), int(y0+hi*dy+0.5),
		t,
	)
}

// DrawDisc fills a disc of radius r dots; anything smaller than a dot is a
// single dot.
func (c *Canvas) DrawDisc(cx, cy int, r float64, t Tint) {
	if r < 1 {
		c.Plot(cx, cy, t)
		return
	}
	ri := int(r + 0.5)
	r2 := r * r
	for y := -ri; y <= ri; y++ {
		for x := -ri; x <= ri; x++ {
			if float64(x*x+y*y) <= r2 {
				c.Plot(cx+x, cy+y, t)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render styles runs of equally tinted cells with styles[tint].
func (c *Canvas) Render(styles map[Tint]lipgloss.Style) string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Tints[i][j] == c.Tints[i][start] {
				continue
			}
			run := string(row[start:j])
			if st, ok := styles[c.Tints[i][start]]; ok {
				run = st.Render(run)
			}
			b.WriteString(run)
			start = j
		}
		b.WriteString("\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
