package viz

import (
	"strings"

	"github.com/san-kum/ddrfluid/internal/fluid"
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

const brailleBlank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
	return c
}

// PixelSize is the canvas size in sub-pixels.
func (c *Canvas) PixelSize() (int, int) { return c.Width * 2, c.Height * 4 }

// Set sets a pixel at (x, y) in sub-pixel coordinates, y down.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the sub-pixel at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

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
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
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
		c.Set(x0, y0)
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

// DrawBox outlines the canvas edge.
func (c *Canvas) DrawBox() {
	cw, ch := c.PixelSize()
	c.DrawLine(0, 0, cw-1, 0)
	c.DrawLine(0, ch-1, cw-1, ch-1)
	c.DrawLine(0, 0, 0, ch-1)
	c.DrawLine(cw-1, 0, cw-1, ch-1)
}

// toPixel maps normalised coordinates (y up) to sub-pixels (y down).
func (c *Canvas) toPixel(u, v float64) (int, int) {
	cw, ch := c.PixelSize()
	return int(u * float64(cw-1)), ch - 1 - int(v*float64(ch-1))
}

// DrawParticles plots one dot per particle in a worldW x worldH box.
func (c *Canvas) DrawParticles(particles []fluid.ParticleState, worldW, worldH float64) {
	for _, p := range particles {
		c.Set(c.toPixel(p.Position.X/worldW, p.Position.Y/worldH))
	}
}

// Metaball field constants in normalised world units.
const (
	MetaballRadius    = 0.01
	MetaballThreshold = 1.0
)

// DrawMetaballs lights every sub-pixel whose field Σ r²/d² over the packed
// positions exceeds threshold. packed holds (x, y) pairs in [0, 1].
func (c *Canvas) DrawMetaballs(packed []float32, radius, threshold float64) {
	cw, ch := c.PixelSize()
	r2 := radius * radius
	for py := 0; py < ch; py++ {
		v := 1 - (float64(py)+0.5)/float64(ch)
		for px := 0; px < cw; px++ {
			u := (float64(px) + 0.5) / float64(cw)
			var field float64
			for i := 0; i+1 < len(packed); i += 2 {
				dx := u - float64(packed[i])
				dy := v - float64(packed[i+1])
				d2 := dx*dx + dy*dy
				if d2 == 0 {
					field = threshold + 1
					break
				}
				field += r2 / d2
				if field > threshold {
					break
				}
			}
			if field > threshold {
				c.Set(px, py)
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

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
