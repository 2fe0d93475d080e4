package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
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

const (
	blank = 0x2800

	// DefaultCellWidth and DefaultCellHeight are the viewport pixels covered
	// by one terminal cell.
	DefaultCellWidth  = 8
	DefaultCellHeight = 16

	// DefaultGain lifts faint link alphas into a visible shade.
	DefaultGain = 2.5

	inkLevels = 8
)

type ink struct {
	color colorful.Color
	alpha float64
}

// Canvas is a braille drawing surface. Width and Height count terminal
// cells; each cell holds 2x4 dots and spans CellWidth x CellHeight
// viewport pixels.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	cellW, cellH int
	ink          [][]ink

	// Gain scales ink alpha before it is mapped to a cell color, so faint
	// links stay visible on a terminal.
	gain float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{cellW: DefaultCellWidth, cellH: DefaultCellHeight, gain: DefaultGain}
	c.alloc(w, h)
	return c
}

// SetCellSize changes how many viewport pixels one cell covers.
func (c *Canvas) SetCellSize(w, h int) {
	if w > 0 {
		c.cellW = w
	}
	if h > 0 {
		c.cellH = h
	}
}

func (c *Canvas) CellSize() (int, int) { return c.cellW, c.cellH }

func (c *Canvas) Gain() float64 { return c.gain }

// SetGain sets the alpha multiplier used when coloring cells. Zero or
// negative values are ignored.
func (c *Canvas) SetGain(g float64) {
	if g > 0 {
		c.gain = g
	}
}

func (c *Canvas) alloc(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c.Width, c.Height = w, h
	c.Grid = make([][]rune, h)
	c.ink = make([][]ink, h)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.ink[i] = make([]ink, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// Resize sizes the grid to cover a viewport of the given pixel size.
func (c *Canvas) Resize(width, height int) {
	c.alloc(ceilDiv(width, c.cellW), ceilDiv(height, c.cellH))
}

// mark sets the dot at (x, y) in dot coordinates, Width*2 by Height*4,
// and keeps the stronger of the cell's ink and in.
func (c *Canvas) mark(x, y int, in ink) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if in.alpha > c.ink[row][col].alpha {
		c.ink[row][col] = in
	}
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.ink[i][j] = ink{}
		}
	}
}

// dot converts viewport pixels to dot coordinates.
func (c *Canvas) dot(x, y float64) (int, int) {
	return int(math.Floor(x * 2 / float64(c.cellW))), int(math.Floor(y * 4 / float64(c.cellH)))
}

// FillCircle marks every dot whose centre lies inside the disc, or the
// centre dot when the disc is smaller than one dot.
func (c *Canvas) FillCircle(x, y, r float64, col colorful.Color, alpha float64) {
	in := ink{color: col, alpha: alpha}
	cx, cy := c.dot(x, y)
	c.mark(cx, cy, in)

	rx := r * 2 / float64(c.cellW)
	ry := r * 4 / float64(c.cellH)
	if rx < 1 && ry < 1 {
		return
	}
	for dy := -int(ry); dy <= int(ry); dy++ {
		for dx := -int(rx); dx <= int(rx); dx++ {
			nx, ny := float64(dx)/math.Max(rx, 1), float64(dy)/math.Max(ry, 1)
			if nx*nx+ny*ny <= 1 {
				c.mark(cx+dx, cy+dy, in)
			}
		}
	}
}

// StrokeLine rasterizes the segment in dot space. Width is ignored; a
// dot is the thinnest line a terminal can show.
func (c *Canvas) StrokeLine(x0, y0, x1, y1, _ float64, col colorful.Color, alpha float64) {
	ax, ay := c.dot(x0, y0)
	bx, by := c.dot(x1, y1)
	c.line(ax, ay, bx, by, ink{color: col, alpha: alpha})
}

// line walks from (x0, y0) to (x1, y1) with Bresenham's algorithm.
func (c *Canvas) line(x0, y0, x1, y1 int, in ink) {
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
		c.mark(x0, y0, in)
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

// Alpha returns the strongest ink alpha drawn into a cell.
func (c *Canvas) Alpha(col, row int) float64 {
	if row < 0 || row >= c.Height || col < 0 || col >= c.Width {
		return 0
	}
	return c.ink[row][col].alpha
}

// String returns the dots without color, one line per row.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render colors each cell by blending its ink over the theme background.
// Adjacent cells with the same shade share one style run.
func (c *Canvas) Render(t Theme) string {
	paper := t.Paper()
	bg := lipgloss.NewStyle().Background(t.Background)

	var b strings.Builder
	var run strings.Builder
	for r, row := range c.Grid {
		level := -1
		var shade, runInk colorful.Color
		flush := func() {
			if run.Len() == 0 {
				return
			}
			style := bg
			if level > 0 {
				style = bg.Foreground(lipgloss.Color(shade.Hex()))
			}
			b.WriteString(style.Render(run.String()))
			run.Reset()
		}
		for col, ch := range row {
			in := c.ink[r][col]
			l := c.level(in.alpha)
			if ch == blank {
				l = 0
			}
			if l != level || (l > 0 && in.color != runInk) {
				flush()
				level, runInk = l, in.color
				shade = paper.BlendRgb(in.color, float64(l)/inkLevels).Clamped()
			}
			run.WriteRune(ch)
		}
		flush()
		if r < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (c *Canvas) level(alpha float64) int {
	l := int(math.Ceil(alpha * c.gain * inkLevels))
	if l > inkLevels {
		l = inkLevels
	}
	if l < 0 {
		l = 0
	}
	return l
}

func ceilDiv(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
