package viz

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Raster is an RGBA drawing surface with source-over blending. One
// image pixel is one viewport pixel.
type Raster struct {
	img        *image.RGBA
	background color.RGBA
}

// NewRaster creates a raster cleared to bg. A zero bg is transparent.
func NewRaster(width, height int, bg color.RGBA) *Raster {
	r := &Raster{background: bg}
	r.Resize(width, height)
	return r
}

func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
	r.Clear()
}

func (r *Raster) Clear() {
	pix := r.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = r.background.R
		pix[i+1] = r.background.G
		pix[i+2] = r.background.B
		pix[i+3] = r.background.A
	}
}

// FillCircle draws an anti-aliased disc.
func (r *Raster) FillCircle(x, y, rad float64, c colorful.Color, alpha float64) {
	b := r.img.Bounds()
	x0 := max(int(math.Floor(x-rad-1)), b.Min.X)
	x1 := min(int(math.Ceil(x+rad+1)), b.Max.X-1)
	y0 := max(int(math.Floor(y-rad-1)), b.Min.Y)
	y1 := min(int(math.Ceil(y+rad+1)), b.Max.Y-1)

	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			d := math.Hypot(float64(px)+0.5-x, float64(py)+0.5-y)
			cover := clamp01(rad + 0.5 - d)
			if cover > 0 {
				r.blend(px, py, c, alpha*cover)
			}
		}
	}
}

// StrokeLine draws the segment with Bresenham's walk between the pixels
// holding its endpoints, so every pixel along the major axis is covered
// exactly once. Width is rounded to whole pixels.
func (r *Raster) StrokeLine(x0, y0, x1, y1, width float64, c colorful.Color, alpha float64) {
	ax, ay := int(math.Floor(x0)), int(math.Floor(y0))
	bx, by := int(math.Floor(x1)), int(math.Floor(y1))
	half := int(math.Max(width, 1)) / 2

	dx, dy := absInt(bx-ax), absInt(by-ay)
	horizontal := dx >= dy
	sx, sy := 1, 1
	if bx < ax {
		sx = -1
	}
	if by < ay {
		sy = -1
	}
	err := dx - dy
	for {
		for o := -half; o <= half; o++ {
			if horizontal {
				r.blend(ax, ay+o, c, alpha)
			} else {
				r.blend(ax+o, ay, c, alpha)
			}
		}
		if ax == bx && ay == by {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			ax += sx
		}
		if e2 < dx {
			err += dx
			ay += sy
		}
	}
}

func (r *Raster) blend(x, y int, c colorful.Color, alpha float64) {
	if !(image.Point{X: x, Y: y}).In(r.img.Bounds()) {
		return
	}
	alpha = clamp01(alpha)
	i := r.img.PixOffset(x, y)
	p := r.img.Pix[i : i+4 : i+4]

	sr, sg, sb := c.Clamped().RGB255()
	da := float64(p[3]) / 255
	oa := alpha + da*(1-alpha)
	if oa == 0 {
		return
	}
	mix := func(s uint8, d uint8) uint8 {
		v := (float64(s)*alpha + float64(d)*da*(1-alpha)) / oa
		return uint8(math.Round(v))
	}
	p[0] = mix(sr, p[0])
	p[1] = mix(sg, p[1])
	p[2] = mix(sb, p[2])
	p[3] = uint8(math.Round(oa * 255))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
