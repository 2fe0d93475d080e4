package field

import (
	"github.com/lucasb-eyer/go-colorful"
)

const (
	// MobileBreakpoint is the viewport width below which the coarser density applies.
	MobileBreakpoint = 768
	MobileDensity    = 25000
	DesktopDensity   = 15000

	// VelocitySpread is the width of the uniform velocity range, centred on zero.
	VelocitySpread = 0.5

	PointRadius  = 2.0
	PointAlpha   = 0.4
	LinkDistance = 150.0
	MaxLinkAlpha = 0.15
	LineWidth    = 1.0

	// MaxSide bounds each viewport side when counting points.
	MaxSide = 1 << 15
)

// Accent is the ink used for points and links.
var Accent = colorful.Color{R: 100.0 / 255, G: 1, B: 218.0 / 255}

type Point struct {
	X, Y   float64
	VX, VY float64
}

// Surface is a 2D drawing context. Implementations keep their backing
// store at exactly the logical size passed to Resize.
type Surface interface {
	Resize(width, height int)
	Clear()
	FillCircle(x, y, r float64, c colorful.Color, alpha float64)
	StrokeLine(x0, y0, x1, y1, width float64, c colorful.Color, alpha float64)
}

type FrameStats struct {
	Frame  uint64
	Points int
	Links  int
}

// Discard is a Surface that draws nothing.
var Discard Surface = discard{}

type discard struct{}

func (discard) Resize(int, int) {}

func (discard) Clear() {}

func (discard) FillCircle(float64, float64, float64, colorful.Color, float64) {}

func (discard) StrokeLine(float64, float64, float64, float64, float64, colorful.Color, float64) {}
