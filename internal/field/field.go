package field

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Field is the set of animated points plus the viewport they live in.
// It is owned by a single frame loop and is not safe for concurrent use.
type Field struct {
	Width, Height int
	Points        []Point

	rng   *rand.Rand
	frame uint64
}

// NewRand returns a PCG generator for seed. A zero seed draws one from the clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

func New(rng *rand.Rand) *Field {
	if rng == nil {
		rng = NewRand(0)
	}
	return &Field{rng: rng}
}

func DensityDivisor(width int) int {
	if width < MobileBreakpoint {
		return MobileDensity
	}
	return DesktopDensity
}

// PointCount is the number of points seeded for a viewport. Sides beyond
// MaxSide count as MaxSide.
func PointCount(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	div := DensityDivisor(width)
	return (min(width, MaxSide) * min(height, MaxSide)) / div
}

// Seed discards every point and generates a fresh set sized for the viewport.
func (f *Field) Seed(width, height int) {
	f.Width, f.Height = width, height
	n := PointCount(width, height)
	points := make([]Point, n)
	w, h := float64(width), float64(height)
	for i := range points {
		points[i] = Point{
			X:  f.rng.Float64() * w,
			Y:  f.rng.Float64() * h,
			VX: (f.rng.Float64() - 0.5) * VelocitySpread,
			VY: (f.rng.Float64() - 0.5) * VelocitySpread,
		}
	}
	f.Points = points
}

// Restore replaces the field with previously captured points.
func (f *Field) Restore(width, height int, points []Point) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	for i, p := range points {
		if !p.finite() {
			return fmt.Errorf("%w: index %d", ErrInvalidPoint, i)
		}
	}
	f.Width, f.Height = width, height
	f.Points = append(f.Points[:0:0], points...)
	return nil
}

// Frame returns the number of frames drawn since the field was created.
func (f *Field) Frame() uint64 { return f.frame }

// Advance moves the point by one frame and reflects its velocity off the
// viewport edges. Position is never clamped; the reflection only fires
// while the point is still heading away from the viewport, so each
// crossing flips the sign exactly once.
func (p *Point) Advance(width, height float64) {
	p.X += p.VX
	p.Y += p.VY

	if (p.X < 0 && p.VX < 0) || (p.X > width && p.VX > 0) {
		p.VX = -p.VX
	}
	if (p.Y < 0 && p.VY < 0) || (p.Y > height && p.VY > 0) {
		p.VY = -p.VY
	}
}

func (p Point) finite() bool {
	for _, v := range [...]float64{p.X, p.Y, p.VX, p.VY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Distance is the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// LinkAlpha returns the stroke alpha for two points d apart. Pairs at or
// beyond LinkDistance are not linked.
func LinkAlpha(d float64) (float64, bool) {
	if d < LinkDistance {
		return MaxLinkAlpha * (1 - d/LinkDistance), true
	}
	return 0, false
}

// Step advances every point without drawing.
func (f *Field) Step() {
	w, h := float64(f.Width), float64(f.Height)
	for i := range f.Points {
		f.Points[i].Advance(w, h)
	}
	f.frame++
}

// Draw runs one frame tick: clear, advance and draw each point, then
// link every pair closer than LinkDistance.
func (f *Field) Draw(s Surface) FrameStats {
	s.Clear()

	w, h := float64(f.Width), float64(f.Height)
	for i := range f.Points {
		p := &f.Points[i]
		p.Advance(w, h)
		s.FillCircle(p.X, p.Y, PointRadius, Accent, PointAlpha)
	}

	links := f.drawLinks(s)

	f.frame++
	return FrameStats{Frame: f.frame, Points: len(f.Points), Links: links}
}

// Render draws the field at its current positions without advancing it
// and returns the number of links drawn.
func (f *Field) Render(s Surface) int {
	s.Clear()
	for _, p := range f.Points {
		s.FillCircle(p.X, p.Y, PointRadius, Accent, PointAlpha)
	}
	return f.drawLinks(s)
}

func (f *Field) drawLinks(s Surface) int {
	return f.eachLink(func(a, b Point, alpha float64) {
		s.StrokeLine(a.X, a.Y, b.X, b.Y, LineWidth, Accent, alpha)
	})
}

// Links counts the pairs that would be linked at the current positions.
func (f *Field) Links() int {
	return f.eachLink(func(Point, Point, float64) {})
}

func (f *Field) eachLink(fn func(a, b Point, alpha float64)) int {
	n := 0
	for i := 0; i < len(f.Points); i++ {
		a := f.Points[i]
		for j := i + 1; j < len(f.Points); j++ {
			b := f.Points[j]
			if alpha, ok := LinkAlpha(Distance(a, b)); ok {
				fn(a, b, alpha)
				n++
			}
		}
	}
	return n
}
