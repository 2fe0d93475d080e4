package field_test

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/particlefield/internal/field"
)

type recording struct {
	width, height int
	clears        int
	circles       []circle
	lines         []line
	inks          map[string]int
}

type circle struct{ x, y, r, alpha float64 }

type line struct{ x0, y0, x1, y1, alpha float64 }

func (r *recording) Resize(w, h int) { r.width, r.height = w, h }

func (r *recording) Clear() {
	r.clears++
	r.circles = r.circles[:0]
	r.lines = r.lines[:0]
}

func (r *recording) FillCircle(x, y, rad float64, c colorful.Color, alpha float64) {
	r.ink(c)
	r.circles = append(r.circles, circle{x, y, rad, alpha})
}

func (r *recording) StrokeLine(x0, y0, x1, y1, _ float64, c colorful.Color, alpha float64) {
	r.ink(c)
	r.lines = append(r.lines, line{x0, y0, x1, y1, alpha})
}

func (r *recording) ink(c colorful.Color) {
	if r.inks == nil {
		r.inks = make(map[string]int)
	}
	r.inks[c.Hex()]++
}

var _ = Describe("Field", func() {
	var f *field.Field

	BeforeEach(func() {
		f = field.New(field.NewRand(42))
	})

	DescribeTable("point count follows viewport area and density",
		func(w, h, want int) {
			f.Seed(w, h)
			Expect(f.Points).To(HaveLen(want))
			Expect(field.PointCount(w, h)).To(Equal(want))
		},
		Entry("desktop 1920x1080", 1920, 1080, 138),
		Entry("mobile 400x800", 400, 800, 12),
		Entry("breakpoint uses desktop density", 768, 1024, 768*1024/15000),
		Entry("just below breakpoint", 767, 1024, 767*1024/25000),
		Entry("zero width", 0, 900, 0),
		Entry("zero height", 1200, 0, 0),
	)

	It("bounds the count for oversized viewports", func() {
		want := field.MaxSide * field.MaxSide / field.DesktopDensity
		Expect(field.PointCount(4000000000, 4000000000)).To(Equal(want))
		Expect(field.PointCount(field.MaxSide+1, 1)).To(Equal(field.PointCount(field.MaxSide, 1)))
	})

	It("picks the density divisor by width", func() {
		Expect(field.DensityDivisor(767)).To(Equal(25000))
		Expect(field.DensityDivisor(768)).To(Equal(15000))
	})

	It("generates points inside the viewport with bounded velocity", func() {
		f.Seed(1366, 768)
		for _, p := range f.Points {
			Expect(p.X).To(BeNumerically(">=", 0))
			Expect(p.X).To(BeNumerically("<", 1366))
			Expect(p.Y).To(BeNumerically(">=", 0))
			Expect(p.Y).To(BeNumerically("<", 768))
			Expect(math.Abs(p.VX)).To(BeNumerically("<=", 0.25))
			Expect(math.Abs(p.VY)).To(BeNumerically("<=", 0.25))
		}
	})

	It("reseeds rather than caching on repeated seeds", func() {
		f.Seed(1920, 1080)
		first := append([]field.Point(nil), f.Points...)
		f.Seed(1920, 1080)
		Expect(f.Points).To(HaveLen(len(first)))
		Expect(f.Points).NotTo(Equal(first))
	})

	Describe("boundary reflection", func() {
		It("flips vx once when crossing the left edge", func() {
			p := field.Point{X: 0.1, Y: 50, VX: -0.2}
			p.Advance(100, 100)
			Expect(p.X).To(BeNumerically("<", 0))
			Expect(p.VX).To(BeNumerically("~", 0.2, 1e-12))

			p.Advance(100, 100)
			Expect(p.X).To(BeNumerically(">=", 0))
			Expect(p.VX).To(BeNumerically("~", 0.2, 1e-12))
		})

		It("flips vy when crossing the bottom edge", func() {
			p := field.Point{X: 50, Y: 99.9, VY: 0.25}
			p.Advance(100, 100)
			Expect(p.Y).To(BeNumerically(">", 100))
			Expect(p.VY).To(Equal(-0.25))
		})

		It("does not clamp position", func() {
			p := field.Point{X: 99.95, Y: 50, VX: 0.1}
			p.Advance(100, 100)
			Expect(p.X).To(BeNumerically("~", 100.05, 1e-9))
		})

		It("does not flip again while returning from outside", func() {
			p := field.Point{X: -5, Y: 50, VX: 0.2}
			for i := 0; i < 10; i++ {
				p.Advance(100, 100)
				Expect(p.VX).To(Equal(0.2))
			}
		})
	})

	Describe("link alpha", func() {
		It("is maximal at zero distance", func() {
			a, ok := field.LinkAlpha(0)
			Expect(ok).To(BeTrue())
			Expect(a).To(Equal(field.MaxLinkAlpha))
		})

		It("is not drawn at exactly the threshold", func() {
			_, ok := field.LinkAlpha(150)
			Expect(ok).To(BeFalse())
		})

		It("is near zero just inside the threshold", func() {
			a, ok := field.LinkAlpha(149.999)
			Expect(ok).To(BeTrue())
			Expect(a).To(BeNumerically("~", 0.15/150000, 1e-9))
			Expect(a).To(BeNumerically(">", 0))
		})
	})

	Describe("Draw", func() {
		It("clears, draws every point and links close pairs", func() {
			Expect(f.Restore(1000, 1000, []field.Point{
				{X: 100, Y: 100},
				{X: 200, Y: 100},
				{X: 900, Y: 900},
			})).To(Succeed())

			s := &recording{}
			stats := f.Draw(s)

			Expect(s.clears).To(Equal(1))
			Expect(s.circles).To(HaveLen(3))
			for _, c := range s.circles {
				Expect(c.r).To(Equal(2.0))
				Expect(c.alpha).To(Equal(0.4))
			}
			Expect(s.lines).To(HaveLen(1))
			Expect(s.lines[0].alpha).To(BeNumerically("~", 0.15*(1-100.0/150), 1e-12))
			Expect(stats).To(Equal(field.FrameStats{Frame: 1, Points: 3, Links: 1}))
		})

		It("inks points and links in the accent", func() {
			f.Seed(1920, 1080)
			s := &recording{}
			stats := f.Draw(s)

			Expect(field.Accent.Hex()).To(Equal("#64ffda"))
			Expect(s.inks).To(Equal(map[string]int{"#64ffda": stats.Points + stats.Links}))
		})

		It("skips pairs exactly at the link distance", func() {
			Expect(f.Restore(1000, 1000, []field.Point{{X: 0, Y: 0}, {X: 150, Y: 0}})).To(Succeed())
			s := &recording{}
			Expect(f.Draw(s).Links).To(BeZero())
			Expect(s.lines).To(BeEmpty())
		})

		It("renders nothing for an empty field", func() {
			f.Seed(0, 0)
			s := &recording{}
			stats := f.Draw(s)
			Expect(stats.Points).To(BeZero())
			Expect(s.circles).To(BeEmpty())
		})

		It("advances positions every frame", func() {
			Expect(f.Restore(100, 100, []field.Point{{X: 10, Y: 10, VX: 0.25, VY: -0.25}})).To(Succeed())
			f.Draw(field.Discard)
			f.Draw(field.Discard)
			Expect(f.Points[0].X).To(BeNumerically("~", 10.5, 1e-12))
			Expect(f.Points[0].Y).To(BeNumerically("~", 9.5, 1e-12))
			Expect(f.Frame()).To(Equal(uint64(2)))
		})
	})

	Describe("Render", func() {
		It("draws current positions without advancing", func() {
			points := []field.Point{{X: 10, Y: 10, VX: 0.25}, {X: 60, Y: 10, VY: 0.25}}
			Expect(f.Restore(100, 100, points)).To(Succeed())

			s := &recording{}
			Expect(f.Render(s)).To(Equal(1))
			Expect(s.clears).To(Equal(1))
			Expect(s.circles).To(HaveLen(2))
			Expect(f.Points).To(Equal(points))
			Expect(f.Frame()).To(BeZero())
		})
	})

	Describe("Restore", func() {
		It("rejects negative dimensions", func() {
			Expect(f.Restore(-1, 10, nil)).To(MatchError(field.ErrDimensions))
		})

		It("rejects non-finite points", func() {
			err := f.Restore(10, 10, []field.Point{{X: math.NaN()}})
			Expect(err).To(MatchError(field.ErrInvalidPoint))
		})

		It("copies the given points", func() {
			pts := []field.Point{{X: 1, Y: 2}}
			Expect(f.Restore(10, 10, pts)).To(Succeed())
			pts[0].X = 9
			Expect(f.Points[0].X).To(Equal(1.0))
		})
	})
})
