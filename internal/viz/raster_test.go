package viz

import (
	"image/color"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/particlefield/internal/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRasterBackingStoreMatchesViewport(t *testing.T) {
	r := NewRaster(10, 10, color.RGBA{})
	r.Resize(320, 200)
	b := r.Image().Bounds()
	assert.Equal(t, 320, b.Dx())
	assert.Equal(t, 200, b.Dy())
}

func TestRasterClearUsesBackground(t *testing.T) {
	bg := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	r := NewRaster(4, 4, bg)
	r.FillCircle(2, 2, 2, field.Accent, 1)
	r.Clear()
	assert.Equal(t, bg, r.Image().RGBAAt(2, 2))
}

func TestRasterFillCircleAlpha(t *testing.T) {
	r := NewRaster(20, 20, color.RGBA{})
	r.FillCircle(10, 10, field.PointRadius, field.Accent, field.PointAlpha)

	centre := r.Image().RGBAAt(10, 10)
	assert.Equal(t, uint8(102), centre.A, "alpha 0.4 over transparent")
	cr, cg, cb := field.Accent.RGB255()
	assert.Equal(t, color.RGBA{R: cr, G: cg, B: cb, A: 102}, centre)

	assert.Zero(t, r.Image().RGBAAt(0, 0).A, "far pixels untouched")
}

func TestRasterBlendOverOpaque(t *testing.T) {
	r := NewRaster(3, 3, color.RGBA{A: 255})
	white := colorful.Color{R: 1, G: 1, B: 1}
	r.blend(1, 1, white, 0.5)

	got := r.Image().RGBAAt(1, 1)
	assert.Equal(t, uint8(255), got.A)
	assert.InDelta(t, 128, int(got.R), 1)
}

func TestRasterStrokeLine(t *testing.T) {
	r := NewRaster(50, 10, color.RGBA{})
	r.StrokeLine(0, 5, 49, 5, 1, field.Accent, 0.15)

	for x := 0; x < 50; x++ {
		require.NotZero(t, r.Image().RGBAAt(x, 5).A, "pixel %d", x)
	}
	assert.Zero(t, r.Image().RGBAAt(10, 0).A)
}

func TestRasterStrokeLineCoversEveryColumnOnce(t *testing.T) {
	r := NewRaster(50, 50, color.RGBA{})
	r.StrokeLine(0, 0, 49, 2, 1, field.Accent, 0.15)

	want := uint8(math.Round(0.15 * 255))
	for x := 0; x < 50; x++ {
		var hits int
		for y := 0; y < 50; y++ {
			if a := r.Image().RGBAAt(x, y).A; a != 0 {
				hits++
				assert.Equal(t, want, a, "column %d blended more than once", x)
			}
		}
		require.Equal(t, 1, hits, "column %d", x)
	}

	steep := NewRaster(10, 50, color.RGBA{})
	steep.StrokeLine(9.7, 49.2, 0.1, 0.4, 1, field.Accent, 0.15)
	for y := 0; y < 50; y++ {
		var hits int
		for x := 0; x < 10; x++ {
			if steep.Image().RGBAAt(x, y).A != 0 {
				hits++
			}
		}
		require.Equal(t, 1, hits, "row %d", y)
	}
}

func TestRasterIgnoresOutOfBounds(t *testing.T) {
	r := NewRaster(5, 5, color.RGBA{})
	assert.NotPanics(t, func() {
		r.FillCircle(-10, -10, 2, field.Accent, 0.4)
		r.StrokeLine(-100, -100, 100, 100, 1, field.Accent, 0.1)
		r.FillCircle(4.9, 4.9, 2, field.Accent, 0.4)
	})
}

func TestMultiSurface(t *testing.T) {
	a := NewCanvas(1, 1)
	b := NewRaster(1, 1, color.RGBA{})
	m := Multi(a)
	m.Add(b)
	require.Equal(t, 2, m.Len())

	m.Resize(80, 32)
	assert.Equal(t, 10, a.Width)
	assert.Equal(t, 80, b.Image().Bounds().Dx())

	m.FillCircle(4, 4, 2, field.Accent, 0.4)
	assert.NotZero(t, b.Image().RGBAAt(4, 4).A)
	assert.NotEqual(t, rune(blank), a.Grid[0][0])

	assert.True(t, m.Remove(b))
	assert.False(t, m.Remove(b))
	assert.Equal(t, 1, m.Len())
}

func TestThemes(t *testing.T) {
	assert.Equal(t, "dark", Toggle("light"))
	assert.Equal(t, "light", Toggle("dark"))
	assert.Equal(t, "light", Toggle("ocean"))

	assert.Equal(t, DefaultTheme, GetTheme("nope"))
	assert.True(t, HasTheme("sunset"))
	assert.False(t, HasTheme("nope"))
	assert.Len(t, ThemeNames(), len(Themes))

	r, g, b := ThemeDark.Paper().RGB255()
	assert.Equal(t, []uint8{0x0a, 0x19, 0x2f}, []uint8{r, g, b})
}

func TestHexOrFallsBack(t *testing.T) {
	white := colorful.Color{R: 1, G: 1, B: 1}
	assert.Equal(t, white, hexOr("not-a-color", white))
	assert.Equal(t, white, Theme{Background: "#zzz"}.Paper())
	assert.Equal(t, "#64ffda", hexOr("#64ffda", white).Hex())
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "───", SparklineChart(nil, 3))
	assert.Equal(t, "▁█", SparklineChart([]float64{1, 5, 9}, 2))
	assert.Equal(t, 4, len([]rune(SparklineChart([]float64{1, 2, 3, 4, 5, 6}, 4))))
}
