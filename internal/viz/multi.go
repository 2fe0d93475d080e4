package viz

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/particlefield/internal/field"
)

// MultiSurface duplicates every draw call to all its surfaces.
type MultiSurface struct {
	surfaces []field.Surface
}

func Multi(surfaces ...field.Surface) *MultiSurface {
	return &MultiSurface{surfaces: surfaces}
}

func (m *MultiSurface) Add(s field.Surface) { m.surfaces = append(m.surfaces, s) }

// Remove detaches s. It reports whether s was attached.
func (m *MultiSurface) Remove(s field.Surface) bool {
	for i, x := range m.surfaces {
		if x == s {
			m.surfaces = append(m.surfaces[:i], m.surfaces[i+1:]...)
			return true
		}
	}
	return false
}

func (m *MultiSurface) Len() int { return len(m.surfaces) }

func (m *MultiSurface) Resize(width, height int) {
	for _, s := range m.surfaces {
		s.Resize(width, height)
	}
}

func (m *MultiSurface) Clear() {
	for _, s := range m.surfaces {
		s.Clear()
	}
}

func (m *MultiSurface) FillCircle(x, y, r float64, c colorful.Color, alpha float64) {
	for _, s := range m.surfaces {
		s.FillCircle(x, y, r, c, alpha)
	}
}

func (m *MultiSurface) StrokeLine(x0, y0, x1, y1, width float64, c colorful.Color, alpha float64) {
	for _, s := range m.surfaces {
		s.StrokeLine(x0, y0, x1, y1, width, c, alpha)
	}
}
