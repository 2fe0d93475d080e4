package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/particlefield/internal/field"
)

// Viewport is a named logical screen size in pixels.
type Viewport struct {
	Name   string
	Width  int
	Height int
}

func (v Viewport) String() string { return fmt.Sprintf("%dx%d", v.Width, v.Height) }

var Presets = map[string]Viewport{
	"desktop":          {Name: "desktop", Width: 1920, Height: 1080},
	"laptop":           {Name: "laptop", Width: 1366, Height: 768},
	"tablet":           {Name: "tablet", Width: 768, Height: 1024},
	"mobile":           {Name: "mobile", Width: 400, Height: 800},
	"mobile-landscape": {Name: "mobile-landscape", Width: 800, Height: 400},
}

// GetPreset returns the named viewport, or nil.
func GetPreset(name string) *Viewport {
	v, ok := Presets[name]
	if !ok {
		return nil
	}
	return &v
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseViewport accepts a preset name or a WIDTHxHEIGHT size.
func ParseViewport(s string) (Viewport, error) {
	if v := GetPreset(s); v != nil {
		return *v, nil
	}
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return Viewport{}, fmt.Errorf("%w: unknown viewport %q (presets: %v)", ErrInvalid, s, ListPresets())
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return Viewport{}, fmt.Errorf("%w: viewport width %q", ErrInvalid, ws)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return Viewport{}, fmt.Errorf("%w: viewport height %q", ErrInvalid, hs)
	}
	if w < 0 || h < 0 {
		return Viewport{}, fmt.Errorf("%w: negative viewport %dx%d", ErrInvalid, w, h)
	}
	if w > field.MaxSide || h > field.MaxSide {
		return Viewport{}, fmt.Errorf("%w: viewport %dx%d exceeds %d per side", ErrInvalid, w, h, field.MaxSide)
	}
	return Viewport{Name: fmt.Sprintf("%dx%d", w, h), Width: w, Height: h}, nil
}
