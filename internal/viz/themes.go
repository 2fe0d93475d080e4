package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme defines the color scheme for the live view and exports.
type Theme struct {
	Name       string
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Highlight  lipgloss.Color
}

// Available themes
var (
	ThemeLight = Theme{
		Name:       "light",
		Accent:     lipgloss.Color("#0f9d84"), // Deep teal, readable on white
		Background: lipgloss.Color("#f7f7f2"),
		Text:       lipgloss.Color("#1b1b1b"),
		Muted:      lipgloss.Color("#8a8a80"),
		Border:     lipgloss.Color("#d0d0c8"),
		Highlight:  lipgloss.Color("#d9480f"),
	}

	ThemeDark = Theme{
		Name:       "dark",
		Accent:     lipgloss.Color("#64ffda"), // Cyan-ish
		Background: lipgloss.Color("#0a192f"),
		Text:       lipgloss.Color("#ccd6f6"),
		Muted:      lipgloss.Color("#8892b0"),
		Border:     lipgloss.Color("#233554"),
		Highlight:  lipgloss.Color("#ff79c6"),
	}

	ThemeOcean = Theme{
		Name:       "ocean",
		Accent:     lipgloss.Color("#00a8cc"),
		Background: lipgloss.Color("#001a33"),
		Text:       lipgloss.Color("#e0f0ff"),
		Muted:      lipgloss.Color("#4488aa"),
		Border:     lipgloss.Color("#0077be"),
		Highlight:  lipgloss.Color("#ffd700"),
	}

	ThemeSunset = Theme{
		Name:       "sunset",
		Accent:     lipgloss.Color("#feca57"),
		Background: lipgloss.Color("#2d1b2e"),
		Text:       lipgloss.Color("#fff5f5"),
		Muted:      lipgloss.Color("#8b6b8c"),
		Border:     lipgloss.Color("#ff6b6b"),
		Highlight:  lipgloss.Color("#ff9ff3"),
	}

	DefaultTheme = ThemeLight

	// All available themes
	Themes = []Theme{
		ThemeLight,
		ThemeDark,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return DefaultTheme
}

func HasTheme(name string) bool {
	for _, t := range Themes {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Toggle flips between light and dark. Any other theme toggles to light.
func Toggle(name string) string {
	if name == ThemeLight.Name {
		return ThemeDark.Name
	}
	return ThemeLight.Name
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Paper returns the background as a blendable color, white if it does
// not parse.
func (t Theme) Paper() colorful.Color { return hexOr(t.Background, colorful.Color{R: 1, G: 1, B: 1}) }

func hexOr(c lipgloss.Color, fallback colorful.Color) colorful.Color {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return fallback
	}
	return col
}
