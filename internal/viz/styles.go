package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles of the live view, derived from a theme.
type Styles struct {
	Panel  lipgloss.Style
	Header lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Status lipgloss.Style
	Alert  lipgloss.Style
	Help   lipgloss.Style
	Spark  lipgloss.Style
}

func NewStyles(t Theme) Styles {
	base := lipgloss.NewStyle().Background(t.Background)
	panel := base.
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		BorderBackground(t.Background).
		Foreground(t.Text).
		Padding(0, 1)
	return Styles{
		Panel:  panel,
		Header: base.Bold(true).Foreground(t.Accent),
		Label:  base.Foreground(t.Muted).Width(10),
		Value:  base.Foreground(t.Text),
		Status: base.Bold(true).Foreground(t.Accent),
		Alert:  base.Bold(true).Foreground(t.Highlight),
		Help:   base.Foreground(t.Muted).Italic(true),
		Spark:  base.Foreground(t.Accent),
	}
}

// SparklineChart renders a mini sparkline of the last width values.
func SparklineChart(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	// Sparkline characters from low to high
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var result strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		result.WriteRune(chars[idx])
	}
	return result.String()
}
