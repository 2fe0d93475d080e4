package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/particlefield/internal/field"
	"github.com/san-kum/particlefield/internal/viz"
)

type SVGOptions struct {
	// Scale multiplies the output size; the viewBox stays in viewport pixels.
	Scale      float64
	Background bool
}

// FieldToSVG renders the field's current positions as one frame, with
// the same radius, alpha and link rule as the live view. It does not
// advance the field.
func FieldToSVG(f *field.Field, theme viz.Theme, opts SVGOptions) string {
	if f == nil {
		return ""
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %d %d">
`, float64(f.Width)*scale, float64(f.Height)*scale, f.Width, f.Height)
	if opts.Background {
		fmt.Fprintf(&sb, "<rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n", theme.Background)
	}

	ink := field.Accent.Hex()
	fmt.Fprintf(&sb, "<g stroke=\"%s\" stroke-width=\"%g\">\n", ink, field.LineWidth)
	for i := 0; i < len(f.Points); i++ {
		a := f.Points[i]
		for j := i + 1; j < len(f.Points); j++ {
			b := f.Points[j]
			if alpha, ok := field.LinkAlpha(field.Distance(a, b)); ok {
				fmt.Fprintf(&sb, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-opacity=\"%.4f\"/>\n",
					a.X, a.Y, b.X, b.Y, alpha)
			}
		}
	}
	sb.WriteString("</g>\n")

	fmt.Fprintf(&sb, "<g fill=\"%s\" fill-opacity=\"%g\">\n", ink, field.PointAlpha)
	for _, p := range f.Points {
		fmt.Fprintf(&sb, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%g\"/>\n", p.X, p.Y, field.PointRadius)
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}
