package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/ddrfluid/internal/analysis"
	"github.com/san-kum/ddrfluid/internal/dynamo"
	"github.com/san-kum/ddrfluid/internal/viz"
)

// SVGOptions controls the world-space renderers.
type SVGOptions struct {
	WorldW, WorldH float64
	Radius         float64 // particle radius in world units
	Scale          float64 // pixels per world unit
	Fill           string
	Background     string
}

func DefaultSVGOptions(worldW, worldH, radius float64) SVGOptions {
	return SVGOptions{
		WorldW:     worldW,
		WorldH:     worldH,
		Radius:     radius,
		Scale:      6,
		Fill:       "#00a8cc",
		Background: "#0a0a0a",
	}
}

func header(sb *strings.Builder, o SVGOptions) (float64, float64) {
	w, h := o.WorldW*o.Scale, o.WorldH*o.Scale
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, o.Background)
	return w, h
}

// FrameToSVG draws every particle as a circle, y up.
func FrameToSVG(f dynamo.Frame, o SVGOptions) string {
	var sb strings.Builder
	_, h := header(&sb, o)

	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", o.Fill)
	r := o.Radius * o.Scale
	for _, p := range f.Particles {
		cx := p.Position.X * o.Scale
		cy := h - p.Position.Y*o.Scale
		fmt.Fprintf(&sb, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\"/>\n", cx, cy, r)
	}
	fmt.Fprintf(&sb, "</g>\n<text x=\"8\" y=\"16\" fill=\"#888899\" font-family=\"monospace\" font-size=\"12\">t=%.3fs n=%d</text>\n", f.Time, len(f.Particles))
	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG draws traj as a polyline in world space, y up.
func TrajectoryToSVG(traj *analysis.Trajectory, o SVGOptions, strokeColor string) string {
	if traj == nil || len(traj.Points) < 2 {
		return ""
	}

	var sb strings.Builder
	_, h := header(&sb, o)

	fmt.Fprintf(&sb, "<polyline fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" points=\"", strokeColor)
	for i, p := range traj.Points {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%.2f,%.2f", p.X*o.Scale, h-p.Y*o.Scale)
	}
	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

// CanvasToSVG converts a braille canvas to SVG dots.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	cw, ch := canvas.PixelSize()
	width, height := float64(cw)*scale, float64(ch)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func WriteSVG(path, svg string) error {
	return os.WriteFile(path, []byte(svg), 0644)
}
