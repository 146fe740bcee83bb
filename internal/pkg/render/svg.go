package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/Shintumon/combochart/internal/pkg/config"
)

// WriteSVG serializes the scene as a standalone SVG document. Animation
// metadata becomes CSS transitions on the emitted elements; geometry is
// written exactly as the scene holds it.
func WriteSVG(w io.Writer, s *Scene) error {
	ew := &errWriter{w: w}

	ew.printf(`<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`,
		s.Width, s.Height, s.Width, s.Height)
	ew.printf("\n")

	if s.Background != "" {
		ew.printf(`<rect width="%g" height="%g" fill=%q/>`, s.Width, s.Height, s.Background)
		ew.printf("\n")
	}

	for _, n := range s.Nodes {
		switch v := n.(type) {
		case Rect:
			writeRect(ew, v)
		case Line:
			writeLine(ew, v)
		case Path:
			writePath(ew, v)
		case Marker:
			writeMarker(ew, v)
		case Text:
			writeText(ew, v)
		}
	}

	ew.printf("</svg>\n")

	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func writeRect(ew *errWriter, r Rect) {
	if r.RadiusTop > 0 {
		p := Path{
			D:           roundedTopRect(r.X, r.Y, r.W, r.H, r.RadiusTop),
			Fill:        r.Fill,
			Opacity:     r.Opacity,
			Stroke:      r.Stroke,
			StrokeWidth: r.StrokeWidth,
			Class:       r.Class,
			Anim:        r.Anim,
		}
		writePath(ew, p)

		return
	}

	ew.printf(`<rect x="%g" y="%g" width="%g" height="%g" fill=%q`, r.X, r.Y, r.W, r.H, r.Fill)
	if r.Radius > 0 {
		ew.printf(` rx="%g"`, r.Radius)
	}
	if r.Opacity > 0 && r.Opacity < 1 {
		ew.printf(` fill-opacity="%g"`, r.Opacity)
	}
	writeStroke(ew, r.Stroke, r.StrokeWidth, "")
	writeClass(ew, r.Class)
	writeAnim(ew, r.Anim)
	ew.printf("/>\n")
}

func writeLine(ew *errWriter, l Line) {
	ew.printf(`<line x1="%g" y1="%g" x2="%g" y2="%g"`, l.X1, l.Y1, l.X2, l.Y2)
	writeStroke(ew, l.Stroke, l.Width, l.Dash)
	if l.Opacity > 0 && l.Opacity < 1 {
		ew.printf(` stroke-opacity="%g"`, l.Opacity)
	}
	writeClass(ew, l.Class)
	ew.printf("/>\n")
}

func writePath(ew *errWriter, p Path) {
	fill := p.Fill
	if fill == "" {
		fill = "none"
	}
	ew.printf(`<path d=%q fill=%q`, p.D, fill)
	if p.Opacity > 0 && p.Opacity < 1 {
		ew.printf(` opacity="%g"`, p.Opacity)
	}
	writeStroke(ew, p.Stroke, p.StrokeWidth, p.Dash)
	writeClass(ew, p.Class)
	writeAnim(ew, p.Anim)
	ew.printf("/>\n")
}

func writeMarker(ew *errWriter, m Marker) {
	r := m.Size / 2

	switch m.Shape {
	case config.ShapeSquare:
		ew.printf(`<rect x="%g" y="%g" width="%g" height="%g" fill=%q`,
			m.X-r, m.Y-r, m.Size, m.Size, m.Fill)
	case config.ShapeDiamond:
		ew.printf(`<path d="M%g,%g L%g,%g L%g,%g L%g,%g z" fill=%q`,
			m.X, m.Y-r, m.X+r, m.Y, m.X, m.Y+r, m.X-r, m.Y, m.Fill)
	case config.ShapeTriangle:
		ew.printf(`<path d="M%g,%g L%g,%g L%g,%g z" fill=%q`,
			m.X, m.Y-r, m.X+r, m.Y+r, m.X-r, m.Y+r, m.Fill)
	default:
		ew.printf(`<circle cx="%g" cy="%g" r="%g" fill=%q`, m.X, m.Y, r, m.Fill)
	}

	writeStroke(ew, m.Stroke, m.StrokeWidth, "")
	writeClass(ew, m.Class)
	writeAnim(ew, m.Anim)
	ew.printf("/>\n")
}

func writeText(ew *errWriter, t Text) {
	ew.printf(`<text x="%g" y="%g"`, t.X, t.Y)
	if t.Anchor != "" {
		ew.printf(` text-anchor=%q`, t.Anchor)
	}
	if t.Rotation != 0 {
		ew.printf(` transform="rotate(%g %g %g)"`, t.Rotation, t.X, t.Y)
	}
	writeFont(ew, t.Font)
	writeClass(ew, t.Class)
	ew.printf(">%s</text>\n", escapeText(t.Content))
}

func writeStroke(ew *errWriter, stroke string, width float64, dash string) {
	if stroke == "" || width <= 0 {
		return
	}
	ew.printf(` stroke=%q stroke-width="%g"`, stroke, width)
	if dash != "" {
		ew.printf(` stroke-dasharray=%q`, dash)
	}
}

func writeFont(ew *errWriter, f config.FontSpec) {
	if f.Family != "" {
		ew.printf(` font-family=%q`, f.Family)
	}
	if f.Size > 0 {
		ew.printf(` font-size="%g"`, f.Size)
	}
	if f.Weight != "" {
		ew.printf(` font-weight=%q`, f.Weight)
	}
	if f.Italic {
		ew.printf(` font-style="italic"`)
	}
	if f.Color != "" {
		ew.printf(` fill=%q`, f.Color)
	}
}

func writeClass(ew *errWriter, class string) {
	if class != "" {
		ew.printf(` class=%q`, class)
	}
}

// writeAnim attaches a CSS transition; renderers that rasterize the SVG (or
// hosts with animation disabled) simply see no style attribute.
func writeAnim(ew *errWriter, a Anim) {
	if a.Duration <= 0 {
		return
	}
	ew.printf(` style="transition:all %dms %s %dms"`, a.Duration, cssEasing(a.Easing), a.Delay)
}

func cssEasing(e config.Easing) string {
	switch e {
	case config.EaseCubic:
		return "cubic-bezier(0.65,0,0.35,1)"
	case config.EaseElastic:
		return "cubic-bezier(0.68,-0.55,0.27,1.55)"
	case config.EaseLinear, config.Ease, config.EaseIn, config.EaseOut, config.EaseInOut:
		return string(e)
	default:
		return "ease"
	}
}

func escapeText(s string) string {
	var sb strings.Builder
	if err := xml.EscapeText(&sb, []byte(s)); err != nil {
		return s
	}

	return sb.String()
}
