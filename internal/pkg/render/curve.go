package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/Shintumon/combochart/internal/pkg/config"
	"github.com/Shintumon/combochart/internal/pkg/layout"
)

type point struct {
	x float64
	y float64
}

// linePath builds the SVG path data for the line series under the requested
// interpolation. Fewer than two points degrade to a move (single point) or
// an empty path.
func linePath(pts []point, curve config.CurveKind) string {
	switch len(pts) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("M%g,%g", layout.Rounded(pts[0].x), layout.Rounded(pts[0].y))
	}

	switch curve {
	case config.CurveMonotone:
		return monotonePath(pts)
	case config.CurveCardinal:
		return cardinalPath(pts, 0.5)
	case config.CurveStepAfter:
		return stepAfterPath(pts)
	default:
		return linearPath(pts)
	}
}

func linearPath(pts []point) string {
	var sb strings.Builder
	moveTo(&sb, pts[0])
	for _, p := range pts[1:] {
		lineTo(&sb, p)
	}

	return sb.String()
}

func stepAfterPath(pts []point) string {
	var sb strings.Builder
	moveTo(&sb, pts[0])
	for i := 1; i < len(pts); i++ {
		lineTo(&sb, point{x: pts[i].x, y: pts[i-1].y})
		lineTo(&sb, pts[i])
	}

	return sb.String()
}

// cardinalPath draws a cardinal spline through every point, converting each
// segment to a cubic Bezier with tangents from the neighbouring points.
func cardinalPath(pts []point, tension float64) string {
	var sb strings.Builder
	moveTo(&sb, pts[0])

	k := tension / 3

	for i := 0; i < len(pts)-1; i++ {
		p0 := pts[max(i-1, 0)]
		p1 := pts[i]
		p2 := pts[i+1]
		p3 := pts[min(i+2, len(pts)-1)]

		c1 := point{x: p1.x + (p2.x-p0.x)*k, y: p1.y + (p2.y-p0.y)*k}
		c2 := point{x: p2.x - (p3.x-p1.x)*k, y: p2.y - (p3.y-p1.y)*k}
		curveTo(&sb, c1, c2, p2)
	}

	return sb.String()
}

// monotonePath interpolates with a monotone cubic (Fritsch-Carlson tangent
// selection) so the curve never overshoots between samples.
func monotonePath(pts []point) string {
	n := len(pts)

	// secant slopes between consecutive points
	delta := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		dx := pts[i+1].x - pts[i].x
		if dx == 0 {
			delta[i] = 0

			continue
		}
		delta[i] = (pts[i+1].y - pts[i].y) / dx
	}

	// tangents, flattened wherever the slope changes sign
	m := make([]float64, n)
	m[0] = delta[0]
	m[n-1] = delta[n-2]
	for i := 1; i < n-1; i++ {
		if delta[i-1]*delta[i] <= 0 {
			m[i] = 0

			continue
		}
		m[i] = (delta[i-1] + delta[i]) / 2
	}
	for i := 0; i < n-1; i++ {
		if delta[i] == 0 {
			m[i] = 0
			m[i+1] = 0

			continue
		}
		a := m[i] / delta[i]
		b := m[i+1] / delta[i]
		if s := a*a + b*b; s > 9 {
			t := 3 / math.Sqrt(s)
			m[i] = t * a * delta[i]
			m[i+1] = t * b * delta[i]
		}
	}

	var sb strings.Builder
	moveTo(&sb, pts[0])
	for i := 0; i < n-1; i++ {
		dx := (pts[i+1].x - pts[i].x) / 3
		c1 := point{x: pts[i].x + dx, y: pts[i].y + dx*m[i]}
		c2 := point{x: pts[i+1].x - dx, y: pts[i+1].y - dx*m[i+1]}
		curveTo(&sb, c1, c2, pts[i+1])
	}

	return sb.String()
}

// roundedTopRect builds a path for a bar whose upper corners are rounded.
// The radius is clamped to half the width and to the height.
func roundedTopRect(x, y, w, h, r float64) string {
	if r > w/2 {
		r = w / 2
	}
	if r > h {
		r = h
	}

	return fmt.Sprintf("M%g,%g v%g a%g,%g 0 0 1 %g,%g h%g a%g,%g 0 0 1 %g,%g v%g z",
		layout.Rounded(x), layout.Rounded(y+h),
		layout.Rounded(-(h - r)),
		layout.Rounded(r), layout.Rounded(r), layout.Rounded(r), layout.Rounded(-r),
		layout.Rounded(w-2*r),
		layout.Rounded(r), layout.Rounded(r), layout.Rounded(r), layout.Rounded(r),
		layout.Rounded(h-r),
	)
}

func moveTo(sb *strings.Builder, p point) {
	fmt.Fprintf(sb, "M%g,%g", layout.Rounded(p.x), layout.Rounded(p.y))
}

func lineTo(sb *strings.Builder, p point) {
	fmt.Fprintf(sb, "L%g,%g", layout.Rounded(p.x), layout.Rounded(p.y))
}

func curveTo(sb *strings.Builder, c1, c2, p point) {
	fmt.Fprintf(sb, "C%g,%g %g,%g %g,%g",
		layout.Rounded(c1.x), layout.Rounded(c1.y),
		layout.Rounded(c2.x), layout.Rounded(c2.y),
		layout.Rounded(p.x), layout.Rounded(p.y),
	)
}
