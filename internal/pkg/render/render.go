package render

import (
	"fmt"
	"strings"

	"github.com/Shintumon/combochart/internal/pkg/config"
	"github.com/Shintumon/combochart/internal/pkg/field"
	"github.com/Shintumon/combochart/internal/pkg/format"
	"github.com/Shintumon/combochart/internal/pkg/layout"
	"github.com/Shintumon/combochart/internal/pkg/model"
)

const (
	axisStrokeWidth = 1.0
	tickLength      = 5.0
	labelGap        = 8.0
	legendSwatch    = 12.0
	defaultTicks    = 5

	staggerDelay = 40 // ms between successive bar transitions

	frameRadius = 8.0
)

// Build assembles the scene for one render pass. The layout already carries
// ordered data and resolved scales; Build only paints.
func Build(l *layout.Layout, cfg *config.Config) *Scene {
	b := &builder{
		l:      l,
		cfg:    cfg,
		theme:  cfg.ThemeColors(),
		names:  overrides(cfg),
		scene:  &Scene{Width: l.Width, Height: l.Height},
	}

	b.background()
	b.title()
	b.grid()
	b.bars()
	b.line()
	b.points()
	b.dataLabels()
	b.axes()
	b.legend()

	return b.scene
}

// BuildMessage renders the guidance placeholder shown when the mapping is
// insufficient for a chart.
func BuildMessage(width, height float64, cfg *config.Config, missing []model.Role) *Scene {
	s := &Scene{Width: width, Height: height}
	theme := cfg.ThemeColors()

	if cfg.Chrome.ShowBackground {
		s.Background = background(cfg, theme)
	}

	names := make([]string, 0, len(missing))
	for _, r := range missing {
		names = append(names, string(r))
	}

	font := cfg.FontFor(config.FontSpec{Size: 13, Color: theme.Text})
	s.add(Text{
		X:       width / 2,
		Y:       height / 2,
		Content: fmt.Sprintf("Add %s to display the chart", strings.Join(names, " and ")),
		Font:    font,
		Anchor:  "middle",
		Class:   "guidance",
	})

	return s
}

type builder struct {
	l     *layout.Layout
	cfg   *config.Config
	theme config.ThemeColors
	names field.NameOverrides
	scene *Scene
}

func overrides(cfg *config.Config) field.NameOverrides {
	return field.NameOverrides{
		Labels:             cfg.NameOverrides(),
		DimensionAxisTitle: cfg.XAxis.Title,
	}
}

func background(cfg *config.Config, theme config.ThemeColors) string {
	if cfg.Background != "" {
		return cfg.Background
	}

	return theme.Background
}

func (b *builder) anim(index int) Anim {
	if !b.cfg.Animation.Enabled {
		return Anim{}
	}

	return Anim{
		Duration: b.cfg.Animation.Duration,
		Easing:   b.cfg.Animation.Easing,
		Delay:    index * staggerDelay,
	}
}

// background fills the canvas. With chrome padding or a rounded frame the
// fill becomes an inset frame rect instead of the plain canvas background.
func (b *builder) background() {
	chrome := b.cfg.Chrome
	if !chrome.ShowBackground {
		return
	}

	fill := background(b.cfg, b.theme)
	if chrome.Padding <= 0 && !chrome.RoundedFrame {
		b.scene.Background = fill

		return
	}

	pad := chrome.Padding
	if pad < 0 {
		pad = 0
	}
	radius := 0.0
	if chrome.RoundedFrame {
		radius = frameRadius
	}
	b.scene.add(Rect{
		X: pad, Y: pad,
		W: b.scene.Width - 2*pad, H: b.scene.Height - 2*pad,
		Fill: fill, Opacity: 1, Radius: radius, Class: "frame",
	})
}

func (b *builder) title() {
	t := b.cfg.Title
	if !t.Show || t.Text == "" {
		return
	}

	x := b.scene.Width / 2
	anchor := "middle"
	switch t.Align {
	case "left":
		x = b.l.Plot.X
		anchor = "start"
	case "right":
		x = b.l.Plot.X + b.l.Plot.W
		anchor = "end"
	}

	b.scene.add(Text{
		X:       x,
		Y:       b.l.Margins.Top / 2,
		Content: t.Text,
		Font:    b.cfg.FontFor(t.Font),
		Anchor:  anchor,
		Class:   "title",
	})
}

// grid paints before any mark so lines stay behind the data.
func (b *builder) grid() {
	g := b.cfg.Grid
	if !g.Horizontal && !g.Vertical {
		return
	}

	plot := b.l.Plot

	if g.Horizontal {
		for _, v := range b.l.Left.Ticks(b.tickCount(b.cfg.LeftAxis)) {
			y := layout.Rounded(plot.Y + b.l.Left.Scale(v))
			b.scene.add(Line{
				X1: plot.X, Y1: y, X2: plot.X + plot.W, Y2: y,
				Stroke: g.Color, Width: 1, Opacity: g.Opacity, Class: "grid",
			})
		}
	}

	if g.Vertical {
		for _, cat := range b.l.X.Categories() {
			pos, ok := b.l.X.Position(cat)
			if !ok {
				continue
			}
			x := layout.Rounded(plot.X + pos + b.l.X.Bandwidth()/2)
			b.scene.add(Line{
				X1: x, Y1: plot.Y, X2: x, Y2: plot.Y + plot.H,
				Stroke: g.Color, Width: 1, Opacity: g.Opacity, Class: "grid",
			})
		}
	}
}

type barSegment struct {
	role  model.Role
	value float64
	opts  config.SeriesOptions
	slot  int
}

func (b *builder) segments() []barSegment {
	var segs []barSegment
	slot := 0
	if b.l.HasBar1 {
		segs = append(segs, barSegment{role: model.RoleBar1, opts: b.cfg.Bar1, slot: slot})
		slot++
	}
	if b.l.HasBar2 {
		if b.cfg.BarStyle == config.BarsStacked {
			slot = 0
		}
		segs = append(segs, barSegment{role: model.RoleBar2, opts: b.cfg.Bar2, slot: slot})
	}

	return segs
}

func (b *builder) bars() {
	segs := b.segments()
	if len(segs) == 0 {
		return
	}

	plot := b.l.Plot
	stacked := b.cfg.BarStyle == config.BarsStacked && len(segs) > 1
	baseline := b.l.Left.Scale(clampToDomain(0, b.l.Left))

	for i, d := range b.l.Data {
		pos, ok := b.l.X.Position(d.Category)
		if !ok {
			continue
		}

		stackTop := baseline
		for si, seg := range segs {
			v := segmentValue(d, seg.role)

			off, w := b.l.Inner.Slot(seg.slot)
			x := plot.X + pos + off

			var y, h float64
			if stacked {
				top := b.l.Left.Scale(clampToDomain(stackValue(d, segs[:si+1]), b.l.Left))
				y, h = top, stackTop-top
				stackTop = top
			} else {
				top := b.l.Left.Scale(clampToDomain(v, b.l.Left))
				y, h = top, baseline-top
			}
			if h < 0 {
				h = 0
			}

			// only the topmost visible segment of a column is rounded
			radius := 0.0
			if seg.opts.CornerRadius > 0 && b.topmost(d, segs, si, stacked) {
				radius = seg.opts.CornerRadius
			}

			rect := Rect{
				X:         layout.Rounded(x),
				Y:         layout.Rounded(plot.Y + y),
				W:         layout.Rounded(w),
				H:         layout.Rounded(h),
				Fill:      seg.opts.Color,
				Opacity:   seg.opts.Opacity,
				RadiusTop: radius,
				Class:     "bar " + string(seg.role),
				Anim:      b.anim(i),
			}
			if seg.opts.Border {
				rect.Stroke = seg.opts.BorderColor
				rect.StrokeWidth = seg.opts.BorderWidth
			}
			b.scene.add(rect)
		}
	}
}

// topmost reports whether segment si tops its column: in a stack that is the
// last segment with a positive value, otherwise every bar tops itself.
func (b *builder) topmost(d model.ChartDatum, segs []barSegment, si int, stacked bool) bool {
	if !stacked {
		return true
	}

	for j := len(segs) - 1; j >= 0; j-- {
		if segmentValue(d, segs[j].role) > 0 {
			return j == si
		}
	}

	return si == 0
}

func segmentValue(d model.ChartDatum, role model.Role) float64 {
	if role == model.RoleBar2 {
		return d.Bar2
	}

	return d.Bar1
}

func stackValue(d model.ChartDatum, segs []barSegment) float64 {
	var total float64
	for _, s := range segs {
		total += segmentValue(d, s.role)
	}

	return total
}

func (b *builder) linePoints() []point {
	plot := b.l.Plot
	pts := make([]point, 0, len(b.l.Data))
	for _, d := range b.l.Data {
		pos, ok := b.l.X.Position(d.Category)
		if !ok {
			continue
		}
		pts = append(pts, point{
			x: plot.X + pos + b.l.X.Bandwidth()/2,
			y: plot.Y + b.l.Line.Scale(clampToDomain(d.Line, b.l.Line)),
		})
	}

	return pts
}

func (b *builder) line() {
	if !b.l.HasLine {
		return
	}

	opts := b.cfg.Line
	d := linePath(b.linePoints(), opts.Curve)
	if d == "" {
		return
	}

	b.scene.add(Path{
		D:           d,
		Stroke:      opts.Color,
		StrokeWidth: opts.Width,
		Fill:        "none",
		Opacity:     opts.Opacity,
		Dash:        dashPattern(opts.Style, opts.Width),
		Class:       "line",
		Anim:        b.anim(0),
	})
}

func (b *builder) points() {
	if !b.l.HasLine || !b.cfg.Points.Show {
		return
	}

	p := b.cfg.Points
	for i, pt := range b.linePoints() {
		b.scene.add(Marker{
			X:           pt.x,
			Y:           pt.y,
			Shape:       p.Shape,
			Size:        p.Size,
			Fill:        p.Fill,
			Stroke:      p.Stroke,
			StrokeWidth: p.StrokeWidth,
			Class:       "point",
			Anim:        b.anim(i),
		})
	}
}

func dashPattern(style config.LineStyle, width float64) string {
	switch style {
	case config.LineDashed:
		return fmt.Sprintf("%g %g", width*3, width*2)
	case config.LineDotted:
		return fmt.Sprintf("%g %g", width, width*1.5)
	default:
		return ""
	}
}

func (b *builder) dataLabels() {
	segs := b.segments()
	stacked := b.cfg.BarStyle == config.BarsStacked && len(segs) > 1

	for _, seg := range segs {
		if !seg.opts.Labels.Show {
			continue
		}
		b.barLabels(seg, segs, stacked)
	}

	if b.l.HasLine && b.cfg.Line.Labels.Show {
		b.lineLabels()
	}
}

func (b *builder) barLabels(seg barSegment, segs []barSegment, stacked bool) {
	plot := b.l.Plot
	opts := seg.opts.Labels
	fn := labelFormatter(opts.Format)

	for _, d := range b.l.Data {
		pos, ok := b.l.X.Position(d.Category)
		if !ok {
			continue
		}
		v := segmentValue(d, seg.role)

		off, w := b.l.Inner.Slot(seg.slot)
		x := plot.X + pos + off + w/2

		top := b.l.Left.Scale(clampToDomain(v, b.l.Left))
		if stacked {
			var below float64
			for _, s := range segs {
				if s.role == seg.role {
					break
				}
				below += segmentValue(d, s.role)
			}
			top = b.l.Left.Scale(clampToDomain(below+v, b.l.Left))
		}

		y := plot.Y + top - labelGap
		if opts.Position != config.LabelTop {
			base := b.l.Left.Scale(clampToDomain(0, b.l.Left))
			y = plot.Y + (top+base)/2
		}

		b.scene.add(Text{
			X:       layout.Rounded(x + opts.OffsetX),
			Y:       layout.Rounded(y + opts.OffsetY),
			Content: fn(v),
			Font:    b.cfg.FontFor(opts.Font),
			Anchor:  "middle",
			Class:   "data-label " + string(seg.role),
		})
	}
}

func (b *builder) lineLabels() {
	opts := b.cfg.Line.Labels
	fn := labelFormatter(opts.Format)

	for i, pt := range b.linePoints() {
		b.scene.add(Text{
			X:       layout.Rounded(pt.x + opts.OffsetX),
			Y:       layout.Rounded(pt.y - labelGap + opts.OffsetY),
			Content: fn(b.l.Data[i].Line),
			Font:    b.cfg.FontFor(opts.Font),
			Anchor:  "middle",
			Class:   "data-label line",
		})
	}
}

func labelFormatter(o format.Options) func(float64) string {
	fn := format.Cached(o)
	if fn == nil {
		fn = format.DefaultNumber
	}

	return func(v float64) string { return fn(v) }
}

// axisStroke colors the axis line and ticks from the axis font, falling back
// to the theme stroke. The label font never bleeds into the strokes.
func (b *builder) axisStroke(axis config.AxisOptions) string {
	if axis.Font.Color != "" {
		return axis.Font.Color
	}

	return b.theme.Axis
}

func (b *builder) tickCount(axis config.AxisOptions) int {
	if axis.TickCount > 0 {
		return axis.TickCount
	}

	return defaultTicks
}

func (b *builder) axes() {
	b.xAxis()
	b.yAxis(b.cfg.LeftAxis, b.l.Left, true)
	if b.cfg.AxisMode == config.AxisDual && b.l.HasLine {
		b.yAxis(b.cfg.RightAxis, b.l.Right, false)
	}
}

func (b *builder) xAxis() {
	axis := b.cfg.XAxis
	if !axis.Show {
		return
	}

	plot := b.l.Plot
	baseY := plot.Y + plot.H
	axisColor := b.axisStroke(axis)

	if axis.ShowLine {
		b.scene.add(Line{
			X1: plot.X, Y1: baseY, X2: plot.X + plot.W, Y2: baseY,
			Stroke: axisColor, Width: axisStrokeWidth, Class: "axis x",
		})
	}

	font := b.cfg.FontFor(axis.LabelFont)
	for _, cat := range b.l.X.Categories() {
		pos, ok := b.l.X.Position(cat)
		if !ok {
			continue
		}
		cx := plot.X + pos + b.l.X.Bandwidth()/2

		if axis.ShowTicks {
			b.scene.add(Line{
				X1: cx, Y1: baseY, X2: cx, Y2: baseY + tickLength,
				Stroke: axisColor, Width: axisStrokeWidth, Class: "tick x",
			})
		}

		if axis.ShowLabels {
			// rotated labels anchor at their end so text falls away from
			// the axis instead of crossing it
			anchor := "middle"
			if axis.LabelRotation != 0 {
				anchor = "end"
			}
			b.scene.add(Text{
				X:        layout.Rounded(cx + axis.LabelOffsetX),
				Y:        layout.Rounded(baseY + tickLength + labelGap + axis.LabelOffsetY),
				Content:  cat,
				Font:     font,
				Anchor:   anchor,
				Rotation: -axis.LabelRotation,
				Class:    "axis-label x",
			})
		}
	}

	if axis.ShowTitle {
		title := axis.Title
		if title == "" {
			title = field.DisplayName(model.RoleDimension, b.cfg.Mapping, b.names)
		}
		b.scene.add(Text{
			X:       plot.X + plot.W/2,
			Y:       b.scene.Height - labelGap,
			Content: title,
			Font:    b.cfg.FontFor(axis.Font),
			Anchor:  "middle",
			Class:   "axis-title x",
		})
	}
}

func (b *builder) yAxis(axis config.AxisOptions, scale layout.LinearScale, left bool) {
	if !axis.Show {
		return
	}

	plot := b.l.Plot
	axisX := plot.X
	if !left {
		axisX = plot.X + plot.W
	}
	axisColor := b.axisStroke(axis)

	if axis.ShowLine {
		b.scene.add(Line{
			X1: axisX, Y1: plot.Y, X2: axisX, Y2: plot.Y + plot.H,
			Stroke: axisColor, Width: axisStrokeWidth, Class: "axis y",
		})
	}

	fn := format.Cached(axis.Format)
	if fn == nil {
		fn = format.DefaultNumber
	}

	font := b.cfg.FontFor(axis.LabelFont)
	for _, v := range scale.Ticks(b.tickCount(axis)) {
		y := plot.Y + scale.Scale(v)

		tickX2 := axisX - tickLength
		labelX := axisX - tickLength - labelGap
		anchor := "end"
		if !left {
			tickX2 = axisX + tickLength
			labelX = axisX + tickLength + labelGap
			anchor = "start"
		}

		if axis.ShowTicks {
			b.scene.add(Line{
				X1: axisX, Y1: y, X2: tickX2, Y2: y,
				Stroke: axisColor, Width: axisStrokeWidth, Class: "tick y",
			})
		}
		if axis.ShowLabels {
			b.scene.add(Text{
				X:       layout.Rounded(labelX + axis.LabelOffsetX),
				Y:       layout.Rounded(y + axis.LabelOffsetY),
				Content: fn(v),
				Font:    font,
				Anchor:  anchor,
				Class:   "axis-label y",
			})
		}
	}

	if axis.ShowTitle {
		title := axis.Title
		if title == "" {
			title = b.valueAxisTitle(left)
		}
		x := labelGap * 2
		rot := -90.0
		if !left {
			x = b.scene.Width - labelGap*2
			rot = 90
		}
		b.scene.add(Text{
			X:        x,
			Y:        plot.Y + plot.H/2,
			Content:  title,
			Font:     b.cfg.FontFor(axis.Font),
			Anchor:   "middle",
			Rotation: rot,
			Class:    "axis-title y",
		})
	}
}

// valueAxisTitle derives the default title for a value axis from the mapped
// series names: the bar names joined with a slash on the left, the line name
// on the right.
func (b *builder) valueAxisTitle(left bool) string {
	if !left {
		return field.DisplayName(model.RoleLine, b.cfg.Mapping, b.names)
	}

	var parts []string
	if b.l.HasBar1 {
		parts = append(parts, field.DisplayName(model.RoleBar1, b.cfg.Mapping, b.names))
	}
	if b.l.HasBar2 {
		parts = append(parts, field.DisplayName(model.RoleBar2, b.cfg.Mapping, b.names))
	}
	if b.cfg.AxisMode == config.AxisShared && b.l.HasLine {
		parts = append(parts, field.DisplayName(model.RoleLine, b.cfg.Mapping, b.names))
	}

	return strings.Join(parts, " / ")
}

type legendEntry struct {
	label string
	color string
	line  bool
}

func (b *builder) legendEntries() []legendEntry {
	var entries []legendEntry
	if b.l.HasBar1 {
		entries = append(entries, legendEntry{
			label: field.DisplayName(model.RoleBar1, b.cfg.Mapping, b.names),
			color: b.cfg.Bar1.Color,
		})
	}
	if b.l.HasBar2 {
		entries = append(entries, legendEntry{
			label: field.DisplayName(model.RoleBar2, b.cfg.Mapping, b.names),
			color: b.cfg.Bar2.Color,
		})
	}
	if b.l.HasLine {
		entries = append(entries, legendEntry{
			label: field.DisplayName(model.RoleLine, b.cfg.Mapping, b.names),
			color: b.cfg.Line.Color,
			line:  true,
		})
	}

	return entries
}

// legend lays its entries out in a row (top or bottom band) or a column
// (side bands), aligned within the band per Align. No mapped series means no
// legend at all.
func (b *builder) legend() {
	lg := b.cfg.Legend
	if !lg.Show {
		return
	}
	entries := b.legendEntries()
	if len(entries) == 0 {
		return
	}

	band := b.legendBand()
	b.legendChrome(band)

	font := b.cfg.FontFor(lg.Font)
	gap := lg.ItemGap
	if gap <= 0 {
		gap = 16
	}

	switch lg.Position {
	case config.LegendLeft, config.LegendRight:
		x := band.X + labelGap
		column := float64(len(entries))*(legendSwatch+gap) - gap
		y := band.Y + alignOffset(lg.Align, band.H, column)
		for _, e := range entries {
			b.legendItem(e, x, y, font)
			y += legendSwatch + gap
		}
	default:
		// estimated row width drives the alignment within the band
		var width float64
		for _, e := range entries {
			width += legendSwatch + labelGap + estimateTextWidth(e.label, font.Size) + gap
		}
		width -= gap

		x := band.X + alignOffset(lg.Align, band.W, width)
		y := band.Y + labelGap
		for _, e := range entries {
			b.legendItem(e, x, y, font)
			x += legendSwatch + labelGap + estimateTextWidth(e.label, font.Size) + gap
		}
	}
}

// legendBand is the pixel rectangle the layout reserved for the legend.
func (b *builder) legendBand() layout.Rect {
	in := b.l.Legend
	plot := b.l.Plot

	switch b.cfg.Legend.Position {
	case config.LegendTop:
		return layout.Rect{X: plot.X, Y: 0, W: plot.W, H: in.Top}
	case config.LegendLeft:
		return layout.Rect{X: 0, Y: plot.Y, W: in.Left, H: plot.H}
	case config.LegendRight:
		return layout.Rect{X: b.scene.Width - in.Right, Y: plot.Y, W: in.Right, H: plot.H}
	default:
		return layout.Rect{X: plot.X, Y: b.scene.Height - in.Bottom, W: plot.W, H: in.Bottom}
	}
}

// legendChrome draws the optional background fill and the border on the edge
// facing the plot.
func (b *builder) legendChrome(band layout.Rect) {
	lg := b.cfg.Legend

	if lg.Background != "" {
		b.scene.add(Rect{
			X: band.X, Y: band.Y, W: band.W, H: band.H,
			Fill: lg.Background, Opacity: 1, Class: "legend-background",
		})
	}

	if !lg.Border {
		return
	}
	stroke := lg.BorderColor
	if stroke == "" {
		stroke = b.theme.Grid
	}

	border := Line{Stroke: stroke, Width: 1, Class: "legend-border"}
	switch lg.Position {
	case config.LegendTop:
		border.X1, border.Y1, border.X2, border.Y2 = band.X, band.Y+band.H, band.X+band.W, band.Y+band.H
	case config.LegendLeft:
		border.X1, border.Y1, border.X2, border.Y2 = band.X+band.W, band.Y, band.X+band.W, band.Y+band.H
	case config.LegendRight:
		border.X1, border.Y1, border.X2, border.Y2 = band.X, band.Y, band.X, band.Y+band.H
	default:
		border.X1, border.Y1, border.X2, border.Y2 = band.X, band.Y, band.X+band.W, band.Y
	}
	b.scene.add(border)
}

func alignOffset(align string, band, content float64) float64 {
	switch align {
	case "start":
		return 0
	case "end":
		return band - content
	default:
		return (band - content) / 2
	}
}

func (b *builder) legendItem(e legendEntry, x, y float64, font config.FontSpec) {
	if e.line {
		b.scene.add(Line{
			X1: x, Y1: y + legendSwatch/2, X2: x + legendSwatch, Y2: y + legendSwatch/2,
			Stroke: e.color, Width: 2, Class: "legend-swatch",
		})
	} else {
		b.scene.add(Rect{
			X: x, Y: y, W: legendSwatch, H: legendSwatch,
			Fill: e.color, Opacity: 1, Class: "legend-swatch",
		})
	}
	b.scene.add(Text{
		X:       x + legendSwatch + labelGap,
		Y:       y + legendSwatch - 2,
		Content: e.label,
		Font:    font,
		Anchor:  "start",
		Class:   "legend-label",
	})
}

// estimateTextWidth approximates rendered width for layout purposes; exact
// metrics would need the host's font rasterizer.
func estimateTextWidth(s string, size float64) float64 {
	if size <= 0 {
		size = 12
	}

	return float64(len(s)) * size * 0.6
}

// clampToDomain keeps values inside the scale domain so explicit axis
// overrides clip marks instead of letting them escape the plot.
func clampToDomain(v float64, s layout.LinearScale) float64 {
	if v < s.DomainMin {
		return s.DomainMin
	}
	if v > s.DomainMax {
		return s.DomainMax
	}

	return v
}
