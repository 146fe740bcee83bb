package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/Shintumon/combochart/internal/pkg/config"
	"github.com/Shintumon/combochart/internal/pkg/model"
)

// Margin constants. The rotation tiers and clamp bounds are part of the
// chart's responsive contract; the per-element additions fill them in.
const (
	baseMarginFraction = 0.08

	bottomFlat       = 30.0
	bottomRotated    = 50.0
	bottomSteep      = 70.0
	titleAddition    = 24.0
	leftLabelsWidth  = 20.0
	rightLabelsWidth = 16.0

	leftMarginMin  = 60.0
	leftMarginMax  = 100.0
	rightMarginMin = 50.0
	rightMarginMax = 80.0

	legendBandHorizontal = 32.0
	legendBandVertical   = 96.0

	headroomFactor  = 1.1
	noZeroMinFactor = 0.9
)

// Margins reserve space around the plot for axes and titles.
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Insets is extra space reserved for the legend on one side.
type Insets struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Rect is a pixel rectangle, origin top-left.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// MappingError signals that the field mapping cannot produce a chart; the
// renderer substitutes a guidance message naming the missing roles.
type MappingError struct {
	Missing []model.Role
}

func (e *MappingError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, r := range e.Missing {
		names = append(names, string(r))
	}

	return fmt.Sprintf("insufficient mapping: missing %s", strings.Join(names, ", "))
}

// Layout is the computed geometry for one render. Linear scales are in
// plot-local coordinates (0 at the plot top).
type Layout struct {
	Width  float64
	Height float64

	Margins Margins
	Legend  Insets
	Plot    Rect

	X     BandScale
	Inner InnerScale
	Left  LinearScale
	Right LinearScale
	Line  LinearScale

	HasBar1 bool
	HasBar2 bool
	HasLine bool

	Data []model.ChartDatum
}

// Compute derives the full layout from container dimensions, configuration
// and data. It fails with a *MappingError when no dimension or no measure is
// mapped.
func Compute(width, height float64, cfg *config.Config, data []model.ChartDatum) (*Layout, error) {
	m := cfg.Mapping
	if !m.HasDimension() || !m.HasMeasure() {
		return nil, &MappingError{Missing: m.MissingRoles()}
	}

	l := &Layout{
		Width:   width,
		Height:  height,
		HasBar1: m.Bar1 != "",
		HasBar2: m.Bar2 != "",
		HasLine: m.Line != "",
	}

	l.Data = model.OrderCategories(data, cfg.CategoryOrder)
	l.Margins = computeMargins(width, height, cfg)
	l.Legend = legendInsets(cfg, l.HasBar1 || l.HasBar2 || l.HasLine)

	l.Plot = Rect{
		X: l.Margins.Left + l.Legend.Left,
		Y: l.Margins.Top + l.Legend.Top,
	}
	l.Plot.W = width - l.Plot.X - l.Margins.Right - l.Legend.Right
	l.Plot.H = height - l.Plot.Y - l.Margins.Bottom - l.Legend.Bottom
	if l.Plot.W < 0 {
		l.Plot.W = 0
	}
	if l.Plot.H < 0 {
		l.Plot.H = 0
	}

	categories := make([]string, 0, len(l.Data))
	for _, d := range l.Data {
		categories = append(categories, d.Category)
	}
	l.X = NewBandScale(categories, Range{Min: 0, Max: l.Plot.W}, cfg.BandPadding)

	slots := 0
	if l.HasBar1 {
		slots++
	}
	if l.HasBar2 {
		slots++
	}
	if cfg.BarStyle == config.BarsStacked && slots > 1 {
		slots = 1
	}
	l.Inner = NewInnerScale(slots, l.X.Bandwidth(), cfg.BarGap)

	l.computeValueScales(cfg)

	return l, nil
}

func computeMargins(width, height float64, cfg *config.Config) Margins {
	base := math.Min(width, height) * baseMarginFraction

	m := Margins{Top: base, Right: base, Bottom: base, Left: base}

	if cfg.Title.Show {
		m.Top += titleAddition
	}

	// bottom: x-label rotation tiers, plus the x-axis title band
	if cfg.XAxis.Show && cfg.XAxis.ShowLabels {
		switch rot := math.Abs(cfg.XAxis.LabelRotation); {
		case rot == 0:
			m.Bottom = bottomFlat
		case rot <= 45:
			m.Bottom = bottomRotated
		default:
			m.Bottom = bottomSteep
		}
	}
	if cfg.XAxis.Show && cfg.XAxis.ShowTitle {
		m.Bottom += titleAddition
	}

	// left: clamped once labels or a title reserve space
	if cfg.LeftAxis.Show && (cfg.LeftAxis.ShowLabels || cfg.LeftAxis.ShowTitle) {
		left := base
		if cfg.LeftAxis.ShowLabels {
			left += leftLabelsWidth
		}
		if cfg.LeftAxis.ShowTitle {
			left += titleAddition
		}
		m.Left = clamp(left, leftMarginMin, leftMarginMax)
	}

	// right: reserved only for a visible right axis in dual mode; shared
	// mode hides the right axis entirely
	if cfg.RightAxis.Show && cfg.AxisMode == config.AxisDual {
		right := base
		if cfg.RightAxis.ShowLabels {
			right += rightLabelsWidth
		}
		if cfg.RightAxis.ShowTitle {
			right += titleAddition
		}
		m.Right = clamp(right, rightMarginMin, rightMarginMax)
	}

	return m
}

func legendInsets(cfg *config.Config, anyMapped bool) Insets {
	if !cfg.Legend.Show || !anyMapped {
		return Insets{}
	}

	switch cfg.Legend.Position {
	case config.LegendTop:
		return Insets{Top: legendBandHorizontal + cfg.Legend.Padding}
	case config.LegendLeft:
		return Insets{Left: legendBandVertical + cfg.Legend.Padding}
	case config.LegendRight:
		return Insets{Right: legendBandVertical + cfg.Legend.Padding}
	default:
		return Insets{Bottom: legendBandHorizontal + cfg.Legend.Padding}
	}
}

func (l *Layout) computeValueScales(cfg *config.Config) {
	barMin, barMax := l.barExtent(cfg.BarStyle)
	lineMin, lineMax := l.lineExtent()

	plotRange := Range{Min: 0, Max: l.Plot.H}

	if cfg.AxisMode == config.AxisShared {
		// one combined domain for every mapped measure; the right axis is
		// suppressed and mirrors the left so lookups stay defined
		minV, maxV := barMin, barMax
		if l.HasLine {
			minV = math.Min(minV, lineMin)
			maxV = math.Max(maxV, lineMax)
		}
		dMin, dMax := domainPolicy(minV, maxV, cfg.LeftAxis)
		l.Left = NewLinearScale(dMin, dMax, plotRange, true)
		l.Right = l.Left
	} else {
		dMin, dMax := domainPolicy(barMin, barMax, cfg.LeftAxis)
		l.Left = NewLinearScale(dMin, dMax, plotRange, true)

		rMin, rMax := domainPolicy(lineMin, lineMax, cfg.RightAxis)
		if cfg.SyncDualAxis {
			// synced right axis borrows the left domain wholesale
			rMin, rMax = dMin, dMax
		}
		l.Right = NewLinearScale(rMin, rMax, plotRange, true)
	}

	// the line scale shares the right (or combined) domain but may be
	// compressed into the upper sub-band of the plot
	l.Line = NewLinearScale(l.Right.DomainMin, l.Right.DomainMax,
		Range{Min: 0, Max: l.Plot.H * linePositionFraction(cfg.Line.Position)}, true)
}

// barExtent computes the observed bar domain. Stacked bars sum bar1+bar2 per
// category; grouped bars take the larger of the independent series maxima.
func (l *Layout) barExtent(style config.BarStyle) (minV, maxV float64) {
	if !l.HasBar1 && !l.HasBar2 {
		return 0, 0
	}

	minV = math.Inf(1)
	maxV = math.Inf(-1)

	for _, d := range l.Data {
		if style == config.BarsStacked && l.HasBar1 && l.HasBar2 {
			total := d.Bar1 + d.Bar2
			maxV = math.Max(maxV, total)
			minV = math.Min(minV, math.Min(d.Bar1, d.Bar2))

			continue
		}
		if l.HasBar1 {
			maxV = math.Max(maxV, d.Bar1)
			minV = math.Min(minV, d.Bar1)
		}
		if l.HasBar2 {
			maxV = math.Max(maxV, d.Bar2)
			minV = math.Min(minV, d.Bar2)
		}
	}

	if math.IsInf(minV, 1) { // no data rows
		return 0, 0
	}

	return minV, maxV
}

func (l *Layout) lineExtent() (minV, maxV float64) {
	if !l.HasLine {
		return 0, 0
	}

	minV = math.Inf(1)
	maxV = math.Inf(-1)
	for _, d := range l.Data {
		minV = math.Min(minV, d.Line)
		maxV = math.Max(maxV, d.Line)
	}

	if math.IsInf(minV, 1) {
		return 0, 0
	}

	return minV, maxV
}

// domainPolicy applies zero-inclusion, headroom and explicit overrides to an
// observed extent. Overrides always win, even when they clip data.
func domainPolicy(observedMin, observedMax float64, axis config.AxisOptions) (dMin, dMax float64) {
	if axis.IncludeZero {
		dMin = math.Min(0, observedMin)
	} else {
		dMin = observedMin * noZeroMinFactor
	}
	dMax = observedMax * headroomFactor

	if axis.Min != nil {
		dMin = *axis.Min
	}
	if axis.Max != nil {
		dMax = *axis.Max
	}

	return dMin, dMax
}

func linePositionFraction(p config.LinePosition) float64 {
	switch p {
	case config.PositionTop:
		return 0.25
	case config.PositionUpper:
		return 0.40
	case config.PositionMiddle:
		return 0.55
	case config.PositionLower:
		return 0.70
	case config.PositionBottom:
		return 0.85
	default:
		return 1.0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
