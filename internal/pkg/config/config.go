// Package config owns the chart's option surface: defaults, palettes, themes,
// the merge of persisted and host-derived state, and the codec against the
// host's string-only settings store.
package config

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"go.yaml.in/yaml/v3"

	"github.com/Shintumon/combochart/internal/pkg/format"
	"github.com/Shintumon/combochart/internal/pkg/model"
)

//go:embed default_config.yaml
var efs embed.FS

// AxisMode selects independent left/right value scales or one shared scale.
type AxisMode string

// Axis modes. Shared mode suppresses the right axis entirely.
const (
	AxisDual   AxisMode = "dual"
	AxisShared AxisMode = "shared"
)

// BarStyle selects side-by-side or stacked bar placement.
type BarStyle string

// Bar styles.
const (
	BarsGrouped BarStyle = "grouped"
	BarsStacked BarStyle = "stacked"
)

// CurveKind selects the line interpolation.
type CurveKind string

// Line interpolation curves.
const (
	CurveLinear    CurveKind = "linear"
	CurveMonotone  CurveKind = "monotone"
	CurveCardinal  CurveKind = "cardinal"
	CurveStepAfter CurveKind = "step-after"
)

// LineStyle selects the line stroke pattern.
type LineStyle string

// Line stroke styles.
const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
	LineDotted LineStyle = "dotted"
)

// LinePosition compresses the line's vertical range into a sub-band of the
// plot height, separating it visually from the bars without rescaling its
// domain.
type LinePosition string

// Line positions, top of the plot downwards. PositionAuto uses full height.
const (
	PositionAuto   LinePosition = "auto"
	PositionTop    LinePosition = "top"
	PositionUpper  LinePosition = "upper"
	PositionMiddle LinePosition = "middle"
	PositionLower  LinePosition = "lower"
	PositionBottom LinePosition = "bottom"
)

// PointShape selects the marker drawn on line vertices.
type PointShape string

// Point marker shapes.
const (
	ShapeCircle   PointShape = "circle"
	ShapeSquare   PointShape = "square"
	ShapeDiamond  PointShape = "diamond"
	ShapeTriangle PointShape = "triangle"
)

// LegendPosition places the legend on one side of the chart.
type LegendPosition string

// Legend positions.
const (
	LegendTop    LegendPosition = "top"
	LegendBottom LegendPosition = "bottom"
	LegendLeft   LegendPosition = "left"
	LegendRight  LegendPosition = "right"
)

// LabelPosition places a bar data label relative to its bar.
type LabelPosition string

// Data label positions.
const (
	LabelTop    LabelPosition = "top"
	LabelInside LabelPosition = "inside"
	LabelCenter LabelPosition = "center"
)

// TooltipMode selects structured toggles or a user-authored template.
type TooltipMode string

// Tooltip modes.
const (
	TooltipStructured TooltipMode = "structured"
	TooltipTemplate   TooltipMode = "template"
)

// Easing names the chart-wide animation curve.
type Easing string

// The supported easing curves.
const (
	EaseLinear    Easing = "linear"
	Ease          Easing = "ease"
	EaseIn        Easing = "ease-in"
	EaseOut       Easing = "ease-out"
	EaseInOut     Easing = "ease-in-out"
	EaseCubic     Easing = "cubic"
	EaseElastic   Easing = "elastic"
)

// FontSpec styles one visual element. An empty Family inherits the global
// font family; size, weight and color never inherit.
type FontSpec struct {
	Family string
	Size   float64
	Weight string
	Color  string
	Italic bool
}

// TitleOptions styles the chart title.
type TitleOptions struct {
	Show  bool
	Text  string
	Align string
	Font  FontSpec
}

// SeriesOptions styles one bar series.
type SeriesOptions struct {
	Label        string
	Color        string
	Opacity      float64
	Border       bool
	BorderColor  string
	BorderWidth  float64
	CornerRadius float64
	Tooltip      bool
	Labels       DataLabelOptions
}

// DataLabelOptions styles the per-mark value labels of one series.
type DataLabelOptions struct {
	Show     bool
	Position LabelPosition
	Font     FontSpec
	OffsetX  float64
	OffsetY  float64
	Format   format.Options
}

// LineOptions styles the line series.
type LineOptions struct {
	Label    string
	Color    string
	Width    float64
	Style    LineStyle
	Curve    CurveKind
	Position LinePosition
	Opacity  float64
	Tooltip  bool
	Labels   DataLabelOptions
}

// PointOptions styles the optional markers on line vertices.
type PointOptions struct {
	Show        bool
	Shape       PointShape
	Size        float64
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// AxisOptions styles one of the three axes. Font colors the axis line and
// ticks; LabelFont styles the tick text; the two are independent specs.
// LabelRotation is honored on the x axis only.
type AxisOptions struct {
	Show          bool
	ShowTicks     bool
	ShowLine      bool
	ShowLabels    bool
	ShowTitle     bool
	Title         string
	Font          FontSpec
	LabelFont     FontSpec
	LabelOffsetX  float64
	LabelOffsetY  float64
	LabelRotation float64
	IncludeZero   bool
	Min           *float64
	Max           *float64
	TickCount     int
	Format        format.Options
}

// GridOptions styles the background grid lines.
type GridOptions struct {
	Horizontal bool
	Vertical   bool
	Color      string
	Opacity    float64
}

// LegendOptions styles and places the legend.
type LegendOptions struct {
	Show        bool
	Position    LegendPosition
	Align       string
	Padding     float64
	ItemGap     float64
	Background  string
	Border      bool
	BorderColor string
	Font        FontSpec
}

// TooltipOptions configures hover content and styling.
type TooltipOptions struct {
	Mode            TooltipMode
	ShowDimension   bool
	ShowMeasureName bool
	ShowValue       bool
	Template        string
	Background      string
	TextColor       string
	Offset          float64
	Font            FontSpec
}

// AnimationOptions configures the chart-wide animation switch. Duration is
// in milliseconds; disabling animation zeroes every transition uniformly.
type AnimationOptions struct {
	Enabled  bool
	Duration int
	Easing   Easing
}

// ChromeOptions are the dashboard-chrome toggles around the plot itself.
type ChromeOptions struct {
	ShowBackground bool
	RoundedFrame   bool
	Padding        float64
}

// Config is the full option surface of the combo chart.
//
// Every option has a default: instances should originate from Defaults (or a
// merge of it), never from a zero value. The reconciliation controller is
// the single writer; the renderer only reads.
type Config struct {
	Mapping          model.FieldMapping
	UseManualMapping bool
	CategoryOrder    model.CategoryOrder

	Theme      string
	Palette    string
	Background string
	FontFamily string

	AxisMode     AxisMode
	SyncDualAxis bool
	BarStyle     BarStyle
	BarGap       float64
	BandPadding  float64

	Title  TitleOptions
	Bar1   SeriesOptions
	Bar2   SeriesOptions
	Line   LineOptions
	Points PointOptions

	XAxis     AxisOptions
	LeftAxis  AxisOptions
	RightAxis AxisOptions

	Grid      GridOptions
	Legend    LegendOptions
	Tooltip   TooltipOptions
	Animation AnimationOptions
	Chrome    ChromeOptions
}

// Defaults loads the default configuration from the embedded YAML.
func Defaults() (*Config, error) {
	content, err := fs.ReadFile(efs, "default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded defaults: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	cfg := &Config{}
	if err := mapstructure.Decode(raw, cfg); err != nil {
		return nil, fmt.Errorf("decoding embedded defaults: %w", err)
	}

	cfg.Normalize()

	return cfg, nil
}

// Load builds a configuration from the defaults overlaid with a YAML file.
// An empty path returns plain defaults.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := mapstructure.Decode(raw, cfg); err != nil {
		return nil, fmt.Errorf("decoding config file %s: %w", path, err)
	}

	cfg.Normalize()

	return cfg, nil
}

// MustDefaults is Defaults for initialization paths where the embedded
// defaults not parsing is a programming error.
func MustDefaults() *Config {
	cfg, err := Defaults()
	if err != nil {
		panic(fmt.Sprintf("loading embedded defaults: %v", err))
	}

	return cfg
}

// Normalize clamps every closed-enum option back to its safe default so an
// invalid persisted value degrades instead of breaking rendering.
func (c *Config) Normalize() {
	if c.AxisMode != AxisDual && c.AxisMode != AxisShared {
		c.AxisMode = AxisDual
	}
	if c.BarStyle != BarsGrouped && c.BarStyle != BarsStacked {
		c.BarStyle = BarsGrouped
	}
	if !c.CategoryOrder.IsValid() {
		c.CategoryOrder = model.OrderData
	}

	switch c.Line.Curve {
	case CurveLinear, CurveMonotone, CurveCardinal, CurveStepAfter:
	default:
		c.Line.Curve = CurveLinear
	}
	switch c.Line.Style {
	case LineSolid, LineDashed, LineDotted:
	default:
		c.Line.Style = LineSolid
	}
	switch c.Line.Position {
	case PositionAuto, PositionTop, PositionUpper, PositionMiddle, PositionLower, PositionBottom:
	default:
		c.Line.Position = PositionAuto
	}

	switch c.Points.Shape {
	case ShapeCircle, ShapeSquare, ShapeDiamond, ShapeTriangle:
	default:
		c.Points.Shape = ShapeCircle
	}

	switch c.Legend.Position {
	case LegendTop, LegendBottom, LegendLeft, LegendRight:
	default:
		c.Legend.Position = LegendBottom
	}
	switch c.Legend.Align {
	case "start", "center", "end":
	default:
		c.Legend.Align = "center"
	}

	for _, labels := range []*DataLabelOptions{&c.Bar1.Labels, &c.Bar2.Labels, &c.Line.Labels} {
		switch labels.Position {
		case LabelTop, LabelInside, LabelCenter:
		default:
			labels.Position = LabelTop
		}
	}

	switch c.Tooltip.Mode {
	case TooltipStructured, TooltipTemplate:
	default:
		c.Tooltip.Mode = TooltipStructured
	}

	switch c.Animation.Easing {
	case EaseLinear, Ease, EaseIn, EaseOut, EaseInOut, EaseCubic, EaseElastic:
	default:
		c.Animation.Easing = Ease
	}

	if c.Theme != "light" && c.Theme != "dark" {
		c.Theme = "light"
	}

	if c.BarGap < 0 || c.BarGap >= 1 {
		c.BarGap = defaultBarGap
	}
	if c.BandPadding < 0 || c.BandPadding >= 1 {
		c.BandPadding = defaultBandPadding
	}
}

const (
	defaultBarGap      = 0.1
	defaultBandPadding = 0.2
)

// FontFor resolves an element font against the global family fallback: only
// the family inherits, never size, weight or color.
func (c *Config) FontFor(f FontSpec) FontSpec {
	if f.Family == "" {
		f.Family = c.FontFamily
	}

	return f
}

// NameOverrides assembles the configured per-role labels for display-name
// resolution.
func (c *Config) NameOverrides() map[model.Role]string {
	return map[model.Role]string{
		model.RoleBar1: c.Bar1.Label,
		model.RoleBar2: c.Bar2.Label,
		model.RoleLine: c.Line.Label,
	}
}

// EncodeYAML serializes the configuration to YAML for inspection.
func (c *Config) EncodeYAML(w io.Writer) error {
	var raw map[string]any

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Squash: true,
		Deep:   true,
		Result: &raw,
	})
	if err != nil {
		return fmt.Errorf("creating mapstructure decoder: %w", err)
	}

	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("decoding config to map: %w", err)
	}

	return yaml.NewEncoder(w).Encode(raw)
}
