// Package export renders the chart for consumers outside the host widget:
// an interactive ECharts HTML page and a headless-browser PNG capture.
package export

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	echartsopts "github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Shintumon/combochart/internal/pkg/config"
	"github.com/Shintumon/combochart/internal/pkg/field"
	"github.com/Shintumon/combochart/internal/pkg/model"
)

// Chart assembles an ECharts combo chart from the shared configuration and
// prepared data.
type Chart struct {
	options

	cfg  *config.Config
	data []model.ChartDatum
}

// NewChart creates a chart for the given configuration and data.
func NewChart(cfg *config.Config, data []model.ChartDatum, opts ...Option) *Chart {
	return &Chart{
		options: applyOptionsWithDefaults(opts),
		cfg:     cfg,
		data:    model.OrderCategories(data, cfg.CategoryOrder),
	}
}

// Build creates the ECharts bar chart, with the line series overlapped when
// one is mapped.
func (c *Chart) Build() *charts.Bar {
	bar := charts.NewBar()
	cfg := c.cfg

	bar.SetGlobalOptions(c.globalOptions()...)
	bar.SetXAxis(c.categories())

	names := field.NameOverrides{
		Labels:             cfg.NameOverrides(),
		DimensionAxisTitle: cfg.XAxis.Title,
	}

	if cfg.Mapping.Bar1 != "" {
		bar.AddSeries(
			field.DisplayName(model.RoleBar1, cfg.Mapping, names),
			c.barData(func(d model.ChartDatum) float64 { return d.Bar1 }),
			c.barSeriesOptions(cfg.Bar1)...,
		)
	}
	if cfg.Mapping.Bar2 != "" {
		bar.AddSeries(
			field.DisplayName(model.RoleBar2, cfg.Mapping, names),
			c.barData(func(d model.ChartDatum) float64 { return d.Bar2 }),
			c.barSeriesOptions(cfg.Bar2)...,
		)
	}

	if cfg.Mapping.Line != "" {
		if cfg.AxisMode == config.AxisDual {
			bar.ExtendYAxis(echartsopts.YAxis{
				Type: "value",
				Name: field.DisplayName(model.RoleLine, cfg.Mapping, names),
			})
		}
		bar.Overlap(c.buildLine(names))
	}

	return bar
}

func (c *Chart) categories() []string {
	out := make([]string, 0, len(c.data))
	for _, d := range c.data {
		out = append(out, d.Category)
	}

	return out
}

func (c *Chart) barData(value func(model.ChartDatum) float64) []echartsopts.BarData {
	out := make([]echartsopts.BarData, 0, len(c.data))
	for _, d := range c.data {
		out = append(out, echartsopts.BarData{
			Name:  d.Category,
			Value: value(d),
		})
	}

	return out
}

func (c *Chart) barSeriesOptions(series config.SeriesOptions) []charts.SeriesOpts {
	opts := []charts.SeriesOpts{
		charts.WithItemStyleOpts(echartsopts.ItemStyle{Color: series.Color}),
	}

	if c.cfg.BarStyle == config.BarsStacked {
		opts = append(opts, charts.WithBarChartOpts(echartsopts.BarChart{
			Stack: "bars",
		}))
	}

	return opts
}

func (c *Chart) buildLine(names field.NameOverrides) *charts.Line {
	cfg := c.cfg

	line := charts.NewLine()
	line.SetXAxis(c.categories())

	data := make([]echartsopts.LineData, 0, len(c.data))
	for _, d := range c.data {
		data = append(data, echartsopts.LineData{
			Name:  d.Category,
			Value: d.Line,
		})
	}

	lineOpts := echartsopts.LineChart{
		Smooth: echartsopts.Bool(cfg.Line.Curve == config.CurveMonotone || cfg.Line.Curve == config.CurveCardinal),
	}
	if cfg.Line.Curve == config.CurveStepAfter {
		lineOpts.Step = "end"
	}
	if cfg.AxisMode == config.AxisDual {
		lineOpts.YAxisIndex = 1
	}

	line.AddSeries(
		field.DisplayName(model.RoleLine, cfg.Mapping, names),
		data,
		charts.WithLineChartOpts(lineOpts),
		charts.WithItemStyleOpts(echartsopts.ItemStyle{Color: cfg.Line.Color}),
		charts.WithLineStyleOpts(echartsopts.LineStyle{
			Color: cfg.Line.Color,
			Width: float32(cfg.Line.Width),
		}),
	)

	return line
}

func (c *Chart) globalOptions() []charts.GlobalOpts {
	cfg := c.cfg

	titleOpts := echartsopts.Title{}
	if cfg.Title.Show {
		titleOpts.Title = cfg.Title.Text
	}

	legendOpts := echartsopts.Legend{
		Show: echartsopts.Bool(cfg.Legend.Show),
	}
	if cfg.Legend.Show {
		switch cfg.Legend.Position {
		case config.LegendTop:
			legendOpts.Top = "top"
		case config.LegendLeft:
			legendOpts.Left = "left"
			legendOpts.Orient = "vertical"
		case config.LegendRight:
			legendOpts.Left = "right"
			legendOpts.Orient = "vertical"
		default:
			legendOpts.Top = "bottom"
		}
	}

	xAxisOpts := echartsopts.XAxis{
		Type: "category",
		AxisLabel: &echartsopts.AxisLabel{
			Show:   echartsopts.Bool(cfg.XAxis.ShowLabels),
			Rotate: float64(cfg.XAxis.LabelRotation),
		},
	}

	yAxisOpts := echartsopts.YAxis{
		Type: "value",
		AxisLabel: &echartsopts.AxisLabel{
			Show: echartsopts.Bool(cfg.LeftAxis.ShowLabels),
		},
	}

	return []charts.GlobalOpts{
		charts.WithInitializationOpts(echartsopts.Initialization{
			Theme:           c.Theme,
			BackgroundColor: cfg.Background,
			Width:           c.Width,
			Height:          c.Height,
		}),
		charts.WithAnimation(cfg.Animation.Enabled),
		charts.WithTitleOpts(titleOpts),
		charts.WithLegendOpts(legendOpts),
		charts.WithXAxisOpts(xAxisOpts),
		charts.WithYAxisOpts(yAxisOpts),
		charts.WithColorsOpts(echartsopts.Colors{cfg.Bar1.Color, cfg.Bar2.Color, cfg.Line.Color}),
		charts.WithTooltipOpts(echartsopts.Tooltip{
			Show:    echartsopts.Bool(true),
			Trigger: "axis",
			AxisPointer: &echartsopts.AxisPointer{
				Type: "shadow",
			},
		}),
	}
}
