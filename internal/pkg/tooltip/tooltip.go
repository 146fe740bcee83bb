// Package tooltip composes hover content for a chart datum, in either the
// structured row form or through a user template.
package tooltip

import (
	"strings"

	"github.com/Shintumon/combochart/internal/pkg/config"
	"github.com/Shintumon/combochart/internal/pkg/field"
	"github.com/Shintumon/combochart/internal/pkg/format"
	"github.com/Shintumon/combochart/internal/pkg/model"
)

// Row is one line of a structured tooltip.
type Row struct {
	Label string
	Value string
}

func (r Row) String() string {
	switch {
	case r.Label == "":
		return r.Value
	case r.Value == "":
		return r.Label
	default:
		return r.Label + " : " + r.Value
	}
}

// Content is the composed tooltip for one datum. Exactly one of Rows or HTML
// is populated depending on the configured mode. HTML passes through the
// template output verbatim, markup included; hosts that need sanitization
// apply their own.
type Content struct {
	Rows []Row
	HTML string
}

// Empty reports whether there is nothing to show.
func (c Content) Empty() bool {
	return len(c.Rows) == 0 && c.HTML == ""
}

// Compose builds the tooltip for datum d. hovered names the series under the
// cursor and feeds the {measure}/{value} template tokens; it may be empty
// for a whole-category hover.
func Compose(cfg *config.Config, d model.ChartDatum, hovered model.Role) Content {
	if cfg.Tooltip.Mode == config.TooltipTemplate && cfg.Tooltip.Template != "" {
		return Content{HTML: expand(cfg, d, hovered)}
	}

	return Content{Rows: structuredRows(cfg, d)}
}

func structuredRows(cfg *config.Config, d model.ChartDatum) []Row {
	names := field.NameOverrides{
		Labels:             cfg.NameOverrides(),
		DimensionAxisTitle: cfg.XAxis.Title,
	}

	var rows []Row
	if cfg.Tooltip.ShowDimension && cfg.Mapping.HasDimension() {
		rows = append(rows, Row{
			Label: field.DisplayName(model.RoleDimension, cfg.Mapping, names),
			Value: d.Category,
		})
	}

	for _, sr := range seriesRoles(cfg) {
		row := Row{}
		if cfg.Tooltip.ShowMeasureName {
			row.Label = field.DisplayName(sr.role, cfg.Mapping, names)
		}
		if cfg.Tooltip.ShowValue {
			row.Value = format.FixedTwo(sr.value(d))
		}
		if row.Label == "" && row.Value == "" {
			continue
		}
		rows = append(rows, row)
	}

	return rows
}

type seriesRole struct {
	role  model.Role
	value func(model.ChartDatum) float64
}

// seriesRoles lists the mapped series whose tooltip toggle is on, in chart
// order.
func seriesRoles(cfg *config.Config) []seriesRole {
	var out []seriesRole
	if cfg.Mapping.Bar1 != "" && cfg.Bar1.Tooltip {
		out = append(out, seriesRole{model.RoleBar1, func(d model.ChartDatum) float64 { return d.Bar1 }})
	}
	if cfg.Mapping.Bar2 != "" && cfg.Bar2.Tooltip {
		out = append(out, seriesRole{model.RoleBar2, func(d model.ChartDatum) float64 { return d.Bar2 }})
	}
	if cfg.Mapping.Line != "" && cfg.Line.Tooltip {
		out = append(out, seriesRole{model.RoleLine, func(d model.ChartDatum) float64 { return d.Line }})
	}

	return out
}

// expand substitutes the template tokens for datum d. Lines left blank once
// every token is substituted are dropped, so templates can reference series
// that are not always mapped.
func expand(cfg *config.Config, d model.ChartDatum, hovered model.Role) string {
	names := field.NameOverrides{
		Labels:             cfg.NameOverrides(),
		DimensionAxisTitle: cfg.XAxis.Title,
	}

	pairs := []string{
		"{dimension}", d.Category,
		"{dimension_label}", field.DisplayName(model.RoleDimension, cfg.Mapping, names),
	}

	for _, sr := range []struct {
		role  model.Role
		value float64
	}{
		{model.RoleBar1, d.Bar1},
		{model.RoleBar2, d.Bar2},
		{model.RoleLine, d.Line},
	} {
		formatted := ""
		label := ""
		composite := ""
		if cfg.Mapping.Field(sr.role) != "" {
			formatted = format.FixedTwo(sr.value)
			label = field.DisplayName(sr.role, cfg.Mapping, names)
			composite = label + " : " + formatted
		}
		name := string(sr.role)
		// the bare token is the whole "Label : Value" row; _label and _value
		// pick the parts
		pairs = append(pairs,
			"{"+name+"}", composite,
			"{"+name+"_label}", label,
			"{"+name+"_value}", formatted,
		)
	}

	hoveredValue := ""
	hoveredLabel := ""
	if hovered != "" && cfg.Mapping.Field(hovered) != "" {
		hoveredValue = format.FixedTwo(roleValue(d, hovered))
		hoveredLabel = field.DisplayName(hovered, cfg.Mapping, names)
	}
	pairs = append(pairs,
		"{measure}", hoveredLabel,
		"{value}", hoveredValue,
	)

	out := strings.NewReplacer(pairs...).Replace(cfg.Tooltip.Template)

	lines := strings.Split(out, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}

func roleValue(d model.ChartDatum, role model.Role) float64 {
	switch role {
	case model.RoleBar2:
		return d.Bar2
	case model.RoleLine:
		return d.Line
	default:
		return d.Bar1
	}
}

// Position places a tooltip of size (w, h) near the anchor point inside the
// viewport: preferred placement is right of and above the anchor, flipping
// to the other side when it would overflow, then clamping to the edges.
func Position(anchorX, anchorY, w, h, viewportW, viewportH, offset float64) (x, y float64) {
	x = anchorX + offset
	if x+w > viewportW {
		x = anchorX - offset - w
	}

	y = anchorY - offset - h
	if y < 0 {
		y = anchorY + offset
	}

	if x < 0 {
		x = 0
	}
	if x+w > viewportW {
		x = viewportW - w
	}
	if y < 0 {
		y = 0
	}
	if y+h > viewportH {
		y = viewportH - h
	}

	return x, y
}
