package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Palette is an ordered color list; indices 0, 1 and 2 feed bar1, bar2 and
// the line respectively.
type Palette []string

// Named palettes selectable from the settings surface.
var palettes = map[string]Palette{
	"classic":  {"#4e79a7", "#f28e2b", "#e15759", "#76b7b2"},
	"vivid":    {"#4f46e5", "#10b981", "#f59e0b", "#ef4444"},
	"ocean":    {"#0077b6", "#00b4d8", "#90e0ef", "#03045e"},
	"forest":   {"#2d6a4f", "#74c69d", "#b7e4c7", "#1b4332"},
	"sunset":   {"#f94144", "#f8961e", "#f9c74f", "#90be6d"},
	"berry":    {"#8b5cf6", "#ec4899", "#6366f1", "#a78bfa"},
	"slate":    {"#475569", "#94a3b8", "#1e293b", "#cbd5e1"},
	"citrus":   {"#84cc16", "#f97316", "#facc15", "#65a30d"},
	"dusk":     {"#3d405b", "#e07a5f", "#81b29a", "#f2cc8f"},
	"pastel":   {"#a8dadc", "#f4a261", "#e76f51", "#e9c46a"},
	"monochrome": {"#222222", "#777777", "#bbbbbb", "#444444"},
}

// borderDarkenPct is the component-wise reduction applied to fill colors to
// derive bar border colors.
const borderDarkenPct = 0.2

// PaletteNames lists available palette identifiers, sorted.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// ApplyPalette recolors the chart from the named palette: bar1, bar2 and
// line fills from indices 0/1/2, the point fill following the line, and both
// bar border colors derived by darkening the fills. The 5-tuple is always
// set together; unknown palette names leave the configuration untouched.
func (c *Config) ApplyPalette(name string) error {
	p, ok := palettes[name]
	if !ok || len(p) < 3 {
		return fmt.Errorf("unknown palette %q", name)
	}

	c.Palette = name
	c.Bar1.Color = p[0]
	c.Bar2.Color = p[1]
	c.Line.Color = p[2]
	c.Points.Fill = p[2]
	c.Bar1.BorderColor = Darken(p[0], borderDarkenPct)
	c.Bar2.BorderColor = Darken(p[1], borderDarkenPct)

	return nil
}

// Darken reduces each RGB component of a #rgb or #rrggbb color by pct,
// clamping at 0. Unparseable colors are returned unchanged.
func Darken(hex string, pct float64) string {
	r, g, b, ok := parseHexColor(hex)
	if !ok {
		return hex
	}

	scale := func(c int) int {
		v := int(float64(c) * (1 - pct))
		if v < 0 {
			return 0
		}
		return v
	}

	return fmt.Sprintf("#%02x%02x%02x", scale(r), scale(g), scale(b))
}

func parseHexColor(s string) (r, g, b int, ok bool) {
	s = strings.TrimPrefix(s, "#")

	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return 0, 0, 0, false
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}

	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

// ThemeColors are the chrome colors a theme contributes.
type ThemeColors struct {
	Background string
	Text       string
	Grid       string
	Axis       string
}

var themes = map[string]ThemeColors{
	"light": {Background: "#ffffff", Text: "#333333", Grid: "#dddddd", Axis: "#666666"},
	"dark":  {Background: "#1e1e2e", Text: "#e0e0e0", Grid: "#3a3a4a", Axis: "#9a9ab0"},
}

// ThemeColors resolves the configured theme, falling back to light.
func (c *Config) ThemeColors() ThemeColors {
	if t, ok := themes[c.Theme]; ok {
		return t
	}

	return themes["light"]
}
