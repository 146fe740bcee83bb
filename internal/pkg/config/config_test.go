package config

import (
	"bytes"
	"testing"

	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"

	"github.com/Shintumon/combochart/internal/pkg/format"
	"github.com/Shintumon/combochart/internal/pkg/model"
)

func TestDefaults(t *testing.T) {
	cfg, err := Defaults()
	require.NoError(t, err)

	assert.Equal(t, AxisDual, cfg.AxisMode)
	assert.Equal(t, BarsGrouped, cfg.BarStyle)
	assert.Equal(t, model.OrderData, cfg.CategoryOrder)
	assert.Equal(t, CurveLinear, cfg.Line.Curve)
	assert.Equal(t, PositionAuto, cfg.Line.Position)
	assert.Equal(t, ShapeCircle, cfg.Points.Shape)
	assert.Equal(t, LegendBottom, cfg.Legend.Position)
	assert.Equal(t, TooltipStructured, cfg.Tooltip.Mode)
	assert.Equal(t, Ease, cfg.Animation.Easing)
	assert.True(t, cfg.Animation.Enabled)
	assert.Equal(t, 750, cfg.Animation.Duration)
	assert.True(t, cfg.LeftAxis.IncludeZero)
	assert.Nil(t, cfg.LeftAxis.Min)
	assert.Nil(t, cfg.LeftAxis.Max)
	assert.Equal(t, "classic", cfg.Palette)
	assert.Empty(t, cfg.Mapping.Dimension)
	assert.False(t, cfg.UseManualMapping)
}

func TestMustDefaults(t *testing.T) {
	assert.NotPanics(t, func() { _ = MustDefaults() })
}

func TestNormalizeClampsInvalidEnums(t *testing.T) {
	cfg := MustDefaults()
	cfg.AxisMode = "sideways"
	cfg.BarStyle = "exploded"
	cfg.Line.Curve = "wavy"
	cfg.Line.Style = "zigzag"
	cfg.Line.Position = "nowhere"
	cfg.Points.Shape = "hexagon"
	cfg.Legend.Position = "floating"
	cfg.Legend.Align = "justified"
	cfg.Bar1.Labels.Position = "under"
	cfg.Tooltip.Mode = "telepathy"
	cfg.Animation.Easing = "bouncy"
	cfg.CategoryOrder = "shuffled"
	cfg.Theme = "sepia"
	cfg.BarGap = 3

	cfg.Normalize()

	assert.Equal(t, AxisDual, cfg.AxisMode)
	assert.Equal(t, BarsGrouped, cfg.BarStyle)
	assert.Equal(t, CurveLinear, cfg.Line.Curve)
	assert.Equal(t, LineSolid, cfg.Line.Style)
	assert.Equal(t, PositionAuto, cfg.Line.Position)
	assert.Equal(t, ShapeCircle, cfg.Points.Shape)
	assert.Equal(t, LegendBottom, cfg.Legend.Position)
	assert.Equal(t, "center", cfg.Legend.Align)
	assert.Equal(t, LabelTop, cfg.Bar1.Labels.Position)
	assert.Equal(t, TooltipStructured, cfg.Tooltip.Mode)
	assert.Equal(t, Ease, cfg.Animation.Easing)
	assert.Equal(t, model.OrderData, cfg.CategoryOrder)
	assert.Equal(t, "light", cfg.Theme)
	assert.InDelta(t, defaultBarGap, cfg.BarGap, 1e-9)
}

func TestApplyPaletteSetsFullTuple(t *testing.T) {
	cfg := MustDefaults()
	require.NoError(t, cfg.ApplyPalette("vivid"))

	assert.Equal(t, "#4f46e5", cfg.Bar1.Color)
	assert.Equal(t, "#10b981", cfg.Bar2.Color)
	assert.Equal(t, "#f59e0b", cfg.Line.Color)
	assert.Equal(t, "#f59e0b", cfg.Points.Fill)
	assert.Equal(t, Darken("#4f46e5", borderDarkenPct), cfg.Bar1.BorderColor)
	assert.Equal(t, Darken("#10b981", borderDarkenPct), cfg.Bar2.BorderColor)
	assert.Equal(t, "vivid", cfg.Palette)
}

func TestApplyPaletteUnknownLeavesConfigUntouched(t *testing.T) {
	cfg := MustDefaults()
	before := *cfg

	require.Error(t, cfg.ApplyPalette("no-such-palette"))
	assert.Equal(t, before.Bar1.Color, cfg.Bar1.Color)
	assert.Equal(t, before.Palette, cfg.Palette)
}

func TestPaletteTableShape(t *testing.T) {
	names := PaletteNames()
	assert.GreaterOrEqual(t, len(names), 10)

	for _, name := range names {
		assert.GreaterOrEqual(t, len(palettes[name]), 3, "palette %s", name)
		for _, c := range palettes[name] {
			_, _, _, ok := parseHexColor(c)
			assert.True(t, ok, "palette %s color %s", name, c)
		}
	}
}

func TestDarken(t *testing.T) {
	assert.Equal(t, "#0c0c0c", Darken("#101010", 0.25))
	assert.Equal(t, "#000000", Darken("#000000", 0.2))
	assert.Equal(t, "#cccccc", Darken("#fff", 0.2))

	// unparseable colors pass through
	assert.Equal(t, "cornflower", Darken("cornflower", 0.2))
}

func TestThemeColors(t *testing.T) {
	cfg := MustDefaults()
	assert.Equal(t, "#ffffff", cfg.ThemeColors().Background)

	cfg.Theme = "dark"
	assert.Equal(t, "#1e1e2e", cfg.ThemeColors().Background)

	cfg.Theme = "unthemed"
	assert.Equal(t, themes["light"], cfg.ThemeColors())
}

func TestFontFor(t *testing.T) {
	cfg := MustDefaults()
	cfg.FontFamily = "Inter"

	inherited := cfg.FontFor(FontSpec{Size: 12, Color: "#333333"})
	assert.Equal(t, "Inter", inherited.Family)
	assert.InDelta(t, 12.0, inherited.Size, 1e-9)

	explicit := cfg.FontFor(FontSpec{Family: "Georgia", Size: 14})
	assert.Equal(t, "Georgia", explicit.Family)
}

func TestStoreRoundTrip(t *testing.T) {
	cfg := MustDefaults()
	cfg.Mapping = model.FieldMapping{Dimension: "Region", Bar1: "SUM(Sales)"}
	cfg.BarStyle = BarsStacked
	cfg.Bar1.Labels.Show = true
	cfg.Bar1.Labels.Format = format.Options{Kind: format.KindCurrency, Decimals: 2, CurrencySymbol: "$"}
	cfg.Animation.Enabled = false
	min := 5.0
	cfg.LeftAxis.Min = &min

	stored, err := cfg.ToStore()
	require.NoError(t, err)
	require.NotEmpty(t, stored)

	restored := MustDefaults()
	require.NoError(t, restored.ApplyStore(stored, nil))

	assert.Equal(t, cfg.Mapping, restored.Mapping)
	assert.Equal(t, BarsStacked, restored.BarStyle)
	assert.True(t, restored.Bar1.Labels.Show)
	assert.Equal(t, format.KindCurrency, restored.Bar1.Labels.Format.Kind)
	assert.False(t, restored.Animation.Enabled)
	require.NotNil(t, restored.LeftAxis.Min)
	assert.InDelta(t, 5.0, *restored.LeftAxis.Min, 1e-9)
}

func TestApplyStoreToleratesNonJSONValues(t *testing.T) {
	cfg := MustDefaults()

	// pre-JSON era settings stored plain strings
	err := cfg.ApplyStore(map[string]string{
		"theme":   "dark",
		"palette": "ocean",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, "ocean", cfg.Palette)
}

func TestApplyStoreIgnoresUnknownKeys(t *testing.T) {
	cfg := MustDefaults()
	require.NoError(t, cfg.ApplyStore(map[string]string{"retiredoption": "42"}, nil))
}

func TestApplyStoreNormalizesBadEnums(t *testing.T) {
	cfg := MustDefaults()
	require.NoError(t, cfg.ApplyStore(map[string]string{"barstyle": "exploded"}, nil))
	assert.Equal(t, BarsGrouped, cfg.BarStyle)
}

func TestEffectiveMergePrecedence(t *testing.T) {
	defaults := *MustDefaults()
	encoding := model.FieldMapping{Dimension: "Region", Bar1: "SUM(Sales)"}

	t.Run("encoding overlays persisted mapping", func(t *testing.T) {
		persisted := map[string]string{
			"mapping": `{"dimension":"Old","bar1":"Stale"}`,
		}

		cfg, err := Effective(defaults, persisted, encoding, nil)
		require.NoError(t, err)
		assert.Equal(t, encoding, cfg.Mapping)
	})

	t.Run("manual override freezes persisted mapping", func(t *testing.T) {
		persisted := map[string]string{
			"mapping":          `{"dimension":"Manual","bar1":"Picked"}`,
			"usemanualmapping": "true",
		}

		cfg, err := Effective(defaults, persisted, encoding, nil)
		require.NoError(t, err)
		assert.Equal(t, "Manual", cfg.Mapping.Dimension)
		assert.Equal(t, "Picked", cfg.Mapping.Bar1)
	})

	t.Run("defaults survive untouched", func(t *testing.T) {
		_, err := Effective(defaults, map[string]string{"theme": `"dark"`}, encoding, nil)
		require.NoError(t, err)
		assert.Equal(t, "light", defaults.Theme)
	})
}

func TestEncodeYAML(t *testing.T) {
	cfg := MustDefaults()

	var buf bytes.Buffer
	require.NoError(t, cfg.EncodeYAML(&buf))
	assert.Contains(t, buf.String(), "palette")
}
