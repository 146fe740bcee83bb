package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"

	"github.com/Shintumon/combochart/internal/pkg/config"
	"github.com/Shintumon/combochart/internal/pkg/model"
)

func exportConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.MustDefaults()
	cfg.Mapping = model.FieldMapping{
		Dimension: "Region",
		Bar1:      "SUM(Sales)",
		Bar2:      "SUM(Profit)",
		Line:      "AVG(Margin)",
	}
	cfg.Title.Show = true
	cfg.Title.Text = "Sales and Margin"

	return cfg
}

func exportData() []model.ChartDatum {
	return []model.ChartDatum{
		{Category: "East", Bar1: 100, Bar2: 30, Line: 0.2},
		{Category: "West", Bar1: 150, Bar2: 40, Line: 0.3},
		{Category: "North", Bar1: 120, Bar2: 35, Line: 0.25},
	}
}

// TestSmokeRenderHTML builds a full combo chart page and renders it to HTML.
func TestSmokeRenderHTML(t *testing.T) {
	cfg := exportConfig(t)

	page := NewPage("sales dashboard")
	page.AddChart(NewChart(cfg, exportData()))

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))

	html := buf.String()
	require.NotEmpty(t, html)

	assert.True(t,
		strings.Contains(html, "<html>") || strings.Contains(html, "<!DOCTYPE html>") || strings.Contains(html, "<script"),
		"output doesn't look like HTML",
	)
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Sales and Margin")

	// both bar series and the line series made it into the page
	assert.Contains(t, html, "Sales")
	assert.Contains(t, html, "Profit")
	assert.Contains(t, html, "Margin")
}

func TestPageTitleIsTitleized(t *testing.T) {
	page := NewPage("sales dashboard")
	assert.Equal(t, "Sales Dashboard", page.Title)
}

func TestChartBuildVariants(t *testing.T) {
	t.Run("stacked bars", func(t *testing.T) {
		cfg := exportConfig(t)
		cfg.BarStyle = config.BarsStacked

		bar := NewChart(cfg, exportData()).Build()
		require.NotNil(t, bar)

		var buf bytes.Buffer
		require.NoError(t, bar.Render(&buf))
		assert.Contains(t, buf.String(), "stack")
	})

	t.Run("shared axis omits the second y axis", func(t *testing.T) {
		cfg := exportConfig(t)
		cfg.AxisMode = config.AxisShared

		bar := NewChart(cfg, exportData()).Build()
		require.NotNil(t, bar)

		var buf bytes.Buffer
		require.NoError(t, bar.Render(&buf))
	})

	t.Run("bars only", func(t *testing.T) {
		cfg := exportConfig(t)
		cfg.Mapping.Line = ""

		var buf bytes.Buffer
		require.NoError(t, NewChart(cfg, exportData()).Build().Render(&buf))
	})
}

func TestChartOrdersCategories(t *testing.T) {
	cfg := exportConfig(t)
	cfg.CategoryOrder = model.OrderAsc

	c := NewChart(cfg, exportData())
	assert.Equal(t, []string{"East", "North", "West"}, c.categories())
}
