package cmd

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Shintumon/combochart/internal/pkg/model"

	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"
)

func TestNewCommand(t *testing.T) {
	cli := NewCommand()
	require.NotNil(t, cli)
	assert.NotNil(t, cli.L)
	// Verify defaults from registerFlags
	assert.Equal(t, "combochart-settings.json", cli.Settings)
	assert.Equal(t, "-", cli.OutputFile)
}

func TestInferImageFile(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"output.html", "output.png"},
		{"output.png", "output.png"},
		{"output", "output.png"},
		{"path/to/output.html", "path/to/output.png"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, inferImageFile(tt.input))
		})
	}
}

func TestEncodingFromFlags(t *testing.T) {
	cli := &Command{
		Dimension: "Region",
		Bar1:      "Sales",
		Line:      "Margin",
		L:         newTestLogger(),
	}

	enc := cli.encodingFromFlags()

	assert.Equal(t, "Region", enc[model.RoleDimension])
	assert.Equal(t, "Sales", enc[model.RoleBar1])
	assert.Equal(t, "Margin", enc[model.RoleLine])
	_, hasBar2 := enc[model.RoleBar2]
	assert.False(t, hasBar2)
}

func TestPrepareConfig(t *testing.T) {
	cfgFile := writeTestFile(t, "config.yaml", testConfig())

	cli := &Command{
		Config: cfgFile,
		L:      newTestLogger(),
	}

	cfg, err := cli.prepareConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "quarterly sales", cfg.Title.Text)
}

func TestPrepareConfigDefaults(t *testing.T) {
	cli := &Command{
		L: newTestLogger(),
	}

	cfg, err := cli.prepareConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
}

func TestPrepareConfigMissingFile(t *testing.T) {
	cli := &Command{
		Config: "/nonexistent/config.yaml",
		L:      newTestLogger(),
	}

	_, err := cli.prepareConfig()
	require.Error(t, err)
}

func TestExecuteSVGOutput(t *testing.T) {
	dataFile := writeTestFile(t, "sales.csv", testCSV())
	outFile := filepath.Join(t.TempDir(), "output.svg")

	cli := &Command{
		OutputFile: outFile,
		Settings:   filepath.Join(t.TempDir(), "settings.json"),
		Dimension:  "Region",
		Bar1:       "Sales",
		Line:       "Margin",
		L:          newTestLogger(),
	}

	require.NoError(t, cli.Execute(dataFile))

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<svg")
	assert.Contains(t, string(content), "</svg>")
}

func TestExecuteHTMLOutput(t *testing.T) {
	dataFile := writeTestFile(t, "sales.csv", testCSV())
	outFile := filepath.Join(t.TempDir(), "output.html")

	cli := &Command{
		OutputFile: outFile,
		Settings:   filepath.Join(t.TempDir(), "settings.json"),
		Dimension:  "Region",
		Bar1:       "Sales",
		Line:       "Margin",
		L:          newTestLogger(),
	}

	require.NoError(t, cli.Execute(dataFile))

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "echarts")
}

func TestExecuteMissingInput(t *testing.T) {
	cli := &Command{
		OutputFile: filepath.Join(t.TempDir(), "output.svg"),
		Settings:   filepath.Join(t.TempDir(), "settings.json"),
		L:          newTestLogger(),
	}

	require.Error(t, cli.Execute("/nonexistent/sales.csv"))
}

func TestExecuteNoData(t *testing.T) {
	cli := &Command{
		L: newTestLogger(),
	}

	err := cli.Execute("") // empty positional clears nothing; DataFile stays empty
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data file")
}

func TestExecuteConfigOverlay(t *testing.T) {
	dataFile := writeTestFile(t, "sales.csv", testCSV())
	cfgFile := writeTestFile(t, "config.yaml", testConfig())
	outFile := filepath.Join(t.TempDir(), "output.html")

	cli := &Command{
		Config:     cfgFile,
		OutputFile: outFile,
		Settings:   filepath.Join(t.TempDir(), "settings.json"),
		Dimension:  "Region",
		Bar1:       "Sales",
		L:          newTestLogger(),
	}

	require.NoError(t, cli.Execute(dataFile))

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	// the YAML title flows through to the rendered page
	assert.Contains(t, string(content), "Quarterly Sales")
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()

	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0600))

	return file
}

func testCSV() string {
	return strings.Join([]string{
		"Region,Sales,Margin",
		"West,1200.5,0.42",
		"East,980.0,0.38",
		"North,1430.2,0.45",
	}, "\n")
}

func testConfig() string {
	return `
title:
  show: true
  text: quarterly sales
`
}
