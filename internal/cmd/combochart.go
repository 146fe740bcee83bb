// Package cmd owns the implementation details of the CLI command.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/Shintumon/combochart/internal/pkg/config"
	"github.com/Shintumon/combochart/internal/pkg/datasource"
	"github.com/Shintumon/combochart/internal/pkg/export"
	"github.com/Shintumon/combochart/internal/pkg/model"
	"github.com/Shintumon/combochart/internal/pkg/render"
	"github.com/Shintumon/combochart/internal/pkg/widget"
)

// Command holds command line flags and executes the combochart command.
//
// It knows how to load a configuration file into a [config.Config] and apply
// CLI flag overrides. The main purpose of this package is to deal with io's:
// opening and closing files; everything else works on streams.
type Command struct {
	Config     string
	DataFile   string
	Settings   string
	OutputFile string
	Png        bool
	DumpConfig bool

	Theme string

	Dimension string
	Bar1      string
	Bar2      string
	Line      string

	L *slog.Logger
}

// NewCommand builds a CLI command with registered flags and an injected logger.
func NewCommand() *Command {
	cli := &Command{
		L: slog.Default().With(slog.String("module", "main")),
	}

	cli.registerFlags()

	return cli
}

// Parse command line flags and arguments.
func (*Command) Parse() error {
	return flag.CommandLine.Parse(os.Args[1:])
}

// Fatalf logs an error message then exits. The output is spewed on both
// stderr and the structured logger output.
func (c *Command) Fatalf(err error) {
	c.L.Error(err.Error())
	log.Fatalf("%v", err)
}

// Execute the CLI with flags and extra arguments.
//
// The first positional argument, when present, overrides the -data flag.
func (c *Command) Execute(args ...string) error {
	if args == nil { // passing explicit args allows for testing Execute without altering [os.Args]
		args = c.args()
	}
	if len(args) > 0 {
		c.DataFile = args[0]
	}

	cfg, err := c.prepareConfig()
	if err != nil {
		return err
	}

	if c.DumpConfig {
		return cfg.EncodeYAML(os.Stdout)
	}

	if c.DataFile == "" {
		return fmt.Errorf("no data file: pass -data or a positional argument")
	}

	scene, data, err := c.buildScene(cfg)
	if err != nil {
		return err
	}

	switch strings.ToLower(path.Ext(c.OutputFile)) {
	case ".html":
		return c.writeHTML(cfg, data)
	case ".png":
		return c.writePNG(cfg, data)
	default:
		return c.writeSVG(scene)
	}
}

func (*Command) args() []string {
	return flag.CommandLine.Args()
}

func (c *Command) registerFlags() {
	defaults := Command{
		Config:     "",
		DataFile:   "",
		Settings:   "combochart-settings.json",
		OutputFile: "-",
	}

	flag.StringVar(&c.Config, "config", defaults.Config, "YAML config file")
	flag.StringVar(&c.Config, "c", defaults.Config, "YAML config file (shorthand)")
	flag.StringVar(&c.DataFile, "data", defaults.DataFile, "CSV or XLSX data file")
	flag.StringVar(&c.Settings, "settings", defaults.Settings, "persisted settings file")
	flag.StringVar(&c.OutputFile, "output", defaults.OutputFile, "output file (.svg, .html or .png), - for standard output")
	flag.StringVar(&c.OutputFile, "o", defaults.OutputFile, "output file, - for standard output (shorthand)")
	flag.BoolVar(&c.Png, "png", defaults.Png, "render a PNG screenshot next to the HTML output")
	flag.BoolVar(&c.DumpConfig, "dump-config", defaults.DumpConfig, "print the effective configuration as YAML and exit")
	flag.StringVar(&c.Theme, "theme", "", "chart theme (light or dark)")

	flag.StringVar(&c.Dimension, "dimension", "", "field for the category axis")
	flag.StringVar(&c.Bar1, "bar1", "", "field for the first bar measure")
	flag.StringVar(&c.Bar2, "bar2", "", "field for the second bar measure")
	flag.StringVar(&c.Line, "line", "", "field for the line measure")
}

func (c *Command) prepareConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if c.Theme != "" {
		cfg.Theme = c.Theme
		cfg.Normalize()
	}

	return cfg, nil
}

// encodingFromFlags assembles the host-reported encoding from CLI flags.
func (c *Command) encodingFromFlags() model.EncodingMap {
	enc := model.EncodingMap{}
	for role, value := range map[model.Role]string{
		model.RoleDimension: c.Dimension,
		model.RoleBar1:      c.Bar1,
		model.RoleBar2:      c.Bar2,
		model.RoleLine:      c.Line,
	} {
		if value != "" {
			enc[role] = value
		}
	}

	return enc
}

// buildScene runs the widget lifecycle once against the file host and
// returns the rendered scene plus the chart data for the HTML/PNG paths.
func (c *Command) buildScene(cfg *config.Config) (*render.Scene, []model.ChartDatum, error) {
	host := datasource.NewFileHost(c.DataFile, c.Settings,
		datasource.WithHostLogger(c.L),
		datasource.WithEncoding(c.encodingFromFlags()),
	)

	// the controller mutates cfg in place: persisted settings and the flag
	// encoding are folded in during Run
	w := widget.New(host, widget.WithLogger(c.L), widget.WithConfig(cfg))
	defer w.Close()

	ctx := context.Background()
	if err := w.Run(ctx); err != nil {
		return nil, nil, fmt.Errorf("loading chart data: %w", err)
	}

	table, err := host.GetRows(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading rows: %w", err)
	}

	return w.Scene(), model.BuildData(&table, cfg.Mapping), nil
}

func (c *Command) writeSVG(scene *render.Scene) error {
	wrt, closer, err := getWriter(c.OutputFile, "SVG")
	if err != nil {
		return err
	}
	defer closer()

	if err := render.WriteSVG(wrt, scene); err != nil {
		return fmt.Errorf("rendering svg: %w", err)
	}

	return nil
}

func (c *Command) writeHTML(cfg *config.Config, data []model.ChartDatum) error {
	wrt, closer, err := getWriter(c.OutputFile, "HTML")
	if err != nil {
		return err
	}
	defer closer()

	if err := c.renderPage(cfg, data, wrt); err != nil {
		return err
	}

	if !c.Png {
		return nil
	}

	return c.writePNGFile(cfg, data, inferImageFile(c.OutputFile))
}

func (c *Command) writePNG(cfg *config.Config, data []model.ChartDatum) error {
	return c.writePNGFile(cfg, data, c.OutputFile)
}

// writePNGFile renders the chart HTML to a temporary file and screenshots it.
func (c *Command) writePNGFile(cfg *config.Config, data []model.ChartDatum, pngFile string) error {
	tmp, err := os.CreateTemp("", "combochart.*.html")
	if err != nil {
		return fmt.Errorf("creating temporary HTML file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if err := c.renderPage(cfg, data, tmp); err != nil {
		_ = tmp.Close()

		return err
	}
	_ = tmp.Close()

	htmlReader, htmlCloser, err := getReader(tmp.Name(), "HTML")
	if err != nil {
		return err
	}
	defer htmlCloser()

	pngWriter, pngCloser, err := getWriter(pngFile, "PNG")
	if err != nil {
		return err
	}
	defer pngCloser()

	r := export.NewImageRenderer()
	if err := r.Render(pngWriter, htmlReader); err != nil {
		return fmt.Errorf("rendering image: %w", err)
	}

	return nil
}

func (c *Command) renderPage(cfg *config.Config, data []model.ChartDatum, wrt *os.File) error {
	title := cfg.Title.Text
	if title == "" {
		title = "combo chart"
	}

	page := export.NewPage(title)
	page.AddChart(export.NewChart(cfg, data))

	if err := page.Render(wrt); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}

	return nil
}

func getReader(file, kind string) (rdr *os.File, cleanup func(), err error) {
	rdr, err = os.Open(file)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s file: %q: %w", kind, file, err)
	}

	cleanup = func() {
		_ = rdr.Close()
	}

	return rdr, cleanup, nil
}

func getWriter(file, kind string) (wrt *os.File, cleanup func(), err error) {
	if file == "" || file == "-" {
		return os.Stdout, func() {}, nil
	}

	wrt, err = os.Create(file)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s file for writing: %q: %w", kind, file, err)
	}

	cleanup = func() {
		_ = wrt.Close()
	}

	return wrt, cleanup, nil
}

func inferImageFile(base string) string {
	ext := path.Ext(base)
	stem, _ := strings.CutSuffix(base, ext)

	return stem + ".png"
}
