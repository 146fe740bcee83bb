package export

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/components"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Page wraps one or more charts in a single HTML document.
type Page struct {
	Title  string
	Charts []*Chart
}

// NewPage creates a page with the given title. The title is case-normalized
// for the browser tab.
func NewPage(title string) *Page {
	return &Page{
		Title: cases.Title(language.English).String(title),
	}
}

// AddChart adds a chart to the page.
func (p *Page) AddChart(c *Chart) {
	p.Charts = append(p.Charts, c)
}

// Render writes the page HTML to the given writer.
func (p *Page) Render(w io.Writer) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.SetPageTitle(p.Title)

	for _, c := range p.Charts {
		page.AddCharts(c.Build())
	}

	return page.Render(w)
}
