package export

// Option configures a [Chart].
type Option func(*options)

type options struct {
	Theme  string
	Width  string
	Height string
}

const (
	defaultWidth  = "900px"
	defaultHeight = "500px"
)

// WithTheme sets the ECharts color theme.
func WithTheme(theme string) Option {
	return func(o *options) {
		o.Theme = theme
	}
}

// WithDimensions sets the rendered chart size, as CSS lengths.
func WithDimensions(width, height string) Option {
	return func(o *options) {
		if width != "" {
			o.Width = width
		}
		if height != "" {
			o.Height = height
		}
	}
}

func applyOptionsWithDefaults(opts []Option) options {
	o := options{
		Width:  defaultWidth,
		Height: defaultHeight,
	}

	for _, apply := range opts {
		apply(&o)
	}

	return o
}
