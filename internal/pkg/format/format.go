// Package format turns raw values into display strings under the chart's
// formatting options: plain numbers, currency, percent, scientific, custom
// printf/D3-style specifiers, dates, and the legacy compact style kept for
// previously saved configurations.
//
// Formatting never fails: any unusable option or value degrades to a plain
// string rendition.
package format

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/Shintumon/combochart/internal/pkg/model"
)

// Kind names a formatting mode. The zero value behaves like KindAuto.
type Kind string

// Supported formatting modes. KindCompact is the legacy automatic K/M/B
// scaling retained for backward compatibility with old persisted settings.
const (
	KindAuto       Kind = "auto"
	KindNumber     Kind = "number"
	KindCurrency   Kind = "currency"
	KindScientific Kind = "scientific"
	KindPercent    Kind = "percent"
	KindCustom     Kind = "custom"
	KindDate       Kind = "date"
	KindCompact    Kind = "compact"
)

// DisplayUnit scales a magnitude and appends a suffix (K/M/B).
type DisplayUnit string

// Display units. UnitAuto picks, per value, the largest unit whose divisor
// keeps the scaled value at or above 1.
const (
	UnitNone      DisplayUnit = "none"
	UnitThousands DisplayUnit = "thousands"
	UnitMillions  DisplayUnit = "millions"
	UnitBillions  DisplayUnit = "billions"
	UnitAuto      DisplayUnit = "auto"
)

// NegativeStyle selects how negative numbers are written.
type NegativeStyle string

// Negative styles: "-1234" or "(1234)". Applies uniformly to all numeric
// formats, currency and percent included.
const (
	NegativeMinus  NegativeStyle = "minus"
	NegativeParens NegativeStyle = "parens"
)

// Options is the per-element format bundle. It is a flat comparable value so
// it can key the formatter cache.
type Options struct {
	Kind               Kind
	Decimals           int
	ThousandsSeparator bool
	NegativeStyle      NegativeStyle
	DisplayUnits       DisplayUnit
	CurrencySymbol     string
	CurrencySuffix     bool
	CustomFormat       string
	DatePreset         string
	DateFormat         string
}

// Func renders one value as a display string.
type Func func(v any) string

// ForOptions builds a formatter for the given options.
//
// It returns nil for KindAuto, signaling "use the caller's default": category
// labels pass values through, numeric axes fall back to [DefaultNumber].
func ForOptions(o Options) Func {
	switch o.Kind {
	case KindAuto, "":
		return nil
	case KindNumber:
		return func(v any) string { return formatNumeric(v, o, plainMagnitude) }
	case KindCurrency:
		return func(v any) string { return formatNumeric(v, o, currencyMagnitude) }
	case KindScientific:
		return func(v any) string { return formatNumeric(v, o, scientificMagnitude) }
	case KindPercent:
		return func(v any) string { return formatNumeric(v, o, percentMagnitude) }
	case KindCompact:
		return func(v any) string { return formatNumeric(v, o, compactMagnitude) }
	case KindCustom:
		return customFormatter(o)
	case KindDate:
		return dateFormatter(o)
	default:
		// unknown kinds degrade to plain coercion rather than failing
		return func(v any) string { return model.CoerceString(v) }
	}
}

const cacheSize = 256

// cache memoizes formatter construction; formatters are requested once per
// label per render, and custom/date formats pay a parse cost.
var cache, _ = lru.New(cacheSize)

// Cached returns the memoized formatter for the options, building it on a
// cache miss. Like ForOptions, it returns nil for KindAuto.
func Cached(o Options) Func {
	if o.Kind == KindAuto || o.Kind == "" {
		return nil
	}

	if f, ok := cache.Get(o); ok {
		return f.(Func)
	}

	f := ForOptions(o)
	cache.Add(o, f)

	return f
}

// DefaultNumber is the generic comma-grouped fallback used by numeric axes
// when the configured format resolves to auto.
func DefaultNumber(v any) string {
	f, ok := model.CoerceFloat(v)
	if !ok {
		return model.CoerceString(v)
	}

	return groupedFixed(f, inferredDecimals(f))
}

// FixedTwo renders a value with two decimals and a thousands separator, the
// fixed presentation tooltips use regardless of configured label formats.
func FixedTwo(v any) string {
	f, ok := model.CoerceFloat(v)
	if !ok {
		return model.CoerceString(v)
	}

	neg := f < 0
	s := groupedFixed(abs(f), 2)
	if neg {
		return "-" + s
	}

	return s
}

// inferredDecimals keeps integral values terse and fractional ones readable.
func inferredDecimals(f float64) int {
	if f == float64(int64(f)) {
		return 0
	}

	return 2
}
