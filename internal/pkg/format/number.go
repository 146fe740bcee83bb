package format

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/Shintumon/combochart/internal/pkg/model"
)

// magnitudeFunc renders the absolute value of a number; sign handling and
// display-unit scaling are shared across all numeric kinds.
type magnitudeFunc func(abs float64, o Options) string

var printer = message.NewPrinter(language.English)

func formatNumeric(v any, o Options, magnitude magnitudeFunc) string {
	f, ok := model.CoerceFloat(v)
	if !ok {
		return model.CoerceString(v)
	}

	neg := f < 0

	return applySign(magnitude(abs(f), o), neg, o.NegativeStyle)
}

func applySign(s string, neg bool, style NegativeStyle) string {
	if !neg {
		return s
	}
	if style == NegativeParens {
		return "(" + s + ")"
	}

	return "-" + s
}

func plainMagnitude(f float64, o Options) string {
	scaled, suffix := scaleUnits(f, o.DisplayUnits)

	return renderFixed(scaled, o.Decimals, o.ThousandsSeparator) + suffix
}

func currencyMagnitude(f float64, o Options) string {
	scaled, suffix := scaleUnits(f, o.DisplayUnits)
	num := renderFixed(scaled, o.Decimals, o.ThousandsSeparator) + suffix

	symbol := o.CurrencySymbol
	if symbol == "" {
		symbol = "$"
	}
	if o.CurrencySuffix {
		return num + symbol
	}

	return symbol + num
}

func percentMagnitude(f float64, o Options) string {
	return renderFixed(f*100, o.Decimals, o.ThousandsSeparator) + "%"
}

func scientificMagnitude(f float64, o Options) string {
	return strconv.FormatFloat(f, 'e', o.Decimals, 64)
}

// compactMagnitude is the legacy auto-scaling path, kept distinct from
// DisplayUnits=auto so that old persisted settings keep their behavior.
func compactMagnitude(f float64, o Options) string {
	switch {
	case f >= 1e9:
		return renderFixed(f/1e9, o.Decimals, o.ThousandsSeparator) + "B"
	case f >= 1e6:
		return renderFixed(f/1e6, o.Decimals, o.ThousandsSeparator) + "M"
	case f >= 1e3:
		return renderFixed(f/1e3, o.Decimals, o.ThousandsSeparator) + "K"
	default:
		return renderFixed(f, o.Decimals, o.ThousandsSeparator)
	}
}

// scaleUnits divides a magnitude per the configured display unit. UnitAuto
// picks the largest unit keeping the scaled value >= 1, independently per
// value: two labels on one axis may legitimately carry different suffixes.
func scaleUnits(f float64, unit DisplayUnit) (scaled float64, suffix string) {
	switch unit {
	case UnitThousands:
		return f / 1e3, "K"
	case UnitMillions:
		return f / 1e6, "M"
	case UnitBillions:
		return f / 1e9, "B"
	case UnitAuto:
		switch {
		case f >= 1e9:
			return f / 1e9, "B"
		case f >= 1e6:
			return f / 1e6, "M"
		case f >= 1e3:
			return f / 1e3, "K"
		default:
			return f, ""
		}
	default:
		return f, ""
	}
}

func renderFixed(f float64, decimals int, grouped bool) string {
	if decimals < 0 {
		decimals = 0
	}
	if grouped {
		return groupedFixed(f, decimals)
	}

	return strconv.FormatFloat(f, 'f', decimals, 64)
}

func groupedFixed(f float64, decimals int) string {
	return printer.Sprint(number.Decimal(f,
		number.MinFractionDigits(decimals),
		number.MaxFractionDigits(decimals),
	))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}

	return f
}

// customFormatter interprets a printf/D3-style specifier such as ",.2f".
// Invalid specifiers degrade to plain string coercion.
func customFormatter(o Options) Func {
	spec, ok := parseSpecifier(o.CustomFormat)
	if !ok {
		return func(v any) string { return model.CoerceString(v) }
	}

	return func(v any) string {
		f, fOK := model.CoerceFloat(v)
		if !fOK {
			return model.CoerceString(v)
		}

		neg := f < 0
		a := abs(f)

		var s string
		switch spec.verb {
		case 'f':
			s = renderFixed(a, spec.precision, spec.grouped)
		case 'd':
			s = renderFixed(a, 0, spec.grouped)
		case 'e':
			s = strconv.FormatFloat(a, 'e', spec.precision, 64)
		case '%':
			s = renderFixed(a*100, spec.precision, spec.grouped) + "%"
		case 's':
			scaled, suffix := scaleUnits(a, UnitAuto)
			s = renderFixed(scaled, spec.precision, spec.grouped) + suffix
		}

		return applySign(s, neg, o.NegativeStyle)
	}
}

type specifier struct {
	grouped   bool
	precision int
	verb      byte
}

// parseSpecifier accepts the subset [,][.N][f|d|e|s|%] of the D3 format
// mini-language; a bare "," or missing verb defaults to 'f'.
func parseSpecifier(s string) (specifier, bool) {
	if s == "" {
		return specifier{}, false
	}

	spec := specifier{precision: -1, verb: 'f'}
	rest := s

	if strings.HasPrefix(rest, ",") {
		spec.grouped = true
		rest = rest[1:]
	}

	if strings.HasPrefix(rest, ".") {
		rest = rest[1:]
		i := 0
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == 0 {
			return specifier{}, false
		}
		n, err := strconv.Atoi(rest[:i])
		if err != nil {
			return specifier{}, false
		}
		spec.precision = n
		rest = rest[i:]
	}

	switch rest {
	case "":
	case "f", "d", "e", "s", "%":
		spec.verb = rest[0]
	default:
		return specifier{}, false
	}

	if spec.precision < 0 {
		if spec.verb == 'd' {
			spec.precision = 0
		} else {
			spec.precision = 2
		}
	}

	return spec, true
}
