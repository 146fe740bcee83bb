package format

import (
	"testing"
	"time"

	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"
)

func TestForOptionsAutoReturnsNil(t *testing.T) {
	assert.Nil(t, ForOptions(Options{Kind: KindAuto}))
	assert.Nil(t, ForOptions(Options{}))
	assert.Nil(t, Cached(Options{Kind: KindAuto}))
}

func TestNumberFormat(t *testing.T) {
	f := ForOptions(Options{Kind: KindNumber, Decimals: 2, ThousandsSeparator: true, NegativeStyle: NegativeMinus})
	require.NotNil(t, f)

	assert.Equal(t, "1,234.50", f(1234.5))
	assert.Equal(t, "0.00", f(0))
	assert.Equal(t, "-1,234.50", f(-1234.5))
}

func TestNumberFormatNoSeparator(t *testing.T) {
	f := ForOptions(Options{Kind: KindNumber, Decimals: 0})

	assert.Equal(t, "1235", f(1234.6))
}

func TestNegativeParens(t *testing.T) {
	f := ForOptions(Options{Kind: KindNumber, Decimals: 0, NegativeStyle: NegativeParens})
	assert.Equal(t, "(1234)", f(-1234))

	// parens apply to currency and percent too
	c := ForOptions(Options{Kind: KindCurrency, Decimals: 2, CurrencySymbol: "$", NegativeStyle: NegativeParens})
	assert.Equal(t, "($12.00)", c(-12))

	p := ForOptions(Options{Kind: KindPercent, Decimals: 0, NegativeStyle: NegativeParens})
	assert.Equal(t, "(50%)", p(-0.5))
}

func TestCurrencyPlacement(t *testing.T) {
	prefix := ForOptions(Options{Kind: KindCurrency, Decimals: 2, ThousandsSeparator: true, CurrencySymbol: "$"})
	assert.Equal(t, "$1,234.50", prefix(1234.5))

	suffix := ForOptions(Options{Kind: KindCurrency, Decimals: 0, CurrencySymbol: " EUR", CurrencySuffix: true})
	assert.Equal(t, "42 EUR", suffix(42))
}

func TestDisplayUnits(t *testing.T) {
	for _, tc := range []struct {
		unit DisplayUnit
		in   float64
		want string
	}{
		{UnitThousands, 1500, "1.5K"},
		{UnitMillions, 2500000, "2.5M"},
		{UnitBillions, 3000000000, "3.0B"},
		{UnitNone, 1500, "1500.0"},
		{UnitAuto, 1500, "1.5K"},
		{UnitAuto, 2500000, "2.5M"},
		{UnitAuto, 3000000000, "3.0B"},
		{UnitAuto, 999, "999.0"},
	} {
		f := ForOptions(Options{Kind: KindNumber, Decimals: 1, DisplayUnits: tc.unit})
		assert.Equal(t, tc.want, f(tc.in), "unit %s value %v", tc.unit, tc.in)
	}
}

func TestScientific(t *testing.T) {
	f := ForOptions(Options{Kind: KindScientific, Decimals: 2})
	assert.Equal(t, "1.23e+04", f(12345))
}

func TestPercent(t *testing.T) {
	f := ForOptions(Options{Kind: KindPercent, Decimals: 1})
	assert.Equal(t, "12.5%", f(0.125))
}

func TestLegacyCompact(t *testing.T) {
	f := ForOptions(Options{Kind: KindCompact, Decimals: 1})

	assert.Equal(t, "1.2K", f(1234))
	assert.Equal(t, "3.5M", f(3500000))
	assert.Equal(t, "2.0B", f(2e9))
	assert.Equal(t, "999.0", f(999))
	assert.Equal(t, "-1.2K", f(-1234))
}

func TestCustomSpecifier(t *testing.T) {
	t.Run("comma fixed", func(t *testing.T) {
		f := ForOptions(Options{Kind: KindCustom, CustomFormat: ",.2f"})
		assert.Equal(t, "1,234.50", f(1234.5))
	})

	t.Run("integer", func(t *testing.T) {
		f := ForOptions(Options{Kind: KindCustom, CustomFormat: ",d"})
		assert.Equal(t, "1,235", f(1234.6))
	})

	t.Run("percent", func(t *testing.T) {
		f := ForOptions(Options{Kind: KindCustom, CustomFormat: ".0%"})
		assert.Equal(t, "50%", f(0.5))
	})

	t.Run("si", func(t *testing.T) {
		f := ForOptions(Options{Kind: KindCustom, CustomFormat: ".1s"})
		assert.Equal(t, "1.2K", f(1234))
	})

	t.Run("invalid degrades to coercion", func(t *testing.T) {
		f := ForOptions(Options{Kind: KindCustom, CustomFormat: "%%bogus"})
		assert.Equal(t, "1234.5", f(1234.5))
	})

	t.Run("empty degrades to coercion", func(t *testing.T) {
		f := ForOptions(Options{Kind: KindCustom})
		assert.Equal(t, "7", f("7"))
	})
}

func TestDatePresets(t *testing.T) {
	d := time.Date(2024, time.May, 7, 13, 45, 0, 0, time.UTC)

	for preset, want := range map[string]string{
		DateShort:        "05/07/2024",
		DateLong:         "May 7, 2024",
		DateISO:          "2024-05-07",
		DateMonthYear:    "May 2024",
		DateAbbreviated:  "May 7, 2024",
		DateYearQuarter:  "2024 Q2",
		DateYearWeek:     "2024-W19",
		DateDayMonthYear: "07/05/2024",
	} {
		f := ForOptions(Options{Kind: KindDate, DatePreset: preset})
		assert.Equal(t, want, f(d), "preset %s", preset)
	}
}

func TestDateCustomPattern(t *testing.T) {
	d := time.Date(2024, time.May, 7, 13, 45, 9, 0, time.UTC)

	for pattern, want := range map[string]string{
		"YYYY-MM-DD":      "2024-05-07",
		"dddd, MMMM D":    "Tuesday, May 7",
		"MMM YY":          "May 24",
		"DD/MM/YYYY":      "07/05/2024",
		"YYYY [Q]":        "2024 [2]",
		"hh:mm:ss am":     "01:45:09 pm",
		"HH:mm":           "13:45",
		"unknown X token": "unknown X token",
	} {
		f := ForOptions(Options{Kind: KindDate, DateFormat: pattern})
		assert.Equal(t, want, f(d), "pattern %s", pattern)
	}
}

func TestDateStringAndEpochInputs(t *testing.T) {
	f := ForOptions(Options{Kind: KindDate, DatePreset: DateISO})

	assert.Equal(t, "2024-05-07", f("2024-05-07"))
	assert.Equal(t, "2024-05-07", f("2024-05-07T13:45:00"))
	assert.Equal(t, "2024-05-07", f(float64(time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC).UnixMilli())))

	// unparseable values degrade to plain strings
	assert.Equal(t, "not a date", f("not a date"))
	assert.Equal(t, "true", f(true))
}

func TestFormatterNeverErrorsOnOddInputs(t *testing.T) {
	opts := []Options{
		{Kind: KindNumber, Decimals: 2},
		{Kind: KindCurrency, CurrencySymbol: "£"},
		{Kind: KindScientific},
		{Kind: KindPercent},
		{Kind: KindCompact},
		{Kind: KindCustom, CustomFormat: ",.2f"},
		{Kind: KindCustom, CustomFormat: "garbage("},
		{Kind: KindDate, DatePreset: DateLong},
		{Kind: Kind("unheard-of")},
	}
	inputs := []any{0, -1, 1234.5, -0.0, "text", nil, true, []int{1}}

	for _, o := range opts {
		f := ForOptions(o)
		require.NotNil(t, f, "options %+v", o)
		for _, in := range inputs {
			assert.NotPanics(t, func() { _ = f(in) }, "options %+v input %v", o, in)
		}
	}
}

func TestCachedReturnsSameBehavior(t *testing.T) {
	o := Options{Kind: KindNumber, Decimals: 1, ThousandsSeparator: true}

	f1 := Cached(o)
	f2 := Cached(o)
	require.NotNil(t, f1)
	require.NotNil(t, f2)
	assert.Equal(t, f1(1234.5), f2(1234.5))
}

func TestDefaultNumber(t *testing.T) {
	assert.Equal(t, "1,234", DefaultNumber(1234))
	assert.Equal(t, "1,234.50", DefaultNumber(1234.5))
	assert.Equal(t, "text", DefaultNumber("text"))
}

func TestFixedTwo(t *testing.T) {
	assert.Equal(t, "1,234.50", FixedTwo(1234.5))
	assert.Equal(t, "0.00", FixedTwo(0))
	assert.Equal(t, "-7.10", FixedTwo(-7.1))
}
