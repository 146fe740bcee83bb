package format

import (
	"strconv"
	"strings"
	"time"

	"github.com/Shintumon/combochart/internal/pkg/model"
)

// Named date presets.
const (
	DateShort        = "short"
	DateLong         = "long"
	DateISO          = "iso"
	DateMonthYear    = "month-year"
	DateAbbreviated  = "abbreviated"
	DateYearQuarter  = "year-quarter"
	DateYearWeek     = "year-week"
	DateDayMonthYear = "day-month-year"
)

var presetLayouts = map[string]string{
	DateShort:        "01/02/2006",
	DateLong:         "January 2, 2006",
	DateISO:          "2006-01-02",
	DateMonthYear:    "January 2006",
	DateAbbreviated:  "Jan 2, 2006",
	DateDayMonthYear: "02/01/2006",
}

// quarterMark survives time.Format untouched and is substituted afterwards;
// a literal quarter digit would be re-interpreted as a layout element.
const quarterMark = "\x01"

// dateTokens translates Tableau/Excel-style pattern tokens into the Go
// reference-time layout, longest match first.
var dateTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"yyyy", "2006"},
	{"MMMM", "January"},
	{"dddd", "Monday"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"yy", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"dd", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"AM", "PM"},
	{"PM", "PM"},
	{"am", "pm"},
	{"pm", "pm"},
	{"M", "1"},
	{"D", "2"},
	{"d", "2"},
	{"h", "3"},
	{"m", "4"},
	{"s", "5"},
	{"Q", quarterMark},
	{"q", quarterMark},
}

func dateFormatter(o Options) Func {
	return func(v any) string {
		t, ok := coerceTime(v)
		if !ok {
			return model.CoerceString(v)
		}

		if o.DateFormat != "" {
			return formatCustomDate(t, o.DateFormat)
		}

		switch o.DatePreset {
		case DateYearQuarter:
			return strconv.Itoa(t.Year()) + " Q" + strconv.Itoa(quarterOf(t))
		case DateYearWeek:
			year, week := t.ISOWeek()
			w := strconv.Itoa(week)
			if week < 10 {
				w = "0" + w
			}
			return strconv.Itoa(year) + "-W" + w
		default:
			layout, found := presetLayouts[o.DatePreset]
			if !found {
				layout = presetLayouts[DateISO]
			}
			return t.Format(layout)
		}
	}
}

func formatCustomDate(t time.Time, pattern string) string {
	var layout strings.Builder

	for i := 0; i < len(pattern); {
		matched := false
		for _, tok := range dateTokens {
			if strings.HasPrefix(pattern[i:], tok.token) {
				layout.WriteString(tok.layout)
				i += len(tok.token)
				matched = true
				break
			}
		}
		if !matched {
			layout.WriteByte(pattern[i])
			i++
		}
	}

	out := t.Format(layout.String())
	if strings.Contains(out, quarterMark) {
		out = strings.ReplaceAll(out, quarterMark, strconv.Itoa(quarterOf(t)))
	}

	return out
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

var parseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
}

func coerceTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		for _, layout := range parseLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case float64, int, int64:
		f, _ := model.CoerceFloat(x)
		if f > 1e11 { // epoch milliseconds
			return time.UnixMilli(int64(f)).UTC(), true
		}
		if f > 0 {
			return time.Unix(int64(f), 0).UTC(), true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
