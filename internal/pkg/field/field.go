// Package field resolves host-reported base field names against actual data
// columns and derives human-readable labels for the four chart roles.
package field

import (
	"log/slog"
	"strings"

	"github.com/Shintumon/combochart/internal/pkg/model"
)

// Aggregation wrappers stripped by CleanFieldName, checked case-insensitively.
var aggregations = []string{
	"SUM", "AVG", "MIN", "MAX", "COUNT", "AGG", "MEDIAN", "STDEV", "VAR", "ATTR",
}

// Fallback labels for unmapped roles.
const (
	fallbackDimension = "Category"
	fallbackMeasure   = "Unknown"
)

// CleanFieldName strips a single aggregation-function wrapper from a field
// name: "SUM(Sales)" becomes "Sales". Names without a recognized wrapper are
// returned unchanged.
func CleanFieldName(name string) string {
	open := strings.Index(name, "(")
	if open <= 0 || !strings.HasSuffix(name, ")") {
		return name
	}

	fn := strings.ToUpper(name[:open])
	for _, agg := range aggregations {
		if fn == agg {
			return name[open+1 : len(name)-1]
		}
	}

	return name
}

// ResolveBaseName maps a host-reported base name onto an actual column name.
//
// Precedence: exact match, then a match as AGG(name) for any known
// aggregation, then a suffix match. When nothing matches, the raw base name
// is returned as a best-effort fallback; downstream row lookups simply find
// no value.
func ResolveBaseName(base string, columns []model.Column) string {
	if base == "" {
		return ""
	}

	for _, col := range columns {
		if col.FieldName == base {
			return col.FieldName
		}
	}

	for _, col := range columns {
		if CleanFieldName(col.FieldName) == base {
			return col.FieldName
		}
	}

	for _, col := range columns {
		if strings.HasSuffix(col.FieldName, base) {
			return col.FieldName
		}
	}

	return base
}

// ResolveEncoding resolves every role of the host encoding map against the
// table columns. Unresolvable names are kept verbatim and logged.
func ResolveEncoding(enc model.EncodingMap, columns []model.Column, l *slog.Logger) model.FieldMapping {
	if l == nil {
		l = slog.Default()
	}

	resolve := func(role model.Role) string {
		base, ok := enc[role]
		if !ok || base == "" {
			return ""
		}

		resolved := ResolveBaseName(base, columns)
		if resolved == base && !columnExists(base, columns) {
			l.Warn("encoding field not found in data columns, using raw name",
				slog.String("role", string(role)),
				slog.String("field", base),
			)
		}

		return resolved
	}

	return model.FieldMapping{
		Dimension: resolve(model.RoleDimension),
		Bar1:      resolve(model.RoleBar1),
		Bar2:      resolve(model.RoleBar2),
		Line:      resolve(model.RoleLine),
	}
}

func columnExists(name string, columns []model.Column) bool {
	for _, col := range columns {
		if col.FieldName == name {
			return true
		}
	}

	return false
}

// NameOverrides carries the configured labels consulted by DisplayName.
type NameOverrides struct {
	// Labels holds the per-role custom labels; empty entries are ignored.
	Labels map[model.Role]string
	// DimensionAxisTitle is consulted for the dimension role only, after a
	// custom label and before the cleaned field name.
	DimensionAxisTitle string
}

// DisplayName derives the label shown for a role.
//
// Precedence: custom label, then (dimension only) the configured axis title,
// then the cleaned field name, then a role-appropriate fallback literal.
// It is pure and cheap: callers may invoke it per label per render.
func DisplayName(role model.Role, m model.FieldMapping, o NameOverrides) string {
	if label, ok := o.Labels[role]; ok && label != "" {
		return label
	}

	if role == model.RoleDimension && o.DimensionAxisTitle != "" {
		return o.DimensionAxisTitle
	}

	if name := m.Field(role); name != "" {
		return CleanFieldName(name)
	}

	if role == model.RoleDimension {
		return fallbackDimension
	}

	return fallbackMeasure
}
