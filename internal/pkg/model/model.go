// Package model defines the data shapes exchanged with the host and the
// per-category records derived from them for rendering.
package model

import (
	"fmt"
	"strconv"
)

// Value is a single cell: the raw value plus the host's preformatted string.
type Value struct {
	Value     any
	Formatted string
}

// Row is one aggregated data record, keyed by field name.
//
// Rows are immutable once received and live for a single render cycle:
// refreshes replace the whole slice, they never patch rows in place.
type Row map[string]Value

// DataType classifies a column as reported by the host.
type DataType string

// Column data types recognized from host metadata.
const (
	TypeString   DataType = "string"
	TypeDate     DataType = "date"
	TypeDateTime DataType = "date-time"
	TypeFloat    DataType = "float"
	TypeInt      DataType = "int"
	TypeBool     DataType = "bool"
)

// IsDimension reports whether the type is eligible for the category role.
func (d DataType) IsDimension() bool {
	switch d {
	case TypeString, TypeDate, TypeDateTime:
		return true
	default:
		return false
	}
}

// IsMeasure reports whether the type is eligible for a measure role.
func (d DataType) IsMeasure() bool {
	return d == TypeFloat || d == TypeInt
}

// Column describes one field of the data table.
type Column struct {
	FieldName string
	DataType  DataType
	Index     int
}

// Table is the tabular payload fetched from the host in one refresh.
type Table struct {
	Columns []Column
	Rows    []Row
}

// Role identifies a visual encoding slot.
type Role string

// The visual roles of the combo chart. RoleDetail is reported by some hosts
// but unused by this chart type.
const (
	RoleDimension Role = "dimension"
	RoleBar1      Role = "bar1"
	RoleBar2      Role = "bar2"
	RoleLine      Role = "line"
	RoleDetail    Role = "detail"
)

// EncodingMap is the host-reported assignment of base field names to roles.
//
// Base names may be unqualified (e.g. "Sales") while the data table carries a
// transformed name ("SUM(Sales)"); see field.ResolveBaseName.
type EncodingMap map[Role]string

// FieldMapping is the resolved field name for each of the four chart roles.
// An empty string means the role is unmapped.
type FieldMapping struct {
	Dimension string
	Bar1      string
	Bar2      string
	Line      string
}

// Field returns the mapped field name for a role.
func (m FieldMapping) Field(role Role) string {
	switch role {
	case RoleDimension:
		return m.Dimension
	case RoleBar1:
		return m.Bar1
	case RoleBar2:
		return m.Bar2
	case RoleLine:
		return m.Line
	default:
		return ""
	}
}

// HasDimension reports whether the category role is mapped.
func (m FieldMapping) HasDimension() bool { return m.Dimension != "" }

// HasMeasure reports whether at least one measure role is mapped.
func (m FieldMapping) HasMeasure() bool {
	return m.Bar1 != "" || m.Bar2 != "" || m.Line != ""
}

// MissingRoles lists the unmapped roles preventing a render: the dimension
// and, when no measure at all is mapped, the three measure roles.
func (m FieldMapping) MissingRoles() []Role {
	var missing []Role
	if !m.HasDimension() {
		missing = append(missing, RoleDimension)
	}
	if !m.HasMeasure() {
		missing = append(missing, RoleBar1, RoleBar2, RoleLine)
	}

	return missing
}

// ChartDatum is the per-category record the renderer consumes.
//
// It is derived fresh from (rows, mapping) on every render and never
// persisted. Unmapped measures default to 0.
type ChartDatum struct {
	Category string
	Bar1     float64
	Bar2     float64
	Line     float64
}

// BuildData derives one ChartDatum per row from the table, in data order.
//
// Missing fields and non-numeric values yield 0 for measures; the category
// label prefers the host-formatted value over raw coercion.
func BuildData(table *Table, m FieldMapping) []ChartDatum {
	if table == nil {
		return nil
	}

	data := make([]ChartDatum, 0, len(table.Rows))
	for _, row := range table.Rows {
		data = append(data, ChartDatum{
			Category: categoryLabel(row, m.Dimension),
			Bar1:     measureValue(row, m.Bar1),
			Bar2:     measureValue(row, m.Bar2),
			Line:     measureValue(row, m.Line),
		})
	}

	return data
}

func categoryLabel(row Row, fieldName string) string {
	if fieldName == "" {
		return ""
	}

	cell, ok := row[fieldName]
	if !ok {
		return ""
	}
	if cell.Formatted != "" {
		return cell.Formatted
	}

	return CoerceString(cell.Value)
}

func measureValue(row Row, fieldName string) float64 {
	if fieldName == "" {
		return 0
	}

	cell, ok := row[fieldName]
	if !ok {
		return 0
	}

	v, ok := CoerceFloat(cell.Value)
	if !ok {
		return 0
	}

	return v
}

// CoerceFloat converts a raw cell value to a float64 when possible.
func CoerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

// CoerceString renders a raw cell value as a plain string.
func CoerceString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
