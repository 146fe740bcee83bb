package model

import (
	"testing"

	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"
)

func TestBuildData(t *testing.T) {
	table := &Table{
		Columns: []Column{
			{FieldName: "Region", DataType: TypeString, Index: 0},
			{FieldName: "SUM(Sales)", DataType: TypeFloat, Index: 1},
			{FieldName: "SUM(Profit)", DataType: TypeFloat, Index: 2},
		},
		Rows: []Row{
			{
				"Region":      {Value: "West", Formatted: "West"},
				"SUM(Sales)":  {Value: 1234.5, Formatted: "1,234.5"},
				"SUM(Profit)": {Value: 99.0, Formatted: "99"},
			},
			{
				"Region":     {Value: "East", Formatted: "East"},
				"SUM(Sales)": {Value: "250", Formatted: ""},
			},
		},
	}

	m := FieldMapping{Dimension: "Region", Bar1: "SUM(Sales)", Bar2: "SUM(Profit)"}
	data := BuildData(table, m)
	require.Len(t, data, 2)

	assert.Equal(t, "West", data[0].Category)
	assert.InDelta(t, 1234.5, data[0].Bar1, 1e-9)
	assert.InDelta(t, 99.0, data[0].Bar2, 1e-9)

	// unmapped line measure and missing bar2 cell default to 0
	assert.Zero(t, data[0].Line)
	assert.Zero(t, data[1].Bar2)

	// string measure values are coerced
	assert.InDelta(t, 250.0, data[1].Bar1, 1e-9)
}

func TestBuildDataNilTable(t *testing.T) {
	assert.Nil(t, BuildData(nil, FieldMapping{Dimension: "x"}))
}

func TestMissingRoles(t *testing.T) {
	t.Run("nothing mapped", func(t *testing.T) {
		m := FieldMapping{}
		assert.Equal(t, []Role{RoleDimension, RoleBar1, RoleBar2, RoleLine}, m.MissingRoles())
	})

	t.Run("only dimension mapped", func(t *testing.T) {
		m := FieldMapping{Dimension: "Region"}
		assert.Equal(t, []Role{RoleBar1, RoleBar2, RoleLine}, m.MissingRoles())
	})

	t.Run("dimension and one measure", func(t *testing.T) {
		m := FieldMapping{Dimension: "Region", Line: "SUM(Sales)"}
		assert.Empty(t, m.MissingRoles())
	})
}

func TestOrderCategories(t *testing.T) {
	data := []ChartDatum{
		{Category: "b", Bar1: 2},
		{Category: "c", Bar1: 3},
		{Category: "a", Bar1: 1},
	}

	labels := func(in []ChartDatum) []string {
		out := make([]string, 0, len(in))
		for _, d := range in {
			out = append(out, d.Category)
		}
		return out
	}

	assert.Equal(t, []string{"b", "c", "a"}, labels(OrderCategories(data, OrderData)))
	assert.Equal(t, []string{"a", "b", "c"}, labels(OrderCategories(data, OrderAsc)))
	assert.Equal(t, []string{"c", "b", "a"}, labels(OrderCategories(data, OrderDesc)))
	assert.Equal(t, []string{"a", "c", "b"}, labels(OrderCategories(data, OrderReverse)))

	// unknown ordering falls back to data order, input untouched
	assert.Equal(t, []string{"b", "c", "a"}, labels(OrderCategories(data, CategoryOrder("bogus"))))
	assert.Equal(t, "b", data[0].Category)
}

func TestDataTypeClassification(t *testing.T) {
	assert.True(t, TypeString.IsDimension())
	assert.True(t, TypeDate.IsDimension())
	assert.True(t, TypeDateTime.IsDimension())
	assert.False(t, TypeFloat.IsDimension())

	assert.True(t, TypeFloat.IsMeasure())
	assert.True(t, TypeInt.IsMeasure())
	assert.False(t, TypeBool.IsMeasure())
}
