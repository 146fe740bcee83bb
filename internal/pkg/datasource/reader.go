// Package datasource provides file-backed data for the chart: CSV and XLSX
// readers producing typed tables, and a host implementation suitable for
// the CLI and for tests.
package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Shintumon/combochart/internal/pkg/model"
)

// ReadFile loads a table from path, dispatching on the file extension.
func ReadFile(path string) (model.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSVFile(path)
	case ".xlsx":
		return ReadXLSX(path, "")
	default:
		return model.Table{}, fmt.Errorf("unsupported data format %q", filepath.Ext(path))
	}
}

// ReadCSVFile loads a CSV file with a header row.
func ReadCSVFile(path string) (model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Table{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	return ReadCSV(f)
}

// ReadCSV parses CSV content with a header row into a typed table. Column
// types are inferred from the data cells.
func ReadCSV(r io.Reader) (model.Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return model.Table{}, fmt.Errorf("parsing csv: %w", err)
	}

	return tableFromRecords(records)
}

// ReadXLSX loads a worksheet into a typed table. An empty sheet name selects
// the first sheet.
func ReadXLSX(path, sheet string) (model.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return model.Table{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return model.Table{}, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	return tableFromRecords(records)
}

func tableFromRecords(records [][]string) (model.Table, error) {
	if len(records) == 0 {
		return model.Table{}, fmt.Errorf("no header row")
	}

	header := records[0]
	body := records[1:]

	table := model.Table{
		Columns: make([]model.Column, 0, len(header)),
		Rows:    make([]model.Row, 0, len(body)),
	}

	for i, name := range header {
		table.Columns = append(table.Columns, model.Column{
			FieldName: strings.TrimSpace(name),
			DataType:  inferColumnType(body, i),
			Index:     i,
		})
	}

	for _, record := range body {
		row := make(model.Row, len(table.Columns))
		for _, col := range table.Columns {
			if col.Index >= len(record) {
				continue
			}
			raw := strings.TrimSpace(record[col.Index])
			row[col.FieldName] = typedValue(raw, col.DataType)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// inferColumnType picks the narrowest type every non-empty cell of the
// column satisfies, falling back to string.
func inferColumnType(body [][]string, index int) model.DataType {
	candidates := []model.DataType{model.TypeInt, model.TypeFloat, model.TypeBool, model.TypeDate}

	seen := false
	for _, record := range body {
		if index >= len(record) {
			continue
		}
		cell := strings.TrimSpace(record[index])
		if cell == "" {
			continue
		}
		seen = true

		kept := candidates[:0]
		for _, c := range candidates {
			if cellMatches(cell, c) {
				kept = append(kept, c)
			}
		}
		candidates = kept
		if len(candidates) == 0 {
			break
		}
	}

	if !seen || len(candidates) == 0 {
		return model.TypeString
	}

	return candidates[0]
}

func cellMatches(cell string, t model.DataType) bool {
	switch t {
	case model.TypeInt:
		_, err := strconv.ParseInt(cell, 10, 64)

		return err == nil
	case model.TypeFloat:
		_, err := strconv.ParseFloat(cell, 64)

		return err == nil
	case model.TypeBool:
		_, err := strconv.ParseBool(cell)

		return err == nil
	case model.TypeDate:
		_, err := time.Parse("2006-01-02", cell)

		return err == nil
	default:
		return true
	}
}

func typedValue(raw string, t model.DataType) model.Value {
	v := model.Value{Formatted: raw}

	switch t {
	case model.TypeInt:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			v.Value = n

			return v
		}
	case model.TypeFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			v.Value = f

			return v
		}
	case model.TypeBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			v.Value = b

			return v
		}
	case model.TypeDate:
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			v.Value = ts

			return v
		}
	}

	v.Value = raw

	return v
}
