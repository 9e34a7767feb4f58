package qail

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/qailsql/qail-go/internal/wire"
)

// Row is one result row of a query, paired with the field-name vector
// shared across every row of the same result (§4.3: "copied or
// decoder-allocated column slices ... shares the field_names array across
// all rows of that result").
type Row struct {
	fieldNames *[]string
	columns    [][]byte
}

// newRowSet builds the Row slice for one RowDescription + its following
// DataRows, sharing a single fieldNames backing array across every row.
func newRowSet(fields []wire.FieldDescription, dataRows [][][]byte) []Row {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	rows := make([]Row, len(dataRows))
	for i, cols := range dataRows {
		rows[i] = Row{fieldNames: &names, columns: cols}
	}
	return rows
}

// Len reports the column count.
func (r Row) Len() int { return len(r.columns) }

// FieldName returns the name of column idx, or "" if out of range.
func (r Row) FieldName(idx int) string {
	if r.fieldNames == nil || idx < 0 || idx >= len(*r.fieldNames) {
		return ""
	}
	return (*r.fieldNames)[idx]
}

// Get returns the raw text-format bytes of column idx, nil for SQL NULL.
// The connection copies column bytes out of its read buffer (copyCols)
// before newRowSet builds Rows, so Row.Get's result is safe for the
// lifetime of the Row itself.
func (r Row) Get(idx int) []byte {
	if idx < 0 || idx >= len(r.columns) {
		return nil
	}
	return r.columns[idx]
}

// GetByName looks up a column by its field name, the linear scan being
// cheap relative to the network round trip that produced the row.
func (r Row) GetByName(name string) []byte {
	if r.fieldNames == nil {
		return nil
	}
	for i, n := range *r.fieldNames {
		if n == name {
			return r.Get(i)
		}
	}
	return nil
}

// IsNull reports whether column idx is SQL NULL.
func (r Row) IsNull(idx int) bool { return r.Get(idx) == nil }

// String returns column idx decoded as text, "" for NULL or out of range.
func (r Row) String(idx int) string {
	b := r.Get(idx)
	if b == nil {
		return ""
	}
	return string(b)
}

// Int64 parses column idx as a base-10 integer.
func (r Row) Int64(idx int) (int64, error) {
	b := r.Get(idx)
	if b == nil {
		return 0, newErr("Row.Int64", KindTypeMismatch, "column is NULL", nil)
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, newErr("Row.Int64", KindTypeMismatch, "not an integer: "+string(b), err)
	}
	return n, nil
}

// Float64 parses column idx as a float.
func (r Row) Float64(idx int) (float64, error) {
	b := r.Get(idx)
	if b == nil {
		return 0, newErr("Row.Float64", KindTypeMismatch, "column is NULL", nil)
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, newErr("Row.Float64", KindTypeMismatch, "not a float: "+string(b), err)
	}
	return f, nil
}

// Bool parses column idx as a PostgreSQL boolean ('t'/'f' in text format).
func (r Row) Bool(idx int) (bool, error) {
	b := r.Get(idx)
	if b == nil {
		return false, newErr("Row.Bool", KindTypeMismatch, "column is NULL", nil)
	}
	switch string(b) {
	case "t", "true", "TRUE":
		return true, nil
	case "f", "false", "FALSE":
		return false, nil
	default:
		return false, newErr("Row.Bool", KindTypeMismatch, "not a boolean: "+string(b), nil)
	}
}

// Dump renders rows as an aligned table, grounded on the same go-pretty
// table writer the teacher's query-rendering CLI path uses for debug
// output (internal/cli/commands/query_render.go in the leapsql example).
func Dump(rows []Row) string {
	t := table.NewWriter()
	if len(rows) == 0 {
		return t.Render()
	}
	header := table.Row{}
	for i := 0; i < rows[0].Len(); i++ {
		header = append(header, rows[0].FieldName(i))
	}
	t.AppendHeader(header)
	for _, r := range rows {
		row := table.Row{}
		for i := 0; i < r.Len(); i++ {
			if r.IsNull(i) {
				row = append(row, "NULL")
			} else {
				row = append(row, r.String(i))
			}
		}
		t.AppendRow(row)
	}
	return t.Render()
}
