// Package dataset holds the in-memory tabular dataset the dashboard operates on.
// A Table is built once per upload and passed by reference into every operation;
// nothing in this package mutates a table after construction.
package dataset

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
)

func (k Kind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "text"
}

// Column describes one named column and its inferred kind.
type Column struct {
	Name string
	Kind Kind
}

// Cell is a single table cell. Raw is the original text; Num is the parsed
// value when the cell's column is numeric. An empty Raw is a missing value.
type Cell struct {
	Raw string
	Num float64
}

// Table is an immutable, column-ordered dataset. Row order is upload order.
type Table struct {
	cols []Column
	rows [][]Cell
}

var titleCaser = cases.Title(language.English)

// CanonicalName normalizes a header or query phrase the same way headers are
// normalized at load time: trimmed, inner whitespace collapsed, title-cased.
func CanonicalName(s string) string {
	fields := strings.Fields(strings.TrimSpace(s))
	for i, f := range fields {
		fields[i] = titleCaser.String(f)
	}
	return strings.Join(fields, " ")
}

// New builds a table from raw header and record strings. Column kinds are
// inferred: a column is numeric when it has at least one non-empty cell and
// every non-empty cell parses as a number.
func New(headers []string, records [][]string) *Table {
	t := &Table{cols: make([]Column, len(headers))}
	for i, h := range headers {
		t.cols[i] = Column{Name: CanonicalName(h), Kind: KindText}
	}

	t.rows = make([][]Cell, len(records))
	numeric := make([]bool, len(headers))
	seen := make([]bool, len(headers))
	for i := range numeric {
		numeric[i] = true
	}

	for r, rec := range records {
		row := make([]Cell, len(headers))
		for c := range headers {
			var raw string
			if c < len(rec) {
				raw = strings.TrimSpace(rec[c])
			}
			row[c] = Cell{Raw: raw}
			if raw == "" {
				continue
			}
			seen[c] = true
			if v, ok := parseNumber(raw); ok {
				row[c].Num = v
			} else {
				numeric[c] = false
			}
		}
		t.rows[r] = row
	}

	for c := range t.cols {
		if seen[c] && numeric[c] {
			t.cols[c].Kind = KindNumeric
		}
	}
	return t
}

// parseNumber parses a cell value as a float, tolerating thousands separators.
func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the column descriptors in order.
func (t *Table) Columns() []Column { return t.cols }

// ColumnNames returns all column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
// The lookup is case-insensitive.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.cols {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// NumericColumns returns numeric column names in column order.
func (t *Table) NumericColumns() []string {
	var names []string
	for _, c := range t.cols {
		if c.Kind == KindNumeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// TextColumns returns text column names in column order.
func (t *Table) TextColumns() []string {
	var names []string
	for _, c := range t.cols {
		if c.Kind == KindText {
			names = append(names, c.Name)
		}
	}
	return names
}

// Cell returns the cell at (row, col).
func (t *Table) Cell(row, col int) Cell { return t.rows[row][col] }

// Value returns the raw string at (row, col).
func (t *Table) Value(row, col int) string { return t.rows[row][col].Raw }

// Float returns the numeric value at (row, col). The second return is false
// for missing cells or text columns.
func (t *Table) Float(row, col int) (float64, bool) {
	c := t.rows[row][col]
	if c.Raw == "" || t.cols[col].Kind != KindNumeric {
		return 0, false
	}
	return c.Num, true
}

// MissingCount returns the number of empty cells in the given column.
func (t *Table) MissingCount(col int) int {
	n := 0
	for _, row := range t.rows {
		if row[col].Raw == "" {
			n++
		}
	}
	return n
}

// DistinctValues returns the distinct non-empty raw values of a column in
// first-encounter order.
func (t *Table) DistinctValues(col int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range t.rows {
		v := row[col].Raw
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
