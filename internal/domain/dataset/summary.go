package dataset

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// previewRows is the number of rows included in the summary preview.
const previewRows = 5

// Summarize renders a human-readable structural digest of the table: shape,
// per-column dtypes, missing-value counts, and a preview of the first rows.
// The output is deterministic given the table contents.
func Summarize(t *Table) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Rows: %d | Columns: %d\n", t.NumRows(), t.NumCols())

	b.WriteString("\nColumns & dtypes:\n")
	for _, c := range t.Columns() {
		fmt.Fprintf(&b, "  %s: %s\n", c.Name, c.Kind)
	}

	b.WriteString("\nMissing values per column:\n")
	for i, c := range t.Columns() {
		fmt.Fprintf(&b, "  %s: %d\n", c.Name, t.MissingCount(i))
	}

	b.WriteString("\nPreview:\n")
	if t.NumCols() == 0 {
		b.WriteString("  (empty table)\n")
		return b.String()
	}

	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.ColumnNames(), "\t"))
	limit := t.NumRows()
	if limit > previewRows {
		limit = previewRows
	}
	for r := 0; r < limit; r++ {
		cells := make([]string, t.NumCols())
		for c := 0; c < t.NumCols(); c++ {
			cells[c] = t.Value(r, c)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()

	return b.String()
}
