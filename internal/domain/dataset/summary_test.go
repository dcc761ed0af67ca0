package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	t.Run("reports shape, types, missing counts and preview", func(t *testing.T) {
		table := New(
			[]string{"Region", "Revenue"},
			[][]string{
				{"North", "100"},
				{"South", ""},
			},
		)

		out := Summarize(table)

		assert.Contains(t, out, "Rows: 2 | Columns: 2")
		assert.Contains(t, out, "Region: text")
		assert.Contains(t, out, "Revenue: numeric")
		assert.Contains(t, out, "Revenue: 1") // one missing value
		assert.Contains(t, out, "North")
	})

	t.Run("preview is capped", func(t *testing.T) {
		var records [][]string
		for i := 0; i < 20; i++ {
			records = append(records, []string{"row"})
		}
		out := Summarize(New([]string{"Col"}, records))

		assert.Equal(t, previewRows, strings.Count(out, "row"))
	})

	t.Run("safe on an empty table", func(t *testing.T) {
		out := Summarize(New(nil, nil))
		assert.Contains(t, out, "Rows: 0 | Columns: 0")
		assert.Contains(t, out, "(empty table)")
	})
}
