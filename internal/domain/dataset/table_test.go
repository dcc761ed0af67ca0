package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("infers numeric and text kinds", func(t *testing.T) {
		table := New(
			[]string{"region", "revenue", "notes"},
			[][]string{
				{"North", "1200.50", "q1"},
				{"South", "800", ""},
			},
		)

		require.Equal(t, 3, table.NumCols())
		require.Equal(t, 2, table.NumRows())

		cols := table.Columns()
		assert.Equal(t, "Region", cols[0].Name)
		assert.Equal(t, KindText, cols[0].Kind)
		assert.Equal(t, "Revenue", cols[1].Name)
		assert.Equal(t, KindNumeric, cols[1].Kind)
		assert.Equal(t, KindText, cols[2].Kind)
	})

	t.Run("a single non-numeric cell makes a column text", func(t *testing.T) {
		table := New(
			[]string{"amount"},
			[][]string{{"10"}, {"n/a"}, {"30"}},
		)
		assert.Equal(t, KindText, table.Columns()[0].Kind)
	})

	t.Run("empty cells do not affect inference", func(t *testing.T) {
		table := New(
			[]string{"amount"},
			[][]string{{"10"}, {""}, {"30"}},
		)
		assert.Equal(t, KindNumeric, table.Columns()[0].Kind)
		assert.Equal(t, 1, table.MissingCount(0))
	})

	t.Run("tolerates thousands separators", func(t *testing.T) {
		table := New([]string{"sales"}, [][]string{{"1,200,000"}})
		assert.Equal(t, KindNumeric, table.Columns()[0].Kind)
		v, ok := table.Float(0, 0)
		require.True(t, ok)
		assert.Equal(t, 1200000.0, v)
	})

	t.Run("ragged rows are padded with missing cells", func(t *testing.T) {
		table := New(
			[]string{"a", "b"},
			[][]string{{"1", "2"}, {"3"}},
		)
		assert.Equal(t, "", table.Value(1, 1))
		assert.Equal(t, 1, table.MissingCount(1))
	})

	t.Run("an all-empty column stays text", func(t *testing.T) {
		table := New([]string{"x"}, [][]string{{""}, {""}})
		assert.Equal(t, KindText, table.Columns()[0].Kind)
	})
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"revenue", "Revenue"},
		{"  sales  region ", "Sales Region"},
		{"UNIT PRICE", "Unit Price"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalName(tt.in), "input %q", tt.in)
	}
}

func TestTable_ColumnIndex(t *testing.T) {
	table := New([]string{"Region", "Revenue"}, nil)

	assert.Equal(t, 1, table.ColumnIndex("Revenue"))
	assert.Equal(t, 1, table.ColumnIndex("revenue"))
	assert.Equal(t, -1, table.ColumnIndex("Profit"))
}

func TestTable_DistinctValues(t *testing.T) {
	table := New(
		[]string{"Region"},
		[][]string{{"North"}, {"South"}, {"North"}, {""}, {"East"}},
	)

	assert.Equal(t, []string{"North", "South", "East"}, table.DistinctValues(0))
}
