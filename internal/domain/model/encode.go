// Package model owns the trained model bundle: feature encoding, the
// training pipeline, and versioned persistence of the fitted models.
package model

import (
	"sort"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/dataset"
)

// Frame is a fully numeric view of a table: original numeric columns plus
// one-hot encoded text columns, with a stable column order.
type Frame struct {
	Columns []string
	Matrix  [][]float64
}

// Encode builds the feature frame for a table, excluding the target column.
// Numeric columns keep their column order; text columns become one-hot
// dummies named "Col_Value" with the first (sorted) level dropped, matching
// drop-first encoding. Missing cells encode as 0.
func Encode(t *dataset.Table, target string) *Frame {
	type dummy struct {
		col   int
		value string
		name  string
	}

	var numericCols []int
	var dummies []dummy
	for i, c := range t.Columns() {
		if c.Name == target {
			continue
		}
		switch c.Kind {
		case dataset.KindNumeric:
			numericCols = append(numericCols, i)
		case dataset.KindText:
			values := append([]string(nil), t.DistinctValues(i)...)
			sort.Strings(values)
			for _, v := range values[min(1, len(values)):] {
				dummies = append(dummies, dummy{col: i, value: v, name: c.Name + "_" + v})
			}
		}
	}

	names := make([]string, 0, len(numericCols)+len(dummies))
	for _, c := range numericCols {
		names = append(names, t.Columns()[c].Name)
	}
	for _, d := range dummies {
		names = append(names, d.name)
	}

	matrix := make([][]float64, t.NumRows())
	for r := 0; r < t.NumRows(); r++ {
		row := make([]float64, 0, len(names))
		for _, c := range numericCols {
			v, _ := t.Float(r, c)
			row = append(row, v)
		}
		for _, d := range dummies {
			if t.Value(r, d.col) == d.value {
				row = append(row, 1)
			} else {
				row = append(row, 0)
			}
		}
		matrix[r] = row
	}

	return &Frame{Columns: names, Matrix: matrix}
}

// Reindex projects the frame onto the given column order, filling columns
// the frame does not have with zeros. This is how a live dataset is aligned
// to the feature set a bundle was trained on.
func (f *Frame) Reindex(columns []string) [][]float64 {
	pos := make(map[string]int, len(f.Columns))
	for i, name := range f.Columns {
		pos[name] = i
	}

	out := make([][]float64, len(f.Matrix))
	for r, src := range f.Matrix {
		row := make([]float64, len(columns))
		for j, name := range columns {
			if i, ok := pos[name]; ok {
				row[j] = src[i]
			}
		}
		out[r] = row
	}
	return out
}
