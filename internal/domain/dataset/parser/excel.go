package parser

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/dataset"
)

// ParseExcel reads the first sheet of an XLSX workbook into a Table.
// The first non-empty row is the header row.
func ParseExcel(r io.Reader) (*dataset.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	// Skip leading blank rows before the header.
	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start >= len(rows) {
		return nil, ErrEmptyFile
	}

	header := rows[start]
	var records [][]string
	for _, row := range rows[start+1:] {
		if isBlank(row) {
			continue
		}
		records = append(records, row)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return dataset.New(header, records), nil
}

// Parse dispatches on the uploaded filename extension.
func Parse(filename string, r io.Reader) (*dataset.Table, error) {
	if isExcelName(filename) {
		return ParseExcel(r)
	}
	return ParseCSV(r)
}

func isExcelName(name string) bool {
	n := len(name)
	return n > 5 && (name[n-5:] == ".xlsx" || name[n-5:] == ".xlsm")
}
