package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/dataset"
)

// ParseCSV reads a delimiter-sniffed CSV payload into a Table. The first
// non-empty record is the header row; every later record is a data row.
// A parse failure leaves no table behind.
func ParseCSV(r io.Reader) (*dataset.Table, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = DetectDelimiter(data)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+2, err)
		}
		if isBlank(rec) {
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	return dataset.New(header, records), nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if v != "" {
			return false
		}
	}
	return true
}
