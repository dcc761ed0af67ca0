// Package parser turns uploaded CSV and Excel files into dataset tables.
// Unlike fixed-schema imports, uploads here have unknown column names and
// types, so parsing is fully dynamic: headers are taken from the first row
// and cell types are inferred afterwards.
package parser

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

// ErrEmptyFile is returned when the upload has no content rows.
var ErrEmptyFile = errors.New("file has no data rows")

var candidateDelimiters = []rune{',', ';', '\t', '|'}

// DetectDelimiter inspects the first lines of a CSV payload and picks the
// delimiter that appears consistently across them. Defaults to comma.
func DetectDelimiter(data []byte) rune {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var lines []string
	for scanner.Scan() && len(lines) < 10 {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return ','
	}

	best := ','
	bestScore := 0
	for _, d := range candidateDelimiters {
		counts := make(map[int]int)
		for _, line := range lines {
			counts[strings.Count(line, string(d))]++
		}
		// A good delimiter appears the same number of times (>0) on every line.
		for count, freq := range counts {
			if count == 0 {
				continue
			}
			score := count * freq
			if freq == len(lines) {
				score *= 2
			}
			if score > bestScore {
				bestScore = score
				best = d
			}
		}
	}
	return best
}

// readAll buffers a reader so the payload can be scanned twice (once for
// delimiter detection, once for parsing).
func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// Strip a UTF-8 BOM some spreadsheet exports prepend.
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}), nil
}
