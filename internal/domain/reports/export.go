package reports

import (
	"bytes"
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gocarina/gocsv"
)

// ExportCSV renders the summary's rows as a downloadable CSV document.
func ExportCSV(summary *Summary) ([]byte, error) {
	var buf bytes.Buffer
	if err := gocsv.Marshal(summary.Rows, &buf); err != nil {
		return nil, fmt.Errorf("export summary: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportPDF renders the summary as a one-page sales report: a centered title
// and one line per region with its aggregated figures.
func ExportPDF(summary *Summary) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, "Sales Report", "", 1, "C", false, 0, "")

	for _, row := range summary.Rows {
		line := fmt.Sprintf("%s: Quantity=%.2f, Sales=%.2f", row.Region, row.Quantity, row.Sales)
		pdf.CellFormat(0, 10, line, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export summary pdf: %w", err)
	}
	return buf.Bytes(), nil
}
