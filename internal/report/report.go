// Package report renders a printable PDF summary of an extraction run.
package report

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"p7mx/internal/pipeline"
	"p7mx/internal/queue"
)

// Write renders a one-document summary of the run to path: aggregate
// counts followed by one row per item with its terminal status.
func Write(path string, sum pipeline.Summary, items []queue.Item) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "p7mx extraction report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, fmt.Sprintf("Run %s", sum.RunID))
	pdf.Ln(5)
	pdf.Cell(0, 5, time.Now().Format("Mon, 02 Jan 2006 15:04:05 -0700"))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 12)
	line := fmt.Sprintf("%d files: %d extracted, %d failed", sum.Total, sum.Done, sum.Failed)
	if sum.Cancelled {
		line += " (run cancelled)"
	}
	pdf.Cell(0, 8, line)
	pdf.Ln(8)
	pdf.Cell(0, 5, fmt.Sprintf("Elapsed: %s", sum.Elapsed.Round(time.Millisecond)))
	pdf.Ln(10)

	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(4)

	addItemRows(pdf, items)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

func addItemRows(pdf *gofpdf.Fpdf, items []queue.Item) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(12, 6, "#")
	pdf.Cell(90, 6, "File")
	pdf.Cell(25, 6, "Status")
	pdf.Cell(0, 6, "Detail")
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 9)
	for _, item := range items {
		if item.Status == queue.StatusError {
			pdf.SetTextColor(200, 0, 0)
		} else {
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Cell(12, 5, fmt.Sprintf("%d", item.SequenceID))
		pdf.Cell(90, 5, truncate(item.FileName, 52))
		pdf.Cell(25, 5, string(item.Status))
		pdf.Cell(0, 5, truncate(item.Detail, 40))
		pdf.Ln(5)
	}
	pdf.SetTextColor(0, 0, 0)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
