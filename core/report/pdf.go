// Package report — PDF renderer.
// Lays the summary out as a one-page-per-site audit sheet using gofpdf:
// score header, then one block per issue with its match status and the
// source lines it resolved to.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/seopatch/core"
)

// PDFRenderer renders a Summary as a PDF document.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render converts the summary into PDF bytes.
func (r *PDFRenderer) Render(s *Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, "SEO Optimization Report", "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, "Source: "+s.URL, "", "L", false)
	pdf.MultiCell(0, 5, "Generated: "+s.GeneratedAt.Format("2006-01-02 15:04 UTC"), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.MultiCell(0, 6, fmt.Sprintf("SEO score: %.0f / 100", s.SEOScore*100), "", "L", false)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, fmt.Sprintf("Edits applied: %d of %d issues rewritten", s.EditsFilled, s.EditsTotal), "", "L", false)
	pdf.Ln(4)

	if len(s.Issues) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(0, 6, "Issues", "", "L", false)
		pdf.Ln(1)
	}
	for _, issue := range s.Issues {
		renderIssue(pdf, issue)
	}

	if len(s.Errors) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(0, 6, "Audit errors", "", "L", false)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(160, 40, 40)
		for _, e := range s.Errors {
			pdf.MultiCell(0, 4.5, "- "+e, "", "L", false)
		}
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

func renderIssue(pdf *gofpdf.Fpdf, issue IssueSummary) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.MultiCell(0, 5, issue.Title, "", "L", false)

	pdf.SetFont("Helvetica", "", 9)
	line := "Status: " + issue.Status
	if len(issue.Ranges) > 0 {
		line += "  Lines: " + formatRanges(issue.Ranges)
	}
	pdf.MultiCell(0, 4.5, line, "", "L", false)

	if issue.MatchedText != "" {
		pdf.SetFont("Courier", "", 8)
		pdf.SetFillColor(245, 245, 245)
		pdf.MultiCell(0, 4, issue.MatchedText, "", "L", true)
	}
	pdf.Ln(2)
}

func formatRanges(ranges []core.LineRange) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		if r.Start == r.End {
			parts[i] = fmt.Sprintf("%d", r.Start)
		} else {
			parts[i] = fmt.Sprintf("%d-%d", r.Start, r.End)
		}
	}
	return strings.Join(parts, ", ")
}
