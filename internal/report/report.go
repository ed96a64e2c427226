// Package report renders the fixed-layout chest X-ray report PDF. Rendering
// is pure: it returns document bytes plus a derived filename, and leaves
// persistence to the artifact store.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/lungsight/apiserver/types"
)

// ErrRenderFailure is returned on any drawing or encoding error.
var ErrRenderFailure = errors.New("failed to render report")

const (
	// Placeholders for empty fields.
	defaultPatientName = "Unknown"
	defaultXrayNo      = "Unknown"
	defaultExamTitle   = "X-RAY CHEST PA VIEW"
	defaultFindings    = "No findings recorded."

	mainHeader  = "X-RAYS REPORTING FORMATE"
	closingLine = "THANKS FOR THE REFERAL,"

	// Free-text sections wrap at a fixed character width.
	wrapWidth = 85

	leftMargin = 50
	lineStep   = 18
	sectionGap = 10
)

var filenameKeep = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename derives the artifact name from the X-ray number, keeping only
// alphanumerics, '-' and '_'. An empty sanitized result falls back to the
// "Unknown" token.
func Filename(xrayNo string) string {
	sanitized := filenameKeep.ReplaceAllString(xrayNo, "")
	if sanitized == "" {
		sanitized = defaultXrayNo
	}
	return fmt.Sprintf("Report_%s.pdf", sanitized)
}

// Render produces the single-page report document. All fields default to
// fixed placeholders when empty. Returns the raw PDF bytes and the derived
// filename.
func Render(req types.ReportRequest) ([]byte, string, error) {
	patientName := orDefault(req.PatientName, defaultPatientName)
	xrayNo := orDefault(req.XrayNo, defaultXrayNo)
	examTitle := orDefault(req.ExamTitle, defaultExamTitle)
	findings := orDefault(req.Findings, defaultFindings)

	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()

	drawCentered := func(y float64, text, style string, size float64, underlined bool) {
		pdf.SetFont("Helvetica", style, size)
		textWidth := pdf.GetStringWidth(text)
		x := (pageWidth - textWidth) / 2
		pdf.Text(x, y, text)
		if underlined {
			pdf.Line(x, y+2, x+textWidth, y+2)
		}
	}

	// Main header.
	drawCentered(42, mainHeader, "B", 16, true)

	// Patient metadata block: labels left, values indented.
	pdf.SetFont("Helvetica", "BI", 11)
	pdf.Text(leftMargin, 92, "PATIENT NAME:")
	pdf.Text(350, 92, "AGE / SEX:")
	pdf.Text(leftMargin, 117, "REF. BY DR     :")
	pdf.Text(350, 117, "DATE:")
	pdf.Text(leftMargin, 142, "X-RAY NO        :")

	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(160, 92, patientName)
	pdf.Text(430, 92, req.AgeSex)
	pdf.Text(160, 117, req.RefBy)
	pdf.Text(430, 117, req.Date)
	pdf.Text(160, 142, xrayNo)

	// Exam title.
	drawCentered(192, examTitle, "BI", 14, true)

	y := 232.0

	// Findings section with underlined label.
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(leftMargin, y, "Findings:")
	pdf.Line(leftMargin, y+2, leftMargin+55, y+2)
	y += 25

	pdf.SetFont("Helvetica", "I", 11)
	for _, line := range wrapText(findings, wrapWidth) {
		pdf.Text(leftMargin, y, line)
		y += lineStep
	}
	y += sectionGap

	pdf.SetFont("Helvetica", "B", 11)
	for _, line := range wrapText("Conclusion: "+req.Conclusion, wrapWidth) {
		pdf.Text(leftMargin, y, line)
		y += lineStep
	}
	y += sectionGap

	pdf.SetFont("Helvetica", "BI", 11)
	for _, line := range wrapText("Adv: "+req.Advice, wrapWidth) {
		pdf.Text(leftMargin, y, line)
		y += lineStep
	}

	y += 40
	pdf.SetFont("Helvetica", "BI", 12)
	pdf.Text(leftMargin, y, closingLine)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}

	return buf.Bytes(), Filename(xrayNo), nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// wrapText performs deterministic greedy word wrapping at the given
// character width. Words longer than the width are split.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var current strings.Builder
	for _, word := range words {
		for len(word) > width {
			if current.Len() > 0 {
				lines = append(lines, current.String())
				current.Reset()
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		if word == "" {
			continue
		}
		switch {
		case current.Len() == 0:
			current.WriteString(word)
		case current.Len()+1+len(word) <= width:
			current.WriteByte(' ')
			current.WriteString(word)
		default:
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
