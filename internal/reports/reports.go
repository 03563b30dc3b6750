// Package reports renders the final Parkinson's detection report as a PDF.
package reports

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/terraincognita07/vocalis/internal/features"
)

const Title = "Parkinson Disease Detection Report"

type Report struct {
	PatientName string
	Prediction  string
	DoctorName  string
	Features    features.Vector
}

var filenameReplacer = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")

// Filename derives the stored name of a patient's report. The result is always a
// single path component. Two patients with the same display name share a
// filename and the later report replaces the earlier.
func Filename(patientName string) string {
	return filenameReplacer.Replace(strings.TrimSpace(patientName)) + "_parkinsons_report.pdf"
}

// Lines returns the body lines in print order.
func (report Report) Lines() []string {
	lines := []string{
		"Patient Name: " + report.PatientName,
		"Prediction Result: " + report.Prediction,
		"Report by: Dr. " + report.DoctorName,
	}
	for _, value := range report.Features.Values() {
		lines = append(lines, value.Label+": "+features.FormatValue(value.Value))
	}
	return lines
}

func Render(report Report) ([]byte, error) {
	return render(report, true)
}

func render(report Report, compress bool) ([]byte, error) {
	document := gofpdf.New("P", "mm", "A4", "")
	document.SetCompression(compress)
	document.SetTitle(Title, true)
	document.SetAuthor("Dr. "+report.DoctorName, true)
	document.AddPage()

	document.SetFont("Arial", "B", 16)
	document.CellFormat(0, 10, Title, "", 1, "C", false, 0, "")
	document.Ln(4)

	translate := document.UnicodeTranslatorFromDescriptor("")
	document.SetFont("Arial", "", 12)
	for index, line := range report.Lines() {
		if index == 3 {
			document.Ln(4)
			document.SetFont("Arial", "B", 12)
			document.CellFormat(0, 8, "Voice Features", "", 1, "L", false, 0, "")
			document.SetFont("Arial", "", 11)
		}
		document.CellFormat(0, 7, translate(line), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := document.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}
