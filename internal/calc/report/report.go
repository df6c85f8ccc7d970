// Package report renders envelope evaluations as PDF documents.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"

	"Envolvente/internal/calc/indicators"
	"Envolvente/internal/calc/uvalue"
)

type Header struct {
	Project string `json:"project"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`
}

var wallCols = []struct {
	title string
	width float64
	align string
}{
	{"Element", 50, "L"},
	{"Boundary", 24, "L"},
	{"Tilt", 18, "L"},
	{"Orient.", 14, "C"},
	{"Area m²", 20, "R"},
	{"U W/m²K", 20, "R"},
	{"Case", 44, "L"},
}

// Write renders the header, the indicators, the U-value table and the
// warnings of an evaluation as an A4 document.
func Write(w io.Writer, h Header, rows []uvalue.Row, sum indicators.Summary) error {
	if h.Title == "" {
		h.Title = "Envelope Thermal Report"
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(h.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(h.Title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Project: %s", h.Project)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Author: %s", h.Author)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Building: %s, climate zone %s", sum.Name, sum.Climate)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Indicators")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	lines := [][2]string{
		{"Reference area A_ref", fmt.Sprintf("%.2f m²", sum.ARef)},
		{"Gross / net volume", fmt.Sprintf("%.2f / %.2f m³", sum.VolEnvGross, sum.VolEnvNet)},
		{"Compacity V/A", fmt.Sprintf("%.2f m³/m²", sum.Compacity)},
		{"Global transmittance K", fmt.Sprintf("%.2f W/m²K", sum.K.K)},
		{"Air changes n50", fmt.Sprintf("%.2f 1/h", sum.N50)},
		{"Opaque permeability C_o", fmt.Sprintf("%.2f m³/h·m²", sum.Co)},
	}
	if sum.QSolJul != nil {
		lines = append(lines, [2]string{"Solar control q_sol;jul", fmt.Sprintf("%.2f kWh/m²·month", *sum.QSolJul)})
	}
	for _, l := range lines {
		pdf.CellFormat(70, 6, tr(l[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(l[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Opaque elements")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range wallCols {
		pdf.CellFormat(c.width, 6, tr(c.title), "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, r := range rows {
		u := "-"
		if r.OK {
			u = fmt.Sprintf("%.3f", r.U)
		}
		name := r.Name
		if name == "" {
			name = r.ID
		}
		cells := []string{name, string(r.Bounds), r.Tilt.String(), string(r.Orientation), fmt.Sprintf("%.2f", r.AreaM2), u, r.Case}
		for i, c := range wallCols {
			pdf.CellFormat(c.width, 6, tr(cells[i]), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(sum.Warnings) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Warnings")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 9)
		for _, wn := range sum.Warnings {
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("[%s] %s", wn.ID, wn.Msg)), "", "L", false)
		}
	}
	if h.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(h.Notes), "", "L", false)
	}
	return pdf.Output(w)
}
