// Package export renders weekly plans into printable documents.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 15.0
	lineHeight = 6.0
)

// WritePlanPDF writes p as an A4 document: header, grocery table, then one
// section per recipe. Long plans flow onto extra pages.
func WritePlanPDF(w io.Writer, p plan.WeeklyPlan) error {
	if p.ID == "" {
		return errors.New("export: plan has no id")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(fmt.Sprintf("%s week plan", p.Mood), true)
	pdf.SetCreator("mealmood", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin + 5)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Weekly plan: %s", p.Mood)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, lineHeight, "Week of "+p.WeekStart.Format("Mon 2 Jan 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	heading(pdf, tr, fmt.Sprintf("Groceries (%d)", len(p.Groceries)))

	itemW, qtyW := contentW*0.65, contentW*0.35
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(itemW, lineHeight+1, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(qtyW, lineHeight+1, "Quantity", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, g := range p.Groceries {
		pdf.CellFormat(itemW, lineHeight, tr(truncate(g.Item, 70)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(qtyW, lineHeight, tr(truncate(g.Quantity, 40)), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	heading(pdf, tr, fmt.Sprintf("Recipes (%d)", len(p.Recipes)))

	for i, r := range p.Recipes {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, lineHeight+1, tr(fmt.Sprintf("%d. %s (%s)", i+1, r.Title, r.MealType)), "", "L", false)

		pdf.SetFont("Helvetica", "", 10)
		for _, ing := range r.Ingredients {
			line := "- " + ing.Name
			if ing.Quantity != "" {
				line += ": " + ing.Quantity
			}
			pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
		}

		pdf.Ln(1)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, lineHeight, tr(r.Instructions), "", "L", false)
		pdf.Ln(4)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("export: render pdf: %w", err)
	}

	return pdf.Output(w)
}

func heading(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(text), "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
