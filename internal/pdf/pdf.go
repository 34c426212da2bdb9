// Package pdf renders documents to a fixed A4 layout.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/diewo77/bizdesk/i18n"
	"github.com/diewo77/bizdesk/internal/models"
)

var ErrNoDocument = errors.New("no_document")

const dateLayout = "2006-01-02"

// DocumentData is everything printed on a page.
type DocumentData struct {
	Document *models.Document
	Company  *models.CompanySettings // optional
}

type column struct {
	label string
	width float64
	align string
}

// Render lays out data with labels in lang.
func Render(data DocumentData, lang string) ([]byte, error) {
	doc := data.Document
	if doc == nil {
		return nil, ErrNoDocument
	}
	label := func(key string) string { return i18n.T(lang, "pdf."+key) }

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(doc.Number, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Company header
	if c := data.Company; c != nil {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 7, tr(c.Name), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, l := range nonEmpty(c.Address, c.Email, c.Phone, c.TaxNumber) {
			pdf.MultiCell(0, 4.5, tr(l), "", "L", false)
		}
		pdf.Ln(4)
	}

	// Title block
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(label(string(doc.Kind))), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(label("number")+": "+doc.Number), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 5, tr(label("issue_date")+": "+doc.IssueDate.Format(dateLayout)), "", 1, "R", false, 0, "")
	if doc.DueDate != nil {
		pdf.CellFormat(0, 5, tr(label("due_date")+": "+doc.DueDate.Format(dateLayout)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Client block
	if cl := doc.Client; cl != nil {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 5, tr(label("bill_to")), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, l := range nonEmpty(cl.Name, cl.Company, cl.FullAddress(), cl.Email, cl.TaxNumber) {
			pdf.MultiCell(0, 5, tr(l), "", "L", false)
		}
		pdf.Ln(6)
	}

	// Items
	cols := []column{
		{label("type"), 25, "L"},
		{label("description"), 75, "L"},
		{label("quantity"), 20, "R"},
		{label("rate"), 30, "R"},
		{label("amount"), 30, "R"},
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for _, c := range cols {
		pdf.CellFormat(c.width, 7, tr(c.label), "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, it := range doc.Items {
		cells := []string{string(it.Type), it.Description, it.Quantity.String(), money(it.Rate), money(it.Amount)}
		for i, c := range cols {
			pdf.CellFormat(c.width, 6, tr(truncate(cells[i], c.width)), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	// Totals
	totals := doc.ComputeTotals()
	rows := [][2]string{{label("subtotal"), money(totals.Subtotal)}}
	if totals.Discount.IsPositive() {
		rows = append(rows, [2]string{label("discount"), "-" + money(totals.Discount)})
	}
	if !doc.TaxRate.IsZero() {
		rate := doc.TaxRate.Mul(decimal.NewFromInt(100)).String() + "%"
		rows = append(rows, [2]string{label("tax") + " (" + rate + ")", money(totals.Tax)})
	}
	for _, r := range rows {
		pdf.CellFormat(150, 6, tr(r[0]), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, r[1], "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(150, 8, tr(label("total")), "T", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, money(totals.Total)+" "+doc.Currency, "T", 1, "R", false, 0, "")

	if doc.Notes != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 5, tr(label("notes")), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 4.5, tr(doc.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName is the download name, e.g. INV-2026-0001.pdf.
func FileName(doc *models.Document) string {
	return doc.Number + ".pdf"
}

func money(d decimal.Decimal) string {
	return d.StringFixedBank(2)
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// truncate keeps a cell on one line; roughly 2mm per character at 9pt.
func truncate(s string, width float64) string {
	n := int(width / 2)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
