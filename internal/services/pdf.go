package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"event-console/internal/models"
)

// InvoiceDocument is the logical page content handed to the renderer
type InvoiceDocument struct {
	Invoice   *models.Invoice
	Totals    models.Totals
	UPIQR     []byte
	Signature []byte
}

const (
	pageWidth    = 190.0
	lineHeight   = 7.0
	currencyMark = "Rs."
	dateLayout   = "02 Jan 2006"
)

// PDFService renders invoices and order receipts on A4 pages
type PDFService struct{}

// NewPDFService creates a new PDF service
func NewPDFService() *PDFService {
	return &PDFService{}
}

func newDocument(title string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func money(d decimal.Decimal) string {
	return currencyMark + " " + d.StringFixed(2)
}

// RenderInvoice lays out header, parties, the line-item table with every
// custom column, totals, payment details, the UPI QR and the signatory
func (s *PDFService) RenderInvoice(ctx context.Context, doc *InvoiceDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil || doc.Invoice == nil {
		return nil, fmt.Errorf("invoice document is empty")
	}
	inv := doc.Invoice

	pdf, tr := newDocument("Invoice " + inv.InvoiceNumber)

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(pageWidth/2, 10, "INVOICE", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(pageWidth/2, 5, tr("No. "+inv.InvoiceNumber), "", 2, "R", false, 0, "")
	pdf.CellFormat(pageWidth/2, 5, "Date: "+inv.IssueDate.Format(dateLayout), "", 2, "R", false, 0, "")
	if inv.DueDate != nil {
		pdf.CellFormat(pageWidth/2, 5, "Due: "+inv.DueDate.Format(dateLayout), "", 2, "R", false, 0, "")
	}
	pdf.SetX(10)
	pdf.Ln(6)

	top := pdf.GetY()
	writeParty(pdf, tr, "From", inv.Sender, 10, top)
	leftBottom := pdf.GetY()
	writeParty(pdf, tr, "Bill To", inv.Client, 10+pageWidth/2, top)
	if leftBottom > pdf.GetY() {
		pdf.SetY(leftBottom)
	}
	pdf.Ln(4)

	writeLineItems(pdf, tr, inv)
	writeInvoiceTotals(pdf, inv, doc.Totals)

	if inv.PaymentDetails != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Payment details", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, tr(inv.PaymentDetails), "", "L", false)
	}

	if len(doc.UPIQR) > 0 {
		pdf.Ln(3)
		y := pdf.GetY()
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("upi-qr", opts, bytes.NewReader(doc.UPIQR))
		pdf.ImageOptions("upi-qr", 10, y, 32, 32, false, opts, 0, "")
		pdf.SetXY(45, y+10)
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 5, tr("Scan to pay via UPI: "+inv.UPIID), "", 2, "L", false, 0, "")
		pdf.CellFormat(0, 5, "Amount: "+money(doc.Totals.BalanceDue), "", 1, "L", false, 0, "")
		pdf.SetY(y + 34)
	}

	if inv.Notes != "" {
		pdf.Ln(2)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, tr(inv.Notes), "", "L", false)
	}

	writeSignatory(pdf, tr, inv.Signatory, doc.Signature)

	data, err := output(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}
	return data, nil
}

func writeParty(pdf *gofpdf.Fpdf, tr func(string) string, title string, p models.Party, x, y float64) {
	w := pageWidth / 2
	pdf.SetXY(x, y)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(w, 6, title, "", 2, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, line := range []string{p.Name, p.Company, p.Address, p.Email, p.Phone} {
		if line == "" {
			continue
		}
		pdf.SetX(x)
		pdf.MultiCell(w, 5, tr(line), "", "L", false)
	}
	if p.GSTIN != "" {
		pdf.SetX(x)
		pdf.CellFormat(w, 5, tr("GSTIN: "+p.GSTIN), "", 2, "L", false, 0, "")
	}
}

// lineItemWidths gives custom columns up to 25mm each, never squeezing the
// description below half of the flexible width
func lineItemWidths(columns int) (desc, custom float64) {
	flexible := pageWidth - 80
	desc = flexible
	if columns == 0 {
		return desc, 0
	}
	custom = (flexible / 2) / float64(columns)
	if custom > 25 {
		custom = 25
	}
	return flexible - custom*float64(columns), custom
}

func writeLineItems(pdf *gofpdf.Fpdf, tr func(string) string, inv *models.Invoice) {
	descW, customW := lineItemWidths(len(inv.Columns))

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(descW, lineHeight, "Description", "1", 0, "L", true, 0, "")
	for _, col := range inv.Columns {
		pdf.CellFormat(customW, lineHeight, clip(pdf, tr(col.Label), customW), "1", 0, "L", true, 0, "")
	}
	pdf.CellFormat(18, lineHeight, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, lineHeight, "Unit price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(32, lineHeight, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, item := range inv.LineItems {
		pdf.CellFormat(descW, lineHeight, clip(pdf, tr(item.Description), descW), "1", 0, "L", false, 0, "")
		for _, col := range inv.Columns {
			pdf.CellFormat(customW, lineHeight, clip(pdf, tr(item.CustomValue(col.ID)), customW), "1", 0, "L", false, 0, "")
		}
		pdf.CellFormat(18, lineHeight, strconv.Itoa(item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, lineHeight, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(32, lineHeight, item.Amount().StringFixed(2), "1", 1, "R", false, 0, "")
	}
}

func writeInvoiceTotals(pdf *gofpdf.Fpdf, inv *models.Invoice, totals models.Totals) {
	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(pageWidth-62, 6, "", "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(32, 6, value, "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	row("Subtotal", money(totals.Subtotal), false)
	if inv.GSTEnabled {
		row("GST "+inv.GSTPercentage.String()+"%", money(totals.TaxAmount), false)
	}
	row("Total", money(totals.Total), true)
	if !inv.AdvancePaid.IsZero() {
		row("Advance paid", money(inv.AdvancePaid), false)
		row("Balance due", money(totals.BalanceDue), true)
	}
}

func writeSignatory(pdf *gofpdf.Fpdf, tr func(string) string, sig models.Signatory, image []byte) {
	if sig.Mode == models.SignatoryNone || sig.Mode == "" {
		return
	}

	pdf.Ln(8)
	x := 10 + pageWidth - 60
	if sig.Mode == models.SignatoryImage && len(image) > 0 {
		if imageType := imageTypeOf(image); imageType != "" {
			opts := gofpdf.ImageOptions{ImageType: imageType}
			pdf.RegisterImageOptionsReader("signature", opts, bytes.NewReader(image))
			y := pdf.GetY()
			pdf.ImageOptions("signature", x, y, 50, 0, false, opts, 0, "")
			pdf.SetY(y + 20)
		}
	}

	pdf.SetX(x)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(60, 5, "Authorised signatory", "T", 2, "C", false, 0, "")
	if sig.Name != "" {
		pdf.SetX(x)
		pdf.CellFormat(60, 5, tr(sig.Name), "", 1, "C", false, 0, "")
	}
}

func imageTypeOf(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	default:
		return ""
	}
}

// clip shortens text to fit a cell of width w
func clip(pdf *gofpdf.Fpdf, text string, w float64) string {
	limit := w - 2
	if pdf.GetStringWidth(text) <= limit {
		return text
	}
	for len(text) > 0 && pdf.GetStringWidth(text+"...") > limit {
		text = text[:len(text)-1]
	}
	return strings.TrimSpace(text) + "..."
}

// RenderReceipt renders the confirmation for a placed ticket order
func (s *PDFService) RenderReceipt(ctx context.Context, order *models.TicketOrder) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order is empty")
	}

	pdf, tr := newDocument("Order " + order.OrderNumber)

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, "Ticket order receipt", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "Order: "+order.OrderNumber, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Event: "+order.EventTitle), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Placed: "+order.CreatedAt.Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Status: "+strings.ToUpper(string(order.Status)), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Customer", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{order.Customer.Name, order.Customer.Email, order.Customer.Phone} {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(100, lineHeight, "Ticket", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, lineHeight, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, lineHeight, "Unit price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, lineHeight, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, item := range order.Items {
		amount := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		pdf.CellFormat(100, lineHeight, clip(pdf, tr(item.Name), 100), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, lineHeight, strconv.Itoa(item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, lineHeight, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, lineHeight, amount.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(155, 8, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, money(order.TotalAmount), "", 1, "R", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(0, 5, tr(fmt.Sprintf("Payment reference: %s. Tickets are issued once the payment is confirmed.", order.PaymentRef)), "", "L", false)

	data, err := output(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt PDF: %w", err)
	}
	return data, nil
}
