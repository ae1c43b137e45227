package infra

// pdf.go — romaneio (delivery manifest) rendering using go-pdf/fpdf.
// A4 portrait, one block per sale:
//   - Sale number, client, phone and address
//   - Sale record / map deep links as scannable QR codes
//   - Item list with quantities
//   - Payment line ("COBRAR NA ENTREGA" highlighted when the courier collects)
//   - Outcome checklist with tick boxes
//   - Signature line

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"vendaflow/internal/dto"
	"vendaflow/internal/pricing"
)

type RomaneioPDF struct{}

func NewRomaneioPDF() *RomaneioPDF { return &RomaneioPDF{} }

var outcomeLabels = map[string]string{
	"delivered":             "Entregue",
	"recipient_absent":      "Destinatário ausente",
	"address_not_found":     "Endereço não localizado",
	"wrong_address":         "Endereço incorreto",
	"refused":               "Recusado",
	"no_payment":            "Sem pagamento",
	"rescheduled":           "Reagendado",
	"damaged":               "Avariado",
	"lost":                  "Extraviado",
	"cancelled_by_customer": "Cancelado pelo cliente",
	"returned_to_base":      "Retornou à base",
	"incomplete":            "Incompleto",
}

func (r *RomaneioPDF) Render(doc *dto.RomaneioDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 14)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr(doc.OrganizationName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	title := "Romaneio de Entregas — " + doc.Date
	if doc.CourierName != "" {
		title += " — " + doc.CourierName
	}
	pdf.CellFormat(contentW, 6, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5,
		tr(fmt.Sprintf("%d entregas — a receber: %s", doc.TotalSales, pricing.FormatBRL(doc.TotalToCollect))),
		"", 1, "C", false, 0, "")
	pdf.Ln(3)

	for _, entry := range doc.Entries {
		r.renderEntry(pdf, tr, contentW, pageW, entry)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render romaneio: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *RomaneioPDF) renderEntry(pdf *fpdf.Fpdf, tr func(string) string, contentW, pageW float64, entry dto.RomaneioEntry) {
	// Keep a block together: break early when close to the bottom.
	if pdf.GetY() > 215 {
		pdf.AddPage()
	}

	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW*0.5, 6, tr(fmt.Sprintf("Venda #%d — %s", entry.SaleNumber, entry.ClientName)), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW*0.5, 6, tr("Tel: "+entry.Phone), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range entry.AddressLines {
		pdf.CellFormat(contentW, 4.5, tr(line), "", 1, "L", false, 0, "")
	}
	if entry.WhatsAppLink != "" {
		pdf.SetTextColor(0, 0, 180)
		pdf.CellFormat(contentW, 4.5, tr("WhatsApp: "+entry.WhatsAppLink), "", 1, "L", false, 0, entry.WhatsAppLink)
		pdf.SetTextColor(0, 0, 0)
	}

	// The courier scans these with the phone camera: the sale record always,
	// the map when the lead has a saved location.
	if entry.SaleLink != "" || entry.MapLink != "" {
		y := pdf.GetY() + 1
		x := 12.0
		pdf.SetFont("Helvetica", "", 6.5)
		if entry.SaleLink != "" {
			r.drawQR(pdf, entry.SaleLink, x, y)
			pdf.Text(x, y+qrSize+2.5, tr("Venda"))
			x += qrSize + 10
		}
		if entry.MapLink != "" {
			r.drawQR(pdf, entry.MapLink, x, y)
			pdf.Text(x, y+qrSize+2.5, tr("Mapa"))
		}
		pdf.SetY(y + qrSize + 3.5)
	}
	pdf.Ln(1)

	// ── Items ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW*0.7, 5, "Produto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.3, 5, "Qtd", "B", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, item := range entry.Items {
		name := item.ProductName
		if item.Note != "" {
			name += " (" + item.Note + ")"
		}
		pdf.CellFormat(contentW*0.7, 4.5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.3, 4.5, fmt.Sprintf("x%d", item.Quantity), "", 1, "C", false, 0, "")
	}
	pdf.Ln(1)

	// ── Payment ──────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pay := "Pagamento: " + entry.Payment.MethodName
	if entry.Payment.Installments > 1 {
		pay += fmt.Sprintf(" (%dx)", entry.Payment.Installments)
	}
	pay += " — " + pricing.FormatBRL(entry.Payment.TotalCents)
	if entry.Payment.CollectOnDelivery {
		pdf.SetTextColor(180, 0, 0)
		pay += "  ** COBRAR NA ENTREGA **"
	}
	pdf.CellFormat(contentW, 5.5, tr(pay), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	if entry.DeliveryNotes != "" {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(contentW, 4.5, tr("Obs: "+entry.DeliveryNotes), "", 1, "L", false, 0, "")
	}
	pdf.Ln(1)

	// ── Outcome checklist ────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7.5)
	perRow := 3
	cellW := contentW / float64(perRow)
	for i, outcome := range entry.OutcomeChecklist {
		label, ok := outcomeLabels[outcome]
		if !ok {
			label = outcome
		}
		pdf.CellFormat(cellW, 4.5, tr("[  ] "+label), "", 0, "L", false, 0, "")
		if (i+1)%perRow == 0 {
			pdf.Ln(-1)
		}
	}
	if len(entry.OutcomeChecklist)%perRow != 0 {
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 4.5, tr("Assinatura: ______________________________________   Hora: __________"), "", 1, "L", false, 0, "")
	pdf.Ln(3)
}

const qrSize = 16.0 // mm

// drawQR encodes the link as a QR bitmap and places it at (x, y). The link
// itself keys fpdf's image registry, so repeated entries reuse the bitmap.
func (r *RomaneioPDF) drawQR(pdf *fpdf.Fpdf, link string, x, y float64) {
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(link, opts, bytes.NewReader(png))
	pdf.ImageOptions(link, x, y, qrSize, qrSize, false, opts, 0, link)
}
