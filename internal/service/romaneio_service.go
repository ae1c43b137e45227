package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"vendaflow/internal/dto"
	"vendaflow/internal/model"
	"vendaflow/internal/repository"
)

// RomaneioService assembles the daily delivery manifest: the printed sheet a
// courier takes on the road, one block per sale, with address, payment to
// collect and the outcome checklist.
type RomaneioService interface {
	BuildDocument(ctx context.Context, orgID uuid.UUID, filter dto.RomaneioFilter) (*dto.RomaneioDocument, error)
	RenderPDF(ctx context.Context, orgID uuid.UUID, filter dto.RomaneioFilter) ([]byte, error)
}

// RomaneioRenderer turns a document into PDF bytes.
type RomaneioRenderer interface {
	Render(doc *dto.RomaneioDocument) ([]byte, error)
}

type romaneioService struct {
	saleRepo repository.SaleRepository
	orgRepo  repository.OrganizationRepository
	renderer RomaneioRenderer
	// publicURL is the externally reachable base; each entry links back to
	// its sale record through it.
	publicURL string
}

func NewRomaneioService(saleRepo repository.SaleRepository, orgRepo repository.OrganizationRepository, renderer RomaneioRenderer, publicURL string) RomaneioService {
	return &romaneioService{
		saleRepo:  saleRepo,
		orgRepo:   orgRepo,
		renderer:  renderer,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *romaneioService) BuildDocument(ctx context.Context, orgID uuid.UUID, filter dto.RomaneioFilter) (*dto.RomaneioDocument, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, errors.New("organização não encontrada")
	}

	date := filter.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	sales, err := s.saleRepo.ListForManifest(ctx, orgID, date, filter.CourierUserID, filter.DeliveryType)
	if err != nil {
		return nil, err
	}

	doc := &dto.RomaneioDocument{
		OrganizationName: org.Name,
		Date:             date,
		DeliveryType:     filter.DeliveryType,
		GeneratedAt:      time.Now().Format(time.RFC3339),
	}

	for i := range sales {
		entry := s.buildEntry(&sales[i])
		if doc.CourierName == "" && sales[i].Courier != nil {
			doc.CourierName = sales[i].Courier.Name
		}
		if entry.Payment.CollectOnDelivery {
			doc.TotalToCollect += entry.Payment.TotalCents
		}
		doc.Entries = append(doc.Entries, entry)
	}
	doc.TotalSales = len(doc.Entries)
	return doc, nil
}

func (s *romaneioService) RenderPDF(ctx context.Context, orgID uuid.UUID, filter dto.RomaneioFilter) ([]byte, error) {
	doc, err := s.BuildDocument(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(doc)
}

func (s *romaneioService) buildEntry(sale *model.Sale) dto.RomaneioEntry {
	entry := dto.RomaneioEntry{
		SaleID:           sale.ID.String(),
		SaleNumber:       sale.Number,
		OutcomeChecklist: model.DeliveryOutcomes,
	}
	if s.publicURL != "" {
		entry.SaleLink = s.publicURL + "/v1/sales/" + sale.ID.String()
	}
	if sale.DeliveryNotes != nil {
		entry.DeliveryNotes = *sale.DeliveryNotes
	}

	if lead := sale.Lead; lead != nil {
		entry.ClientName = lead.Name
		entry.Phone = lead.Phone
		entry.AddressLines = addressLines(lead)
		if lead.MapLink != nil {
			entry.MapLink = *lead.MapLink
		}
		entry.WhatsAppLink = "https://wa.me/" + waPhone(lead.Phone)
	}

	for _, item := range sale.Items {
		ri := dto.RomaneioItem{ProductName: item.ProductName, Quantity: item.Quantity}
		if item.RequisitionNumber != nil {
			ri.Note = "Req. " + *item.RequisitionNumber
		}
		entry.Items = append(entry.Items, ri)
	}

	entry.Payment = dto.RomaneioPayment{
		TotalCents:   sale.TotalCents,
		Installments: sale.Installments,
	}
	if pm := sale.PaymentMethod; pm != nil {
		entry.Payment.MethodName = pm.Name
		entry.Payment.Timing = pm.Timing
		entry.Payment.CollectOnDelivery = pm.Timing == model.TimingCash && sale.PaymentConfirmedAt == nil
	}
	return entry
}

// addressLines formats the lead address as print lines, skipping empty parts.
func addressLines(l *model.Lead) []string {
	var lines []string

	street := strValue(l.Street)
	if n := strValue(l.Number); n != "" && street != "" {
		street += ", " + n
	}
	if street != "" {
		lines = append(lines, street)
	}

	var cityParts []string
	if d := strValue(l.District); d != "" {
		cityParts = append(cityParts, d)
	}
	if c := strValue(l.City); c != "" {
		city := c
		if uf := strValue(l.State); uf != "" {
			city += "/" + uf
		}
		cityParts = append(cityParts, city)
	}
	if len(cityParts) > 0 {
		lines = append(lines, strings.Join(cityParts, " - "))
	}

	if cep := strValue(l.ZipCode); cep != "" {
		lines = append(lines, "CEP "+cep)
	}
	return lines
}

// waPhone ensures the wa.me form carries the country code.
func waPhone(digits string) string {
	if len(digits) <= 11 && !strings.HasPrefix(digits, "55") {
		return "55" + digits
	}
	return digits
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
