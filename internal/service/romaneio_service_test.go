package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendaflow/internal/dto"
	"vendaflow/internal/model"
)

type fakeRenderer struct {
	doc *dto.RomaneioDocument
}

func (r *fakeRenderer) Render(doc *dto.RomaneioDocument) ([]byte, error) {
	r.doc = doc
	return []byte("%PDF-fake"), nil
}

func TestBuildDocumentLinksAndTotals(t *testing.T) {
	saleRepo := newStubSaleRepo()
	orgRepo := newStubOrgRepo()
	org := &model.Organization{ID: uuid.New(), Name: "Farmácia Vida", Slug: "vida", Active: true}
	orgRepo.orgs[org.ID] = org

	street, number, city, state := "Rua das Flores", "120", "São Paulo", "SP"
	mapLink := "https://maps.app.goo.gl/abc123"
	cash := &model.PaymentMethod{ID: uuid.New(), Name: "Dinheiro", Timing: model.TimingCash}

	collect := model.Sale{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		Number:         41,
		TotalCents:     30500,
		Installments:   1,
		PaymentMethod:  cash,
		Lead: &model.Lead{
			Name: "João da Silva", Phone: "11987654321",
			Street: &street, Number: &number, City: &city, State: &state,
			MapLink: &mapLink,
		},
		Items: []model.SaleItem{{ProductName: "Colágeno Hidrolisado", Quantity: 3}},
		Courier: &model.User{Name: "Carlos"},
	}
	paid := model.Sale{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		Number:         42,
		TotalCents:     12000,
		Installments:   1,
	}
	saleRepo.manifest = []model.Sale{collect, paid}

	svc := NewRomaneioService(saleRepo, orgRepo, &fakeRenderer{}, "http://localhost:8000/")

	doc, err := svc.BuildDocument(context.Background(), org.ID, dto.RomaneioFilter{Date: "2026-08-28"})
	require.NoError(t, err)

	assert.Equal(t, "Farmácia Vida", doc.OrganizationName)
	assert.Equal(t, "Carlos", doc.CourierName)
	assert.Equal(t, 2, doc.TotalSales)
	assert.Equal(t, int64(30500), doc.TotalToCollect, "only cash-on-delivery sales add to the collect total")
	require.Len(t, doc.Entries, 2)

	entry := doc.Entries[0]
	// Each entry carries a deep link back to its sale record; the renderer
	// turns it into a QR code on the printed sheet.
	assert.Equal(t, "http://localhost:8000/v1/sales/"+collect.ID.String(), entry.SaleLink)
	assert.Equal(t, mapLink, entry.MapLink)
	assert.Equal(t, "https://wa.me/5511987654321", entry.WhatsAppLink)
	assert.Equal(t, []string{"Rua das Flores, 120", "São Paulo/SP"}, entry.AddressLines)
	assert.True(t, entry.Payment.CollectOnDelivery)
}

func TestRenderPDFUsesBuiltDocument(t *testing.T) {
	saleRepo := newStubSaleRepo()
	orgRepo := newStubOrgRepo()
	org := &model.Organization{ID: uuid.New(), Name: "Farmácia Vida", Active: true}
	orgRepo.orgs[org.ID] = org
	saleRepo.manifest = []model.Sale{{ID: uuid.New(), OrganizationID: org.ID, Number: 7, Installments: 1}}

	renderer := &fakeRenderer{}
	svc := NewRomaneioService(saleRepo, orgRepo, renderer, "http://localhost:8000")

	out, err := svc.RenderPDF(context.Background(), org.ID, dto.RomaneioFilter{})
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), out)
	require.NotNil(t, renderer.doc)
	assert.Equal(t, 1, renderer.doc.TotalSales)
	assert.NotEmpty(t, renderer.doc.Entries[0].SaleLink)
}
