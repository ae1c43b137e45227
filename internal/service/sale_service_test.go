package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendaflow/internal/dto"
	"vendaflow/internal/model"
)

type saleFixture struct {
	repo        *stubSaleRepo
	leadRepo    *stubLeadRepo
	productRepo *stubProductRepo
	userRepo    *stubUserRepo
	stock       *recordingStock
	mail        *stubEmailSender
	svc         SaleService

	org     uuid.UUID
	actor   uuid.UUID
	lead    *model.Lead
	product *model.Product
	kit     *model.ProductPriceKit
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()

	f := &saleFixture{
		repo:        newStubSaleRepo(),
		leadRepo:    newStubLeadRepo(),
		productRepo: newStubProductRepo(),
		userRepo:    newStubUserRepo(),
		stock:       &recordingStock{},
		mail:        &stubEmailSender{},
		org:         uuid.New(),
	}
	f.svc = NewSaleService(f.repo, f.leadRepo, f.productRepo, f.userRepo, f.stock, f.mail)

	seller := &model.User{
		ID:                   uuid.New(),
		OrganizationID:       &f.org,
		Email:                "maria@vendaflow.local",
		Name:                 "Maria",
		Role:                 model.RoleSeller,
		DefaultCommissionPct: decimal.RequireFromString("10"),
		Active:               true,
	}
	f.userRepo.users[seller.ID] = seller
	f.actor = seller.ID

	f.lead = &model.Lead{ID: uuid.New(), OrganizationID: f.org, Name: "João da Silva", Phone: "11987654321"}
	f.leadRepo.leads[f.lead.ID] = f.lead

	regular, minimum := int64(10000), int64(5000)
	productID := uuid.New()
	f.kit = &model.ProductPriceKit{
		ID:                          uuid.New(),
		ProductID:                   productID,
		Quantity:                    3,
		RegularPriceCents:           &regular,
		MinimumPriceCents:           &minimum,
		RegularUseDefaultCommission: true,
		MinimumUseDefaultCommission: true,
	}
	f.product = &model.Product{
		ID:             productID,
		OrganizationID: f.org,
		Name:           "Colágeno Hidrolisado",
		Category:       "suplemento",
		Active:         true,
		TrackStock:     true,
		StockActual:    50,
		Kits:           []model.ProductPriceKit{*f.kit},
	}
	f.productRepo.products[f.product.ID] = f.product
	return f
}

func strptr(s string) *string { return &s }

func (f *saleFixture) createRequest() dto.CreateSaleRequest {
	kitID := f.kit.ID.String()
	return dto.CreateSaleRequest{
		LeadID: f.lead.ID.String(),
		Items: []dto.SaleItemRequest{{
			ProductID: f.product.ID.String(),
			KitID:     &kitID,
			Tier:      "regular",
			Quantity:  1,
		}},
		DeliveryType:      model.DeliveryPickup,
		ShippingCostCents: 500,
	}
}

// seedSale plants a sale directly in the repo at a given status.
func (f *saleFixture) seedSale(status string) *model.Sale {
	sale := &model.Sale{
		ID:             uuid.New(),
		OrganizationID: f.org,
		Number:         1,
		LeadID:         f.lead.ID,
		SellerUserID:   f.actor,
		SubtotalCents:  30000,
		TotalCents:     30000,
		Status:         status,
		DeliveryType:   model.DeliveryPickup,
		DeliveryStatus: model.DeliveryStatusPending,
		Installments:   1,
		Items:          []model.SaleItem{{ID: uuid.New(), ProductID: f.product.ID, ProductName: f.product.Name, Quantity: 3, UnitPriceCents: 10000, TotalCents: 30000}},
	}
	f.repo.sales[sale.ID] = sale
	return sale
}

// stored fetches the persisted row — transitions save a copy, so assertions
// on post-transition state must not rely on the seeded pointer.
func (f *saleFixture) stored(id uuid.UUID) *model.Sale {
	return f.repo.sales[id]
}

// ─── Create ─────────────────────────────────────────────────────────────────

func TestCreateSale(t *testing.T) {
	f := newSaleFixture(t)

	resp, err := f.svc.Create(context.Background(), f.org, f.actor, f.createRequest())
	require.NoError(t, err)

	assert.Equal(t, model.SaleDraft, resp.Status)
	assert.Equal(t, 1, resp.Number)
	assert.Equal(t, int64(30000), resp.SubtotalCents) // 3 × 10000 from the kit
	assert.Equal(t, int64(500), resp.ShippingCostCents)
	assert.Equal(t, int64(30500), resp.TotalCents)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, resp.Items[0].Quantity, "quantity comes from the kit, not the request")

	// Stock reserved right after creation; draft opens the history.
	assert.Equal(t, []string{model.StockOpReserve}, f.stock.ops)
	require.Len(t, f.repo.history, 1)
	assert.Equal(t, model.SaleDraft, f.repo.history[0].ToStatus)
}

func TestCreateSaleNumbersArePerOrgSequential(t *testing.T) {
	f := newSaleFixture(t)

	first, err := f.svc.Create(context.Background(), f.org, f.actor, f.createRequest())
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), f.org, f.actor, f.createRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, second.Number)
}

func TestCreateSaleRequiresKitForTieredProduct(t *testing.T) {
	f := newSaleFixture(t)
	req := f.createRequest()
	req.Items[0].KitID = nil

	_, err := f.svc.Create(context.Background(), f.org, f.actor, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kit")
}

func TestCreateSaleRequiresRequisitionForManipulado(t *testing.T) {
	f := newSaleFixture(t)
	price := int64(4500)
	manipulado := &model.Product{
		ID:             uuid.New(),
		OrganizationID: f.org,
		Name:           "Fórmula Manipulada",
		Category:       model.CategoryManipulado,
		Active:         true,
	}
	f.productRepo.products[manipulado.ID] = manipulado

	req := f.createRequest()
	req.Items = []dto.SaleItemRequest{{
		ProductID:        manipulado.ID.String(),
		Quantity:         2,
		CustomPriceCents: &price,
	}}

	_, err := f.svc.Create(context.Background(), f.org, f.actor, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requisição")

	req.Items[0].RequisitionNumber = strptr("REQ-2041")
	resp, err := f.svc.Create(context.Background(), f.org, f.actor, req)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), resp.SubtotalCents)
}

func TestCreateSaleBelowMinimumRequiresAuthorization(t *testing.T) {
	f := newSaleFixture(t)
	custom := int64(4000) // kit minimum is 5000

	req := f.createRequest()
	req.Items[0].Tier = "custom"
	req.Items[0].CustomPriceCents = &custom
	req.ShippingCostCents = 0

	_, err := f.svc.Create(context.Background(), f.org, f.actor, req)
	require.ErrorIs(t, err, ErrBelowMinimum)
}

func TestCreateSaleConsumesAuthorization(t *testing.T) {
	f := newSaleFixture(t)
	custom := int64(4000)

	auth := &model.DiscountAuthorization{
		OrganizationID:  f.org,
		LeadID:          f.lead.ID,
		ProductID:       f.product.ID,
		GrantedByUserID: uuid.New(),
		AuthorizedCents: 12000, // covers 3 × 4000
	}
	require.NoError(t, f.repo.CreateAuthorization(context.Background(), auth))

	req := f.createRequest()
	req.Items[0].Tier = "custom"
	req.Items[0].CustomPriceCents = &custom
	req.ShippingCostCents = 0

	resp, err := f.svc.Create(context.Background(), f.org, f.actor, req)
	require.NoError(t, err)
	assert.Equal(t, int64(12000), resp.TotalCents)

	require.NotNil(t, auth.ConsumedAt, "the grant is single-use and must be consumed")

	// A second below-minimum sale finds no open grant.
	_, err = f.svc.Create(context.Background(), f.org, f.actor, req)
	require.ErrorIs(t, err, ErrBelowMinimum)
}

func TestCreateSaleAuthorizationFloorStillApplies(t *testing.T) {
	f := newSaleFixture(t)
	custom := int64(3000) // 3 × 3000 = 9000, below the 10000 grant

	auth := &model.DiscountAuthorization{
		OrganizationID:  f.org,
		LeadID:          f.lead.ID,
		ProductID:       f.product.ID,
		GrantedByUserID: uuid.New(),
		AuthorizedCents: 10000,
	}
	require.NoError(t, f.repo.CreateAuthorization(context.Background(), auth))

	req := f.createRequest()
	req.Items[0].Tier = "custom"
	req.Items[0].CustomPriceCents = &custom

	_, err := f.svc.Create(context.Background(), f.org, f.actor, req)
	require.ErrorIs(t, err, ErrBelowMinimum)
	assert.Nil(t, auth.ConsumedAt)
}

// ─── Transitions ────────────────────────────────────────────────────────────

func TestValidateExpedition(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleDraft)

	resp, err := f.svc.ValidateExpedition(context.Background(), f.org, sale.ID, f.actor)
	require.NoError(t, err)

	assert.Equal(t, model.SalePendingExpedition, resp.Status)
	stored := f.stored(sale.ID)
	assert.NotNil(t, stored.ExpeditionValidatedAt)
	require.NotNil(t, stored.ExpeditionValidatedBy)
	assert.Equal(t, f.actor, *stored.ExpeditionValidatedBy)

	require.Len(t, f.repo.history, 1)
	assert.Equal(t, model.SaleDraft, f.repo.history[0].FromStatus)
	assert.Equal(t, model.SalePendingExpedition, f.repo.history[0].ToStatus)
}

func TestDispatchRejectsWrongSourceStatus(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleDraft)

	_, err := f.svc.Dispatch(context.Background(), f.org, sale.ID, f.actor, dto.DispatchRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transição inválida")
	assert.Equal(t, model.SaleDraft, sale.Status)
	assert.Empty(t, f.repo.history)
}

func TestDispatchMotoboyRequiresCourier(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SalePendingExpedition)
	sale.DeliveryType = model.DeliveryMotoboy

	_, err := f.svc.Dispatch(context.Background(), f.org, sale.ID, f.actor, dto.DispatchRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entregador")

	// The rejected dispatch must leave the sale untouched: still waiting for
	// expedition, no dispatch timestamp, no history entry.
	stored := f.stored(sale.ID)
	assert.Equal(t, model.SalePendingExpedition, stored.Status)
	assert.Nil(t, stored.DispatchedAt)
	assert.Empty(t, f.repo.history)

	// Retrying with a courier now succeeds.
	courier := uuid.New().String()
	resp, err := f.svc.Dispatch(context.Background(), f.org, sale.ID, f.actor, dto.DispatchRequest{CourierUserID: &courier})
	require.NoError(t, err)
	assert.Equal(t, model.SaleDispatched, resp.Status)
	assert.NotNil(t, f.stored(sale.ID).DispatchedAt)
}

func TestDeliverRejectsUnknownOutcome(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleDispatched)

	_, err := f.svc.Deliver(context.Background(), f.org, sale.ID, f.actor, dto.DeliverRequest{Outcome: "teleported"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resultado de entrega inválido")
}

func TestDeliverCashStopsAtDelivered(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleDispatched)
	sale.PaymentMethod = &model.PaymentMethod{ID: uuid.New(), Timing: model.TimingCash}
	sale.PaymentMethodID = &sale.PaymentMethod.ID

	resp, err := f.svc.Deliver(context.Background(), f.org, sale.ID, f.actor, dto.DeliverRequest{Outcome: model.OutcomeDelivered})
	require.NoError(t, err)

	assert.Equal(t, model.SaleDelivered, resp.Status)
	assert.Equal(t, model.OutcomeDelivered, resp.DeliveryStatus)
	assert.NotNil(t, f.stored(sale.ID).DeliveredAt)
	assert.Equal(t, []string{model.StockOpDeduct}, f.stock.ops)
}

func TestDeliverTermPaymentAdvancesToPaymentPending(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleDispatched)
	sale.PaymentMethod = &model.PaymentMethod{ID: uuid.New(), Timing: model.TimingTerm}
	sale.PaymentMethodID = &sale.PaymentMethod.ID

	resp, err := f.svc.Deliver(context.Background(), f.org, sale.ID, f.actor, dto.DeliverRequest{Outcome: model.OutcomeDelivered})
	require.NoError(t, err)

	assert.Equal(t, model.SalePaymentPending, resp.Status)
	assert.Equal(t, []string{model.StockOpDeduct}, f.stock.ops)
	require.Len(t, f.repo.history, 2)
	assert.Equal(t, model.SaleDelivered, f.repo.history[1].FromStatus)
	assert.Equal(t, model.SalePaymentPending, f.repo.history[1].ToStatus)
}

func TestDeliverFailedOutcomeReturnsTheSale(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleDispatched)

	resp, err := f.svc.Deliver(context.Background(), f.org, sale.ID, f.actor, dto.DeliverRequest{Outcome: model.OutcomeRecipientAbsent})
	require.NoError(t, err)

	assert.Equal(t, model.SaleReturned, resp.Status)
	assert.Equal(t, model.OutcomeRecipientAbsent, resp.DeliveryStatus)
	require.NotNil(t, resp.ReturnReason)
	assert.Equal(t, model.OutcomeRecipientAbsent, *resp.ReturnReason)

	// Nothing left the stock, so the reservation stays put.
	assert.Empty(t, f.stock.ops)
}

func TestConfirmPaymentAppliesSettlementFee(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SalePaymentPending)
	sale.Installments = 3
	sale.PaymentMethod = &model.PaymentMethod{
		ID:       uuid.New(),
		Category: model.PayCreditCard,
		Timing:   model.TimingInstallments,
		Fees: []model.PaymentMethodFee{{
			TransactionType: "credit_installments",
			PercentageFee:   decimal.RequireFromString("3"),
			FixedFeeCents:   100,
			SettlementDays:  30,
		}},
	}
	sale.PaymentMethodID = &sale.PaymentMethod.ID

	resp, err := f.svc.ConfirmPayment(context.Background(), f.org, sale.ID, f.actor, dto.ConfirmPaymentRequest{})
	require.NoError(t, err)

	assert.Equal(t, model.SalePaymentConfirmed, resp.Status)
	require.NotNil(t, resp.SettlementFeeCents)
	assert.Equal(t, int64(1000), *resp.SettlementFeeCents) // 3% of 30000 + 100
	assert.NotNil(t, resp.SettlementDate)
	assert.NotNil(t, f.stored(sale.ID).PaymentConfirmedAt)
}

func TestConfirmPaymentWithoutFeeScheduleLeavesSettlementEmpty(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleDelivered)

	resp, err := f.svc.ConfirmPayment(context.Background(), f.org, sale.ID, f.actor, dto.ConfirmPaymentRequest{})
	require.NoError(t, err)

	assert.Equal(t, model.SalePaymentConfirmed, resp.Status)
	assert.Nil(t, resp.SettlementFeeCents)
}

func TestCancelBeforeDeliveryReleasesReservation(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SalePendingExpedition)

	resp, err := f.svc.Cancel(context.Background(), f.org, sale.ID, f.actor, dto.CancelSaleRequest{Reason: "cliente desistiu"})
	require.NoError(t, err)

	assert.Equal(t, model.SaleCancelled, resp.Status)
	require.NotNil(t, resp.CancelReason)
	assert.Equal(t, "cliente desistiu", *resp.CancelReason)
	assert.Equal(t, []string{model.StockOpUnreserve}, f.stock.ops)
}

func TestCancelAfterDeliveryRestoresStock(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleDelivered)

	_, err := f.svc.Cancel(context.Background(), f.org, sale.ID, f.actor, dto.CancelSaleRequest{Reason: "produto com defeito"})
	require.NoError(t, err)
	assert.Equal(t, []string{model.StockOpRestore}, f.stock.ops)
}

func TestCancelTwiceFails(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleCancelled)

	_, err := f.svc.Cancel(context.Background(), f.org, sale.ID, f.actor, dto.CancelSaleRequest{Reason: "de novo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "já cancelada")
}

func TestReturnRestoresAndReReserves(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleDelivered)

	resp, err := f.svc.Return(context.Background(), f.org, sale.ID, f.actor, dto.ReturnSaleRequest{Reason: "troca"})
	require.NoError(t, err)

	assert.Equal(t, model.SaleReturned, resp.Status)
	require.NotNil(t, resp.ReturnReason)
	assert.Equal(t, "troca", *resp.ReturnReason)
	assert.NotNil(t, f.stored(sale.ID).ReturnedAt)

	// The goods come back in and stay committed to the sale.
	assert.Equal(t, []string{model.StockOpRestore, model.StockOpReserve}, f.stock.ops)
}

func TestRescheduleResetsToDraft(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleReturned)
	now := sale.CreatedAt
	reason := model.OutcomeRecipientAbsent
	sale.ReturnReason = &reason
	sale.ReturnedAt = &now
	sale.ReturnedBy = &f.actor
	sale.DispatchedAt = &now
	sale.DeliveredAt = &now
	sale.ExpeditionValidatedAt = &now
	sale.DeliveryStatus = model.OutcomeRecipientAbsent

	resp, err := f.svc.Reschedule(context.Background(), f.org, sale.ID, f.actor, dto.RescheduleRequest{
		DeliveryType:  model.DeliveryMotoboy,
		ScheduledDate: strptr("2026-09-02"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.SaleDraft, resp.Status)
	assert.Equal(t, model.DeliveryStatusPending, resp.DeliveryStatus)
	assert.Equal(t, model.DeliveryMotoboy, resp.DeliveryType)
	require.NotNil(t, resp.ScheduledDate)
	assert.Equal(t, "2026-09-02", *resp.ScheduledDate)

	stored := f.stored(sale.ID)
	assert.Nil(t, stored.ExpeditionValidatedAt)
	assert.Nil(t, stored.DispatchedAt)
	assert.Nil(t, stored.DeliveredAt)
	assert.Nil(t, stored.ReturnReason)
	assert.Nil(t, stored.ReturnedAt)
	assert.Nil(t, stored.ReturnedBy)

	// No stock movement: the reservation survived the failed delivery.
	assert.Empty(t, f.stock.ops)
}

func TestRescheduleWithBadDateLeavesSaleUntouched(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleReturned)
	reason := model.OutcomeRecipientAbsent
	sale.ReturnReason = &reason

	_, err := f.svc.Reschedule(context.Background(), f.org, sale.ID, f.actor, dto.RescheduleRequest{
		DeliveryType:  model.DeliveryMotoboy,
		ScheduledDate: strptr("02/09/2026"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduled_date")

	// The failed mutation must not leak: still returned, return marks intact.
	stored := f.stored(sale.ID)
	assert.Equal(t, model.SaleReturned, stored.Status)
	require.NotNil(t, stored.ReturnReason)
	assert.Empty(t, f.repo.history)

	// A well-formed retry goes through.
	resp, err := f.svc.Reschedule(context.Background(), f.org, sale.ID, f.actor, dto.RescheduleRequest{
		DeliveryType:  model.DeliveryMotoboy,
		ScheduledDate: strptr("2026-09-02"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SaleDraft, resp.Status)
}

func TestAttachPaymentProof(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleDelivered)

	err := f.svc.AttachPaymentProof(context.Background(), f.org, sale.ID, "http://localhost:8000/uploads/payment-proofs/abc.jpg")
	require.NoError(t, err)
	require.NotNil(t, sale.PaymentProofURL)
	assert.Contains(t, *sale.PaymentProofURL, "payment-proofs")
}

func TestAttachInvoice(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleDelivered)

	// At least one of the two files is required.
	err := f.svc.AttachInvoice(context.Background(), f.org, sale.ID, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nota fiscal")

	pdf := "http://localhost:8000/uploads/invoices/danfe-123.pdf"
	err = f.svc.AttachInvoice(context.Background(), f.org, sale.ID, &pdf, nil)
	require.NoError(t, err)
	require.NotNil(t, sale.InvoicePDFURL)
	assert.Contains(t, *sale.InvoicePDFURL, "invoices")
	assert.Nil(t, sale.InvoiceXMLURL)

	// The XML can arrive later without clearing the PDF.
	xml := "http://localhost:8000/uploads/invoices/nfe-123.xml"
	err = f.svc.AttachInvoice(context.Background(), f.org, sale.ID, nil, &xml)
	require.NoError(t, err)
	assert.NotNil(t, sale.InvoicePDFURL)
	require.NotNil(t, sale.InvoiceXMLURL)

	resp, err := f.svc.Get(context.Background(), f.org, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, pdf, *resp.InvoicePDFURL)
	assert.Equal(t, xml, *resp.InvoiceXMLURL)
}

func TestSalesAreOrgScoped(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.seedSale(model.SaleDraft)

	_, err := f.svc.Get(context.Background(), uuid.New(), sale.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "não encontrada")
}

// ─── Pricing support ────────────────────────────────────────────────────────

func TestPriceCheckFlagsBelowMinimum(t *testing.T) {
	f := newSaleFixture(t)
	custom := int64(4000)
	leadID := f.lead.ID.String()

	resp, err := f.svc.PriceCheck(context.Background(), f.org, f.actor, dto.PriceCheckRequest{
		ProductID:        f.product.ID.String(),
		KitID:            strptr(f.kit.ID.String()),
		Tier:             "custom",
		Quantity:         1,
		CustomPriceCents: &custom,
		LeadID:           &leadID,
	})
	require.NoError(t, err)

	assert.True(t, resp.BelowMinimum)
	assert.False(t, resp.HasAuthorization)
	assert.Equal(t, int64(12000), resp.TotalCents)

	auth := &model.DiscountAuthorization{
		OrganizationID:  f.org,
		LeadID:          f.lead.ID,
		ProductID:       f.product.ID,
		GrantedByUserID: uuid.New(),
		AuthorizedCents: 12000,
	}
	require.NoError(t, f.repo.CreateAuthorization(context.Background(), auth))

	resp, err = f.svc.PriceCheck(context.Background(), f.org, f.actor, dto.PriceCheckRequest{
		ProductID:        f.product.ID.String(),
		KitID:            strptr(f.kit.ID.String()),
		Tier:             "custom",
		Quantity:         1,
		CustomPriceCents: &custom,
		LeadID:           &leadID,
	})
	require.NoError(t, err)
	assert.True(t, resp.HasAuthorization)
}

func TestGrantAndListAuthorizations(t *testing.T) {
	f := newSaleFixture(t)
	manager := uuid.New()

	granted, err := f.svc.GrantAuthorization(context.Background(), f.org, manager, dto.GrantAuthorizationRequest{
		LeadID:          f.lead.ID.String(),
		ProductID:       f.product.ID.String(),
		AuthorizedCents: 12000,
	})
	require.NoError(t, err)
	assert.Equal(t, manager.String(), granted.GrantedByUserID)
	assert.Nil(t, granted.ConsumedAt)

	open, err := f.svc.ListAuthorizations(context.Background(), f.org, true)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestGrantAuthorizationAlertsManagers(t *testing.T) {
	f := newSaleFixture(t)

	admin := &model.User{ID: uuid.New(), OrganizationID: &f.org, Email: "dono@vendaflow.local", Name: "Dono", Role: model.RoleAdmin, Active: true}
	manager := &model.User{ID: uuid.New(), OrganizationID: &f.org, Email: "gestora@vendaflow.local", Name: "Gestora", Role: model.RoleManager, Active: true}
	f.userRepo.users[admin.ID] = admin
	f.userRepo.users[manager.ID] = manager

	_, err := f.svc.GrantAuthorization(context.Background(), f.org, manager.ID, dto.GrantAuthorizationRequest{
		LeadID:          f.lead.ID.String(),
		ProductID:       f.product.ID.String(),
		AuthorizedCents: 123456,
	})
	require.NoError(t, err)

	require.Len(t, f.mail.sent, 1)
	mail := f.mail.sent[0]
	assert.ElementsMatch(t, []string{admin.Email, manager.Email}, mail.to, "sellers are not alerted")
	assert.Contains(t, mail.subject, "Autorização")
	assert.Contains(t, mail.html, "R$ 1.234,56")
	assert.Contains(t, mail.html, manager.Name)
}

func TestTransactionTypeForFeeSchedule(t *testing.T) {
	debit := &model.PaymentMethod{Category: model.PayDebitCard}
	credit := &model.PaymentMethod{Category: model.PayCreditCard}
	pix := &model.PaymentMethod{Category: model.PayPix}

	assert.Equal(t, "debit", transactionTypeFor(debit, 1))
	assert.Equal(t, "credit_cash", transactionTypeFor(credit, 1))
	assert.Equal(t, "credit_installments", transactionTypeFor(credit, 6))
	assert.Equal(t, "", transactionTypeFor(pix, 1))
}
