package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vendaflow/internal/dto"
	"vendaflow/internal/model"
	"vendaflow/internal/pricing"
	"vendaflow/internal/repository"
)

// ErrBelowMinimum is returned when a line undercuts the kit floor and no
// manager authorization covers it.
var ErrBelowMinimum = errors.New("preço abaixo do mínimo exige autorização de um gestor")

type SaleService interface {
	Create(ctx context.Context, orgID, actorID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, orgID uuid.UUID, filter dto.SaleFilter) (*dto.SaleListResponse, error)

	// Lifecycle transitions. Each validates the source status, stamps the
	// matching timestamp, appends a history entry and applies stock side
	// effects under the soft-fail policy.
	ValidateExpedition(ctx context.Context, orgID, id, actorID uuid.UUID) (*dto.SaleResponse, error)
	Dispatch(ctx context.Context, orgID, id, actorID uuid.UUID, req dto.DispatchRequest) (*dto.SaleResponse, error)
	Deliver(ctx context.Context, orgID, id, actorID uuid.UUID, req dto.DeliverRequest) (*dto.SaleResponse, error)
	ConfirmPayment(ctx context.Context, orgID, id, actorID uuid.UUID, req dto.ConfirmPaymentRequest) (*dto.SaleResponse, error)
	Cancel(ctx context.Context, orgID, id, actorID uuid.UUID, req dto.CancelSaleRequest) (*dto.SaleResponse, error)
	Return(ctx context.Context, orgID, id, actorID uuid.UUID, req dto.ReturnSaleRequest) (*dto.SaleResponse, error)
	Reschedule(ctx context.Context, orgID, id, actorID uuid.UUID, req dto.RescheduleRequest) (*dto.SaleResponse, error)

	AttachPaymentProof(ctx context.Context, orgID, id uuid.UUID, url string) error
	// AttachInvoice stores the fiscal note files (DANFE PDF and/or NF-e XML).
	AttachInvoice(ctx context.Context, orgID, id uuid.UUID, pdfURL, xmlURL *string) error

	PriceCheck(ctx context.Context, orgID, sellerID uuid.UUID, req dto.PriceCheckRequest) (*dto.PriceCheckResponse, error)
	GrantAuthorization(ctx context.Context, orgID, grantedBy uuid.UUID, req dto.GrantAuthorizationRequest) (*dto.AuthorizationResponse, error)
	ListAuthorizations(ctx context.Context, orgID uuid.UUID, openOnly bool) ([]dto.AuthorizationResponse, error)
}

// EmailSender queues an outbound email. Implemented by the worker dispatcher;
// nil disables notifications.
type EmailSender interface {
	EnqueueEmail(ctx context.Context, to []string, subject, html string) error
}

type saleService struct {
	repo        repository.SaleRepository
	leadRepo    repository.LeadRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	stock       StockService
	mail        EmailSender
}

func NewSaleService(
	repo repository.SaleRepository,
	leadRepo repository.LeadRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	stock StockService,
	mail EmailSender,
) SaleService {
	return &saleService{
		repo:        repo,
		leadRepo:    leadRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		stock:       stock,
		mail:        mail,
	}
}

// ── Create ───────────────────────────────────────────────────────────────────

// resolvedLine carries one priced line plus the authorization it consumed.
type resolvedLine struct {
	item            model.SaleItem
	totals          pricing.LineTotals
	authorizationID *uuid.UUID
}

func (s *saleService) Create(ctx context.Context, orgID, actorID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		return nil, errors.New("lead_id inválido")
	}
	if _, err := s.leadRepo.FindByID(ctx, orgID, leadID); err != nil {
		return nil, errors.New("lead não encontrado")
	}

	sellerID := actorID
	if req.SellerUserID != nil {
		sid, err := uuid.Parse(*req.SellerUserID)
		if err != nil {
			return nil, errors.New("seller_user_id inválido")
		}
		sellerID = sid
	}
	sellerPct := decimal.Zero
	if seller, err := s.userRepo.FindByID(ctx, sellerID); err == nil {
		sellerPct = seller.DefaultCommissionPct
	}

	// Price every line before opening the transaction.
	lines := make([]resolvedLine, 0, len(req.Items))
	lineTotals := make([]pricing.LineTotals, 0, len(req.Items))
	for _, item := range req.Items {
		line, err := s.resolveLine(ctx, orgID, leadID, sellerPct, item)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
		lineTotals = append(lineTotals, line.totals)
	}
	totals := pricing.ComputeSale(lineTotals, req.ShippingCostCents)
	if totals.TotalCents < 0 {
		return nil, errors.New("total da venda não pode ser negativo")
	}

	sale := &model.Sale{
		OrganizationID:    orgID,
		LeadID:            leadID,
		SellerUserID:      sellerID,
		CreatedByUserID:   actorID,
		SubtotalCents:     totals.SubtotalCents,
		DiscountCents:     totals.DiscountCents,
		ShippingCostCents: totals.ShippingCostCents,
		TotalCents:        totals.TotalCents,
		Status:            model.SaleDraft,
		DeliveryType:      req.DeliveryType,
		DeliveryStatus:    model.DeliveryStatusPending,
		ScheduledShift:    req.ScheduledShift,
		CarrierName:       req.CarrierName,
		DeliveryNotes:     req.DeliveryNotes,
		Installments:      max(req.Installments, 1),
	}
	if req.ScheduledDate != nil {
		d, err := time.Parse("2006-01-02", *req.ScheduledDate)
		if err != nil {
			return nil, errors.New("scheduled_date inválida")
		}
		sale.ScheduledDate = &d
	}
	if req.CourierUserID != nil {
		cid, err := uuid.Parse(*req.CourierUserID)
		if err != nil {
			return nil, errors.New("courier_user_id inválido")
		}
		sale.CourierUserID = &cid
	}
	if req.PaymentMethodID != nil {
		pmid, err := uuid.Parse(*req.PaymentMethodID)
		if err != nil {
			return nil, errors.New("payment_method_id inválido")
		}
		sale.PaymentMethodID = &pmid
	}
	for _, l := range lines {
		sale.Items = append(sale.Items, l.item)
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		num, err := s.repo.NextSaleNumber(ctx, tx, orgID)
		if err != nil {
			return err
		}
		sale.Number = num

		if err := s.repo.Create(ctx, tx, sale); err != nil {
			return err
		}
		for _, l := range lines {
			if l.authorizationID != nil {
				if err := s.repo.ConsumeAuthorizationTx(tx, *l.authorizationID, sale.ID); err != nil {
					return err
				}
			}
		}
		return s.repo.AppendHistoryTx(tx, &model.SaleStatusHistory{
			SaleID:     sale.ID,
			FromStatus: "",
			ToStatus:   model.SaleDraft,
			ActorID:    actorID,
		})
	})
	if err != nil {
		return nil, err
	}

	// Reserve after commit; failures land in the compensation ledger.
	s.stock.Apply(ctx, model.StockOpReserve, orgID, sale.ID, sale.Items)

	return s.Get(ctx, orgID, sale.ID)
}

// resolveLine prices one request line and enforces the kit minimum floor.
func (s *saleService) resolveLine(ctx context.Context, orgID, leadID uuid.UUID, sellerPct decimal.Decimal, item dto.SaleItemRequest) (*resolvedLine, error) {
	productID, err := uuid.Parse(item.ProductID)
	if err != nil {
		return nil, errors.New("product_id inválido")
	}
	p, err := s.productRepo.FindByID(ctx, orgID, productID)
	if err != nil {
		return nil, fmt.Errorf("produto %s não encontrado", item.ProductID)
	}
	if !p.Active {
		return nil, fmt.Errorf("produto %s está inativo", p.Name)
	}

	var kit *model.ProductPriceKit
	if item.KitID != nil {
		kitID, err := uuid.Parse(*item.KitID)
		if err != nil {
			return nil, errors.New("kit_id inválido")
		}
		kit, err = s.productRepo.FindKit(ctx, orgID, kitID)
		if err != nil || kit.ProductID != p.ID {
			return nil, errors.New("kit não pertence ao produto")
		}
	}
	if p.Category != model.CategoryManipulado && p.HasKits() && kit == nil {
		return nil, fmt.Errorf("produto %s exige a escolha de um kit", p.Name)
	}
	if p.Category == model.CategoryManipulado && item.RequisitionNumber == nil {
		return nil, errors.New("item manipulado exige número de requisição")
	}

	sel := pricing.Selection{
		Tier:             pricing.Tier(item.Tier),
		CustomPriceCents: item.CustomPriceCents,
		Quantity:         item.Quantity,
	}
	if item.CustomPriceCents != nil {
		sel.UnitPriceCents = *item.CustomPriceCents
	}
	if sel.Tier == "" {
		sel.Tier = pricing.TierRegular
	}

	res, err := pricing.ModelFor(p, kit).Resolve(sel, sellerPct)
	if err != nil {
		return nil, err
	}

	totals := pricing.ComputeLine(res, discountFromRequest(item.DiscountType, item.DiscountValue))

	var customUnit *int64
	if sel.Tier == pricing.TierCustom {
		customUnit = item.CustomPriceCents
	}

	// Floor check. Manual pricing is exempt; kits without a minimum have no floor.
	var authID *uuid.UUID
	if p.Category != model.CategoryManipulado && pricing.BelowMinimum(kit, customUnit, totals) {
		auth, err := s.findCoveringAuthorization(ctx, orgID, leadID, productID, item.AuthorizationID, totals.TotalCents)
		if err != nil {
			return nil, err
		}
		authID = &auth.ID
	}

	var kitID *uuid.UUID
	if kit != nil {
		kitID = &kit.ID
	}
	return &resolvedLine{
		item: model.SaleItem{
			ProductID:         p.ID,
			KitID:             kitID,
			ProductName:       p.Name,
			Quantity:          res.Quantity,
			UnitPriceCents:    res.UnitPriceCents,
			DiscountCents:     totals.DiscountCents,
			TotalCents:        totals.TotalCents,
			RequisitionNumber: item.RequisitionNumber,
			AuthorizationID:   authID,
		},
		totals:          totals,
		authorizationID: authID,
	}, nil
}

func (s *saleService) findCoveringAuthorization(ctx context.Context, orgID, leadID, productID uuid.UUID, explicitID *string, totalCents int64) (*model.DiscountAuthorization, error) {
	var auth *model.DiscountAuthorization
	var err error
	if explicitID != nil {
		aid, perr := uuid.Parse(*explicitID)
		if perr != nil {
			return nil, errors.New("authorization_id inválido")
		}
		auth, err = s.repo.FindAuthorization(ctx, orgID, aid)
	} else {
		auth, err = s.repo.FindOpenAuthorization(ctx, orgID, leadID, productID)
	}
	if err != nil {
		return nil, ErrBelowMinimum
	}
	if auth.ConsumedAt != nil {
		return nil, errors.New("autorização já utilizada")
	}
	if auth.LeadID != leadID || auth.ProductID != productID {
		return nil, errors.New("autorização não corresponde ao lead/produto")
	}
	if totalCents < auth.AuthorizedCents {
		return nil, ErrBelowMinimum
	}
	return auth, nil
}

func discountFromRequest(dtype *string, dvalue *decimal.Decimal) pricing.Discount {
	if dtype == nil || dvalue == nil {
		return pricing.Discount{}
	}
	switch pricing.DiscountType(*dtype) {
	case pricing.DiscountPercentage:
		return pricing.Discount{Type: pricing.DiscountPercentage, Percentage: *dvalue}
	case pricing.DiscountFixed:
		return pricing.Discount{Type: pricing.DiscountFixed, FixedCents: dvalue.Round(0).IntPart()}
	default:
		return pricing.Discount{}
	}
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *saleService) Get(ctx context.Context, orgID, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, errors.New("venda não encontrada")
	}
	resp := saleToResponse(sale)
	return &resp, nil
}

func (s *saleService) List(ctx context.Context, orgID uuid.UUID, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	sales, total, err := s.repo.List(ctx, orgID, repository.SaleFilter{
		Status:         filter.Status,
		DeliveryStatus: filter.DeliveryStatus,
		SellerUserID:   filter.SellerUserID,
		CourierUserID:  filter.CourierUserID,
		LeadID:         filter.LeadID,
		Date:           filter.ScheduledDate,
		Page:           filter.Page,
		Limit:          filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Transitions ──────────────────────────────────────────────────────────────

// transition loads the sale, verifies the source status, lets mutate adjust
// a copy of the row, then saves the copy together with a history entry.
func (s *saleService) transition(
	ctx context.Context,
	orgID, id, actorID uuid.UUID,
	from []string,
	to string,
	note *string,
	mutate func(sale *model.Sale) error,
) (*model.Sale, error) {
	sale, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, errors.New("venda não encontrada")
	}

	allowed := false
	for _, f := range from {
		if sale.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("transição inválida: %s → %s", sale.Status, to)
	}

	// Mutate a copy: if the mutate callback rejects the transition the
	// loaded aggregate must stay exactly as the repository returned it.
	updated := *sale
	updated.Status = to
	if mutate != nil {
		if err := mutate(&updated); err != nil {
			return nil, err
		}
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.SaveTx(tx, &updated); err != nil {
			return err
		}
		return s.repo.AppendHistoryTx(tx, &model.SaleStatusHistory{
			SaleID:     updated.ID,
			FromStatus: sale.Status,
			ToStatus:   to,
			ActorID:    actorID,
			Note:       note,
		})
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *saleService) ValidateExpedition(ctx context.Context, orgID, id, actorID uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.transition(ctx, orgID, id, actorID,
		[]string{model.SaleDraft}, model.SalePendingExpedition, nil,
		func(sale *model.Sale) error {
			now := time.Now()
			sale.ExpeditionValidatedAt = &now
			sale.ExpeditionValidatedBy = &actorID
			return nil
		})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orgID, sale.ID)
}

func (s *saleService) Dispatch(ctx context.Context, orgID, id, actorID uuid.UUID, req dto.DispatchRequest) (*dto.SaleResponse, error) {
	sale, err := s.transition(ctx, orgID, id, actorID,
		[]string{model.SalePendingExpedition}, model.SaleDispatched, req.Note,
		func(sale *model.Sale) error {
			now := time.Now()
			sale.DispatchedAt = &now
			if req.CourierUserID != nil {
				cid, err := uuid.Parse(*req.CourierUserID)
				if err != nil {
					return errors.New("courier_user_id inválido")
				}
				sale.CourierUserID = &cid
			}
			if sale.DeliveryType == model.DeliveryMotoboy && sale.CourierUserID == nil {
				return errors.New("entrega por motoboy exige entregador")
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orgID, sale.ID)
}

func (s *saleService) Deliver(ctx context.Context, orgID, id, actorID uuid.UUID, req dto.DeliverRequest) (*dto.SaleResponse, error) {
	valid := false
	for _, o := range model.DeliveryOutcomes {
		if o == req.Outcome {
			valid = true
			break
		}
	}
	if !valid {
		return nil, errors.New("resultado de entrega inválido")
	}

	if req.Outcome == model.OutcomeDelivered {
		sale, err := s.transition(ctx, orgID, id, actorID,
			[]string{model.SaleDispatched}, model.SaleDelivered, req.Note,
			func(sale *model.Sale) error {
				now := time.Now()
				sale.DeliveredAt = &now
				sale.DeliveryStatus = model.OutcomeDelivered
				return nil
			})
		if err != nil {
			return nil, err
		}
		s.stock.Apply(ctx, model.StockOpDeduct, orgID, sale.ID, sale.Items)

		// Term payments wait for confirmation; cash was collected at the door.
		if full, err := s.repo.FindByID(ctx, orgID, sale.ID); err == nil &&
			full.PaymentMethod != nil && full.PaymentMethod.Timing != model.TimingCash {
			if _, err := s.transition(ctx, orgID, id, actorID,
				[]string{model.SaleDelivered}, model.SalePaymentPending, nil, nil); err != nil {
				return nil, err
			}
		}
		return s.Get(ctx, orgID, sale.ID)
	}

	// Failed delivery: the goods come back and the sale waits for a
	// reschedule. The reservation is kept — nothing left the stock.
	outcome := req.Outcome
	sale, err := s.transition(ctx, orgID, id, actorID,
		[]string{model.SaleDispatched}, model.SaleReturned, req.Note,
		func(sale *model.Sale) error {
			now := time.Now()
			sale.DeliveryStatus = outcome
			sale.ReturnReason = &outcome
			sale.ReturnNotes = req.Note
			sale.ReturnedAt = &now
			sale.ReturnedBy = &actorID
			return nil
		})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orgID, sale.ID)
}

func (s *saleService) ConfirmPayment(ctx context.Context, orgID, id, actorID uuid.UUID, req dto.ConfirmPaymentRequest) (*dto.SaleResponse, error) {
	sale, err := s.transition(ctx, orgID, id, actorID,
		[]string{model.SaleDelivered, model.SalePaymentPending}, model.SalePaymentConfirmed, req.Note,
		func(sale *model.Sale) error {
			now := time.Now()
			sale.PaymentConfirmedAt = &now
			sale.PaymentConfirmedBy = &actorID
			if req.PaymentMethodID != nil {
				pmid, err := uuid.Parse(*req.PaymentMethodID)
				if err != nil {
					return errors.New("payment_method_id inválido")
				}
				sale.PaymentMethodID = &pmid
			}
			if req.Installments != nil {
				sale.Installments = *req.Installments
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	// Settlement from the method's fee schedule, outside the transition tx:
	// a missing schedule just leaves the settlement fields empty.
	s.applySettlement(ctx, orgID, sale)

	return s.Get(ctx, orgID, sale.ID)
}

// applySettlement computes fee and settlement date from the payment method's
// fee schedule and saves them on the sale.
func (s *saleService) applySettlement(ctx context.Context, orgID uuid.UUID, sale *model.Sale) {
	if sale.PaymentMethodID == nil {
		return
	}
	full, err := s.repo.FindByID(ctx, orgID, sale.ID)
	if err != nil || full.PaymentMethod == nil {
		return
	}
	pm := full.PaymentMethod

	fee := pm.FeeFor(transactionTypeFor(pm, full.Installments))
	if fee == nil {
		return
	}

	feeCents := fee.FeeCents(full.TotalCents)
	settleAt := time.Now().AddDate(0, 0, fee.SettlementDays)
	full.SettlementFeeCents = &feeCents
	full.SettlementDate = &settleAt

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.SaveTx(tx, full)
	}); err == nil {
		*sale = *full
	}
}

// transactionTypeFor maps a payment method + installments to a fee schedule row.
func transactionTypeFor(pm *model.PaymentMethod, installments int) string {
	switch pm.Category {
	case model.PayDebitCard:
		return "debit"
	case model.PayCreditCard:
		if installments > 1 {
			return "credit_installments"
		}
		return "credit_cash"
	default:
		return ""
	}
}

func (s *saleService) Cancel(ctx context.Context, orgID, id, actorID uuid.UUID, req dto.CancelSaleRequest) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, errors.New("venda não encontrada")
	}
	if sale.Status == model.SaleCancelled {
		return nil, errors.New("venda já cancelada")
	}

	// Stock effect depends on where the sale stopped: after delivery the
	// goods were deducted, so they come back in; before delivery only the
	// reservation is released.
	wasDeducted := sale.Status == model.SaleDelivered ||
		sale.Status == model.SalePaymentPending ||
		sale.Status == model.SalePaymentConfirmed

	updated, err := s.transition(ctx, orgID, id, actorID,
		[]string{
			model.SaleDraft, model.SalePendingExpedition, model.SaleDispatched,
			model.SaleDelivered, model.SalePaymentPending, model.SalePaymentConfirmed,
			model.SaleReturned,
		},
		model.SaleCancelled, nil,
		func(sale *model.Sale) error {
			sale.CancelReason = &req.Reason
			return nil
		})
	if err != nil {
		return nil, err
	}

	if wasDeducted {
		s.stock.Apply(ctx, model.StockOpRestore, orgID, updated.ID, updated.Items)
	} else {
		s.stock.Apply(ctx, model.StockOpUnreserve, orgID, updated.ID, updated.Items)
	}
	return s.Get(ctx, orgID, updated.ID)
}

func (s *saleService) Return(ctx context.Context, orgID, id, actorID uuid.UUID, req dto.ReturnSaleRequest) (*dto.SaleResponse, error) {
	sale, err := s.transition(ctx, orgID, id, actorID,
		[]string{model.SaleDelivered, model.SalePaymentPending, model.SalePaymentConfirmed},
		model.SaleReturned, req.Notes,
		func(sale *model.Sale) error {
			now := time.Now()
			sale.ReturnReason = &req.Reason
			sale.ReturnNotes = req.Notes
			sale.ReturnedAt = &now
			sale.ReturnedBy = &actorID
			return nil
		})
	if err != nil {
		return nil, err
	}

	// The goods physically return: put them back in stock and hold them
	// reserved again so a reschedule finds them committed.
	s.stock.Apply(ctx, model.StockOpRestore, orgID, sale.ID, sale.Items)
	s.stock.Apply(ctx, model.StockOpReserve, orgID, sale.ID, sale.Items)

	return s.Get(ctx, orgID, sale.ID)
}

func (s *saleService) Reschedule(ctx context.Context, orgID, id, actorID uuid.UUID, req dto.RescheduleRequest) (*dto.SaleResponse, error) {
	sale, err := s.transition(ctx, orgID, id, actorID,
		[]string{model.SaleReturned}, model.SaleDraft, req.Note,
		func(sale *model.Sale) error {
			// Back to square one: clear every dispatch, delivery and return mark.
			sale.DeliveryStatus = model.DeliveryStatusPending
			sale.ExpeditionValidatedAt = nil
			sale.ExpeditionValidatedBy = nil
			sale.DispatchedAt = nil
			sale.DeliveredAt = nil
			sale.ReturnReason = nil
			sale.ReturnNotes = nil
			sale.ReturnedAt = nil
			sale.ReturnedBy = nil

			sale.DeliveryType = req.DeliveryType
			sale.ScheduledShift = req.ScheduledShift
			sale.CarrierName = req.CarrierName
			sale.ScheduledDate = nil
			if req.ScheduledDate != nil {
				d, err := time.Parse("2006-01-02", *req.ScheduledDate)
				if err != nil {
					return errors.New("scheduled_date inválida")
				}
				sale.ScheduledDate = &d
			}
			sale.CourierUserID = nil
			if req.CourierUserID != nil {
				cid, err := uuid.Parse(*req.CourierUserID)
				if err != nil {
					return errors.New("courier_user_id inválido")
				}
				sale.CourierUserID = &cid
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orgID, sale.ID)
}

func (s *saleService) AttachPaymentProof(ctx context.Context, orgID, id uuid.UUID, url string) error {
	sale, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return errors.New("venda não encontrada")
	}
	sale.PaymentProofURL = &url
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.SaveTx(tx, sale)
	})
}

func (s *saleService) AttachInvoice(ctx context.Context, orgID, id uuid.UUID, pdfURL, xmlURL *string) error {
	if pdfURL == nil && xmlURL == nil {
		return errors.New("nota fiscal exige ao menos um arquivo (PDF ou XML)")
	}
	sale, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return errors.New("venda não encontrada")
	}
	if pdfURL != nil {
		sale.InvoicePDFURL = pdfURL
	}
	if xmlURL != nil {
		sale.InvoiceXMLURL = xmlURL
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.SaveTx(tx, sale)
	})
}

// ── Pricing support ──────────────────────────────────────────────────────────

func (s *saleService) PriceCheck(ctx context.Context, orgID, sellerID uuid.UUID, req dto.PriceCheckRequest) (*dto.PriceCheckResponse, error) {
	item := dto.SaleItemRequest{
		ProductID:        req.ProductID,
		KitID:            req.KitID,
		Tier:             req.Tier,
		Quantity:         req.Quantity,
		CustomPriceCents: req.CustomPriceCents,
		DiscountType:     req.DiscountType,
		DiscountValue:    req.DiscountValue,
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, errors.New("product_id inválido")
	}
	p, err := s.productRepo.FindByID(ctx, orgID, productID)
	if err != nil {
		return nil, errors.New("produto não encontrado")
	}

	var kit *model.ProductPriceKit
	if req.KitID != nil {
		kitID, err := uuid.Parse(*req.KitID)
		if err != nil {
			return nil, errors.New("kit_id inválido")
		}
		kit, err = s.productRepo.FindKit(ctx, orgID, kitID)
		if err != nil {
			return nil, errors.New("kit não encontrado")
		}
	}

	sellerPct := decimal.Zero
	if seller, err := s.userRepo.FindByID(ctx, sellerID); err == nil {
		sellerPct = seller.DefaultCommissionPct
	}

	sel := pricing.Selection{
		Tier:             pricing.Tier(item.Tier),
		CustomPriceCents: item.CustomPriceCents,
		Quantity:         item.Quantity,
	}
	if item.CustomPriceCents != nil {
		sel.UnitPriceCents = *item.CustomPriceCents
	}
	if sel.Tier == "" {
		sel.Tier = pricing.TierRegular
	}

	res, err := pricing.ModelFor(p, kit).Resolve(sel, sellerPct)
	if err != nil {
		return nil, err
	}
	totals := pricing.ComputeLine(res, discountFromRequest(item.DiscountType, item.DiscountValue))

	var customUnit *int64
	if sel.Tier == pricing.TierCustom {
		customUnit = item.CustomPriceCents
	}
	below := p.Category != model.CategoryManipulado && pricing.BelowMinimum(kit, customUnit, totals)

	hasAuth := false
	if below && req.LeadID != nil {
		if leadID, err := uuid.Parse(*req.LeadID); err == nil {
			if _, err := s.repo.FindOpenAuthorization(ctx, orgID, leadID, productID); err == nil {
				hasAuth = true
			}
		}
	}

	return &dto.PriceCheckResponse{
		UnitPriceCents:     res.UnitPriceCents,
		Quantity:           res.Quantity,
		SubtotalCents:      totals.SubtotalCents,
		DiscountCents:      totals.DiscountCents,
		TotalCents:         totals.TotalCents,
		CommissionPct:      res.CommissionPct,
		IsCustomCommission: res.IsCustomCommission,
		BelowMinimum:       below,
		HasAuthorization:   hasAuth,
	}, nil
}

func (s *saleService) GrantAuthorization(ctx context.Context, orgID, grantedBy uuid.UUID, req dto.GrantAuthorizationRequest) (*dto.AuthorizationResponse, error) {
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		return nil, errors.New("lead_id inválido")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, errors.New("product_id inválido")
	}

	auth := &model.DiscountAuthorization{
		OrganizationID:  orgID,
		LeadID:          leadID,
		ProductID:       productID,
		GrantedByUserID: grantedBy,
		AuthorizedCents: req.AuthorizedCents,
	}
	if err := s.repo.CreateAuthorization(ctx, auth); err != nil {
		return nil, err
	}
	s.notifyAuthorizationGranted(ctx, orgID, auth)
	resp := authorizationToResponse(auth)
	return &resp, nil
}

// notifyAuthorizationGranted emails the org's admins and managers about a new
// below-minimum grant. Best effort: a failure only logs.
func (s *saleService) notifyAuthorizationGranted(ctx context.Context, orgID uuid.UUID, auth *model.DiscountAuthorization) {
	if s.mail == nil {
		return
	}
	users, err := s.userRepo.List(ctx, orgID, false)
	if err != nil {
		log.Warn().Err(err).Msg("sale: could not list recipients for authorization alert")
		return
	}
	var to []string
	for _, u := range users {
		if u.Role == model.RoleAdmin || u.Role == model.RoleManager {
			to = append(to, u.Email)
		}
	}
	if len(to) == 0 {
		return
	}

	granter := auth.GrantedByUserID.String()
	if u, err := s.userRepo.FindByID(ctx, auth.GrantedByUserID); err == nil {
		granter = u.Name
	}
	html := fmt.Sprintf(
		"<p>Uma autorização de venda abaixo do preço mínimo foi concedida.</p>"+
			"<ul><li>Valor autorizado: %s</li><li>Concedida por: %s</li>"+
			"<li>Lead: %s</li><li>Produto: %s</li></ul>",
		pricing.FormatBRL(auth.AuthorizedCents), granter, auth.LeadID, auth.ProductID)

	if err := s.mail.EnqueueEmail(ctx, to, "Autorização de desconto concedida", html); err != nil {
		log.Warn().Err(err).Msg("sale: failed to enqueue authorization alert")
	}
}

func (s *saleService) ListAuthorizations(ctx context.Context, orgID uuid.UUID, openOnly bool) ([]dto.AuthorizationResponse, error) {
	auths, err := s.repo.ListAuthorizations(ctx, orgID, openOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AuthorizationResponse, 0, len(auths))
	for i := range auths {
		out = append(out, authorizationToResponse(&auths[i]))
	}
	return out, nil
}

// ── mapping ──────────────────────────────────────────────────────────────────

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format("2006-01-02")
	return &v
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}

func saleToResponse(s *model.Sale) dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ID:                it.ID.String(),
			ProductID:         it.ProductID.String(),
			KitID:             uuidPtrString(it.KitID),
			ProductName:       it.ProductName,
			Quantity:          it.Quantity,
			UnitPriceCents:    it.UnitPriceCents,
			DiscountCents:     it.DiscountCents,
			TotalCents:        it.TotalCents,
			RequisitionNumber: it.RequisitionNumber,
		})
	}

	history := make([]dto.StatusHistoryResponse, 0, len(s.StatusHistory))
	for _, h := range s.StatusHistory {
		history = append(history, dto.StatusHistoryResponse{
			FromStatus: h.FromStatus,
			ToStatus:   h.ToStatus,
			ActorID:    h.ActorID.String(),
			Note:       h.Note,
			CreatedAt:  h.CreatedAt.Format(time.RFC3339),
		})
	}

	resp := dto.SaleResponse{
		ID:                 s.ID.String(),
		Number:             s.Number,
		LeadID:             s.LeadID.String(),
		SellerUserID:       s.SellerUserID.String(),
		Status:             s.Status,
		SubtotalCents:      s.SubtotalCents,
		DiscountCents:      s.DiscountCents,
		ShippingCostCents:  s.ShippingCostCents,
		TotalCents:         s.TotalCents,
		DeliveryType:       s.DeliveryType,
		DeliveryStatus:     s.DeliveryStatus,
		ScheduledDate:      formatDatePtr(s.ScheduledDate),
		ScheduledShift:     s.ScheduledShift,
		CourierUserID:      uuidPtrString(s.CourierUserID),
		CarrierName:        s.CarrierName,
		DeliveryNotes:      s.DeliveryNotes,
		PaymentMethodID:    uuidPtrString(s.PaymentMethodID),
		Installments:       s.Installments,
		PaymentProofURL:    s.PaymentProofURL,
		InvoicePDFURL:      s.InvoicePDFURL,
		InvoiceXMLURL:      s.InvoiceXMLURL,
		SettlementFeeCents: s.SettlementFeeCents,
		SettlementDate:     formatDatePtr(s.SettlementDate),
		ReturnReason:       s.ReturnReason,
		CancelReason:       s.CancelReason,
		Items:              items,
		StatusHistory:      history,
		CreatedAt:          s.CreatedAt.Format(time.RFC3339),
	}
	if s.Lead != nil {
		resp.LeadName = s.Lead.Name
	}
	return resp
}

func authorizationToResponse(a *model.DiscountAuthorization) dto.AuthorizationResponse {
	return dto.AuthorizationResponse{
		ID:              a.ID.String(),
		LeadID:          a.LeadID.String(),
		ProductID:       a.ProductID.String(),
		GrantedByUserID: a.GrantedByUserID.String(),
		AuthorizedCents: a.AuthorizedCents,
		ConsumedAt:      formatTimePtr(a.ConsumedAt),
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
	}
}
