package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"vendaflow/internal/dto"
	"vendaflow/internal/model"
	"vendaflow/internal/pricing"
	"vendaflow/internal/repository"
)

type ProductService interface {
	Create(ctx context.Context, orgID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, orgID uuid.UUID, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, orgID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	SetActive(ctx context.Context, orgID, id uuid.UUID, active bool) error
	AdjustStock(ctx context.Context, orgID, id uuid.UUID, req dto.AdjustStockRequest) error

	// Disclosure returns the seller's progressive view of a product's kits for
	// one lead: only the cheapest-per-position non-rejected kit is offered.
	Disclosure(ctx context.Context, orgID, productID, leadID uuid.UUID) (*dto.DisclosureResponse, error)
	RejectKit(ctx context.Context, orgID, productID uuid.UUID, userID uuid.UUID, req dto.RejectKitRequest) (*dto.DisclosureResponse, error)
	RevealTier(ctx context.Context, orgID, productID uuid.UUID, req dto.RevealTierRequest) (*dto.DisclosureResponse, error)
}

type productService struct {
	repo          repository.ProductRepository
	rejectionRepo repository.KitRejectionRepository
	stock         StockService
	sessions      DisclosureSessionStore
}

func NewProductService(
	repo repository.ProductRepository,
	rejectionRepo repository.KitRejectionRepository,
	stock StockService,
	sessions DisclosureSessionStore,
) ProductService {
	return &productService{repo: repo, rejectionRepo: rejectionRepo, stock: stock, sessions: sessions}
}

func (s *productService) Create(ctx context.Context, orgID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	trackStock := true
	if req.TrackStock != nil {
		trackStock = *req.TrackStock
	}

	p := &model.Product{
		OrganizationID:   orgID,
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		Active:           true,
		Featured:         req.Featured,
		TrackStock:       trackStock,
		StockActual:      req.StockActual,
		StockMinimum:     req.StockMinimum,
		LegacyPriceCents: req.LegacyPriceCents,
	}
	if err := applyCrossSells(p, req.CrossSell1ID, req.CrossSell2ID); err != nil {
		return nil, err
	}
	p.Kits = kitsFromRequest(req.Kits)
	for _, q := range req.KeyQuestions {
		p.KeyQuestions = append(p.KeyQuestions, model.KeyQuestion{Question: q.Question, Position: q.Position})
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, orgID, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, errors.New("produto não encontrado")
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, orgID uuid.UUID, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.List(ctx, orgID, repository.ProductFilter{
		Search:   filter.Search,
		Category: filter.Category,
		Featured: filter.Featured,
		Active:   filter.Active,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) Update(ctx context.Context, orgID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, errors.New("produto não encontrado")
	}

	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Category != "" {
		p.Category = req.Category
	}
	p.Description = req.Description
	p.Featured = req.Featured
	if req.TrackStock != nil {
		p.TrackStock = *req.TrackStock
	}
	p.StockMinimum = req.StockMinimum
	p.LegacyPriceCents = req.LegacyPriceCents
	if err := applyCrossSells(p, req.CrossSell1ID, req.CrossSell2ID); err != nil {
		return nil, err
	}

	// Save scalar fields first, then swap the kit set atomically.
	kits := p.Kits
	p.Kits = nil
	p.KeyQuestions = nil
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if req.Kits != nil {
		if err := s.repo.ReplaceKits(ctx, p.ID, kitsFromRequest(req.Kits)); err != nil {
			return nil, err
		}
	} else {
		p.Kits = kits
	}

	fresh, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := productToResponse(fresh)
	return &resp, nil
}

func (s *productService) SetActive(ctx context.Context, orgID, id uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, orgID, id, active)
}

func (s *productService) AdjustStock(ctx context.Context, orgID, id uuid.UUID, req dto.AdjustStockRequest) error {
	return s.stock.AdjustManual(ctx, orgID, id, req.Delta, req.Reason)
}

// ── Progressive disclosure ───────────────────────────────────────────────────

func (s *productService) Disclosure(ctx context.Context, orgID, productID, leadID uuid.UUID) (*dto.DisclosureResponse, error) {
	d, p, err := s.buildDisclosure(ctx, orgID, productID, leadID)
	if err != nil {
		return nil, err
	}
	return disclosureToResponse(d, p), nil
}

func (s *productService) RejectKit(ctx context.Context, orgID, productID uuid.UUID, userID uuid.UUID, req dto.RejectKitRequest) (*dto.DisclosureResponse, error) {
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		return nil, errors.New("lead_id inválido")
	}
	kitID, err := uuid.Parse(req.KitID)
	if err != nil {
		return nil, errors.New("kit_id inválido")
	}

	d, p, err := s.buildDisclosure(ctx, orgID, productID, leadID)
	if err != nil {
		return nil, err
	}

	if err := d.Reject(kitID); err != nil {
		return nil, err
	}

	// Snapshot the regular price at rejection time for later analysis.
	var priceAt int64
	var quantity int
	for i := range p.Kits {
		if p.Kits[i].ID == kitID {
			quantity = p.Kits[i].Quantity
			if p.Kits[i].RegularPriceCents != nil {
				priceAt = *p.Kits[i].RegularPriceCents
			}
		}
	}

	if err := s.rejectionRepo.Create(ctx, &model.KitRejection{
		OrganizationID:        orgID,
		LeadID:                leadID,
		ProductID:             productID,
		KitID:                 kitID,
		Reason:                req.Reason,
		Quantity:              quantity,
		PriceCentsAtRejection: priceAt,
		RejectedByUserID:      userID,
	}); err != nil {
		return nil, err
	}

	return disclosureToResponse(d, p), nil
}

func (s *productService) RevealTier(ctx context.Context, orgID, productID uuid.UUID, req dto.RevealTierRequest) (*dto.DisclosureResponse, error) {
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		return nil, errors.New("lead_id inválido")
	}
	kitID, err := uuid.Parse(req.KitID)
	if err != nil {
		return nil, errors.New("kit_id inválido")
	}

	d, p, err := s.buildDisclosure(ctx, orgID, productID, leadID)
	if err != nil {
		return nil, err
	}

	d.RevealTier(kitID, pricing.Tier(req.Tier))
	if s.sessions != nil {
		if err := s.sessions.Save(ctx, orgID, productID, leadID, d.RevealedTiers()); err != nil {
			return nil, err
		}
	}

	return disclosureToResponse(d, p), nil
}

func (s *productService) buildDisclosure(ctx context.Context, orgID, productID, leadID uuid.UUID) (*pricing.Disclosure, *model.Product, error) {
	p, err := s.repo.FindByID(ctx, orgID, productID)
	if err != nil {
		return nil, nil, errors.New("produto não encontrado")
	}
	if !p.HasKits() {
		return nil, nil, errors.New("produto não possui kits")
	}

	rejections, err := s.rejectionRepo.ListByLeadProduct(ctx, orgID, leadID, productID)
	if err != nil {
		return nil, nil, err
	}

	d := pricing.NewDisclosure(p.Kits, rejections)
	if s.sessions != nil {
		if reveals, err := s.sessions.Load(ctx, orgID, productID, leadID); err == nil && len(reveals) > 0 {
			d.RestoreReveals(reveals)
		}
	}
	return d, p, nil
}

// ── mapping ──────────────────────────────────────────────────────────────────

func applyCrossSells(p *model.Product, cs1, cs2 *string) error {
	p.CrossSell1ID, p.CrossSell2ID = nil, nil
	if cs1 != nil {
		id, err := uuid.Parse(*cs1)
		if err != nil {
			return errors.New("cross_sell_1_id inválido")
		}
		p.CrossSell1ID = &id
	}
	if cs2 != nil {
		id, err := uuid.Parse(*cs2)
		if err != nil {
			return errors.New("cross_sell_2_id inválido")
		}
		p.CrossSell2ID = &id
	}
	return nil
}

func kitsFromRequest(reqs []dto.KitRequest) []model.ProductPriceKit {
	kits := make([]model.ProductPriceKit, 0, len(reqs))
	for _, k := range reqs {
		kits = append(kits, model.ProductPriceKit{
			Quantity:                         k.Quantity,
			Position:                         k.Position,
			RegularPriceCents:                k.Regular.PriceCents,
			PromotionalPriceCents:            k.Promotional.PriceCents,
			Promotional2PriceCents:           k.Promotional2.PriceCents,
			MinimumPriceCents:                k.Minimum.PriceCents,
			RegularUseDefaultCommission:      k.Regular.UseDefaultCommission,
			RegularCommissionPct:             k.Regular.CommissionPct,
			PromotionalUseDefaultCommission:  k.Promotional.UseDefaultCommission,
			PromotionalCommissionPct:         k.Promotional.CommissionPct,
			Promotional2UseDefaultCommission: k.Promotional2.UseDefaultCommission,
			Promotional2CommissionPct:        k.Promotional2.CommissionPct,
			MinimumUseDefaultCommission:      k.Minimum.UseDefaultCommission,
			MinimumCommissionPct:             k.Minimum.CommissionPct,
		})
	}
	return kits
}

func kitToResponse(k *model.ProductPriceKit, revealed func(tier pricing.Tier) bool) dto.KitResponse {
	resp := dto.KitResponse{
		ID:       k.ID.String(),
		Quantity: k.Quantity,
		Position: k.Position,
		Regular: dto.KitTierResponse{
			PriceCents:           k.RegularPriceCents,
			UseDefaultCommission: k.RegularUseDefaultCommission,
			CommissionPct:        k.RegularCommissionPct,
		},
		Promotional: dto.KitTierResponse{
			PriceCents:           k.PromotionalPriceCents,
			UseDefaultCommission: k.PromotionalUseDefaultCommission,
			CommissionPct:        k.PromotionalCommissionPct,
		},
	}
	// Hidden tiers only ship to the client after an explicit reveal.
	if revealed == nil || revealed(pricing.TierPromotional2) {
		resp.Promotional2 = dto.KitTierResponse{
			PriceCents:           k.Promotional2PriceCents,
			UseDefaultCommission: k.Promotional2UseDefaultCommission,
			CommissionPct:        k.Promotional2CommissionPct,
		}
	}
	if revealed == nil || revealed(pricing.TierMinimum) {
		resp.Minimum = dto.KitTierResponse{
			PriceCents:           k.MinimumPriceCents,
			UseDefaultCommission: k.MinimumUseDefaultCommission,
			CommissionPct:        k.MinimumCommissionPct,
		}
	}
	return resp
}

func productToResponse(p *model.Product) dto.ProductResponse {
	var cs1, cs2 *string
	if p.CrossSell1ID != nil {
		v := p.CrossSell1ID.String()
		cs1 = &v
	}
	if p.CrossSell2ID != nil {
		v := p.CrossSell2ID.String()
		cs2 = &v
	}

	kits := make([]dto.KitResponse, 0, len(p.Kits))
	for i := range p.Kits {
		kits = append(kits, kitToResponse(&p.Kits[i], nil))
	}
	questions := make([]dto.KeyQuestionResponse, 0, len(p.KeyQuestions))
	for _, q := range p.KeyQuestions {
		questions = append(questions, dto.KeyQuestionResponse{
			ID:       q.ID.String(),
			Question: q.Question,
			Position: q.Position,
		})
	}

	return dto.ProductResponse{
		ID:               p.ID.String(),
		Name:             p.Name,
		Description:      p.Description,
		Category:         p.Category,
		Active:           p.Active,
		Featured:         p.Featured,
		TrackStock:       p.TrackStock,
		StockActual:      p.StockActual,
		StockReserved:    p.StockReserved,
		StockAvailable:   p.StockActual - p.StockReserved,
		StockMinimum:     p.StockMinimum,
		LegacyPriceCents: p.LegacyPriceCents,
		CrossSell1ID:     cs1,
		CrossSell2ID:     cs2,
		Kits:             kits,
		KeyQuestions:     questions,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
	}
}

func disclosureToResponse(d *pricing.Disclosure, p *model.Product) *dto.DisclosureResponse {
	resp := &dto.DisclosureResponse{
		AllKitsRevealed: d.AllKitsRevealed(),
		RemainingKits:   d.RemainingKits(),
	}
	for kitID, tiers := range d.RevealedTiers() {
		for _, t := range tiers {
			resp.RevealedTierKeys = append(resp.RevealedTierKeys, kitID.String()+":"+string(t))
		}
	}
	for _, id := range d.RejectedKitIDs() {
		resp.RejectedKitIDs = append(resp.RejectedKitIDs, id.String())
	}
	if current := d.CurrentKit(); current != nil {
		for i := range p.Kits {
			if p.Kits[i].ID == current.ID {
				k := kitToResponse(&p.Kits[i], func(tier pricing.Tier) bool {
					return d.TierVisible(current.ID, tier)
				})
				resp.CurrentKit = &k
			}
		}
	}
	return resp
}
