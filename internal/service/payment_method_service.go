package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"vendaflow/internal/dto"
	"vendaflow/internal/model"
	"vendaflow/internal/repository"
)

type PaymentMethodService interface {
	Create(ctx context.Context, orgID uuid.UUID, req dto.CreatePaymentMethodRequest) (*dto.PaymentMethodResponse, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*dto.PaymentMethodResponse, error)
	List(ctx context.Context, orgID uuid.UUID, includeInactive bool) ([]dto.PaymentMethodResponse, error)
	Update(ctx context.Context, orgID, id uuid.UUID, req dto.UpdatePaymentMethodRequest) (*dto.PaymentMethodResponse, error)
	SetActive(ctx context.Context, orgID, id uuid.UUID, active bool) error
}

type paymentMethodService struct {
	repo repository.PaymentMethodRepository
}

func NewPaymentMethodService(repo repository.PaymentMethodRepository) PaymentMethodService {
	return &paymentMethodService{repo: repo}
}

func (s *paymentMethodService) Create(ctx context.Context, orgID uuid.UUID, req dto.CreatePaymentMethodRequest) (*dto.PaymentMethodResponse, error) {
	m := &model.PaymentMethod{
		OrganizationID:  orgID,
		Name:            req.Name,
		Category:        req.Category,
		Timing:          req.Timing,
		MaxInstallments: req.MaxInstallments,
		BankName:        req.BankName,
		BankCNPJ:        req.BankCNPJ,
		CostCenter:      req.CostCenter,
		AcquirerName:    req.AcquirerName,
		Active:          true,
		Fees:            feesFromRequest(req.Fees),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	resp := paymentMethodToResponse(m)
	return &resp, nil
}

func (s *paymentMethodService) Get(ctx context.Context, orgID, id uuid.UUID) (*dto.PaymentMethodResponse, error) {
	m, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, errors.New("forma de pagamento não encontrada")
	}
	resp := paymentMethodToResponse(m)
	return &resp, nil
}

func (s *paymentMethodService) List(ctx context.Context, orgID uuid.UUID, includeInactive bool) ([]dto.PaymentMethodResponse, error) {
	methods, err := s.repo.List(ctx, orgID, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentMethodResponse, 0, len(methods))
	for i := range methods {
		out = append(out, paymentMethodToResponse(&methods[i]))
	}
	return out, nil
}

func (s *paymentMethodService) Update(ctx context.Context, orgID, id uuid.UUID, req dto.UpdatePaymentMethodRequest) (*dto.PaymentMethodResponse, error) {
	m, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, errors.New("forma de pagamento não encontrada")
	}

	if req.Name != "" {
		m.Name = req.Name
	}
	if req.Category != "" {
		m.Category = req.Category
	}
	if req.Timing != "" {
		m.Timing = req.Timing
	}
	if req.MaxInstallments > 0 {
		m.MaxInstallments = req.MaxInstallments
	}
	m.BankName = req.BankName
	m.BankCNPJ = req.BankCNPJ
	m.CostCenter = req.CostCenter
	m.AcquirerName = req.AcquirerName

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	if req.Fees != nil {
		if err := s.repo.ReplaceFees(ctx, m.ID, feesFromRequest(req.Fees)); err != nil {
			return nil, err
		}
	}

	fresh, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := paymentMethodToResponse(fresh)
	return &resp, nil
}

func (s *paymentMethodService) SetActive(ctx context.Context, orgID, id uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, orgID, id, active)
}

func feesFromRequest(reqs []dto.FeeRequest) []model.PaymentMethodFee {
	fees := make([]model.PaymentMethodFee, 0, len(reqs))
	for _, f := range reqs {
		fees = append(fees, model.PaymentMethodFee{
			TransactionType: f.TransactionType,
			PercentageFee:   f.PercentageFee,
			FixedFeeCents:   f.FixedFeeCents,
			SettlementDays:  f.SettlementDays,
		})
	}
	return fees
}

func paymentMethodToResponse(m *model.PaymentMethod) dto.PaymentMethodResponse {
	fees := make([]dto.FeeResponse, 0, len(m.Fees))
	for _, f := range m.Fees {
		fees = append(fees, dto.FeeResponse{
			TransactionType: f.TransactionType,
			PercentageFee:   f.PercentageFee,
			FixedFeeCents:   f.FixedFeeCents,
			SettlementDays:  f.SettlementDays,
		})
	}
	return dto.PaymentMethodResponse{
		ID:              m.ID.String(),
		Name:            m.Name,
		Category:        m.Category,
		Timing:          m.Timing,
		MaxInstallments: m.MaxInstallments,
		BankName:        m.BankName,
		BankCNPJ:        m.BankCNPJ,
		CostCenter:      m.CostCenter,
		AcquirerName:    m.AcquirerName,
		Active:          m.Active,
		Fees:            fees,
	}
}
