package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"vendaflow/internal/dto"
	"vendaflow/internal/model"
	"vendaflow/internal/repository"
)

type LeadService interface {
	Create(ctx context.Context, orgID uuid.UUID, req dto.CreateLeadRequest) (*dto.LeadResponse, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*dto.LeadResponse, error)
	List(ctx context.Context, orgID uuid.UUID, filter dto.LeadFilter) (*dto.LeadListResponse, error)
	Update(ctx context.Context, orgID, id uuid.UUID, req dto.UpdateLeadRequest) (*dto.LeadResponse, error)
	SaveAnswers(ctx context.Context, orgID, id uuid.UUID, req dto.SaveAnswersRequest) error
}

type leadService struct {
	repo repository.LeadRepository
}

func NewLeadService(repo repository.LeadRepository) LeadService {
	return &leadService{repo: repo}
}

func (s *leadService) Create(ctx context.Context, orgID uuid.UUID, req dto.CreateLeadRequest) (*dto.LeadResponse, error) {
	phone := NormalizePhone(req.Phone)

	// One lead per phone: any Brazilian variant of the number counts.
	if existing, err := s.repo.FindByPhoneVariants(ctx, orgID, PhoneVariants(phone)); err == nil {
		return nil, errors.New("já existe um lead com este telefone: " + existing.Name)
	}

	lead := &model.Lead{
		OrganizationID: orgID,
		Name:           req.Name,
		Phone:          phone,
		Email:          req.Email,
		Street:         req.Street,
		Number:         req.Number,
		District:       req.District,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		MapLink:        req.MapLink,
		Region:         req.Region,
		Source:         req.Source,
		Notes:          req.Notes,
	}
	if req.SellerUserID != nil {
		sid, err := uuid.Parse(*req.SellerUserID)
		if err != nil {
			return nil, errors.New("seller_user_id inválido")
		}
		lead.SellerUserID = &sid
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}
	resp := leadToResponse(lead)
	return &resp, nil
}

func (s *leadService) Get(ctx context.Context, orgID, id uuid.UUID) (*dto.LeadResponse, error) {
	lead, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, errors.New("lead não encontrado")
	}
	resp := leadToResponse(lead)
	return &resp, nil
}

func (s *leadService) List(ctx context.Context, orgID uuid.UUID, filter dto.LeadFilter) (*dto.LeadListResponse, error) {
	leads, total, err := s.repo.List(ctx, orgID, repository.LeadFilter{
		Search:       filter.Search,
		SellerUserID: filter.SellerUserID,
		Region:       filter.Region,
		Page:         filter.Page,
		Limit:        filter.Limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.LeadResponse, 0, len(leads))
	for i := range leads {
		out = append(out, leadToResponse(&leads[i]))
	}
	return &dto.LeadListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *leadService) Update(ctx context.Context, orgID, id uuid.UUID, req dto.UpdateLeadRequest) (*dto.LeadResponse, error) {
	lead, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, errors.New("lead não encontrado")
	}

	if req.Name != "" {
		lead.Name = req.Name
	}
	if req.Phone != "" {
		lead.Phone = NormalizePhone(req.Phone)
	}
	lead.Email = req.Email
	lead.Street = req.Street
	lead.Number = req.Number
	lead.District = req.District
	lead.City = req.City
	lead.State = req.State
	lead.ZipCode = req.ZipCode
	lead.MapLink = req.MapLink
	lead.Region = req.Region
	lead.Source = req.Source
	lead.Notes = req.Notes
	if req.SellerUserID != nil {
		sid, err := uuid.Parse(*req.SellerUserID)
		if err != nil {
			return nil, errors.New("seller_user_id inválido")
		}
		lead.SellerUserID = &sid
	}

	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, err
	}
	resp := leadToResponse(lead)
	return &resp, nil
}

func (s *leadService) SaveAnswers(ctx context.Context, orgID, id uuid.UUID, req dto.SaveAnswersRequest) error {
	if _, err := s.repo.FindByID(ctx, orgID, id); err != nil {
		return errors.New("lead não encontrado")
	}

	answers := make([]model.KeyQuestionAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		pid, err := uuid.Parse(a.ProductID)
		if err != nil {
			return errors.New("product_id inválido")
		}
		answers = append(answers, model.KeyQuestionAnswer{
			ProductID: pid,
			Question:  a.Question,
			Answer:    a.Answer,
			Position:  a.Position,
		})
	}
	return s.repo.SaveAnswers(ctx, id, answers)
}

func leadToResponse(l *model.Lead) dto.LeadResponse {
	var sellerID *string
	if l.SellerUserID != nil {
		v := l.SellerUserID.String()
		sellerID = &v
	}

	answers := make([]dto.KeyAnswerResponse, 0, len(l.Answers))
	for _, a := range l.Answers {
		answers = append(answers, dto.KeyAnswerResponse{
			ProductID: a.ProductID.String(),
			Question:  a.Question,
			Answer:    a.Answer,
			Position:  a.Position,
		})
	}

	return dto.LeadResponse{
		ID:           l.ID.String(),
		Name:         l.Name,
		Phone:        l.Phone,
		Email:        l.Email,
		Street:       l.Street,
		Number:       l.Number,
		District:     l.District,
		City:         l.City,
		State:        l.State,
		ZipCode:      l.ZipCode,
		MapLink:      l.MapLink,
		Region:       l.Region,
		Source:       l.Source,
		SellerUserID: sellerID,
		Notes:        l.Notes,
		Answers:      answers,
		CreatedAt:    l.CreatedAt.Format(time.RFC3339),
	}
}
