package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vendaflow/internal/dto"
	"vendaflow/internal/model"
	"vendaflow/internal/repository"
)

type OrganizationService interface {
	Create(ctx context.Context, req dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.OrganizationResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.OrganizationResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateOrganizationRequest) (*dto.OrganizationResponse, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	// SaveOnboarding persists the first-login wizard answers and stamps completion.
	SaveOnboarding(ctx context.Context, id uuid.UUID, req dto.OnboardingRequest) error
	OnboardingStatus(ctx context.Context, id uuid.UUID) (*dto.OnboardingStatusResponse, error)
}

type organizationService struct {
	repo     repository.OrganizationRepository
	userRepo repository.UserRepository
}

func NewOrganizationService(repo repository.OrganizationRepository, userRepo repository.UserRepository) OrganizationService {
	return &organizationService{repo: repo, userRepo: userRepo}
}

// Create provisions a tenant together with its first admin user.
func (s *organizationService) Create(ctx context.Context, req dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error) {
	if _, err := s.repo.FindBySlug(ctx, req.Slug); err == nil {
		return nil, errors.New("slug já está em uso")
	}

	org := &model.Organization{
		Name:   req.Name,
		Slug:   req.Slug,
		CNPJ:   req.CNPJ,
		Active: true,
	}
	if err := s.repo.Create(ctx, org); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), 12)
	if err != nil {
		return nil, err
	}
	admin := &model.User{
		OrganizationID: &org.ID,
		Name:           req.AdminName,
		Email:          req.AdminEmail,
		PasswordHash:   string(hash),
		Role:           model.RoleAdmin,
		Active:         true,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return nil, err
	}

	resp := orgToResponse(org)
	return &resp, nil
}

func (s *organizationService) List(ctx context.Context, includeInactive bool) ([]dto.OrganizationResponse, error) {
	orgs, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		out = append(out, orgToResponse(&orgs[i]))
	}
	return out, nil
}

func (s *organizationService) Get(ctx context.Context, id uuid.UUID) (*dto.OrganizationResponse, error) {
	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("organização não encontrada")
	}
	resp := orgToResponse(org)
	return &resp, nil
}

func (s *organizationService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateOrganizationRequest) (*dto.OrganizationResponse, error) {
	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("organização não encontrada")
	}
	if req.Name != "" {
		org.Name = req.Name
	}
	if req.CNPJ != nil {
		org.CNPJ = req.CNPJ
	}
	if err := s.repo.Update(ctx, org); err != nil {
		return nil, err
	}
	resp := orgToResponse(org)
	return &resp, nil
}

func (s *organizationService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

func (s *organizationService) SaveOnboarding(ctx context.Context, id uuid.UUID, req dto.OnboardingRequest) error {
	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("organização não encontrada")
	}
	raw, err := json.Marshal(req.Answers)
	if err != nil {
		return err
	}
	answers := string(raw)
	now := time.Now()
	org.OnboardingAnswers = &answers
	org.OnboardingCompletedAt = &now
	return s.repo.Update(ctx, org)
}

func (s *organizationService) OnboardingStatus(ctx context.Context, id uuid.UUID) (*dto.OnboardingStatusResponse, error) {
	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("organização não encontrada")
	}
	resp := &dto.OnboardingStatusResponse{Completed: org.OnboardingCompletedAt != nil}
	if org.OnboardingCompletedAt != nil {
		v := org.OnboardingCompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}
	if org.OnboardingAnswers != nil {
		var answers map[string]string
		if err := json.Unmarshal([]byte(*org.OnboardingAnswers), &answers); err == nil {
			resp.Answers = answers
		}
	}
	return resp, nil
}

func orgToResponse(o *model.Organization) dto.OrganizationResponse {
	return dto.OrganizationResponse{
		ID:                  o.ID.String(),
		Name:                o.Name,
		Slug:                o.Slug,
		CNPJ:                o.CNPJ,
		Active:              o.Active,
		OnboardingCompleted: o.OnboardingCompletedAt != nil,
		CreatedAt:           o.CreatedAt.Format(time.RFC3339),
	}
}
