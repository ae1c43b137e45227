package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"vendaflow/internal/config"
	"vendaflow/internal/dto"
	"vendaflow/internal/model"
	"vendaflow/internal/repository"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CreateUser(ctx context.Context, orgID uuid.UUID, req dto.CreateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, orgID uuid.UUID, includeInactive bool) ([]dto.UserResponse, error)
	UpdateUser(ctx context.Context, orgID, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeactivateUser(ctx context.Context, orgID, id uuid.UUID) error
	ReactivateUser(ctx context.Context, orgID, id uuid.UUID) error
}

type authService struct {
	repo    repository.UserRepository
	orgRepo repository.OrganizationRepository
	cfg     *config.Config
}

func NewAuthService(repo repository.UserRepository, orgRepo repository.OrganizationRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, orgRepo: orgRepo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("credenciais inválidas")
	}
	if !user.Active {
		return nil, errors.New("credenciais inválidas")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("credenciais inválidas")
	}

	// Tenant suspension locks out everyone but the super admin.
	if user.OrganizationID != nil {
		org, err := s.orgRepo.FindByID(ctx, *user.OrganizationID)
		if err != nil || !org.Active {
			return nil, errors.New("organização suspensa")
		}
	}

	return s.buildLoginResponse(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token inválido ou expirado")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("claims inválidos")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("token malformado")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("token malformado")
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Active {
		return nil, errors.New("usuário não encontrado ou inativo")
	}

	return s.buildLoginResponse(user)
}

func (s *authService) buildLoginResponse(user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	resp := userToResponse(user)
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         resp,
	}, nil
}

func (s *authService) generateToken(user *model.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":     user.ID.String(),
		"role":        user.Role,
		"permissions": user.Permissions,
		"exp":         time.Now().Add(ttl).Unix(),
		"iat":         time.Now().Unix(),
	}
	if user.OrganizationID != nil {
		claims["org_id"] = user.OrganizationID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) CreateUser(ctx context.Context, orgID uuid.UUID, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	commission := decimal.Zero
	if req.DefaultCommissionPct != nil {
		commission = *req.DefaultCommissionPct
	}
	user := &model.User{
		OrganizationID:       &orgID,
		Name:                 req.Name,
		Email:                req.Email,
		PasswordHash:         string(hash),
		Role:                 req.Role,
		Permissions:          req.Permissions,
		Phone:                req.Phone,
		DefaultCommissionPct: commission,
		Active:               true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	resp := userToResponse(user)
	return &resp, nil
}

func (s *authService) ListUsers(ctx context.Context, orgID uuid.UUID, includeInactive bool) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx, orgID, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userToResponse(&users[i]))
	}
	return out, nil
}

func (s *authService) UpdateUser(ctx context.Context, orgID, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("usuário não encontrado")
	}
	if user.OrganizationID == nil || *user.OrganizationID != orgID {
		return nil, errors.New("usuário não encontrado")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Permissions != nil {
		user.Permissions = req.Permissions
	}
	if req.DefaultCommissionPct != nil {
		user.DefaultCommissionPct = *req.DefaultCommissionPct
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := userToResponse(user)
	return &resp, nil
}

func (s *authService) DeactivateUser(ctx context.Context, orgID, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, orgID, id)
}

func (s *authService) ReactivateUser(ctx context.Context, orgID, id uuid.UUID) error {
	return s.repo.Reactivate(ctx, orgID, id)
}

func userToResponse(u *model.User) dto.UserResponse {
	var orgID *string
	if u.OrganizationID != nil {
		v := u.OrganizationID.String()
		orgID = &v
	}
	return dto.UserResponse{
		ID:                   u.ID.String(),
		OrganizationID:       orgID,
		Name:                 u.Name,
		Email:                u.Email,
		Role:                 u.Role,
		Phone:                u.Phone,
		Permissions:          u.Permissions,
		DefaultCommissionPct: u.DefaultCommissionPct,
		Active:               u.Active,
	}
}
