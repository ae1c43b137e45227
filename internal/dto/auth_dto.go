package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CreateUserRequest struct {
	Name                 string           `json:"name"     validate:"required,min=2,max=150"`
	Email                string           `json:"email"    validate:"required,email"`
	Password             string           `json:"password" validate:"required,min=8"`
	Role                 string           `json:"role"     validate:"required,oneof=admin manager seller courier"`
	Phone                *string          `json:"phone"    validate:"omitempty,min=10,max=13,numeric"`
	Permissions          []string         `json:"permissions"`
	DefaultCommissionPct *decimal.Decimal `json:"default_commission_pct"`
}

type UpdateUserRequest struct {
	Name                 string           `json:"name"     validate:"omitempty,min=2,max=150"`
	Role                 string           `json:"role"     validate:"omitempty,oneof=admin manager seller courier"`
	Phone                *string          `json:"phone"    validate:"omitempty,min=10,max=13,numeric"`
	Password             string           `json:"password" validate:"omitempty,min=8"`
	Permissions          []string         `json:"permissions"`
	DefaultCommissionPct *decimal.Decimal `json:"default_commission_pct"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID                   string          `json:"id"`
	OrganizationID       *string         `json:"organization_id"`
	Name                 string          `json:"name"`
	Email                string          `json:"email"`
	Role                 string          `json:"role"`
	Phone                *string         `json:"phone"`
	Permissions          []string        `json:"permissions"`
	DefaultCommissionPct decimal.Decimal `json:"default_commission_pct"`
	Active               bool            `json:"active"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // seconds
	User         UserResponse `json:"user"`
}
