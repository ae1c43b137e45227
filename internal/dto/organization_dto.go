package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateOrganizationRequest struct {
	Name string  `json:"name" validate:"required,min=2,max=150"`
	Slug string  `json:"slug" validate:"required,min=2,max=60,lowercase"`
	CNPJ *string `json:"cnpj" validate:"omitempty,len=14,numeric"`
	// Admin bootstrap credentials for the new tenant.
	AdminName     string `json:"admin_name"     validate:"required,min=2"`
	AdminEmail    string `json:"admin_email"    validate:"required,email"`
	AdminPassword string `json:"admin_password" validate:"required,min=8"`
}

type UpdateOrganizationRequest struct {
	Name string  `json:"name" validate:"omitempty,min=2,max=150"`
	CNPJ *string `json:"cnpj" validate:"omitempty,len=14,numeric"`
}

// OnboardingRequest carries the free-form answers from the first-login wizard.
type OnboardingRequest struct {
	Answers map[string]string `json:"answers" validate:"required,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrganizationResponse struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Slug                string  `json:"slug"`
	CNPJ                *string `json:"cnpj"`
	Active              bool    `json:"active"`
	OnboardingCompleted bool    `json:"onboarding_completed"`
	CreatedAt           string  `json:"created_at"`
}

type OnboardingStatusResponse struct {
	Completed   bool              `json:"completed"`
	CompletedAt *string           `json:"completed_at"`
	Answers     map[string]string `json:"answers,omitempty"`
}
