package dto

// ─── Filter / List ──────────────────────────────────────────────────────────

// LeadFilter is bound from query string of GET /v1/leads.
type LeadFilter struct {
	Search       string `form:"search"`
	Region       string `form:"region"`
	Source       string `form:"source"`
	SellerUserID string `form:"seller_user_id" validate:"omitempty,uuid"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type LeadListResponse struct {
	Data  []LeadResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateLeadRequest struct {
	Name         string  `json:"name"  validate:"required,min=2,max=150"`
	Phone        string  `json:"phone" validate:"required,min=10,max=13,numeric"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Street       *string `json:"street"`
	Number       *string `json:"number"`
	District     *string `json:"district"`
	City         *string `json:"city"`
	State        *string `json:"state"    validate:"omitempty,len=2"`
	ZipCode      *string `json:"zip_code" validate:"omitempty,len=8,numeric"`
	MapLink      *string `json:"map_link" validate:"omitempty,url"`
	Region       *string `json:"region"`
	Source       *string `json:"source"`
	SellerUserID *string `json:"seller_user_id" validate:"omitempty,uuid"`
	Notes        *string `json:"notes"`
}

type UpdateLeadRequest = CreateLeadRequest

// KeyAnswerRequest records the answer given to a product key question during
// qualification.
type KeyAnswerRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Question  string `json:"question"   validate:"required"`
	Answer    string `json:"answer"     validate:"required"`
	Position  int    `json:"position"   validate:"min=0"`
}

type SaveAnswersRequest struct {
	Answers []KeyAnswerRequest `json:"answers" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type KeyAnswerResponse struct {
	ProductID string `json:"product_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Position  int    `json:"position"`
}

type LeadResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Phone        string              `json:"phone"`
	Email        *string             `json:"email"`
	Street       *string             `json:"street"`
	Number       *string             `json:"number"`
	District     *string             `json:"district"`
	City         *string             `json:"city"`
	State        *string             `json:"state"`
	ZipCode      *string             `json:"zip_code"`
	MapLink      *string             `json:"map_link"`
	Region       *string             `json:"region"`
	Source       *string             `json:"source"`
	SellerUserID *string             `json:"seller_user_id"`
	Notes        *string             `json:"notes"`
	Answers      []KeyAnswerResponse `json:"answers,omitempty"`
	CreatedAt    string              `json:"created_at"`
}
