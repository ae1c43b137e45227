package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// ProductFilter is bound from query string of GET /v1/products.
type ProductFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Active   *bool  `form:"active"`
	Featured *bool  `form:"featured"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// KitTierRequest configures one price point of a kit. Commission falls back
// to the seller's default unless use_default_commission is false.
type KitTierRequest struct {
	PriceCents           *int64           `json:"price_cents"    validate:"omitempty,min=1"`
	UseDefaultCommission bool             `json:"use_default_commission"`
	CommissionPct        *decimal.Decimal `json:"commission_pct"`
}

type KitRequest struct {
	Quantity     int            `json:"quantity" validate:"required,min=1"`
	Position     int            `json:"position" validate:"min=0"`
	Regular      KitTierRequest `json:"regular"`
	Promotional  KitTierRequest `json:"promotional"`
	Promotional2 KitTierRequest `json:"promotional_2"`
	Minimum      KitTierRequest `json:"minimum"`
}

type KeyQuestionRequest struct {
	Question string `json:"question" validate:"required,min=3"`
	Position int    `json:"position" validate:"min=0"`
}

type CreateProductRequest struct {
	Name             string               `json:"name"     validate:"required,min=2,max=150"`
	Description      *string              `json:"description"`
	Category         string               `json:"category" validate:"required"`
	Featured         bool                 `json:"featured"`
	TrackStock       *bool                `json:"track_stock"`
	StockActual      int                  `json:"stock_actual"  validate:"min=0"`
	StockMinimum     int                  `json:"stock_minimum" validate:"min=0"`
	LegacyPriceCents *int64               `json:"legacy_price_cents" validate:"omitempty,min=1"`
	CrossSell1ID     *string              `json:"cross_sell_1_id" validate:"omitempty,uuid"`
	CrossSell2ID     *string              `json:"cross_sell_2_id" validate:"omitempty,uuid"`
	Kits             []KitRequest         `json:"kits"          validate:"dive"`
	KeyQuestions     []KeyQuestionRequest `json:"key_questions" validate:"dive"`
}

type UpdateProductRequest = CreateProductRequest

type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

// RejectKitRequest records a declined tier offer; unlocks the next kit.
type RejectKitRequest struct {
	LeadID string `json:"lead_id" validate:"required,uuid"`
	KitID  string `json:"kit_id"  validate:"required,uuid"`
	Reason string `json:"reason"  validate:"required,min=3"`
}

type RevealTierRequest struct {
	LeadID string `json:"lead_id" validate:"required,uuid"`
	KitID  string `json:"kit_id"  validate:"required,uuid"`
	Tier   string `json:"tier"    validate:"required,oneof=promotional_2 minimum"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type KitTierResponse struct {
	PriceCents           *int64           `json:"price_cents"`
	UseDefaultCommission bool             `json:"use_default_commission"`
	CommissionPct        *decimal.Decimal `json:"commission_pct"`
}

type KitResponse struct {
	ID           string          `json:"id"`
	Quantity     int             `json:"quantity"`
	Position     int             `json:"position"`
	Regular      KitTierResponse `json:"regular"`
	Promotional  KitTierResponse `json:"promotional"`
	Promotional2 KitTierResponse `json:"promotional_2,omitempty"`
	Minimum      KitTierResponse `json:"minimum,omitempty"`
}

type KeyQuestionResponse struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Position int    `json:"position"`
}

type ProductResponse struct {
	ID               string                `json:"id"`
	Name             string                `json:"name"`
	Description      *string               `json:"description"`
	Category         string                `json:"category"`
	Active           bool                  `json:"active"`
	Featured         bool                  `json:"featured"`
	TrackStock       bool                  `json:"track_stock"`
	StockActual      int                   `json:"stock_actual"`
	StockReserved    int                   `json:"stock_reserved"`
	StockAvailable   int                   `json:"stock_available"`
	StockMinimum     int                   `json:"stock_minimum"`
	LegacyPriceCents *int64                `json:"legacy_price_cents"`
	CrossSell1ID     *string               `json:"cross_sell_1_id"`
	CrossSell2ID     *string               `json:"cross_sell_2_id"`
	Kits             []KitResponse         `json:"kits,omitempty"`
	KeyQuestions     []KeyQuestionResponse `json:"key_questions,omitempty"`
	CreatedAt        string                `json:"created_at"`
}

// DisclosureResponse is the seller's view of a product's kits for one lead:
// only the current kit is offered, hidden tiers appear once revealed.
type DisclosureResponse struct {
	CurrentKit       *KitResponse `json:"current_kit"`
	AllKitsRevealed  bool         `json:"all_kits_revealed"`
	RejectedKitIDs   []string     `json:"rejected_kit_ids"`
	RemainingKits    int          `json:"remaining_kits"`
	RevealedTierKeys []string     `json:"revealed_tier_keys"` // "<kit_id>:<tier>"
}

type StockMovementResponse struct {
	ID             string  `json:"id"`
	ProductID      string  `json:"product_id"`
	SaleID         *string `json:"sale_id"`
	Operation      string  `json:"operation"`
	Quantity       int     `json:"quantity"`
	ActualBefore   int     `json:"actual_before"`
	ActualAfter    int     `json:"actual_after"`
	ReservedBefore int     `json:"reserved_before"`
	ReservedAfter  int     `json:"reserved_after"`
	Reason         string  `json:"reason"`
	CreatedAt      string  `json:"created_at"`
}
