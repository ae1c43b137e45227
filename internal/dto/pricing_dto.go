package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PriceCheckRequest resolves a price/commission without creating a sale.
// Used by the sale form as the seller picks tier and quantity.
type PriceCheckRequest struct {
	ProductID        string           `json:"product_id" validate:"required,uuid"`
	KitID            *string          `json:"kit_id"     validate:"omitempty,uuid"`
	Tier             string           `json:"tier"       validate:"omitempty,oneof=regular promotional promotional_2 minimum custom"`
	Quantity         int              `json:"quantity"   validate:"required,min=1"`
	CustomPriceCents *int64           `json:"custom_price_cents" validate:"omitempty,min=1"`
	DiscountType     *string          `json:"discount_type"  validate:"omitempty,oneof=percentage fixed"`
	DiscountValue    *decimal.Decimal `json:"discount_value"`
	LeadID           *string          `json:"lead_id" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PriceCheckResponse struct {
	UnitPriceCents     int64           `json:"unit_price_cents"`
	Quantity           int             `json:"quantity"`
	SubtotalCents      int64           `json:"subtotal_cents"`
	DiscountCents      int64           `json:"discount_cents"`
	TotalCents         int64           `json:"total_cents"`
	CommissionPct      decimal.Decimal `json:"commission_pct"`
	IsCustomCommission bool            `json:"is_custom_commission"`
	// BelowMinimum flags totals under the kit floor; the sale will require a
	// manager authorization unless one already exists for the lead/product.
	BelowMinimum     bool `json:"below_minimum"`
	HasAuthorization bool `json:"has_authorization"`
}
