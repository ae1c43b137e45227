package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from query string of GET /v1/sales.
type SaleFilter struct {
	Status         string `form:"status"`
	DeliveryStatus string `form:"delivery_status"`
	DeliveryType   string `form:"delivery_type"`
	LeadID         string `form:"lead_id"         validate:"omitempty,uuid"`
	SellerUserID   string `form:"seller_user_id"  validate:"omitempty,uuid"`
	CourierUserID  string `form:"courier_user_id" validate:"omitempty,uuid"`
	ScheduledDate  string `form:"scheduled_date"` // YYYY-MM-DD
	Page           int    `form:"page,default=1"   validate:"min=1"`
	Limit          int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SaleItemRequest prices one line. Tier "custom" requires custom_price_cents;
// products without kits ignore the tier and use manual/legacy pricing.
type SaleItemRequest struct {
	ProductID        string `json:"product_id" validate:"required,uuid"`
	KitID            *string `json:"kit_id"     validate:"omitempty,uuid"`
	Tier             string `json:"tier"       validate:"omitempty,oneof=regular promotional promotional_2 minimum custom"`
	Quantity         int    `json:"quantity"   validate:"required,min=1"`
	CustomPriceCents *int64 `json:"custom_price_cents" validate:"omitempty,min=1"`
	// Line discount, percentage (basis: line subtotal) or fixed cents.
	DiscountType  *string          `json:"discount_type"  validate:"omitempty,oneof=percentage fixed"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
	// RequisitionNumber is mandatory for manipulado items.
	RequisitionNumber *string `json:"requisition_number"`
	AuthorizationID   *string `json:"authorization_id" validate:"omitempty,uuid"`
}

type CreateSaleRequest struct {
	LeadID            string            `json:"lead_id"       validate:"required,uuid"`
	SellerUserID      *string           `json:"seller_user_id" validate:"omitempty,uuid"`
	Items             []SaleItemRequest `json:"items"         validate:"required,min=1,dive"`
	DeliveryType      string            `json:"delivery_type" validate:"required,oneof=pickup motoboy carrier"`
	ScheduledDate     *string           `json:"scheduled_date"  validate:"omitempty,datetime=2006-01-02"`
	ScheduledShift    *string           `json:"scheduled_shift" validate:"omitempty,oneof=morning afternoon evening"`
	CourierUserID     *string           `json:"courier_user_id" validate:"omitempty,uuid"`
	CarrierName       *string           `json:"carrier_name"`
	DeliveryNotes     *string           `json:"delivery_notes"`
	ShippingCostCents int64             `json:"shipping_cost_cents" validate:"min=0"`
	PaymentMethodID   *string           `json:"payment_method_id" validate:"omitempty,uuid"`
	Installments      int               `json:"installments" validate:"omitempty,min=1"`
}

type DispatchRequest struct {
	CourierUserID *string `json:"courier_user_id" validate:"omitempty,uuid"`
	Note          *string `json:"note"`
}

// DeliverRequest closes the delivery with one of the romaneio checklist
// outcomes. Only "delivered" advances the sale to delivered.
type DeliverRequest struct {
	Outcome string  `json:"outcome" validate:"required"`
	Note    *string `json:"note"`
}

type ConfirmPaymentRequest struct {
	PaymentMethodID *string `json:"payment_method_id" validate:"omitempty,uuid"`
	Installments    *int    `json:"installments"      validate:"omitempty,min=1"`
	Note            *string `json:"note"`
}

type CancelSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

type ReturnSaleRequest struct {
	Reason string  `json:"reason" validate:"required,min=3"`
	Notes  *string `json:"notes"`
}

// RescheduleRequest moves a returned sale back to draft with new delivery data.
type RescheduleRequest struct {
	DeliveryType   string  `json:"delivery_type"   validate:"required,oneof=pickup motoboy carrier"`
	ScheduledDate  *string `json:"scheduled_date"  validate:"omitempty,datetime=2006-01-02"`
	ScheduledShift *string `json:"scheduled_shift" validate:"omitempty,oneof=morning afternoon evening"`
	CourierUserID  *string `json:"courier_user_id" validate:"omitempty,uuid"`
	CarrierName    *string `json:"carrier_name"`
	Note           *string `json:"note"`
}

// GrantAuthorizationRequest creates a single-use below-minimum discount grant.
type GrantAuthorizationRequest struct {
	LeadID          string `json:"lead_id"          validate:"required,uuid"`
	ProductID       string `json:"product_id"       validate:"required,uuid"`
	AuthorizedCents int64  `json:"authorized_cents" validate:"required,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ID                string  `json:"id"`
	ProductID         string  `json:"product_id"`
	KitID             *string `json:"kit_id"`
	ProductName       string  `json:"product_name"`
	Quantity          int     `json:"quantity"`
	UnitPriceCents    int64   `json:"unit_price_cents"`
	DiscountCents     int64   `json:"discount_cents"`
	TotalCents        int64   `json:"total_cents"`
	RequisitionNumber *string `json:"requisition_number"`
}

type StatusHistoryResponse struct {
	FromStatus string  `json:"from_status"`
	ToStatus   string  `json:"to_status"`
	ActorID    string  `json:"actor_id"`
	Note       *string `json:"note"`
	CreatedAt  string  `json:"created_at"`
}

type SaleResponse struct {
	ID                 string                  `json:"id"`
	Number             int                     `json:"number"`
	LeadID             string                  `json:"lead_id"`
	LeadName           string                  `json:"lead_name,omitempty"`
	SellerUserID       string                  `json:"seller_user_id"`
	Status             string                  `json:"status"`
	SubtotalCents      int64                   `json:"subtotal_cents"`
	DiscountCents      int64                   `json:"discount_cents"`
	ShippingCostCents  int64                   `json:"shipping_cost_cents"`
	TotalCents         int64                   `json:"total_cents"`
	DeliveryType       string                  `json:"delivery_type"`
	DeliveryStatus     string                  `json:"delivery_status"`
	ScheduledDate      *string                 `json:"scheduled_date"`
	ScheduledShift     *string                 `json:"scheduled_shift"`
	CourierUserID      *string                 `json:"courier_user_id"`
	CarrierName        *string                 `json:"carrier_name"`
	DeliveryNotes      *string                 `json:"delivery_notes"`
	PaymentMethodID    *string                 `json:"payment_method_id"`
	Installments       int                     `json:"installments"`
	PaymentProofURL    *string                 `json:"payment_proof_url"`
	InvoicePDFURL      *string                 `json:"invoice_pdf_url"`
	InvoiceXMLURL      *string                 `json:"invoice_xml_url"`
	SettlementFeeCents *int64                  `json:"settlement_fee_cents"`
	SettlementDate     *string                 `json:"settlement_date"`
	ReturnReason       *string                 `json:"return_reason"`
	CancelReason       *string                 `json:"cancel_reason"`
	Items              []SaleItemResponse      `json:"items"`
	StatusHistory      []StatusHistoryResponse `json:"status_history,omitempty"`
	CreatedAt          string                  `json:"created_at"`
}

type AuthorizationResponse struct {
	ID              string  `json:"id"`
	LeadID          string  `json:"lead_id"`
	ProductID       string  `json:"product_id"`
	GrantedByUserID string  `json:"granted_by_user_id"`
	AuthorizedCents int64   `json:"authorized_cents"`
	ConsumedAt      *string `json:"consumed_at"`
	CreatedAt       string  `json:"created_at"`
}
