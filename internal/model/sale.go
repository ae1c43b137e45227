package model

import (
	"time"

	"github.com/google/uuid"
)

// Sale statuses.
const (
	SaleDraft             = "draft"
	SalePendingExpedition = "pending_expedition"
	SaleDispatched        = "dispatched"
	SaleDelivered         = "delivered"
	SalePaymentPending    = "payment_pending"
	SalePaymentConfirmed  = "payment_confirmed"
	SaleCancelled         = "cancelled"
	SaleReturned          = "returned"
)

// Delivery types.
const (
	DeliveryPickup  = "pickup"
	DeliveryMotoboy = "motoboy"
	DeliveryCarrier = "carrier"
)

// Delivery status: "pending" plus twelve terminal outcomes recorded by the
// courier on the romaneio checklist.
const (
	DeliveryStatusPending = "pending"

	OutcomeDelivered           = "delivered"
	OutcomeRecipientAbsent     = "recipient_absent"
	OutcomeAddressNotFound     = "address_not_found"
	OutcomeWrongAddress        = "wrong_address"
	OutcomeRefused             = "refused"
	OutcomeNoPayment           = "no_payment"
	OutcomeRescheduled         = "rescheduled"
	OutcomeDamaged             = "damaged"
	OutcomeLost                = "lost"
	OutcomeCancelledByCustomer = "cancelled_by_customer"
	OutcomeReturnedToBase      = "returned_to_base"
	OutcomeIncomplete          = "incomplete"
)

// DeliveryOutcomes lists the terminal delivery statuses in checklist order.
var DeliveryOutcomes = []string{
	OutcomeDelivered, OutcomeRecipientAbsent, OutcomeAddressNotFound,
	OutcomeWrongAddress, OutcomeRefused, OutcomeNoPayment,
	OutcomeRescheduled, OutcomeDamaged, OutcomeLost,
	OutcomeCancelledByCustomer, OutcomeReturnedToBase, OutcomeIncomplete,
}

// Sale is the aggregate root of the sale/delivery/payment workflow.
// Monetary fields are integer cents. Invariant, enforced on every write:
// TotalCents = SubtotalCents - DiscountCents + ShippingCostCents, >= 0.
type Sale struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Number          int       `gorm:"not null;index"` // per-org sequential, from a sequence
	LeadID          uuid.UUID `gorm:"type:uuid;not null;index"`
	SellerUserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;not null"`

	SubtotalCents     int64 `gorm:"not null"`
	DiscountCents     int64 `gorm:"not null;default:0"`
	ShippingCostCents int64 `gorm:"not null;default:0"`
	TotalCents        int64 `gorm:"not null"`

	Status string `gorm:"type:varchar(30);not null;default:'draft';index"`

	// Delivery
	DeliveryType    string  `gorm:"type:varchar(20);not null;default:'pickup'"`
	DeliveryStatus  string  `gorm:"type:varchar(30);not null;default:'pending'"`
	ScheduledDate   *time.Time
	ScheduledShift  *string    `gorm:"type:varchar(20)"` // morning | afternoon | evening
	CourierUserID   *uuid.UUID `gorm:"type:uuid;index"`
	CarrierName     *string
	DeliveryNotes   *string

	// Workflow timestamps
	ExpeditionValidatedAt *time.Time
	ExpeditionValidatedBy *uuid.UUID `gorm:"type:uuid"`
	DispatchedAt          *time.Time
	DeliveredAt           *time.Time

	// Payment
	PaymentMethodID    *uuid.UUID `gorm:"type:uuid"`
	Installments       int        `gorm:"not null;default:1"`
	PaymentProofURL    *string
	InvoicePDFURL      *string
	InvoiceXMLURL      *string
	PaymentConfirmedAt *time.Time
	PaymentConfirmedBy *uuid.UUID `gorm:"type:uuid"`
	// Settlement computed from the payment method fee schedule at confirmation.
	SettlementFeeCents *int64
	SettlementDate     *time.Time

	// Return
	ReturnReason *string
	ReturnNotes  *string
	ReturnedAt   *time.Time
	ReturnedBy   *uuid.UUID `gorm:"type:uuid"`

	CancelReason *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Lead          *Lead               `gorm:"foreignKey:LeadID"`
	Seller        *User               `gorm:"foreignKey:SellerUserID"`
	Courier       *User               `gorm:"foreignKey:CourierUserID"`
	PaymentMethod *PaymentMethod      `gorm:"foreignKey:PaymentMethodID"`
	Items         []SaleItem          `gorm:"foreignKey:SaleID"`
	StatusHistory []SaleStatusHistory `gorm:"foreignKey:SaleID"`
}

// SaleItem is a line of a sale. Product name is denormalized at sale time so
// later catalog edits do not rewrite history.
// Invariant: TotalCents = UnitPriceCents*Quantity - DiscountCents.
type SaleItem struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	KitID          *uuid.UUID `gorm:"type:uuid"`
	ProductName    string     `gorm:"not null"`
	Quantity       int        `gorm:"not null"`
	UnitPriceCents int64      `gorm:"not null"`
	DiscountCents  int64      `gorm:"not null;default:0"`
	TotalCents     int64      `gorm:"not null"`
	// RequisitionNumber is set for manipulado (compounded pharmacy) items.
	RequisitionNumber *string
	// AuthorizationID links the manager authorization when the line was
	// confirmed below the kit minimum price.
	AuthorizationID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time
}

// SaleStatusHistory is an immutable log entry appended on every transition.
// Entries are never modified or deleted.
type SaleStatusHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID     uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus string    `gorm:"type:varchar(30);not null"`
	ToStatus   string    `gorm:"type:varchar(30);not null"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	Note       *string
	CreatedAt  time.Time
}

func (SaleStatusHistory) TableName() string { return "sale_status_history" }

// DiscountAuthorization is a single-use manager grant allowing a sale line
// below the kit minimum price.
type DiscountAuthorization struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID   uuid.UUID `gorm:"type:uuid;not null;index"`
	LeadID           uuid.UUID `gorm:"type:uuid;not null"`
	ProductID        uuid.UUID `gorm:"type:uuid;not null"`
	GrantedByUserID  uuid.UUID `gorm:"type:uuid;not null"`
	AuthorizedCents  int64     `gorm:"not null"` // lowest total the grant covers
	ConsumedAt       *time.Time
	ConsumedBySaleID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time
}
