package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product categories that select the pricing model.
// "manipulado" (compounded pharmacy) is fully manual per sale; categories
// with price kits use tiered pricing; everything else is legacy fixed pricing.
const (
	CategoryManipulado = "manipulado"
)

// Product is a catalog entry scoped to an organization.
type Product struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"index;not null"`
	Description    *string
	Category       string `gorm:"not null"`
	Active         bool   `gorm:"not null;default:true"`
	Featured       bool   `gorm:"not null;default:false"`

	// Stock tracking. Reserved units are committed to open sales but not yet
	// delivered; available = StockActual - StockReserved.
	TrackStock    bool `gorm:"not null;default:true"`
	StockActual   int  `gorm:"not null;default:0"`
	StockReserved int  `gorm:"not null;default:0"`
	StockMinimum  int  `gorm:"not null;default:5"`

	// LegacyPriceCents applies to products without kits.
	LegacyPriceCents *int64

	// Up to two cross-sell suggestions.
	CrossSell1ID *uuid.UUID `gorm:"type:uuid"`
	CrossSell2ID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Kits         []ProductPriceKit `gorm:"foreignKey:ProductID"`
	KeyQuestions []KeyQuestion     `gorm:"foreignKey:ProductID"`
}

// HasKits reports whether tiered kit pricing applies.
func (p *Product) HasKits() bool { return len(p.Kits) > 0 }

// KeyQuestion is asked to every lead interested in the product, in order.
type KeyQuestion struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Question  string    `gorm:"not null"`
	Position  int       `gorm:"not null;default:0"`
}

// ProductPriceKit is a quantity tier of a product carrying up to four
// independent price points. Position orders kits for progressive disclosure.
type ProductPriceKit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int       `gorm:"not null"`
	Position  int       `gorm:"not null;default:0"`

	RegularPriceCents      *int64
	PromotionalPriceCents  *int64
	Promotional2PriceCents *int64
	MinimumPriceCents      *int64

	// Per-tier commission: when UseDefault is false the custom percentage
	// replaces the seller's default commission for that tier.
	RegularUseDefaultCommission      bool             `gorm:"not null;default:true"`
	RegularCommissionPct             *decimal.Decimal `gorm:"type:decimal(5,2)"`
	PromotionalUseDefaultCommission  bool             `gorm:"not null;default:true"`
	PromotionalCommissionPct         *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Promotional2UseDefaultCommission bool             `gorm:"not null;default:true"`
	Promotional2CommissionPct        *decimal.Decimal `gorm:"type:decimal(5,2)"`
	MinimumUseDefaultCommission      bool             `gorm:"not null;default:true"`
	MinimumCommissionPct             *decimal.Decimal `gorm:"type:decimal(5,2)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// KitRejection records that a seller offered a tier and the customer
// declined. Append-only; feeds progressive disclosure.
type KitRejection struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID       uuid.UUID `gorm:"type:uuid;not null;index"`
	LeadID               uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID            uuid.UUID `gorm:"type:uuid;not null;index"`
	KitID                uuid.UUID `gorm:"type:uuid;not null"`
	Reason               string    `gorm:"not null"`
	Quantity             int       `gorm:"not null"`
	PriceCentsAtRejection int64    `gorm:"not null"`
	RejectedByUserID     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt            time.Time
}
