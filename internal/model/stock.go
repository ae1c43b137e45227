package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock operations of the sale lifecycle. Reserve/unreserve act on the
// reserved counter only; deduct converts a reservation into consumption;
// restore reverses a deduction after delivery.
const (
	StockOpReserve   = "reserve"
	StockOpDeduct    = "deduct"
	StockOpRestore   = "restore"
	StockOpUnreserve = "unreserve"
	StockOpAdjust    = "manual_adjust"
)

// StockMovement records every change to a product's counters.
// Movements are never modified or deleted — reversals create inverse entries.
type StockMovement struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Operation      string    `gorm:"type:varchar(20);not null"`
	Quantity       int       `gorm:"not null"` // positive = in, negative = out
	ActualBefore   int       `gorm:"not null"`
	ActualAfter    int       `gorm:"not null"`
	ReservedBefore int       `gorm:"not null"`
	ReservedAfter  int       `gorm:"not null"`
	Reason         string
	SaleID         *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt      time.Time
}

// Compensation entry statuses.
const (
	CompensationApplied = "applied"
	CompensationFailed  = "failed"
	CompensationError   = "error" // gave up after max retries
)

// StockCompensation is the ledger of stock side effects taken (or attempted)
// per sale transition. Failed entries are replayed by the retry cron; this is
// what makes the soft-fail policy on stock errors auditable instead of
// silently inconsistent.
type StockCompensation struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	SaleID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Operation      string    `gorm:"type:varchar(20);not null"`
	Status         string    `gorm:"type:varchar(20);not null;default:'applied';index"`
	Attempts       int       `gorm:"not null;default:1"`
	LastError      *string
	NextRetryAt    *time.Time `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
