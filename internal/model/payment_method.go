package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment method categories and timings.
const (
	PayCash       = "cash"
	PayPix        = "pix"
	PayDebitCard  = "debit_card"
	PayCreditCard = "credit_card"
	PayBoleto     = "boleto"
	PayTransfer   = "transfer"
	PayCheck      = "check"

	TimingCash         = "cash"
	TimingTerm         = "term"
	TimingInstallments = "installments"
)

// PaymentMethod is settings-owned configuration, consumed read-only by the
// sale flow. Card methods may carry a fee schedule per transaction type.
type PaymentMethod struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"not null"`
	Category       string    `gorm:"type:varchar(20);not null"`
	Timing         string    `gorm:"type:varchar(20);not null;default:'cash'"`
	MaxInstallments int      `gorm:"not null;default:1"`

	BankName     *string
	BankCNPJ     *string `gorm:"type:varchar(20)"`
	CostCenter   *string
	AcquirerName *string

	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Fees []PaymentMethodFee `gorm:"foreignKey:PaymentMethodID"`
}

// PaymentMethodFee is one row of a card fee schedule: a percentage plus a
// fixed amount, settled after SettlementDays.
// TransactionType: "debit" | "credit_cash" | "credit_installments".
type PaymentMethodFee struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionType string          `gorm:"type:varchar(30);not null"`
	PercentageFee   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	FixedFeeCents   int64           `gorm:"not null;default:0"`
	SettlementDays  int             `gorm:"not null;default:0"`
}

// FeeFor returns the fee row for a transaction type, or nil when the method
// has no schedule for it.
func (m *PaymentMethod) FeeFor(transactionType string) *PaymentMethodFee {
	for i := range m.Fees {
		if m.Fees[i].TransactionType == transactionType {
			return &m.Fees[i]
		}
	}
	return nil
}

// FeeCents applies the schedule to an amount: round(amount*pct/100) + fixed.
func (f *PaymentMethodFee) FeeCents(amountCents int64) int64 {
	pct := decimal.NewFromInt(amountCents).Mul(f.PercentageFee).Div(decimal.NewFromInt(100)).Round(0)
	return pct.IntPart() + f.FixedFeeCents
}
