package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type FeeRequest struct {
	TransactionType string          `json:"transaction_type" validate:"required,oneof=debit credit_cash credit_installments"`
	PercentageFee   decimal.Decimal `json:"percentage_fee"   validate:"min=0"`
	FixedFeeCents   int64           `json:"fixed_fee_cents"  validate:"min=0"`
	SettlementDays  int             `json:"settlement_days"  validate:"min=0"`
}

type CreatePaymentMethodRequest struct {
	Name            string       `json:"name"     validate:"required,min=2,max=100"`
	Category        string       `json:"category" validate:"required,oneof=cash pix debit_card credit_card boleto transfer check"`
	Timing          string       `json:"timing"   validate:"required,oneof=cash term installments"`
	MaxInstallments int          `json:"max_installments" validate:"min=1,max=24"`
	BankName        *string      `json:"bank_name"`
	BankCNPJ        *string      `json:"bank_cnpj" validate:"omitempty,len=14,numeric"`
	CostCenter      *string      `json:"cost_center"`
	AcquirerName    *string      `json:"acquirer_name"`
	Fees            []FeeRequest `json:"fees" validate:"dive"`
}

type UpdatePaymentMethodRequest = CreatePaymentMethodRequest

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FeeResponse struct {
	TransactionType string          `json:"transaction_type"`
	PercentageFee   decimal.Decimal `json:"percentage_fee"`
	FixedFeeCents   int64           `json:"fixed_fee_cents"`
	SettlementDays  int             `json:"settlement_days"`
}

type PaymentMethodResponse struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Category        string        `json:"category"`
	Timing          string        `json:"timing"`
	MaxInstallments int           `json:"max_installments"`
	BankName        *string       `json:"bank_name"`
	BankCNPJ        *string       `json:"bank_cnpj"`
	CostCenter      *string       `json:"cost_center"`
	AcquirerName    *string       `json:"acquirer_name"`
	Active          bool          `json:"active"`
	Fees            []FeeResponse `json:"fees"`
}
