package pricing

import (
	"github.com/shopspring/decimal"

	"vendaflow/internal/model"
)

// DiscountType selects how a discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Discount is a seller-entered discount on a sale line.
type Discount struct {
	Type       DiscountType
	Percentage decimal.Decimal // when Type == percentage
	FixedCents int64           // when Type == fixed
}

// Cents returns the discount amount for a subtotal. Percentage discounts
// round to the nearest cent: round(subtotal * pct / 100).
func (d Discount) Cents(subtotalCents int64) int64 {
	switch d.Type {
	case DiscountPercentage:
		return decimal.NewFromInt(subtotalCents).
			Mul(d.Percentage).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	case DiscountFixed:
		return d.FixedCents
	default:
		return 0
	}
}

// LineTotals applies a discount to a resolved line.
type LineTotals struct {
	SubtotalCents int64
	DiscountCents int64
	TotalCents    int64
}

// ComputeLine derives subtotal, discount and total for a resolution.
func ComputeLine(res Resolution, d Discount) LineTotals {
	subtotal := res.UnitPriceCents * int64(res.Quantity)
	discount := d.Cents(subtotal)
	return LineTotals{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		TotalCents:    subtotal - discount,
	}
}

// BelowMinimum reports whether a kit-priced line falls under the kit's
// minimum-price floor. The floor applies to the kit total: a line is below
// minimum when the custom unit price undercuts the minimum tier, or when the
// discounted total falls under minimum x quantity. Kits without a minimum
// price have no floor. Manual (manipulado) pricing is exempt — callers skip
// the check for that model.
func BelowMinimum(kit *model.ProductPriceKit, customUnitCents *int64, totals LineTotals) bool {
	if kit == nil || kit.MinimumPriceCents == nil {
		return false
	}
	min := *kit.MinimumPriceCents
	if customUnitCents != nil && *customUnitCents < min {
		return true
	}
	return totals.TotalCents < min*int64(kit.Quantity)
}

// NeedsAuthorization is the manager-gate rule: a below-minimum line requires
// a discount authorization; once one is attached the check is bypassed.
func NeedsAuthorization(kit *model.ProductPriceKit, customUnitCents *int64, totals LineTotals, hasAuthorization bool) bool {
	if hasAuthorization {
		return false
	}
	return BelowMinimum(kit, customUnitCents, totals)
}

// SaleTotals aggregates line totals plus shipping into the sale invariant:
// total = subtotal - discount + shipping.
type SaleTotals struct {
	SubtotalCents     int64
	DiscountCents     int64
	ShippingCostCents int64
	TotalCents        int64
}

// ComputeSale folds line totals and shipping into sale totals.
func ComputeSale(lines []LineTotals, shippingCents int64) SaleTotals {
	var t SaleTotals
	t.ShippingCostCents = shippingCents
	for _, l := range lines {
		t.SubtotalCents += l.SubtotalCents
		t.DiscountCents += l.DiscountCents
	}
	t.TotalCents = t.SubtotalCents - t.DiscountCents + t.ShippingCostCents
	return t
}
