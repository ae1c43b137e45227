// Package pricing holds the pure pricing rules of the sale flow: tier
// resolution, commission interpolation, discounts, the kit minimum floor and
// the progressive kit disclosure machine. Nothing here touches the database.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"vendaflow/internal/model"
)

// Tier selects one of a kit's price points, or a free custom price.
type Tier string

const (
	TierRegular      Tier = "regular"
	TierPromotional  Tier = "promotional"
	TierPromotional2 Tier = "promotional_2"
	TierMinimum      Tier = "minimum"
	TierCustom       Tier = "custom"
)

var (
	ErrNoKit           = errors.New("pricing: kit required for tiered pricing")
	ErrCustomPrice     = errors.New("pricing: custom tier requires a custom price")
	ErrInvalidQuantity = errors.New("pricing: quantity must be positive")
	ErrInvalidPrice    = errors.New("pricing: unit price must not be negative")
)

// Selection is what the seller picked on the product dialog.
type Selection struct {
	Tier             Tier
	CustomPriceCents *int64 // unit price, custom tier only
	// Manual fields, used by manual (manipulado) and legacy pricing.
	Quantity       int
	UnitPriceCents int64
}

// Resolution is the outcome of resolving a selection against a pricing model.
type Resolution struct {
	Quantity           int
	UnitPriceCents     int64
	CommissionPct      decimal.Decimal
	IsCustomCommission bool
}

// Model is the pricing behavior of a product category. Exactly one variant
// applies to a product; dispatch happens once, in ModelFor.
type Model interface {
	// Resolve turns the seller's selection into quantity, unit price and
	// commission. sellerDefaultPct is the seller's default commission.
	Resolve(sel Selection, sellerDefaultPct decimal.Decimal) (Resolution, error)
}

// ModelFor picks the pricing variant for a product. Kit may be nil; it is
// required only when the product's category prices through kits.
func ModelFor(p *model.Product, kit *model.ProductPriceKit) Model {
	switch {
	case p.Category == model.CategoryManipulado:
		return ManualPricing{}
	case p.HasKits() || kit != nil:
		return TieredKitPricing{Kit: kit}
	default:
		var legacy int64
		if p.LegacyPriceCents != nil {
			legacy = *p.LegacyPriceCents
		}
		return LegacyFixedPricing{PriceCents: legacy}
	}
}

// ManualPricing: manipulado items. Quantity and price are entered ad hoc;
// commission is always the seller's default.
type ManualPricing struct{}

func (ManualPricing) Resolve(sel Selection, sellerDefaultPct decimal.Decimal) (Resolution, error) {
	if sel.Quantity <= 0 {
		return Resolution{}, ErrInvalidQuantity
	}
	if sel.UnitPriceCents < 0 {
		return Resolution{}, ErrInvalidPrice
	}
	return Resolution{
		Quantity:       sel.Quantity,
		UnitPriceCents: sel.UnitPriceCents,
		CommissionPct:  sellerDefaultPct,
	}, nil
}

// LegacyFixedPricing: products without kits. Quantity is free; the unit price
// defaults to the catalog price but may be overridden; no tiered commission.
type LegacyFixedPricing struct {
	PriceCents int64
}

func (m LegacyFixedPricing) Resolve(sel Selection, sellerDefaultPct decimal.Decimal) (Resolution, error) {
	if sel.Quantity <= 0 {
		return Resolution{}, ErrInvalidQuantity
	}
	price := m.PriceCents
	if sel.UnitPriceCents > 0 {
		price = sel.UnitPriceCents
	}
	return Resolution{
		Quantity:       sel.Quantity,
		UnitPriceCents: price,
		CommissionPct:  sellerDefaultPct,
	}, nil
}

// TieredKitPricing: kit-backed categories. Quantity comes from the kit; the
// unit price is the selected tier's price point, falling back to the kit's
// regular price when the tier has no value.
type TieredKitPricing struct {
	Kit *model.ProductPriceKit
}

func (m TieredKitPricing) Resolve(sel Selection, sellerDefaultPct decimal.Decimal) (Resolution, error) {
	if m.Kit == nil {
		return Resolution{}, ErrNoKit
	}
	kit := m.Kit

	if sel.Tier == TierCustom {
		if sel.CustomPriceCents == nil {
			return Resolution{}, ErrCustomPrice
		}
		pct := interpolatedCommission(kit, *sel.CustomPriceCents, sellerDefaultPct)
		return Resolution{
			Quantity:           kit.Quantity,
			UnitPriceCents:     *sel.CustomPriceCents,
			CommissionPct:      pct,
			IsCustomCommission: true,
		}, nil
	}

	price := tierPrice(kit, sel.Tier)
	pct, custom := tierCommission(kit, sel.Tier, sellerDefaultPct)
	return Resolution{
		Quantity:           kit.Quantity,
		UnitPriceCents:     price,
		CommissionPct:      pct,
		IsCustomCommission: custom,
	}, nil
}

// tierPrice returns the tier's price point, falling back to the regular price
// when the tier has none (fallback law).
func tierPrice(kit *model.ProductPriceKit, tier Tier) int64 {
	var p *int64
	switch tier {
	case TierPromotional:
		p = kit.PromotionalPriceCents
	case TierPromotional2:
		p = kit.Promotional2PriceCents
	case TierMinimum:
		p = kit.MinimumPriceCents
	default:
		p = kit.RegularPriceCents
	}
	if p == nil {
		p = kit.RegularPriceCents
	}
	if p == nil {
		return 0
	}
	return *p
}

// tierCommission returns the commission for a tier: the tier's custom
// percentage when it disabled "use default", else the seller's default.
func tierCommission(kit *model.ProductPriceKit, tier Tier, def decimal.Decimal) (decimal.Decimal, bool) {
	var useDefault bool
	var custom *decimal.Decimal
	switch tier {
	case TierPromotional:
		useDefault, custom = kit.PromotionalUseDefaultCommission, kit.PromotionalCommissionPct
	case TierPromotional2:
		useDefault, custom = kit.Promotional2UseDefaultCommission, kit.Promotional2CommissionPct
	case TierMinimum:
		useDefault, custom = kit.MinimumUseDefaultCommission, kit.MinimumCommissionPct
	default:
		useDefault, custom = kit.RegularUseDefaultCommission, kit.RegularCommissionPct
	}
	if useDefault || custom == nil {
		return def, false
	}
	return *custom, true
}

// interpolatedCommission computes the commission for a custom price: linear
// between the minimum-tier and regular-tier commissions over
// [minPrice, regularPrice], ratio clamped to [0,1]. When regular <= minimum
// the regular-tier commission applies.
func interpolatedCommission(kit *model.ProductPriceKit, customPriceCents int64, def decimal.Decimal) decimal.Decimal {
	regularPrice := tierPrice(kit, TierRegular)
	minPrice := tierPrice(kit, TierMinimum)
	regularPct, _ := tierCommission(kit, TierRegular, def)
	minPct, _ := tierCommission(kit, TierMinimum, def)

	if regularPrice <= minPrice {
		return regularPct
	}

	ratio := decimal.NewFromInt(customPriceCents - minPrice).
		Div(decimal.NewFromInt(regularPrice - minPrice))
	if ratio.IsNegative() {
		ratio = decimal.Zero
	}
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		ratio = decimal.NewFromInt(1)
	}

	return minPct.Add(regularPct.Sub(minPct).Mul(ratio)).Round(4)
}
