package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendaflow/internal/model"
)

func i64(v int64) *int64                       { return &v }
func pct(v string) *decimal.Decimal            { d := decimal.RequireFromString(v); return &d }
func defPct() decimal.Decimal                  { return decimal.RequireFromString("10") }

func kitFixture() *model.ProductPriceKit {
	return &model.ProductPriceKit{
		ID:                          uuid.New(),
		Quantity:                    3,
		RegularPriceCents:           i64(10000),
		PromotionalPriceCents:       i64(9000),
		MinimumPriceCents:           i64(5000),
		RegularUseDefaultCommission: true,
		MinimumUseDefaultCommission: false,
		MinimumCommissionPct:        pct("4"),
	}
}

func TestTierPriceFallbackToRegular(t *testing.T) {
	kit := kitFixture()
	kit.Promotional2PriceCents = nil // tier without a price point

	m := TieredKitPricing{Kit: kit}
	res, err := m.Resolve(Selection{Tier: TierPromotional2}, defPct())
	require.NoError(t, err)

	assert.Equal(t, int64(10000), res.UnitPriceCents, "null tier price must fall back to the regular price")
	assert.Equal(t, 3, res.Quantity)
}

func TestTierPriceUsesOwnPoint(t *testing.T) {
	m := TieredKitPricing{Kit: kitFixture()}
	res, err := m.Resolve(Selection{Tier: TierPromotional}, defPct())
	require.NoError(t, err)
	assert.Equal(t, int64(9000), res.UnitPriceCents)
}

func TestTierCommissionDefaultVsCustom(t *testing.T) {
	m := TieredKitPricing{Kit: kitFixture()}

	res, err := m.Resolve(Selection{Tier: TierRegular}, defPct())
	require.NoError(t, err)
	assert.True(t, res.CommissionPct.Equal(decimal.RequireFromString("10")))
	assert.False(t, res.IsCustomCommission)

	res, err = m.Resolve(Selection{Tier: TierMinimum}, defPct())
	require.NoError(t, err)
	assert.True(t, res.CommissionPct.Equal(decimal.RequireFromString("4")))
	assert.True(t, res.IsCustomCommission)
}

func TestCustomCommissionInterpolation(t *testing.T) {
	kit := kitFixture() // min 5000 @ 4%, regular 10000 @ default 10%
	m := TieredKitPricing{Kit: kit}

	cases := []struct {
		price int64
		want  string
	}{
		{5000, "4"},    // at minimum
		{10000, "10"},  // at regular
		{7500, "7"},    // midpoint
		{4000, "4"},    // below minimum — ratio clamps to 0
		{12000, "10"},  // above regular — ratio clamps to 1
	}
	for _, tc := range cases {
		res, err := m.Resolve(Selection{Tier: TierCustom, CustomPriceCents: i64(tc.price)}, defPct())
		require.NoError(t, err)
		assert.True(t, res.CommissionPct.Equal(decimal.RequireFromString(tc.want)),
			"price %d: want %s, got %s", tc.price, tc.want, res.CommissionPct)
		assert.True(t, res.IsCustomCommission)
	}
}

func TestCustomCommissionMonotonic(t *testing.T) {
	m := TieredKitPricing{Kit: kitFixture()}
	prev := decimal.NewFromInt(-1)
	for price := int64(4000); price <= 11000; price += 250 {
		res, err := m.Resolve(Selection{Tier: TierCustom, CustomPriceCents: i64(price)}, defPct())
		require.NoError(t, err)
		assert.True(t, res.CommissionPct.GreaterThanOrEqual(prev),
			"commission decreased at price %d: %s < %s", price, res.CommissionPct, prev)
		prev = res.CommissionPct
	}
}

func TestCustomCommissionDegenerateRange(t *testing.T) {
	kit := kitFixture()
	kit.MinimumPriceCents = i64(10000) // regular <= minimum

	m := TieredKitPricing{Kit: kit}
	res, err := m.Resolve(Selection{Tier: TierCustom, CustomPriceCents: i64(8000)}, defPct())
	require.NoError(t, err)
	assert.True(t, res.CommissionPct.Equal(decimal.RequireFromString("10")),
		"degenerate range must yield the regular-tier commission")
}

func TestCustomTierRequiresPrice(t *testing.T) {
	m := TieredKitPricing{Kit: kitFixture()}
	_, err := m.Resolve(Selection{Tier: TierCustom}, defPct())
	assert.ErrorIs(t, err, ErrCustomPrice)
}

func TestManualPricing(t *testing.T) {
	m := ManualPricing{}
	res, err := m.Resolve(Selection{Quantity: 2, UnitPriceCents: 4550}, defPct())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Quantity)
	assert.Equal(t, int64(4550), res.UnitPriceCents)
	assert.True(t, res.CommissionPct.Equal(decimal.RequireFromString("10")),
		"manipulado commission is always the seller default")
	assert.False(t, res.IsCustomCommission)

	_, err = m.Resolve(Selection{Quantity: 0, UnitPriceCents: 100}, defPct())
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestLegacyFixedPricing(t *testing.T) {
	m := LegacyFixedPricing{PriceCents: 2990}

	res, err := m.Resolve(Selection{Quantity: 4}, defPct())
	require.NoError(t, err)
	assert.Equal(t, int64(2990), res.UnitPriceCents)

	// Free-form override
	res, err = m.Resolve(Selection{Quantity: 4, UnitPriceCents: 2500}, defPct())
	require.NoError(t, err)
	assert.Equal(t, int64(2500), res.UnitPriceCents)
}

func TestModelForDispatch(t *testing.T) {
	manip := &model.Product{Category: model.CategoryManipulado}
	assert.IsType(t, ManualPricing{}, ModelFor(manip, nil))

	kitProd := &model.Product{Category: "emagrecedor", Kits: []model.ProductPriceKit{*kitFixture()}}
	assert.IsType(t, TieredKitPricing{}, ModelFor(kitProd, kitFixture()))

	legacy := &model.Product{Category: "acessorio", LegacyPriceCents: i64(1500)}
	assert.IsType(t, LegacyFixedPricing{}, ModelFor(legacy, nil))
}
